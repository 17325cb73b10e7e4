package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"aidtrack/internal/audit"
	"aidtrack/internal/core"
	"aidtrack/internal/database"
	"aidtrack/internal/middleware"
	"aidtrack/internal/models"
	"aidtrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BeneficiaryHandler owns beneficiary entry recording for all three shapes:
// district allotments, individual public applicants and institutions.
type BeneficiaryHandler struct {
	DB *gorm.DB

	// invalidate, when set, is called after every successful save so the
	// fund-request dropdown caches pick up the new rows.
	invalidate func()
}

func NewBeneficiaryHandler(db *gorm.DB, invalidate func()) *BeneficiaryHandler {
	return &BeneficiaryHandler{DB: db, invalidate: invalidate}
}

func (h *BeneficiaryHandler) entriesChanged() {
	if h.invalidate != nil {
		h.invalidate()
	}
}

// entryLineReq is one article line of a district or institution submission.
type entryLineReq struct {
	ArticleID   uint            `json:"article_id"`
	Quantity    int             `json:"quantity"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	Notes       string          `json:"notes"`
}

// validateEntryLines collects every line problem into a field→message map.
// For aid entries a non-positive cost is an error (unlike article-type fund
// request lines, which may be pending a supplier quote).
func validateEntryLines(lines []entryLineReq) map[string]string {
	errs := make(map[string]string)
	if len(lines) == 0 {
		errs["lines"] = "at least one article line is required"
		return errs
	}
	for i, l := range lines {
		key := func(f string) string { return fmt.Sprintf("lines[%d].%s", i, f) }
		if l.ArticleID == 0 {
			errs[key("article_id")] = "article is required"
		}
		if l.Quantity <= 0 {
			errs[key("quantity")] = "quantity must be greater than zero"
		}
		if !l.CostPerUnit.IsPositive() {
			errs[key("cost_per_unit")] = "cost per unit must be greater than zero"
		}
	}
	return errs
}

// ---------- district entries ----------

type districtSaveReq struct {
	DistrictID        uint           `json:"district_id" binding:"required"`
	ApplicationNumber string         `json:"application_number"` // set when editing
	Lines             []entryLineReq `json:"lines"`
}

// SaveDistrictEntries is the save-or-replace path for a district submission.
// The application number is resolved through the allocator's three paths,
// prior rows under it are captured, deleted and replaced by the new line set
// inside one transaction, and the replaced rows go to the audit log.
func (h *BeneficiaryHandler) SaveDistrictEntries(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req districtSaveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if errs := validateEntryLines(req.Lines); len(errs) > 0 {
		util.ValidationError(c, errs)
		return
	}

	var district models.District
	if err := h.DB.First(&district, req.DistrictID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "district not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load district")
		}
		return
	}

	// an edit may only name the district's own number; anything else would
	// overwrite another district's rows
	if req.ApplicationNumber != "" && req.ApplicationNumber != district.ApplicationNumber {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam,
			"application number does not belong to this district")
		return
	}

	var (
		appNumber string
		replaced  []models.DistrictEntry
		total     decimal.Decimal
	)

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		alloc := core.Allocator{Source: database.SequenceSource{Tx: tx}}
		number, res, err := alloc.Allocate(models.BeneficiaryDistrict,
			req.ApplicationNumber, district.ApplicationNumber)
		if err != nil {
			return err
		}
		appNumber = number

		if res.IsReplace() {
			// capture what the replace removes, then delete before insert
			if err := tx.Where("application_number = ?", number).
				Find(&replaced).Error; err != nil {
				return err
			}
			if err := tx.Where("application_number = ?", number).
				Delete(&models.DistrictEntry{}).Error; err != nil {
				return err
			}
		} else {
			district.ApplicationNumber = number
			if err := tx.Model(&district).
				Update("application_number", number).Error; err != nil {
				return err
			}
		}

		rows := make([]models.DistrictEntry, len(req.Lines))
		totals := make([]decimal.Decimal, len(req.Lines))
		for i, l := range req.Lines {
			totals[i] = core.LineTotal(l.Quantity, l.CostPerUnit)
			rows[i] = models.DistrictEntry{
				ApplicationNumber: number,
				DistrictID:        district.ID,
				ArticleID:         l.ArticleID,
				Quantity:          l.Quantity,
				CostPerUnit:       l.CostPerUnit,
				TotalAmount:       totals[i],
				Notes:             l.Notes,
				Status:            "active",
			}
		}
		total = core.AggregateTotal(totals)
		return tx.Create(&rows).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save entries, please retry")
		return
	}

	if len(replaced) > 0 {
		audit.Record(h.DB, user.ID, "district_entries.replace", "district_entry", appNumber, replaced)
	} else {
		audit.Record(h.DB, user.ID, "district_entries.create", "district_entry", appNumber, nil)
	}
	h.entriesChanged()

	persisted, err := h.districtPersistedTotal(district.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute recorded total")
		return
	}
	remaining := core.RemainingBudget(district.AllottedBudget, persisted, decimal.Zero)

	resp := util.Response{
		"application_number": appNumber,
		"total_accrued":      total,
		"remaining":          remaining,
		"over_budget":        remaining.IsNegative(),
	}
	if remaining.IsNegative() {
		resp["warning"] = "allotted budget exceeded"
	}
	util.Success(c, resp)
}

func (h *BeneficiaryHandler) districtPersistedTotal(districtID uint) (decimal.Decimal, error) {
	var rows []models.DistrictEntry
	if err := h.DB.Where("district_id = ?", districtID).Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	totals := make([]decimal.Decimal, len(rows))
	for i, r := range rows {
		totals[i] = r.TotalAmount
	}
	return core.AggregateTotal(totals), nil
}

// ListDistrictEntries returns grouped beneficiary records for the district
// view. aid_type filters by a case-insensitive substring match against the
// joined article's name or category.
func (h *BeneficiaryHandler) ListDistrictEntries(c *gin.Context) {
	q := h.DB.Model(&models.DistrictEntry{}).
		Joins("JOIN articles ON articles.id = district_entries.article_id").
		Joins("JOIN districts ON districts.id = district_entries.district_id").
		Select("district_entries.*, articles.name AS article_name, districts.name AS beneficiary_name")

	if districtID := c.Query("district_id"); districtID != "" {
		id, err := strconv.Atoi(districtID)
		if err != nil || id <= 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid district_id")
			return
		}
		q = q.Where("district_entries.district_id = ?", id)
	}
	if aidType := strings.TrimSpace(c.Query("aid_type")); aidType != "" {
		like := "%" + strings.ToLower(aidType) + "%"
		q = q.Where("LOWER(articles.name) LIKE ? OR LOWER(articles.category) LIKE ?", like, like)
	}

	var flat []struct {
		models.DistrictEntry
		ArticleName     string
		BeneficiaryName string
	}
	if err := q.Find(&flat).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list entries")
		return
	}

	rows := make([]core.EntryRow, len(flat))
	for i, f := range flat {
		rows[i] = core.EntryRow{
			ID:                f.ID,
			ApplicationNumber: f.ApplicationNumber,
			BeneficiaryName:   f.BeneficiaryName,
			ArticleID:         f.ArticleID,
			ArticleName:       f.ArticleName,
			Quantity:          f.Quantity,
			CostPerUnit:       f.CostPerUnit,
			TotalAmount:       f.TotalAmount,
			Notes:             f.Notes,
			Status:            f.Status,
			CreatedAt:         f.CreatedAt,
		}
	}

	records := core.GroupByApplicationNumber(rows)
	util.Success(c, util.Response{
		"items": records,
		"total": len(records),
	})
}

// ---------- public entries ----------

type publicSaveReq struct {
	ApplicationNumber string          `json:"application_number"` // set when editing
	ApplicantName     string          `json:"applicant_name"`
	AadharNumber      string          `json:"aadhar_number"`
	Address           string          `json:"address"`
	Phone             string          `json:"phone"`
	ArticleID         uint            `json:"article_id"`
	Quantity          int             `json:"quantity"`
	CostPerUnit       decimal.Decimal `json:"cost_per_unit"`
	Notes             string          `json:"notes"`

	// Resolution of an Aadhaar conflict reported by a previous attempt:
	// "update-existing" replaces the existing record's row under its
	// application number. Absent, a conflict is reported, never resolved
	// silently.
	Resolution string `json:"resolution"`
}

func validatePublicSave(req publicSaveReq) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(req.ApplicantName) == "" {
		errs["applicant_name"] = "applicant name is required"
	}
	if err := util.ValidateAadhaar(req.AadharNumber); err != nil {
		errs["aadhar_number"] = err.Error()
	}
	if req.ArticleID == 0 {
		errs["article_id"] = "article is required"
	}
	if req.Quantity <= 0 {
		errs["quantity"] = "quantity must be greater than zero"
	}
	if !req.CostPerUnit.IsPositive() {
		errs["cost_per_unit"] = "cost per unit must be greater than zero"
	}
	return errs
}

// SavePublicEntry records an individual applicant. The normalized Aadhaar
// number is the identity anchor: a second submission with the same number is
// reported as a conflict (update the existing record, or load it for manual
// editing) and never silently issues a second application number.
func (h *BeneficiaryHandler) SavePublicEntry(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req publicSaveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if errs := validatePublicSave(req); len(errs) > 0 {
		util.ValidationError(c, errs)
		return
	}

	// an edit must name an existing applicant; replacing rows under an
	// unverified number would let one submission overwrite arbitrary records
	if req.ApplicationNumber != "" {
		var n int64
		if err := h.DB.Model(&models.PublicEntry{}).
			Where("application_number = ?", req.ApplicationNumber).
			Count(&n).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check existing applicant")
			return
		}
		if n == 0 {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "no applicant with this application number")
			return
		}
	}

	aadhaar := core.NormalizeAadhaar(req.AadharNumber)

	// conflict check before any insert
	var existing models.PublicEntry
	err := h.DB.Where("aadhar_number = ?", aadhaar).First(&existing).Error
	found := err == nil
	if err != nil && err != gorm.ErrRecordNotFound {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check existing applicant")
		return
	}

	anchorNumber := ""
	if found {
		editingSelf := req.ApplicationNumber != "" && req.ApplicationNumber == existing.ApplicationNumber
		if !editingSelf && req.Resolution != "update-existing" {
			util.Conflict(c, "an applicant with this aadhar number already exists",
				existing, []string{"update-existing", "edit-existing"})
			return
		}
		anchorNumber = existing.ApplicationNumber
	}

	var (
		appNumber string
		replaced  []models.PublicEntry
	)
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		alloc := core.Allocator{Source: database.SequenceSource{Tx: tx}}
		number, res, err := alloc.Allocate(models.BeneficiaryPublic,
			req.ApplicationNumber, anchorNumber)
		if err != nil {
			return err
		}
		appNumber = number

		if res.IsReplace() {
			if err := tx.Where("application_number = ?", number).
				Find(&replaced).Error; err != nil {
				return err
			}
			if err := tx.Where("application_number = ?", number).
				Delete(&models.PublicEntry{}).Error; err != nil {
				return err
			}
		}

		row := models.PublicEntry{
			ApplicationNumber: number,
			ApplicantName:     strings.TrimSpace(req.ApplicantName),
			AadharNumber:      aadhaar,
			Address:           req.Address,
			Phone:             req.Phone,
			ArticleID:         req.ArticleID,
			Quantity:          req.Quantity,
			CostPerUnit:       req.CostPerUnit,
			TotalAmount:       core.LineTotal(req.Quantity, req.CostPerUnit),
			Notes:             req.Notes,
			Status:            "active",
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save entry, please retry")
		return
	}

	if len(replaced) > 0 {
		audit.Record(h.DB, user.ID, "public_entry.replace", "public_entry", appNumber, replaced)
	} else {
		audit.Record(h.DB, user.ID, "public_entry.create", "public_entry", appNumber, nil)
	}
	h.entriesChanged()

	util.Success(c, util.Response{
		"application_number": appNumber,
	})
}

// ListPublicEntries returns applicants flat: one row is one beneficiary with
// one article, so the grouped view is an identity mapping here.
func (h *BeneficiaryHandler) ListPublicEntries(c *gin.Context) {
	q := h.DB.Model(&models.PublicEntry{}).
		Joins("JOIN articles ON articles.id = public_entries.article_id").
		Select("public_entries.*, articles.name AS article_name")

	if aidType := strings.TrimSpace(c.Query("aid_type")); aidType != "" {
		like := "%" + strings.ToLower(aidType) + "%"
		q = q.Where("LOWER(articles.name) LIKE ? OR LOWER(articles.category) LIKE ?", like, like)
	}

	var items []struct {
		models.PublicEntry
		ArticleName string `json:"article_name"`
	}
	if err := q.Order("public_entries.created_at DESC").Find(&items).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list entries")
		return
	}

	util.Success(c, util.Response{
		"items": items,
		"total": len(items),
	})
}

// ---------- institution entries ----------

type institutionSaveReq struct {
	ApplicationNumber string         `json:"application_number"` // set when editing
	InstitutionName   string         `json:"institution_name"`
	ContactPerson     string         `json:"contact_person"`
	Phone             string         `json:"phone"`
	Address           string         `json:"address"`
	Lines             []entryLineReq `json:"lines"`
}

// SaveInstitutionEntries mirrors the district path, anchored on the
// institution's prior entries rather than a district row: a repeat
// submission for the same institution name reuses its application number.
func (h *BeneficiaryHandler) SaveInstitutionEntries(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req institutionSaveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	errs := validateEntryLines(req.Lines)
	if strings.TrimSpace(req.InstitutionName) == "" {
		errs["institution_name"] = "institution name is required"
	}
	if len(errs) > 0 {
		util.ValidationError(c, errs)
		return
	}

	name := strings.TrimSpace(req.InstitutionName)

	// an edit must name an existing institution's number
	if req.ApplicationNumber != "" {
		var n int64
		if err := h.DB.Model(&models.InstitutionEntry{}).
			Where("application_number = ?", req.ApplicationNumber).
			Count(&n).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check existing institution")
			return
		}
		if n == 0 {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "no institution with this application number")
			return
		}
	}

	// anchor: a previous submission for the same institution
	anchorNumber := ""
	var prior models.InstitutionEntry
	err := h.DB.Where("LOWER(institution_name) = LOWER(?)", name).First(&prior).Error
	if err == nil {
		anchorNumber = prior.ApplicationNumber
	} else if err != gorm.ErrRecordNotFound {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check existing institution")
		return
	}

	var (
		appNumber string
		replaced  []models.InstitutionEntry
		total     decimal.Decimal
	)
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		alloc := core.Allocator{Source: database.SequenceSource{Tx: tx}}
		number, res, err := alloc.Allocate(models.BeneficiaryInstitutions,
			req.ApplicationNumber, anchorNumber)
		if err != nil {
			return err
		}
		appNumber = number

		if res.IsReplace() {
			if err := tx.Where("application_number = ?", number).
				Find(&replaced).Error; err != nil {
				return err
			}
			if err := tx.Where("application_number = ?", number).
				Delete(&models.InstitutionEntry{}).Error; err != nil {
				return err
			}
		}

		rows := make([]models.InstitutionEntry, len(req.Lines))
		totals := make([]decimal.Decimal, len(req.Lines))
		for i, l := range req.Lines {
			totals[i] = core.LineTotal(l.Quantity, l.CostPerUnit)
			rows[i] = models.InstitutionEntry{
				ApplicationNumber: number,
				InstitutionName:   name,
				ContactPerson:     req.ContactPerson,
				Phone:             req.Phone,
				Address:           req.Address,
				ArticleID:         l.ArticleID,
				Quantity:          l.Quantity,
				CostPerUnit:       l.CostPerUnit,
				TotalAmount:       totals[i],
				Notes:             l.Notes,
				Status:            "active",
			}
		}
		total = core.AggregateTotal(totals)
		return tx.Create(&rows).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save entries, please retry")
		return
	}

	if len(replaced) > 0 {
		audit.Record(h.DB, user.ID, "institution_entries.replace", "institution_entry", appNumber, replaced)
	} else {
		audit.Record(h.DB, user.ID, "institution_entries.create", "institution_entry", appNumber, nil)
	}
	h.entriesChanged()

	util.Success(c, util.Response{
		"application_number": appNumber,
		"total_accrued":      total,
	})
}

// ListInstitutionEntries returns grouped institution records, same shape as
// the district view.
func (h *BeneficiaryHandler) ListInstitutionEntries(c *gin.Context) {
	q := h.DB.Model(&models.InstitutionEntry{}).
		Joins("JOIN articles ON articles.id = institution_entries.article_id").
		Select("institution_entries.*, articles.name AS article_name")

	if aidType := strings.TrimSpace(c.Query("aid_type")); aidType != "" {
		like := "%" + strings.ToLower(aidType) + "%"
		q = q.Where("LOWER(articles.name) LIKE ? OR LOWER(articles.category) LIKE ?", like, like)
	}

	var flat []struct {
		models.InstitutionEntry
		ArticleName string
	}
	if err := q.Find(&flat).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list entries")
		return
	}

	rows := make([]core.EntryRow, len(flat))
	for i, f := range flat {
		rows[i] = core.EntryRow{
			ID:                f.ID,
			ApplicationNumber: f.ApplicationNumber,
			BeneficiaryName:   f.InstitutionName,
			ArticleID:         f.ArticleID,
			ArticleName:       f.ArticleName,
			Quantity:          f.Quantity,
			CostPerUnit:       f.CostPerUnit,
			TotalAmount:       f.TotalAmount,
			Notes:             f.Notes,
			Status:            f.Status,
			CreatedAt:         f.CreatedAt,
		}
	}

	records := core.GroupByApplicationNumber(rows)
	util.Success(c, util.Response{
		"items": records,
		"total": len(records),
	})
}
