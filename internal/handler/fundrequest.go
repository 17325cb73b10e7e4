package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"aidtrack/internal/audit"
	"aidtrack/internal/core"
	"aidtrack/internal/middleware"
	"aidtrack/internal/models"
	"aidtrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FundRequestHandler assembles, validates and persists fund requests, and
// serves the beneficiary dropdowns with the exclusion rules applied.
type FundRequestHandler struct {
	DB            *gorm.DB
	DraftDebounce time.Duration

	mu       sync.Mutex
	drafts   map[string]*core.DraftScheduler // keyed "<user>:<type>"
	trackers map[uint]*core.Tracker          // keyed by user ID
}

func NewFundRequestHandler(db *gorm.DB, draftDebounce time.Duration) *FundRequestHandler {
	if draftDebounce <= 0 {
		draftDebounce = 500 * time.Millisecond
	}
	return &FundRequestHandler{
		DB:            db,
		DraftDebounce: draftDebounce,
		drafts:        make(map[string]*core.DraftScheduler),
		trackers:      make(map[uint]*core.Tracker),
	}
}

// tracker returns the exclusion tracker for one user, creating it on first
// use. The tracker outlives a single request so its candidate cache can work.
func (h *FundRequestHandler) tracker(userID uint) *core.Tracker {
	h.mu.Lock()
	defer h.mu.Unlock()
	tr, ok := h.trackers[userID]
	if !ok {
		tr = core.NewTracker()
		h.trackers[userID] = tr
	}
	return tr
}

// InvalidateCandidates drops every user's cached candidate lists. The
// data-entry handlers call this after saving or deleting beneficiary rows.
func (h *FundRequestHandler) InvalidateCandidates() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, tr := range h.trackers {
		tr.ClearCandidates()
	}
}

// fundRequestReq is the combined form body; Type selects which half counts.
type fundRequestReq struct {
	Type    string                   `json:"type" binding:"required,oneof=Aid Article"`
	Aid     core.AidRequestInput     `json:"aid"`
	Article core.ArticleRequestInput `json:"article"`
}

// ---------- listing ----------

// ListFundRequests returns request headers, newest first.
func (h *FundRequestHandler) ListFundRequests(c *gin.Context) {
	q := h.DB.Model(&models.FundRequest{})
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var requests []models.FundRequest
	if err := q.Order("created_at DESC, id DESC").Find(&requests).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list fund requests")
		return
	}

	util.Success(c, util.Response{
		"items": requests,
		"total": len(requests),
	})
}

// GetFundRequest returns one request with its recipient or article rows and,
// for the article view, the running cumulative totals the legacy detail
// screen shows per line.
func (h *FundRequestHandler) GetFundRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var req models.FundRequest
	if err := h.DB.Preload("Recipients").Preload("Articles").
		First(&req, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "fund request not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load fund request")
		}
		return
	}

	resp := util.Response{"fund_request": req}
	if req.Type == models.FundRequestArticle {
		values := make([]decimal.Decimal, len(req.Articles))
		for i, a := range req.Articles {
			values[i] = a.Value
		}
		resp["cumulative_totals"] = core.CumulativeTotals(values)
	}
	util.Success(c, resp)
}

// ---------- saving ----------

// CreateFundRequest validates and persists a new request.
func (h *FundRequestHandler) CreateFundRequest(c *gin.Context) {
	h.saveFundRequest(c, 0)
}

// UpdateFundRequest replaces an existing request's header and rows.
func (h *FundRequestHandler) UpdateFundRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}
	h.saveFundRequest(c, uint(id))
}

func (h *FundRequestHandler) saveFundRequest(c *gin.Context, id uint) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req fundRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	var existing *models.FundRequest
	if id > 0 {
		var fr models.FundRequest
		if err := h.DB.First(&fr, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				util.Error(c, http.StatusNotFound, util.CodeNotFound, "fund request not found")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load fund request")
			}
			return
		}
		if fr.Type != req.Type {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "fund request type cannot change")
			return
		}
		existing = &fr
	}

	switch req.Type {
	case models.FundRequestAid:
		h.saveAidRequest(c, user, existing, req.Aid)
	case models.FundRequestArticle:
		h.saveArticleRequest(c, user, existing, req.Article)
	}
}

func (h *FundRequestHandler) saveAidRequest(c *gin.Context, user *models.User, existing *models.FundRequest, input core.AidRequestInput) {
	if errs := core.ValidateAidRequest(input); len(errs) > 0 {
		util.ValidationError(c, errs)
		return
	}

	// display-only recipients (legacy rows the form resubmits verbatim) get
	// their structured number derived from the display string, so exclusion
	// keys and stored rows never degrade to a bare type prefix
	for i := range input.Recipients {
		r := &input.Recipients[i]
		if r.BeneficiaryType != models.BeneficiaryDistrict &&
			r.ApplicationNumber == "" && strings.TrimSpace(r.Beneficiary) != "" {
			r.ApplicationNumber = core.ExtractApplicationNumber(r.Beneficiary)
		}
	}

	// no beneficiary may be paid out by two requests at once
	excludeID := uint(0)
	if existing != nil {
		excludeID = existing.ID
	}
	used, err := h.usedRecipientKeys(excludeID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check beneficiary usage")
		return
	}
	tracker := core.NewTracker()
	tracker.LoadUsed(used)

	var conflicts []string
	for _, r := range input.Recipients {
		key := recipientInputKey(r)
		if key != "" && tracker.InUse(key) {
			conflicts = append(conflicts, key)
		}
	}
	if len(conflicts) > 0 {
		util.Conflict(c, "beneficiary already used by another fund request",
			conflicts, []string{"remove-recipient", "edit-other-request"})
		return
	}

	total := core.AidGrandTotal(input.Recipients)

	var saved models.FundRequest
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		header := models.FundRequest{
			Type:        models.FundRequestAid,
			Status:      models.FundRequestStatusDraft,
			TotalAmount: total,
			AidType:     input.AidType,
			Notes:       input.Notes,
			CreatedBy:   user.ID,
		}
		if existing != nil {
			header.ID = existing.ID
			header.Number = existing.Number
			header.Status = existing.Status
			header.CreatedAt = existing.CreatedAt
			if err := tx.Where("fund_request_id = ?", existing.ID).
				Delete(&models.FundRequestRecipient{}).Error; err != nil {
				return err
			}
			if err := tx.Save(&header).Error; err != nil {
				return err
			}
		} else {
			header.Number = newRequestNumber()
			if err := tx.Create(&header).Error; err != nil {
				return err
			}
		}

		rows := make([]models.FundRequestRecipient, len(input.Recipients))
		for i, r := range input.Recipients {
			rows[i] = models.FundRequestRecipient{
				FundRequestID:     header.ID,
				BeneficiaryType:   r.BeneficiaryType,
				Beneficiary:       r.Beneficiary,
				ApplicationNumber: r.ApplicationNumber,
				NameOfBeneficiary: r.NameOfBeneficiary,
				NameOfInstitution: r.NameOfInstitution,
				FundRequested:     r.FundRequested,
				AadharNumber:      core.NormalizeAadhaar(r.AadharNumber),
				ChequeInFavour:    r.ChequeInFavour,
				ChequeNo:          r.ChequeNo,
				Notes:             r.Notes,
				DistrictName:      r.DistrictName,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		saved = header
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save fund request, please retry")
		return
	}

	action := "fund_request.create"
	if existing != nil {
		action = "fund_request.update"
	}
	audit.Record(h.DB, user.ID, action, "fund_request", saved.Number, gin.H{"type": saved.Type, "total": saved.TotalAmount})

	// a successful save of a new request clears the draft for this type
	if existing == nil {
		h.clearDraft(user.ID, models.FundRequestAid)
	}

	util.Success(c, util.Response{
		"fund_request": saved,
	})
}

func (h *FundRequestHandler) saveArticleRequest(c *gin.Context, user *models.User, existing *models.FundRequest, input core.ArticleRequestInput) {
	if errs := core.ValidateArticleRequest(input); len(errs) > 0 {
		util.ValidationError(c, errs)
		return
	}
	warnings := core.DuplicateLineWarnings(input.Lines)
	values, total := core.RecomputeArticleValues(input.Lines)

	var saved models.FundRequest
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		resolver := core.NewSplitResolver()

		rows := make([]models.FundRequestArticleRow, len(input.Lines))
		for i, l := range input.Lines {
			articleID, articleName, err := h.resolveArticleRef(tx, resolver, l)
			if err != nil {
				return err
			}
			rows[i] = models.FundRequestArticleRow{
				ArticleID:           articleID,
				SlNo:                i + 1,
				ArticleName:         articleName,
				Quantity:            l.Quantity,
				UnitPrice:           l.UnitPrice,
				PriceIncludingGST:   l.PriceIncludingGST,
				Value:               values[i],
				SupplierArticleName: l.SupplierArticleName,
				ChequeInFavour:      l.ChequeInFavour,
				ChequeNo:            l.ChequeNo,
			}
		}

		header := models.FundRequest{
			Type:            models.FundRequestArticle,
			Status:          models.FundRequestStatusDraft,
			TotalAmount:     total,
			SupplierName:    input.SupplierName,
			SupplierAddress: input.SupplierAddress,
			SupplierCity:    input.SupplierCity,
			SupplierState:   input.SupplierState,
			SupplierPincode: input.SupplierPincode,
			GSTNumber:       input.GSTNumber,
			Notes:           input.Notes,
			CreatedBy:       user.ID,
		}
		if existing != nil {
			header.ID = existing.ID
			header.Number = existing.Number
			header.Status = existing.Status
			header.CreatedAt = existing.CreatedAt
			if err := tx.Where("fund_request_id = ?", existing.ID).
				Delete(&models.FundRequestArticleRow{}).Error; err != nil {
				return err
			}
			if err := tx.Save(&header).Error; err != nil {
				return err
			}
		} else {
			header.Number = newRequestNumber()
			if err := tx.Create(&header).Error; err != nil {
				return err
			}
		}

		for i := range rows {
			rows[i].FundRequestID = header.ID
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		saved = header
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save fund request, please retry")
		return
	}

	action := "fund_request.create"
	if existing != nil {
		action = "fund_request.update"
	}
	audit.Record(h.DB, user.ID, action, "fund_request", saved.Number, gin.H{"type": saved.Type, "total": saved.TotalAmount})

	if existing == nil {
		h.clearDraft(user.ID, models.FundRequestArticle)
	}

	resp := util.Response{
		"fund_request": saved,
	}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	util.Success(c, resp)
}

// resolveArticleRef turns a line's article reference into a real catalog id.
// Numeric ids pass through; split:: ids go through the resolver, which finds
// an active article by normalized name or materializes a new inactive one.
func (h *FundRequestHandler) resolveArticleRef(tx *gorm.DB, resolver *core.SplitResolver, l core.ArticleLineInput) (uint, string, error) {
	if !core.IsSplitID(l.ArticleRef) {
		id, err := strconv.Atoi(l.ArticleRef)
		if err != nil || id <= 0 {
			return 0, "", fmt.Errorf("invalid article reference %q", l.ArticleRef)
		}
		name := l.ArticleName
		if name == "" {
			var a models.Article
			if err := tx.First(&a, id).Error; err != nil {
				return 0, "", fmt.Errorf("article %d not found", id)
			}
			name = a.Name
		}
		return uint(id), name, nil
	}

	name := core.SplitName(l.ArticleRef)
	id, err := resolver.Resolve(name,
		func(normalized string) (uint, bool, error) {
			var articles []models.Article
			if err := tx.Where("is_active = ?", true).Find(&articles).Error; err != nil {
				return 0, false, err
			}
			for _, a := range articles {
				if core.NormalizeArticleName(a.Name) == normalized {
					return a.ID, true, nil
				}
			}
			return 0, false, nil
		},
		func(name string) (uint, error) {
			a := models.Article{
				Name:     name,
				ItemType: models.ItemTypeArticle,
				IsActive: false, // exists solely to be referenced, hidden from pickers
			}
			if err := tx.Create(&a).Error; err != nil {
				return 0, err
			}
			return a.ID, nil
		})
	if err != nil {
		return 0, "", err
	}
	return id, strings.TrimSpace(name), nil
}

// DeleteFundRequest removes a request and its rows. Admin only.
func (h *FundRequestHandler) DeleteFundRequest(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var fr models.FundRequest
	if err := h.DB.Preload("Recipients").Preload("Articles").First(&fr, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "fund request not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load fund request")
		}
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("fund_request_id = ?", fr.ID).
			Delete(&models.FundRequestRecipient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("fund_request_id = ?", fr.ID).
			Delete(&models.FundRequestArticleRow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&fr).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete fund request")
		return
	}

	audit.Record(h.DB, user.ID, "fund_request.delete", "fund_request", fr.Number, fr)

	util.Success(c, util.Response{"message": "fund request deleted"})
}

// ---------- beneficiary dropdowns ----------

// AvailableBeneficiaries serves the recipient dropdown for one form row:
// all candidates of the requested type, minus every identity used by a saved
// fund request (optionally excluding the request being edited), except the
// row's own current value. The user's tracker caches unfiltered candidate
// lists across loads; aid_type and district_id filters bypass the cache,
// since filtered lists are not reusable.
func (h *FundRequestHandler) AvailableBeneficiaries(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	btype := c.Query("type")
	switch btype {
	case models.BeneficiaryDistrict, models.BeneficiaryPublic, models.BeneficiaryInstitutions, models.BeneficiaryOthers:
	default:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid beneficiary type")
		return
	}

	excludeID := uint(0)
	if s := c.Query("request_id"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil || id <= 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request_id")
			return
		}
		excludeID = uint(id)
	}

	aidType := strings.TrimSpace(c.Query("aid_type"))
	districtID := 0
	if s := c.Query("district_id"); s != "" {
		var err error
		districtID, err = strconv.Atoi(s)
		if err != nil || districtID <= 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid district_id")
			return
		}
	}
	filtered := aidType != "" || districtID > 0

	used, err := h.usedRecipientKeys(excludeID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check beneficiary usage")
		return
	}

	tracker := h.tracker(user.ID)

	h.mu.Lock()
	tracker.LoadUsed(used)
	candidates, cached := tracker.CachedCandidates(btype)
	h.mu.Unlock()

	if !cached || filtered {
		candidates, err = h.candidatesForType(btype, aidType, districtID)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load candidates")
			return
		}
		if !filtered {
			h.mu.Lock()
			tracker.CacheCandidates(btype, candidates)
			h.mu.Unlock()
		}
	}

	h.mu.Lock()
	available := tracker.Available(candidates, strings.TrimSpace(c.Query("current")))
	h.mu.Unlock()

	util.Success(c, util.Response{
		"items": available,
		"total": len(available),
	})
}

// usedRecipientKeys collects the identity keys of every recipient across all
// saved fund requests, optionally excluding one request (when editing it).
// Structured application numbers are preferred; legacy rows fall back to the
// display-string parse.
func (h *FundRequestHandler) usedRecipientKeys(excludeRequestID uint) ([]string, error) {
	q := h.DB.Model(&models.FundRequestRecipient{})
	if excludeRequestID > 0 {
		q = q.Where("fund_request_id <> ?", excludeRequestID)
	}

	var recipients []models.FundRequestRecipient
	if err := q.Find(&recipients).Error; err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r.BeneficiaryType != models.BeneficiaryDistrict && r.ApplicationNumber != "" {
			keys = append(keys, r.ApplicationNumber)
			continue
		}
		if k := core.RecipientKey(r.BeneficiaryType, r.Beneficiary); k != "" {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// recipientInputKey computes the exclusion key of a form recipient row.
func recipientInputKey(r core.AidRecipientInput) string {
	if r.BeneficiaryType != models.BeneficiaryDistrict && r.ApplicationNumber != "" {
		return r.ApplicationNumber
	}
	return core.RecipientKey(r.BeneficiaryType, r.Beneficiary)
}

// candidatesForType builds dropdown candidates. District candidates are the
// individual aid lines (one per entry row, keyed by the full display string);
// public and institution candidates are one per application number.
func (h *FundRequestHandler) candidatesForType(btype, aidType string, districtID int) ([]core.Candidate, error) {
	like := ""
	if aidType != "" {
		like = "%" + strings.ToLower(aidType) + "%"
	}

	switch btype {
	case models.BeneficiaryDistrict:
		q := h.DB.Model(&models.DistrictEntry{}).
			Joins("JOIN districts ON districts.id = district_entries.district_id").
			Joins("JOIN articles ON articles.id = district_entries.article_id").
			Select("district_entries.*, districts.name AS beneficiary_name")
		if districtID > 0 {
			q = q.Where("district_entries.district_id = ?", districtID)
		}
		if like != "" {
			q = q.Where("LOWER(articles.name) LIKE ? OR LOWER(articles.category) LIKE ?", like, like)
		}
		var rows []struct {
			models.DistrictEntry
			BeneficiaryName string
		}
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]core.Candidate, len(rows))
		for i, r := range rows {
			display := formatBeneficiaryDisplay(r.ApplicationNumber, r.BeneficiaryName, r.TotalAmount)
			out[i] = core.Candidate{Display: display, Key: display}
		}
		return out, nil

	case models.BeneficiaryPublic:
		q := h.DB.Model(&models.PublicEntry{}).
			Joins("JOIN articles ON articles.id = public_entries.article_id")
		if like != "" {
			q = q.Where("LOWER(articles.name) LIKE ? OR LOWER(articles.category) LIKE ?", like, like)
		}
		var rows []models.PublicEntry
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]core.Candidate, len(rows))
		for i, r := range rows {
			out[i] = core.Candidate{
				Display: formatBeneficiaryDisplay(r.ApplicationNumber, r.ApplicantName, r.TotalAmount),
				Key:     r.ApplicationNumber,
			}
		}
		return out, nil

	case models.BeneficiaryInstitutions:
		q := h.DB.Model(&models.InstitutionEntry{}).
			Joins("JOIN articles ON articles.id = institution_entries.article_id")
		if like != "" {
			q = q.Where("LOWER(articles.name) LIKE ? OR LOWER(articles.category) LIKE ?", like, like)
		}
		var flat []models.InstitutionEntry
		if err := q.Find(&flat).Error; err != nil {
			return nil, err
		}
		rows := make([]core.EntryRow, len(flat))
		for i, f := range flat {
			rows[i] = core.EntryRow{
				ApplicationNumber: f.ApplicationNumber,
				BeneficiaryName:   f.InstitutionName,
				TotalAmount:       f.TotalAmount,
				CreatedAt:         f.CreatedAt,
			}
		}
		records := core.GroupByApplicationNumber(rows)
		out := make([]core.Candidate, len(records))
		for i, rec := range records {
			out[i] = core.Candidate{
				Display: formatBeneficiaryDisplay(rec.ApplicationNumber, rec.BeneficiaryName, rec.TotalAccrued),
				Key:     rec.ApplicationNumber,
			}
		}
		return out, nil

	default: // Others: free-form, no stored candidates
		return nil, nil
	}
}

// formatBeneficiaryDisplay renders the "<app_no> - <name> - ₹ <amount>"
// convention the dropdowns and legacy recipient rows share.
func formatBeneficiaryDisplay(appNumber, name string, amount decimal.Decimal) string {
	return fmt.Sprintf("%s - %s - ₹ %s", appNumber, name, amount.StringFixed(2))
}

// newRequestNumber issues a display number for a fund request.
func newRequestNumber() string {
	return "FR-" + strings.ToUpper(uuid.NewString()[:8])
}

// ---------- drafts ----------

// scheduler returns the per-(user, type) debounced draft scheduler.
func (h *FundRequestHandler) scheduler(userID uint, reqType string) *core.DraftScheduler {
	key := fmt.Sprintf("%d:%s", userID, reqType)
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.drafts[key]
	if !ok {
		s = core.NewDraftScheduler(h.DraftDebounce)
		h.drafts[key] = s
	}
	return s
}

func (h *FundRequestHandler) clearDraft(userID uint, reqType string) {
	key := fmt.Sprintf("%d:%s", userID, reqType)
	h.mu.Lock()
	if s, ok := h.drafts[key]; ok {
		s.Close()
		delete(h.drafts, key)
	}
	h.mu.Unlock()
	_ = h.DB.Where("user_id = ? AND request_type = ?", userID, reqType).
		Delete(&models.DraftSnapshot{}).Error
}

type draftPutReq struct {
	Type    string `json:"type" binding:"required,oneof=Aid Article"`
	Payload string `json:"payload" binding:"required"`
}

// PutDraft snapshots the in-progress form state of a new (unsaved) request.
// Writes are debounced: rapid edits collapse into one row update.
func (h *FundRequestHandler) PutDraft(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req draftPutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	userID := user.ID
	db := h.DB
	h.scheduler(userID, req.Type).Touch(func() {
		snapshot := models.DraftSnapshot{
			UserID:      userID,
			RequestType: req.Type,
			Payload:     req.Payload,
		}
		_ = db.Where("user_id = ? AND request_type = ?", userID, req.Type).
			Assign(models.DraftSnapshot{Payload: req.Payload}).
			FirstOrCreate(&snapshot).Error
	})

	util.Success(c, util.Response{"message": "draft scheduled"})
}

// GetDraft restores the snapshot for a blank "new" form, reporting its age
// so the user can choose to keep or discard it.
func (h *FundRequestHandler) GetDraft(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	reqType := c.Query("type")
	if reqType != models.FundRequestAid && reqType != models.FundRequestArticle {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid type")
		return
	}

	// flush any pending debounced write so the caller sees the latest state
	h.scheduler(user.ID, reqType).Flush()

	var snapshot models.DraftSnapshot
	err := h.DB.Where("user_id = ? AND request_type = ?", user.ID, reqType).
		First(&snapshot).Error
	if err == gorm.ErrRecordNotFound {
		util.Success(c, util.Response{"draft": nil})
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load draft")
		return
	}

	util.Success(c, util.Response{
		"draft": gin.H{
			"payload":     snapshot.Payload,
			"updated_at":  snapshot.UpdatedAt,
			"age_seconds": int(time.Since(snapshot.UpdatedAt).Seconds()),
		},
	})
}

// DeleteDraft discards the snapshot explicitly.
func (h *FundRequestHandler) DeleteDraft(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	reqType := c.Query("type")
	if reqType != models.FundRequestAid && reqType != models.FundRequestArticle {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid type")
		return
	}

	h.clearDraft(user.ID, reqType)
	util.Success(c, util.Response{"message": "draft discarded"})
}
