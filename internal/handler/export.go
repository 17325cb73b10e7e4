package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"aidtrack/internal/models"
	"aidtrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler produces CSV and XLSX files of beneficiary entries and fund
// requests.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var entryHeaders = []string{"Application No", "Beneficiary", "Type", "Article", "Quantity", "Cost/Unit", "Total", "Notes", "Date"}

// exportEntryRow is the flattened shape shared by CSV and XLSX export.
type exportEntryRow struct {
	ApplicationNumber string
	Beneficiary       string
	BeneficiaryType   string
	ArticleName       string
	Quantity          int
	CostPerUnit       string
	Total             string
	Notes             string
	Date              string
}

// collectEntries gathers all three entry shapes into one flat export list,
// optionally restricted to a single beneficiary type.
func (h *ExportHandler) collectEntries(filterType string) ([]exportEntryRow, error) {
	var out []exportEntryRow

	if filterType == "" || filterType == models.BeneficiaryDistrict {
		var rows []struct {
			models.DistrictEntry
			ArticleName     string
			BeneficiaryName string
		}
		err := h.DB.Model(&models.DistrictEntry{}).
			Joins("JOIN articles ON articles.id = district_entries.article_id").
			Joins("JOIN districts ON districts.id = district_entries.district_id").
			Select("district_entries.*, articles.name AS article_name, districts.name AS beneficiary_name").
			Order("district_entries.created_at DESC").
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, exportEntryRow{
				ApplicationNumber: r.ApplicationNumber,
				Beneficiary:       r.BeneficiaryName,
				BeneficiaryType:   models.BeneficiaryDistrict,
				ArticleName:       r.ArticleName,
				Quantity:          r.Quantity,
				CostPerUnit:       r.CostPerUnit.StringFixed(2),
				Total:             r.TotalAmount.StringFixed(2),
				Notes:             r.Notes,
				Date:              r.CreatedAt.Format("2006-01-02"),
			})
		}
	}

	if filterType == "" || filterType == models.BeneficiaryPublic {
		var rows []struct {
			models.PublicEntry
			ArticleName string
		}
		err := h.DB.Model(&models.PublicEntry{}).
			Joins("JOIN articles ON articles.id = public_entries.article_id").
			Select("public_entries.*, articles.name AS article_name").
			Order("public_entries.created_at DESC").
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, exportEntryRow{
				ApplicationNumber: r.ApplicationNumber,
				Beneficiary:       r.ApplicantName,
				BeneficiaryType:   models.BeneficiaryPublic,
				ArticleName:       r.ArticleName,
				Quantity:          r.Quantity,
				CostPerUnit:       r.CostPerUnit.StringFixed(2),
				Total:             r.TotalAmount.StringFixed(2),
				Notes:             r.Notes,
				Date:              r.CreatedAt.Format("2006-01-02"),
			})
		}
	}

	if filterType == "" || filterType == models.BeneficiaryInstitutions {
		var rows []struct {
			models.InstitutionEntry
			ArticleName string
		}
		err := h.DB.Model(&models.InstitutionEntry{}).
			Joins("JOIN articles ON articles.id = institution_entries.article_id").
			Select("institution_entries.*, articles.name AS article_name").
			Order("institution_entries.created_at DESC").
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, exportEntryRow{
				ApplicationNumber: r.ApplicationNumber,
				Beneficiary:       r.InstitutionName,
				BeneficiaryType:   models.BeneficiaryInstitutions,
				ArticleName:       r.ArticleName,
				Quantity:          r.Quantity,
				CostPerUnit:       r.CostPerUnit.StringFixed(2),
				Total:             r.TotalAmount.StringFixed(2),
				Notes:             r.Notes,
				Date:              r.CreatedAt.Format("2006-01-02"),
			})
		}
	}

	return out, nil
}

// ExportEntriesCSV exports beneficiary entries as CSV.
func (h *ExportHandler) ExportEntriesCSV(c *gin.Context) {
	rows, err := h.collectEntries(c.Query("type"))
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load entries")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"entries_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM so spreadsheet software detects the ₹ glyphs
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write(entryHeaders)
	for _, r := range rows {
		writer.Write([]string{
			r.ApplicationNumber,
			r.Beneficiary,
			r.BeneficiaryType,
			r.ArticleName,
			fmt.Sprintf("%d", r.Quantity),
			r.CostPerUnit,
			r.Total,
			r.Notes,
			r.Date,
		})
	}
}

// ExportEntriesXLSX exports beneficiary entries as XLSX.
func (h *ExportHandler) ExportEntriesXLSX(c *gin.Context) {
	rows, err := h.collectEntries(c.Query("type"))
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load entries")
		return
	}

	f := excelize.NewFile()
	sheetName := "Beneficiary Entries"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, hd := range entryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, hd)
	}
	for idx, r := range rows {
		row := idx + 2
		values := []interface{}{
			r.ApplicationNumber, r.Beneficiary, r.BeneficiaryType, r.ArticleName,
			r.Quantity, r.CostPerUnit, r.Total, r.Notes, r.Date,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	f.SetColWidth(sheetName, "A", "B", 18)
	f.SetColWidth(sheetName, "C", "D", 15)
	f.SetColWidth(sheetName, "H", "H", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"entries_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}

var requestHeaders = []string{"Number", "Type", "Status", "Aid Type", "Supplier", "Total", "Created"}

// ExportFundRequestsCSV exports fund request headers as CSV.
func (h *ExportHandler) ExportFundRequestsCSV(c *gin.Context) {
	var requests []models.FundRequest
	if err := h.DB.Order("created_at DESC").Find(&requests).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load fund requests")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"fund_requests_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write(requestHeaders)
	for _, r := range requests {
		writer.Write([]string{
			r.Number,
			r.Type,
			r.Status,
			r.AidType,
			r.SupplierName,
			r.TotalAmount.StringFixed(2),
			r.CreatedAt.Format("2006-01-02"),
		})
	}
}

// ExportFundRequestsXLSX exports fund request headers as XLSX.
func (h *ExportHandler) ExportFundRequestsXLSX(c *gin.Context) {
	var requests []models.FundRequest
	if err := h.DB.Order("created_at DESC").Find(&requests).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load fund requests")
		return
	}

	f := excelize.NewFile()
	sheetName := "Fund Requests"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, hd := range requestHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, hd)
	}
	for idx, r := range requests {
		row := idx + 2
		values := []interface{}{
			r.Number, r.Type, r.Status, r.AidType, r.SupplierName,
			r.TotalAmount.StringFixed(2), r.CreatedAt.Format("2006-01-02"),
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "E", "E", 24)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"fund_requests_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
