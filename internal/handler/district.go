package handler

import (
	"net/http"
	"strconv"
	"strings"

	"aidtrack/internal/core"
	"aidtrack/internal/models"
	"aidtrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DistrictHandler owns district allotments.
type DistrictHandler struct {
	DB *gorm.DB
}

func NewDistrictHandler(db *gorm.DB) *DistrictHandler {
	return &DistrictHandler{DB: db}
}

type districtReq struct {
	Name           string          `json:"name" binding:"required,max=128"`
	PresidentName  string          `json:"president_name" binding:"max=128"`
	MobileNumber   string          `json:"mobile_number" binding:"max=16"`
	AllottedBudget decimal.Decimal `json:"allotted_budget"`
}

// ListDistricts returns all districts. This is a secondary dropdown read:
// a failure degrades to an empty list rather than blocking the caller's
// primary workflow.
func (h *DistrictHandler) ListDistricts(c *gin.Context) {
	var districts []models.District
	if err := h.DB.Order("name ASC").Find(&districts).Error; err != nil {
		districts = nil
	}
	util.Success(c, util.Response{
		"items": districts,
		"total": len(districts),
	})
}

// CreateDistrict adds a district.
func (h *DistrictHandler) CreateDistrict(c *gin.Context) {
	var req districtReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if err := util.ValidateMobile(req.MobileNumber); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if req.AllottedBudget.IsNegative() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "allotted budget cannot be negative")
		return
	}

	district := models.District{
		Name:           strings.TrimSpace(req.Name),
		PresidentName:  strings.TrimSpace(req.PresidentName),
		MobileNumber:   req.MobileNumber,
		AllottedBudget: req.AllottedBudget,
	}
	if err := h.DB.Create(&district).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save district")
		return
	}

	util.Success(c, util.Response{"district": district})
}

// UpdateDistrict edits a district.
func (h *DistrictHandler) UpdateDistrict(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var req districtReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if err := util.ValidateMobile(req.MobileNumber); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var district models.District
	if err := h.DB.First(&district, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "district not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load district")
		}
		return
	}

	district.Name = strings.TrimSpace(req.Name)
	district.PresidentName = strings.TrimSpace(req.PresidentName)
	district.MobileNumber = req.MobileNumber
	district.AllottedBudget = req.AllottedBudget

	if err := h.DB.Save(&district).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save district")
		return
	}

	util.Success(c, util.Response{"district": district})
}

// DeleteDistrict removes a district that has no recorded entries. A district
// with entries cannot go: its rows anchor application numbers and budget
// history.
func (h *DistrictHandler) DeleteDistrict(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var entryCount int64
	if err := h.DB.Model(&models.DistrictEntry{}).
		Where("district_id = ?", id).
		Count(&entryCount).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check district entries")
		return
	}
	if entryCount > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "district has recorded entries and cannot be removed")
		return
	}

	res := h.DB.Delete(&models.District{}, id)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to remove district")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "district not found")
		return
	}

	util.Success(c, util.Response{"message": "district removed"})
}

// RemainingFund computes a district's allotted budget minus everything
// already recorded against it, minus an optional in-progress form total
// (?pending=). A negative result is returned as-is with over_budget set;
// overrun warns, it never blocks.
func (h *DistrictHandler) RemainingFund(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var district models.District
	if err := h.DB.First(&district, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "district not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load district")
		}
		return
	}

	persisted, err := h.persistedTotal(uint(id))
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute recorded total")
		return
	}

	pending := decimal.Zero
	if p := c.Query("pending"); p != "" {
		pending, err = decimal.NewFromString(p)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid pending amount")
			return
		}
	}

	remaining := core.RemainingBudget(district.AllottedBudget, persisted, pending)

	resp := util.Response{
		"district_id":     district.ID,
		"allotted_budget": district.AllottedBudget,
		"recorded_total":  persisted,
		"pending_total":   pending,
		"remaining":       remaining,
		"over_budget":     remaining.IsNegative(),
	}
	if remaining.IsNegative() {
		resp["warning"] = "allotted budget exceeded"
	}
	util.Success(c, resp)
}

// persistedTotal sums all recorded entry totals for a district.
func (h *DistrictHandler) persistedTotal(districtID uint) (decimal.Decimal, error) {
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
