package handler

import (
	"net/http"
	"strconv"
	"strings"

	"aidtrack/internal/models"
	"aidtrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ArticleHandler owns the distributable-articles catalog.
type ArticleHandler struct {
	DB *gorm.DB
}

func NewArticleHandler(db *gorm.DB) *ArticleHandler {
	return &ArticleHandler{DB: db}
}

type articleReq struct {
	Name        string          `json:"name" binding:"required,max=128"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	ItemType    string          `json:"item_type" binding:"required,oneof=Article Aid Project"`
	Category    string          `json:"category" binding:"max=64"`
}

// ListArticles lists catalog rows. Inactive articles (soft-hidden or
// materialized split rows) only appear with include_inactive=1.
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	q := h.DB.Model(&models.Article{})

	if c.Query("include_inactive") != "1" {
		q = q.Where("is_active = ?", true)
	}
	if itemType := c.Query("item_type"); itemType != "" {
		q = q.Where("item_type = ?", itemType)
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ?", like, like)
	}

	var articles []models.Article
	if err := q.Order("name ASC").Find(&articles).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list articles")
		return
	}

	util.Success(c, util.Response{
		"items": articles,
		"total": len(articles),
	})
}

// CreateArticle adds a catalog row.
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req articleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "article name is required")
		return
	}
	if req.CostPerUnit.IsNegative() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cost per unit cannot be negative")
		return
	}

	article := models.Article{
		Name:        req.Name,
		CostPerUnit: req.CostPerUnit,
		ItemType:    req.ItemType,
		Category:    req.Category,
		IsActive:    true,
	}
	if err := h.DB.Create(&article).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save article")
		return
	}

	util.Success(c, util.Response{"article": article})
}

// UpdateArticle edits a catalog row.
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var req articleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if req.CostPerUnit.IsNegative() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cost per unit cannot be negative")
		return
	}

	var article models.Article
	if err := h.DB.First(&article, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "article not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load article")
		}
		return
	}

	article.Name = strings.TrimSpace(req.Name)
	article.CostPerUnit = req.CostPerUnit
	article.ItemType = req.ItemType
	article.Category = req.Category

	if err := h.DB.Save(&article).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save article")
		return
	}

	util.Success(c, util.Response{"article": article})
}

// DeleteArticle soft-hides a catalog row. Historical entries and fund
// requests keep their references, so rows are never removed.
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	res := h.DB.Model(&models.Article{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to remove article")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "article not found")
		return
	}

	util.Success(c, util.Response{"message": "article removed"})
}
