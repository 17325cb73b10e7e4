package router

import (
	"time"

	"aidtrack/internal/config"
	"aidtrack/internal/handler"
	"aidtrack/internal/middleware"
	"aidtrack/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and the API surface.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db, cfg.Security.BcryptCost))

	articleHandler := handler.NewArticleHandler(db)
	protected.GET("/articles", articleHandler.ListArticles)
	articlesWrite := protected.Group("", middleware.RequirePermission(models.PermArticlesWrite))
	articlesWrite.POST("/articles", articleHandler.CreateArticle)
	articlesWrite.PUT("/articles/:id", articleHandler.UpdateArticle)
	articlesWrite.DELETE("/articles/:id", articleHandler.DeleteArticle)

	districtHandler := handler.NewDistrictHandler(db)
	protected.GET("/districts", districtHandler.ListDistricts)
	protected.GET("/districts/:id/remaining-fund", districtHandler.RemainingFund)
	districtsWrite := protected.Group("", middleware.RequirePermission(models.PermDistrictsWrite))
	districtsWrite.POST("/districts", districtHandler.CreateDistrict)
	districtsWrite.PUT("/districts/:id", districtHandler.UpdateDistrict)
	districtsWrite.DELETE("/districts/:id", districtHandler.DeleteDistrict)

	fundRequestHandler := handler.NewFundRequestHandler(db,
		time.Duration(cfg.App.DraftDebounceMs)*time.Millisecond)

	beneficiaryHandler := handler.NewBeneficiaryHandler(db, fundRequestHandler.InvalidateCandidates)
	protected.GET("/beneficiaries/district", beneficiaryHandler.ListDistrictEntries)
	protected.GET("/beneficiaries/public", beneficiaryHandler.ListPublicEntries)
	protected.GET("/beneficiaries/institution", beneficiaryHandler.ListInstitutionEntries)
	beneficiariesWrite := protected.Group("", middleware.RequirePermission(models.PermBeneficiariesWrite))
	beneficiariesWrite.POST("/beneficiaries/district", beneficiaryHandler.SaveDistrictEntries)
	beneficiariesWrite.POST("/beneficiaries/public", beneficiaryHandler.SavePublicEntry)
	beneficiariesWrite.POST("/beneficiaries/institution", beneficiaryHandler.SaveInstitutionEntries)

	protected.GET("/fund-requests", fundRequestHandler.ListFundRequests)
	protected.GET("/fund-requests/available-beneficiaries", fundRequestHandler.AvailableBeneficiaries)
	protected.GET("/fund-requests/draft", fundRequestHandler.GetDraft)
	protected.GET("/fund-requests/:id", fundRequestHandler.GetFundRequest)
	requestsWrite := protected.Group("", middleware.RequirePermission(models.PermFundRequestsWrite))
	requestsWrite.POST("/fund-requests", fundRequestHandler.CreateFundRequest)
	requestsWrite.PUT("/fund-requests/:id", fundRequestHandler.UpdateFundRequest)
	requestsWrite.PUT("/fund-requests/draft", fundRequestHandler.PutDraft)
	requestsWrite.DELETE("/fund-requests/draft", fundRequestHandler.DeleteDraft)

	exportHandler := handler.NewExportHandler(db)
	exportGroup := protected.Group("", middleware.RequirePermission(models.PermExportRun))
	exportGroup.GET("/export/entries.csv", exportHandler.ExportEntriesCSV)
	exportGroup.GET("/export/entries.xlsx", exportHandler.ExportEntriesXLSX)
	exportGroup.GET("/export/fund-requests.csv", exportHandler.ExportFundRequestsCSV)
	exportGroup.GET("/export/fund-requests.xlsx", exportHandler.ExportFundRequestsXLSX)

	admin := protected.Group("", middleware.RequirePermission(models.PermAdminAll))
	admin.DELETE("/fund-requests/:id", fundRequestHandler.DeleteFundRequest)

	logHandler := handler.NewLogHandler(db, cfg.App.PageSize)
	admin.GET("/logs", logHandler.ListLogs)

	userHandler := handler.NewUserHandler(db, cfg.Security.BcryptCost)
	admin.POST("/admin/users", userHandler.CreateUser)

	backupHandler := handler.NewBackupHandler(db, cfg.Database.Path, cfg.Backup.Dir)
	admin.POST("/backups", backupHandler.CreateBackup)
	admin.GET("/backups", backupHandler.ListBackups)
	admin.GET("/backups/:id/download", backupHandler.DownloadBackup)

	return r
}
