package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"aidtrack/internal/middleware"
	"aidtrack/internal/models"
	"aidtrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupHandler copies the sqlite database file into the backup directory
// and serves the copies back for download.
type BackupHandler struct {
	DB        *gorm.DB
	DBPath    string
	BackupDir string
}

func NewBackupHandler(db *gorm.DB, dbPath, backupDir string) *BackupHandler {
	return &BackupHandler{DB: db, DBPath: dbPath, BackupDir: backupDir}
}

// CreateBackup copies the database file and records the backup.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create backup dir")
		return
	}

	id := uuid.NewString()
	fileName := fmt.Sprintf("aidtrack_%s_%s.db", time.Now().Format("20060102_150405"), id[:8])
	dst := filepath.Join(h.BackupDir, fileName)

	size, err := copyFile(h.DBPath, dst)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to copy database")
		return
	}

	backup := models.Backup{
		ID:        id,
		FileName:  fileName,
		SizeBytes: size,
		CreatedBy: user.ID,
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to record backup")
		return
	}

	util.Success(c, util.Response{"backup": backup})
}

// ListBackups lists recorded backups, newest first.
func (h *BackupHandler) ListBackups(c *gin.Context) {
	var backups []models.Backup
	if err := h.DB.Order("created_at DESC").Find(&backups).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list backups")
		return
	}
	util.Success(c, util.Response{
		"items": backups,
		"total": len(backups),
	})
}

// DownloadBackup streams a backup file.
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	var backup models.Backup
	if err := h.DB.First(&backup, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load backup")
		}
		return
	}

	path := filepath.Join(h.BackupDir, backup.FileName)
	if _, err := os.Stat(path); err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup file missing on disk")
		return
	}

	c.FileAttachment(path, backup.FileName)
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	n, err := io.Copy(out, in)
	if err != nil {
		return 0, err
	}
	return n, out.Sync()
}
