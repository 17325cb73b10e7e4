package middleware

import (
	"bytes"
	"io"
	"net/http"

	"aidtrack/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditMiddleware records every state-changing request of a signed-in user.
// Reads (GET/HEAD) are skipped; domain-level detail (e.g. which rows a
// replace deleted) is recorded separately by the handlers through
// audit.Record.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// keep the body readable for the handler
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}

		user, ok := CurrentUser(c)
		if !ok {
			return
		}
		userID := user.ID

		payload := ""
		if len(bodyBytes) > 0 && len(bodyBytes) < 4000 {
			payload = string(bodyBytes)
		}

		entry := models.AuditLog{
			UserID:    &userID,
			Action:    c.Request.Method + " " + c.Request.URL.Path,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Payload:   payload,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&entry).Error
	}
}
