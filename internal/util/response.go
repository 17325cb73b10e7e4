package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the data payload of the uniform JSON envelope.
type Response map[string]interface{}

// Business codes carried next to HTTP status.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeServerErr    = 50001
)

// Success writes the uniform success envelope.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes the uniform error envelope.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// ValidationError returns the whole field→message map so the form can show
// every problem at once.
func ValidationError(c *gin.Context, errs map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    CodeInvalidParam,
		"message": "validation failed",
		"errors":  errs,
	})
}

// Conflict reports a duplicate-identity conflict along with the existing
// record and the choices offered to the user.
func Conflict(c *gin.Context, msg string, existing interface{}, choices []string) {
	c.JSON(http.StatusConflict, gin.H{
		"code":     CodeConflict,
		"message":  msg,
		"existing": existing,
		"choices":  choices,
	})
}
