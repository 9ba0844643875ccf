package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"farm-market-api/internal/domain"
	"farm-market-api/internal/service"
)

// 错误体统一成 {message}，不允许驱动层错误细节漏出去

func JSON(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// Fail 把领域错误归一成 HTTP 状态 + {message}
func Fail(c *gin.Context, err error) {
	var ve *domain.ValidationError
	var ue *domain.UploadError
	var se *domain.StoreError

	switch {
	case errors.As(err, &ve):
		Message(c, http.StatusBadRequest, ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		Message(c, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrForbidden):
		Message(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, service.ErrEmailTaken):
		Message(c, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		Message(c, http.StatusBadRequest, "Invalid email or password")
	case errors.As(err, &ue):
		Message(c, http.StatusInternalServerError, "Error uploading image")
	case errors.As(err, &se):
		Message(c, http.StatusInternalServerError, "Internal Server Error")
	default:
		Message(c, http.StatusInternalServerError, "Internal Server Error")
	}
}
