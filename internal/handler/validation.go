package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"Yatra-App/internal/domain/repository"
	"Yatra-App/internal/domain/service"
	"Yatra-App/internal/usecase"
)

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// respondValidationError は400のバリデーションエラーを返す
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "バリデーションエラー",
		"details": err.Error(),
	})
}

// respondUseCaseError はUseCaseのエラーをHTTPステータスに変換して返す
func respondUseCaseError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrPOINotFound), errors.Is(err, repository.ErrTourSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTourTransition):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
