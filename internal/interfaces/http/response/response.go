package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "chain-comics.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. Insufficient-credit failures carry the
// required and available amounts so clients can render a top-up prompt;
// retryable errors advertise themselves so clients know to poll again.
func Error(c *gin.Context, err error) {
	var insufficientErr *domainerrors.InsufficientCreditsError
	if errors.As(err, &insufficientErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     domainerrors.CodeInsufficientCredits,
			"required":  insufficientErr.Required,
			"available": insufficientErr.Available,
		})
		return
	}

	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = domainerrors.InternalError(err)
	}

	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message, // Backward compatibility
	}
	if appErr.Retryable {
		body["retryable"] = true
	}
	c.JSON(appErr.Status, body)
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
