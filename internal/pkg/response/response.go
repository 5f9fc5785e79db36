package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentfunnel/internal/storage"
)

// Response is the envelope every endpoint writes
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// CustomError accepts a message string, an error, or a details value such
// as the field map returned by validator.Validate
func CustomError(c *gin.Context, statusCode int, code string, msgOrErr any) {
	switch v := msgOrErr.(type) {
	case string:
		Error(c, statusCode, code, v)
	case error:
		Error(c, statusCode, code, v.Error())
	case nil:
		Error(c, statusCode, code, http.StatusText(statusCode))
	default:
		ErrorWithDetails(c, statusCode, code, http.StatusText(statusCode), v)
	}
}

// StatusFor maps a storage code to its HTTP status
func StatusFor(code storage.Code) int {
	switch code {
	case storage.CodeNotFound:
		return http.StatusNotFound
	case storage.CodeAlreadyExists:
		return http.StatusConflict
	case storage.CodeValidation:
		return http.StatusUnprocessableEntity
	case storage.CodeRateLimited:
		return http.StatusTooManyRequests
	case storage.CodeUnauthorized:
		return http.StatusUnauthorized
	case storage.CodeForbidden:
		return http.StatusForbidden
	case storage.CodeNetwork, storage.CodeProvider, storage.CodeStorageFull:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// StorageError writes err as the error envelope. Errors outside the storage
// taxonomy become a generic 500 and are attached to the gin context for the
// error logger.
func StorageError(c *gin.Context, err error) {
	var se *storage.Error
	if !errors.As(err, &se) {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, string(storage.CodeUnknown), "internal error")
		return
	}

	status := StatusFor(se.Code)
	body := gin.H{
		"code":    string(se.Code),
		"message": se.Message,
	}
	switch {
	case se.Code == storage.CodeValidation && len(se.Details) > 0:
		body["details"] = se.Details
	case se.Retryable:
		// provider internals stay in the logs
		_ = c.Error(err)
		body["message"] = "service temporarily unavailable"
		body["retryable"] = true
	}
	c.JSON(status, gin.H{"success": false, "error": body})
}
