package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentfunnel/internal/storage"
)

func render(t *testing.T, fn func(c *gin.Context)) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(storage.CodeNotFound))
	assert.Equal(t, http.StatusConflict, StatusFor(storage.CodeAlreadyExists))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(storage.CodeValidation))
	assert.Equal(t, http.StatusTooManyRequests, StatusFor(storage.CodeRateLimited))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(storage.CodeStorageFull))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(storage.CodeUnknown))
}

func TestStorageError_Retryable(t *testing.T) {
	code, body := render(t, func(c *gin.Context) {
		StorageError(c, storage.ProviderFailure("pool exhausted", errors.New("pq: too many clients")))
	})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "PROVIDER_ERROR", errBody["code"])
	assert.Equal(t, true, errBody["retryable"])
	assert.NotContains(t, errBody["message"], "pq")
}

func TestStorageError_ValidationDetails(t *testing.T) {
	code, body := render(t, func(c *gin.Context) {
		StorageError(c, storage.Validation("bad email", "email"))
	})

	assert.Equal(t, http.StatusUnprocessableEntity, code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, map[string]any{"field": "email"}, errBody["details"])
}

func TestStorageError_Unknown(t *testing.T) {
	code, body := render(t, func(c *gin.Context) {
		StorageError(c, errors.New("boom"))
	})

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, false, body["success"])
}

func TestCustomError(t *testing.T) {
	_, body := render(t, func(c *gin.Context) {
		CustomError(c, http.StatusBadRequest, "BAD", errors.New("broken"))
	})
	assert.Equal(t, "broken", body["error"].(map[string]any)["message"])
}

func TestCustomError_Details(t *testing.T) {
	code, body := render(t, func(c *gin.Context) {
		CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", map[string]string{"email": "email"})
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, map[string]any{"email": "email"}, errBody["details"])
}
