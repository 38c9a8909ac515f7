package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"id": 4})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
	assert.JSONEq(t, `{"id":4}`, rec.Body.String())

	rec = httptest.NewRecorder()
	JSON(rec, http.StatusOK, nil)
	assert.JSONEq(t, `null`, rec.Body.String())
}

func TestJSON_EncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]any{"ch": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, rec.Body.String())
}

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"rating": "out_of_range"})
	assert.JSONEq(t, `{"error":"validation_failed","details":{"rating":"out_of_range"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	JSONError(rec, http.StatusNotFound, "not_found", nil)
	assert.JSONEq(t, `{"error":"not_found"}`, rec.Body.String())
}
