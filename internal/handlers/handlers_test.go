package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diewo77/go-rems/auth"
	"github.com/diewo77/go-rems/gate"
	"github.com/diewo77/go-rems/httpx"
	"github.com/diewo77/go-rems/internal/chat"
	"github.com/diewo77/go-rems/internal/leads"
	"github.com/diewo77/go-rems/internal/logging"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/moderation"
	"github.com/diewo77/go-rems/internal/services"
	"github.com/diewo77/go-rems/internal/store"
	"github.com/diewo77/go-rems/validation"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{validation.Violations{"title": "required"}, http.StatusUnprocessableEntity, "validation_failed"},
		{httpx.ErrInvalidID, http.StatusBadRequest, "invalid_id"},
		{fmt.Errorf("approve listing 3: %w", store.ErrNotFound), http.StatusNotFound, "not_found"},
		{leads.ErrNotFound, http.StatusNotFound, "not_found"},
		{chat.ErrPropertyNotFound, http.StatusNotFound, "not_found"},
		{services.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
		{auth.ErrBadCredentials, http.StatusUnauthorized, "bad_credentials"},
		{services.ErrForbidden, http.StatusForbidden, "forbidden"},
		{gate.ErrUnauthorized, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("approve agent 2: %w", moderation.ErrNotAgent), http.StatusConflict, "not_agent"},
		{leads.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
		{chat.ErrEmptyMessage, http.StatusBadRequest, "empty_message"},
		{chat.ErrMessageTooLong, http.StatusBadRequest, "message_too_long"},
		{chat.ErrInvalidClientID, http.StatusBadRequest, "invalid_client_id"},
		{chat.ErrReceiverRequired, http.StatusBadRequest, "receiver_required"},
		{chat.ErrClientIDConflict, http.StatusConflict, "client_id_conflict"},
		{gate.ErrNoRole, http.StatusForbidden, "forbidden"},
		{errors.New("connection refused"), http.StatusInternalServerError, "db_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.err.Error(), func(t *testing.T) {
			status, code, _ := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestFail_JSONCarriesViolations(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/agent/listings", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	fail(rec, req, logging.Discard(), "/agent/listings", validation.Violations{"price": "must_be_positive"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"validation_failed","details":{"price":"must_be_positive"}}`, rec.Body.String())
}

func TestFail_HTMLRedirects(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		back     string
		location string
	}{
		{"back with flash", services.ErrForbidden, "/properties/4", "/properties/4?flash=forbidden"},
		{"anonymous goes to login", services.ErrUnauthenticated, "/properties/4", "/login"},
		{"existing query keeps it", leads.ErrInvalidStatus, "/agent/leads?tab=all", "/agent/leads?tab=all&flash=invalid_status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			fail(rec, httptest.NewRequest(http.MethodPost, "/x", nil), logging.Discard(), tt.back, tt.err)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestWantsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	assert.False(t, wantsJSON(req))
	req.Header.Set("Content-Type", "application/json")
	assert.True(t, wantsJSON(req))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Accept", "application/json")
	assert.True(t, wantsJSON(req))
	req.Header.Set("Accept", "text/html,application/json")
	assert.False(t, wantsJSON(req))
}

func TestCounterparts(t *testing.T) {
	msgs := []struct{ from, to uint }{{5, 1}, {1, 5}, {9, 1}, {1, 7}}
	in := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		in = append(in, models.Message{SenderID: m.from, ReceiverID: m.to})
	}
	assert.Equal(t, []uint{5, 7, 9}, counterparts(in, 1))
}
