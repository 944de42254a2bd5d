package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKnown  bool
	}{
		{"неверные учетные данные", domain.ErrInvalidCredentials, http.StatusUnauthorized, true},
		{"нет сессии", domain.ErrSessionNotFound, http.StatusUnauthorized, true},
		{"нет кода управления", domain.ErrManagementScopeRequired, http.StatusForbidden, true},
		{"обернутая ошибка поиска", fmt.Errorf("load route: %w", domain.ErrRouteNotFound), http.StatusNotFound, true},
		{"последний адрес", domain.ErrLastAddress, http.StatusConflict, true},
		{"неверное время", domain.ErrInvalidClockTime, http.StatusBadRequest, true},
		{"коды исчерпаны", domain.ErrManagementCodeExhausted, http.StatusServiceUnavailable, true},
		{"стирание поля завершенной записи", domain.ErrCompletedFieldRequired, http.StatusConflict, true},
		{"дата вне смены водителя", domain.ErrServiceDateOutOfRange, http.StatusBadRequest, true},
		{"неизвестная ошибка", errors.New("boom"), http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message, known := errorStatus(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantKnown, known)
			if known {
				assert.NotEmpty(t, message)
				assert.NotContains(t, message, "load route")
			}
		})
	}
}

func TestDecodeAndValidate(t *testing.T) {
	type payload struct {
		Name  string `json:"name" validate:"required,max=5"`
		Count int    `json:"count" validate:"min=1"`
		Kind  string `json:"kind,omitempty" validate:"omitempty,oneof=a b"`
	}

	t.Run("валидное тело", func(t *testing.T) {
		var dst payload
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok","count":2,"kind":"a"}`))

		assert.True(t, decodeAndValidate(w, r, &dst))
		assert.Equal(t, "ok", dst.Name)
	})

	t.Run("сообщения по json именам полей", func(t *testing.T) {
		var dst payload
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"toolong","count":0,"kind":"c"}`))

		assert.False(t, decodeAndValidate(w, r, &dst))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, "Validation failed", resp["error"])
		fields := resp["fields"].(map[string]interface{})
		assert.Equal(t, "must be at most 5", fields["name"])
		assert.Equal(t, "must be at least 1", fields["count"])
		assert.Equal(t, "must be one of: a b", fields["kind"])
	})

	t.Run("пустое тело", func(t *testing.T) {
		var dst payload
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))

		assert.False(t, decodeAndValidate(w, r, &dst))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?active=false&limit=10&offset=x", nil)
	assert.False(t, activeOnly(r))
	assert.Equal(t, 10, queryInt(r, "limit", 50))
	assert.Equal(t, 0, queryInt(r, "offset", 0))

	r = httptest.NewRequest(http.MethodGet, "/?active=maybe", nil)
	assert.True(t, activeOnly(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, activeOnly(r))
	assert.Equal(t, 50, queryInt(r, "limit", 50))
}
