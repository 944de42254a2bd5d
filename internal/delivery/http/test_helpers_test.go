package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frontandrew/caretrip/internal/delivery/http/middleware"
	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// CreateTestAdmin создает субъект администратора кода
func CreateTestAdmin(scope uuid.UUID) *domain.Principal {
	return &domain.Principal{
		SubjectID:        uuid.New(),
		Role:             domain.RoleAdmin,
		Name:             "Test Admin",
		ManagementCodeID: &scope,
	}
}

// CreateTestDriver создает субъект водителя с сессией
func CreateTestDriver(scope uuid.UUID) *domain.Principal {
	sessionID := uuid.New()
	return &domain.Principal{
		SubjectID:        uuid.New(),
		Role:             domain.RoleDriver,
		Name:             "Test Driver",
		ManagementCodeID: &scope,
		SessionID:        &sessionID,
	}
}

// CreateTestVehicle создает тестовую машину
func CreateTestVehicle(id, scope uuid.UUID, licensePlate string) *domain.Vehicle {
	return &domain.Vehicle{
		ID:                    id,
		ManagementCodeID:      scope,
		Name:                  "Газель",
		LicensePlate:          licensePlate,
		Capacity:              8,
		FuelType:              domain.FuelGasoline,
		CurrentOdometer:       15000,
		LastOilChangeOdometer: 12000,
		IsActive:              true,
	}
}

// newRequest создает запрос с JSON телом; строка передается как есть
func newRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// withPrincipal кладет субъект в контекст запроса, как это делает AuthMiddleware
func withPrincipal(req *http.Request, principal *domain.Principal) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), principal))
}

// withURLParams задает параметры пути chi
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// decodeResponse разбирает JSON ответ
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

// AssertSuccess проверяет успешный ответ API
func AssertSuccess(t *testing.T, response map[string]interface{}) {
	t.Helper()
	success, ok := response["success"].(bool)
	if !ok || !success {
		t.Errorf("Expected success=true, got %v", response)
	}
}

// AssertError проверяет ошибочный ответ API
func AssertError(t *testing.T, response map[string]interface{}) {
	t.Helper()
	success, ok := response["success"].(bool)
	if !ok || success {
		t.Errorf("Expected success=false, got %v", response)
	}
}
