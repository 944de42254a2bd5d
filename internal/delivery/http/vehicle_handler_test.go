package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/usecase/vehicle"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// TestVehicleHandler_CreateVehicle тестирует создание машины
func TestVehicleHandler_CreateVehicle(t *testing.T) {
	scope := uuid.New()
	vehicleID := uuid.New()

	tests := []struct {
		name           string
		principal      *domain.Principal
		requestBody    interface{}
		mockSetup      func(*MockVehicleService)
		expectedStatus int
		checkResponse  func(*testing.T, map[string]interface{})
	}{
		{
			name:      "успешное создание",
			principal: CreateTestAdmin(scope),
			requestBody: vehicle.CreateVehicleRequest{
				Name:            "Газель",
				LicensePlate:    "А123ВС777",
				Capacity:        8,
				FuelType:        domain.FuelGasoline,
				CurrentOdometer: 15000,
			},
			mockSetup: func(m *MockVehicleService) {
				m.On("CreateVehicle", mock.Anything, scope, mock.AnythingOfType("*vehicle.CreateVehicleRequest")).
					Return(CreateTestVehicle(vehicleID, scope, "А123ВС777"), nil)
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertSuccess(t, resp)
				data, ok := resp["data"].(map[string]interface{})
				if assert.True(t, ok) {
					assert.Equal(t, "А123ВС777", data["license_plate"])
				}
			},
		},
		{
			name:      "дублирующийся номер",
			principal: CreateTestAdmin(scope),
			requestBody: vehicle.CreateVehicleRequest{
				Name:         "Газель",
				LicensePlate: "А111АА111",
			},
			mockSetup: func(m *MockVehicleService) {
				m.On("CreateVehicle", mock.Anything, scope, mock.Anything).
					Return(nil, domain.ErrVehicleAlreadyExists)
			},
			expectedStatus: http.StatusConflict,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertError(t, resp)
				assert.Equal(t, domain.ErrVehicleAlreadyExists.Error(), resp["error"])
			},
		},
		{
			name:      "не указан номер",
			principal: CreateTestAdmin(scope),
			requestBody: map[string]interface{}{
				"name": "Газель",
			},
			mockSetup:      func(m *MockVehicleService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertError(t, resp)
				fields, ok := resp["fields"].(map[string]interface{})
				if assert.True(t, ok) {
					assert.Equal(t, "is required", fields["license_plate"])
				}
			},
		},
		{
			name:           "невалидный JSON",
			principal:      CreateTestAdmin(scope),
			requestBody:    "invalid",
			mockSetup:      func(m *MockVehicleService) {},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertError(t, resp)
			},
		},
		{
			name:           "суперадминистратор без кода",
			principal:      &domain.Principal{SubjectID: uuid.New(), Role: domain.RoleSuperAdmin},
			requestBody:    vehicle.CreateVehicleRequest{Name: "Газель", LicensePlate: "А123ВС777"},
			mockSetup:      func(m *MockVehicleService) {},
			expectedStatus: http.StatusForbidden,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertError(t, resp)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockVehicleService)
			tt.mockSetup(mockService)

			handler := NewVehicleHandler(mockService, logger.NewNoop())

			req := withPrincipal(newRequest(t, http.MethodPost, "/api/v1/vehicles", tt.requestBody), tt.principal)
			w := httptest.NewRecorder()

			handler.CreateVehicle(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.checkResponse(t, decodeResponse(t, w))
			mockService.AssertExpectations(t)
		})
	}
}

// TestVehicleHandler_GetVehicleByID тестирует получение машины по ID
func TestVehicleHandler_GetVehicleByID(t *testing.T) {
	scope := uuid.New()
	vehicleID := uuid.New()

	tests := []struct {
		name           string
		id             string
		mockSetup      func(*MockVehicleService)
		expectedStatus int
	}{
		{
			name: "машина найдена",
			id:   vehicleID.String(),
			mockSetup: func(m *MockVehicleService) {
				m.On("GetVehicleByID", mock.Anything, scope, vehicleID).
					Return(CreateTestVehicle(vehicleID, scope, "А123ВС777"), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "машина не найдена",
			id:   vehicleID.String(),
			mockSetup: func(m *MockVehicleService) {
				m.On("GetVehicleByID", mock.Anything, scope, vehicleID).
					Return(nil, domain.ErrVehicleNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "невалидный ID",
			id:             "not-a-uuid",
			mockSetup:      func(m *MockVehicleService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockVehicleService)
			tt.mockSetup(mockService)

			handler := NewVehicleHandler(mockService, logger.NewNoop())

			req := newRequest(t, http.MethodGet, "/api/v1/vehicles/"+tt.id, nil)
			req = withPrincipal(req, CreateTestAdmin(scope))
			req = withURLParams(req, map[string]string{"id": tt.id})
			w := httptest.NewRecorder()

			handler.GetVehicleByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

// TestVehicleHandler_ListVehicles тестирует фильтр активности
func TestVehicleHandler_ListVehicles(t *testing.T) {
	scope := uuid.New()
	vehicles := []*domain.Vehicle{
		CreateTestVehicle(uuid.New(), scope, "А123ВС777"),
		CreateTestVehicle(uuid.New(), scope, "В456ДЕ777"),
	}

	mockService := new(MockVehicleService)
	mockService.On("ListVehicles", mock.Anything, scope, false).Return(vehicles, nil)

	handler := NewVehicleHandler(mockService, logger.NewNoop())

	req := withPrincipal(newRequest(t, http.MethodGet, "/api/v1/vehicles?active=false", nil), CreateTestAdmin(scope))
	w := httptest.NewRecorder()

	handler.ListVehicles(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	AssertSuccess(t, resp)
	data, ok := resp["data"].([]interface{})
	if assert.True(t, ok) {
		assert.Len(t, data, 2)
	}
	mockService.AssertExpectations(t)
}

// TestVehicleHandler_RecordOilChange тестирует фиксацию замены масла
func TestVehicleHandler_RecordOilChange(t *testing.T) {
	scope := uuid.New()
	vehicleID := uuid.New()
	odometer := 16000

	t.Run("без тела используется текущий пробег", func(t *testing.T) {
		mockService := new(MockVehicleService)
		mockService.On("RecordOilChange", mock.Anything, scope, vehicleID, mock.MatchedBy(func(req *vehicle.OilChangeRequest) bool {
			return req.Odometer == nil
		})).Return(CreateTestVehicle(vehicleID, scope, "А123ВС777"), nil)

		handler := NewVehicleHandler(mockService, logger.NewNoop())

		req := newRequest(t, http.MethodPost, "/api/v1/vehicles/"+vehicleID.String()+"/oil-change", nil)
		req = withPrincipal(req, CreateTestAdmin(scope))
		req = withURLParams(req, map[string]string{"id": vehicleID.String()})
		w := httptest.NewRecorder()

		handler.RecordOilChange(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("пробег из тела", func(t *testing.T) {
		mockService := new(MockVehicleService)
		mockService.On("RecordOilChange", mock.Anything, scope, vehicleID, mock.MatchedBy(func(req *vehicle.OilChangeRequest) bool {
			return req.Odometer != nil && *req.Odometer == odometer
		})).Return(CreateTestVehicle(vehicleID, scope, "А123ВС777"), nil)

		handler := NewVehicleHandler(mockService, logger.NewNoop())

		req := newRequest(t, http.MethodPost, "/", vehicle.OilChangeRequest{Odometer: &odometer})
		req = withPrincipal(req, CreateTestAdmin(scope))
		req = withURLParams(req, map[string]string{"id": vehicleID.String()})
		w := httptest.NewRecorder()

		handler.RecordOilChange(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("пробег меньше текущего", func(t *testing.T) {
		mockService := new(MockVehicleService)
		mockService.On("RecordOilChange", mock.Anything, scope, vehicleID, mock.Anything).
			Return(nil, domain.ErrInvalidOdometer)

		handler := NewVehicleHandler(mockService, logger.NewNoop())

		req := newRequest(t, http.MethodPost, "/", vehicle.OilChangeRequest{Odometer: &odometer})
		req = withPrincipal(req, CreateTestAdmin(scope))
		req = withURLParams(req, map[string]string{"id": vehicleID.String()})
		w := httptest.NewRecorder()

		handler.RecordOilChange(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		AssertError(t, decodeResponse(t, w))
	})
}

// TestVehicleHandler_DeactivateVehicle тестирует выключение машины
func TestVehicleHandler_DeactivateVehicle(t *testing.T) {
	scope := uuid.New()
	vehicleID := uuid.New()

	mockService := new(MockVehicleService)
	mockService.On("DeactivateVehicle", mock.Anything, scope, vehicleID).Return(nil)

	handler := NewVehicleHandler(mockService, logger.NewNoop())

	req := newRequest(t, http.MethodDelete, "/", nil)
	req = withPrincipal(req, CreateTestAdmin(scope))
	req = withURLParams(req, map[string]string{"id": vehicleID.String()})
	w := httptest.NewRecorder()

	handler.DeactivateVehicle(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
	mockService.AssertExpectations(t)
}
