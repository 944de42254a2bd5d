package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/frontandrew/caretrip/internal/delivery/http/middleware"
	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Ограничение размера тела запроса
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// В ошибках используем имена полей из json тегов
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// respondJSON отправляет JSON ответ
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"Failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondSuccess отправляет успешный ответ с данными
func respondSuccess(w http.ResponseWriter, code int, data interface{}) {
	respondJSON(w, code, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// respondError отправляет JSON ответ с ошибкой
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondValidationError отправляет 422 с сообщениями по полям
func respondValidationError(w http.ResponseWriter, fields map[string]string) {
	respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"success": false,
		"error":   "Validation failed",
		"fields":  fields,
	})
}

// decodeAndValidate разбирает JSON тело и проверяет validate теги
// При ошибке ответ уже отправлен
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			respondValidationError(w, fieldMessages(verrs))
			return false
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	return true
}

func fieldMessages(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		switch fe.Tag() {
		case "required":
			fields[name] = "is required"
		case "email":
			fields[name] = "must be a valid email"
		case "min":
			fields[name] = "must be at least " + fe.Param()
		case "max":
			fields[name] = "must be at most " + fe.Param()
		case "len":
			fields[name] = "must be exactly " + fe.Param() + " characters"
		case "oneof":
			fields[name] = "must be one of: " + fe.Param()
		case "datetime":
			fields[name] = "must match format " + fe.Param()
		default:
			fields[name] = "is invalid"
		}
	}
	return fields
}

// errorStatuses сопоставляет доменные ошибки HTTP кодам; порядок важен для errors.Is
var errorStatuses = []struct {
	err    error
	status int
}{
	// 401
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrTokenExpired, http.StatusUnauthorized},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
	{domain.ErrSessionNotFound, http.StatusUnauthorized},

	// 403
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrAccountInactive, http.StatusForbidden},
	{domain.ErrManagementCodeInactive, http.StatusForbidden},
	{domain.ErrManagementScopeRequired, http.StatusForbidden},

	// 404
	{domain.ErrAdminNotFound, http.StatusNotFound},
	{domain.ErrOrganizationNotFound, http.StatusNotFound},
	{domain.ErrManagementCodeNotFound, http.StatusNotFound},
	{domain.ErrDriverNotFound, http.StatusNotFound},
	{domain.ErrVehicleNotFound, http.StatusNotFound},
	{domain.ErrRouteNotFound, http.StatusNotFound},
	{domain.ErrDestinationNotFound, http.StatusNotFound},
	{domain.ErrRiderNotFound, http.StatusNotFound},
	{domain.ErrAddressNotFound, http.StatusNotFound},
	{domain.ErrRecordNotFound, http.StatusNotFound},
	{domain.ErrDetailNotFound, http.StatusNotFound},
	{domain.ErrNotFound, http.StatusNotFound},

	// 409
	{domain.ErrAdminAlreadyExists, http.StatusConflict},
	{domain.ErrDriverAlreadyExists, http.StatusConflict},
	{domain.ErrVehicleAlreadyExists, http.StatusConflict},
	{domain.ErrRouteAlreadyExists, http.StatusConflict},
	{domain.ErrRecordAlreadyExists, http.StatusConflict},
	{domain.ErrManagementCodeExists, http.StatusConflict},
	{domain.ErrInvalidStatusTransition, http.StatusConflict},
	{domain.ErrRecordClosed, http.StatusConflict},
	{domain.ErrCompletedFieldRequired, http.StatusConflict},
	{domain.ErrServiceDateOutOfRange, http.StatusBadRequest},
	{domain.ErrLastAddress, http.StatusConflict},
	{domain.ErrConflict, http.StatusConflict},

	// 400
	{domain.ErrInvalidEmail, http.StatusBadRequest},
	{domain.ErrInvalidPassword, http.StatusBadRequest},
	{domain.ErrInvalidAdminData, http.StatusBadRequest},
	{domain.ErrInvalidRole, http.StatusBadRequest},
	{domain.ErrInvalidOrganizationData, http.StatusBadRequest},
	{domain.ErrInvalidManagementCode, http.StatusBadRequest},
	{domain.ErrInvalidDriverData, http.StatusBadRequest},
	{domain.ErrInvalidLicensePlate, http.StatusBadRequest},
	{domain.ErrInvalidVehicleData, http.StatusBadRequest},
	{domain.ErrInvalidOdometer, http.StatusBadRequest},
	{domain.ErrInvalidRouteData, http.StatusBadRequest},
	{domain.ErrInvalidDestinationData, http.StatusBadRequest},
	{domain.ErrInvalidRiderData, http.StatusBadRequest},
	{domain.ErrInvalidAddressData, http.StatusBadRequest},
	{domain.ErrInvalidAddressType, http.StatusBadRequest},
	{domain.ErrPrimaryAddressNeeded, http.StatusBadRequest},
	{domain.ErrInvalidRecordKind, http.StatusBadRequest},
	{domain.ErrInvalidRecordData, http.StatusBadRequest},
	{domain.ErrInvalidRecordField, http.StatusBadRequest},
	{domain.ErrInvalidClockTime, http.StatusBadRequest},
	{domain.ErrRouteRequired, http.StatusBadRequest},
	{domain.ErrInvalidSession, http.StatusBadRequest},
	{domain.ErrBadRequest, http.StatusBadRequest},

	// 503
	{domain.ErrManagementCodeExhausted, http.StatusServiceUnavailable},
}

// errorStatus возвращает HTTP код и безопасное сообщение для доменной ошибки
func errorStatus(err error) (int, string, bool) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, e.err.Error(), true
		}
	}
	return http.StatusInternalServerError, "", false
}

// handleError отправляет ответ по доменной ошибке; неизвестные ошибки логируются как есть
func handleError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error, action string) {
	if status, message, ok := errorStatus(err); ok {
		respondError(w, status, message)
		return
	}

	log.Error("Failed to "+action, map[string]interface{}{
		"error":  err.Error(),
		"method": r.Method,
		"path":   r.URL.Path,
	})
	respondError(w, http.StatusInternalServerError, "Failed to "+action)
}

// uuidParam извлекает UUID из параметра пути
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// kindParam извлекает тип записи из пути
func kindParam(w http.ResponseWriter, r *http.Request) (domain.RecordKind, bool) {
	kind, err := domain.ParseRecordKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return kind, true
}

// principalFrom возвращает субъект запроса, положенный AuthMiddleware
func principalFrom(w http.ResponseWriter, r *http.Request) (*domain.Principal, bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return principal, true
}

// scopeFrom возвращает код управления субъекта запроса
func scopeFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return uuid.Nil, false
	}
	scope, err := principal.Scope()
	if err != nil {
		respondError(w, http.StatusForbidden, err.Error())
		return uuid.Nil, false
	}
	return scope, true
}

// activeOnly читает фильтр ?active=; по умолчанию только активные
func activeOnly(r *http.Request) bool {
	value := r.URL.Query().Get("active")
	if value == "" {
		return true
	}
	active, err := strconv.ParseBool(value)
	if err != nil {
		return true
	}
	return active
}

// queryInt читает целый параметр запроса
func queryInt(r *http.Request, name string, def int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return value
}
