package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/usecase/record"
	"github.com/google/uuid"
)

// RecordService определяет интерфейс сервиса ежедневных записей
type RecordService interface {
	Reconcile(ctx context.Context, p *domain.Principal, kind domain.RecordKind, req *record.ReconcileRequest) (*record.ReconcileResult, error)
	Plan(ctx context.Context, p *domain.Principal, kind domain.RecordKind, req *record.PlanRequest) (*record.ReconcileResult, error)
	Get(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID) (*domain.Record, error)
	List(ctx context.Context, p *domain.Principal, filter domain.RecordFilter) ([]*domain.Record, error)
	Today(ctx context.Context, p *domain.Principal) ([]*domain.Record, error)
	Start(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID, req *record.ClockRequest) (*domain.Record, error)
	Complete(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID, req *record.ClockRequest) (*record.UpdateResult, error)
	UpdateRecordField(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID, req *record.FieldUpdateRequest) (*record.UpdateResult, error)
	UpdateDetailField(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id, detailID uuid.UUID, req *record.FieldUpdateRequest) (*record.UpdateResult, error)
	Cancel(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID, req *record.CancelRequest) (*domain.Record, error)
	Delete(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID) error
}

// RecordHandler обрабатывает запросы ежедневных записей
type RecordHandler struct {
	recordService RecordService
	logger        logger.Logger
}

// NewRecordHandler создает новый handler
func NewRecordHandler(recordService RecordService, logger logger.Logger) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		logger:        logger,
	}
}

// recordTarget разбирает субъект, тип и ID записи
func recordTarget(w http.ResponseWriter, r *http.Request) (*domain.Principal, domain.RecordKind, uuid.UUID, bool) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return nil, "", uuid.Nil, false
	}
	kind, ok := kindParam(w, r)
	if !ok {
		return nil, "", uuid.Nil, false
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return nil, "", uuid.Nil, false
	}
	return principal, kind, id, true
}

// Reconcile возвращает сегодняшнюю запись водителя или создает ее
// POST /api/v1/driver/records/{kind}/reconcile
func (h *RecordHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}

	var req record.ReconcileRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.recordService.Reconcile(r.Context(), principal, kind, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "reconcile record")
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respondSuccess(w, status, result)
}

// Today возвращает сегодняшние записи водителя
// GET /api/v1/driver/records/today
func (h *RecordHandler) Today(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	records, err := h.recordService.Today(r.Context(), principal)
	if err != nil {
		handleError(w, r, h.logger, err, "get today records")
		return
	}

	respondSuccess(w, http.StatusOK, records)
}

// Plan создает запланированную запись
// POST /api/v1/records/{kind}
func (h *RecordHandler) Plan(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}

	var req record.PlanRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.recordService.Plan(r.Context(), principal, kind, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "plan record")
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respondSuccess(w, status, result)
}

// ListRecords возвращает записи по фильтру
// GET /api/v1/records/{kind}?from=&to=&driver_id=&vehicle_id=&route_id=&status=&limit=&offset=
func (h *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}

	filter, fields := parseRecordFilter(r)
	if len(fields) > 0 {
		respondValidationError(w, fields)
		return
	}
	filter.Kind = kind

	records, err := h.recordService.List(r.Context(), principal, filter)
	if err != nil {
		handleError(w, r, h.logger, err, "list records")
		return
	}

	respondSuccess(w, http.StatusOK, records)
}

func parseRecordFilter(r *http.Request) (domain.RecordFilter, map[string]string) {
	q := r.URL.Query()
	fields := map[string]string{}
	filter := domain.RecordFilter{
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}

	if v := q.Get("from"); v != "" {
		day, err := domain.ParseServiceDay(v)
		if err != nil {
			fields["from"] = "must match format 2006-01-02"
		} else {
			filter.From = &day
		}
	}
	if v := q.Get("to"); v != "" {
		day, err := domain.ParseServiceDay(v)
		if err != nil {
			fields["to"] = "must match format 2006-01-02"
		} else {
			filter.To = &day
		}
	}

	ids := map[string]**uuid.UUID{
		"driver_id":  &filter.DriverID,
		"vehicle_id": &filter.VehicleID,
		"route_id":   &filter.RouteID,
	}
	for name, dst := range ids {
		v := q.Get(name)
		if v == "" {
			continue
		}
		id, err := uuid.Parse(v)
		if err != nil {
			fields[name] = "is invalid"
			continue
		}
		*dst = &id
	}

	if v := strings.TrimSpace(q.Get("status")); v != "" {
		status := domain.RecordStatus(v)
		switch status {
		case domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted, domain.StatusCancelled:
			filter.Status = &status
		default:
			fields["status"] = "must be one of: pending in_progress completed cancelled"
		}
	}

	return filter, fields
}

// GetRecord возвращает запись со строками
// GET /api/v1/records/{kind}/{id}
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	principal, kind, id, ok := recordTarget(w, r)
	if !ok {
		return
	}

	rec, err := h.recordService.Get(r.Context(), principal, kind, id)
	if err != nil {
		handleError(w, r, h.logger, err, "get record")
		return
	}

	respondSuccess(w, http.StatusOK, rec)
}

// StartRecord переводит запись в работу
// POST /api/v1/records/{kind}/{id}/start
func (h *RecordHandler) StartRecord(w http.ResponseWriter, r *http.Request) {
	principal, kind, id, ok := recordTarget(w, r)
	if !ok {
		return
	}

	var req record.ClockRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.recordService.Start(r.Context(), principal, kind, id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "start record")
		return
	}

	respondSuccess(w, http.StatusOK, rec)
}

// CompleteRecord завершает запись
// POST /api/v1/records/{kind}/{id}/complete
func (h *RecordHandler) CompleteRecord(w http.ResponseWriter, r *http.Request) {
	principal, kind, id, ok := recordTarget(w, r)
	if !ok {
		return
	}

	var req record.ClockRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.recordService.Complete(r.Context(), principal, kind, id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "complete record")
		return
	}

	respondSuccess(w, http.StatusOK, result)
}

// CancelRecord отменяет запись
// POST /api/v1/records/{kind}/{id}/cancel
func (h *RecordHandler) CancelRecord(w http.ResponseWriter, r *http.Request) {
	principal, kind, id, ok := recordTarget(w, r)
	if !ok {
		return
	}

	var req record.CancelRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.recordService.Cancel(r.Context(), principal, kind, id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "cancel record")
		return
	}

	respondSuccess(w, http.StatusOK, rec)
}

// UpdateRecordField записывает поле записи
// PATCH /api/v1/records/{kind}/{id}
func (h *RecordHandler) UpdateRecordField(w http.ResponseWriter, r *http.Request) {
	principal, kind, id, ok := recordTarget(w, r)
	if !ok {
		return
	}

	var req record.FieldUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.recordService.UpdateRecordField(r.Context(), principal, kind, id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "update record")
		return
	}

	respondSuccess(w, http.StatusOK, result)
}

// UpdateDetailField записывает поле строки записи
// PATCH /api/v1/records/{kind}/{id}/details/{detailID}
func (h *RecordHandler) UpdateDetailField(w http.ResponseWriter, r *http.Request) {
	principal, kind, id, ok := recordTarget(w, r)
	if !ok {
		return
	}
	detailID, ok := uuidParam(w, r, "detailID")
	if !ok {
		return
	}

	var req record.FieldUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.recordService.UpdateDetailField(r.Context(), principal, kind, id, detailID, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "update record detail")
		return
	}

	respondSuccess(w, http.StatusOK, result)
}

// DeleteRecord удаляет запись
// DELETE /api/v1/records/{kind}/{id}
func (h *RecordHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	principal, kind, id, ok := recordTarget(w, r)
	if !ok {
		return
	}

	if err := h.recordService.Delete(r.Context(), principal, kind, id); err != nil {
		handleError(w, r, h.logger, err, "delete record")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
