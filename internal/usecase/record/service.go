package record

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/repository"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// ReconcileRequest - открытие записи водителем на сегодня (или на указанную дату)
type ReconcileRequest struct {
	RouteID *uuid.UUID `json:"route_id,omitempty"`
	Date    string     `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// PlanRequest - запрос администратора на создание записи в статусе pending
type PlanRequest struct {
	DriverID  uuid.UUID   `json:"driver_id" validate:"required"`
	VehicleID uuid.UUID   `json:"vehicle_id" validate:"required"`
	RouteID   *uuid.UUID  `json:"route_id,omitempty"`
	RiderIDs  []uuid.UUID `json:"rider_ids,omitempty"`
	Date      string      `json:"date" validate:"required,datetime=2006-01-02"`
}

// ClockRequest - время и пробег для начала или завершения записи
// Пустое время означает текущее время
type ClockRequest struct {
	Time     string `json:"time,omitempty"`
	Odometer *int   `json:"odometer,omitempty" validate:"omitempty,min=0"`
}

// CancelRequest - запрос на отмену записи
type CancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// FieldUpdateRequest - запись одного поля
type FieldUpdateRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

// ReconcileResult - запись и признак того, что она создана этим вызовом
type ReconcileResult struct {
	Record  *domain.Record `json:"record"`
	Created bool           `json:"created"`
}

// UpdateResult - запись после изменения и рекомендательные предупреждения
type UpdateResult struct {
	Record    *domain.Record `json:"record"`
	Warnings  []string       `json:"warnings"`
	Completed bool           `json:"completed"`
}

// EventPublisher публикует события жизненного цикла записей
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Repositories - хранилища, с которыми работает сервис записей
type Repositories struct {
	Records  repository.RecordRepository
	Drivers  repository.DriverRepository
	Vehicles repository.VehicleRepository
	Routes   repository.RouteRepository
	Riders   repository.RiderRepository
	Sessions repository.SessionRepository
}

// Service содержит бизнес-логику ежедневных записей
type Service struct {
	repos     Repositories
	publisher EventPublisher
	logger    logger.Logger
	location  *time.Location
	now       func() time.Time
}

// NewService создает новый экземпляр RecordService
func NewService(repos Repositories, publisher EventPublisher, location *time.Location, logger logger.Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repos:     repos,
		publisher: publisher,
		logger:    logger,
		location:  location,
		now:       time.Now,
	}
}

func (s *Service) today() time.Time {
	return domain.ServiceDay(s.now(), s.location)
}

func (s *Service) clockNow() string {
	return s.now().In(s.location).Format("15:04")
}

// Reconcile возвращает запись водителя на дату или создает ее в статусе in_progress
// Повторный вызов с тем же ключом возвращает ту же запись
func (s *Service) Reconcile(ctx context.Context, p *domain.Principal, kind domain.RecordKind, req *ReconcileRequest) (*ReconcileResult, error) {
	if p == nil || !p.IsDriver() || p.SessionID == nil {
		return nil, domain.ErrForbidden
	}

	session, err := s.repos.Sessions.Get(ctx, *p.SessionID)
	if err != nil {
		return nil, err
	}
	if session.DriverID != p.SubjectID {
		return nil, domain.ErrSessionNotFound
	}

	day, err := s.driverDay(req)
	if err != nil {
		return nil, err
	}

	routeID := session.RouteID
	if req != nil && req.RouteID != nil {
		routeID = req.RouteID
	}

	rec := &domain.Record{
		Kind:             kind,
		ManagementCodeID: session.ManagementCodeID,
		DriverID:         session.DriverID,
		VehicleID:        session.VehicleID,
		RouteID:          routeID,
		ServiceDate:      day,
		Status:           domain.StatusInProgress,
	}
	clock := s.clockNow()
	rec.StartTime = &clock

	return s.open(ctx, rec, session.RiderIDs)
}

// driverDay возвращает дату записи водителя: сегодня или вчера для смены через полночь
// Произвольные даты доступны только администратору через Plan
func (s *Service) driverDay(req *ReconcileRequest) (time.Time, error) {
	today := s.today()
	if req == nil || req.Date == "" {
		return today, nil
	}

	day, err := domain.ParseServiceDay(req.Date)
	if err != nil {
		return time.Time{}, err
	}
	if !day.Equal(today) && !day.Equal(today.AddDate(0, 0, -1)) {
		return time.Time{}, domain.ErrServiceDateOutOfRange
	}
	return day, nil
}

// Plan создает запись в статусе pending от имени администратора
func (s *Service) Plan(ctx context.Context, p *domain.Principal, kind domain.RecordKind, req *PlanRequest) (*ReconcileResult, error) {
	if !p.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	scope, err := p.Scope()
	if err != nil {
		return nil, err
	}

	day, err := domain.ParseServiceDay(req.Date)
	if err != nil {
		return nil, err
	}

	driver, err := s.repos.Drivers.GetByID(ctx, scope, req.DriverID)
	if err != nil {
		return nil, err
	}
	if !driver.IsActive {
		return nil, domain.ErrDriverNotFound
	}

	rec := &domain.Record{
		Kind:             kind,
		ManagementCodeID: scope,
		DriverID:         driver.ID,
		VehicleID:        req.VehicleID,
		RouteID:          req.RouteID,
		ServiceDate:      day,
		Status:           domain.StatusPending,
	}

	return s.open(ctx, rec, req.RiderIDs)
}

// open проверяет справочники, готовит строки и выполняет атомарную вставку
func (s *Service) open(ctx context.Context, rec *domain.Record, riderIDs []uuid.UUID) (*ReconcileResult, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	scope := rec.ManagementCodeID

	vehicle, err := s.repos.Vehicles.GetByID(ctx, scope, rec.VehicleID)
	if err != nil {
		return nil, err
	}
	if !vehicle.IsActive {
		return nil, domain.ErrVehicleNotFound
	}

	var seeds []*domain.Detail
	if rec.RouteID != nil {
		route, err := s.repos.Routes.GetByID(ctx, scope, *rec.RouteID)
		if err != nil {
			return nil, err
		}
		if !route.IsActive {
			return nil, domain.ErrRouteNotFound
		}
		if rec.Kind == domain.RecordKindDelivery {
			seeds = destinationSeeds(route)
		}
	}

	if rec.Kind == domain.RecordKindTransportation {
		seeds, err = s.riderSeeds(ctx, scope, riderIDs)
		if err != nil {
			return nil, err
		}
	}

	// Пробег фиксируется при начале поездки
	if rec.Status == domain.StatusInProgress {
		km, err := s.startOdometer(ctx, vehicle, rec.ServiceDate)
		if err != nil {
			return nil, err
		}
		rec.StartOdometer = &km
	}

	created, err := s.repos.Records.Reconcile(ctx, rec, seeds)
	if err != nil {
		s.logger.Error("Failed to reconcile record", map[string]interface{}{
			"kind":       rec.Kind,
			"driver_id":  rec.DriverID,
			"vehicle_id": rec.VehicleID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to reconcile record: %w", err)
	}

	stored, err := s.repos.Records.GetByID(ctx, rec.Kind, scope, rec.ID)
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("Record created", map[string]interface{}{
			"record_id": stored.ID,
			"kind":      stored.Kind,
			"status":    stored.Status,
			"details":   len(stored.Details),
		})
		if stored.Status == domain.StatusInProgress {
			s.publish(ctx, domain.EventRecordStarted, stored, nil)
		}
	}

	return &ReconcileResult{Record: stored, Created: created}, nil
}

func destinationSeeds(route *domain.Route) []*domain.Detail {
	domain.SortDestinations(route.Destinations)
	seeds := make([]*domain.Detail, 0, len(route.Destinations))
	for _, d := range route.Destinations {
		destID := d.ID
		seeds = append(seeds, &domain.Detail{DestinationID: &destID, Label: d.Name})
	}
	return seeds
}

// riderSeeds возвращает строки в порядке выбора пассажиров
func (s *Service) riderSeeds(ctx context.Context, scope uuid.UUID, riderIDs []uuid.UUID) ([]*domain.Detail, error) {
	if len(riderIDs) == 0 {
		return nil, nil
	}

	riders, err := s.repos.Riders.ListByIDs(ctx, scope, riderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load riders: %w", err)
	}
	byID := make(map[uuid.UUID]*domain.Rider, len(riders))
	for _, r := range riders {
		byID[r.ID] = r
	}

	seeds := make([]*domain.Detail, 0, len(riderIDs))
	for _, id := range riderIDs {
		rider, ok := byID[id]
		if !ok {
			return nil, domain.ErrRiderNotFound
		}
		riderID := rider.ID
		seeds = append(seeds, &domain.Detail{RiderID: &riderID, Label: rider.FullName})
	}
	return seeds, nil
}

func (s *Service) startOdometer(ctx context.Context, vehicle *domain.Vehicle, day time.Time) (int, error) {
	last, err := s.repos.Records.LastEndOdometer(ctx, vehicle.ID, day)
	if err != nil {
		return 0, fmt.Errorf("failed to get last odometer: %w", err)
	}
	return domain.StartOdometerFor(last, vehicle), nil
}

// load возвращает запись с проверкой доступа: водитель видит только свои записи
func (s *Service) load(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID) (*domain.Record, error) {
	scope, err := p.Scope()
	if err != nil {
		return nil, err
	}

	rec, err := s.repos.Records.GetByID(ctx, kind, scope, id)
	if err != nil {
		return nil, err
	}
	if p.IsDriver() && rec.DriverID != p.SubjectID {
		return nil, domain.ErrRecordNotFound
	}

	return rec, nil
}

// Get возвращает запись со строками
func (s *Service) Get(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID) (*domain.Record, error) {
	return s.load(ctx, p, kind, id)
}

// List возвращает записи кода по фильтру; водителю только свои
func (s *Service) List(ctx context.Context, p *domain.Principal, filter domain.RecordFilter) ([]*domain.Record, error) {
	scope, err := p.Scope()
	if err != nil {
		return nil, err
	}
	filter.ManagementCodeID = scope
	if p.IsDriver() {
		driverID := p.SubjectID
		filter.DriverID = &driverID
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return s.repos.Records.List(ctx, filter)
}

// Today возвращает сегодняшние записи водителя обоих типов
func (s *Service) Today(ctx context.Context, p *domain.Principal) ([]*domain.Record, error) {
	if !p.IsDriver() {
		return nil, domain.ErrForbidden
	}

	day := s.today()
	var result []*domain.Record
	for _, kind := range []domain.RecordKind{domain.RecordKindDelivery, domain.RecordKindTransportation} {
		records, err := s.List(ctx, p, domain.RecordFilter{Kind: kind, From: &day, To: &day})
		if err != nil {
			return nil, err
		}
		result = append(result, records...)
	}

	return result, nil
}

// Start переводит запланированную запись в in_progress
func (s *Service) Start(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID, req *ClockRequest) (*domain.Record, error) {
	rec, err := s.load(ctx, p, kind, id)
	if err != nil {
		return nil, err
	}
	from := rec.Status
	if from != domain.StatusPending {
		return nil, domain.ErrInvalidStatusTransition
	}

	clock, err := s.clockOrNow(req)
	if err != nil {
		return nil, err
	}
	rec.StartTime = &clock

	if req != nil && req.Odometer != nil {
		km := *req.Odometer
		rec.StartOdometer = &km
	} else if rec.StartOdometer == nil {
		vehicle, err := s.repos.Vehicles.GetByID(ctx, rec.ManagementCodeID, rec.VehicleID)
		if err != nil {
			return nil, err
		}
		km, err := s.startOdometer(ctx, vehicle, rec.ServiceDate)
		if err != nil {
			return nil, err
		}
		rec.StartOdometer = &km
	}

	if err := rec.TransitionTo(domain.StatusInProgress, s.now()); err != nil {
		return nil, err
	}
	if err := s.repos.Records.Transition(ctx, rec, from); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventRecordStarted, rec, nil)
	return rec, nil
}

// Complete завершает запись, заполняя конечные время и пробег
func (s *Service) Complete(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID, req *ClockRequest) (*UpdateResult, error) {
	rec, err := s.load(ctx, p, kind, id)
	if err != nil {
		return nil, err
	}
	if rec.Status == domain.StatusCancelled {
		return nil, domain.ErrRecordClosed
	}
	from := rec.Status
	if from != domain.StatusInProgress {
		return nil, domain.ErrInvalidStatusTransition
	}

	clock, err := s.clockOrNow(req)
	if err != nil {
		return nil, err
	}
	rec.EndTime = &clock

	if req != nil && req.Odometer != nil {
		km := *req.Odometer
		rec.EndOdometer = &km
	}
	if rec.EndOdometer == nil {
		return nil, domain.ErrInvalidOdometer
	}

	warnings := rec.Warnings()
	if err := rec.TransitionTo(domain.StatusCompleted, s.now()); err != nil {
		return nil, err
	}
	if err := s.repos.Records.Transition(ctx, rec, from); err != nil {
		return nil, err
	}

	s.afterCompleted(ctx, rec)
	return &UpdateResult{Record: rec, Warnings: warnings, Completed: true}, nil
}

func (s *Service) clockOrNow(req *ClockRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.Time) == "" {
		return s.clockNow(), nil
	}
	return domain.NormalizeClock(req.Time)
}

// UpdateRecordField записывает одно поле записи
// Порядок значений не блокирует сохранение, а возвращается предупреждением
func (s *Service) UpdateRecordField(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID, req *FieldUpdateRequest) (*UpdateResult, error) {
	field, err := domain.ParseRecordField(req.Field)
	if err != nil {
		return nil, err
	}

	rec, err := s.load(ctx, p, kind, id)
	if err != nil {
		return nil, err
	}

	warnings, err := rec.ApplyField(field, req.Value)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Records.SetRecordField(ctx, rec, field); err != nil {
		s.logger.Error("Failed to update record field", map[string]interface{}{
			"record_id": rec.ID,
			"field":     field,
			"error":     err.Error(),
		})
		return nil, err
	}

	s.logWarnings(rec, warnings)

	completed, err := s.autoComplete(ctx, rec)
	if err != nil {
		return nil, err
	}

	return &UpdateResult{Record: rec, Warnings: warnings, Completed: completed}, nil
}

// UpdateDetailField записывает одно поле строки записи
func (s *Service) UpdateDetailField(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id, detailID uuid.UUID, req *FieldUpdateRequest) (*UpdateResult, error) {
	field, err := domain.ParseDetailField(req.Field)
	if err != nil {
		return nil, err
	}

	rec, err := s.load(ctx, p, kind, id)
	if err != nil {
		return nil, err
	}
	if rec.Status == domain.StatusCancelled {
		return nil, domain.ErrRecordClosed
	}

	detail := rec.FindDetail(detailID)
	if detail == nil {
		return nil, domain.ErrDetailNotFound
	}

	if _, err := detail.ApplyField(field, req.Value); err != nil {
		return nil, err
	}

	if err := s.repos.Records.SetDetailField(ctx, rec, detail, field); err != nil {
		s.logger.Error("Failed to update detail field", map[string]interface{}{
			"record_id": rec.ID,
			"detail_id": detail.ID,
			"field":     field,
			"error":     err.Error(),
		})
		return nil, err
	}

	warnings := rec.Warnings()
	s.logWarnings(rec, warnings)

	completed, err := s.autoComplete(ctx, rec)
	if err != nil {
		return nil, err
	}

	return &UpdateResult{Record: rec, Warnings: warnings, Completed: completed}, nil
}

func (s *Service) logWarnings(rec *domain.Record, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	s.logger.Warn("Record saved with warnings", map[string]interface{}{
		"record_id": rec.ID,
		"warnings":  warnings,
	})
}

// autoComplete завершает запись, когда заполнено последнее поле
func (s *Service) autoComplete(ctx context.Context, rec *domain.Record) (bool, error) {
	if !rec.ShouldAutoComplete() {
		return false, nil
	}

	from := rec.Status
	if err := rec.TransitionTo(domain.StatusCompleted, s.now()); err != nil {
		return false, err
	}

	err := s.repos.Records.Transition(ctx, rec, from)
	if errors.Is(err, domain.ErrInvalidStatusTransition) {
		// Статус уже изменен параллельным запросом
		fresh, err := s.repos.Records.GetByID(ctx, rec.Kind, rec.ManagementCodeID, rec.ID)
		if err != nil {
			return false, err
		}
		*rec = *fresh
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.afterCompleted(ctx, rec)
	return true, nil
}

// afterCompleted публикует событие завершения и проверяет замену масла
func (s *Service) afterCompleted(ctx context.Context, rec *domain.Record) {
	data := map[string]interface{}{
		"driver_id":  rec.DriverID,
		"vehicle_id": rec.VehicleID,
	}
	if minutes, ok := rec.DurationMinutes(); ok {
		data["duration_minutes"] = minutes
	}
	if km, ok := rec.DistanceKm(); ok {
		data["distance_km"] = km
	}

	s.logger.Info("Record completed", map[string]interface{}{
		"record_id": rec.ID,
		"kind":      rec.Kind,
	})
	s.publish(ctx, domain.EventRecordCompleted, rec, data)

	vehicle, err := s.repos.Vehicles.GetByID(ctx, rec.ManagementCodeID, rec.VehicleID)
	if err != nil {
		s.logger.Error("Failed to load vehicle after completion", map[string]interface{}{
			"vehicle_id": rec.VehicleID,
			"error":      err.Error(),
		})
		return
	}

	status := vehicle.OilStatus()
	if status == domain.OilStatusNormal {
		return
	}

	event := domain.Event{
		Type:             domain.EventVehicleOilChangeDue,
		ManagementCodeID: vehicle.ManagementCodeID,
		EntityID:         vehicle.ID,
		OccurredAt:       s.now(),
		Data: map[string]interface{}{
			"status":              status,
			"km_since_oil_change": vehicle.KmSinceOilChange(),
			"current_odometer":    vehicle.CurrentOdometer,
		},
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", map[string]interface{}{
			"type":  event.Type,
			"error": err.Error(),
		})
	}
}

// Cancel отменяет запись; отмена необратима
func (s *Service) Cancel(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID, req *CancelRequest) (*domain.Record, error) {
	rec, err := s.load(ctx, p, kind, id)
	if err != nil {
		return nil, err
	}

	from := rec.Status
	if err := rec.TransitionTo(domain.StatusCancelled, s.now()); err != nil {
		return nil, err
	}
	if req != nil {
		rec.CancelReason = strings.TrimSpace(req.Reason)
	}

	if err := s.repos.Records.Transition(ctx, rec, from); err != nil {
		return nil, err
	}

	s.logger.Info("Record cancelled", map[string]interface{}{
		"record_id": rec.ID,
		"from":      from,
	})
	s.publish(ctx, domain.EventRecordCancelled, rec, map[string]interface{}{
		"reason": rec.CancelReason,
	})

	return rec, nil
}

// Delete удаляет запись со строками (исправление ошибок ввода администратором)
func (s *Service) Delete(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID) error {
	if !p.IsAdmin() {
		return domain.ErrForbidden
	}
	scope, err := p.Scope()
	if err != nil {
		return err
	}

	if err := s.repos.Records.Delete(ctx, kind, scope, id); err != nil {
		return err
	}

	s.logger.Warn("Record deleted", map[string]interface{}{
		"record_id": id,
		"kind":      kind,
		"admin_id":  p.SubjectID,
	})
	return nil
}

// publish отправляет событие записи; ошибка публикации только логируется
func (s *Service) publish(ctx context.Context, typ domain.EventType, rec *domain.Record, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["kind"] = rec.Kind
	data["status"] = rec.Status

	event := domain.Event{
		Type:             typ,
		ManagementCodeID: rec.ManagementCodeID,
		EntityID:         rec.ID,
		OccurredAt:       s.now(),
		Data:             data,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", map[string]interface{}{
			"type":  typ,
			"error": err.Error(),
		})
	}
}
