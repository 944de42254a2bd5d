package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/export"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/repository"
	"github.com/frontandrew/caretrip/internal/usecase/vehicle"
	"github.com/google/uuid"
)

var recordKinds = []domain.RecordKind{domain.RecordKindDelivery, domain.RecordKindTransportation}

// CompletionRequest - параметры отчета о выполнении
// Пустой тип означает оба типа записей
type CompletionRequest struct {
	Kind    string `json:"kind,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	GroupBy string `json:"group_by,omitempty"`
}

// ExportRequest - параметры выгрузки записей
type ExportRequest struct {
	Kind   domain.RecordKind
	From   string
	To     string
	Format string
}

// ExportFile - подготовленная выгрузка
type ExportFile struct {
	Filename string
	Format   export.Format
	Table    export.Table
}

// WriteTo пишет выгрузку в выбранном формате
func (f *ExportFile) WriteTo(w io.Writer) error {
	return export.Write(w, f.Table, f.Format)
}

// Service строит отчеты по записям кода управления
type Service struct {
	records  repository.RecordRepository
	vehicles repository.VehicleRepository
	logger   logger.Logger
	location *time.Location
	now      func() time.Time
}

// NewService создает новый экземпляр ReportService
func NewService(records repository.RecordRepository, vehicles repository.VehicleRepository, location *time.Location, logger logger.Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		records:  records,
		vehicles: vehicles,
		logger:   logger,
		location: location,
		now:      time.Now,
	}
}

func (s *Service) today() time.Time {
	return domain.ServiceDay(s.now(), s.location)
}

// Completion группирует записи периода и считает процент выполнения
func (s *Service) Completion(ctx context.Context, scope uuid.UUID, req *CompletionRequest) ([]domain.CompletionGroup, error) {
	dim, err := domain.ParseGroupDimension(req.GroupBy)
	if err != nil {
		return nil, err
	}

	kinds := recordKinds
	if req.Kind != "" {
		kind, err := domain.ParseRecordKind(req.Kind)
		if err != nil {
			return nil, err
		}
		kinds = []domain.RecordKind{kind}
	}

	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return nil, err
	}

	records, err := s.fetch(ctx, scope, kinds, from, to)
	if err != nil {
		return nil, err
	}

	return GroupCompletion(records, dim), nil
}

// RoutePerformance сравнивает среднее время маршрутов за текущий месяц и за сегодня
func (s *Service) RoutePerformance(ctx context.Context, scope uuid.UUID) ([]domain.RoutePerformance, error) {
	today := s.today()
	monthStart := domain.MonthStart(today)

	records, err := s.fetch(ctx, scope, recordKinds, &monthStart, &today)
	if err != nil {
		return nil, err
	}

	return BuildRoutePerformance(records, today), nil
}

// Dashboard возвращает сводку за сегодня и текущий месяц
func (s *Service) Dashboard(ctx context.Context, scope uuid.UUID) (*domain.Dashboard, error) {
	today := s.today()
	monthStart := domain.MonthStart(today)

	records, err := s.fetch(ctx, scope, recordKinds, &monthStart, &today)
	if err != nil {
		return nil, err
	}

	vehicles, err := s.vehicles.List(ctx, scope, true)
	if err != nil {
		s.logger.Error("Failed to list vehicles for dashboard", map[string]interface{}{
			"scope": scope,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	return BuildDashboard(records, vehicle.OilSummaries(vehicles), today), nil
}

// Export готовит выгрузку записей одного типа
func (s *Service) Export(ctx context.Context, scope uuid.UUID, req *ExportRequest) (*ExportFile, error) {
	kind, err := domain.ParseRecordKind(string(req.Kind))
	if err != nil {
		return nil, err
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, domain.ErrBadRequest
	}

	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return nil, err
	}

	records, err := s.fetch(ctx, scope, []domain.RecordKind{kind}, from, to)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Records exported", map[string]interface{}{
		"scope":  scope,
		"kind":   kind,
		"format": format,
		"rows":   len(records),
	})

	return &ExportFile{
		Filename: export.Filename(string(kind), s.today(), format),
		Format:   format,
		Table:    RecordsTable(records),
	}, nil
}

// fetch загружает все записи периода; Limit 0 снимает ограничение выборки
func (s *Service) fetch(ctx context.Context, scope uuid.UUID, kinds []domain.RecordKind, from, to *time.Time) ([]*domain.Record, error) {
	var all []*domain.Record
	for _, kind := range kinds {
		records, err := s.records.List(ctx, domain.RecordFilter{
			ManagementCodeID: scope,
			Kind:             kind,
			From:             from,
			To:               to,
		})
		if err != nil {
			s.logger.Error("Failed to list records for report", map[string]interface{}{
				"scope": scope,
				"kind":  kind,
				"error": err.Error(),
			})
			return nil, fmt.Errorf("failed to list records: %w", err)
		}
		all = append(all, records...)
	}
	return all, nil
}

func parseRange(fromValue, toValue string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromValue != "" {
		day, err := domain.ParseServiceDay(fromValue)
		if err != nil {
			return nil, nil, err
		}
		from = &day
	}
	if toValue != "" {
		day, err := domain.ParseServiceDay(toValue)
		if err != nil {
			return nil, nil, err
		}
		to = &day
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, domain.ErrBadRequest
	}
	return from, to, nil
}
