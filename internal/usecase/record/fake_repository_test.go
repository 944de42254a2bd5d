package record

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/google/uuid"
)

// memoryRecords - хранилище записей в памяти с тем же естественным ключом, что и в БД
type memoryRecords struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*domain.Record
	odometers map[uuid.UUID]int
	lastEnd   *int
}

func newMemoryRecords() *memoryRecords {
	return &memoryRecords{
		records:   make(map[uuid.UUID]*domain.Record),
		odometers: make(map[uuid.UUID]int),
	}
}

func cloneRecord(rec *domain.Record) *domain.Record {
	cp := *rec
	cp.Details = make([]*domain.Detail, 0, len(rec.Details))
	for _, d := range rec.Details {
		dc := *d
		cp.Details = append(cp.Details, &dc)
	}
	return &cp
}

func naturalKey(rec *domain.Record) string {
	key := fmt.Sprintf("%s|%s|%s|%s", rec.Kind, rec.DriverID, rec.VehicleID, rec.ServiceDate.Format(domain.DateLayout))
	if rec.Kind == domain.RecordKindDelivery && rec.RouteID != nil {
		key += "|" + rec.RouteID.String()
	}
	return key
}

func (m *memoryRecords) Reconcile(_ context.Context, rec *domain.Record, seeds []*domain.Detail) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := naturalKey(rec)
	for _, existing := range m.records {
		if existing.Status != domain.StatusCancelled && naturalKey(existing) == key {
			rec.ID = existing.ID
			return false, nil
		}
	}

	rec.ID = uuid.New()
	stored := cloneRecord(rec)
	for i, seed := range seeds {
		seed.ID = uuid.New()
		seed.RecordID = rec.ID
		seed.Sequence = i + 1
		dc := *seed
		stored.Details = append(stored.Details, &dc)
	}
	m.records[rec.ID] = stored
	return true, nil
}

func (m *memoryRecords) GetByID(_ context.Context, kind domain.RecordKind, scope, id uuid.UUID) (*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok || rec.Kind != kind || rec.ManagementCodeID != scope {
		return nil, domain.ErrRecordNotFound
	}
	return cloneRecord(rec), nil
}

func (m *memoryRecords) List(_ context.Context, filter domain.RecordFilter) ([]*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*domain.Record
	for _, rec := range m.records {
		if rec.ManagementCodeID != filter.ManagementCodeID || rec.Kind != filter.Kind {
			continue
		}
		if filter.DriverID != nil && rec.DriverID != *filter.DriverID {
			continue
		}
		if filter.From != nil && rec.ServiceDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && rec.ServiceDate.After(*filter.To) {
			continue
		}
		result = append(result, cloneRecord(rec))
	}
	return result, nil
}

func (m *memoryRecords) SetRecordField(_ context.Context, rec *domain.Record, field domain.RecordField) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.records[rec.ID]
	if !ok || stored.Status == domain.StatusCancelled {
		return domain.ErrRecordNotFound
	}
	details := stored.Details
	updated := cloneRecord(rec)
	updated.Details = details
	m.records[rec.ID] = updated

	if field == domain.FieldEndOdometer && stored.Status == domain.StatusCompleted && rec.EndOdometer != nil {
		m.raiseOdometer(rec.VehicleID, *rec.EndOdometer)
	}
	return nil
}

func (m *memoryRecords) raiseOdometer(vehicleID uuid.UUID, km int) {
	if km > m.odometers[vehicleID] {
		m.odometers[vehicleID] = km
	}
}

func (m *memoryRecords) SetDetailField(_ context.Context, rec *domain.Record, detail *domain.Detail, _ domain.DetailField) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.records[rec.ID]
	if !ok || stored.Status == domain.StatusCancelled {
		return domain.ErrDetailNotFound
	}
	for i, d := range stored.Details {
		if d.ID == detail.ID {
			dc := *detail
			stored.Details[i] = &dc
			return nil
		}
	}
	return domain.ErrDetailNotFound
}

func (m *memoryRecords) Transition(_ context.Context, rec *domain.Record, from domain.RecordStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.records[rec.ID]
	if !ok || stored.Status != from {
		return domain.ErrInvalidStatusTransition
	}
	details := stored.Details
	updated := cloneRecord(rec)
	updated.Details = details
	m.records[rec.ID] = updated

	if rec.Status == domain.StatusCompleted && rec.EndOdometer != nil {
		m.raiseOdometer(rec.VehicleID, *rec.EndOdometer)
	}
	return nil
}

func (m *memoryRecords) Delete(_ context.Context, kind domain.RecordKind, scope, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok || rec.Kind != kind || rec.ManagementCodeID != scope {
		return domain.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memoryRecords) LastEndOdometer(_ context.Context, _ uuid.UUID, _ time.Time) (*int, error) {
	return m.lastEnd, nil
}

// recordingPublisher запоминает опубликованные события
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count(typ domain.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}
