package postgres

import (
	"testing"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesFor(t *testing.T) {
	delivery, err := tablesFor(domain.RecordKindDelivery)
	require.NoError(t, err)
	assert.Equal(t, "delivery_records", delivery.records)
	assert.Contains(t, delivery.conflict, "route_id")

	transport, err := tablesFor(domain.RecordKindTransportation)
	require.NoError(t, err)
	assert.Equal(t, "transportation_details", transport.details)
	assert.NotContains(t, transport.conflict, "route_id")

	_, err = tablesFor("taxi")
	assert.ErrorIs(t, err, domain.ErrInvalidRecordKind)
}

func TestBuildRecordFilter(t *testing.T) {
	scope := uuid.New()
	driver := uuid.New()
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	status := domain.StatusCompleted

	where, args := buildRecordFilter(domain.RecordFilter{
		ManagementCodeID: scope,
		From:             &from,
		DriverID:         &driver,
		Status:           &status,
		Limit:            50,
	})

	assert.Contains(t, where, "r.management_code_id = $1")
	assert.Contains(t, where, "r.service_date >= $2")
	assert.Contains(t, where, "r.driver_id = $3")
	assert.Contains(t, where, "r.status = $4")
	assert.Contains(t, where, "LIMIT $5")
	assert.NotContains(t, where, "OFFSET")
	assert.Equal(t, []interface{}{scope, from, driver, status, 50}, args)
}

func TestRecordFieldValue(t *testing.T) {
	clock := "09:15"
	rec := &domain.Record{StartTime: &clock, Notes: "ok"}

	v, err := recordFieldValue(rec, domain.FieldStartTime)
	require.NoError(t, err)
	assert.Equal(t, &clock, v)

	v, err = recordFieldValue(rec, domain.FieldRecordNotes)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	_, err = recordFieldValue(rec, domain.RecordField("status"))
	assert.ErrorIs(t, err, domain.ErrInvalidRecordField)

	_, err = detailFieldValue(&domain.Detail{}, domain.DetailField("label"))
	assert.ErrorIs(t, err, domain.ErrInvalidRecordField)
}
