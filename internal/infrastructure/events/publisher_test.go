package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/config"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	scope := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	event := domain.Event{Type: domain.EventRecordCompleted, ManagementCodeID: scope}

	assert.Equal(t, "caretrip.11111111-2222-3333-4444-555555555555.record.completed", Subject("caretrip", event))
	assert.Equal(t, "11111111-2222-3333-4444-555555555555.record.completed", Subject("", event))
}

func TestNATSPublisher_Publish(t *testing.T) {
	var gotSubject string
	var gotData []byte

	p := &NATSPublisher{
		prefix: "caretrip",
		logger: logger.NewNoop(),
		publish: func(subject string, data []byte) error {
			gotSubject = subject
			gotData = data
			return nil
		},
	}

	event := domain.Event{
		Type:             domain.EventRecordStarted,
		ManagementCodeID: uuid.New(),
		EntityID:         uuid.New(),
		Data:             map[string]interface{}{"kind": "delivery"},
	}

	require.NoError(t, p.Publish(context.Background(), event))
	assert.Equal(t, Subject("caretrip", event), gotSubject)

	var decoded domain.Event
	require.NoError(t, json.Unmarshal(gotData, &decoded))
	assert.Equal(t, event.EntityID, decoded.EntityID)
	assert.Equal(t, domain.EventRecordStarted, decoded.Type)
	assert.False(t, decoded.OccurredAt.IsZero())
}

func TestNATSPublisher_PublishError(t *testing.T) {
	p := &NATSPublisher{
		logger:  logger.NewNoop(),
		publish: func(string, []byte) error { return errors.New("connection closed") },
	}

	err := p.Publish(context.Background(), domain.Event{Type: domain.EventRecordCancelled, OccurredAt: time.Now()})
	assert.Error(t, err)
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	p := &NATSPublisher{
		logger:  logger.NewNoop(),
		publish: func(string, []byte) error { t.Fatal("publish must not be called"); return nil },
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, domain.Event{}), context.Canceled)
}

func TestNew_DisabledReturnsNoop(t *testing.T) {
	p, err := New(config.NATSConfig{}, logger.NewNoop())
	require.NoError(t, err)

	_, ok := p.(*NoopPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), domain.Event{}))
	assert.NoError(t, p.Close())
}
