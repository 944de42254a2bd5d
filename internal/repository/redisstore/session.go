package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/redis"
	"github.com/frontandrew/caretrip/internal/repository"
	"github.com/google/uuid"
)

const sessionKeyPrefix = "driver_session:"

// Store - операции Redis, нужные хранилищу сессий
type Store interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// sessionRepository хранит сессии водителей в Redis с TTL refresh токена
type sessionRepository struct {
	store Store
}

// NewSessionRepository создает хранилище сессий водителей
func NewSessionRepository(store Store) repository.SessionRepository {
	return &sessionRepository{store: store}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.DriverSession, ttl time.Duration) error {
	if err := session.Validate(); err != nil {
		return err
	}
	if err := r.store.SetJSON(ctx, sessionKey(session.ID), session, ttl); err != nil {
		return fmt.Errorf("failed to save driver session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.DriverSession, error) {
	var session domain.DriverSession
	if err := r.store.GetJSON(ctx, sessionKey(id), &session); err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load driver session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Del(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("failed to delete driver session: %w", err)
	}
	return nil
}
