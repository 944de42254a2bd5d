package cached

import (
	"context"
	"errors"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/pkg/redis"
	"github.com/frontandrew/caretrip/internal/repository"
	"github.com/google/uuid"
)

const (
	managementCodeCachePrefix = "mgmt_code:"
	managementCodeCacheTTL    = 1 * time.Hour
)

// Cache - операции Redis, нужные декоратору
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ManagementCodeRepository добавляет кэширование поиска кода при входе водителя
type ManagementCodeRepository struct {
	repo   repository.ManagementCodeRepository
	cache  Cache
	logger logger.Logger
}

// NewManagementCodeRepository создает новый кэшируемый репозиторий кодов управления
func NewManagementCodeRepository(repo repository.ManagementCodeRepository, cache Cache, log logger.Logger) *ManagementCodeRepository {
	return &ManagementCodeRepository{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

// GetByCode возвращает код управления (с кэшированием)
func (r *ManagementCodeRepository) GetByCode(ctx context.Context, code string) (*domain.ManagementCode, error) {
	cacheKey := managementCodeCachePrefix + code

	// 1. Проверяем кэш
	var cached domain.ManagementCode
	err := r.cache.GetJSON(ctx, cacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		// Ошибка кэша не критична, идем в БД
		r.logger.Warn("Management code cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// 2. Cache miss - идем в БД
	mc, err := r.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	// 3. Сохраняем результат в кэш
	if err := r.cache.SetJSON(ctx, cacheKey, mc, managementCodeCacheTTL); err != nil {
		r.logger.Warn("Management code cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mc, nil
}

// Create сохраняет код; новые коды в кэш не попадают до первого чтения
func (r *ManagementCodeRepository) Create(ctx context.Context, code *domain.ManagementCode) error {
	return r.repo.Create(ctx, code)
}

// GetByID получает код по ID без кэша
func (r *ManagementCodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ManagementCode, error) {
	return r.repo.GetByID(ctx, id)
}

// ListByOrganization получает коды организации без кэша (только для админки)
func (r *ManagementCodeRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.ManagementCode, error) {
	return r.repo.ListByOrganization(ctx, orgID)
}

// Deactivate выключает код и инвалидирует кэш
func (r *ManagementCodeRepository) Deactivate(ctx context.Context, id uuid.UUID, at time.Time) error {
	// Сначала узнаем значение кода, чтобы удалить точный ключ
	mc, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.repo.Deactivate(ctx, id, at); err != nil {
		return err
	}

	if err := r.cache.Del(ctx, managementCodeCachePrefix+mc.Code); err != nil {
		r.logger.Error("Management code cache invalidation failed", map[string]interface{}{
			"code":  mc.Code,
			"error": err.Error(),
		})
	}

	return nil
}
