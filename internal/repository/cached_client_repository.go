package repository

import (
	"context"
	"time"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
)

// CachedClientRepository реализует ClientRepository с кешированием
type CachedClientRepository struct {
	repo  ClientRepository
	cache *RedisCacheRepository
	log   *logger.Logger
}

// NewCachedClientRepository создает новый репозиторий клиентов с кешированием
func NewCachedClientRepository(
	repo ClientRepository,
	cache *RedisCacheRepository,
	log *logger.Logger,
) ClientRepository {
	return &CachedClientRepository{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// GetAll возвращает всех клиентов напрямую из хранилища
func (r *CachedClientRepository) GetAll(ctx context.Context) ([]domain.Client, error) {
	return r.repo.GetAll(ctx)
}

// GetByCPF возвращает клиента (сначала из кеша, потом из хранилища)
func (r *CachedClientRepository) GetByCPF(ctx context.Context, cpf string) (domain.Client, error) {
	cached, err := r.cache.GetCachedClient(ctx, cpf)
	if err != nil {
		r.log.Warnw("Error getting client from cache", "error", err, "cpf", cpf)
		// Продолжаем выполнение при ошибке кеша
	}

	if cached != nil {
		return *cached, nil
	}

	client, err := r.repo.GetByCPF(ctx, cpf)
	if err != nil {
		return domain.Client{}, err
	}

	if err := r.cache.CacheClient(ctx, client); err != nil {
		r.log.Warnw("Failed to cache client after read", "error", err, "cpf", cpf)
	}

	return client, nil
}

// Create сохраняет клиента в хранилище и кеширует его
func (r *CachedClientRepository) Create(ctx context.Context, client domain.Client) (domain.Client, error) {
	created, err := r.repo.Create(ctx, client)
	if err != nil {
		return domain.Client{}, err
	}

	if err := r.cache.CacheClient(ctx, created); err != nil {
		r.log.Warnw("Failed to cache client after creation", "error", err, "cpf", created.CPF)
	}

	return created, nil
}

// Update обновляет клиента и инвалидирует кеш
func (r *CachedClientRepository) Update(ctx context.Context, client domain.Client) error {
	if err := r.repo.Update(ctx, client); err != nil {
		return err
	}

	if err := r.cache.InvalidateClient(ctx, client.CPF); err != nil {
		r.log.Warnw("Failed to invalidate client cache after update", "error", err, "cpf", client.CPF)
	}

	return nil
}

// UpdateStamps обновляет баланс штампов и инвалидирует кеш
func (r *CachedClientRepository) UpdateStamps(ctx context.Context, cpf string, stamps int, lastPurchaseAt time.Time) error {
	if err := r.repo.UpdateStamps(ctx, cpf, stamps, lastPurchaseAt); err != nil {
		return err
	}

	if err := r.cache.InvalidateClient(ctx, cpf); err != nil {
		r.log.Warnw("Failed to invalidate client cache after stamp update", "error", err, "cpf", cpf)
	}

	return nil
}
