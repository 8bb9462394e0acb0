package repository

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logger.Logger {
	log := logger.New(logger.ERROR)
	log.SetOutput(io.Discard)
	return log
}

func TestInMemoryClientRepository(t *testing.T) {
	repo := NewInMemoryClientRepository(testLogger())
	ctx := context.Background()

	client, err := repo.Create(ctx, domain.Client{CPF: "123.456.789-01", Name: "Maria Silva"})
	assert.NoError(t, err)
	assert.False(t, client.CreatedAt.IsZero())

	_, err = repo.Create(ctx, domain.Client{CPF: "123.456.789-01", Name: "Maria Silva"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = repo.GetByCPF(ctx, "999.999.999-99")
	assert.ErrorIs(t, err, ErrNotFound)

	lastPurchase := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	err = repo.UpdateStamps(ctx, "123.456.789-01", 7, lastPurchase)
	assert.NoError(t, err)

	stored, err := repo.GetByCPF(ctx, "123.456.789-01")
	assert.NoError(t, err)
	assert.Equal(t, 7, stored.CurrentStamps)
	if assert.NotNil(t, stored.LastPurchaseAt) {
		assert.Equal(t, lastPurchase, *stored.LastPurchaseAt)
	}

	err = repo.UpdateStamps(ctx, "999.999.999-99", 1, lastPurchase)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryPurchaseRepositoryOrdering(t *testing.T) {
	repo := NewInMemoryPurchaseRepository(testLogger())
	ctx := context.Background()

	base := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, domain.Purchase{
			ID:        uuid.New(),
			ClientCPF: "123.456.789-01",
			Amount:    150,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		assert.NoError(t, err)
	}

	ordered, err := repo.GetByClient(ctx, "123.456.789-01", true)
	assert.NoError(t, err)
	if assert.Len(t, ordered, 3) {
		assert.True(t, ordered[0].CreatedAt.After(ordered[1].CreatedAt))
		assert.True(t, ordered[1].CreatedAt.After(ordered[2].CreatedAt))
	}

	other, err := repo.GetByClient(ctx, "999.999.999-99", true)
	assert.NoError(t, err)
	assert.Empty(t, other)
}

func TestInMemoryCouponRepositorySetUsed(t *testing.T) {
	repo := NewInMemoryCouponRepository(testLogger())
	ctx := context.Background()

	coupon, err := repo.Create(ctx, domain.Coupon{
		ID:        uuid.New(),
		ClientCPF: "123.456.789-01",
		IssuedAt:  time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)

	// Повторная отметка не ошибка
	assert.NoError(t, repo.SetUsed(ctx, coupon.ID))
	assert.NoError(t, repo.SetUsed(ctx, coupon.ID))

	stored, err := repo.GetByID(ctx, coupon.ID)
	assert.NoError(t, err)
	assert.True(t, stored.Used)

	assert.ErrorIs(t, repo.SetUsed(ctx, uuid.New()), ErrNotFound)
}
