package postgres

import (
	"context"
	"fmt"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPurchaseRepository реализация репозитория покупок через PostgreSQL
type PostgresPurchaseRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresPurchaseRepository создает новый репозиторий покупок через PostgreSQL
func NewPostgresPurchaseRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresPurchaseRepository {
	return &PostgresPurchaseRepository{
		db:  db,
		log: log,
	}
}

// Create сохраняет новую покупку
func (r *PostgresPurchaseRepository) Create(ctx context.Context, purchase domain.Purchase) (domain.Purchase, error) {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}

	query := `
		INSERT INTO purchases (id, client_cpf, amount, stamps_generated, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		purchase.ID,
		purchase.ClientCPF,
		purchase.Amount,
		purchase.StampsGenerated,
		purchase.CreatedAt,
	)
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("failed to create purchase: %w", err)
	}

	return purchase, nil
}

// GetAll возвращает все покупки, новые первыми
func (r *PostgresPurchaseRepository) GetAll(ctx context.Context) ([]domain.Purchase, error) {
	query := `
		SELECT id, client_cpf, amount, stamps_generated, created_at
		FROM purchases
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	return scanPurchases(rows)
}

// GetByClient возвращает покупки клиента
func (r *PostgresPurchaseRepository) GetByClient(ctx context.Context, cpf string, orderDesc bool) ([]domain.Purchase, error) {
	query := `
		SELECT id, client_cpf, amount, stamps_generated, created_at
		FROM purchases
		WHERE client_cpf = $1
	`
	if orderDesc {
		query += ` ORDER BY created_at DESC`
	}

	rows, err := r.db.Query(ctx, query, cpf)
	if err != nil {
		return nil, fmt.Errorf("failed to query client purchases: %w", err)
	}
	defer rows.Close()

	return scanPurchases(rows)
}

func scanPurchases(rows pgx.Rows) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	for rows.Next() {
		var purchase domain.Purchase

		err := rows.Scan(
			&purchase.ID,
			&purchase.ClientCPF,
			&purchase.Amount,
			&purchase.StampsGenerated,
			&purchase.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}

		purchases = append(purchases, purchase)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}

	return purchases, nil
}
