package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/internal/repository"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCouponRepository реализация репозитория купонов через PostgreSQL
type PostgresCouponRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresCouponRepository создает новый репозиторий купонов через PostgreSQL
func NewPostgresCouponRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresCouponRepository {
	return &PostgresCouponRepository{
		db:  db,
		log: log,
	}
}

// Create сохраняет новый купон
func (r *PostgresCouponRepository) Create(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error) {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}

	query := `
		INSERT INTO coupons (id, client_cpf, discount_rate, used, issued_at, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		coupon.ID,
		coupon.ClientCPF,
		coupon.DiscountRate,
		coupon.Used,
		coupon.IssuedAt,
		coupon.ValidUntil,
	)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("failed to create coupon: %w", err)
	}

	return coupon, nil
}

// GetByID возвращает купон по идентификатору
func (r *PostgresCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Coupon, error) {
	query := `
		SELECT id, client_cpf, discount_rate, used, issued_at, valid_until
		FROM coupons
		WHERE id = $1
	`

	var coupon domain.Coupon

	err := r.db.QueryRow(ctx, query, id).Scan(
		&coupon.ID,
		&coupon.ClientCPF,
		&coupon.DiscountRate,
		&coupon.Used,
		&coupon.IssuedAt,
		&coupon.ValidUntil,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Coupon{}, repository.ErrNotFound
		}
		return domain.Coupon{}, fmt.Errorf("failed to get coupon: %w", err)
	}

	return coupon, nil
}

// GetAll возвращает все купоны
func (r *PostgresCouponRepository) GetAll(ctx context.Context, orderDesc bool) ([]domain.Coupon, error) {
	query := `
		SELECT id, client_cpf, discount_rate, used, issued_at, valid_until
		FROM coupons
	`
	if orderDesc {
		query += ` ORDER BY issued_at DESC`
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	return scanCoupons(rows)
}

// GetByClient возвращает купоны клиента
func (r *PostgresCouponRepository) GetByClient(ctx context.Context, cpf string, orderDesc bool) ([]domain.Coupon, error) {
	query := `
		SELECT id, client_cpf, discount_rate, used, issued_at, valid_until
		FROM coupons
		WHERE client_cpf = $1
	`
	if orderDesc {
		query += ` ORDER BY issued_at DESC`
	}

	rows, err := r.db.Query(ctx, query, cpf)
	if err != nil {
		return nil, fmt.Errorf("failed to query client coupons: %w", err)
	}
	defer rows.Close()

	return scanCoupons(rows)
}

// SetUsed помечает купон использованным
func (r *PostgresCouponRepository) SetUsed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE coupons
		SET used = true
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark coupon used: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanCoupons(rows pgx.Rows) ([]domain.Coupon, error) {
	var coupons []domain.Coupon
	for rows.Next() {
		var coupon domain.Coupon

		err := rows.Scan(
			&coupon.ID,
			&coupon.ClientCPF,
			&coupon.DiscountRate,
			&coupon.Used,
			&coupon.IssuedAt,
			&coupon.ValidUntil,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}

		coupons = append(coupons, coupon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}

	return coupons, nil
}
