package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/internal/repository"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresClientRepository реализация репозитория клиентов через PostgreSQL
type PostgresClientRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresClientRepository создает новый репозиторий клиентов через PostgreSQL
func NewPostgresClientRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresClientRepository {
	return &PostgresClientRepository{
		db:  db,
		log: log,
	}
}

// GetAll возвращает всех клиентов
func (r *PostgresClientRepository) GetAll(ctx context.Context) ([]domain.Client, error) {
	query := `
		SELECT cpf, name, phone, email, birth_date, current_stamps, last_purchase_at, created_at, updated_at
		FROM clients
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var client domain.Client

		err := rows.Scan(
			&client.CPF,
			&client.Name,
			&client.Phone,
			&client.Email,
			&client.BirthDate,
			&client.CurrentStamps,
			&client.LastPurchaseAt,
			&client.CreatedAt,
			&client.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}

		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

// GetByCPF возвращает клиента по CPF
func (r *PostgresClientRepository) GetByCPF(ctx context.Context, cpf string) (domain.Client, error) {
	query := `
		SELECT cpf, name, phone, email, birth_date, current_stamps, last_purchase_at, created_at, updated_at
		FROM clients
		WHERE cpf = $1
	`

	var client domain.Client

	err := r.db.QueryRow(ctx, query, cpf).Scan(
		&client.CPF,
		&client.Name,
		&client.Phone,
		&client.Email,
		&client.BirthDate,
		&client.CurrentStamps,
		&client.LastPurchaseAt,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Client{}, repository.ErrNotFound
		}
		return domain.Client{}, fmt.Errorf("failed to get client: %w", err)
	}

	return client, nil
}

// Create создает нового клиента
func (r *PostgresClientRepository) Create(ctx context.Context, client domain.Client) (domain.Client, error) {
	query := `
		INSERT INTO clients (cpf, name, phone, email, birth_date, current_stamps, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		client.CPF,
		client.Name,
		client.Phone,
		client.Email,
		client.BirthDate,
		client.CurrentStamps,
	).Scan(&client.CreatedAt, &client.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// Проверяем код ошибки на нарушение уникальности
			if pgErr.Code == "23505" {
				return domain.Client{}, repository.ErrDuplicate
			}
		}
		return domain.Client{}, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// Update обновляет существующего клиента
func (r *PostgresClientRepository) Update(ctx context.Context, client domain.Client) error {
	query := `
		UPDATE clients
		SET name = $1, phone = $2, email = $3, birth_date = $4, updated_at = now()
		WHERE cpf = $5
	`

	result, err := r.db.Exec(
		ctx,
		query,
		client.Name,
		client.Phone,
		client.Email,
		client.BirthDate,
		client.CPF,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateStamps обновляет баланс штампов и отметку последней покупки
func (r *PostgresClientRepository) UpdateStamps(ctx context.Context, cpf string, stamps int, lastPurchaseAt time.Time) error {
	query := `
		UPDATE clients
		SET current_stamps = $1, last_purchase_at = $2, updated_at = now()
		WHERE cpf = $3
	`

	result, err := r.db.Exec(ctx, query, stamps, lastPurchaseAt, cpf)
	if err != nil {
		return fmt.Errorf("failed to update client stamps: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
