package promotion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("promotion not found")
	ErrCodeExists = errors.New("promotion code already exists")
	// ErrInUse is returned when a delete would break order history references.
	ErrInUse = errors.New("promotion is referenced by existing orders")
)

type Repository interface {
	// FindActiveByCode returns the promotion with the given (already
	// normalized) code when it is active and its window contains now.
	// Missing, inactive and out-of-window all yield ErrNotFound.
	FindActiveByCode(ctx context.Context, code string, now time.Time) (*Promotion, error)

	GetByID(ctx context.Context, id int64) (*Promotion, error)
	List(ctx context.Context) ([]Promotion, error)
	Create(ctx context.Context, p *Promotion) error
	Update(ctx context.Context, p *Promotion) error
	Delete(ctx context.Context, id int64) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const promotionColumns = `id, code, type, value, min_order_amount, starts_at, ends_at, is_active`

func scanPromotion(row pgx.Row, p *Promotion) error {
	return row.Scan(
		&p.ID,
		&p.Code,
		&p.Type,
		&p.Value,
		&p.MinOrderAmount,
		&p.StartsAt,
		&p.EndsAt,
		&p.IsActive,
	)
}

func (r *postgresRepository) FindActiveByCode(ctx context.Context, code string, now time.Time) (*Promotion, error) {
	query := `
		SELECT ` + promotionColumns + `
		FROM promotions
		WHERE code = $1
		  AND is_active = TRUE
		  AND (starts_at IS NULL OR starts_at <= $2)
		  AND (ends_at IS NULL OR ends_at >= $2)
	`

	var p Promotion
	if err := scanPromotion(r.db.QueryRow(ctx, query, code, now), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select promotion by code: %w", err)
	}

	return &p, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE id = $1`

	var p Promotion
	if err := scanPromotion(r.db.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select promotion by id %d: %w", id, err)
	}

	return &p, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Promotion, error) {
	rows, err := r.db.Query(ctx, `SELECT `+promotionColumns+` FROM promotions ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query promotions: %w", err)
	}
	defer rows.Close()

	promotions := make([]Promotion, 0)
	for rows.Next() {
		var p Promotion
		if err := scanPromotion(rows, &p); err != nil {
			return nil, fmt.Errorf("repository: failed to scan promotion: %w", err)
		}
		promotions = append(promotions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating promotions: %w", err)
	}

	return promotions, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *Promotion) error {
	query := `
		INSERT INTO promotions (code, type, value, min_order_amount, starts_at, ends_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		p.Code, p.Type, p.Value, p.MinOrderAmount, p.StartsAt, p.EndsAt, p.IsActive,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("repository: failed to insert promotion: %w", err)
	}

	return nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Promotion) error {
	query := `
		UPDATE promotions
		SET code = $1, type = $2, value = $3, min_order_amount = $4,
			starts_at = $5, ends_at = $6, is_active = $7
		WHERE id = $8
	`

	cmdTag, err := r.db.Exec(ctx, query,
		p.Code, p.Type, p.Value, p.MinOrderAmount, p.StartsAt, p.EndsAt, p.IsActive, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("repository: failed to update promotion %d: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInUse
		}
		return fmt.Errorf("repository: failed to delete promotion %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
