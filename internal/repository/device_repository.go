package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DeviceTokenRepository lists registered push targets.
type DeviceTokenRepository interface {
	ListTokens(ctx context.Context, accountID string) ([]string, error)
}

type deviceTokenRepository struct {
	pool *pgxpool.Pool
}

// NewDeviceTokenRepository instantiates repository.
func NewDeviceTokenRepository(pool *pgxpool.Pool) DeviceTokenRepository {
	return &deviceTokenRepository{pool: pool}
}

func (r *deviceTokenRepository) ListTokens(ctx context.Context, accountID string) ([]string, error) {
	const query = `SELECT token FROM device_tokens WHERE account_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
