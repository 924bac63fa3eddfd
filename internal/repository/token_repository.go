package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenRepository persists sealed token values. Get returns pgx.ErrNoRows
// when the key is absent.
type TokenRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Upsert(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type tokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository returns a Postgres-backed implementation.
func NewTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &tokenRepository{pool: pool}
}

func (r *tokenRepository) Get(ctx context.Context, key string) (string, error) {
	const query = `
        SELECT sealed_value FROM token_storage WHERE storage_key=$1`

	var value string
	if err := r.pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		return "", err
	}
	return value, nil
}

func (r *tokenRepository) Upsert(ctx context.Context, key, value string) error {
	const query = `
        INSERT INTO token_storage (storage_key, sealed_value)
        VALUES ($1, $2)
        ON CONFLICT (storage_key) DO UPDATE SET sealed_value=EXCLUDED.sealed_value, updated_at=NOW()`

	_, err := r.pool.Exec(ctx, query, key, value)
	return err
}

func (r *tokenRepository) Delete(ctx context.Context, key string) error {
	const query = `
        DELETE FROM token_storage WHERE storage_key=$1`

	_, err := r.pool.Exec(ctx, query, key)
	return err
}
