package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice-console/internal/repository"
)

// LocalStore keeps values in Postgres until they are removed, mirroring
// browser local storage. Values are sealed before they are written.
type LocalStore struct {
	repo   repository.TokenRepository
	sealer *Sealer
}

// NewLocalStore builds a persistent store.
func NewLocalStore(repo repository.TokenRepository, sealer *Sealer) *LocalStore {
	return &LocalStore{repo: repo, sealer: sealer}
}

func (s *LocalStore) Get(ctx context.Context, key string) (string, error) {
	sealed, err := s.repo.Get(ctx, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	value, err := s.sealer.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("open stored value %s: %w", key, err)
	}
	return value, nil
}

func (s *LocalStore) Set(ctx context.Context, key, value string) error {
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return err
	}
	return s.repo.Upsert(ctx, key, sealed)
}

func (s *LocalStore) Remove(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}
