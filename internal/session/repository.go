package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateRepository stores session state by session id. Load returns the zero
// State for unknown ids.
type StateRepository interface {
	Load(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, id string, state State) error
	Delete(ctx context.Context, id string) error
	// Update applies fn atomically; the result is written only when fn
	// returns true.
	Update(ctx context.Context, id string, fn func(*State) bool) error
}

// MemoryStateRepository keeps state in process memory.
type MemoryStateRepository struct {
	mu     sync.Mutex
	states map[string]State
}

// NewMemoryStateRepository builds an empty repository.
func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{states: make(map[string]State)}
}

func (r *MemoryStateRepository) Load(_ context.Context, id string) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[id], nil
}

func (r *MemoryStateRepository) Save(_ context.Context, id string, state State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[id] = state
	return nil
}

func (r *MemoryStateRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, id)
	return nil
}

func (r *MemoryStateRepository) Update(_ context.Context, id string, fn func(*State) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := r.states[id]
	if fn(&state) {
		r.states[id] = state
	}
	return nil
}

const redisKeyPrefix = "console:session:"

// RedisStateRepository keeps state as JSON in Redis with a sliding TTL.
type RedisStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateRepository builds a repository whose entries expire after ttl
// of inactivity.
func NewRedisStateRepository(client *redis.Client, ttl time.Duration) *RedisStateRepository {
	return &RedisStateRepository{client: client, ttl: ttl}
}

func (r *RedisStateRepository) Load(ctx context.Context, id string) (State, error) {
	key := redisKeyPrefix + id
	state, err := r.load(ctx, r.client, key)
	if err != nil {
		return State{}, err
	}
	if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
		return State{}, err
	}
	return state, nil
}

func (r *RedisStateRepository) Save(ctx context.Context, id string, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	return r.client.Set(ctx, redisKeyPrefix+id, payload, r.ttl).Err()
}

func (r *RedisStateRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, redisKeyPrefix+id).Err()
}

const maxUpdateAttempts = 5

func (r *RedisStateRepository) Update(ctx context.Context, id string, fn func(*State) bool) error {
	key := redisKeyPrefix + id
	txf := func(tx *redis.Tx) error {
		state, err := r.load(ctx, tx, key)
		if err != nil {
			return err
		}
		if !fn(&state) {
			return nil
		}
		payload, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("encode session state: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update session %s: too much contention", id)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStateRepository) load(ctx context.Context, cmd stringGetter, key string) (State, error) {
	payload, err := cmd.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}
	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return State{}, fmt.Errorf("decode session state: %w", err)
	}
	return state, nil
}
