package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// GenerationStore hands out monotonically increasing request generations per
// view. A response is current only while its generation is the latest.
type GenerationStore interface {
	Next(ctx context.Context, view string) (int64, error)
	Current(ctx context.Context, view string) (int64, error)
}

const generationKeyPrefix = "analysis:generation:"

type RedisGenerations struct {
	client redis.UniversalClient
}

func NewRedisGenerations(client redis.UniversalClient) *RedisGenerations {
	return &RedisGenerations{client: client}
}

func (g *RedisGenerations) Next(ctx context.Context, view string) (int64, error) {
	n, err := g.client.Incr(ctx, generationKeyPrefix+view).Result()
	if err != nil {
		return 0, fmt.Errorf("incr generation %s: %w", view, err)
	}
	return n, nil
}

func (g *RedisGenerations) Current(ctx context.Context, view string) (int64, error) {
	n, err := g.client.Get(ctx, generationKeyPrefix+view).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get generation %s: %w", view, err)
	}
	return n, nil
}

type MemoryGenerations struct {
	mu   sync.Mutex
	gens map[string]int64
}

func NewMemoryGenerations() *MemoryGenerations {
	return &MemoryGenerations{gens: make(map[string]int64)}
}

func (g *MemoryGenerations) Next(_ context.Context, view string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[view]++
	return g.gens[view], nil
}

func (g *MemoryGenerations) Current(_ context.Context, view string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[view], nil
}
