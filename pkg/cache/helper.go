package cache

import (
	"context"
	"errors"
	"time"

	"github.com/matst80/store-locator/pkg/logger"
)

// Helper memoizes an expensive lookup in a Cache.
type Helper[T any] struct {
	Cache Cache
}

func NewHelper[T any](c Cache) *Helper[T] {
	return &Helper[T]{Cache: c}
}

// Handle fills out from the cache or, on a miss, from fn and stores the
// result. A failing fn is returned as is and nothing is cached. Cache write
// failures are logged only.
func (h *Helper[T]) Handle(ctx context.Context, key string, out *T, fn func(ctx context.Context) (T, error), expiration time.Duration) error {
	err := h.Cache.Get(ctx, key, out)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logger.Get().Warnf("cache read %s failed: %v", key, err)
	}
	value, err := fn(ctx)
	if err != nil {
		return err
	}
	*out = value
	if err := h.Cache.Set(ctx, key, value, expiration); err != nil {
		logger.Get().Warnf("cache write %s failed: %v", key, err)
	}
	return nil
}
