package cache

import (
	"context"
	"time"

	"github.com/matzehuels/wafconan/pkg/observability"
)

type instrumented struct {
	Cache
}

// Instrument reports every Get and Set on c to the observability cache hooks.
func Instrument(c Cache) Cache {
	return instrumented{c}
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}
