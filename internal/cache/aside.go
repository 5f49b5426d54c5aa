package cache

import (
	"context"
	"encoding/json"
	"time"

	"friendnet/internal/observability"
)

// Aside implements the cache-aside pattern: return the cached value for key
// if present, otherwise invoke load to populate dest and write it back with
// the given TTL. A missing or unreachable Redis degrades to a plain load.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() error) error {
	if client != nil {
		ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "GET")
		data, err := client.Get(ctx, key).Bytes()
		span.End()
		if err == nil && json.Unmarshal(data, dest) == nil {
			return nil
		}
	}

	if err := load(); err != nil {
		return err
	}

	if client != nil {
		if data, err := json.Marshal(dest); err == nil {
			ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "SET")
			client.Set(ctx, key, data, ttl)
			span.End()
		}
	}
	return nil
}
