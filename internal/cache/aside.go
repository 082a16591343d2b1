package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Aside implements the cache-aside pattern: read dest from the cache when
// present, otherwise call fill to populate dest and store the result under
// key. A missing or failing cache degrades to calling fill directly.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fill func() error) error {
	if client != nil {
		if raw, err := client.Get(ctx, key).Bytes(); err == nil {
			if json.Unmarshal(raw, dest) == nil {
				return nil
			}
			// Corrupt entry, drop it and fall through to the source of truth.
			client.Del(ctx, key)
		}
	}

	if err := fill(); err != nil {
		return err
	}

	if client != nil {
		if raw, err := json.Marshal(dest); err == nil {
			client.Set(ctx, key, raw, ttl)
		}
	}
	return nil
}
