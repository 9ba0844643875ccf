package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadSliceJSON 列表版：序列化整段切片进缓存
func GetOrLoadSliceJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) ([]T, error),
) ([]T, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	var out []T
	if e := json.Unmarshal(b, &out); e != nil {
		return nil, e
	}
	return out, nil
}
