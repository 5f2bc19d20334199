package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 连不上的 redis：每次都 miss，走回源
func unreachable(t *testing.T) *Cache {
	t.Helper()
	c := &Cache{
		RDB:    redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond}),
		Prefix: "test:",
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGetOrLoadFallsBackWhenRedisDown(t *testing.T) {
	c := unreachable(t)
	got, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(context.Context) ([]string, error) {
		return []string{"bench"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bench"}, got)
}

func TestSharedLoadIgnoresCallerCancel(t *testing.T) {
	c := unreachable(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := c.GetOrLoad(ctx, "k", time.Minute, func(lctx context.Context) ([]byte, error) {
		if err := lctx.Err(); err != nil {
			return nil, err
		}
		return []byte(`"ok"`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, string(b))
}
