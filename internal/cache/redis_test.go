package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/portfolio-site/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBackend(t *testing.T) {
	testutil.RequireDocker(t)
	url := testutil.StartRedis(t)

	r, err := NewRedis(url, "test:"+uuid.NewString()+":")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	ctx := context.Background()
	require.NoError(t, r.Ping(ctx))

	c := New(r)
	got, err := Fetch(ctx, c, "projects:published:3", time.Minute, func(context.Context) ([]string, error) {
		return []string{"alpha"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, got)

	_, ok, err := r.Get(ctx, "projects:published:3")
	require.NoError(t, err)
	assert.True(t, ok)

	for i := 0; i < 150; i++ {
		require.NoError(t, r.Set(ctx, "projects:x:"+uuid.NewString(), []byte("1"), time.Minute))
	}
	require.NoError(t, r.Set(ctx, "settings:public", []byte("1"), time.Minute))

	c.InvalidatePrefix(ctx, "projects:")
	_, ok, err = r.Get(ctx, "projects:published:3")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = r.Get(ctx, "settings:public")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGlobEscape(t *testing.T) {
	assert.Equal(t, `a\*b\?c\[d\]`, globEscape("a*b?c[d]"))
}
