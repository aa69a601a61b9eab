package cache

import (
	"context"
	"testing"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_StateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, "abc", "demo.myshopify.com", time.Minute))

	shop, err := s.Consume(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "demo.myshopify.com", shop)

	_, err = s.Consume(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestMemoryStore_StateExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "abc", "demo.myshopify.com", time.Minute))
	now = now.Add(2 * time.Minute)

	_, err := s.Consume(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestMemoryStore_Claim(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	first, err := s.Claim(ctx, "wh-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := s.Claim(ctx, "wh-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, again)

	now = now.Add(2 * time.Hour)
	afterTTL, err := s.Claim(ctx, "wh-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, afterTTL)
}

func TestMemoryStore_ReleaseAllowsReclaim(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first, _ := s.Claim(ctx, "wh-1", time.Hour)
	require.True(t, first)

	require.NoError(t, s.Release(ctx, "wh-1"))
	again, err := s.Claim(ctx, "wh-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, again)

	require.NoError(t, s.Release(ctx, "never-claimed"))
}

func TestMemoryStore_StateAndClaimDoNotCollide(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first, _ := s.Claim(ctx, "same", time.Hour)
	assert.True(t, first)

	require.NoError(t, s.Save(ctx, "same", "demo.myshopify.com", time.Hour))
	shop, err := s.Consume(ctx, "same")
	require.NoError(t, err)
	assert.Equal(t, "demo.myshopify.com", shop)
}

func TestMemoryStore_Prune(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "short", "a.myshopify.com", time.Minute))
	require.NoError(t, s.Save(ctx, "long", "b.myshopify.com", time.Hour))
	_, _ = s.Claim(ctx, "wh-1", time.Minute)

	now = now.Add(5 * time.Minute)
	removed, err := s.Prune(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, s.Len())
}
