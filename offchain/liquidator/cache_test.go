package liquidator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCooldownCache(t *testing.T) {
	cache := NewCooldownCache(time.Minute)
	start := time.Unix(1_700_000_000, 0)

	require.False(t, cache.Active("alice", start))

	cache.Mark("alice", start)
	cache.Mark("bob", start.Add(30*time.Second))
	require.True(t, cache.Active("alice", start.Add(59*time.Second)))
	require.False(t, cache.Active("alice", start.Add(time.Minute)))
	require.Equal(t, 2, cache.Len())

	require.Equal(t, 1, cache.Prune(start.Add(time.Minute)))
	require.Equal(t, 1, cache.Len())
	require.True(t, cache.Active("bob", start.Add(time.Minute)))

	cache.Forget("bob")
	require.Zero(t, cache.Len())
}

func TestCooldownCacheZeroCooldown(t *testing.T) {
	cache := NewCooldownCache(0)
	now := time.Unix(1_700_000_000, 0)
	cache.Mark("alice", now)
	require.False(t, cache.Active("alice", now))
}
