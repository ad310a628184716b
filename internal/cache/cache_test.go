package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func size[K comparable, V any](c *TTLCache[K, V]) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func TestTTLCache_Expiry(t *testing.T) {
	c := New[string, int](time.Minute, time.Hour)
	defer c.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.GetOrLoad("a", func() (int, error) { return 1, nil })
	require.NoError(t, err)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, size(c))

	c.evictExpired()
	assert.Equal(t, 0, size(c))
}

func TestTTLCache_GetOrLoad(t *testing.T) {
	c := New[string, []string](time.Minute, time.Hour)
	defer c.Close()

	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"vinil"}, nil
	}

	v, err := c.GetOrLoad("paper_types", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"vinil"}, v)

	_, err = c.GetOrLoad("paper_types", load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = c.GetOrLoad("broken", func() ([]string, error) { return nil, errors.New("db down") })
	assert.Error(t, err)
	_, ok := c.Get("broken")
	assert.False(t, ok)
}

func TestTTLCache_Clear(t *testing.T) {
	c := New[string, int](time.Minute, time.Hour)
	defer c.Close()

	for _, k := range []string{"categories", "paper_types"} {
		_, err := c.GetOrLoad(k, func() (int, error) { return 1, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 2, size(c))
	c.Clear()
	assert.Equal(t, 0, size(c))

	c.Close()
	c.Close()
}

func TestTTLCache_ClearDuringLoadDiscardsResult(t *testing.T) {
	c := New[bool, []string](time.Minute, time.Hour)
	defer c.Close()

	v, err := c.GetOrLoad(true, func() ([]string, error) {
		// A write lands while the old list is being read.
		c.Clear()
		return []string{"eski"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"eski"}, v)

	_, ok := c.Get(true)
	assert.False(t, ok)

	v, err = c.GetOrLoad(true, func() ([]string, error) { return []string{"yeni"}, nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"yeni"}, v)
	cached, ok := c.Get(true)
	assert.True(t, ok)
	assert.Equal(t, []string{"yeni"}, cached)
}
