package embedding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "hello world", normalizeKey("  Hello   World \t\r"))
	assert.Equal(t, "mixedcase", normalizeKey("Mixed\tCase"))
}

func TestCache_SetAndGet(t *testing.T) {
	c := NewCache(10, time.Hour, 30*time.Minute, nil)
	vec := []float32{1, 2, 3}
	c.Set("Some Text", vec)

	got, ok := c.Get("  some   text  ")
	require.True(t, ok)
	assert.Equal(t, vec, got)
}

func TestCache_MissReturnsFalse(t *testing.T) {
	c := NewCache(10, time.Hour, 30*time.Minute, nil)
	_, ok := c.Get("never set")
	assert.False(t, ok)
}

func TestCache_AbsoluteTTLExpiry(t *testing.T) {
	c := NewCache(10, time.Millisecond, time.Hour, nil)
	c.Set("expiring", []float32{1})
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get("expiring")
	assert.False(t, ok)
}

func TestCache_SlidingTTLExpiry(t *testing.T) {
	c := NewCache(10, time.Hour, time.Millisecond, nil)
	c.Set("sliding", []float32{1})
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get("sliding")
	assert.False(t, ok)
}

func TestCache_EvictsOldestWhenFull(t *testing.T) {
	c := NewCache(2, time.Hour, time.Hour, nil)
	c.Set("first", []float32{1})
	time.Sleep(time.Millisecond)
	c.Set("second", []float32{2})
	time.Sleep(time.Millisecond)
	c.Set("third", []float32{3})

	_, firstOk := c.Get("first")
	_, secondOk := c.Get("second")
	_, thirdOk := c.Get("third")
	assert.False(t, firstOk)
	assert.True(t, secondOk)
	assert.True(t, thirdOk)
}
