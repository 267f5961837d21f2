package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStashSetGetDelete(t *testing.T) {
	stash := NewMemoryStash(time.Minute, time.Minute)

	_, ok := stash.Get("cart")
	assert.False(t, ok)

	stash.Set("cart", []byte(`{"items":[]}`))
	got, ok := stash.Get("cart")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"items":[]}`), got)

	stash.Delete("cart")
	_, ok = stash.Get("cart")
	assert.False(t, ok)
}

func TestMemoryStashEntriesExpire(t *testing.T) {
	stash := NewMemoryStash(20*time.Millisecond, time.Minute)

	stash.Set("cart", []byte("x"))
	time.Sleep(50 * time.Millisecond)

	_, ok := stash.Get("cart")
	assert.False(t, ok)
}
