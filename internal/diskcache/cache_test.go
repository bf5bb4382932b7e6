package diskcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string
}

func TestCache_RoundTrip(t *testing.T) {
	c, err := Open(t.TempDir(), Tier{MaxBytes: 1 << 20, MinFreeBytes: 0}, 30*24*time.Hour)
	require.NoError(t, err)

	require.NoError(t, c.Put("k1", payload{Value: "hello"}, time.Hour))

	var got payload
	entry, ok := c.Get("k1", &got)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Value)
	assert.Equal(t, "k1", entry.Key)
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c, err := Open(t.TempDir(), Tier{MaxBytes: 1 << 20, MinFreeBytes: 0}, time.Hour)
	require.NoError(t, err)

	var got payload
	_, ok := c.Get("missing", &got)
	assert.False(t, ok)
}

func TestCache_ExpiredEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, Tier{MaxBytes: 1 << 20, MinFreeBytes: 0}, time.Hour)
	require.NoError(t, err)

	require.NoError(t, c.Put("k1", payload{Value: "x"}, -time.Second))

	var got payload
	_, ok := c.Get("k1", &got)
	assert.False(t, ok)
}

func TestCache_MaintainEvictsUntilUnderCap(t *testing.T) {
	c, err := Open(t.TempDir(), Tier{MaxBytes: 1, MinFreeBytes: 0}, 30*24*time.Hour)
	require.NoError(t, err)

	require.NoError(t, c.Put("a", payload{Value: "aaaaaaaaaa"}, time.Hour))
	require.NoError(t, c.Put("b", payload{Value: "bbbbbbbbbb"}, time.Hour))

	require.NoError(t, c.Maintain())

	total, err := c.TotalBytes()
	require.NoError(t, err)
	assert.LessOrEqual(t, total, int64(1))
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, int64(1<<30), TierFor(5).MaxBytes)
	assert.Equal(t, int64(500<<20), TierFor(20).MaxBytes)
	assert.Equal(t, int64(250<<20), TierFor(150).MaxBytes)
}
