package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveybench/pkg/contracts/domain"
)

func testRows() []domain.CanonicalRow {
	return []domain.CanonicalRow{
		{Specialty: "Cardiology", SurveySource: "MGMA", Year: "2024"},
		{Specialty: "Dermatology", SurveySource: "MGMA", Year: "2024"},
	}
}

func TestCachePutGet(t *testing.T) {
	c := New(time.Hour, nil)

	_, ok := c.Get()
	assert.False(t, ok, "empty cache must miss")
	assert.False(t, c.HasFreshData())

	v := c.Put(testRows(), domain.FilterOptions{Specialties: []string{"Cardiology", "Dermatology"}})
	assert.Equal(t, int64(1), v)

	snap, ok := c.Get()
	require.True(t, ok)
	assert.Len(t, snap.Rows, 2)
	assert.Equal(t, []string{"Cardiology", "Dermatology"}, snap.Options.Specialties)
	assert.Equal(t, int64(1), snap.Version)
	assert.True(t, c.HasFreshData())
}

func TestCacheTTLExpiry(t *testing.T) {
	c := New(time.Hour, nil)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put(testRows(), domain.FilterOptions{})
	assert.True(t, c.HasFreshData())

	now = now.Add(59 * time.Minute)
	assert.True(t, c.HasFreshData())

	now = now.Add(2 * time.Minute)
	assert.False(t, c.HasFreshData())
	_, ok := c.Get()
	assert.False(t, ok, "stale snapshot must miss, not error")
}

func TestCacheVersionMonotonic(t *testing.T) {
	c := New(time.Hour, nil)

	assert.Equal(t, int64(0), c.Version())
	assert.Equal(t, int64(1), c.Put(testRows(), domain.FilterOptions{}))
	assert.Equal(t, int64(2), c.Put(testRows(), domain.FilterOptions{}))

	c.Clear()
	_, ok := c.Get()
	assert.False(t, ok)
	assert.Equal(t, int64(2), c.Version(), "clear must not rewind the counter")
	assert.Equal(t, int64(3), c.Put(testRows(), domain.FilterOptions{}))
}

func TestCacheShapeMismatchIsSilentMiss(t *testing.T) {
	c := New(time.Hour, nil)
	c.Put(testRows(), domain.FilterOptions{})

	c.mu.Lock()
	c.entry.shape = "Specialty,ProviderType" // snapshot from an older schema
	c.mu.Unlock()

	_, ok := c.Get()
	assert.False(t, ok)
	assert.False(t, c.HasFreshData())
}

func TestCacheDefaultTTL(t *testing.T) {
	c := New(0, nil)
	assert.Equal(t, DefaultTTL, c.ttl)
}
