package arcablock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadCacheCreatesMissingFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "cache.json")

	cache, err := LoadCache(filename)
	assert.NoError(t, err, "a missing cache file should be created")
	assert.Empty(t, cache.ArticleDelete, "a fresh cache should be empty")

	_, err = os.Stat(filename)
	assert.NoError(t, err, "the cache file should exist on disk")
}

func TestCacheRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "cache.json")

	cache, err := LoadCache(filename)
	assert.NoError(t, err, "loading should not fail")

	cache.Add("b/testch/111")
	cache.Add("b/testch/222")
	cache.Add("b/testch/111") // duplicate
	assert.NoError(t, cache.Save(), "saving should not fail")

	reloaded, err := LoadCache(filename)
	assert.NoError(t, err, "reloading should not fail")
	assert.Equal(t, []string{"b/testch/111", "b/testch/222"}, reloaded.ArticleDelete,
		"the list should round-trip without duplicates")
	assert.True(t, reloaded.Has("b/testch/111"), "known URLs should be found")
	assert.False(t, reloaded.Has("b/testch/333"), "unknown URLs should not be found")
}

func TestLoadCacheRejectsMalformedFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "cache.json")
	assert.NoError(t, os.WriteFile(filename, []byte("not json"), 0644))

	_, err := LoadCache(filename)
	assert.ErrorIs(t, err, ErrCacheInvalid, "a malformed cache file should be rejected")
}

func TestLoadCacheRejectsMissingKey(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "cache.json")
	assert.NoError(t, os.WriteFile(filename, []byte("{}"), 0644))

	_, err := LoadCache(filename)
	assert.ErrorIs(t, err, ErrCacheInvalid, "a cache without articleDelete should be rejected")
}
