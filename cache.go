package arcablock

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/nokduro/arcablock/utils"
)

// Cache keeps the article URLs confirmed deleted on the remote site, so a
// later run can skip the guaranteed-404 round trip. It is loaded once at
// startup and rewritten wholesale at exit.
type Cache struct {
	Filename      string   `json:"-"`
	ArticleDelete []string `json:"articleDelete"`
}

// LoadCache loads the deletion cache from the specified file, creating an
// empty one when the file does not exist yet.
func LoadCache(filename string) (*Cache, error) {
	if !utils.FileExists(filename) {
		cache := &Cache{Filename: filename, ArticleDelete: []string{}}
		if err := cache.Save(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheInvalid, err)
		}
		return cache, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheInvalid, err)
	}

	var cache Cache
	if err = json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheInvalid, err)
	}
	if cache.ArticleDelete == nil {
		return nil, fmt.Errorf("%w: articleDelete is missing", ErrCacheInvalid)
	}
	cache.Filename = filename

	return &cache, nil
}

// Has reports whether the article URL is already known to be deleted.
func (c *Cache) Has(articleURL string) bool {
	for _, known := range c.ArticleDelete {
		if known == articleURL {
			return true
		}
	}
	return false
}

// Add records the article URL as deleted. Adding a known URL is a no-op, so
// the on-disk list stays duplicate free.
func (c *Cache) Add(articleURL string) {
	if c.Has(articleURL) {
		return
	}
	c.ArticleDelete = append(c.ArticleDelete, articleURL)
	log.Debug().Str("URL", articleURL).Msg("Article recorded as deleted.")
}

// Save rewrites the cache file.
func (c *Cache) Save() error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %v", err)
	}

	if err = os.WriteFile(c.Filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %v", err)
	}

	return nil
}
