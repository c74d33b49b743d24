package arcablock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "config.json")
	assert.NoError(t, os.WriteFile(filename, []byte(body), 0644))
	return filename
}

func TestLoadConfig(t *testing.T) {
	filename := writeConfig(t, `{
		"username": "operator",
		"password": "hunter2",
		"slug": "testch",
		"onlyOneYear": true,
		"showArticle": true,
		"showComment": false,
		"duration": "86400",
		"lessThanDays": 5
	}`)

	config, err := LoadConfig(filename)
	assert.NoError(t, err, "a valid config should load")
	assert.Equal(t, "operator", config.Username, "the username should be read")
	assert.Equal(t, "testch", config.Slug, "the slug should be read")
	assert.True(t, config.OnlyOneYear, "the one-year flag should be read")
	assert.Equal(t, "86400", config.Duration, "the duration override should be read")
	assert.Equal(t, 5, config.LessThanDays, "the remaining-days ceiling should be read")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrConfigInvalid, "a missing file should be a config error")
}

func TestLoadConfigMissingRequiredField(t *testing.T) {
	filename := writeConfig(t, `{"username": "operator", "password": "hunter2"}`)

	_, err := LoadConfig(filename)
	assert.ErrorIs(t, err, ErrConfigInvalid, "a config without a slug should be rejected")
}

func TestLoadConfigBadDuration(t *testing.T) {
	filename := writeConfig(t, `{
		"username": "operator", "password": "hunter2", "slug": "testch",
		"duration": "one year"
	}`)

	_, err := LoadConfig(filename)
	assert.ErrorIs(t, err, ErrConfigInvalid, "a non-numeric duration should be rejected")
}

func TestLoadConfigBadRegex(t *testing.T) {
	filename := writeConfig(t, `{
		"username": "operator", "password": "hunter2", "slug": "testch",
		"reasonRegex": "("
	}`)

	_, err := LoadConfig(filename)
	assert.ErrorIs(t, err, ErrConfigInvalid, "an uncompilable pattern should be rejected")
}
