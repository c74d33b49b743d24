package arcablock

import (
	"errors"
	"sync"
	"time"
)

const (
	BASE_URL   = "https://arca.live"
	ORIGIN     = "https://arca.live"
	USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/109.0"

	LOGIN_PATH  = "u/login"
	LOGOUT_PATH = "u/logout"

	SITE_TIMEZONE = "Asia/Seoul"

	HTTP_TIMEOUT  = 30 * time.Second
	REBLOCK_DELAY = 10 * time.Second

	// DEFAULT_BLOCK_DURATION is 365 days in seconds, the site's longest preset.
	DEFAULT_BLOCK_DURATION = "31536000"

	REASON_LIKE_THRESHOLD = 0.8
)

var (
	ErrConfigInvalid = errors.New("invalid config")
	ErrCacheInvalid  = errors.New("invalid cache")
	ErrLoginFailed   = errors.New("failed to login")
	ErrNoCSRFToken   = errors.New("csrf token not found")
	ErrCaptcha       = errors.New("captcha triggered")
)

var (
	siteLocOnce sync.Once
	siteLoc     *time.Location
)

// SiteLocation returns the site's local timezone, falling back to a fixed
// KST offset when the tz database is unavailable.
func SiteLocation() *time.Location {
	siteLocOnce.Do(func() {
		loc, err := time.LoadLocation(SITE_TIMEZONE)
		if err != nil {
			loc = time.FixedZone("KST", 9*60*60)
		}
		siteLoc = loc
	})
	return siteLoc
}
