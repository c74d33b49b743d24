package arcablock

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Reblocker re-issues blocks for the approved records, strictly sequentially
// with a fixed pause between records. Pacing is intentional: it mimics a human
// operator to stay under the site's rate limiting.
type Reblocker struct {
	Session  *Session
	Cache    *Cache
	Slug     string
	Reason   string        // Override reason; empty keeps each record's own.
	Duration string        // Override duration in seconds; empty means the 1-year default.
	Delay    time.Duration // Pause between records.
}

// NewReblocker builds a Reblocker from the loaded configuration.
func NewReblocker(session *Session, cache *Cache, config *Config) *Reblocker {
	return &Reblocker{
		Session:  session,
		Cache:    cache,
		Slug:     config.Slug,
		Reason:   config.Reason,
		Duration: config.Duration,
		Delay:    REBLOCK_DELAY,
	}
}

// Run processes the records in order. Per-record failures are logged and
// skipped; only a CAPTCHA challenge (HTTP 429) aborts the batch, returning
// ErrCaptcha with the remaining records untouched.
func (r *Reblocker) Run(users []BlockedUser) error {
	for i := range users {
		if i > 0 {
			time.Sleep(r.Delay)
		}
		if err := r.reblock(&users[i]); err != nil {
			return err
		}
	}

	return nil
}

// reblock lifts and re-issues one block. Each record is attempted exactly
// once; there are no retries at any layer.
func (r *Reblocker) reblock(user *BlockedUser) error {
	log.Info().
		Str("Username", user.Username).
		Bool("Article", user.IsArticle).
		Bool("Comment", user.IsComment).
		Msg("Re-issuing block.")

	if user.IsComment {
		// The comment block endpoint needs a comment id the listing does not
		// expose, so comment records are surfaced as unsupported, not
		// silently dropped.
		log.Warn().Str("Username", user.Username).Msg("Comment blocks are not supported, skipping.")
		return nil
	}

	if r.Cache.Has(user.ArticleURL) {
		log.Warn().Str("URL", user.ArticleURL).Msg("Article is known to be deleted, skipping.")
		return nil
	}

	// The article page carries the fresh anti-forgery token the block form
	// needs.
	doc, err := r.Session.GetDocument(user.ArticleURL)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			log.Error().Str("URL", user.ArticleURL).Msg("Article has been deleted.")
			r.Cache.Add(user.ArticleURL)
			return nil
		}
		log.Error().Err(err).Str("URL", user.ArticleURL).Msg("Failed to fetch article.")
		return nil
	}

	token, err := csrfToken(doc)
	if err != nil {
		log.Error().Err(err).Str("URL", user.ArticleURL).Msg("Article page has no block form token.")
		return nil
	}

	log.Info().Str("Username", user.Username).Msg("Lifting current block.")
	res, err := r.Session.Get(user.UnblockURL)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusTooManyRequests {
			log.Error().Str("Username", user.Username).Msg("Captcha triggered, aborting the run.")
			return ErrCaptcha
		}
		log.Error().Err(err).Str("Username", user.Username).Msg("Failed to lift block.")
		return nil
	}
	res.Body.Close()

	reason := r.Reason
	if reason == "" {
		reason = user.Reason
	}
	until := r.Duration
	if until == "" {
		until = DEFAULT_BLOCK_DURATION
	}

	blockURL := strings.Replace(user.ArticleURL, "b/"+r.Slug+"/", "b/"+r.Slug+"/block/article/", 1)

	res, err = r.Session.PostForm(blockURL, url.Values{
		"_csrf":       {token},
		"description": {reason},
		"until":       {until},
	})
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.Code {
			case http.StatusMethodNotAllowed:
				// The endpoint answers 405 once the block is already in the
				// requested state.
				log.Info().Str("Username", user.Username).Msg("Block already in place.")
				return nil
			case http.StatusTooManyRequests:
				log.Error().Str("Username", user.Username).Msg("Captcha triggered, aborting the run.")
				return ErrCaptcha
			}
		}
		log.Error().Err(err).Str("Username", user.Username).Msg("Failed to re-issue block.")
		return nil
	}
	res.Body.Close()

	log.Info().Str("Username", user.Username).Str("Until", until).Msg("Block re-issued.")
	return nil
}
