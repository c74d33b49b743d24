package main

import (
	"errors"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nokduro/arcablock"
)

const (
	ExitOK            = 0
	ExitError         = 1
	ExitConfigInvalid = 2
	ExitLoginFailed   = 3
	ExitCaptcha       = 4
)

func main() {
	configPath := flag.String("config", "config.json", "path to the configuration file")
	cachePath := flag.String("cache", "cache.json", "path to the deleted-article cache file")
	cookiePath := flag.String("cookies", "cookies.json", "path to the cookie store")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	config, err := arcablock.LoadConfig(*configPath)
	if err != nil {
		log.Error().Err(err).Str("Name", *configPath).Msg("Invalid configuration.")
		os.Exit(ExitConfigInvalid)
	}

	now := time.Now().In(arcablock.SiteLocation())
	filters, err := arcablock.FiltersFromConfig(config, now)
	if err != nil {
		log.Error().Err(err).Msg("Invalid filter configuration.")
		os.Exit(ExitConfigInvalid)
	}

	cache, err := arcablock.LoadCache(*cachePath)
	if err != nil {
		log.Error().Err(err).Str("Name", *cachePath).Msg("Invalid cache file.")
		os.Exit(ExitConfigInvalid)
	}

	session, err := arcablock.NewSession(arcablock.BASE_URL, *cookiePath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create the session.")
		os.Exit(ExitError)
	}

	if err = session.Login(config.Username, config.Password); err != nil {
		log.Error().Err(err).Str("Username", config.Username).Msg("Login failed.")
		os.Exit(ExitLoginFailed)
	}

	users, err := arcablock.ListBlockedUsers(session, arcablock.NewBlockedPageParser(), config.Slug)
	if err != nil {
		log.Error().Err(err).Str("Slug", config.Slug).Msg("Failed to fetch the blocked user listing.")
		os.Exit(ExitError)
	}

	candidates := arcablock.ApplyFilters(users, filters)
	log.Info().Int("Total", len(users)).Int("Candidates", len(candidates)).Msg("Filters applied.")

	picked, err := arcablock.SelectUsers(candidates, now)
	if err != nil {
		log.Error().Err(err).Msg("Selection failed.")
		os.Exit(ExitError)
	}
	if len(picked) == 0 {
		log.Info().Msg("Nothing selected, done.")
	}

	runErr := arcablock.NewReblocker(session, cache, config).Run(picked)

	// The cache is flushed even on the captcha abort path, so a partial run
	// still remembers the deleted articles it discovered.
	if err = cache.Save(); err != nil {
		log.Error().Err(err).Str("Name", *cachePath).Msg("Failed to save the cache.")
	}
	if err = session.SaveCookies(); err != nil {
		log.Warn().Err(err).Str("Name", *cookiePath).Msg("Failed to save cookies.")
	}

	if runErr != nil {
		if errors.Is(runErr, arcablock.ErrCaptcha) {
			os.Exit(ExitCaptcha)
		}
		log.Error().Err(runErr).Msg("Run aborted.")
		os.Exit(ExitError)
	}

	if config.Logout {
		if err = session.Logout(); err != nil {
			log.Warn().Err(err).Msg("Logout failed.")
		}
	}

	os.Exit(ExitOK)
}
