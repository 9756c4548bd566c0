// Package config resolves the API origin and share-link base for a
// session. Precedence: explicit flag, then environment, then the local
// development default. A deployed environment without an origin is a
// configuration error and fails loudly instead of silently pointing at
// the wrong host.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	envAPIURL    = "PANELCFG_API_URL"
	envShareURL  = "PANELCFG_SHARE_URL"
	envName      = "PANELCFG_ENV"
	devDefault   = "http://localhost:3005"
	shareDefault = "https://constrtodo.ru/acoustic"
)

// Config holds the resolved session settings.
type Config struct {
	// BaseURL is the API origin all gateway requests resolve against.
	BaseURL string
	// ShareBase is the origin+path share links are built on.
	ShareBase string
}

// Load resolves the configuration. envFile, when non-empty, names a
// dotenv file to load first; otherwise a ./.env is picked up if
// present. Missing env files are not an error.
func Load(flagBase, flagShare, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, err
		}
	} else {
		_ = godotenv.Load()
	}

	base := strings.TrimSpace(flagBase)
	if base == "" {
		base = strings.TrimSpace(os.Getenv(envAPIURL))
	}
	if base == "" {
		if strings.EqualFold(os.Getenv(envName), "production") {
			return Config{}, errors.New(envAPIURL + " is not set; refusing to guess the API origin in production")
		}
		base = devDefault
	}

	share := strings.TrimSpace(flagShare)
	if share == "" {
		share = strings.TrimSpace(os.Getenv(envShareURL))
	}
	if share == "" {
		share = shareDefault
	}

	return Config{
		BaseURL:   strings.TrimRight(base, "/"),
		ShareBase: strings.TrimRight(share, "/"),
	}, nil
}
