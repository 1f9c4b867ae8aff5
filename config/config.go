// Package config loads settings from an ini file, then from the environment. Command-line flags are applied by main.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// EnvPrefix is prepended to the upper-case key name in environment variables, like BLOGR_LISTEN.
const EnvPrefix = "BLOGR_"

type Config struct {
	Listen             string
	DB                 string // see github.com/xo/dburl
	Base               string
	Secret             string // HMAC key for session tokens
	SessionLifetime    time.Duration
	SessionIdleTimeout time.Duration // not extended by requests, so it caps SessionLifetime if set
	CookieSecure       bool
	CORSOrigins        []string
	LogLevel           string
}

func Default() Config {
	return Config{
		Listen:          "127.0.0.1:8080",
		DB:              "sqlite3:blogr.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL",
		SessionLifetime: 7 * 24 * time.Hour,
		LogLevel:        "info",
	}
}

// Load returns the default config, overridden by the ini file and then by the environment.
// Missing files are skipped. The dotenv file is loaded into the environment, existing variables take precedence.
func Load(iniPath, dotenvPath string) (Config, error) {

	var c = Default()

	if iniPath != "" {
		if err := c.loadIni(iniPath); err != nil {
			return c, err
		}
	}

	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return c, fmt.Errorf("loading %s: %w", dotenvPath, err)
		}
	}

	if err := c.loadEnv(os.LookupEnv); err != nil {
		return c, err
	}

	return c, nil
}

func (c *Config) loadIni(path string) error {

	file, err := ini.LooseLoad(path) // skips missing files
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	for key, value := range file.Section("").KeysHash() {
		if err := c.set(key, value); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) loadEnv(lookup func(string) (string, bool)) error {
	for _, key := range keys {
		if value, ok := lookup(EnvPrefix + strings.ToUpper(key)); ok {
			if err := c.set(key, value); err != nil {
				return fmt.Errorf("environment: %w", err)
			}
		}
	}
	return nil
}

var keys = []string{"listen", "db", "base", "secret", "session_lifetime", "session_idle_timeout", "cookie_secure", "cors_origins", "log_level"}

func (c *Config) set(key, value string) error {

	value = strings.TrimSpace(value)

	var err error
	switch key {
	case "listen":
		c.Listen = value
	case "db":
		c.DB = value
	case "base":
		c.Base = value
	case "secret":
		c.Secret = value
	case "session_lifetime":
		c.SessionLifetime, err = time.ParseDuration(value)
	case "session_idle_timeout":
		c.SessionIdleTimeout, err = time.ParseDuration(value)
	case "cookie_secure":
		c.CookieSecure, err = strconv.ParseBool(value)
	case "cors_origins":
		c.CORSOrigins = nil
		for _, origin := range strings.Split(value, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORSOrigins = append(c.CORSOrigins, origin)
			}
		}
	case "log_level":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown key %q", key)
	}

	if err != nil {
		return fmt.Errorf("key %s: %w", key, err)
	}
	return nil
}

// BasePath returns the base with a leading slash and without a trailing one, or an empty string.
func (c Config) BasePath() string {
	var base = strings.Trim(c.Base, "/")
	if base != "" {
		base = "/" + base
	}
	return base
}
