package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port         int
		ReadTimeout  string
		WriteTimeout string
		IdleTimeout  string
	}
	Site struct {
		BaseURL       string
		Locales       []string
		DefaultLocale string
		Pages         []string
	}
	Database struct {
		Driver string
		URL    string
	}
	Arweave struct {
		Gateway string
	}
	Gallery struct {
		SeedFile string
	}
	Log struct {
		Level string
		Dir   string
	}
	LinkCheck struct {
		UserAgent   string
		Parallelism int
		Delay       string
	}
}

// Load reads config.yaml from the given directories (defaults to "." and
// "./config"). A missing file is fine; defaults and AVATARS_* environment
// variables still apply.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("AVATARS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Default values
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readtimeout", "15s")
	v.SetDefault("server.writetimeout", "15s")
	v.SetDefault("server.idletimeout", "60s")
	v.SetDefault("site.baseurl", "https://opensourceavatars.com")
	v.SetDefault("site.locales", []string{"en", "ja"})
	v.SetDefault("site.defaultlocale", "en")
	v.SetDefault("site.pages", []string{"", "/gallery", "/about", "/resources", "/vrminspector", "/test"})
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.url", "avatars.db")
	v.SetDefault("arweave.gateway", "https://arweave.net")
	v.SetDefault("gallery.seedfile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "")
	v.SetDefault("linkcheck.useragent", "OpenSourceAvatars LinkCheck/1.0")
	v.SetDefault("linkcheck.parallelism", 2)
	v.SetDefault("linkcheck.delay", "0s")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings that cannot be repaired with a default.
// Locale and page syntax is checked by the sitemap generator.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if len(c.Site.Locales) == 0 {
		return errors.New("site.locales must not be empty")
	}
	if !slices.Contains(c.Site.Locales, c.Site.DefaultLocale) {
		return fmt.Errorf("default locale %q is not in site.locales %v", c.Site.DefaultLocale, c.Site.Locales)
	}
	return nil
}

func (c *Config) ReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

func (c *Config) WriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 15*time.Second)
}

func (c *Config) IdleTimeout() time.Duration {
	return parseDuration(c.Server.IdleTimeout, 60*time.Second)
}

func (c *Config) LinkCheckDelay() time.Duration {
	return parseDuration(c.LinkCheck.Delay, 0)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
