// Package config loads the fetch job configuration from a file and the
// environment using viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dronir/ILRS-TLE/pkg/catalog"
	"github.com/dronir/ILRS-TLE/pkg/client"
	"github.com/dronir/ILRS-TLE/pkg/query"
	"github.com/dronir/ILRS-TLE/pkg/session"
	"github.com/dronir/ILRS-TLE/pkg/sink"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ILRS_TLE_USERNAME.
const EnvPrefix = "ILRS_TLE"

// ErrMissingCredentials is returned when username or password is empty.
var ErrMissingCredentials = errors.New("username and password are required")

// Config is the complete job configuration.
type Config struct {
	// Username and Password are the Space-Track credentials
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// DebugLevel gates log verbosity: 0 failures only, 1 progress, 2+ tracing
	DebugLevel int `mapstructure:"debug_level"`

	// OutputDir receives one <list>.txt file per list
	OutputDir string `mapstructure:"output_dir"`

	// Format is the element-set format requested from the service
	Format string `mapstructure:"format"`

	// Lists are statically configured satellite lists
	Lists []ListConfig `mapstructure:"lists"`

	SpaceTrack SpaceTrackConfig `mapstructure:"spacetrack"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ListConfig is a named, fixed list of catalog numbers. Lists are an
// array rather than a table because viper lower-cases map keys.
type ListConfig struct {
	Name    string `mapstructure:"name"`
	Numbers []int  `mapstructure:"numbers"`
}

// SpaceTrackConfig locates the service endpoints.
type SpaceTrackConfig struct {
	// BaseURL is the service root, e.g. https://www.space-track.org
	BaseURL string `mapstructure:"base_url"`
	// SessionLifetime is how long a login is trusted before renewal
	SessionLifetime time.Duration `mapstructure:"session_lifetime"`
	// FailureMarker is the substring marking a rejected login
	FailureMarker string `mapstructure:"failure_marker"`
}

// HTTPConfig controls the HTTP clients.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// CatalogConfig controls the ILRS catalog list.
type CatalogConfig struct {
	// Enabled resolves ListName from the ILRS listing
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	ListName string `mapstructure:"list_name"`
}

// RedisConfig enables the Redis sink when Addr is set.
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// MetricsConfig enables pushing metrics when PushgatewayURL is set.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DebugLevel: 0,
		OutputDir:  ".",
		Format:     query.DefaultFormat,
		SpaceTrack: SpaceTrackConfig{
			BaseURL:         "https://www.space-track.org",
			SessionLifetime: session.DefaultFreshness,
			FailureMarker:   session.DefaultFailureMarker,
		},
		HTTP: HTTPConfig{
			Timeout:   client.DefaultTimeout,
			UserAgent: "ILRS-TLE/1.0",
		},
		Catalog: CatalogConfig{
			Enabled:  true,
			URL:      catalog.DefaultURL,
			ListName: "ILRS_active",
		},
		Redis: RedisConfig{
			KeyPrefix: sink.DefaultKeyPrefix,
		},
		Metrics: MetricsConfig{
			Job: "ilrs_tle",
		},
	}
}

// SetDefaults registers default values and environment overrides with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("debug_level", defaults.DebugLevel)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("format", defaults.Format)

	v.SetDefault("spacetrack.base_url", defaults.SpaceTrack.BaseURL)
	v.SetDefault("spacetrack.session_lifetime", defaults.SpaceTrack.SessionLifetime)
	v.SetDefault("spacetrack.failure_marker", defaults.SpaceTrack.FailureMarker)

	v.SetDefault("http.timeout", defaults.HTTP.Timeout)
	v.SetDefault("http.user_agent", defaults.HTTP.UserAgent)

	v.SetDefault("catalog.enabled", defaults.Catalog.Enabled)
	v.SetDefault("catalog.url", defaults.Catalog.URL)
	v.SetDefault("catalog.list_name", defaults.Catalog.ListName)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", defaults.Redis.KeyPrefix)
	v.SetDefault("redis.ttl", time.Duration(0))

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", defaults.Metrics.Job)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads path (when not empty) into v and returns the validated
// configuration.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the job cannot run with.
func (c *Config) Validate() error {
	if c.Username == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	if c.DebugLevel < 0 {
		return fmt.Errorf("debug_level must be >= 0 (got %d)", c.DebugLevel)
	}
	if c.Format == "" {
		return fmt.Errorf("format is required")
	}
	if c.SpaceTrack.BaseURL == "" {
		return fmt.Errorf("spacetrack.base_url is required")
	}
	if c.SpaceTrack.SessionLifetime <= 0 {
		return fmt.Errorf("spacetrack.session_lifetime must be positive (got %s)", c.SpaceTrack.SessionLifetime)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive (got %s)", c.HTTP.Timeout)
	}
	if c.Catalog.Enabled && c.Catalog.ListName == "" {
		return fmt.Errorf("catalog.list_name is required when the catalog is enabled")
	}
	seen := make(map[string]bool, len(c.Lists)+1)
	if c.Catalog.Enabled {
		seen[c.Catalog.ListName] = true
	}
	for _, l := range c.Lists {
		if l.Name == "" || strings.ContainsAny(l.Name, `/\`) {
			return fmt.Errorf("invalid list name %q", l.Name)
		}
		if seen[l.Name] {
			return fmt.Errorf("duplicate list name %q", l.Name)
		}
		seen[l.Name] = true
	}
	return nil
}

// LoginURL returns the form-login endpoint.
func (c *Config) LoginURL() string {
	return strings.TrimRight(c.SpaceTrack.BaseURL, "/") + "/ajaxauth/login"
}

// QueryURL returns the base of the batch query endpoint.
func (c *Config) QueryURL() string {
	return strings.TrimRight(c.SpaceTrack.BaseURL, "/") + "/basicspacedata/query"
}
