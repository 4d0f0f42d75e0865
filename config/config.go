/* config.go
 * Contains the application configuration. Values come from a TOML file, then a .env file and the environment, then
 * command line flags which are applied by main.go
 * Authors: Zachary Bower
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds every setting of the application
type Config struct {
	Upstream UpstreamConfig `toml:"upstream"`
	Mongo    MongoConfig    `toml:"mongo"`
	Server   ServerConfig   `toml:"server"`
	Bot      BotConfig      `toml:"bot"`
	App      AppConfig      `toml:"app"`
}

// UpstreamConfig is the tournament site the brackets are read from
type UpstreamConfig struct {
	BaseURL           string   `toml:"base_url"`
	TournamentID      int      `toml:"tournament_id"`
	Events            []string `toml:"events"`              // loaded on startup
	RequestsPerSecond float64  `toml:"requests_per_second"` // rate limit for upstream requests
	Burst             int      `toml:"burst"`
}

// MongoConfig is the cache database
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// ServerConfig is the HTTP server
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	WebhookSecret  string   `toml:"webhook_secret"`
}

// BotConfig is the Discord bot
type BotConfig struct {
	Token string `toml:"token"`
	Event string `toml:"event"` // event shown by the bot
}

// AppConfig holds general settings
type AppConfig struct {
	Debug           bool   `toml:"debug"`
	RefreshInterval string `toml:"refresh_interval"` // how often loaded events are refreshed, "0s" disables
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:           "https://www.pickleballtournaments.com",
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "pickleball_brackets",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		App: AppConfig{
			RefreshInterval: "2m",
		},
	}
}

// Load reads the configuration file at path over the defaults and applies the environment. A missing file is not an
// error. Variables in a .env file in the working directory are loaded into the environment first
// Preconditions: Receives the path of a TOML file, may be empty
// Postconditions: Returns the configuration, or an error if the file or an environment value is invalid
func Load(path string) (*Config, error) {
	// A missing .env file is normal outside development
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings with the environment variables that are set
// Preconditions: Receives a lookup function such as os.Getenv
// Postconditions: Secrets and connection settings are replaced by non-empty variables. Returns an error if
// TOURNAMENT_ID is not a number
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("DISCORD_TOKEN"); v != "" {
		c.Bot.Token = v
	}
	if v := getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := getenv("UPSTREAM_BASE_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := getenv("WEBHOOK_SECRET"); v != "" {
		c.Server.WebhookSecret = v
	}
	if v := getenv("TOURNAMENT_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TOURNAMENT_ID %q: %w", v, err)
		}
		c.Upstream.TournamentID = id
	}
	return nil
}

// Save writes the configuration to path as TOML
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Upstream.TournamentID <= 0 {
		return fmt.Errorf("upstream tournament id must be set")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base url must be set")
	}
	if c.Upstream.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive: %v", c.Upstream.RequestsPerSecond)
	}
	if c.Upstream.Burst < 1 {
		return fmt.Errorf("burst must be at least 1: %d", c.Upstream.Burst)
	}
	if _, err := c.GetRefreshInterval(); err != nil {
		return err
	}
	return nil
}

// GetRefreshInterval returns the refresh interval as a duration
func (c *Config) GetRefreshInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.App.RefreshInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid refresh interval %q: %w", c.App.RefreshInterval, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("refresh interval cannot be negative: %s", d)
	}
	return d, nil
}
