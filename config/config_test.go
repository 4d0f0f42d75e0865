/* config_test.go
 * Contains unit tests for config.go
 * Authors: Zachary Bower
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to build a getenv function from a map
func envFrom(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

// region Load tests

// TestLoad_MissingFile tests a missing file gives the defaults
func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "2m", cfg.App.RefreshInterval)
}

// TestLoad_File tests file values replace the defaults and unset values keep them
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[upstream]
tournament_id = 4321
events = ["Mixed Doubles 4.0", "Singles Pool"]

[server]
addr = ":9000"
allowed_origins = ["https://brackets.example"]

[bot]
event = "Mixed Doubles 4.0"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 4321, cfg.Upstream.TournamentID)
	assert.Equal(t, []string{"Mixed Doubles 4.0", "Singles Pool"}, cfg.Upstream.Events)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://brackets.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "Mixed Doubles 4.0", cfg.Bot.Event)
	assert.Equal(t, 4, cfg.Upstream.Burst)
}

// TestLoad_InvalidFile tests a malformed file is an error
func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[upstream\n"), 0o600))

	_, err := Load(path)

	assert.Error(t, err)
}

// TestSave_RoundTrip tests a saved configuration loads back unchanged
func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Upstream.TournamentID = 99
	cfg.Upstream.Events = []string{"Singles Pool"}

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 99, loaded.Upstream.TournamentID)
	assert.Equal(t, []string{"Singles Pool"}, loaded.Upstream.Events)
}

// endregion

// region ApplyEnv tests

// TestApplyEnv_Overrides tests set variables replace file values
func TestApplyEnv_Overrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bot.Token = "from-file"

	err := cfg.ApplyEnv(envFrom(map[string]string{
		"DISCORD_TOKEN":     "from-env",
		"MONGO_URI":         "mongodb://db:27017",
		"UPSTREAM_BASE_URL": "http://localhost:9999",
		"WEBHOOK_SECRET":    "s3cret",
		"TOURNAMENT_ID":     "1234",
	}))

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Bot.Token)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "http://localhost:9999", cfg.Upstream.BaseURL)
	assert.Equal(t, "s3cret", cfg.Server.WebhookSecret)
	assert.Equal(t, 1234, cfg.Upstream.TournamentID)
}

// TestApplyEnv_Unset tests unset variables leave values alone
func TestApplyEnv_Unset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bot.Token = "from-file"

	require.NoError(t, cfg.ApplyEnv(envFrom(nil)))
	assert.Equal(t, "from-file", cfg.Bot.Token)
}

// TestApplyEnv_BadTournament tests a non numeric tournament id is an error
func TestApplyEnv_BadTournament(t *testing.T) {
	err := DefaultConfig().ApplyEnv(envFrom(map[string]string{"TOURNAMENT_ID": "spring"}))

	assert.Error(t, err)
}

// endregion

// region Validate tests

// TestValidate tests required and bounded values
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing tournament", func(c *Config) { c.Upstream.TournamentID = 0 }, true},
		{"missing base url", func(c *Config) { c.Upstream.BaseURL = "" }, true},
		{"zero rate", func(c *Config) { c.Upstream.RequestsPerSecond = 0 }, true},
		{"zero burst", func(c *Config) { c.Upstream.Burst = 0 }, true},
		{"bad interval", func(c *Config) { c.App.RefreshInterval = "soon" }, true},
		{"negative interval", func(c *Config) { c.App.RefreshInterval = "-1m" }, true},
		{"disabled refresh", func(c *Config) { c.App.RefreshInterval = "0s" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Upstream.TournamentID = 1
			tt.modify(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

// TestGetRefreshInterval tests the interval is parsed as a duration
func TestGetRefreshInterval(t *testing.T) {
	d, err := DefaultConfig().GetRefreshInterval()

	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)
}

// endregion
