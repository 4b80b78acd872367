package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.twitter.com/1.1", cfg.Twitter.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Twitter.Timeout)
	assert.Equal(t, "everycolorbot", cfg.Trawl.ScreenName)
	assert.Equal(t, 100, cfg.Trawl.MaxPages)
	assert.Equal(t, 200, cfg.Trawl.PageSize)
	assert.Equal(t, 900, cfg.RateLimit.Requests)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "dist/colors.json", cfg.Output.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Twitter.HasCredentials())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TWITTER_API_KEY", "key")
	t.Setenv("TWITTER_API_SECRET", "secret")
	t.Setenv("TWITTER_ACCESS_TOKEN", "token")
	t.Setenv("TWITTER_ACCESS_TOKEN_SECRET", "token-secret")
	t.Setenv("COLOR_OUTPUT_DIR", "/tmp/out/colors.json")
	t.Setenv("COLORTRAWL_SCREEN_NAME", "someoneelse")
	t.Setenv("COLORTRAWL_MAX_PAGES", "5")
	t.Setenv("COLORTRAWL_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "key", cfg.Twitter.ConsumerKey)
	assert.Equal(t, "secret", cfg.Twitter.ConsumerSecret)
	assert.Equal(t, "token", cfg.Twitter.AccessToken)
	assert.Equal(t, "token-secret", cfg.Twitter.AccessTokenSecret)
	assert.True(t, cfg.Twitter.HasCredentials())
	assert.Equal(t, "/tmp/out/colors.json", cfg.Output.Path)
	assert.Equal(t, "someoneelse", cfg.Trawl.ScreenName)
	assert.Equal(t, 5, cfg.Trawl.MaxPages)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidMaxPages(t *testing.T) {
	t.Setenv("COLORTRAWL_MAX_PAGES", "lots")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COLORTRAWL_MAX_PAGES")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
twitter:
  consumer_key: file-key
  timeout: 10s
trawl:
  screen_name: filebot
  max_pages: 3
output:
  path: out/file.json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "file-key", cfg.Twitter.ConsumerKey)
	assert.Equal(t, 10*time.Second, cfg.Twitter.Timeout)
	assert.Equal(t, "filebot", cfg.Trawl.ScreenName)
	assert.Equal(t, 3, cfg.Trawl.MaxPages)
	// Untouched keys keep their defaults
	assert.Equal(t, 200, cfg.Trawl.PageSize)
	assert.Equal(t, "out/file.json", cfg.Output.Path)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero pages", func(c *Config) { c.Trawl.MaxPages = 0 }, "max pages must be positive"},
		{"page size too large", func(c *Config) { c.Trawl.PageSize = 201 }, "page size must be between 1 and 200"},
		{"empty screen name", func(c *Config) { c.Trawl.ScreenName = "  " }, "screen name is required"},
		{"empty output", func(c *Config) { c.Output.Path = "" }, "output path is required"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
		{"zero timeout", func(c *Config) { c.Twitter.Timeout = 0 }, "twitter timeout must be positive"},
		{"zero window", func(c *Config) { c.RateLimit.Window = 0 }, "rate limit window must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"output":      "flag.json",
		"screen-name": "flagbot",
		"max-pages":   7,
		"page-size":   50,
		"log-level":   "warn",
	})

	assert.Equal(t, "flag.json", cfg.Output.Path)
	assert.Equal(t, "flagbot", cfg.Trawl.ScreenName)
	assert.Equal(t, 7, cfg.Trawl.MaxPages)
	assert.Equal(t, 50, cfg.Trawl.PageSize)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  path: from-file.json\ntrawl:\n  max_pages: 2\n"), 0644))

	t.Setenv("HOME", dir)
	t.Setenv("COLOR_OUTPUT_DIR", "from-env.json")

	cfg, err := Load(path, map[string]interface{}{"max-pages": 9})
	require.NoError(t, err)

	assert.Equal(t, "from-env.json", cfg.Output.Path)
	assert.Equal(t, 9, cfg.Trawl.MaxPages)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Trawl.ScreenName = "saved"
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "saved", loaded.Trawl.ScreenName)
}
