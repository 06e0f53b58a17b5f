package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/pokertable/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
server {
  address          = "0.0.0.0"
  port             = 9000
  log_level        = "debug"
  hand_history_dir = "hands"
  action_timeout   = "5s"
}

table "high" {
  small_blind    = 50
  big_blind      = 100
  ante           = 10
  structure      = "pot-limit"
  max_seats      = 9
  rake_percent   = 5
  rake_cap       = 300
  random_seating = true
}

table "micro" {
  small_blind = 1
  big_blind   = 2
}
`

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "hands", cfg.Server.HandHistoryDir)
	timeout, err := cfg.Server.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)

	require.Len(t, cfg.Tables, 2)
	high, err := cfg.Table("high").GameConfig()
	require.NoError(t, err)
	assert.Equal(t, game.Config{
		SmallBlind:    50,
		BigBlind:      100,
		Ante:          10,
		Structure:     game.PotLimit,
		MaxSeats:      9,
		RakePercent:   5,
		RakeCap:       300,
		RandomSeating: true,
	}, high)

	micro := cfg.Table("micro")
	require.NotNil(t, micro)
	assert.Equal(t, defaultMaxSeats, micro.MaxSeats)
	assert.Equal(t, "no-limit", micro.Structure)
	assert.Nil(t, cfg.Table("nope"))
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`server {`), "broken.hcl")
	assert.ErrorContains(t, err, "failed to parse")

	_, err = Parse([]byte(`table "x" { small_blind = 1 }`), "partial.hcl")
	assert.ErrorContains(t, err, "failed to decode", "big_blind is required")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid port"},
		{"bad timeout", func(c *Config) { c.Server.ActionTimeout = "soon" }, "invalid action_timeout"},
		{"negative timeout", func(c *Config) { c.Server.ActionTimeout = "-1s" }, "must not be negative"},
		{"no tables", func(c *Config) { c.Tables = nil }, "at least one table"},
		{"duplicate table", func(c *Config) { c.Tables = append(c.Tables, c.Tables[0]) }, "defined more than once"},
		{"small above big", func(c *Config) { c.Tables[0].SmallBlind = 5 }, "table main"},
		{"unknown structure", func(c *Config) { c.Tables[0].Structure = "spread" }, "unknown betting structure"},
		{"too many seats", func(c *Config) { c.Tables[0].MaxSeats = 40 }, "table main"},
		{"empty name", func(c *Config) { c.Tables[0].Name = "" }, "name must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestValidateWrapsEngineErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Tables[0].BigBlind = 0
	assert.ErrorIs(t, cfg.Validate(), game.ErrInvalidBlinds)
}
