// Package config loads the pokertable server configuration from HCL.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/pokertable/internal/game"
)

// DefaultFile is the configuration file read when none is given.
const DefaultFile = "pokertable.hcl"

// Config is the complete service configuration.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address        string `hcl:"address,optional"`
	Port           int    `hcl:"port,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	HandHistoryDir string `hcl:"hand_history_dir,optional"`
	ActionTimeout  string `hcl:"action_timeout,optional"`
}

// TableConfig defines one table.
type TableConfig struct {
	Name          string `hcl:"name,label"`
	SmallBlind    int    `hcl:"small_blind"`
	BigBlind      int    `hcl:"big_blind"`
	Ante          int    `hcl:"ante,optional"`
	Structure     string `hcl:"structure,optional"`
	MaxSeats      int    `hcl:"max_seats,optional"`
	RakePercent   int    `hcl:"rake_percent,optional"`
	RakeCap       int    `hcl:"rake_cap,optional"`
	RandomSeating bool   `hcl:"random_seating,optional"`
}

const (
	defaultAddress       = "localhost"
	defaultPort          = 8080
	defaultLogLevel      = "info"
	defaultActionTimeout = "30s"
	defaultMaxSeats      = 6
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{
		Tables: []TableConfig{{
			Name:       "main",
			SmallBlind: 1,
			BigBlind:   2,
		}},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads filename. A missing file yields Default().
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}
	if c.Server.ActionTimeout == "" {
		c.Server.ActionTimeout = defaultActionTimeout
	}
	for i := range c.Tables {
		if c.Tables[i].MaxSeats == 0 {
			c.Tables[i].MaxSeats = defaultMaxSeats
		}
		if c.Tables[i].Structure == "" {
			c.Tables[i].Structure = game.NoLimit.String()
		}
	}
}

// Validate checks the server block and every table.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := c.Server.Timeout(); err != nil {
		return err
	}
	if len(c.Tables) == 0 {
		return errors.New("at least one table must be configured")
	}

	seen := make(map[string]bool, len(c.Tables))
	for _, table := range c.Tables {
		if seen[table.Name] {
			return fmt.Errorf("table %s: defined more than once", table.Name)
		}
		seen[table.Name] = true
		if err := table.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Addr returns host:port for the listener.
func (s ServerSettings) Addr() string {
	return net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
}

// Timeout parses the action timeout. Zero disables it.
func (s ServerSettings) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(s.ActionTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid action_timeout %q: %w", s.ActionTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid action_timeout %q: must not be negative", s.ActionTimeout)
	}
	return d, nil
}

// Validate checks the table's stakes and structure against the engine rules.
func (t TableConfig) Validate() error {
	if t.Name == "" {
		return errors.New("table name must not be empty")
	}
	gc, err := t.GameConfig()
	if err != nil {
		return fmt.Errorf("table %s: %w", t.Name, err)
	}
	if err := gc.Validate(); err != nil {
		return fmt.Errorf("table %s: %w", t.Name, err)
	}
	return nil
}

// GameConfig converts the table block into an engine config.
func (t TableConfig) GameConfig() (game.Config, error) {
	structure, err := game.ParseStructure(t.Structure)
	if err != nil {
		return game.Config{}, err
	}
	return game.Config{
		SmallBlind:    t.SmallBlind,
		BigBlind:      t.BigBlind,
		Ante:          t.Ante,
		Structure:     structure,
		MaxSeats:      t.MaxSeats,
		RakePercent:   t.RakePercent,
		RakeCap:       t.RakeCap,
		RandomSeating: t.RandomSeating,
	}, nil
}

// Table returns the named table block, or nil.
func (c *Config) Table(name string) *TableConfig {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}
