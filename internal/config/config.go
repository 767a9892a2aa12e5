// Package config provides Viper-based configuration loading for the dungeon crawler.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for run persistence.
type DatabaseConfig struct {
	// Enabled turns run persistence on; when false the game runs entirely in memory.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout", or a file path. The console front end
	// owns stdout, so logs default to stderr.
	Output string `mapstructure:"output"`
}

// GameConfig holds content locations and balance knobs for the battle engine.
type GameConfig struct {
	// MonstersDir is the directory of monster template YAML files.
	MonstersDir string `mapstructure:"monsters_dir"`
	// ItemsDir is the directory of item definition YAML files.
	ItemsDir string `mapstructure:"items_dir"`
	// ScriptDir holds Lua scaling hooks; empty disables scripting.
	ScriptDir string `mapstructure:"script_dir"`
	// BossFloor is the first floor on which fleeing always fails.
	BossFloor int `mapstructure:"boss_floor"`
	// FleeOdds is N in the 1-in-N chance of a successful flee.
	FleeOdds int `mapstructure:"flee_odds"`
	// SalePercent is the share of an item's cost refunded when sold.
	SalePercent int `mapstructure:"sale_percent"`
	// MaxItemStock caps how many of a single item kind the player may carry.
	MaxItemStock int `mapstructure:"max_item_stock"`
	// GodMode exposes the instant-kill debug command in battle.
	GodMode bool `mapstructure:"god_mode"`
}

// ReportConfig holds end-of-run report settings.
type ReportConfig struct {
	// Dir is where end-of-run PDFs are written; empty disables reports.
	Dir string `mapstructure:"dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
	Report   ReportConfig   `mapstructure:"report"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.MonstersDir == "" {
		errs = append(errs, "game.monsters_dir must not be empty")
	}
	if g.ItemsDir == "" {
		errs = append(errs, "game.items_dir must not be empty")
	}
	if g.BossFloor < 1 || g.BossFloor > 255 {
		errs = append(errs, fmt.Sprintf("game.boss_floor must be 1-255, got %d", g.BossFloor))
	}
	if g.FleeOdds < 1 {
		errs = append(errs, fmt.Sprintf("game.flee_odds must be >= 1, got %d", g.FleeOdds))
	}
	if g.SalePercent < 0 || g.SalePercent > 100 {
		errs = append(errs, fmt.Sprintf("game.sale_percent must be 0-100, got %d", g.SalePercent))
	}
	if g.MaxItemStock < 1 {
		errs = append(errs, fmt.Sprintf("game.max_item_stock must be >= 1, got %d", g.MaxItemStock))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MINIDUNGEON_ prefix
	v.SetEnvPrefix("MINIDUNGEON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "minidungeon")
	v.SetDefault("database.password", "minidungeon")
	v.SetDefault("database.name", "minidungeon")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("game.monsters_dir", "content/monsters")
	v.SetDefault("game.items_dir", "content/items")
	v.SetDefault("game.script_dir", "")
	v.SetDefault("game.boss_floor", 20)
	v.SetDefault("game.flee_odds", 3)
	v.SetDefault("game.sale_percent", 20)
	v.SetDefault("game.max_item_stock", 99)
	v.SetDefault("game.god_mode", false)

	v.SetDefault("report.dir", "")
}
