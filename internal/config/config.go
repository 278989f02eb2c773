// Package config provides configuration management using viper.
// It supports loading from YAML files, environment variable overrides and
// command-line flags. The machine itself (paytable, weights, bet range,
// starting balance) is compiled in and not configurable here.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration errors.
var (
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrLedgerNoDatabase  = errors.New("ledger enabled without a database host and name")
	ErrInvalidSimulation = errors.New("simulation spins must be positive")
)

// Config holds all application configuration.
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Log      LogConfig      `mapstructure:"log"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Database DatabaseConfig `mapstructure:"database"`
}

// GameConfig holds session settings.
type GameConfig struct {
	// Seed of the session's random source; 0 seeds from the clock.
	Seed     uint64 `mapstructure:"seed"`
	SimSpins int    `mapstructure:"sim_spins"`
}

// LogConfig holds diagnostic logging configuration. Stdout belongs to the
// game, so logs go to stderr or to a rotated file.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// LedgerConfig controls the optional spin ledger.
type LedgerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Flags returns the command-line flags understood by the game.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("gamble3000", pflag.ContinueOnError)
	fs.String("config", "config", "directory containing config.yaml")
	fs.Uint64("seed", 0, "random seed for a reproducible session (0 = from clock)")
	fs.Bool("rtp", false, "print the machine's return-to-player report and exit")
	fs.Int("sim-spins", 0, "spins to simulate for the RTP report (0 = config value)")
	fs.String("log-level", "", "log level override (debug, info, warn, error)")
	return fs
}

// Load reads configuration from file, environment variables and flags.
// It looks for config.yaml in configPath, "." and "./config". flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase
	// e.g., GAME_SEED, LEDGER_ENABLED, DATABASE_HOST
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	// Config file is optional; defaults and env vars can provide everything.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindFlags maps flags onto their configuration keys. Only flags the user
// actually set override file and environment values.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"game.seed":      "seed",
		"game.sim_spins": "sim-spins",
		"log.level":      "log-level",
	}
	for key, name := range bindings {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Game defaults
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.sim_spins", 1000000)

	// Logging defaults
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	// Ledger defaults
	v.SetDefault("ledger.enabled", false)
	v.SetDefault("ledger.write_timeout", "3s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gamble3000")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "gamble3000")
	v.SetDefault("database.pool_size", 2)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Game.SimSpins < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidSimulation, c.Game.SimSpins)
	}
	if c.Ledger.Enabled && (c.Database.Host == "" || c.Database.Name == "") {
		return ErrLedgerNoDatabase
	}
	return nil
}

// LogLevel returns the parsed zerolog level.
func (c *Config) LogLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil || c.Log.Level == "" {
		return zerolog.NoLevel, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	return level, nil
}
