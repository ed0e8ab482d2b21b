package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/raycare/hospital/internal/domain/catalog"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32         `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir  string        `mapstructure:"MIGRATIONS_DIR"`
	AutoMigrate    bool          `mapstructure:"AUTO_MIGRATE"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	// RateLimitRPS is a per client IP budget covering every API route,
	// POST /patients included. Zero disables limiting.
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	HorizonDays int    `mapstructure:"SCHEDULING_HORIZON_DAYS"`
	TimeZone    string `mapstructure:"SCHEDULING_TIMEZONE"`

	catalog.SeedConfig `mapstructure:",squash"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "MIGRATIONS_DIR", "AUTO_MIGRATE",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BODY_LIMIT", "REQUEST_TIMEOUT",
	"SCHEDULING_HORIZON_DAYS", "SCHEDULING_TIMEZONE",
	"SEED_ADVANCED_MACHINES", "SEED_SIMPLE_MACHINES", "SEED_ROOMS",
	"SEED_ONCOLOGISTS", "SEED_GENERAL_PRACTITIONERS",
}

// Load reads configuration from the environment and an optional .env file.
// An empty DATABASE_URL selects the in-memory backend.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	seed := catalog.DefaultSeedConfig()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
		v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("SCHEDULING_HORIZON_DAYS", 365)
	v.SetDefault("SCHEDULING_TIMEZONE", "UTC")
	v.SetDefault("SEED_ADVANCED_MACHINES", seed.AdvancedMachines)
	v.SetDefault("SEED_SIMPLE_MACHINES", seed.SimpleMachines)
	v.SetDefault("SEED_ROOMS", seed.Rooms)
	v.SetDefault("SEED_ONCOLOGISTS", seed.Oncologists)
	v.SetDefault("SEED_GENERAL_PRACTITIONERS", seed.GeneralPractitioners)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UsesDatabase reports whether PostgreSQL backs the repositories.
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

// Location resolves SCHEDULING_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("SCHEDULING_TIMEZONE %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.HorizonDays <= 0 {
		return fmt.Errorf("SCHEDULING_HORIZON_DAYS must be positive, got %d", c.HorizonDays)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.DBMinConns < 0 || c.DBMaxConns < 0 || (c.DBMaxConns > 0 && c.DBMinConns > c.DBMaxConns) {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	if err := c.SeedConfig.Validate(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}
