/*
Package config loads process configuration from the environment.

SOURCES (later wins):
  1. Built-in fallbacks
  2. .env file in the working directory, if present
  3. Process environment
  4. Command-line flags in cmd/server (-port, -db)

VARIABLES:
  APP_PORT      HTTP port (8080)
  APP_ENV       development | production (development)
  LOG_LEVEL     debug | info | warn | error (info)
  DB_PATH       SQLite path, ":memory:" allowed (payroll.db)
  APP_TIMEZONE  IANA zone for shift start and day boundaries (Asia/Manila)
  WEEK_START    First day of a payroll week (monday)
  CORS_ORIGINS  Comma-separated allowed origins

  OPEN_SHIFT_ALERT_HOURS  Warn about shifts open longer than this; 0 disables (16)
*/
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/warp/payroll-engine/generic"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Payroll  PayrollConfig
	CORS     CORSConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Path string
}

// PayrollConfig holds the operating calendar.
type PayrollConfig struct {
	Timezone  string
	WeekStart string

	// OpenShiftAlert is how long a shift may stay open before the monitor
	// warns. Zero disables the monitor.
	OpenShiftAlert time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads .env (a missing file is fine) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.Database = DatabaseConfig{
		Path: getEnv("DB_PATH", "payroll.db"),
	}

	alertHours, err := strconv.Atoi(getEnv("OPEN_SHIFT_ALERT_HOURS", "16"))
	if err != nil {
		return nil, fmt.Errorf("invalid OPEN_SHIFT_ALERT_HOURS: %w", err)
	}

	config.Payroll = PayrollConfig{
		Timezone:       getEnv("APP_TIMEZONE", "Asia/Manila"),
		WeekStart:      getEnv("WEEK_START", "monday"),
		OpenShiftAlert: time.Duration(alertHours) * time.Hour,
	}

	config.CORS = CORSConfig{
		AllowedOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.App.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Payroll.OpenShiftAlert < 0 {
		return fmt.Errorf("OPEN_SHIFT_ALERT_HOURS must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.WeekStart(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Location returns the operating timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Payroll.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Payroll.Timezone, err)
	}
	return loc, nil
}

// WeekStart returns the first weekday of a payroll week.
func (c *Config) WeekStart() (time.Weekday, error) {
	d, err := generic.ParseWeekday(c.Payroll.WeekStart)
	if err != nil {
		return 0, fmt.Errorf("invalid WEEK_START: %w", err)
	}
	return d, nil
}

// SlogLevel maps LOG_LEVEL onto slog.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.App.LogLevel, err)
	}
	return level, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
