package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no .env here
	for _, k := range []string{"APP_PORT", "APP_ENV", "LOG_LEVEL", "DB_PATH", "APP_TIMEZONE", "WEEK_START", "CORS_ORIGINS", "OPEN_SHIFT_ALERT_HOURS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "payroll.db", cfg.Database.Path)
	assert.Len(t, cfg.CORS.AllowedOrigins, 2)
	assert.Equal(t, 16*time.Hour, cfg.Payroll.OpenShiftAlert)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Manila", loc.String())

	ws, err := cfg.WeekStart()
	require.NoError(t, err)
	assert.Equal(t, time.Monday, ws)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_PORT", "3000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("WEEK_START", "sunday")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("OPEN_SHIFT_ALERT_HOURS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.App.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Zero(t, cfg.Payroll.OpenShiftAlert)

	ws, err := cfg.WeekStart()
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, ws)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Port: 8080, LogLevel: "info"},
			Database: DatabaseConfig{Path: "payroll.db"},
			Payroll:  PayrollConfig{Timezone: "Asia/Manila", WeekStart: "monday"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.App.Port = 0 }},
		{"port too large", func(c *Config) { c.App.Port = 70000 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"negative alert", func(c *Config) { c.Payroll.OpenShiftAlert = -time.Hour }},
		{"unknown timezone", func(c *Config) { c.Payroll.Timezone = "Mars/Olympus" }},
		{"unknown weekday", func(c *Config) { c.Payroll.WeekStart = "someday" }},
		{"unknown log level", func(c *Config) { c.App.LogLevel = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_PORT", "eighty")

	_, err := Load()
	assert.ErrorContains(t, err, "APP_PORT")
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
