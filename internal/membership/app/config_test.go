package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 168*time.Hour, cfg.TokenTTL)
	require.Equal(t, 48*time.Hour, cfg.TokenRefreshThreshold)
	require.Equal(t, 5*time.Minute, cfg.OTPTTL)
	require.Equal(t, 5, cfg.OTPMaxAttempts)
	require.Equal(t, int64(3), cfg.DefaultRoleID)
	require.Equal(t, "TH", cfg.PhoneRegion)
	require.True(t, cfg.APIGuard)
	require.False(t, cfg.SendStatus)

	limits := cfg.Limits()
	require.Equal(t, 5, limits.Strict.RequestsPerWindow)
	require.Equal(t, time.Minute, limits.Strict.Window)
	require.True(t, limits.Public.Enabled())
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("PORT", "9090")
	t.Setenv("API_GUARD", "false")
	t.Setenv("OTP_TTL", "90s")
	t.Setenv("RATE_LIMIT_STRICT", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Port)
	require.False(t, cfg.APIGuard)
	require.Equal(t, 90*time.Second, cfg.OTPTTL)
	require.False(t, cfg.Limits().Strict.Enabled())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "membership.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7070\nphone_region: AU\nfront_url: https://members.example.com\n"), 0o600))
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("PHONE_REGION", "NZ")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Port)
	require.Equal(t, "NZ", cfg.PhoneRegion)
	require.Equal(t, "https://members.example.com", cfg.MailConfig().FrontURL)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			LogFormat:             "json",
			Port:                  8080,
			DatabaseFile:          "membership.db",
			TokenTTL:              168 * time.Hour,
			TokenRefreshThreshold: 48 * time.Hour,
			OTPMaxAttempts:        5,
			DefaultRoleID:         3,
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"log format":  func(c *Config) { c.LogFormat = "xml" },
		"port":        func(c *Config) { c.Port = 70000 },
		"role":        func(c *Config) { c.DefaultRoleID = 9 },
		"attempts":    func(c *Config) { c.OTPMaxAttempts = 0 },
		"rate limit":  func(c *Config) { c.RateLimitPublic = -1 },
		"smtp":        func(c *Config) { c.SendStatus = true },
		"refresh":     func(c *Config) { c.TokenRefreshThreshold = c.TokenTTL },
		"no database": func(c *Config) { c.DatabaseFile = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
