package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:5003", cfg.Addr)
	assert.Equal(t, "http://kind.krx.co.kr/corpgeneral/corpList.do", cfg.ListingURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 24*time.Hour, cfg.RosterTTL)
	assert.Equal(t, 5.0, cfg.RosterRefreshHour)
	assert.Equal(t, 10*time.Minute, cfg.HistoryTTL)
	assert.Equal(t, "yahoo", cfg.PriceProvider)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.Bucket)
}

func TestLoadFromEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "STOCKINFO_ADDR=0.0.0.0:8080\nSTOCKINFO_ROSTER_TTL=1h\nSTOCKINFO_PRICE_PROVIDER=naver\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("STOCKINFO_ADDR")
		os.Unsetenv("STOCKINFO_ROSTER_TTL")
		os.Unsetenv("STOCKINFO_PRICE_PROVIDER")
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, time.Hour, cfg.RosterTTL)
	assert.Equal(t, "naver", cfg.PriceProvider)
}

func TestEnvironmentWinsOverEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("STOCKINFO_BUCKET=from-file\n"), 0o600))
	t.Setenv("STOCKINFO_BUCKET", "from-env")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Bucket)
}

func TestValidate(t *testing.T) {
	t.Setenv("STOCKINFO_ROSTER_REFRESH_HOUR", "25")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidateProvider(t *testing.T) {
	t.Setenv("STOCKINFO_PRICE_PROVIDER", "bloomberg")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
