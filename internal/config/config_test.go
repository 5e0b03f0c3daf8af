package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, "8000", cfg.Port)
	require.Equal(t, ":8000", cfg.Addr())
	require.Equal(t, DefaultUpstreamBaseURL, cfg.UpstreamBaseURL)
	require.Equal(t, 20*time.Second, cfg.UpstreamTimeout)
	require.Equal(t, 10, cfg.FanOutLimit)
	require.Zero(t, cfg.FanOutMaxWait)
	require.False(t, cfg.CircuitBreakerEnabled)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_UPSTREAM_BASE_URL", "http://localhost:3001/")
	t.Setenv("DASHBOARD_UPSTREAM_TIMEOUT", "5s")
	t.Setenv("DASHBOARD_FANOUT_LIMIT", "4")
	t.Setenv("DASHBOARD_FANOUT_MAX_WAIT", "250ms")
	t.Setenv("DASHBOARD_CIRCUIT_BREAKER_ENABLED", "true")
	t.Setenv("DASHBOARD_PORT", ":9090")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, "http://localhost:3001", cfg.UpstreamBaseURL)
	require.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	require.Equal(t, 4, cfg.FanOutLimit)
	require.Equal(t, 250*time.Millisecond, cfg.FanOutMaxWait)
	require.True(t, cfg.CircuitBreakerEnabled)
	require.Equal(t, ":9090", cfg.Addr())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"upstream_base_url: http://mock:3001\n"+
			"upstream_timeout: 750ms\n"+
			"order_stream_url: ws://mock:3001/ws/orders\n"+
			"log_format: text\n"), 0o600))

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, "http://mock:3001", cfg.UpstreamBaseURL)
	require.Equal(t, 750*time.Millisecond, cfg.UpstreamTimeout)
	require.Equal(t, "ws://mock:3001/ws/orders", cfg.OrderStreamURL)
	require.Equal(t, "text", cfg.LogFormat)
}

func TestNew_MissingConfigFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("DASHBOARD_UPSTREAM_BASE_URL", " ")
	t.Setenv("DASHBOARD_FANOUT_LIMIT", "0")
	t.Setenv("DASHBOARD_FANOUT_MAX_WAIT", "-1s")
	t.Setenv("DASHBOARD_LOG_LEVEL", "chatty")

	v, err := New("")
	require.NoError(t, err)
	_, err = Load(v)
	require.Error(t, err)
	require.Contains(t, err.Error(), "upstream_base_url is required")
	require.Contains(t, err.Error(), "fanout_limit must be at least 1")
	require.Contains(t, err.Error(), "fanout_max_wait must not be negative")
	require.Contains(t, err.Error(), "log_level")
}

func TestBindFlags(t *testing.T) {
	t.Setenv("DASHBOARD_PORT", "9000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("port", "8000", "")
	flags.Int("fanout-limit", 10, "")
	flags.Duration("upstream-timeout", 20*time.Second, "")
	require.NoError(t, flags.Parse([]string{"--fanout-limit=3", "--upstream-timeout=2s"}))

	v, err := New("")
	require.NoError(t, err)
	require.NoError(t, BindFlags(v, flags))

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.FanOutLimit)
	require.Equal(t, 2*time.Second, cfg.UpstreamTimeout)
	require.Equal(t, "9000", cfg.Port, "unset flags leave environment values in place")
}
