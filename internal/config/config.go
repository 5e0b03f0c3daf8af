package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashendes/store-dashboard/internal/patterns"
	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. DASHBOARD_UPSTREAM_BASE_URL
const EnvPrefix = "DASHBOARD"

// DefaultUpstreamBaseURL is the external store API the dashboard aggregates
const DefaultUpstreamBaseURL = "https://assessment-6xdhr.ondigitalocean.app"

// Config carries settings for the dashboard service
type Config struct {
	Port                  string        `mapstructure:"port"`
	UpstreamBaseURL       string        `mapstructure:"upstream_base_url"`
	UpstreamTimeout       time.Duration `mapstructure:"upstream_timeout"`
	FanOutLimit           int           `mapstructure:"fanout_limit"`
	FanOutMaxWait         time.Duration `mapstructure:"fanout_max_wait"`
	CircuitBreakerEnabled bool          `mapstructure:"circuit_breaker_enabled"`
	OrderStreamURL        string        `mapstructure:"order_stream_url"`
	LogLevel              string        `mapstructure:"log_level"`
	LogFormat             string        `mapstructure:"log_format"`
}

// SetDefaults registers every key with its default so environment overrides
// are picked up by Unmarshal
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("upstream_base_url", DefaultUpstreamBaseURL)
	v.SetDefault("upstream_timeout", patterns.DefaultUpstreamTimeout)
	v.SetDefault("fanout_limit", patterns.DefaultFanOutLimit)
	v.SetDefault("fanout_max_wait", time.Duration(0))
	v.SetDefault("circuit_breaker_enabled", false)
	v.SetDefault("order_stream_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// New returns a viper instance wired for defaults, environment overrides and
// an optional config file
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// BindFlags binds every flag except --config to the viper key of the same
// name with dashes replaced by underscores. Flags only win over the
// environment and config file when set explicitly.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("bind flag %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.UpstreamBaseURL = strings.TrimRight(strings.TrimSpace(cfg.UpstreamBaseURL), "/")
	cfg.Port = strings.TrimPrefix(strings.TrimSpace(cfg.Port), ":")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks basic constraints
func (c Config) Validate() error {
	var errs []error
	if c.UpstreamBaseURL == "" {
		errs = append(errs, errors.New("upstream_base_url is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("upstream_timeout must be positive"))
	}
	if c.FanOutLimit < 1 {
		errs = append(errs, errors.New("fanout_limit must be at least 1"))
	}
	if c.FanOutMaxWait < 0 {
		errs = append(errs, errors.New("fanout_max_wait must not be negative"))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("log_format must be json or text, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address for the HTTP server
func (c Config) Addr() string {
	return ":" + c.Port
}

// ConfigureLogging applies the log level and format to the standard logrus logger
func (c Config) ConfigureLogging() {
	if c.LogFormat == "text" {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
