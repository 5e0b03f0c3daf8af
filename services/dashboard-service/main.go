package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ashendes/store-dashboard/internal/anomaly"
	"github.com/ashendes/store-dashboard/internal/api"
	"github.com/ashendes/store-dashboard/internal/config"
	"github.com/ashendes/store-dashboard/internal/dashboard"
	"github.com/ashendes/store-dashboard/internal/health"
	"github.com/ashendes/store-dashboard/internal/patterns"
	"github.com/ashendes/store-dashboard/internal/upstream"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const serviceName = "dashboard-service"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Restaurant store dashboard API",
	Long:  `dashboard-service aggregates store and order data from the upstream store API into per-store dashboards, a fleet summary, health scores and anomaly flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.New(cfgFile)
		if err != nil {
			return err
		}
		if err := config.BindFlags(v, cmd.Flags()); err != nil {
			return err
		}
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		return run(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	flags := rootCmd.Flags()
	flags.String("port", "8000", "HTTP listen port")
	flags.String("upstream-base-url", config.DefaultUpstreamBaseURL, "Base URL of the upstream store API")
	flags.Duration("upstream-timeout", patterns.DefaultUpstreamTimeout, "Timeout for each upstream call")
	flags.Int("fanout-limit", patterns.DefaultFanOutLimit, "Maximum concurrent upstream order fetches per summary")
	flags.Duration("fanout-max-wait", 0, "Skip a store whose fetch waits longer than this for a slot (0 waits for the request)")
	flags.Bool("circuit-breaker-enabled", false, "Wrap upstream calls in a circuit breaker")
	flags.String("order-stream-url", "", "Upstream order WebSocket to relay on /ws/orders")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "json", "Log format (json or text)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	cfg.ConfigureLogging()
	gin.SetMode(gin.ReleaseMode)

	clientOpts := []upstream.Option{upstream.WithTimeout(cfg.UpstreamTimeout)}
	if cfg.CircuitBreakerEnabled {
		clientOpts = append(clientOpts, upstream.WithCircuitBreaker(patterns.NewCircuitBreaker("Upstream", serviceName)))
	}
	client, err := upstream.NewClient(cfg.UpstreamBaseURL, clientOpts...)
	if err != nil {
		return fmt.Errorf("create upstream client: %w", err)
	}

	router := api.NewRouter(api.Dependencies{
		Dashboard: dashboard.NewService(client,
			dashboard.WithFanOutLimit(cfg.FanOutLimit),
			dashboard.WithFanOutMaxWait(cfg.FanOutMaxWait),
			dashboard.WithServiceName(serviceName),
		),
		Health:         health.NewService(nil),
		Anomalies:      anomaly.NewDetector(),
		Circuit:        client,
		OrderStreamURL: cfg.OrderStreamURL,
		ServiceName:    serviceName,
	})

	log.WithFields(log.Fields{
		"upstream_url":     cfg.UpstreamBaseURL,
		"upstream_timeout": cfg.UpstreamTimeout.String(),
		"fanout_limit":     cfg.FanOutLimit,
		"fanout_max_wait":  cfg.FanOutMaxWait.String(),
		"circuit_breaker":  cfg.CircuitBreakerEnabled,
		"started_at":       time.Now().Format(time.RFC3339),
	}).Info("Dashboard Service starting on port " + cfg.Port)

	return router.Run(cfg.Addr())
}
