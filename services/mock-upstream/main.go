package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ashendes/store-dashboard/internal/mockapi"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const serviceName = "mock-upstream"

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Local stand-in for the upstream store API",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		v.SetEnvPrefix("MOCK_UPSTREAM")
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		server := mockapi.NewServer(
			mockapi.WithStores(v.GetInt("stores")),
			mockapi.WithOrdersPerStore(v.GetInt("orders")),
			mockapi.WithStreamInterval(v.GetDuration("stream-interval")),
			mockapi.WithFailureRate(v.GetFloat64("failure-rate")),
			mockapi.WithSeed(v.GetInt64("seed")),
			mockapi.WithServiceName(serviceName),
		)

		port := v.GetString("port")
		log.Info("Mock upstream starting on port " + port)
		return server.Router().Run(":" + port)
	},
}

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
	gin.SetMode(gin.ReleaseMode)

	flags := rootCmd.Flags()
	flags.String("port", "3001", "HTTP listen port")
	flags.Int("stores", mockapi.DefaultStores, "Number of generated stores")
	flags.Int("orders", mockapi.DefaultOrdersPerStore, "Generated order history per store")
	flags.Duration("stream-interval", mockapi.DefaultStreamInterval, "Interval between streamed orders")
	flags.Float64("failure-rate", mockapi.DefaultFailureRate, "Share of requests failed in chaos mode")
	flags.Int64("seed", time.Now().UnixNano(), "Random seed for generated data")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
