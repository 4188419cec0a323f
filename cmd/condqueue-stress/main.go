// Command condqueue-stress drives producer and consumer goroutines through a
// condqueue queue and verifies that every value is delivered exactly once.
//
// Usage:
//
//	condqueue-stress --capacity 8 --producers 4 --consumers 4 --items 100000
//
// With --metrics-addr the queue's OpenTelemetry metrics are served in
// Prometheus format at /metrics; --hold keeps the endpoint up after the run.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/xyhelper/condqueue"
	"github.com/xyhelper/condqueue/internal/stress"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "condqueue-stress:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	def := stress.DefaultConfig()
	return &cli.App{
		Name:  "condqueue-stress",
		Usage: "stress a blocking queue with concurrent producers and consumers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML file with capacity, producers, consumers, items, sampleEvery",
				EnvVars: []string{"CONDQUEUE_CONFIG"},
			},
			&cli.IntFlag{
				Name:    "capacity",
				Value:   def.Capacity,
				Usage:   "queue capacity, 0 for an unbounded queue",
				EnvVars: []string{"CONDQUEUE_CAPACITY"},
			},
			&cli.IntFlag{
				Name:    "producers",
				Value:   def.Producers,
				Usage:   "number of producer goroutines",
				EnvVars: []string{"CONDQUEUE_PRODUCERS"},
			},
			&cli.IntFlag{
				Name:    "consumers",
				Value:   def.Consumers,
				Usage:   "number of consumer goroutines",
				EnvVars: []string{"CONDQUEUE_CONSUMERS"},
			},
			&cli.IntFlag{
				Name:    "items",
				Value:   def.Items,
				Usage:   "values pushed by each producer",
				EnvVars: []string{"CONDQUEUE_ITEMS"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log per-goroutine progress and blocked operations",
				EnvVars: []string{"CONDQUEUE_VERBOSE"},
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "serve Prometheus metrics on this address, e.g. :9090",
				EnvVars: []string{"CONDQUEUE_METRICS_ADDR"},
			},
			&cli.DurationFlag{
				Name:    "hold",
				Usage:   "keep serving metrics this long after the run",
				EnvVars: []string{"CONDQUEUE_HOLD"},
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	zl, err := newZap(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()
	log := zapr.NewLogger(zl)

	opts := []condqueue.Option{
		condqueue.WithName("stress"),
		condqueue.WithLogger(log.WithName("queue")),
	}
	if addr := c.String("metrics-addr"); addr != "" {
		mp, stop, err := serveMetrics(addr, log)
		if err != nil {
			return err
		}
		defer stop(c.Duration("hold"))
		opts = append(opts, condqueue.WithMeterProvider(mp))
	}

	report, err := stress.Run(cfg, log.WithName("stress"), opts...)
	if err != nil {
		return err
	}
	if _, err := report.WriteTo(c.App.Writer); err != nil {
		return err
	}
	return report.Err()
}

// loadConfig layers the YAML file over the defaults and explicitly set flags
// over the file.
func loadConfig(c *cli.Context) (stress.Config, error) {
	cfg := stress.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = stress.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if c.IsSet("capacity") {
		cfg.Capacity = c.Int("capacity")
	}
	if c.IsSet("producers") {
		cfg.Producers = c.Int("producers")
	}
	if c.IsSet("consumers") {
		cfg.Consumers = c.Int("consumers")
	}
	if c.IsSet("items") {
		cfg.Items = c.Int("items")
	}
	return cfg, cfg.Validate()
}

func newZap(verbose bool) (*zap.Logger, error) {
	if verbose {
		zc := zap.NewDevelopmentConfig()
		// logr V(1) maps to zap level -1, which is Debug
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		return zc.Build()
	}
	return zap.NewProduction()
}

// serveMetrics wires an OTel MeterProvider to a Prometheus exporter and serves
// it on addr. The returned stop func waits for hold, then shuts the server down.
func serveMetrics(addr string, log logr.Logger) (*sdkmetric.MeterProvider, func(time.Duration), error) {
	exporter, err := prometheus.New(
		prometheus.WithoutUnits(),
		prometheus.WithoutScopeInfo(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "metrics server failed", "addr", addr)
		}
	}()
	log.Info("serving metrics", "addr", addr, "path", "/metrics")

	stop := func(hold time.Duration) {
		if hold > 0 {
			log.Info("holding metrics endpoint", "for", hold)
			time.Sleep(hold)
		}
		_ = srv.Close()
	}
	return mp, stop, nil
}
