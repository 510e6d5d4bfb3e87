package commands

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jra3/ticketstore/internal/config"
	"github.com/jra3/ticketstore/internal/lockguard"
	"github.com/jra3/ticketstore/internal/repo"
	"github.com/jra3/ticketstore/pkg/telemetry"
)

var (
	projectRoot string
	debug       bool
)

var rootCmd = &cobra.Command{
	Use:   "ticketstore",
	Short: "A file-backed ticket store",
	Long: `ticketstore manages tickets as individual YAML files under a project
root, with cross-process locking and a recomputed project-stats header.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectRoot, "root", ".", "project root directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// openRepo loads the process-wide config, builds a logger and metrics
// registry, and constructs a repository rooted at --root. Callers are
// responsible for calling Close on the returned repository.
func openRepo() (*repo.FileRepository, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := telemetry.Level(cfg.Log.Level)
	if debug {
		level = telemetry.DebugLevel
	}
	logger := telemetry.NewLogger(telemetry.LogConfig{Level: level, JSON: cfg.Log.JSON})
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())

	opts := repo.Options{
		Lock: lockguard.Options{
			StaleAfter:    cfg.Lock.StaleAfter,
			RetryAttempts: cfg.Lock.RetryAttempts,
			RetryInterval: cfg.Lock.RetryInterval,
			Metrics:       metrics.LockMetrics(),
		},
		Cache:   metrics.CacheMetrics(),
		Metrics: metrics,
		TTL:     cfg.Cache.TTL,
		MaxSize: cfg.Cache.MaxEntries,
		Logger:  telemetry.WithComponent(logger, "repo"),
	}

	return repo.New(projectRoot, opts), nil
}
