package exporter

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hadoop-jmx-exporter/internal/config"
	"github.com/hadoop-jmx-exporter/internal/exporter"
	"github.com/hadoop-jmx-exporter/pkg/logger"
	"github.com/hadoop-jmx-exporter/pkg/metrics"
	"github.com/hadoop-jmx-exporter/pkg/util"
)

var rootCmd = &cobra.Command{
	Use:   "hadoop-jmx-exporter",
	Short: "Prometheus exporter bridging Hadoop-ecosystem JMX endpoints (HDFS/YARN/Hive/HBase)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := run(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
}

// Execute runs the root command.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func run(cfg *config.Config) error {
	if err := logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	util.PrintBanner("jmx-exporter", util.ColorGreen)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registers := metrics.NewPromRegistry(promReg)

	exp := exporter.New(cfg, registers)

	// Cancellation is observed at the scheduler's sleep boundary only.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return exp.Run(ctx)
}
