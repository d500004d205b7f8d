package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cuemby/gridcore/pkg/api"
	"github.com/cuemby/gridcore/pkg/config"
	"github.com/cuemby/gridcore/pkg/events"
	"github.com/cuemby/gridcore/pkg/executor"
	"github.com/cuemby/gridcore/pkg/log"
	"github.com/cuemby/gridcore/pkg/metrics"
	"github.com/cuemby/gridcore/pkg/scheduler"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gridcore",
	Short: "gridcore - a partition-affinity dispatch core",
	Long: `gridcore routes operations, callbacks, and wire packets onto a fixed
pool of partition workers, a shared pool of generic workers, and a single
response worker, preserving per-partition serialization while letting
unrelated partitions run fully in parallel.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"gridcore version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(runCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the dispatcher and its HTTP/gRPC health surface",
	RunE:  runDispatcher,
}

func init() {
	runCmd.Flags().Int("partition-workers", 0, "Override the configured number of partition workers")
	runCmd.Flags().Int("generic-workers", 0, "Override the configured number of generic workers")
}

func runDispatcher(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if v, _ := cmd.Flags().GetInt("partition-workers"); v > 0 {
		cfg.PartitionWorkers = v
	}
	if v, _ := cmd.Flags().GetInt("generic-workers"); v > 0 {
		cfg.GenericWorkers = v
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	metrics.SetVersion(Version)

	nodeID := uuid.NewString()
	logger := log.WithNodeID(nodeID).With().Str("component", "gridcore").Logger()
	logger.Info().
		Int("partition_workers", cfg.PartitionWorkers).
		Int("generic_workers", cfg.GenericWorkers).
		Str("restart_policy", string(cfg.WorkerRestartPolicy)).
		Msg("starting dispatcher")

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	executors := executor.NewRegistry()
	for _, ec := range cfg.Executors {
		executors.Register(executor.NewPoolExecutor(ec.Name, ec.Concurrency))
	}

	opHandler := newJSONOperationHandler(logger)
	respHandler := newJSONResponseHandler(logger)

	dispatcher := scheduler.New(cfg, opHandler, respHandler, executors, broker)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher.Start(ctx)
	metrics.RegisterComponent("dispatcher", true, "")

	collector := metrics.NewCollector(dispatcher)
	collector.Start()
	defer collector.Stop()

	healthServer := api.NewHealthServer(dispatcher)
	go func() {
		if err := healthServer.Start(cfg.HTTPAddr); err != nil {
			logger.Error().Err(err).Msg("health server stopped")
		}
	}()
	metrics.RegisterComponent("api", true, "")

	grpcHealth := api.NewGRPCHealthServer()
	grpcHealth.SetServingStatus(nodeID, healthpb.HealthCheckResponse_SERVING)
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, grpcHealth)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("grpc health server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received, draining dispatcher")

	grpcHealth.SetServingStatus(nodeID, healthpb.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), dispatcher.DefaultShutdownTimeout())
	defer cancel()

	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("dispatcher shutdown did not complete cleanly")
		return err
	}

	logger.Info().Msg("dispatcher drained, exiting")
	return nil
}
