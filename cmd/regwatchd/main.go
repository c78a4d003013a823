// Regwatchd is the RegWatch regulatory-intelligence daemon.
//
// The binary serves the circular-matching HTTP API: regulator suggestion,
// two-stage circular matching, pre-assessment question generation, and
// compliance task generation with RegComply webhook forwarding.
//
// Configuration is loaded from an optional YAML file and overridden by
// environment variables. See internal/config for details.
//
// Usage:
//
//	# Start server with defaults
//	regwatchd
//
//	# Configure via environment
//	SERVER_HTTP_PORT=9090 LLM_MODEL=gpt-4o regwatchd
//
//	# Configure via file
//	regwatchd -config /etc/regwatch/config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/regwatchhq/regwatch/internal/assessment"
	"github.com/regwatchhq/regwatch/internal/config"
	regwatchhttp "github.com/regwatchhq/regwatch/internal/http"
	"github.com/regwatchhq/regwatch/internal/llm"
	"github.com/regwatchhq/regwatch/internal/logging"
	"github.com/regwatchhq/regwatch/internal/match"
	"github.com/regwatchhq/regwatch/internal/regulator"
	"github.com/regwatchhq/regwatch/internal/store"
	"github.com/regwatchhq/regwatch/internal/tasks"
	"github.com/regwatchhq/regwatch/internal/webhook"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()
	args := flag.Args()

	// Handle subcommands
	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  regwatchd           Start the regwatch daemon\n")
			fmt.Fprintf(os.Stderr, "  regwatchd version   Show version information\n")
			os.Exit(1)
		}
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("regwatchd by RegWatch HQ\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the regwatchd server and blocks until context is cancelled.
//
// Initialization order:
//  1. Load and validate configuration
//  2. Initialize logger
//  3. Connect to the regwatch and ecosystem databases
//  4. Create the completion client
//  5. Wire business services (pipeline, assessment, tasks)
//  6. Start the HTTP server
//  7. Perform graceful shutdown on context cancellation
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Fields: map[string]string{"service": "regwatchd"},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger) // Best-effort sync on shutdown
	}()

	logger.Info("Starting regwatchd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout))

	// Connect to both document stores.
	connectCtx, connectCancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer connectCancel()

	st, err := store.Connect(connectCtx, store.Config{
		RegwatchURI:       cfg.Mongo.RegwatchURI.Value(),
		EcosystemURI:      cfg.Mongo.EcosystemURI.Value(),
		RegwatchDatabase:  cfg.Mongo.RegwatchDatabase,
		EcosystemDatabase: cfg.Mongo.EcosystemDatabase,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to document stores: %w", err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Warn("store close failed", zap.Error(err))
		}
	}()

	logger.Info("Document stores connected",
		zap.String("regwatch_database", cfg.Mongo.RegwatchDatabase),
		zap.String("ecosystem_database", cfg.Mongo.EcosystemDatabase))

	// Completion client shared by the advisor, classifier, and generators.
	completer, err := llm.New(llm.Config{
		Provider:   cfg.LLM.Provider,
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     cfg.LLM.APIKey.Value(),
		Model:      cfg.LLM.Model,
		APIVersion: cfg.LLM.APIVersion,
		Timeout:    cfg.LLM.CompletionTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}

	logger.Info("Completion client initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model))

	// Business services.
	advisor := regulator.NewAdvisor(completer, logger.Named("advisor"))
	classifier := match.NewClassifier(completer, logger.Named("classifier"))
	pipeline := match.NewPipeline(
		st.Companies(),
		st.Regulations(),
		advisor,
		classifier,
		logger.Named("pipeline"),
		cfg.Match.FallbackCountry,
	)

	assessor := assessment.NewService(
		st.Regulations(),
		st.PreAssessments(),
		assessment.NewGenerator(completer, logger.Named("assessment")),
		logger.Named("assessment"),
	)

	forwarder := tasks.NewForwarder(tasks.ForwarderConfig{
		URL:     cfg.Webhook.RegComplyURL,
		Secret:  cfg.Webhook.RegComplySecret.Value(),
		Timeout: cfg.Webhook.Timeout,
	}, logger.Named("regcomply"))
	tasker := tasks.NewService(
		st.Regulations(),
		tasks.NewGenerator(completer, logger.Named("tasks")),
		forwarder,
		logger.Named("tasks"),
	)

	webhookLog := webhook.NewLog()
	metrics := regwatchhttp.NewHTTPMetrics(logger.Named("metrics"))

	srv, err := regwatchhttp.NewServer(pipeline, assessor, tasker, webhookLog, metrics, logger.Named("http"), &regwatchhttp.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	logger.Info("Server configured",
		zap.String("health_endpoint", fmt.Sprintf("http://%s:%d/health", cfg.Server.Host, cfg.Server.Port)),
		zap.Bool("regcomply_forwarding", forwarder.Enabled()))

	// Start server and wait for shutdown.
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
