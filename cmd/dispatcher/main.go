package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tqbui/vqagen/internal/config"
	"github.com/tqbui/vqagen/internal/credential"
	"github.com/tqbui/vqagen/internal/dispatch"
	"github.com/tqbui/vqagen/internal/gemini"
	"github.com/tqbui/vqagen/internal/request"
	"github.com/tqbui/vqagen/internal/results"
	"github.com/tqbui/vqagen/internal/status"
	"github.com/tqbui/vqagen/shared/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("VQAGEN_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/dispatcher/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	requestsPath := flag.String("requests", "", "Path to the API requests file (overrides config)")
	outputDir := flag.String("output", "", "Directory for result files (overrides config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *requestsPath != "" {
		cfg.Paths.RequestsFile = *requestsPath
	}
	if *outputDir != "" {
		cfg.Paths.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// The result store doubles as the dedup index for resumability, so
	// it is created before anything else touches the output directory.
	store, err := results.NewStore(cfg.Paths.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to initialize result store: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging, store.Dir())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting dispatcher",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// API keys come comma-separated from the environment
	keys := splitKeys(os.Getenv("GEMINI_API_KEY"))
	if len(keys) == 0 {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	appLogger.Info("Loaded API keys",
		slog.Int("count", len(keys)),
	)

	// Load the API requests
	reqFile, err := request.Load(cfg.Paths.RequestsFile)
	if err != nil {
		return fmt.Errorf("failed to load requests: %w", err)
	}
	if reqFile.TotalRequests != len(reqFile.Requests) {
		appLogger.Warn("Request file count mismatch",
			slog.Int("total_requests", reqFile.TotalRequests),
			slog.Int("loaded", len(reqFile.Requests)),
		)
	}
	appLogger.Info("Loaded API requests",
		slog.Int("count", len(reqFile.Requests)),
	)

	// Create context cancelled by interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := credential.NewPool(keys, cfg.Gemini.Model, gemini.Factory(ctx, cfg.Gemini.RequestTimeout))
	if err != nil {
		return fmt.Errorf("failed to create credential pool: %w", err)
	}

	dispatcher := dispatch.NewDispatcher(pool, store, dispatch.Options{
		Workers:        cfg.Dispatcher.Workers,
		FetchTimeout:   cfg.Dispatcher.FetchTimeout,
		FailureCeiling: cfg.Dispatcher.FailureCeiling,
		Backoff:        dispatch.Window{Min: cfg.Dispatcher.BackoffMin, Max: cfg.Dispatcher.BackoffMax},
		Courtesy:       dispatch.Window{Min: cfg.Dispatcher.CourtesyMin, Max: cfg.Dispatcher.CourtesyMax},
		ShutdownWait:   cfg.Dispatcher.ShutdownWait,
		QuotaPhrases:   cfg.Dispatcher.QuotaPhrases,
	}, appLogger.Logger)

	// Optional live status endpoint
	if cfg.Status.Enabled {
		statusServer := status.NewServer(cfg.Status.Port, cfg.App.Name, dispatcher, appLogger.Logger)
		statusServer.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := statusServer.Shutdown(shutdownCtx); err != nil {
				appLogger.Warn("Status server shutdown error",
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	summary := dispatcher.Run(ctx, reqFile.Requests)

	appLogger.Info("Dispatcher finished",
		slog.Int("completed", summary.Completed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("seeded", summary.Seeded),
		slog.Bool("interrupted", summary.Interrupted),
	)

	return nil
}

// initLogger initializes the application logger. The persistent log
// lands next to the results unless an explicit file is configured.
func initLogger(cfg *config.LoggingConfig, outputDir string) (*logger.Logger, error) {
	file := cfg.File
	if file == "" {
		file = filepath.Join(outputDir, fmt.Sprintf("api_results_%d.log", time.Now().Unix()))
	}

	return logger.New(&logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		File:         file,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	})
}

// splitKeys parses the comma-separated key list from the environment.
func splitKeys(raw string) []string {
	keys := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
