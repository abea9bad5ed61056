package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"rankpipe/internal/boards"
	"rankpipe/internal/cache"
	"rankpipe/internal/model"
	"rankpipe/internal/pipeline"
	"rankpipe/internal/retry"
	"rankpipe/internal/storage"
	"rankpipe/internal/util"
	"rankpipe/internal/vision"
)

var (
	provider    string
	visionModel string
	storeDriver string
	dbPath      string
	tableName   string
	concurrency int
	noCache     bool
	outputDir   string
	expected    int
	region      string
	runTimeout  time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <captured-images-root>",
	Short: "Extract a capture run into the shared store",
	Long: `Run processes one screenshot capture run end to end:
- Collect board folders (main first, then board2, board3, ... in natural order)
- Send each board's full screenshot batch to the multimodal model
- Parse, normalize and reconcile the records per board
- Write a per-board JSON artifact under the output directory
- Upsert each batch into the store keyed by (board, brand)
- Print a run summary checked against the expected board count

Example:
  rankpipe run ./Shanghai_20250408
  rankpipe run ./Shanghai_20250408 --provider openai --model gpt-4o
  rankpipe run ./Shanghai_20250408 --store sqlite --db rankpipe.db --concurrency 4`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Vision flags
	runCmd.Flags().StringVar(&provider, "provider", "gemini", "vision provider (gemini, openai)")
	runCmd.Flags().StringVar(&visionModel, "model", "", "vision model name (default: provider default)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute, "total timeout for the run")

	// Store flags
	runCmd.Flags().StringVar(&storeDriver, "store", "postgres", "store driver (postgres, sqlite)")
	runCmd.Flags().StringVar(&dbPath, "db", "rankpipe.db", "sqlite database file (sqlite store only)")
	runCmd.Flags().StringVar(&tableName, "table", "board_records", "store table name")

	// Pipeline flags
	runCmd.Flags().IntVar(&concurrency, "concurrency", 1, "number of boards extracted in parallel (1 = sequential)")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the model reply cache")
	runCmd.Flags().StringVar(&outputDir, "output-dir", "results", "root directory for per-board JSON artifacts")
	runCmd.Flags().IntVar(&expected, "expected", model.StandardBoardCount, "expected number of boards in a complete run")
	runCmd.Flags().StringVar(&region, "region", "", "region override (default: derived from the run directory name)")
}

func runRun(cmd *cobra.Command, args []string) error {
	root := args[0]

	// Load .env if present; real environment still wins
	_ = godotenv.Load()

	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("capture run directory not found: %s\nPass the folder produced by the capture tooling, e.g. Shanghai_20250408", root)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	log := util.NewLogger(cfg.Output.Verbose)

	// Board collection
	collector := boards.NewCollector(log)
	run, err := collector.Collect(root)
	if err != nil {
		return fmt.Errorf("collect boards: %w", err)
	}
	if cfg.Run.Region != "" {
		run.Region = cfg.Run.Region
	}

	// Vision provider and extraction client
	visionProvider, err := vision.NewProvider(vision.Config{
		Provider: cfg.Vision.Provider,
		Model:    cfg.Vision.Model,
		APIKey:   cfg.Vision.APIKey,
		BaseURL:  cfg.Vision.BaseURL,
		Timeout:  cfg.Vision.Timeout,
	})
	if err != nil {
		return err
	}

	opts := vision.ExtractorOptions{Model: cfg.Vision.Model}
	if cfg.Vision.RateLimit > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(cfg.Vision.RateLimit), 1)
	}
	if cfg.Cache.Enabled {
		opts.Cache = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		opts.CacheTTL = cfg.Cache.TTL
	}

	policy := retry.Policy{
		MaxAttempts:  cfg.Vision.MaxAttempts,
		Backoff:      cfg.Vision.Backoff,
		EmptyBackoff: cfg.Vision.EmptyBackoff,
	}
	extractor := vision.NewExtractor(visionProvider, policy, log, opts)

	// Store
	writer, err := storage.NewWriter(storage.Config{
		Driver: cfg.Store.Driver,
		DSN:    cfg.Store.DSN,
		Path:   cfg.Store.Path,
		Table:  cfg.Store.Table,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Warn("close store: %v", err)
		}
	}()
	loader := storage.NewLoader(writer, log)

	// Artifacts live next to other runs, named after the run directory
	// so `rankpipe upload` can re-derive the region later.
	artifactDir := filepath.Join(cfg.Output.Dir, filepath.Base(filepath.Clean(root)))
	artifacts := pipeline.NewArtifactWriter(artifactDir)

	log.Info("processing run %s (region %s, %d boards, %d workers)",
		root, run.Region, len(run.Boards), cfg.Concurrency.Workers)

	p := pipeline.New(extractor, loader, artifacts, log, cfg.Concurrency.Workers, cfg.Run.ExpectedBoards)
	summary := p.Run(ctx, run)

	pipeline.RenderSummary(os.Stdout, summary)

	if summary.Succeeded() == 0 && len(summary.Boards) > 0 {
		return fmt.Errorf("no board loaded successfully")
	}
	return nil
}

// buildConfig merges defaults, flags and environment into the run
// configuration, resolving required credentials up front so a
// misconfigured run fails before any model call.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	cfg.Vision.Provider = provider
	cfg.Vision.Model = visionModel
	cfg.Store.Driver = storeDriver
	cfg.Store.Path = dbPath
	cfg.Store.Table = tableName
	cfg.Concurrency.Workers = concurrency
	cfg.Cache.Enabled = !noCache
	cfg.Output.Dir = outputDir
	cfg.Output.Verbose = verbose
	cfg.Run.ExpectedBoards = expected
	cfg.Run.Region = region

	// Resolve API key from environment
	switch cfg.Vision.Provider {
	case "gemini", "google", "":
		cfg.Vision.APIKey = os.Getenv("GEMINI_API_KEY")
		if cfg.Vision.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set\nGet a key at https://aistudio.google.com/apikey and export it, or put it in .env")
		}
	case "openai":
		cfg.Vision.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Vision.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
			cfg.Vision.BaseURL = baseURL
		}
	}

	// Resolve store credentials
	if cfg.Store.Driver == "postgres" || cfg.Store.Driver == "" {
		cfg.Store.DSN = os.Getenv("DATABASE_URL")
		if cfg.Store.DSN == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable not set\nExport a postgres connection string, put it in .env, or use --store sqlite")
		}
	}

	return cfg, nil
}
