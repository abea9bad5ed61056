package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rankpipe/internal/boards"
	"rankpipe/internal/model"
	"rankpipe/internal/pipeline"
	"rankpipe/internal/storage"
	"rankpipe/internal/util"
)

var (
	uploadStore   string
	uploadDB      string
	uploadTable   string
	uploadRegion  string
	uploadTimeout time.Duration
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload <results-dir>",
	Short: "Replay previously written board artifacts into the store",
	Long: `Upload is the recovery path for runs whose store writes failed:
it reads the per-board JSON artifacts a previous run left behind and
upserts them into the store.

The region is re-derived from the artifact directory name, and the
required-field gate and (board, brand) reconciliation are re-applied
before writing, so hand-edited artifacts stay safe to replay.

Example:
  rankpipe upload results/Shanghai_20250408
  rankpipe upload results/Shanghai_20250408 --store sqlite --db rankpipe.db`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVar(&uploadStore, "store", "postgres", "store driver (postgres, sqlite)")
	uploadCmd.Flags().StringVar(&uploadDB, "db", "rankpipe.db", "sqlite database file (sqlite store only)")
	uploadCmd.Flags().StringVar(&uploadTable, "table", "board_records", "store table name")
	uploadCmd.Flags().StringVar(&uploadRegion, "region", "", "region override (default: derived from the directory name)")
	uploadCmd.Flags().DurationVar(&uploadTimeout, "timeout", 10*time.Minute, "total timeout for the upload")
}

func runUpload(cmd *cobra.Command, args []string) error {
	dir := args[0]

	_ = godotenv.Load()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("artifact directory not found: %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, entry.Name())
	}
	if len(files) == 0 {
		return fmt.Errorf("no artifact files in %s", dir)
	}

	// Main board first, then sub-boards in natural order, matching the
	// processing order of the run that wrote them.
	sort.Slice(files, func(i, j int) bool {
		if files[i] == pipeline.MainArtifactName {
			return true
		}
		if files[j] == pipeline.MainArtifactName {
			return false
		}
		return boards.NaturalLess(files[i], files[j])
	})

	region := uploadRegion
	if region == "" {
		region = boards.RegionFromDir(dir)
	}

	dsn := ""
	if uploadStore == "postgres" || uploadStore == "" {
		dsn = os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL environment variable not set\nExport a postgres connection string, put it in .env, or use --store sqlite")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	log := util.NewLogger(verbose)

	writer, err := storage.NewWriter(storage.Config{
		Driver: uploadStore,
		DSN:    dsn,
		Path:   uploadDB,
		Table:  uploadTable,
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

	log.Info("replaying %d artifacts from %s (region %s)", len(files), dir, region)

	loaded, skipped, failed := 0, 0, 0
	for _, name := range files {
		label := strings.TrimSuffix(name, ".json")

		batch, err := readArtifact(filepath.Join(dir, name), region)
		if err != nil {
			failed++
			log.Error("[%s] %v", label, err)
			continue
		}

		batch, renamed := pipeline.DedupeKeys(batch)
		if renamed > 0 {
			log.Warn("[%s] renamed %d colliding (board, brand) keys", label, renamed)
		}

		result, err := loader.Load(ctx, label, batch)
		switch {
		case errors.Is(err, storage.ErrNoData):
			skipped++
		case err != nil:
			failed++
		default:
			loaded++
			log.Info("[%s] loaded %d records (%d dropped)", label, result.Loaded, result.Dropped)
		}
	}

	log.Info("upload complete: %d loaded, %d skipped, %d failed", loaded, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d artifacts failed to load", failed, len(files))
	}
	return nil
}

// readArtifact parses one board artifact and fills in the region on
// records that predate region stamping.
func readArtifact(path, region string) ([]model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var batch []model.Record
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}

	for i := range batch {
		if batch[i].Region == "" {
			batch[i].Region = region
		}
	}
	return batch, nil
}
