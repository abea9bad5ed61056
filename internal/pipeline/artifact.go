package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rankpipe/internal/model"
)

// MainArtifactName is the fixed file name for the main board's batch.
const MainArtifactName = "main.json"

// ArtifactWriter persists each board's normalized, reconciled batch as
// a JSON file under the run's output directory. The files are the
// recovery and audit trail: if the store call fails, `rankpipe upload`
// replays them later.
type ArtifactWriter struct {
	dir string
}

// NewArtifactWriter creates a writer rooted at dir (created lazily).
func NewArtifactWriter(dir string) *ArtifactWriter {
	return &ArtifactWriter{dir: dir}
}

// Write stores one board's batch and returns the file path. The main
// board gets a fixed name; sub-boards are named after the first
// record's board field.
func (w *ArtifactWriter) Write(main bool, batch []model.Record) (string, error) {
	if len(batch) == 0 {
		return "", fmt.Errorf("empty batch")
	}

	name := MainArtifactName
	if !main {
		name = sanitizeFileName(batch[0].Board) + ".json"
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(batch, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal batch: %w", err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// sanitizeFileName keeps board labels usable as file names.
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown-board"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "..", "-")
	return replacer.Replace(name)
}
