// Package boards discovers the per-board screenshot folders of one
// capture run and loads their images in processing order.
package boards

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	// Screenshot formats produced by the capture tooling.
	_ "image/jpeg"
	_ "image/png"

	"rankpipe/internal/util"
	"rankpipe/internal/vision"
)

// Folder names written by the capture tooling. The Chinese names are
// the legacy layout and are still accepted.
const (
	mainFolderName        = "main"
	legacyMainFolderName  = "主榜单"
	subFolderPrefix       = "board"
	legacySubFolderPrefix = "细分榜单"
)

// Board is one ranking board: a stable label, its screenshots in page
// order, and whether it is the main overall ranking.
type Board struct {
	Label  string
	Main   bool
	Dir    string
	Images []vision.Image
}

// Run is one capture run: the region it belongs to and its boards in
// processing order (main board first, then sub-boards in natural
// numeric order).
type Run struct {
	Region string
	Boards []Board
}

// Collector scans a capture run directory.
type Collector struct {
	log *util.Logger
}

// NewCollector creates a new Collector.
func NewCollector(log *util.Logger) *Collector {
	return &Collector{log: log}
}

// Collect reads the run rooted at dir. The directory name encodes the
// region as the prefix before the first underscore ("Shanghai_20250408
// _032249"). A missing root is an error; empty or unreadable board
// folders are logged and skipped.
func (c *Collector) Collect(root string) (*Run, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("input directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", root)
	}

	run := &Run{Region: RegionFromDir(root)}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var mainDir string
	var subDirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case name == mainFolderName || name == legacyMainFolderName:
			mainDir = name
		case strings.HasPrefix(name, subFolderPrefix) || strings.HasPrefix(name, legacySubFolderPrefix):
			subDirs = append(subDirs, name)
		}
	}

	// Main board first, then sub-boards in natural numeric order:
	// board2 before board10.
	sort.Slice(subDirs, func(i, j int) bool {
		return NaturalLess(subDirs[i], subDirs[j])
	})

	if mainDir != "" {
		run.Boards = append(run.Boards, c.loadBoard(root, mainDir, true))
	}
	for _, sub := range subDirs {
		run.Boards = append(run.Boards, c.loadBoard(root, sub, false))
	}

	return run, nil
}

func (c *Collector) loadBoard(root, name string, main bool) Board {
	dir := filepath.Join(root, name)
	board := Board{Label: name, Main: main, Dir: dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		c.log.Warn("[%s] cannot read board folder: %v", name, err)
		return board
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".png" || ext == ".jpg" || ext == ".jpeg" {
			files = append(files, entry.Name())
		}
	}

	// Screenshots are numbered by scroll position; page order matters
	// to the model. Non-numeric names sort first.
	sort.Slice(files, func(i, j int) bool {
		return imageOrdinal(files[i]) < imageOrdinal(files[j])
	})

	for _, file := range files {
		path := filepath.Join(dir, file)
		img, err := loadImage(path)
		if err != nil {
			c.log.Warn("[%s] skipping image %s: %v", name, file, err)
			continue
		}
		board.Images = append(board.Images, img)
	}

	return board
}

// loadImage reads an image file and verifies it decodes before it is
// sent to the model.
func loadImage(path string) (vision.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vision.Image{}, err
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return vision.Image{}, fmt.Errorf("not a decodable image: %w", err)
	}

	mime := "image/png"
	if format == "jpeg" {
		mime = "image/jpeg"
	}
	return vision.Image{MIME: mime, Data: data}, nil
}

func imageOrdinal(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if n, err := strconv.Atoi(base); err == nil {
		return n
	}
	return -1
}

// RegionFromDir extracts the region from a run directory name: the
// prefix before the first underscore, or the whole base name when
// there is none.
func RegionFromDir(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	if idx := strings.Index(base, "_"); idx > 0 {
		return base[:idx]
	}
	return base
}

// NaturalLess compares two labels treating embedded digit runs as
// numbers, so "board2" sorts before "board10".
func NaturalLess(a, b string) bool {
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		ac, bc := a[ai], b[bi]
		aDigit := ac >= '0' && ac <= '9'
		bDigit := bc >= '0' && bc <= '9'

		switch {
		case aDigit && bDigit:
			aj := ai
			for aj < len(a) && a[aj] >= '0' && a[aj] <= '9' {
				aj++
			}
			bj := bi
			for bj < len(b) && b[bj] >= '0' && b[bj] <= '9' {
				bj++
			}
			an, _ := strconv.Atoi(a[ai:aj])
			bn, _ := strconv.Atoi(b[bi:bj])
			if an != bn {
				return an < bn
			}
			ai, bi = aj, bj

		case aDigit != bDigit:
			// Digits sort before letters, matching numeric-suffix layouts.
			return aDigit

		default:
			if ac != bc {
				return ac < bc
			}
			ai++
			bi++
		}
	}
	return len(a)-ai < len(b)-bi
}
