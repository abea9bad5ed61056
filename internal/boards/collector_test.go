package boards

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"rankpipe/internal/util"
)

func TestNaturalLess_Ordering(t *testing.T) {
	labels := []string{"board2", "board10", "board1"}
	sort.Slice(labels, func(i, j int) bool {
		return NaturalLess(labels[i], labels[j])
	})

	want := []string{"board1", "board2", "board10"}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("natural sort = %v, want %v", labels, want)
		}
	}
}

func TestNaturalLess_Cases(t *testing.T) {
	tests := []struct {
		a, b string
		less bool
	}{
		{"board2", "board10", true},
		{"board10", "board2", false},
		{"board1", "board1", false},
		{"细分榜单2", "细分榜单10", true},
		{"board2a", "board2b", true},
		{"board", "board1", true},
	}
	for _, tt := range tests {
		if got := NaturalLess(tt.a, tt.b); got != tt.less {
			t.Errorf("NaturalLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.less)
		}
	}
}

func TestRegionFromDir(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"captures/Shanghai_20250408_032249", "Shanghai"},
		{"captures/武汉_20240801_120000/", "武汉"},
		{"CityX", "CityX"},
	}
	for _, tt := range tests {
		if got := RegionFromDir(tt.dir); got != tt.want {
			t.Errorf("RegionFromDir(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func writeRun(t *testing.T, root string, folders map[string][]string) {
	t.Helper()
	img := pngBytes(t)
	for folder, files := range folders {
		dir := filepath.Join(root, folder)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		for _, file := range files {
			if err := os.WriteFile(filepath.Join(dir, file), img, 0o644); err != nil {
				t.Fatalf("write image: %v", err)
			}
		}
	}
}

func TestCollector_Collect_OrderAndRegion(t *testing.T) {
	root := filepath.Join(t.TempDir(), "CityX_20250408_032249")
	writeRun(t, root, map[string][]string{
		"board10": {"1.png"},
		"main":    {"2.png", "1.png", "10.png"},
		"board2":  {"1.png"},
		"board1":  {"1.png"},
	})

	c := NewCollector(util.NewLogger(false))
	run, err := c.Collect(root)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if run.Region != "CityX" {
		t.Errorf("region = %q, want CityX", run.Region)
	}

	var labels []string
	for _, b := range run.Boards {
		labels = append(labels, b.Label)
	}
	want := []string{"main", "board1", "board2", "board10"}
	if len(labels) != len(want) {
		t.Fatalf("boards = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("boards = %v, want %v", labels, want)
		}
	}

	if !run.Boards[0].Main {
		t.Error("expected first board to be flagged main")
	}
	if len(run.Boards[0].Images) != 3 {
		t.Errorf("main board images = %d, want 3", len(run.Boards[0].Images))
	}
}

func TestCollector_Collect_SkipsUndecodableImages(t *testing.T) {
	root := filepath.Join(t.TempDir(), "CityX_run")
	writeRun(t, root, map[string][]string{"main": {"1.png"}})
	if err := os.WriteFile(filepath.Join(root, "main", "2.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}

	c := NewCollector(util.NewLogger(false))
	run, err := c.Collect(root)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(run.Boards) != 1 || len(run.Boards[0].Images) != 1 {
		t.Fatalf("expected 1 board with 1 decodable image, got %+v", run.Boards)
	}
}

func TestCollector_Collect_MissingRoot(t *testing.T) {
	c := NewCollector(util.NewLogger(false))
	if _, err := c.Collect(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing input directory")
	}
}

func TestCollector_Collect_LegacyFolderNames(t *testing.T) {
	root := filepath.Join(t.TempDir(), "武汉_20240801_120000")
	writeRun(t, root, map[string][]string{
		"主榜单":   {"1.png"},
		"细分榜单2": {"1.png"},
		"细分榜单1": {"1.png"},
	})

	c := NewCollector(util.NewLogger(false))
	run, err := c.Collect(root)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(run.Boards) != 3 {
		t.Fatalf("expected 3 boards, got %d", len(run.Boards))
	}
	if run.Boards[0].Label != "主榜单" || !run.Boards[0].Main {
		t.Errorf("expected legacy main board first, got %+v", run.Boards[0])
	}
	if run.Boards[1].Label != "细分榜单1" {
		t.Errorf("expected 细分榜单1 second, got %s", run.Boards[1].Label)
	}
}
