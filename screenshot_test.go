package sunburst

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"after-click", "after-click"},
		{"focus b.v2", "focus_b.v2"},
		{"../etc/passwd", ".._etc_passwd"},
		{" padded ", "padded"},
		{"ünï", "_n_"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWritePNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	path := filepath.Join(t.TempDir(), "out.png")
	if err := WritePNG(path, img); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v", got.Bounds())
	}
	if r, _, _, a := got.At(1, 1).RGBA(); r != 0xffff || a != 0xffff {
		t.Errorf("pixel = %v", got.At(1, 1))
	}
}

func TestWritePNGBadPath(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if err := WritePNG(filepath.Join(t.TempDir(), "missing", "out.png"), img); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestSnapshotWaitsForImage(t *testing.T) {
	v := newTestViewer(t, sampleTree(), nil)
	dir := filepath.Join(t.TempDir(), "shots")
	v.SetSnapshotDir(dir)
	v.Snapshot("first")

	// The first pass runs in the background, so nothing is written yet.
	if v.Paint() != nil {
		t.Fatal("first pass ran synchronously")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("snapshot dir created before an image existed: %v", err)
	}

	paintAndWait(t, v)
	matches, err := filepath.Glob(filepath.Join(dir, "*_first.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("snapshots = %v", matches)
	}
}

func TestSnapshotSameLabelKeepsEveryFile(t *testing.T) {
	v := newTestViewer(t, sampleTree(), nil)
	dir := t.TempDir()
	v.SetSnapshotDir(dir)
	paintAndWait(t, v)

	v.Snapshot("same")
	v.Snapshot("same")
	v.Paint()
	v.Snapshot("same")
	v.Paint()

	matches, err := filepath.Glob(filepath.Join(dir, "*_same.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 3 {
		t.Errorf("snapshots = %v, want 3 files", matches)
	}
}
