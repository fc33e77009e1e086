package sunburst

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// SetSnapshotDir sets the directory Snapshot writes to. The default is
// "snapshots".
func (v *Viewer) SetSnapshotDir(dir string) { v.snapshotDir = dir }

// Snapshot queues a labeled capture of the next painted frame. The PNG is
// written to the snapshot directory with a timestamped, numbered file name.
func (v *Viewer) Snapshot(label string) {
	v.snapshotQueue = append(v.snapshotQueue, label)
}

// flushSnapshots writes img once for every queued label.
func (v *Viewer) flushSnapshots(img image.Image) {
	if len(v.snapshotQueue) == 0 || img == nil {
		return
	}
	if err := os.MkdirAll(v.snapshotDir, 0o755); err != nil {
		warnf("snapshot: mkdir %s: %v", v.snapshotDir, err)
		v.snapshotQueue = v.snapshotQueue[:0]
		return
	}
	stamp := time.Now().Format("20060102_150405")
	for _, label := range v.snapshotQueue {
		v.snapshotSeq++
		name := fmt.Sprintf("%s_%03d_%s.png", stamp, v.snapshotSeq, sanitizeLabel(label))
		path := filepath.Join(v.snapshotDir, name)
		if err := WritePNG(path, img); err != nil {
			warnf("snapshot: %v", err)
			continue
		}
		debugf("snapshot: wrote %s", path)
	}
	v.snapshotQueue = v.snapshotQueue[:0]
}

// WritePNG encodes img to a PNG file at path.
func WritePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	w := bufio.NewWriter(f)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return w.Flush()
}

// sanitizeLabel maps a snapshot label to a file name fragment: ASCII
// letters, digits, '-' and '.' are kept and everything else becomes '_'.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.') {
			return r
		}
		return '_'
	}, label)
}
