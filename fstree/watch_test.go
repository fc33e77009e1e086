package fstree

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	var calls atomic.Int32
	fired := make(chan struct{}, 4)
	d := &debouncer{d: 30 * time.Millisecond}
	fn := func() {
		calls.Add(1)
		fired <- struct{}{}
	}
	for i := 0; i < 5; i++ {
		d.trigger(fn)
	}
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("debounced call never fired")
	}
	time.Sleep(100 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}

	d.trigger(fn)
	d.cancel()
	time.Sleep(100 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("cancelled trigger fired: calls = %d", n)
	}
}

func TestWatchReportsChanges(t *testing.T) {
	dir := makeTree(t)
	root, _, err := Scan(context.Background(), dir, Options{})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	changed := make(chan struct{}, 8)
	err = Watch(ctx, root, func() { changed <- struct{}{} },
		WithDebounce(20*time.Millisecond),
		WithOnError(func(err error) { t.Logf("watch error: %v", err) }))
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "sub", "new.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported for a new file in a subdirectory")
	}

	// Directories created after Watch are watched too.
	if err := os.Mkdir(filepath.Join(dir, "later"), 0o755); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported for a new directory")
	}
	time.Sleep(50 * time.Millisecond)
	for len(changed) > 0 {
		<-changed
	}
	if err := os.WriteFile(filepath.Join(dir, "later", "f"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported inside a directory created after Watch")
	}
}
