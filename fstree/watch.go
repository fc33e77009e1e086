package fstree

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the default quiet period before a change is reported.
const DefaultDebounce = 500 * time.Millisecond

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	debounce time.Duration
	onError  func(error)
}

// WithDebounce sets the quiet period before onChange fires.
func WithDebounce(d time.Duration) WatchOption {
	return func(c *watchConfig) { c.debounce = d }
}

// WithOnError sets the callback for watcher errors.
func WithOnError(fn func(error)) WatchOption {
	return func(c *watchConfig) { c.onError = fn }
}

// debouncer coalesces bursts of triggers into one call.
type debouncer struct {
	mu    sync.Mutex
	d     time.Duration
	timer *time.Timer
}

func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.d, fn)
}

func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Watch reports changes anywhere in the scanned tree until ctx is done.
// Every directory of root is watched; directories created later are added
// as they appear. onChange runs on a timer goroutine after the debounce
// period.
func Watch(ctx context.Context, root *Node, onChange func(), opts ...WatchOption) error {
	cfg := watchConfig{debounce: DefaultDebounce, onError: func(error) {}}
	for _, opt := range opts {
		opt(&cfg)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !n.IsDir {
			continue
		}
		if err := w.Add(n.Path); err != nil {
			cfg.onError(err)
		}
		stack = append(stack, n.Kids...)
	}

	deb := &debouncer{d: cfg.debounce}
	go func() {
		defer w.Close()
		defer deb.cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
					continue
				}
				if ev.Has(fsnotify.Create) {
					_ = w.Add(ev.Name) // fails harmlessly for files
				}
				deb.trigger(onChange)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cfg.onError(err)
			}
		}
	}()
	return nil
}
