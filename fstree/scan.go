// Package fstree supplies directory trees as sunburst data: a concurrent
// scanner, presentation metadata, and a watcher that reports changes.
package fstree

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/sunburst"
)

// FreeSpaceName names the pseudo node that shows free disk space.
const FreeSpaceName = "[Free Disk Space]"

// Node is a file or directory. Sizes of directories are the sum of their
// children after Scan returns.
type Node struct {
	Name        string
	Path        string
	Size        int64
	IsDir       bool
	IsFreeSpace bool
	Kids        []*Node
}

// Children implements sunburst.DataNode.
func (n *Node) Children() []sunburst.DataNode {
	out := make([]sunburst.DataNode, len(n.Kids))
	for i, k := range n.Kids {
		out[i] = k
	}
	return out
}

// Weight implements sunburst.DataNode. Empty files and directories weigh
// the default single unit.
func (n *Node) Weight() float64 { return float64(n.Size) }

// String returns the node name.
func (n *Node) String() string { return n.Name }

// Options controls a scan.
type Options struct {
	// Workers bounds concurrent directory reads; <= 0 uses 4 per CPU.
	Workers int
	// SkipHidden skips dot files and directories.
	SkipHidden bool
	// MinFileSize drops files smaller than this many bytes.
	MinFileSize int64
	// FreeSpace adds a free-space node when the root is a mount point.
	FreeSpace bool
}

// Stats counts what a scan visited.
type Stats struct {
	Files int64
	Dirs  int64
}

type scanner struct {
	opts  Options
	ctx   context.Context
	g     *errgroup.Group
	files atomic.Int64
	dirs  atomic.Int64
}

// Scan reads the directory tree at root. Subdirectories are read in
// parallel; when all workers are busy a directory is read inline.
// Unreadable directories appear empty. Symlinks and special files are
// skipped. Children are ordered by size, largest first.
func Scan(ctx context.Context, root string, opts Options) (*Node, Stats, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, Stats{}, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, Stats{}, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	s := &scanner{opts: opts, ctx: gctx, g: g}

	top := &Node{Name: baseName(abs), Path: abs, IsDir: true}
	g.Go(func() error { return s.scanDir(top) })
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	if opts.FreeSpace && isMountRoot(ctx, abs) {
		if u, err := disk.UsageWithContext(ctx, abs); err == nil {
			top.Kids = append(top.Kids, &Node{
				Name:        FreeSpaceName,
				Size:        int64(u.Free),
				IsFreeSpace: true,
			})
		}
	}

	aggregate(top)
	return top, Stats{Files: s.files.Load(), Dirs: s.dirs.Load()}, nil
}

func (s *scanner) scanDir(n *Node) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	s.dirs.Add(1)

	entries, err := os.ReadDir(n.Path)
	if err != nil {
		return nil
	}

	var subdirs []*Node
	for _, de := range entries {
		name := de.Name()
		if de.Type()&os.ModeSymlink != 0 {
			continue
		}
		if s.opts.SkipHidden && strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(n.Path, name)
		if de.IsDir() {
			sub := &Node{Name: name, Path: full, IsDir: true}
			n.Kids = append(n.Kids, sub)
			subdirs = append(subdirs, sub)
			continue
		}
		info, err := de.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if info.Size() < s.opts.MinFileSize {
			continue
		}
		n.Kids = append(n.Kids, &Node{Name: name, Path: full, Size: info.Size()})
		s.files.Add(1)
	}

	for _, sub := range subdirs {
		fn := func() error { return s.scanDir(sub) }
		if !s.g.TryGo(fn) {
			if err := fn(); err != nil {
				return err
			}
		}
	}
	return nil
}

// aggregate sums directory sizes bottom-up and sorts children by size.
func aggregate(root *Node) {
	var order []*Node
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, n)
		stack = append(stack, n.Kids...)
	}
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		if !n.IsDir {
			continue
		}
		n.Size = 0
		for _, k := range n.Kids {
			n.Size += k.Size
		}
		slices.SortStableFunc(n.Kids, func(a, b *Node) int {
			switch {
			case a.Size > b.Size:
				return -1
			case a.Size < b.Size:
				return 1
			}
			return strings.Compare(a.Name, b.Name)
		})
	}
}

func baseName(path string) string {
	b := filepath.Base(path)
	if b == "." || b == string(os.PathSeparator) || b == "" {
		if vol := filepath.VolumeName(path); vol != "" {
			return vol + string(os.PathSeparator)
		}
		return string(os.PathSeparator)
	}
	return b
}

// isMountRoot reports whether path is the mount point of a partition.
func isMountRoot(ctx context.Context, path string) bool {
	clean := filepath.Clean(path)
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return clean == string(os.PathSeparator)
	}
	for _, p := range parts {
		if filepath.Clean(p.Mountpoint) == clean {
			return true
		}
	}
	return false
}
