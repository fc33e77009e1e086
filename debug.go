package sunburst

import (
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

// logger receives all diagnostics. Debug lines are only written when debug
// mode is on; failures are always written.
var (
	logger    = log.New(os.Stderr, "[sunburst] ", log.Ltime)
	debugMode atomic.Bool
)

func init() {
	if os.Getenv("SUNBURST_DEBUG") != "" {
		debugMode.Store(true)
	}
}

// SetDebug turns debug logging on or off.
func SetDebug(on bool) { debugMode.Store(on) }

// Debug reports whether debug logging is on.
func Debug() bool { return debugMode.Load() }

// SetLogOutput redirects diagnostics; nil discards them.
func SetLogOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	logger.SetOutput(w)
}

func debugf(format string, args ...any) {
	if !debugMode.Load() {
		return
	}
	logger.Printf(format, args...)
}

func warnf(format string, args ...any) {
	logger.Printf("warning: "+format, args...)
}

// passStats holds the timing of one render pass.
type passStats struct {
	fidelity   Fidelity
	background bool
	cost       time.Duration
	nodes      int64
}

// debugLogPass prints pass timing to the diagnostics log.
func debugLogPass(st passStats) {
	mode := "sync"
	if st.background {
		mode = "background"
	}
	debugf("pass: %s (%s) | nodes: %d | cost: %v", st.fidelity, mode, st.nodes, st.cost)
}
