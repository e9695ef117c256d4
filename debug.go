package gremlin

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-tick timing and counts.
// Only populated when Scene.debug is true.
type debugStats struct {
	inputTime     time.Duration
	stepTime      time.Duration
	buildTime     time.Duration
	events        int
	transitions   int
	instanceCount int
	commandCount  int
}

// SetDebugMode enables per-tick stats on stderr and logging of dropped
// events.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// debugLog prints timing and count stats to stderr.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	total := stats.inputTime + stats.stepTime + stats.buildTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[gremlin] input: %v | step: %v | build: %v | total: %v\n",
		stats.inputTime, stats.stepTime, stats.buildTime, total)
	_, _ = fmt.Fprintf(os.Stderr,
		"[gremlin] instances: %d | commands: %d | events: %d | transitions: %d\n",
		stats.instanceCount, stats.commandCount, stats.events, stats.transitions)
}

// debugMaxInstances is the live instance count above which Spawn warns.
const debugMaxInstances = 64

func (s *Scene) debugCheckInstanceCount() {
	if len(s.instances) > debugMaxInstances {
		_, _ = fmt.Fprintf(os.Stderr, "[gremlin] warning: %d live instances (threshold %d)\n",
			len(s.instances), debugMaxInstances)
	}
}
