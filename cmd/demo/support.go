// Command demo wires an Engine through the literal end-to-end scenarios
// of spec §8 as cobra subcommands, printing Engine.poll snapshots as it
// goes. It is the CLI collaborator named out of scope for the core
// engine itself, grounded on the teacher's own cmd/demo/main.go
// (runtime wiring, minimal stub handlers) and cklxx-elephant.ai's/
// codenerd's cobra root-command shape.
package main

import (
	"context"
	"fmt"
	"time"

	"bdi.dev/engine/engine"
	"bdi.dev/engine/model"
)

func mustCommit[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// pollN drives n polls of eng's background loop at a fixed simulated
// step, printing nothing itself; callers snapshot state around the call.
func pollN(ctx context.Context, eng *engine.Engine, n int, step time.Duration) engine.PollStats {
	var stats engine.PollStats
	for i := 0; i < n; i++ {
		stats = eng.Poll(ctx, step)
	}
	return stats
}

func printStats(label string, stats engine.PollStats) {
	fmt.Printf("%s: total=%d running=%d executing=%d stopped=%d\n",
		label, stats.AgentsTotal, stats.AgentsRunning, stats.AgentsExecuting, stats.AgentsStopped)
}

// newRegistry is a tiny convenience so each scenario doesn't repeat the
// NewRegistry/defer Commit dance.
func newRegistry() *model.Registry { return model.NewRegistry() }
