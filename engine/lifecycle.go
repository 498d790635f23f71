package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"bdi.dev/engine/agent"
	"bdi.dev/engine/bdierrors"
)

// PollStats summarizes one Poll pass across every agent (spec §6
// "Engine.poll(dt?) -> {agents_running, agents_executing, ...}").
type PollStats struct {
	AgentsTotal     int
	AgentsRunning   int
	AgentsExecuting int
	AgentsStopped   int
}

// defaultTickTimeout bounds how long Poll waits for a single slow agent's
// Tick before giving up on that pass; a Tick never blocks by contract
// (spec §5 "a tick never blocks"), so this is a backstop, not a design
// dependency.
const defaultTickTimeout = 5 * time.Second

// Poll drives exactly one Tick of every live agent, fanned out across a
// worker pool bounded by Concurrency (unbounded when zero). Ticks for
// distinct agents touch disjoint state, so ticking them concurrently
// never violates the single-goroutine-per-agent rule spec §5 requires.
func (e *Engine) Poll(ctx context.Context, dt time.Duration) PollStats {
	_ = dt // the engine's own clock advances the tick cadence; dt is an
	// optional caller hint for fixed-step callers, folded into the fake
	// clock they control rather than consulted here.

	e.mu.RLock()
	snapshot := make([]*agent.Agent, 0, len(e.agents))
	for _, a := range e.agents {
		snapshot = append(snapshot, a)
	}
	e.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	var sem *semaphore.Weighted
	if e.concurrency > 0 {
		sem = semaphore.NewWeighted(int64(e.concurrency))
	}
	for _, a := range snapshot {
		a := a
		g.Go(func() error {
			if sem != nil {
				if err := sem.Acquire(gctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)
			}
			tickCtx, cancel := context.WithTimeout(gctx, defaultTickTimeout)
			defer cancel()
			a.Tick(tickCtx)
			return nil
		})
	}
	_ = g.Wait() // a Tick never returns an error; Wait only surfaces ctx cancellation

	return e.collectStats(snapshot)
}

func (e *Engine) collectStats(snapshot []*agent.Agent) PollStats {
	stats := PollStats{AgentsTotal: len(snapshot)}
	for _, a := range snapshot {
		switch a.State() {
		case agent.Running:
			stats.AgentsRunning++
		case agent.Stopped:
			stats.AgentsStopped++
		}
		if a.Executing() {
			stats.AgentsExecuting++
		}
	}
	return stats
}

// Start launches a background goroutine that calls Poll on a fixed
// cadence until Stop is called (spec §6 "Engine.start() (background
// loop)"). It refuses outright if a prior CreateAgent call hit an unknown
// template (spec §7 CriticalBootstrapError).
func (e *Engine) Start(interval time.Duration) error {
	if e.GetStatus() != 0 {
		return bdierrors.Newf(bdierrors.KindCriticalBootstrap, "engine: refusing to start: %v", e.CriticalFault())
	}
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.running {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	e.running = true

	go func() {
		defer close(e.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.Poll(ctx, interval)
			}
		}
	}()
	return nil
}

// Stop halts the background loop started by Start and blocks until its
// goroutine has exited.
func (e *Engine) Stop() {
	e.runMu.Lock()
	if !e.running {
		e.runMu.Unlock()
		return
	}
	cancel := e.cancel
	done := e.done
	e.running = false
	e.runMu.Unlock()

	cancel()
	<-done
}

// Execute runs Poll repeatedly until no agent has any observable work
// left (spec §6 "Engine.execute() (run until idle)"): no queued events
// and no live intentions across the whole roster. maxPolls bounds a
// runaway loop against a model that never quiesces.
func (e *Engine) Execute(ctx context.Context, maxPolls int) PollStats {
	var stats PollStats
	for i := 0; i < maxPolls; i++ {
		stats = e.Poll(ctx, 0)
		if e.idle() {
			break
		}
	}
	return stats
}

func (e *Engine) idle() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, a := range e.agents {
		if a.HasEvents() || a.Executing() {
			return false
		}
	}
	return true
}
