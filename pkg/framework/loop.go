package framework

import (
	"context"
	"log"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the tick interval used when Loop.Interval is zero.
const DefaultInterval = 50 * time.Millisecond

// Loop is a single-threaded cooperative tick loop. Every tick runs all
// controllers in priority order, then sleeps until the next tick.
// Runnables added to the loop run in their own goroutines for the
// lifetime of Run and never touch controller state directly.
type Loop struct {
	Interval time.Duration
	// MaxTicks stops the loop after the given number of ticks, 0 means forever.
	MaxTicks uint64

	controllers [PriorityLevels][]Controller
	runners     []Runnable
	tick        uint64
}

type loopIteration struct {
	ctx           context.Context
	time          time.Time
	tick          uint64
	priorityLevel int
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers to the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.controllers[priorityLevel] = append(l.controllers[priorityLevel], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() uint64 {
	return l.tick
}

// Run implements Runnable. The loop stops when ctx is done, after MaxTicks
// or when one of its Runnables fails, whose error is returned.
func (l *Loop) Run(ctx context.Context) error {
	runner := NewRunnerWith(ctx).Go(l.runners...)
	defer runner.Stop()

	interval := l.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			stopRunner(runner)
			return ctx.Err()
		case <-runner.Failed():
			runner.Stop()
			return runner.Wait()
		case now := <-ticker.C:
			l.runIteration(ctx, now)
			if l.MaxTicks > 0 && l.tick >= l.MaxTicks {
				stopRunner(runner)
				return nil
			}
		}
	}
}

func stopRunner(r *Runner) {
	r.Stop()
	if err := r.Wait(); err != nil {
		glog.Errorf("loop runnables: %v", err)
	}
}

// Step runs exactly one tick synchronously without starting runnables.
func (l *Loop) Step(ctx context.Context) {
	l.runIteration(ctx, time.Now())
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail() {
	runner := NewRunner().HandleSignals()
	runner.Go(l)
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}

func (l *Loop) runIteration(ctx context.Context, now time.Time) {
	l.tick++
	iter := &loopIteration{ctx: ctx, time: now, tick: l.tick}
	for i := 0; i < PriorityLevels; i++ {
		iter.priorityLevel = i
		for _, ctl := range l.controllers[i] {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("tick %d: controller error: %v", l.tick, err)
			}
		}
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) Tick() uint64 {
	return t.tick
}

func (t *loopIteration) PriorityLevel() int {
	return t.priorityLevel
}
