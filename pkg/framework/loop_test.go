package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingRunnable struct {
	started chan struct{}
	stopped chan struct{}
}

func (r *recordingRunnable) Run(ctx context.Context) error {
	close(r.started)
	<-ctx.Done()
	close(r.stopped)
	return ctx.Err()
}

func TestLoopPriorityOrder(t *testing.T) {
	var order []string
	record := func(name string) Controller {
		return ControlFunc(func(cc ControlContext) error {
			order = append(order, name)
			return nil
		})
	}
	l := NewLoop().
		AddController(PrLvPostProc, record("render")).
		AddController(PrLvSense, record("input")).
		AddController(PrLvAcuate, record("send")).
		AddController(PrLvControl, record("advance"))

	l.Step(context.Background())
	require.Equal(t, []string{"input", "advance", "send", "render"}, order)
	require.Equal(t, uint64(1), l.Ticks())
}

func TestLoopControllerErrorDoesNotStopTick(t *testing.T) {
	var ran bool
	l := NewLoop().
		AddController(PrLvControl, ControlFunc(func(ControlContext) error { return errors.New("boom") })).
		AddController(PrLvAcuate, ControlFunc(func(ControlContext) error { ran = true; return nil }))
	l.Step(context.Background())
	require.True(t, ran)
}

func TestLoopTickNumbers(t *testing.T) {
	var ticks []uint64
	l := NewLoop().AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		ticks = append(ticks, cc.Tick())
		require.Equal(t, PrLvControl, cc.PriorityLevel())
		return nil
	}))
	for i := 0; i < 3; i++ {
		l.Step(context.Background())
	}
	require.Equal(t, []uint64{1, 2, 3}, ticks)
}

func TestLoopMaxTicks(t *testing.T) {
	r := &recordingRunnable{started: make(chan struct{}), stopped: make(chan struct{})}
	var count int
	l := NewLoop()
	l.Interval = time.Millisecond
	l.MaxTicks = 5
	l.AddRunnable(r)
	l.AddController(PrLvControl, ControlFunc(func(ControlContext) error { count++; return nil }))

	require.NoError(t, l.Run(context.Background()))
	require.Equal(t, 5, count)
	select {
	case <-r.stopped:
	case <-time.After(time.Second):
		t.Fatal("runnable not stopped")
	}
}

func TestRunnerAggregatesErrors(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	r := NewRunner().Go(
		RunFunc(func(context.Context) error { return errA }),
		RunFunc(func(context.Context) error { return context.Canceled }),
		NamedRun("b", RunFunc(func(context.Context) error { return errB })),
	)
	err := r.Wait()
	require.Error(t, err)
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
	require.ErrorContains(t, err, "b: b")
	require.ErrorContains(t, err, "0: a")
}

func TestRunnerFailureStopsOthers(t *testing.T) {
	errBind := errors.New("address in use")
	r := &recordingRunnable{started: make(chan struct{}), stopped: make(chan struct{})}
	runner := NewRunner().Go(
		NamedRun("bus", r),
		NamedRun("metrics", RunFunc(func(context.Context) error {
			return errBind
		})),
	)
	<-runner.Failed()
	select {
	case <-r.stopped:
	case <-time.After(time.Second):
		t.Fatal("runnable not stopped")
	}
	err := runner.Wait()
	require.ErrorIs(t, err, errBind)
	require.ErrorContains(t, err, "metrics")
}

func TestRunnerKeepGoing(t *testing.T) {
	r := &recordingRunnable{started: make(chan struct{}), stopped: make(chan struct{})}
	runner := NewRunner()
	runner.KeepGoing = true
	runner.Go(r, RunFunc(func(context.Context) error { return errors.New("boom") }))
	<-runner.Failed()
	<-r.started
	select {
	case <-r.stopped:
		t.Fatal("runnable stopped")
	case <-time.After(20 * time.Millisecond):
	}
	runner.Stop()
	require.Error(t, runner.Wait())
	<-r.stopped
}

func TestLoopStopsOnRunnableFailure(t *testing.T) {
	errBus := errors.New("no such device")
	l := NewLoop()
	l.Interval = time.Hour
	l.AddRunnable(NamedRun("bus", RunFunc(func(context.Context) error { return errBus })))
	err := l.Run(context.Background())
	require.ErrorIs(t, err, errBus)
	require.Equal(t, uint64(0), l.Ticks())
}
