package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Runner runs the Runnables of a node, e.g. its bus, input device and
// metrics server, on one context. Unless KeepGoing is set, the first
// Runnable failing cancels the others so the node stops as a whole.
type Runner struct {
	Context   context.Context
	Runners   []Runnable
	KeepGoing bool

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lock     sync.Mutex
	errs     AggregatedError
	failed   chan struct{}
	failOnce sync.Once
	exitCh   chan struct{}
}

// NewRunner creates a runner with a default background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner deriving its context from ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	return &Runner{
		Context: ctx,
		cancel:  cancel,
		failed:  make(chan struct{}),
		exitCh:  make(chan struct{}),
	}
}

// HandleSignals stops the runner on Ctrl-C or SIGTERM. A second signal
// makes Wait return without waiting.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		r.Stop()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.exitCh)
	}()
	return r
}

// Go starts Runnables with the runner's context.
func (r *Runner) Go(runners ...Runnable) *Runner {
	for _, runner := range runners {
		name := strconv.Itoa(len(r.Runners))
		if named, ok := runner.(Named); ok {
			name = named.Name()
		}
		r.Runners = append(r.Runners, runner)
		r.wg.Add(1)
		glog.V(4).Infof("start Runner[%s]", name)
		go r.run(name, runner)
	}
	return r
}

func (r *Runner) run(name string, runner Runnable) {
	defer r.wg.Done()
	err := runner.Run(r.Context)
	glog.V(4).Infof("Runner[%s] stopped: %v", name, err)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	r.lock.Lock()
	r.errs.Add(fmt.Errorf("%s: %w", name, err))
	r.lock.Unlock()
	r.failOnce.Do(func() { close(r.failed) })
	if !r.KeepGoing {
		r.cancel()
	}
}

// Failed is closed when the first Runnable returns an error other than
// context.Canceled.
func (r *Runner) Failed() <-chan struct{} {
	return r.failed
}

// Stop cancels the context of all Runnables.
func (r *Runner) Stop() {
	r.cancel()
}

// Wait waits until all Runnables stop and returns their errors, named by
// Runnable. Stopped Runnables are not errors.
func (r *Runner) Wait() error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-r.exitCh:
		return errors.New("forced exit")
	case <-done:
	}
	r.cancel()
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.errs.Aggregate()
}

// RunWithContextCloser runs fn which blocks on a resource that doesn't
// accept a context. closer is closed when ctx is canceled so fn returns,
// and is always closed when fn exits.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case <-ctx.Done():
		closer.Close()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		closer.Close()
		return err
	}
}
