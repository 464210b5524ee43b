// Package watcher implements a portable, polling directory watcher.
//
// A Watcher periodically snapshots a directory tree, diffs each snapshot
// against the previous one and hands the classified changes to the
// registered callbacks as one Batch per poll tick.
//
//	opts := watcher.NewOptions("/srv/inbox").
//		WithFilter("*.csv;*.json").
//		WithRefreshRate(500).
//		WithOnChanges(func(b watcher.Batch) { ... }).
//		Build()
//	w := watcher.NewWatcher(opts)
//	if _, err := w.Start(); err != nil { ... }
//	defer w.Close()
//
// Callbacks run on the polling goroutine unless WithAsyncDispatch is used.
// They must not call Stop or Close on their own Watcher: Stop waits for the
// polling goroutine, which is busy running the callback.
//
// A Watcher that becomes unreachable while running is stopped by a
// finalizer. An OnChanges closure that captures the *Watcher keeps it
// reachable, so such a watcher must be stopped explicitly.
package watcher

import (
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"pollwatch/internal/util/logger/sl"
)

// Watcher is the handle returned to callers. The polling goroutine only holds
// the engine, so a Watcher that is dropped without Stop becomes unreachable
// and its finalizer stops the loop.
type Watcher struct {
	*engine
}

type engine struct {
	opts    Options
	root    string
	logger  *slog.Logger
	metrics *WatcherMetrics
	errors  chan error

	// mu serializes Start and Stop.
	mu       sync.Mutex
	state    atomic.Int32
	stopChan chan struct{}
	wg       sync.WaitGroup
	scanner  *Scanner
	seq      uint64

	baseMu   sync.Mutex
	baseline *Snapshot
}

// NewWatcher creates a stopped watcher. It does no I/O besides resolving the
// root to an absolute path; configuration problems surface from Start.
func NewWatcher(opts Options) *Watcher {
	root := opts.root
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	if opts.logger == nil {
		opts.logger = discardLogger()
	}

	e := &engine{
		opts:    opts,
		root:    root,
		logger:  opts.logger.With(slog.String("root", root)),
		metrics: NewWatcherMetrics(),
		errors:  make(chan error, max(opts.errorBuffer, 0)),
	}

	w := &Watcher{engine: e}
	runtime.SetFinalizer(w, func(w *Watcher) {
		w.engine.release()
	})
	return w
}

// Start captures the baseline snapshot and starts polling. It returns false
// without error if the watcher is already running.
func (e *engine) Start() (bool, error) {
	const op = "watcher.Start"
	log := e.logger.With(slog.String("op", op))

	e.mu.Lock()
	defer e.mu.Unlock()

	if s := e.State(); s == Running || s == Starting {
		return false, nil
	}

	if err := e.opts.validateConfig(); err != nil {
		return false, err
	}
	root, err := resolveRoot(e.opts.root)
	if err != nil {
		return false, err
	}

	e.setState(Starting)

	e.scanner = NewScanner(root, e.opts.filter, e.opts.depth, e.opts.notifyFilters)
	baseline := e.scan()

	e.baseMu.Lock()
	e.baseline = baseline
	e.baseMu.Unlock()

	var disp Dispatcher = newSyncDispatcher(e.opts.onChanges, e.opts.onOp)
	if e.opts.queueSize > 0 {
		disp = newQueueDispatcher(disp, e.opts.queueSize)
	}

	e.stopChan = make(chan struct{})
	e.wg.Add(1)
	e.setState(Running)
	go e.run(e.stopChan, disp)

	log.Info("watcher started",
		slog.Int("entries", baseline.Len()),
		slog.Duration("interval", e.opts.interval),
		slog.String("notify_filters", e.opts.notifyFilters.String()),
	)
	return true, nil
}

// Stop asks the polling goroutine to exit after its current tick and waits
// for it, including delivery of queued batches. It returns false without
// error if the watcher is not running.
func (e *engine) Stop() (bool, error) {
	const op = "watcher.Stop"

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.State() != Running {
		return false, nil
	}

	e.setState(Stopping)
	close(e.stopChan)
	e.wg.Wait()
	e.setState(Stopped)

	e.logger.Info("watcher stopped", slog.String("op", op))
	return true, nil
}

// Close stops the watcher if it is running.
func (e *engine) Close() error {
	_, err := e.Stop()
	return err
}

// release signals a running loop to exit without waiting for it.
func (e *engine) release() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.State() != Running {
		return
	}
	e.setState(Stopping)
	close(e.stopChan)
}

func (e *engine) run(stop <-chan struct{}, disp Dispatcher) {
	defer e.wg.Done()
	defer disp.Close()

	timer := time.NewTimer(e.opts.interval)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
		}

		// The timer and stop can be ready together; stop wins.
		select {
		case <-stop:
			return
		default:
		}

		e.tick(disp)
		timer.Reset(e.opts.interval)
	}
}

func (e *engine) tick(disp Dispatcher) {
	e.metrics.RecordTick()

	current := e.scan()

	e.baseMu.Lock()
	prev := e.baseline
	e.baseMu.Unlock()

	events := Diff(prev, current, e.opts.notifyFilters)
	if len(events) > 0 {
		e.seq++
		batch := Batch{
			ID:     uuid.New(),
			Seq:    e.seq,
			At:     current.TakenAt(),
			Root:   e.root,
			Events: events,
		}
		e.metrics.RecordBatch(batch)
		e.logger.Debug("changes detected",
			slog.String("batch", batch.ID.String()),
			slog.Uint64("seq", batch.Seq),
			slog.Int("events", len(events)),
		)
		disp.Dispatch(batch)
	}

	e.baseMu.Lock()
	e.baseline = current
	e.baseMu.Unlock()
}

func (e *engine) scan() *Snapshot {
	started := time.Now()
	snap, errs := e.scanner.Scan()
	for _, err := range errs {
		e.handleError(err)
	}
	e.metrics.RecordScan(snap.Len(), time.Since(started))
	return snap
}

func (e *engine) handleError(err error) {
	e.metrics.RecordScanError()
	e.logger.Warn("skipping inaccessible path", sl.Err(err))

	select {
	case e.errors <- err:
	default:
		e.metrics.RecordDroppedError()
	}
}

func (e *engine) setState(s State) {
	e.state.Store(int32(s))
}

// State reports the lifecycle state.
func (e *engine) State() State {
	return State(e.state.Load())
}

// WatchedDir returns the absolute root directory.
func (e *engine) WatchedDir() string {
	return e.root
}

// Filter returns the include patterns. An empty result means every name.
func (e *engine) Filter() []string {
	return slices.Clone(e.opts.filter.Include)
}

func (e *engine) Options() Options {
	return e.opts
}

// Errors reports paths skipped during scans. The channel is buffered and
// never closed; errors are dropped while it is full.
func (e *engine) Errors() <-chan error {
	return e.errors
}

func (e *engine) Metrics() *WatcherMetrics {
	return e.metrics
}
