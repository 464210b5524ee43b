package watcher

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// Options is the frozen configuration of a Watcher. Build it with NewOptions.
type Options struct {
	root          string
	filter        PatternFilter
	interval      time.Duration
	notifyFilters NotifyFilters
	depth         int
	onChanges     ChangeFunc
	onOp          map[Op]EventFunc
	logger        *slog.Logger
	queueSize     int
	errorBuffer   int
	err           error
}

// OptionsBuilder assembles Options. Setters never fail; problems are
// recorded and reported by Build().Validate or Watcher.Start.
type OptionsBuilder struct {
	opts Options
	errs []error
}

// NewOptions starts a configuration for the directory at root.
func NewOptions(root string) *OptionsBuilder {
	return &OptionsBuilder{
		opts: Options{
			root:          root,
			interval:      DefaultRefreshInterval,
			notifyFilters: DefaultNotifyFilters,
			depth:         Unbounded,
			errorBuffer:   DefaultErrorBufferSize,
		},
	}
}

// WithFilter sets the include patterns, e.g. "*.txt;*.md".
func (b *OptionsBuilder) WithFilter(patterns string) *OptionsBuilder {
	include, err := ParsePatterns(patterns)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.opts.filter = NewPatternFilter(include, b.opts.filter.Ignore)
	return b
}

// WithIgnore sets patterns for names that are never reported. An ignored
// directory is not traversed.
func (b *OptionsBuilder) WithIgnore(patterns string) *OptionsBuilder {
	ignore, err := ParsePatterns(patterns)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.opts.filter.Ignore = ignore
	return b
}

// WithRefreshRate sets the poll interval in milliseconds.
func (b *OptionsBuilder) WithRefreshRate(milliseconds int) *OptionsBuilder {
	return b.WithRefreshInterval(time.Duration(milliseconds) * time.Millisecond)
}

func (b *OptionsBuilder) WithRefreshInterval(d time.Duration) *OptionsBuilder {
	b.opts.interval = d
	return b
}

func (b *OptionsBuilder) WithNotifyFilters(mask NotifyFilters) *OptionsBuilder {
	b.opts.notifyFilters = mask
	return b
}

// WithDirectoryDepth limits recursion. 0 watches only the root's own
// entries; Unbounded removes the limit.
func (b *OptionsBuilder) WithDirectoryDepth(levels int) *OptionsBuilder {
	b.opts.depth = levels
	return b
}

// WithOnChanges registers the callback receiving every non-empty batch.
func (b *OptionsBuilder) WithOnChanges(fn ChangeFunc) *OptionsBuilder {
	b.opts.onChanges = fn
	return b
}

func (b *OptionsBuilder) WithOnCreated(fn EventFunc) *OptionsBuilder {
	return b.withOn(Created, fn)
}

func (b *OptionsBuilder) WithOnModified(fn EventFunc) *OptionsBuilder {
	return b.withOn(Modified, fn)
}

func (b *OptionsBuilder) WithOnDeleted(fn EventFunc) *OptionsBuilder {
	return b.withOn(Deleted, fn)
}

func (b *OptionsBuilder) WithOnRenamed(fn EventFunc) *OptionsBuilder {
	return b.withOn(Renamed, fn)
}

func (b *OptionsBuilder) withOn(op Op, fn EventFunc) *OptionsBuilder {
	if b.opts.onOp == nil {
		b.opts.onOp = make(map[Op]EventFunc)
	}
	if fn == nil {
		delete(b.opts.onOp, op)
		return b
	}
	b.opts.onOp[op] = fn
	return b
}

func (b *OptionsBuilder) WithLogger(logger *slog.Logger) *OptionsBuilder {
	b.opts.logger = logger
	return b
}

// WithAsyncDispatch delivers batches through a queue of the given size to a
// separate goroutine, so callbacks no longer run on the polling goroutine.
// Zero restores synchronous delivery.
func (b *OptionsBuilder) WithAsyncDispatch(queueSize int) *OptionsBuilder {
	b.opts.queueSize = queueSize
	return b
}

// WithErrorBuffer sets the capacity of the Errors channel.
func (b *OptionsBuilder) WithErrorBuffer(size int) *OptionsBuilder {
	b.opts.errorBuffer = size
	return b
}

// Build freezes the configuration. The builder may keep being used; later
// changes do not affect values already built.
func (b *OptionsBuilder) Build() Options {
	o := b.opts
	o.filter = PatternFilter{
		Include: slices.Clone(o.filter.Include),
		Ignore:  slices.Clone(o.filter.Ignore),
	}
	if o.onOp != nil {
		onOp := make(map[Op]EventFunc, len(o.onOp))
		for k, v := range o.onOp {
			onOp[k] = v
		}
		o.onOp = onOp
	}
	if o.logger == nil {
		o.logger = discardLogger()
	}
	o.err = errors.Join(b.errs...)
	return o
}

// Root returns the configured root path as given.
func (o Options) Root() string { return o.root }

// Patterns returns a copy of the include patterns; empty means everything.
func (o Options) Patterns() []string { return slices.Clone(o.filter.Include) }

func (o Options) IgnorePatterns() []string { return slices.Clone(o.filter.Ignore) }

func (o Options) RefreshInterval() time.Duration { return o.interval }

func (o Options) NotifyFilters() NotifyFilters { return o.notifyFilters }

func (o Options) DirectoryDepth() int { return o.depth }

// Validate checks the configuration and that the root currently resolves to
// a directory. It returns an error wrapping ErrInvalidRoot or
// ErrInvalidConfiguration.
func (o Options) Validate() error {
	if err := o.validateConfig(); err != nil {
		return err
	}
	_, err := resolveRoot(o.root)
	return err
}

func (o Options) validateConfig() error {
	if o.err != nil {
		return o.err
	}
	if o.interval <= 0 {
		return fmt.Errorf("%w: refresh interval must be positive, got %s", ErrInvalidConfiguration, o.interval)
	}
	if o.depth < 0 && o.depth != Unbounded {
		return fmt.Errorf("%w: directory depth must be non-negative, got %d", ErrInvalidConfiguration, o.depth)
	}
	if o.onChanges == nil && len(o.onOp) == 0 {
		return fmt.Errorf("%w: no change callback registered", ErrInvalidConfiguration)
	}
	if o.queueSize < 0 {
		return fmt.Errorf("%w: dispatch queue size must be non-negative, got %d", ErrInvalidConfiguration, o.queueSize)
	}
	if o.errorBuffer < 0 {
		return fmt.Errorf("%w: error buffer size must be non-negative, got %d", ErrInvalidConfiguration, o.errorBuffer)
	}
	return nil
}

// resolveRoot returns the absolute, cleaned root if it is an existing directory.
func resolveRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: path is empty", ErrInvalidRoot)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, abs)
	}
	return abs, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Scanner returns a Scanner configured like a Watcher built from o would be.
// Callbacks are not required.
func (o Options) Scanner() (*Scanner, error) {
	if o.err != nil {
		return nil, o.err
	}
	root, err := resolveRoot(o.root)
	if err != nil {
		return nil, err
	}
	return NewScanner(root, o.filter, o.depth, o.notifyFilters), nil
}
