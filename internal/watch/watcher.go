package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
)

// BuildFunc performs one rebuild.
type BuildFunc func(ctx context.Context) error

// HeadFunc reports the current remote commit of a repository source.
type HeadFunc func(ctx context.Context) (string, error)

// Options configure a Watcher.
type Options struct {
	// Source is a local directory. Leave empty and set Head for repositories.
	Source string
	// Head enables polling mode.
	Head     HeadFunc
	Interval time.Duration
	Debounce time.Duration
	// ArtifactPatterns are ignored so compiler output does not loop the watcher.
	ArtifactPatterns []string
	Build            BuildFunc
}

// Watcher drives rebuilds until its context is canceled.
type Watcher struct {
	opts Options
	// requests holds at most one pending rebuild.
	requests chan struct{}
}

// New creates a watcher.
func New(opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	return &Watcher{opts: opts, requests: make(chan struct{}, 1)}
}

// Run builds once, then rebuilds on change until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if w.opts.Build == nil {
		return errors.New("watch: no build function")
	}
	if w.opts.Head == nil && w.opts.Source == "" {
		return errors.New("watch: neither source directory nor remote head given")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.worker(ctx)
	}()
	w.request()

	var err error
	if w.opts.Head != nil {
		err = w.poll(ctx)
	} else {
		err = w.watchLocal(ctx)
	}
	<-done
	return err
}

func (w *Watcher) request() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

// worker serializes rebuilds.
func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			slog.Info("Rebuilding")
			if err := w.opts.Build(ctx); err != nil {
				slog.Warn("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) watchLocal(ctx context.Context) error {
	abs, err := filepath.Abs(w.opts.Source)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()
	if err := addDirsRecursive(fw, abs); err != nil {
		return err
	}

	deb := NewDebouncer(w.opts.Debounce)
	defer deb.Stop()
	slog.Info("Watching source", logfields.Path(abs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deb.C:
			w.request()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(fw, ev, deb)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(fw *fsnotify.Watcher, ev fsnotify.Event, deb *Debouncer) {
	if shouldIgnoreEvent(ev.Name, w.opts.ArtifactPatterns) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(fw, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	deb.Trigger()
}

func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && shouldIgnoreEvent(path, nil) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// poll checks the remote head on a schedule and requests a rebuild when it moves.
func (w *Watcher) poll(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	last, err := w.opts.Head(ctx)
	if err != nil {
		slog.Warn("Remote head lookup failed", logfields.Error(err))
	}

	check := func() {
		head, err := w.opts.Head(ctx)
		if err != nil {
			slog.Warn("Remote head lookup failed", logfields.Error(err))
			return
		}
		if head == last {
			slog.Debug("Remote unchanged", logfields.Commit(head))
			return
		}
		slog.Info("Remote changed", logfields.Commit(head))
		last = head
		w.request()
	}

	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(check),
		gocron.WithName("poll-source"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to create poll job: %w", err)
	}

	slog.Info("Polling source", slog.Duration("interval", w.opts.Interval))
	s.Start()
	<-ctx.Done()
	return s.Shutdown()
}
