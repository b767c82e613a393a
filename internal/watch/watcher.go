package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// InitialTrigger is the trigger passed to RunFunc for the first run.
const InitialTrigger = "(initial)"

// RunFunc is called each time the watcher triggers a re-encode. The trigger
// is the changed file, or InitialTrigger for the first run.
type RunFunc func(ctx context.Context, trigger string) (*RunResult, error)

// RunResult holds the output of a single encode so the watcher can report it.
type RunResult struct {
	Lines      int
	Bytes      int
	OutputPath string
}

// Options configures the watch behaviour.
type Options struct {
	// Files are the input files to watch.
	Files []string

	// Debounce is the quiet period before triggering a re-encode.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 300 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run starts the file watcher and blocks until the context is cancelled
// or a SIGINT/SIGTERM signal is received.
//
// The parent directory of every file is watched rather than the file itself,
// so that editors which save by renaming a temporary file are followed.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if len(opts.Files) == 0 {
		return fmt.Errorf("no files to watch")
	}

	targets, err := resolveTargets(opts.Files)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range parentDirs(targets) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %q: %w", dir, err)
		}
	}

	// Trap SIGINT / SIGTERM for graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", strings.Join(opts.Files, ", "), opts.Debounce)

	prints := NewFingerprints()
	for path := range targets {
		if _, err := prints.UpdateFile(path); err != nil {
			return err
		}
	}

	doRun(sigCtx, opts, runFn, InitialTrigger)

	debouncer := NewDebouncer(opts.Debounce, func(path string) {
		changed, err := prints.UpdateFile(path)
		if err != nil {
			opts.Logger.Warn("fingerprint failed", slog.String("path", path), slog.String("error", err.Error()))
		} else if !changed {
			opts.Logger.Debug("content unchanged, skipping", slog.String("path", path))
			return
		}

		doRun(sigCtx, opts, runFn, path)
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event) {
				continue
			}

			if _, watched := targets[event.Name]; !watched {
				continue
			}

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// doRun executes a single encode and prints the status line.
func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger string) {
	now := time.Now().Format("15:04:05")

	result, err := runFn(ctx, trigger)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(opts.Out, "[%s] %s → OK (%d lines, %d bytes)", now, trigger, result.Lines, result.Bytes)

	if result.OutputPath != "" {
		fmt.Fprintf(opts.Out, " → %s", result.OutputPath)
	}

	fmt.Fprintln(opts.Out)
}

// resolveTargets returns the absolute, cleaned paths of files. Every file
// must exist when watching starts.
func resolveTargets(files []string) (map[string]struct{}, error) {
	targets := make(map[string]struct{}, len(files))

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", f, err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("watching file %q: %w", f, err)
		}

		if info.IsDir() {
			return nil, fmt.Errorf("watching file %q: is a directory", f)
		}

		targets[abs] = struct{}{}
	}

	return targets, nil
}

// parentDirs returns the distinct parent directories of targets.
func parentDirs(targets map[string]struct{}) []string {
	seen := make(map[string]struct{})

	var dirs []string

	for path := range targets {
		dir := filepath.Dir(path)
		if _, ok := seen[dir]; ok {
			continue
		}

		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	return dirs
}

// isRelevant filters out events that cannot change a file's content.
func isRelevant(event fsnotify.Event) bool {
	if event.Op == 0 {
		return false
	}

	// Only care about write, create, remove, rename.
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	// Ignore editor temporary files.
	if strings.HasSuffix(name, "~") || strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, "#") {
		return false
	}

	return true
}
