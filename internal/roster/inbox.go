package roster

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/reachlyapp/reachly-server/internal/watcher"
)

// Inbox subdirectories that receive handled files.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// InboxOptions configures an Inbox.
type InboxOptions struct {
	Path        string
	SettleDelay time.Duration
}

// Inbox imports roster files dropped into a directory. Each file is imported
// once, then moved to processed/ or, when nothing in it could be imported,
// to failed/.
type Inbox struct {
	path     string
	importer Importer
	logger   *slog.Logger
	watcher  *watcher.Watcher

	// mu serializes imports so a file is never handled twice at once.
	mu sync.Mutex
}

// NewInbox creates the inbox directories and a watcher over them.
func NewInbox(opts InboxOptions, importer Importer, logger *slog.Logger) (*Inbox, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("inbox path cannot be empty")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for _, dir := range []string{opts.Path, filepath.Join(opts.Path, ProcessedDir), filepath.Join(opts.Path, FailedDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create inbox directory: %w", err)
		}
	}

	w, err := watcher.New(logger, watcher.Options{
		IgnorePatterns: []string{ProcessedDir, FailedDir, ".*", "*.tmp", "*.swp"},
		IgnoreHidden:   true,
		SettleDelay:    opts.SettleDelay,
		Extensions:     Extensions,
	})
	if err != nil {
		return nil, fmt.Errorf("create inbox watcher: %w", err)
	}
	if err := w.Watch(opts.Path); err != nil {
		_ = w.Stop()
		return nil, fmt.Errorf("watch inbox: %w", err)
	}

	return &Inbox{
		path:     opts.Path,
		importer: importer,
		logger:   logger,
		watcher:  w,
	}, nil
}

// Path returns the watched directory.
func (in *Inbox) Path() string { return in.path }

// Run imports files already waiting in the inbox, then handles new ones until
// ctx is cancelled.
func (in *Inbox) Run(ctx context.Context) error {
	if err := in.ProcessPending(ctx); err != nil {
		in.logger.Warn("failed to process pending roster files", "error", err)
	}

	go func() {
		_ = in.watcher.Start(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-in.watcher.Events():
			if !ok {
				return nil
			}
			if ev.Type == watcher.EventRemoved {
				continue
			}
			in.handleFile(ctx, ev.Path)
		case err, ok := <-in.watcher.Errors():
			if !ok {
				return nil
			}
			in.logger.Warn("inbox watcher error", "error", err)
		}
	}
}

// Stop releases the watcher.
func (in *Inbox) Stop() error {
	return in.watcher.Stop()
}

// ProcessPending imports every roster file currently in the inbox root.
func (in *Inbox) ProcessPending(ctx context.Context) error {
	entries, err := os.ReadDir(in.path)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !slices.Contains(Extensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		in.handleFile(ctx, filepath.Join(in.path, e.Name()))
	}
	return nil
}

// HandleFile imports one file and moves it out of the inbox root. The
// result is nil when the file could not be decoded.
func (in *Inbox) HandleFile(ctx context.Context, path string) (*Result, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if _, err := os.Stat(path); err != nil {
		// Already handled by an earlier event.
		return nil, nil
	}

	logger := in.logger.With("file", filepath.Base(path))

	entries, err := DecodeFile(path)
	if err != nil {
		logger.Error("failed to decode roster", "error", err)
		in.move(path, FailedDir)
		return nil, err
	}

	result, err := in.importer.Import(ctx, filepath.Base(path), entries)
	if err != nil {
		logger.Error("roster import failed", "error", err)
		in.move(path, FailedDir)
		return nil, err
	}

	dest := ProcessedDir
	if result.Imported() == 0 && result.Failed > 0 {
		dest = FailedDir
	}
	in.move(path, dest)

	logger.Info("roster imported",
		"created", result.Created,
		"updated", result.Updated,
		"failed", result.Failed,
		"moved_to", dest,
	)
	return result, nil
}

func (in *Inbox) handleFile(ctx context.Context, path string) {
	_, _ = in.HandleFile(ctx, path)
}

// move renames path into dir, prefixing a timestamp so repeated uploads of
// the same file name do not collide.
func (in *Inbox) move(path, dir string) {
	name := time.Now().UTC().Format("20060102T150405.000") + "-" + filepath.Base(path)
	dest := filepath.Join(in.path, dir, name)
	if err := os.Rename(path, dest); err != nil {
		in.logger.Error("failed to move roster file", "file", path, "dest", dest, "error", err)
	}
}
