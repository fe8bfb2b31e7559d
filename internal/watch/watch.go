// Package watch re-runs a callback when a file changes on disk. Bursts of
// events are collapsed with a debounce timer, which is the throttling the
// outline parser expects from its host.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options configures Run.
type Options struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// Run watches path until ctx is done. onChange runs on the watching
// goroutine after every debounced burst of writes, creates, renames or
// removals of path; its errors are logged and do not stop the watch.
//
// The parent directory is watched so editors that replace the file by
// rename keep being followed.
func Run(ctx context.Context, path string, opt Options, onChange func(context.Context) error) error {
	log := opt.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !relevant(ev.Op) {
				continue
			}
			log.Debug("file event", "path", abs, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(opt.Debounce)
			} else {
				timer.Reset(opt.Debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "path", abs, "err", err)
		case <-fire:
			fire = nil
			if err := onChange(ctx); err != nil {
				log.Warn("change handler failed", "path", abs, "err", err)
			}
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename) || op.Has(fsnotify.Remove)
}
