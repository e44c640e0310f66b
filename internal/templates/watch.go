package templates

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/logfields"
)

// Watch invalidates the cache whenever the template file changes. The parent
// directory is watched so editors that replace the file are still seen.
// Watching a URL source is a no-op.
func (s *Store) Watch(ctx context.Context) error {
	if s.opts.URL != "" {
		return nil
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher != nil {
		return nil
	}

	path, err := filepath.Abs(s.opts.Path)
	if err != nil {
		return errors.FileSystemError("failed to resolve template path").WithCause(err).Build()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.FileSystemError("failed to create file watcher").WithCause(err).Build()
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return errors.FileSystemError("failed to watch template directory").
			WithCause(err).
			WithContext("path", filepath.Dir(path)).
			Build()
	}

	s.watcher = w
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.watchLoop(ctx, w, filepath.Base(path), s.stop, s.done)

	s.logger.Info("Watching template", logfields.Template(path))
	return nil
}

// Close stops the watcher, if any.
func (s *Store) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher == nil {
		return nil
	}
	close(s.stop)
	err := s.watcher.Close()
	<-s.done
	s.watcher = nil
	return err
}

func (s *Store) watchLoop(ctx context.Context, w *fsnotify.Watcher, name string, stop, done chan struct{}) {
	defer close(done)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name || event.Op&relevant == 0 {
				continue
			}
			s.logger.Debug("Template change detected", logfields.Template(event.Name), "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(s.opts.Debounce, func() {
				s.Invalidate()
				s.logger.Info("Template cache invalidated", logfields.Template(event.Name))
			})
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Error("Template watcher error", logfields.Error(err))
		}
	}
}
