// Package templates loads the DOCX template and caches its bytes.
//
// The cached slice is shared by every concurrent request and never written
// to; assembly parses its own private document from it.
package templates

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/logfields"
	"git.home.luguber.info/inful/syllabusbuilder/internal/retry"
)

// MissingMessage is the error message returned when no template exists.
const MissingMessage = "template.docx not found"

// Options configures a Store. Exactly one of Path and URL is used; URL wins.
type Options struct {
	Path     string
	URL      string
	Client   *http.Client
	MaxBytes int64
	Logger   *slog.Logger
	// Debounce delays invalidation after a file event. Zero means 250ms.
	Debounce time.Duration
	// Retry governs transient URL fetch failures. Zero means two
	// exponential retries starting at 250ms.
	Retry retry.Policy
}

// Store caches template bytes.
type Store struct {
	opts   Options
	logger *slog.Logger

	mu       sync.RWMutex
	data     []byte
	loadedAt time.Time

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	stop    chan struct{}
	done    chan struct{}
}

// NewStore creates a store; nothing is read until the first Get.
func NewStore(opts Options) *Store {
	if opts.Client == nil {
		opts.Client = NewHTTPClient()
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 250 * time.Millisecond
	}
	if opts.Retry == (retry.Policy{}) {
		opts.Retry = retry.NewPolicy(retry.BackoffExponential, 250*time.Millisecond, 2*time.Second, 2)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{opts: opts, logger: logger}
}

// Source names where the template comes from.
func (s *Store) Source() string {
	if s.opts.URL != "" {
		return s.opts.URL
	}
	return s.opts.Path
}

// Get returns the template bytes, loading them on first use or after an
// invalidation. Callers must not modify the returned slice.
func (s *Store) Get(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	if data != nil {
		return data, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data != nil {
		return s.data, nil
	}

	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.data = data
	s.loadedAt = time.Now()
	s.logger.Debug("Template loaded", logfields.Template(s.Source()), logfields.Bytes(len(data)))
	return data, nil
}

// LoadedAt reports when the cached bytes were read; zero when nothing is cached.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Invalidate drops the cached bytes.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.data = nil
	s.loadedAt = time.Time{}
	s.mu.Unlock()
}

func (s *Store) load(ctx context.Context) ([]byte, error) {
	if s.opts.URL != "" {
		return retry.Do(ctx, s.opts.Retry, func(ctx context.Context) ([]byte, error) {
			return fetch(ctx, s.opts.URL, s.opts.Client, s.opts.MaxBytes)
		})
	}

	info, err := os.Stat(s.opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(s.opts.Path)
		}
		return nil, errors.FileSystemError("failed to stat template").
			WithCause(err).
			WithContext("path", s.opts.Path).
			Build()
	}
	if info.IsDir() {
		return nil, notFound(s.opts.Path)
	}
	if info.Size() > s.opts.MaxBytes {
		return nil, errors.TemplateError("template too large").
			WithContext("path", s.opts.Path).
			WithContext("limit", s.opts.MaxBytes).
			Build()
	}

	data, err := os.ReadFile(s.opts.Path)
	if err != nil {
		return nil, errors.FileSystemError("failed to read template").
			WithCause(err).
			WithContext("path", s.opts.Path).
			Build()
	}
	return data, nil
}

func notFound(source string) error {
	return errors.NotFoundError(MissingMessage).
		WithContext("source", source).
		UserAction().
		Build()
}
