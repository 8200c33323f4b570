package session

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/arloliu/bd1/format"
)

// Registry shares open sessions by canonical file path.
//
// There is no reference counting: closing a session through the registry
// closes it for every holder, and their later queries fail with
// errs.ErrSessionClosed.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     []Option
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. opts are passed to every Open.
func NewRegistry(opts ...Option) *Registry {
	logger := slog.New(slog.DiscardHandler)
	if cfg, err := newConfig(opts...); err == nil {
		logger = cfg.logger
	}

	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
		logger:   logger,
	}
}

// CanonicalPath returns the absolute path with symbolic links resolved.
// Links are left alone when the file does not exist.
func CanonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}

	return abs
}

// Open returns the cached session for path, or opens and caches a new one.
// A cached session that was closed directly is replaced.
//
// The extension check applies to path as given, as in Open. The canonical
// path is only the cache key.
func (r *Registry) Open(path string) (*Session, error) {
	if format.IntervalFromPath(path) != format.IntervalMonthly {
		return nil, unsupportedExtension(path)
	}
	key := CanonicalPath(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[key]; ok {
		if !s.Closed() {
			r.logger.Debug("session cache hit", slog.String("path", key))
			return s, nil
		}
		delete(r.sessions, key)
	}

	s, err := Open(path, r.opts...)
	if err != nil {
		return nil, err
	}
	r.sessions[key] = s
	r.logger.Debug("session cached", slog.String("path", key), slog.Int("sessions", len(r.sessions)))

	return s, nil
}

// Close removes s from the registry and closes it.
func (r *Registry) Close(s *Session) error {
	if s == nil {
		return nil
	}

	r.mu.Lock()
	for key, cached := range r.sessions {
		if cached == s {
			delete(r.sessions, key)
			r.logger.Debug("session evicted", slog.String("path", key))
		}
	}
	r.mu.Unlock()

	return s.Close()
}

// CloseAll closes every cached session and empties the registry.
// Errors from individual sessions are joined.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	var errList []error
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	r.logger.Debug("registry cleared", slog.Int("sessions", len(sessions)))

	return errors.Join(errList...)
}

// Len returns the number of cached sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}
