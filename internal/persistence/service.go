package persistence

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/akyairhashvil/roadmap/internal/database"
	"github.com/akyairhashvil/roadmap/internal/exchange"
	"github.com/akyairhashvil/roadmap/internal/util"
)

const (
	DefaultKey     = "roadmap"
	DefaultTimeout = 3 * time.Second
)

// Service reads and writes the roadmap document under one key. It remembers
// the last revision it has seen so Poll only reports other writers' changes.
type Service struct {
	backend    Backend
	key        string
	timeout    time.Duration
	format     exchange.Format
	passphrase string
	logger     *slog.Logger

	mu       sync.Mutex
	revision int64
}

type Option func(*Service)

func WithKey(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.key = key
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFormat selects the encoding of stored documents.
func WithFormat(format exchange.Format) Option {
	return func(s *Service) { s.format = format }
}

// WithPassphrase seals stored documents and opens sealed ones.
func WithPassphrase(passphrase string) Option {
	return func(s *Service) { s.passphrase = passphrase }
}

func New(backend Backend, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		key:     DefaultKey,
		timeout: DefaultTimeout,
		format:  exchange.FormatJSON,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the document key.
func (s *Service) Key() string { return s.key }

// LastRevision is the newest revision this service wrote or read.
func (s *Service) LastRevision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Load fetches and decodes the stored document. ok is false when nothing is
// stored or the stored bytes cannot be read, in which case the caller
// should start from defaults.
func (s *Service) Load(ctx context.Context) (any, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := s.backend.GetDocument(ctx, s.key)
	if errors.Is(err, database.ErrNotFound) {
		s.logger.Info("no stored roadmap, starting fresh", "key", s.key)
		return nil, false
	}
	if err != nil {
		util.LogError(s.logger, "load roadmap", err)
		return nil, false
	}
	s.revision = stored.Revision
	raw, err := exchange.Decode(stored.Body, s.format, exchange.WithPassphrase(s.passphrase))
	if err != nil {
		s.logger.Warn("stored roadmap is unreadable, ignoring it", "key", s.key, "revision", stored.Revision, "error", err)
		return nil, false
	}
	return raw, true
}

// Save encodes doc and writes it as a new revision. It reports whether the
// write succeeded; failures are logged.
func (s *Service) Save(ctx context.Context, doc exchange.Document) bool {
	body, err := exchange.Encode(doc, s.format)
	if err != nil {
		util.LogError(s.logger, "encode roadmap", err)
		return false
	}
	if s.passphrase != "" {
		body, err = exchange.Seal(body, s.format, s.passphrase)
		if err != nil {
			util.LogError(s.logger, "seal roadmap", err)
			return false
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	rev, err := s.backend.PutDocument(ctx, s.key, body)
	if err != nil {
		util.LogError(s.logger, "save roadmap", err)
		return false
	}
	s.revision = rev
	s.logger.Debug("roadmap saved", "key", s.key, "revision", rev, "bytes", len(body))
	return true
}

// Poll checks once for a revision other than the last one seen and returns
// its decoded tree. Unreadable revisions are logged and skipped.
func (s *Service) Poll(ctx context.Context) (any, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	rev, err := s.backend.Revision(ctx, s.key)
	if err != nil {
		util.LogError(s.logger, "poll roadmap revision", err)
		return nil, false
	}
	if rev == s.revision {
		return nil, false
	}
	if rev == 0 {
		// The document was deleted; its revisions start again from 1.
		s.revision = 0
		return nil, false
	}
	stored, err := s.backend.GetDocument(ctx, s.key)
	if err != nil {
		util.LogError(s.logger, "fetch changed roadmap", err)
		return nil, false
	}
	s.revision = stored.Revision
	raw, err := exchange.Decode(stored.Body, s.format, exchange.WithPassphrase(s.passphrase))
	if err != nil {
		s.logger.Warn("changed roadmap is unreadable, ignoring it", "key", s.key, "revision", stored.Revision, "error", err)
		return nil, false
	}
	s.logger.Info("external roadmap change detected", "key", s.key, "revision", stored.Revision)
	return raw, true
}

// Watch polls every interval until ctx is done, handing each external
// change to fn.
func (s *Service) Watch(ctx context.Context, interval time.Duration, fn func(raw any)) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if raw, ok := s.Poll(ctx); ok {
				fn(raw)
			}
		}
	}
}
