// Package autosave writes a document some time after it stops changing.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eykd/tanmark-go/internal/doc"
	"github.com/eykd/tanmark-go/internal/logger"
	"github.com/eykd/tanmark-go/internal/markdown"
)

// Writer persists Markdown. *vault.Store implements it.
type Writer interface {
	Save(ctx context.Context, path, markdown string) error
}

// Saver debounces document snapshots and writes the latest one once no new
// snapshot arrived for the configured interval. Observe may be called from
// any goroutine; saving happens on the goroutine running Run.
type Saver struct {
	w        Writer
	path     string
	interval time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	pending *doc.Node
	saves   int

	kick chan struct{}
}

// Option configures a Saver.
type Option func(*Saver)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logger.Logger) Option {
	return func(s *Saver) { s.log = l }
}

// New returns a saver writing to path through w.
func New(w Writer, path string, interval time.Duration, opts ...Option) *Saver {
	s := &Saver{
		w:        w,
		path:     path,
		interval: interval,
		log:      logger.Discard(),
		kick:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe records d as the document to save and restarts the quiet period.
func (s *Saver) Observe(d *doc.Node) {
	s.mu.Lock()
	s.pending = d
	s.mu.Unlock()
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Pending reports whether a snapshot is waiting to be written.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Saves returns the number of successful writes.
func (s *Saver) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Flush writes the pending snapshot now. A failed write keeps the snapshot
// pending unless a newer one arrived in the meantime.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	d := s.pending
	s.pending = nil
	s.mu.Unlock()
	if d == nil {
		return nil
	}

	err := s.w.Save(ctx, s.path, markdown.Serialize(d))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.pending == nil {
			s.pending = d
		}
		return err
	}
	s.saves++
	return nil
}

// Run saves observed snapshots until ctx is done, then flushes whatever is
// still pending with a context that is no longer cancelled.
func (s *Saver) Run(ctx context.Context) error {
	timer := time.NewTimer(s.interval)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.Flush(context.WithoutCancel(ctx)); err != nil {
				return errors.Join(ctx.Err(), err)
			}
			return ctx.Err()
		case <-s.kick:
			timer.Reset(s.interval)
		case <-timer.C:
			if err := s.Flush(ctx); err != nil {
				s.log.Warn("autosave failed, will retry", "path", s.path, "error", err)
				timer.Reset(s.interval)
			}
		}
	}
}
