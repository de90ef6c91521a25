package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"flashgo/deck"
)

// autosaver saves the deck on a fixed cadence while a review runs. The
// review loop and the tick share mu, so the deck still sees one caller at
// a time.
type autosaver struct {
	mu     *sync.Mutex
	deck   *deck.Deck
	logger *slog.Logger
	cron   *cron.Cron
	saves  int
}

func newAutosaver(mu *sync.Mutex, d *deck.Deck, logger *slog.Logger) *autosaver {
	return &autosaver{mu: mu, deck: d, logger: logger}
}

// Start schedules a save every interval. A zero interval disables it.
func (s *autosaver) Start(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		return nil
	}
	s.cron = cron.New()
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", every), func() {
		// Skip the tick rather than stall the review loop.
		if !s.mu.TryLock() {
			s.logger.Debug("autosave: deck busy, skipping tick")
			return
		}
		defer s.mu.Unlock()
		s.save(ctx)
	})
	if err != nil {
		return fmt.Errorf("autosave: invalid interval %s: %w", every, err)
	}
	s.cron.Start()
	s.logger.Info("autosave: started", "every", every)
	return nil
}

// save must be called with mu held.
func (s *autosaver) save(ctx context.Context) {
	if s.deck.IsShutdown() {
		return
	}
	if err := s.deck.Save(ctx); err != nil {
		s.logger.Error("autosave: save failed", "error", err)
		return
	}
	s.saves++
	s.logger.Debug("autosave: saved", "facts", s.deck.Len())
}

// Stop waits for an in-flight tick to finish.
func (s *autosaver) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("autosave: stopped")
}
