package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Sweeper periodically reaps expired sessions from a Store.
type Sweeper struct {
	cron  *cron.Cron
	store *Store
}

// NewSweeper creates a sweeper that runs Store.Sweep every interval.
func NewSweeper(store *Store, interval time.Duration) (*Sweeper, error) {
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		removed := store.Sweep(context.Background())
		if removed > 0 {
			log.Info().
				Int("sessions_removed", removed).
				Int("sessions_active", store.ActiveSessions()).
				Msg("session_sweep_completed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("registering sweep schedule: %w", err)
	}
	return &Sweeper{cron: c, store: store}, nil
}

// Start begins the background sweep schedule.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
