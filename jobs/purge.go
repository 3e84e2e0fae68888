// Package jobs runs background maintenance on a schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

const purgeTimeout = 30 * time.Second

// Purger deletes expired sessions and reports how many went away.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgeOnce runs a single purge and logs the outcome.
func PurgeOnce(ctx context.Context, p Purger) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()
	n, err := p.PurgeExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("session purge failed")
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Msg("expired sessions purged")
	}
	return n, nil
}

// StartSessionPurger purges expired sessions now and then every interval
// until the returned scheduler is stopped.
func StartSessionPurger(p Purger, interval time.Duration, loc *time.Location) (*gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid purge interval %s", interval)
	}
	scheduler := gocron.NewScheduler(loc)
	scheduler.SingletonModeAll()
	if _, err := scheduler.Every(interval).Do(func() {
		_, _ = PurgeOnce(context.Background(), p)
	}); err != nil {
		return nil, fmt.Errorf("schedule session purge: %w", err)
	}
	scheduler.StartAsync()
	log.Info().Dur("interval", interval).Msg("session purge job started")
	return scheduler, nil
}
