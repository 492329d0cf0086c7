// Package scheduler keeps the persisted isUpcoming flags on events in
// step with the calendar. The flag is derived on every save, but a
// document that nobody touches while its dates go by would otherwise
// stay stale forever.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/btnpop/btnpop-api/config"
)

type Scheduler struct {
	cfg      *config.Config
	interval time.Duration
}

func New(cfg *config.Config, interval time.Duration) *Scheduler {
	return &Scheduler{cfg: cfg, interval: interval}
}

// Start runs one immediate pass and then ticks until the context is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	log := s.cfg.Logger
	log.Info().Dur("interval", s.interval).Msg("event status scheduler started")

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event status scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	flipped, err := s.UpdateStale(ctx, time.Now())
	if err != nil {
		s.cfg.Logger.Error().Err(err).Msg("update stale event flags")
		return
	}
	if flipped > 0 {
		s.cfg.Logger.Info().Int64("events", flipped).Msg("event upcoming flags corrected")
	}
}

// UpdateStale flips isUpcoming flags that no longer match the dates,
// in both directions, and reports how many documents changed. The
// queries encode the same day-granular predicate as models.Classify:
// an event is past once its effective end date falls before the start
// of the current day.
func (s *Scheduler) UpdateStale(ctx context.Context, now time.Time) (int64, error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	col := s.cfg.Collection("events")

	ended := bson.M{
		"is_upcoming": true,
		"$or": bson.A{
			bson.M{"end_date": bson.M{"$lt": todayStart}},
			bson.M{"end_date": nil, "event_date": bson.M{"$lt": todayStart}},
		},
	}
	res, err := col.UpdateMany(ctx, ended, bson.M{"$set": bson.M{"is_upcoming": false, "updated_at": now}})
	if err != nil {
		return 0, fmt.Errorf("mark ended events: %w", err)
	}
	flipped := res.ModifiedCount

	// The reverse direction covers events whose dates were pushed out
	// after the flag had already been cleared.
	notEnded := bson.M{
		"is_upcoming": false,
		"$or": bson.A{
			bson.M{"end_date": bson.M{"$gte": todayStart}},
			bson.M{"end_date": nil, "event_date": bson.M{"$gte": todayStart}},
		},
	}
	res, err = col.UpdateMany(ctx, notEnded, bson.M{"$set": bson.M{"is_upcoming": true, "updated_at": now}})
	if err != nil {
		return flipped, fmt.Errorf("mark active events: %w", err)
	}

	return flipped + res.ModifiedCount, nil
}
