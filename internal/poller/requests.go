package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/slipstream/helm/internal/activity"
)

// RequestSource fetches the outstanding portal requests.
type RequestSource interface {
	ListRequests(ctx context.Context) ([]activity.Request, error)
}

// RequestRefresher keeps the request list current on a fixed schedule.
// Replacing the request list recomputes the entire match table, so the
// refresher also rebroadcasts the matched downloads afterwards.
type RequestRefresher struct {
	source    RequestSource
	store     *activity.Store
	hub       Broadcaster
	logger    zerolog.Logger
	interval  time.Duration
	scheduler gocron.Scheduler
}

// NewRequestRefresher creates a request refresher.
func NewRequestRefresher(source RequestSource, store *activity.Store, hub Broadcaster, interval time.Duration, logger zerolog.Logger) (*RequestRefresher, error) {
	if interval <= 0 {
		interval = time.Minute
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &RequestRefresher{
		source:    source,
		store:     store,
		hub:       hub,
		logger:    logger.With().Str("component", "request-refresher").Logger(),
		interval:  interval,
		scheduler: scheduler,
	}, nil
}

// Start schedules the periodic refresh and runs one immediately.
func (r *RequestRefresher) Start() error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.Refresh),
		gocron.WithName("portal-requests-refresh"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule request refresh: %w", err)
	}

	r.scheduler.Start()
	r.logger.Info().Dur("interval", r.interval).Msg("request refresher started")
	return nil
}

// Stop shuts the scheduler down.
func (r *RequestRefresher) Stop() error {
	return r.scheduler.Shutdown()
}

// Refresh fetches the request list and replaces it in the store. Safe to
// call outside the schedule, e.g. after the admin approves a request.
func (r *RequestRefresher) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requests, err := r.source.ListRequests(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to refresh portal requests")
		return
	}

	r.store.SetRequests(requests)

	if r.hub != nil {
		if err := r.hub.Broadcast("activity:downloads", r.store.GetMatchedDownloads()); err != nil {
			r.logger.Warn().Err(err).Msg("failed to broadcast matched downloads")
		}
	}
}
