// Package poller keeps the console's derived state fresh: an adaptive queue
// poller and a scheduled request-list refresher, both feeding the activity
// store and broadcasting the re-derived view to connected browsers.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/helm/internal/activity"
)

// Broadcaster defines the interface for pushing messages to browsers.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// QueueSource fetches the live download queue.
type QueueSource interface {
	GetQueue(ctx context.Context) ([]activity.QueueItem, error)
}

// QueuePoller periodically polls the upstream queue, replaces the activity
// store's snapshot and broadcasts the enriched downloads. Polling is
// adaptive: fast while downloads are active, slow when the queue is idle.
// When the upstream pushes a snapshot over WebSocket the poll is skipped and
// the push is applied directly via Apply.
type QueuePoller struct {
	source         QueueSource
	store          *activity.Store
	hub            Broadcaster
	logger         zerolog.Logger
	activeInterval time.Duration
	idleInterval   time.Duration

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
	triggerCh chan struct{}
}

// NewQueuePoller creates a queue poller.
func NewQueuePoller(source QueueSource, store *activity.Store, hub Broadcaster, active, idle time.Duration, logger zerolog.Logger) *QueuePoller {
	if active <= 0 {
		active = 2 * time.Second
	}
	if idle <= 0 {
		idle = 30 * time.Second
	}
	return &QueuePoller{
		source:         source,
		store:          store,
		hub:            hub,
		logger:         logger.With().Str("component", "queue-poller").Logger(),
		activeInterval: active,
		idleInterval:   idle,
	}
}

// Start begins polling.
func (p *QueuePoller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.stoppedCh = make(chan struct{})
	p.triggerCh = make(chan struct{}, 1)
	p.mu.Unlock()

	go p.run()
	p.logger.Info().
		Dur("activeInterval", p.activeInterval).
		Dur("idleInterval", p.idleInterval).
		Msg("queue poller started with adaptive polling")
}

// Stop stops polling and waits for the loop to exit.
func (p *QueuePoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	<-p.stoppedCh
	p.logger.Info().Msg("queue poller stopped")
}

// Trigger causes an immediate poll and switches to fast polling. Call after
// an action that changes the queue (pause, resume, new grab).
func (p *QueuePoller) Trigger() {
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()
	if !running {
		return
	}

	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Apply replaces the store snapshot with an upstream push and rebroadcasts.
// Used by the WebSocket subscriber so pushed state bypasses the poll cycle.
func (p *QueuePoller) Apply(items []activity.QueueItem) {
	p.store.SetQueue(items)
	p.broadcastMatched()
}

func (p *QueuePoller) run() {
	defer close(p.stoppedCh)

	hasActive := p.poll()
	interval := p.idleInterval
	if hasActive {
		interval = p.activeInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-p.triggerCh:
			p.poll()
			if interval != p.activeInterval {
				interval = p.activeInterval
				ticker.Reset(interval)
			}
		case <-ticker.C:
			hasActive := p.poll()
			newInterval := p.idleInterval
			if hasActive {
				newInterval = p.activeInterval
			}
			if newInterval != interval {
				interval = newInterval
				ticker.Reset(interval)
			}
		}
	}
}

// poll fetches the queue, updates the store and broadcasts. Returns true if
// any download is actively progressing.
func (p *QueuePoller) poll() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	items, err := p.source.GetQueue(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to poll upstream queue")
		return false
	}

	p.store.SetQueue(items)
	p.broadcastMatched()

	for i := range items {
		if items[i].Status == "downloading" || items[i].Status == "queued" {
			return true
		}
	}
	return false
}

func (p *QueuePoller) broadcastMatched() {
	if p.hub == nil {
		return
	}
	if err := p.hub.Broadcast("activity:downloads", p.store.GetMatchedDownloads()); err != nil {
		p.logger.Warn().Err(err).Msg("failed to broadcast matched downloads")
	}
}
