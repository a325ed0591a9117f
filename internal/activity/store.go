package activity

import (
	"sync"

	"github.com/rs/zerolog"
)

// Store owns the derived match table that associates live queue items with
// outstanding portal requests. All derived state is rebuilt wholesale and
// swapped in under the lock; readers never observe a half-updated table.
type Store struct {
	mu       sync.RWMutex
	logger   zerolog.Logger
	queue    []QueueItem
	requests []Request
	matches  map[string]MatchInfo // queue item key -> match
}

// NewStore creates an empty activity store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		logger:  logger.With().Str("component", "activity-store").Logger(),
		matches: make(map[string]MatchInfo),
	}
}

// SetQueue replaces the queue snapshot. Matches for items still present are
// preserved verbatim so an item's association does not flicker between polls;
// only newly appeared items run the matching passes, and matches for vanished
// items are dropped with them.
func (s *Store) SetQueue(items []QueueItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make(map[string]MatchInfo, len(s.matches))
	matched := 0
	for i := range items {
		key := items[i].Key()
		if existing, ok := s.matches[key]; ok {
			matches[key] = existing
			matched++
			continue
		}
		if m := matchItem(&items[i], s.requests); m != nil {
			matches[key] = *m
			matched++
		}
	}

	s.queue = items
	s.matches = matches

	s.logger.Debug().
		Int("queueItems", len(items)).
		Int("matched", matched).
		Msg("queue snapshot replaced")
}

// SetRequests replaces the request list and recomputes the entire match table
// against the current queue. A request edit (approval, media resolution) must
// immediately re-evaluate every item, matched or not.
func (s *Store) SetRequests(requests []Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = requests

	matches := make(map[string]MatchInfo)
	for i := range s.queue {
		if m := matchItem(&s.queue[i], requests); m != nil {
			matches[s.queue[i].Key()] = *m
		}
	}
	s.matches = matches

	s.logger.Debug().
		Int("requests", len(requests)).
		Int("matched", len(matches)).
		Msg("request list replaced, match table recomputed")
}

// Queue returns the current queue snapshot.
func (s *Store) Queue() []QueueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue
}

// MatchFor returns the match for a queue item, if one exists.
func (s *Store) MatchFor(item *QueueItem) (MatchInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[item.Key()]
	return m, ok
}

// GetMatchedDownloads joins each matched queue item with its MatchInfo, in
// queue order. Unmatched items are excluded from this view only; they remain
// in the queue snapshot.
func (s *Store) GetMatchedDownloads() []EnrichedDownload {
	s.mu.RLock()
	defer s.mu.RUnlock()

	downloads := make([]EnrichedDownload, 0, len(s.matches))
	for i := range s.queue {
		m, ok := s.matches[s.queue[i].Key()]
		if !ok {
			continue
		}
		downloads = append(downloads, EnrichedDownload{
			QueueItem: s.queue[i],
			Match:     m,
		})
	}
	return downloads
}
