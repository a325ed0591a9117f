package activity

import "fmt"

const (
	MediaTypeMovie  = "movie"
	MediaTypeSeries = "series"
	MediaTypeSeason = "season"
)

// QueueItem represents a download reported by one of the server's download
// clients. Items are ephemeral: they exist only while the upstream poller
// reports them.
type QueueItem struct {
	ID             string  `json:"id"`
	ClientID       int64   `json:"clientId"`
	ClientName     string  `json:"clientName"`
	Title          string  `json:"title"`
	MediaType      string  `json:"mediaType"` // "movie" or "series"
	MediaID        *int64  `json:"mediaId,omitempty"`
	MovieID        *int64  `json:"movieId,omitempty"`
	SeriesID       *int64  `json:"seriesId,omitempty"`
	Status         string  `json:"status"`
	Progress       float64 `json:"progress"` // 0-100
	Size           int64   `json:"size"`     // bytes
	DownloadedSize int64   `json:"downloadedSize"`
	DownloadSpeed  int64   `json:"downloadSpeed"` // bytes/sec
	ETA            int64   `json:"eta"`           // seconds, -1 if unavailable
}

// Key returns the item's identity. Download IDs are only unique within their
// originating client, so the client ID is part of the key.
func (q *QueueItem) Key() string {
	return fmt.Sprintf("%d:%s", q.ClientID, q.ID)
}

// Request is a user's outstanding ask for content, owned by the request
// portal. Read-only from the matcher's perspective.
type Request struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	MediaType string `json:"mediaType"` // "movie", "series" or "season"
	MediaID   *int64 `json:"mediaId"`
	TmdbID    *int64 `json:"tmdbId"`
	TvdbID    *int64 `json:"tvdbId"`
	Status    string `json:"status"`
}

// Match method used to associate a queue item with a request.
const (
	MatchedByID    = "id"
	MatchedByTitle = "title"
)

// MatchInfo records the derived fact that a queue item currently corresponds
// to a request. At most one MatchInfo exists per queue item.
type MatchInfo struct {
	RequestID     int64  `json:"requestId"`
	RequestTitle  string `json:"requestTitle"`
	MediaType     string `json:"mediaType"`
	RequestStatus string `json:"requestStatus"`
	MatchedBy     string `json:"matchedBy"`
}

// EnrichedDownload joins a queue item with its match for display.
type EnrichedDownload struct {
	QueueItem
	Match MatchInfo `json:"match"`
}
