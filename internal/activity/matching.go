package activity

import (
	"regexp"
	"strings"
)

var (
	separatorRegex     = regexp.MustCompile(`[._-]+`)
	specialCharsRegex  = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpaceRegex = regexp.MustCompile(`\s+`)
)

// NormalizeTitle converts a title to a normalized form for comparison.
// It lowercases, replaces release-name separators (".", "_", "-") with
// spaces, strips the remaining special characters, and collapses whitespace.
// Normalizing an already-normalized title is a no-op, so "The.Matrix_1999"
// and "the matrix 1999" end up identical.
func NormalizeTitle(title string) string {
	normalized := strings.ToLower(title)
	normalized = separatorRegex.ReplaceAllString(normalized, " ")
	normalized = specialCharsRegex.ReplaceAllString(normalized, "")
	normalized = multipleSpaceRegex.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// typesCompatible reports whether a request of the given type can be
// satisfied by a queue item of the given type. Season requests resolve to
// series downloads; everything else must match exactly.
func typesCompatible(requestType, itemType string) bool {
	switch requestType {
	case MediaTypeMovie:
		return itemType == MediaTypeMovie
	case MediaTypeSeries, MediaTypeSeason:
		return itemType == MediaTypeSeries
	}
	return false
}

// resolvedMediaID returns the queue item's library row ID for comparison
// against a request's media ID, preferring the typed cross-reference.
func resolvedMediaID(item *QueueItem) *int64 {
	switch item.MediaType {
	case MediaTypeMovie:
		if item.MovieID != nil {
			return item.MovieID
		}
	case MediaTypeSeries:
		if item.SeriesID != nil {
			return item.SeriesID
		}
	}
	return item.MediaID
}

// matchItem runs the matching passes for a single queue item against the
// request list and returns the match, if any. The identity pass wins over the
// title fallback: an ID match is authoritative, and requests that already
// resolved a media ID never fall back to the weaker title heuristic.
func matchItem(item *QueueItem, requests []Request) *MatchInfo {
	// Identity pass: first request whose resolved media ID equals the
	// item's, honoring type compatibility. Request lists are small, so the
	// linear scan is fine.
	itemMediaID := resolvedMediaID(item)
	if itemMediaID != nil {
		for i := range requests {
			req := &requests[i]
			if req.MediaID == nil || !typesCompatible(req.MediaType, item.MediaType) {
				continue
			}
			if *req.MediaID == *itemMediaID {
				return &MatchInfo{
					RequestID:     req.ID,
					RequestTitle:  req.Title,
					MediaType:     req.MediaType,
					RequestStatus: req.Status,
					MatchedBy:     MatchedByID,
				}
			}
		}
	}

	// Title fallback, only for requests with no resolved media ID.
	itemTitle := NormalizeTitle(item.Title)
	if itemTitle == "" {
		return nil
	}
	for i := range requests {
		req := &requests[i]
		if req.MediaID != nil || !typesCompatible(req.MediaType, item.MediaType) {
			continue
		}
		reqTitle := NormalizeTitle(req.Title)
		if reqTitle == "" {
			continue
		}
		if strings.Contains(itemTitle, reqTitle) {
			return &MatchInfo{
				RequestID:     req.ID,
				RequestTitle:  req.Title,
				MediaType:     req.MediaType,
				RequestStatus: req.Status,
				MatchedBy:     MatchedByTitle,
			}
		}
	}

	return nil
}
