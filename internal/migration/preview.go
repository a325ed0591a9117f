package migration

// Wire types for the server's migration preview. The shapes (and JSON field
// names) follow the server's dry-run endpoint exactly: the preview is fetched
// once at the start of an editing session, recomputed locally as the admin
// applies overrides, and discarded when the dialog closes or the migration
// executes.

// MigrationPreview is the top-level aggregate returned by the server.
type MigrationPreview struct {
	Movies  []MovieMigrationPreview  `json:"movies"`
	TVShows []TVShowMigrationPreview `json:"tvShows"`
	Summary MigrationSummary         `json:"summary"`
}

// MovieMigrationPreview shows the proposed migration for a single movie.
type MovieMigrationPreview struct {
	MovieID     int64                  `json:"movieId"`
	Title       string                 `json:"title"`
	Year        int                    `json:"year,omitempty"`
	Files       []FileMigrationPreview `json:"files"`
	HasConflict bool                   `json:"hasConflict"`
	Conflicts   []string               `json:"conflicts,omitempty"`
}

// TVShowMigrationPreview shows the proposed migration for a TV series.
type TVShowMigrationPreview struct {
	SeriesID    int64                    `json:"seriesId"`
	Title       string                   `json:"title"`
	Seasons     []SeasonMigrationPreview `json:"seasons"`
	TotalFiles  int                      `json:"totalFiles"`
	HasConflict bool                     `json:"hasConflict"`
}

// SeasonMigrationPreview shows the proposed migration for a single season.
type SeasonMigrationPreview struct {
	SeasonNumber int                       `json:"seasonNumber"`
	Episodes     []EpisodeMigrationPreview `json:"episodes"`
	TotalFiles   int                       `json:"totalFiles"`
	HasConflict  bool                      `json:"hasConflict"`
}

// EpisodeMigrationPreview shows the proposed migration for a single episode.
type EpisodeMigrationPreview struct {
	EpisodeID     int64                  `json:"episodeId"`
	EpisodeNumber int                    `json:"episodeNumber"`
	Title         string                 `json:"title,omitempty"`
	Files         []FileMigrationPreview `json:"files"`
	HasConflict   bool                   `json:"hasConflict"`
}

// FileMigrationPreview shows the proposed slot assignment for a single file.
type FileMigrationPreview struct {
	FileID           int64   `json:"fileId"`
	Path             string  `json:"path"`
	Quality          string  `json:"quality"`
	Size             int64   `json:"size"`
	ProposedSlotID   *int64  `json:"proposedSlotId"`
	ProposedSlotName string  `json:"proposedSlotName,omitempty"`
	MatchScore       float64 `json:"matchScore"`
	NeedsReview      bool    `json:"needsReview"`
	Conflict         string  `json:"conflict,omitempty"`
}

// MigrationSummary provides statistics about the migration.
type MigrationSummary struct {
	TotalMovies        int `json:"totalMovies"`
	TotalTVShows       int `json:"totalTvShows"`
	TotalFiles         int `json:"totalFiles"`
	FilesWithSlots     int `json:"filesWithSlots"`
	FilesNeedingReview int `json:"filesNeedingReview"`
	Conflicts          int `json:"conflicts"`
}

// FileOverride is the wire shape the server accepts for a manual override
// when executing a migration.
type FileOverride struct {
	FileID int64  `json:"fileId"`
	Type   string `json:"type"`             // "ignore", "assign", or "unassign"
	SlotID *int64 `json:"slotId,omitempty"` // required when Type is "assign"
}

// ExecuteMigrationInput is the request body for the server's migration
// execution endpoint. It carries the overrides against the ORIGINAL server
// preview; the locally recomputed tree is presentation-only.
type ExecuteMigrationInput struct {
	Overrides []FileOverride `json:"overrides,omitempty"`
}

// MigrationResult is the server's response to a migration execution.
type MigrationResult struct {
	Success       bool     `json:"success"`
	FilesAssigned int      `json:"filesAssigned"`
	FilesQueued   int      `json:"filesQueued"`
	Errors        []string `json:"errors,omitempty"`
	CompletedAt   string   `json:"completedAt"`
}

// fileHasIssue reports whether a file carries a conflict or needs review.
// This is the sole predicate feeding the derived hasConflict flags.
func fileHasIssue(f *FileMigrationPreview) bool {
	return f.Conflict != "" || f.NeedsReview
}
