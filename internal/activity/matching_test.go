package activity

import "testing"

func int64Ptr(v int64) *int64 { return &v }

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "release name with dots",
			input:    "The.Matrix.1999.1080p.BluRay.x264",
			expected: "the matrix 1999 1080p bluray x264",
		},
		{
			name:     "mixed separators",
			input:    "Breaking_Bad-S01.Complete",
			expected: "breaking bad s01 complete",
		},
		{
			name:     "special characters stripped",
			input:    "WALL·E (2008) [Remux]",
			expected: "walle 2008 remux",
		},
		{
			name:     "whitespace collapsed and trimmed",
			input:    "  The   Wire  ",
			expected: "the wire",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "only special characters",
			input:    "***",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTitle(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			// Normalization is idempotent.
			if again := NormalizeTitle(got); again != got {
				t.Errorf("NormalizeTitle not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestTypesCompatible(t *testing.T) {
	tests := []struct {
		requestType string
		itemType    string
		expected    bool
	}{
		{MediaTypeMovie, MediaTypeMovie, true},
		{MediaTypeMovie, MediaTypeSeries, false},
		{MediaTypeSeries, MediaTypeSeries, true},
		{MediaTypeSeries, MediaTypeMovie, false},
		{MediaTypeSeason, MediaTypeSeries, true},
		{MediaTypeSeason, MediaTypeMovie, false},
		{"unknown", MediaTypeMovie, false},
	}

	for _, tt := range tests {
		got := typesCompatible(tt.requestType, tt.itemType)
		if got != tt.expected {
			t.Errorf("typesCompatible(%q, %q) = %v, want %v", tt.requestType, tt.itemType, got, tt.expected)
		}
	}
}

func TestMatchItemByID(t *testing.T) {
	requests := []Request{
		{ID: 1, Title: "The Matrix", MediaType: MediaTypeMovie, MediaID: int64Ptr(10), Status: "approved"},
		{ID: 2, Title: "Breaking Bad", MediaType: MediaTypeSeries, MediaID: int64Ptr(20), Status: "approved"},
	}

	item := &QueueItem{
		ID:        "abc",
		ClientID:  1,
		Title:     "The.Matrix.1999.2160p.Remux",
		MediaType: MediaTypeMovie,
		MovieID:   int64Ptr(10),
	}

	match := matchItem(item, requests)
	if match == nil {
		t.Fatal("expected a match, got nil")
	}
	if match.RequestID != 1 {
		t.Errorf("RequestID = %d, want 1", match.RequestID)
	}
	if match.MatchedBy != MatchedByID {
		t.Errorf("MatchedBy = %q, want %q", match.MatchedBy, MatchedByID)
	}
}

func TestMatchItemSeasonRequestMatchesSeriesDownload(t *testing.T) {
	requests := []Request{
		{ID: 5, Title: "The Wire Season 3", MediaType: MediaTypeSeason, MediaID: int64Ptr(30), Status: "approved"},
	}

	item := &QueueItem{
		ID:        "s3",
		ClientID:  1,
		Title:     "The.Wire.S03.1080p",
		MediaType: MediaTypeSeries,
		SeriesID:  int64Ptr(30),
	}

	match := matchItem(item, requests)
	if match == nil {
		t.Fatal("expected season request to match series download")
	}
	if match.RequestID != 5 {
		t.Errorf("RequestID = %d, want 5", match.RequestID)
	}
}

func TestMatchItemTitleFallback(t *testing.T) {
	requests := []Request{
		{ID: 7, Title: "The Matrix", MediaType: MediaTypeMovie, Status: "pending"},
	}

	tests := []struct {
		name      string
		itemTitle string
		wantMatch bool
	}{
		{"release name contains request title", "The.Matrix.1999.1080p.BluRay", true},
		{"exact title", "The Matrix", true},
		{"unrelated title", "Inception.2010.1080p", false},
		{"empty item title", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &QueueItem{ID: "x", ClientID: 1, Title: tt.itemTitle, MediaType: MediaTypeMovie}
			match := matchItem(item, requests)
			if (match != nil) != tt.wantMatch {
				t.Errorf("match = %v, wantMatch %v", match, tt.wantMatch)
			}
			if match != nil && match.MatchedBy != MatchedByTitle {
				t.Errorf("MatchedBy = %q, want %q", match.MatchedBy, MatchedByTitle)
			}
		})
	}
}

func TestMatchItemResolvedRequestNeverFallsBackToTitle(t *testing.T) {
	// The request resolved media ID 99; the item carries ID 10. The titles
	// overlap, but a resolved request must not be matched by title.
	requests := []Request{
		{ID: 1, Title: "The Matrix", MediaType: MediaTypeMovie, MediaID: int64Ptr(99), Status: "approved"},
	}

	item := &QueueItem{
		ID:        "abc",
		ClientID:  1,
		Title:     "The.Matrix.1999.1080p",
		MediaType: MediaTypeMovie,
		MovieID:   int64Ptr(10),
	}

	if match := matchItem(item, requests); match != nil {
		t.Errorf("expected no match, got %+v", match)
	}
}

func TestMatchItemIdentityBeatsTitle(t *testing.T) {
	// Both requests could plausibly claim the item; the ID match wins even
	// though the title-only request appears first.
	requests := []Request{
		{ID: 1, Title: "Matrix", MediaType: MediaTypeMovie, Status: "pending"},
		{ID: 2, Title: "The Matrix", MediaType: MediaTypeMovie, MediaID: int64Ptr(10), Status: "approved"},
	}

	item := &QueueItem{
		ID:        "abc",
		ClientID:  1,
		Title:     "The.Matrix.1999.1080p",
		MediaType: MediaTypeMovie,
		MediaID:   int64Ptr(10),
	}

	match := matchItem(item, requests)
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.RequestID != 2 || match.MatchedBy != MatchedByID {
		t.Errorf("got request %d via %q, want request 2 via %q", match.RequestID, match.MatchedBy, MatchedByID)
	}
}

func TestMatchItemTypeMismatchBlocksTitleFallback(t *testing.T) {
	requests := []Request{
		{ID: 1, Title: "Fargo", MediaType: MediaTypeMovie, Status: "pending"},
	}

	item := &QueueItem{
		ID:        "x",
		ClientID:  1,
		Title:     "Fargo.S01.1080p",
		MediaType: MediaTypeSeries,
	}

	if match := matchItem(item, requests); match != nil {
		t.Errorf("expected no match across media types, got %+v", match)
	}
}

func TestResolvedMediaIDPrefersTypedID(t *testing.T) {
	tests := []struct {
		name     string
		item     QueueItem
		expected *int64
	}{
		{
			name:     "movie prefers movieId",
			item:     QueueItem{MediaType: MediaTypeMovie, MovieID: int64Ptr(1), MediaID: int64Ptr(2)},
			expected: int64Ptr(1),
		},
		{
			name:     "series prefers seriesId",
			item:     QueueItem{MediaType: MediaTypeSeries, SeriesID: int64Ptr(3), MediaID: int64Ptr(4)},
			expected: int64Ptr(3),
		},
		{
			name:     "falls back to mediaId",
			item:     QueueItem{MediaType: MediaTypeMovie, MediaID: int64Ptr(5)},
			expected: int64Ptr(5),
		},
		{
			name:     "no id at all",
			item:     QueueItem{MediaType: MediaTypeMovie},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolvedMediaID(&tt.item)
			if (got == nil) != (tt.expected == nil) {
				t.Fatalf("resolvedMediaID = %v, want %v", got, tt.expected)
			}
			if got != nil && *got != *tt.expected {
				t.Errorf("resolvedMediaID = %d, want %d", *got, *tt.expected)
			}
		})
	}
}
