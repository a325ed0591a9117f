package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/slipstream/helm/internal/activity"
	"github.com/slipstream/helm/internal/migration"
)

func int64Ptr(v int64) *int64 { return &v }

// stubUpstream implements the Upstream interface for handler tests.
type stubUpstream struct {
	preview    *migration.MigrationPreview
	previewErr error
	result     *migration.MigrationResult
	executeErr error
	lastInput  migration.ExecuteMigrationInput
}

func (s *stubUpstream) GenerateMigrationPreview(ctx context.Context) (*migration.MigrationPreview, error) {
	return s.preview, s.previewErr
}

func (s *stubUpstream) ExecuteMigration(ctx context.Context, input migration.ExecuteMigrationInput) (*migration.MigrationResult, error) {
	s.lastInput = input
	return s.result, s.executeErr
}

func (s *stubUpstream) Ping(ctx context.Context) error { return nil }

func newTestServer(up *stubUpstream) *Server {
	return &Server{
		store:    activity.NewStore(zerolog.Nop()),
		sessions: migration.NewManager(zerolog.Nop()),
		upstream: up,
		logger:   zerolog.Nop(),
	}
}

func stubPreview() *migration.MigrationPreview {
	return &migration.MigrationPreview{
		Movies: []migration.MovieMigrationPreview{
			{
				MovieID: 1,
				Title:   "The Matrix",
				Files: []migration.FileMigrationPreview{
					{FileID: 10, Path: "/movies/matrix.mkv", Quality: "2160p", ProposedSlotID: int64Ptr(1), ProposedSlotName: "4K", MatchScore: 95},
				},
			},
		},
		Summary: migration.MigrationSummary{TotalMovies: 1, TotalFiles: 1, FilesWithSlots: 1},
	}
}

func doRequest(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// registerTestRoutes attaches the migration routes without the auth
// middleware so handlers are exercised directly.
func registerTestRoutes(s *Server) *echo.Echo {
	e := echo.New()
	e.POST("/migration/preview", s.OpenPreviewSession)
	e.GET("/migration/preview/:id", s.GetPreview)
	e.PUT("/migration/preview/:id/files/:fileId", s.SetFileEdit)
	e.DELETE("/migration/preview/:id/files/:fileId", s.ClearFileEdit)
	e.DELETE("/migration/preview/:id", s.ClosePreviewSession)
	e.POST("/migration/preview/:id/execute", s.ExecuteMigration)
	return e
}

func TestOpenPreviewSession(t *testing.T) {
	up := &stubUpstream{preview: stubPreview()}
	s := newTestServer(up)
	e := registerTestRoutes(s)

	rec := doRequest(t, e, http.MethodPost, "/migration/preview", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp previewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("response carries no session ID")
	}
	if resp.Preview == nil || len(resp.Preview.Movies) != 1 {
		t.Errorf("unexpected preview in response: %+v", resp.Preview)
	}
}

func TestOpenPreviewSessionUpstreamFailure(t *testing.T) {
	up := &stubUpstream{previewErr: errors.New("connection refused")}
	s := newTestServer(up)
	e := registerTestRoutes(s)

	rec := doRequest(t, e, http.MethodPost, "/migration/preview", "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestSetFileEditRecomputesPreview(t *testing.T) {
	up := &stubUpstream{preview: stubPreview()}
	s := newTestServer(up)
	e := registerTestRoutes(s)

	session := s.sessions.Open(up.preview)

	rec := doRequest(t, e, http.MethodPut, "/migration/preview/"+session.ID+"/files/10", `{"type":"unassign"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp previewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.EditCount != 1 {
		t.Errorf("EditCount = %d, want 1", resp.EditCount)
	}

	file := resp.Preview.Movies[0].Files[0]
	if file.ProposedSlotID != nil || !file.NeedsReview {
		t.Errorf("unassign not reflected in recomputed preview: %+v", file)
	}
	if !resp.Preview.Movies[0].HasConflict {
		t.Error("movie hasConflict not recomputed")
	}
	if resp.Preview.Summary.FilesNeedingReview != 1 {
		t.Errorf("FilesNeedingReview = %d, want 1", resp.Preview.Summary.FilesNeedingReview)
	}
}

func TestSetFileEditValidation(t *testing.T) {
	up := &stubUpstream{preview: stubPreview()}
	s := newTestServer(up)
	e := registerTestRoutes(s)

	session := s.sessions.Open(up.preview)

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"assign without slotId", "/migration/preview/" + session.ID + "/files/10", `{"type":"assign"}`, http.StatusBadRequest},
		{"unknown edit type", "/migration/preview/" + session.ID + "/files/10", `{"type":"promote"}`, http.StatusBadRequest},
		{"non-numeric file id", "/migration/preview/" + session.ID + "/files/abc", `{"type":"ignore"}`, http.StatusBadRequest},
		{"unknown session", "/migration/preview/nope/files/10", `{"type":"ignore"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, e, http.MethodPut, tt.path, tt.body)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
		})
	}
}

func TestClearFileEditRestoresProposal(t *testing.T) {
	up := &stubUpstream{preview: stubPreview()}
	s := newTestServer(up)
	e := registerTestRoutes(s)

	session := s.sessions.Open(up.preview)
	session.SetEdit(10, migration.IgnoreEdit())

	rec := doRequest(t, e, http.MethodDelete, "/migration/preview/"+session.ID+"/files/10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp previewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.EditCount != 0 {
		t.Errorf("EditCount = %d, want 0", resp.EditCount)
	}
	file := resp.Preview.Movies[0].Files[0]
	if file.ProposedSlotID == nil || *file.ProposedSlotID != 1 {
		t.Errorf("automatic proposal not restored: %+v", file)
	}
}

func TestExecuteMigrationSendsOverridesAndClosesSession(t *testing.T) {
	up := &stubUpstream{
		preview: stubPreview(),
		result:  &migration.MigrationResult{Success: true, FilesAssigned: 1},
	}
	s := newTestServer(up)
	e := registerTestRoutes(s)

	session := s.sessions.Open(up.preview)
	session.SetEdit(10, migration.AssignEdit(2, "HD"))

	rec := doRequest(t, e, http.MethodPost, "/migration/preview/"+session.ID+"/execute", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	if len(up.lastInput.Overrides) != 1 {
		t.Fatalf("upstream received %d overrides, want 1", len(up.lastInput.Overrides))
	}
	override := up.lastInput.Overrides[0]
	if override.FileID != 10 || override.Type != "assign" || override.SlotID == nil || *override.SlotID != 2 {
		t.Errorf("override malformed: %+v", override)
	}

	if _, err := s.sessions.Get(session.ID); !errors.Is(err, migration.ErrSessionNotFound) {
		t.Error("session should be closed after execution")
	}
}

func TestExecuteMigrationUpstreamFailureKeepsSession(t *testing.T) {
	up := &stubUpstream{
		preview:    stubPreview(),
		executeErr: errors.New("migration already running"),
	}
	s := newTestServer(up)
	e := registerTestRoutes(s)

	session := s.sessions.Open(up.preview)

	rec := doRequest(t, e, http.MethodPost, "/migration/preview/"+session.ID+"/execute", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	// The admin's edits survive a failed execution attempt.
	if _, err := s.sessions.Get(session.ID); err != nil {
		t.Error("session should survive a failed execution")
	}
}

func TestClosePreviewSession(t *testing.T) {
	up := &stubUpstream{preview: stubPreview()}
	s := newTestServer(up)
	e := registerTestRoutes(s)

	session := s.sessions.Open(up.preview)

	rec := doRequest(t, e, http.MethodDelete, "/migration/preview/"+session.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, err := s.sessions.Get(session.ID); !errors.Is(err, migration.ErrSessionNotFound) {
		t.Error("session should be gone after close")
	}
}
