package migration

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrSessionNotFound = errors.New("preview session not found")

// Session holds one migration preview editing session: the original server
// preview plus the admin's manual edits. The original is kept untouched for
// execution; the edited view is re-derived in full on every change.
type Session struct {
	ID string `json:"id"`

	mu       sync.RWMutex
	original *MigrationPreview
	edits    EditSet
}

// NewSession starts an editing session over a freshly fetched server preview.
func NewSession(preview *MigrationPreview) *Session {
	return &Session{
		ID:       uuid.NewString(),
		original: preview,
		edits:    make(EditSet),
	}
}

// SetEdit records a manual edit for a file, replacing any earlier edit for
// the same file.
func (s *Session) SetEdit(fileID int64, edit ManualEdit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edits := make(EditSet, len(s.edits)+1)
	for id, e := range s.edits {
		edits[id] = e
	}
	edits[fileID] = edit
	s.edits = edits
}

// ClearEdit removes the edit for a file, restoring the automatic proposal.
func (s *Session) ClearEdit(fileID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edits[fileID]; !ok {
		return
	}
	edits := make(EditSet, len(s.edits))
	for id, e := range s.edits {
		if id != fileID {
			edits[id] = e
		}
	}
	s.edits = edits
}

// ClearEdits drops every manual edit.
func (s *Session) ClearEdits() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = make(EditSet)
}

// EditCount returns the number of active edits.
func (s *Session) EditCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edits)
}

// Edited returns the preview with all active edits applied. With no edits
// this is the original preview itself.
func (s *Session) Edited() *MigrationPreview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeEditedPreview(s.original, s.edits)
}

// Original returns the untouched server preview.
func (s *Session) Original() *MigrationPreview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.original
}

// ExecutionInput builds the server execution request from the ORIGINAL
// preview's edit overrides. The locally recomputed tree never leaves the
// console.
func (s *Session) ExecutionInput() ExecuteMigrationInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ExecuteMigrationInput{Overrides: s.edits.Overrides()}
}

// Manager tracks open preview sessions by ID. Sessions are discarded when
// the migration executes or the dialog closes.
type Manager struct {
	mu       sync.RWMutex
	logger   zerolog.Logger
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		logger:   logger.With().Str("component", "migration-sessions").Logger(),
		sessions: make(map[string]*Session),
	}
}

// Open starts a session over a server preview and registers it.
func (m *Manager) Open(preview *MigrationPreview) *Session {
	session := NewSession(preview)

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Info().Str("sessionId", session.ID).Msg("migration preview session opened")
	return session
}

// Get returns an open session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Close discards a session.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		m.logger.Info().Str("sessionId", id).Msg("migration preview session closed")
	}
}
