package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/slipstream/helm/internal/migration"
)

// fileEditInput is the request body for setting a manual edit.
type fileEditInput struct {
	Type     string `json:"type"` // "ignore", "assign" or "unassign"
	SlotID   *int64 `json:"slotId,omitempty"`
	SlotName string `json:"slotName,omitempty"`
}

// previewResponse pairs the session ID with the recomputed preview so the UI
// can keep addressing the session.
type previewResponse struct {
	SessionID string                      `json:"sessionId"`
	EditCount int                         `json:"editCount"`
	Preview   *migration.MigrationPreview `json:"preview"`
}

// OpenPreviewSession fetches a fresh dry-run preview from the server and
// opens an editing session over it.
// POST /api/v1/migration/preview
func (s *Server) OpenPreviewSession(c echo.Context) error {
	preview, err := s.upstream.GenerateMigrationPreview(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	session := s.sessions.Open(preview)
	return c.JSON(http.StatusCreated, previewResponse{
		SessionID: session.ID,
		Preview:   session.Edited(),
	})
}

// GetPreview returns the preview with the session's edits applied.
// GET /api/v1/migration/preview/:id
func (s *Server) GetPreview(c echo.Context) error {
	session, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, previewResponse{
		SessionID: session.ID,
		EditCount: session.EditCount(),
		Preview:   session.Edited(),
	})
}

// SetFileEdit records a manual override for one file and returns the fully
// recomputed preview.
// PUT /api/v1/migration/preview/:id/files/:fileId
func (s *Server) SetFileEdit(c echo.Context) error {
	session, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	fileID, err := strconv.ParseInt(c.Param("fileId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file id")
	}

	var input fileEditInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	edit, err := editFromInput(input)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session.SetEdit(fileID, edit)
	return c.JSON(http.StatusOK, previewResponse{
		SessionID: session.ID,
		EditCount: session.EditCount(),
		Preview:   session.Edited(),
	})
}

// ClearFileEdit removes the override for one file, restoring the automatic
// proposal.
// DELETE /api/v1/migration/preview/:id/files/:fileId
func (s *Server) ClearFileEdit(c echo.Context) error {
	session, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	fileID, err := strconv.ParseInt(c.Param("fileId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file id")
	}

	session.ClearEdit(fileID)
	return c.JSON(http.StatusOK, previewResponse{
		SessionID: session.ID,
		EditCount: session.EditCount(),
		Preview:   session.Edited(),
	})
}

// ClosePreviewSession discards a session without executing.
// DELETE /api/v1/migration/preview/:id
func (s *Server) ClosePreviewSession(c echo.Context) error {
	s.sessions.Close(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// ExecuteMigration commits the migration upstream using the session's edits
// as overrides against the original server preview, then discards the
// session.
// POST /api/v1/migration/preview/:id/execute
func (s *Server) ExecuteMigration(c echo.Context) error {
	session, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	result, err := s.upstream.ExecuteMigration(c.Request().Context(), session.ExecutionInput())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	s.sessions.Close(session.ID)
	return c.JSON(http.StatusOK, result)
}

// editFromInput validates and converts the wire input to a ManualEdit.
func editFromInput(input fileEditInput) (migration.ManualEdit, error) {
	switch migration.EditType(input.Type) {
	case migration.EditIgnore:
		return migration.IgnoreEdit(), nil
	case migration.EditUnassign:
		return migration.UnassignEdit(), nil
	case migration.EditAssign:
		if input.SlotID == nil {
			return migration.ManualEdit{}, errors.New("slotId is required for assign edits")
		}
		return migration.AssignEdit(*input.SlotID, input.SlotName), nil
	}
	return migration.ManualEdit{}, errors.New("invalid edit type: " + input.Type)
}
