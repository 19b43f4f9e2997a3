package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/openfund/grantdesk/internal/auth"
)

type folderRequest struct {
	Name          string `json:"name"`
	ParentID      string `json:"parentId"`
	ApplicationID string `json:"applicationId"`
}

func (s *Server) handleCreateFolder(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req folderRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name is required"})
	}

	parentID, ok := optionalUUID(c, req.ParentID, "parent")
	if !ok {
		return nil
	}
	appID, ok := optionalUUID(c, req.ApplicationID, "application")
	if !ok {
		return nil
	}

	folder, err := s.Store.CreateFolder(c.Request().Context(), orgID, parentID, appID, req.Name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, folder)
}

// handleUpdateFolder renames or re-parents a folder depending on which
// fields the request carries.
func (s *Server) handleUpdateFolder(c echo.Context) error {
	orgID, folderID, ok := orgAndID(c)
	if !ok {
		return nil
	}

	var req struct {
		Name     *string `json:"name"`
		ParentID *string `json:"parentId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	ctx := c.Request().Context()
	if req.ParentID != nil {
		parentID, ok := optionalUUID(c, *req.ParentID, "parent")
		if !ok {
			return nil
		}
		if err := s.Store.MoveFolder(ctx, orgID, folderID, parentID); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
	if req.Name != nil && *req.Name != "" {
		folder, err := s.Store.RenameFolder(ctx, orgID, folderID, *req.Name)
		if err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		return c.JSON(http.StatusOK, folder)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteFolder(c echo.Context) error {
	orgID, folderID, ok := orgAndID(c)
	if !ok {
		return nil
	}
	if err := s.Store.DeleteFolder(c.Request().Context(), orgID, folderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListFolders(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	parentID, ok := optionalUUID(c, c.QueryParam("parent"), "parent")
	if !ok {
		return nil
	}

	folders, err := s.Store.ListFolders(c.Request().Context(), orgID, parentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, folders)
}

// optionalUUID parses an optional ID field, writing a 400 and returning
// ok=false when the value is present but malformed.
func optionalUUID(c echo.Context, value, label string) (*uuid.UUID, bool) {
	if value == "" {
		return nil, true
	}
	id, err := uuid.Parse(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid " + label + " ID"})
		return nil, false
	}
	return &id, true
}
