package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/openfund/grantdesk/internal/auth"
	"github.com/openfund/grantdesk/internal/db"
	"github.com/openfund/grantdesk/internal/ingest"
	"github.com/openfund/grantdesk/internal/models"
)

type createApplicationRequest struct {
	OpportunityID string `json:"opportunityId"`
	Title         string `json:"title"`
}

func (s *Server) handleCreateApplication(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req createApplicationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	params := db.CreateApplicationParams{
		OrganizationID: orgID,
		Title:          req.Title,
	}

	// Starting from a catalog grant copies the opportunity snapshot onto the
	// application so later catalog edits do not rewrite history.
	if req.OpportunityID != "" {
		oppID, err := uuid.Parse(req.OpportunityID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
		}
		opp, err := s.Store.GetOpportunity(c.Request().Context(), oppID.String())
		if err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
		}
		params.OpportunityID = &oppID
		params.AgencyName = opp.AgencyName
		params.FundingFloor = opp.FundingFloor
		params.FundingCeiling = opp.FundingCeiling
		params.PostedAt = opp.PostedAt
		params.CloseAt = opp.CloseAt
		params.AttachmentsURL = opp.ExternalURL
		if params.Title == "" {
			params.Title = opp.Title
		}
	}

	if params.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Title is required"})
	}

	app, err := s.Store.CreateApplication(c.Request().Context(), params)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateApplication) {
			return s.duplicateResponse(c, orgID, *params.OpportunityID)
		}
		c.Logger().Errorf("create application failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	// Checklist generation runs in the background; clients poll the
	// checklist endpoint until items show up.
	if s.AI != nil {
		go func(orgID, appID uuid.UUID) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := s.Checklist.Generate(ctx, orgID, appID); err != nil {
				s.Echo.Logger.Errorf("checklist generation failed for %s: %v", appID, err)
			}
		}(orgID, app.ID)
	}

	return c.JSON(http.StatusCreated, app)
}

func (s *Server) duplicateResponse(c echo.Context, orgID, oppID uuid.UUID) error {
	existing, err := s.Store.FindLiveApplication(c.Request().Context(), orgID, oppID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusConflict, map[string]interface{}{
		"error":               "An application already exists for this grant",
		"isDuplicate":         true,
		"existingApplication": existing,
	})
}

func (s *Server) handleListApplications(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	apps, err := s.Store.ListApplications(c.Request().Context(), orgID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, apps)
}

func (s *Server) handleGetApplication(c echo.Context) error {
	orgID, appID, ok := orgAndID(c)
	if !ok {
		return nil
	}
	app, err := s.Store.GetApplication(c.Request().Context(), orgID, appID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, app)
}

func (s *Server) handleUpdateApplicationStatus(c echo.Context) error {
	orgID, appID, ok := orgAndID(c)
	if !ok {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	status := models.ApplicationStatus(req.Status)
	if !status.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid status value"})
	}

	app, err := s.Store.UpdateApplicationStatus(c.Request().Context(), orgID, appID, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, app)
}

func (s *Server) handleUpdateApplicationSnapshot(c echo.Context) error {
	orgID, appID, ok := orgAndID(c)
	if !ok {
		return nil
	}

	var update db.SnapshotUpdate
	if err := c.Bind(&update); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	app, err := s.Store.UpdateApplicationSnapshot(c.Request().Context(), orgID, appID, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, app)
}

func (s *Server) handleSetApplicationFolder(c echo.Context) error {
	orgID, appID, ok := orgAndID(c)
	if !ok {
		return nil
	}

	var req struct {
		FolderID string `json:"folderId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	folderID, err := uuid.Parse(req.FolderID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid folder ID"})
	}

	if err := s.Store.SetApplicationFolder(c.Request().Context(), orgID, appID, folderID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGetChecklist(c echo.Context) error {
	orgID, appID, ok := orgAndID(c)
	if !ok {
		return nil
	}

	items, err := s.Store.GetChecklist(c.Request().Context(), orgID, appID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleDeleteApplication(c echo.Context) error {
	orgID, appID, ok := orgAndID(c)
	if !ok {
		return nil
	}

	if err := s.Store.DeleteApplication(c.Request().Context(), orgID, appID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

type importApplicationRequest struct {
	URL string `json:"url"`
}

// handleImportApplication files an application for a grant found outside the
// catalog: the funder page is scraped for a title and amounts, and the user
// reviews the result.
func (s *Server) handleImportApplication(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req importApplicationRequest
	if err := c.Bind(&req); err != nil || req.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "URL is required"})
	}

	outside, err := s.fetchOutside(c.Request().Context(), req.URL)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	app, err := s.Store.CreateApplication(c.Request().Context(), db.CreateApplicationParams{
		OrganizationID: orgID,
		Title:          outside.Title,
		AgencyName:     outside.AgencyName,
		FundingFloor:   outside.AmountFloor,
		FundingCeiling: outside.AmountCeil,
		AttachmentsURL: outside.SourceURL,
	})
	if err != nil {
		c.Logger().Errorf("import application failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusCreated, app)
}

func (s *Server) fetchOutside(ctx context.Context, pageURL string) (*ingest.OutsideOpportunity, error) {
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()
	return ingest.FetchOutsideOpportunity(ctx, s.Fetcher, pageURL)
}

// orgAndID pulls the tenant and path ID, writing the error response itself
// when either is missing.
func orgAndID(c echo.Context) (orgID, id uuid.UUID, ok bool) {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}
	id, err = uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return orgID, id, true
}
