package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openfund/grantdesk/internal/auth"
	"github.com/openfund/grantdesk/internal/db"
	"github.com/openfund/grantdesk/internal/docs"
	"github.com/openfund/grantdesk/internal/models"
)

func (s *Server) handleGetOrganization(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	cacheKey := "org:" + orgID.String()
	if cached, ok := s.profileCache.Get(cacheKey); ok {
		return c.JSON(http.StatusOK, cached)
	}

	org, err := s.Store.GetOrganization(c.Request().Context(), orgID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}

	s.profileCache.Set(cacheKey, org)
	return c.JSON(http.StatusOK, org)
}

func (s *Server) handleUpdateOrganization(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var update db.OrganizationUpdate
	if err := c.Bind(&update); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	org, err := s.Store.UpdateOrganization(c.Request().Context(), orgID, update)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	s.profileCache.Invalidate("org:" + orgID.String())
	return c.JSON(http.StatusOK, org)
}

type planSummaryRequest struct {
	DocumentID string `json:"documentId"`
	Text       string `json:"text"`
}

// handlePlanSummary condenses a strategic plan into the profile summary the
// assistant prompts carry. The plan can come in as raw text or by reference
// to an uploaded document.
func (s *Server) handlePlanSummary(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	if s.AI == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "AI features are not configured"})
	}

	var req planSummaryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	ctx := c.Request().Context()
	text := req.Text
	if text == "" && req.DocumentID != "" {
		docID, ok := optionalUUID(c, req.DocumentID, "document")
		if !ok {
			return nil
		}
		doc, err := s.Store.GetDocument(ctx, orgID, *docID)
		if err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
		}
		text = planTextFromDocument(doc)
	}
	if text == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Plan text or document is required"})
	}

	summary, err := docs.SummarizePlan(ctx, s.AI, text)
	if err != nil {
		c.Logger().Errorf("plan summarization failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Summarization failed"})
	}

	if err := s.Store.SetPlanSummary(ctx, orgID, summary); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	s.profileCache.Invalidate("org:" + orgID.String())
	return c.JSON(http.StatusOK, map[string]string{"planSummary": summary})
}

func planTextFromDocument(doc *models.Document) string {
	if doc.Content != "" {
		return docs.HTMLToText(doc.Content)
	}
	return ""
}
