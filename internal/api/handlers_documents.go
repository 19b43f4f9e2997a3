package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/openfund/grantdesk/internal/auth"
	"github.com/openfund/grantdesk/internal/db"
	"github.com/openfund/grantdesk/internal/docs"
	"github.com/openfund/grantdesk/internal/storage"
)

// maxUploadBytes caps multipart document uploads.
const maxUploadBytes = 25 << 20

type createDocumentRequest struct {
	ApplicationID string `json:"applicationId"`
	FolderID      string `json:"folderId"`
	Name          string `json:"name"`
	Content       string `json:"content"`
}

func (s *Server) handleCreateDocument(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req createDocumentRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name is required"})
	}

	params := db.CreateDocumentParams{
		OrganizationID: orgID,
		Name:           req.Name,
		Content:        docs.SanitizeHTML(req.Content),
	}
	if req.ApplicationID != "" {
		id, err := uuid.Parse(req.ApplicationID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid application ID"})
		}
		params.ApplicationID = &id
	}
	if req.FolderID != "" {
		id, err := uuid.Parse(req.FolderID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid folder ID"})
		}
		params.FolderID = &id
	}

	doc, err := s.Store.CreateDocument(c.Request().Context(), params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	s.indexDocument(orgID, doc.ID, doc.Content)
	return c.JSON(http.StatusCreated, doc)
}

// handleUploadDocument stores a binary file in the object store and creates
// the document row pointing at it. PDF uploads also get their text extracted
// and indexed for the knowledge base.
func (s *Server) handleUploadDocument(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	if s.Storage == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "File storage is not configured"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "File is required"})
	}
	if fileHeader.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "File too large"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cannot read file"})
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cannot read file"})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	objectKey := storage.ObjectKey(orgID, fileHeader.Filename)

	ctx := c.Request().Context()
	if err := s.Storage.Upload(ctx, objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		c.Logger().Errorf("upload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Upload failed"})
	}

	params := db.CreateDocumentParams{
		OrganizationID: orgID,
		Name:           fileHeader.Filename,
		ObjectKey:      objectKey,
		FileURL:        s.Storage.PublicURL(objectKey),
		ContentType:    contentType,
	}
	if v := c.FormValue("applicationId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			params.ApplicationID = &id
		}
	}
	if v := c.FormValue("folderId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			params.FolderID = &id
		}
	}

	doc, err := s.Store.CreateDocument(ctx, params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if contentType == "application/pdf" {
		if text, err := docs.ExtractPDFText(data); err == nil {
			s.indexDocument(orgID, doc.ID, text)
		}
	}
	return c.JSON(http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(c echo.Context) error {
	orgID, docID, ok := orgAndID(c)
	if !ok {
		return nil
	}
	doc, err := s.Store.GetDocument(c.Request().Context(), orgID, docID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, doc)
}

type updateDocumentRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (s *Server) handleUpdateDocument(c echo.Context) error {
	orgID, docID, ok := orgAndID(c)
	if !ok {
		return nil
	}

	var req updateDocumentRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name is required"})
	}

	clean := docs.SanitizeHTML(req.Content)
	doc, err := s.Store.UpdateDocumentContent(c.Request().Context(), orgID, docID, req.Name, clean)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}

	s.indexDocument(orgID, doc.ID, clean)
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleMoveDocument(c echo.Context) error {
	orgID, docID, ok := orgAndID(c)
	if !ok {
		return nil
	}

	var req struct {
		FolderID string `json:"folderId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	var folderID *uuid.UUID
	if req.FolderID != "" {
		id, err := uuid.Parse(req.FolderID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid folder ID"})
		}
		folderID = &id
	}

	if err := s.Store.MoveDocument(c.Request().Context(), orgID, docID, folderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteDocument(c echo.Context) error {
	orgID, docID, ok := orgAndID(c)
	if !ok {
		return nil
	}

	ctx := c.Request().Context()
	doc, err := s.Store.GetDocument(ctx, orgID, docID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}

	if err := s.Store.DeleteDocument(ctx, orgID, docID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if doc.ObjectKey != "" && s.Storage != nil {
		if err := s.Storage.Delete(ctx, doc.ObjectKey); err != nil {
			c.Logger().Errorf("object delete failed for %s: %v", doc.ObjectKey, err)
		}
	}
	if err := s.Store.DeleteKBChunksForDocument(ctx, docID); err != nil {
		c.Logger().Errorf("kb cleanup failed for %s: %v", docID, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListApplicationDocuments(c echo.Context) error {
	orgID, appID, ok := orgAndID(c)
	if !ok {
		return nil
	}
	list, err := s.Store.ListDocumentsByApplication(c.Request().Context(), orgID, appID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleListFolderDocuments(c echo.Context) error {
	orgID, folderID, ok := orgAndID(c)
	if !ok {
		return nil
	}
	list, err := s.Store.ListDocumentsByFolder(c.Request().Context(), orgID, folderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, list)
}

// indexDocument refreshes knowledge base chunks in the background so the
// assistant can reference document content.
func (s *Server) indexDocument(orgID, docID uuid.UUID, content string) {
	if s.AI == nil || content == "" {
		return
	}
	text := docs.HTMLToText(content)
	if text == "" {
		text = content
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.KB.IndexDocument(ctx, orgID, docID, text); err != nil {
			s.Echo.Logger.Errorf("kb indexing failed for %s: %v", docID, err)
		}
	}()
}
