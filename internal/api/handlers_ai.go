package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/tmc/langchaingo/llms"

	"github.com/openfund/grantdesk/internal/agent"
	"github.com/openfund/grantdesk/internal/auth"
	"github.com/openfund/grantdesk/internal/docs"
)

// handleStartRecommendations kicks off the background fit-scoring job.
// Returns 202 with the job state; clients poll the status endpoint.
func (s *Server) handleStartRecommendations(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	if s.AI == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "AI features are not configured"})
	}

	if !s.Recommender.Start(orgID) {
		return c.JSON(http.StatusAccepted, map[string]interface{}{
			"message": "A recommendation run is already in progress",
			"job":     s.Recommender.Status(orgID),
		})
	}
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "Recommendation run started",
		"job":     s.Recommender.Status(orgID),
	})
}

func (s *Server) handleRecommendationStatus(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	return c.JSON(http.StatusOK, s.Recommender.Status(orgID))
}

func (s *Server) handleListRecommendations(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	limit := 20
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	recs, err := s.Store.ListRecommendations(c.Request().Context(), orgID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, recs)
}

type chatRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
	Mode    string `json:"mode"` // assistant (default) or editor

	// Capability toggles. Omitted means all enabled.
	Capabilities *capabilityToggles `json:"capabilities"`
}

type capabilityToggles struct {
	GrantSearch   bool `json:"grantSearch"`
	KnowledgeBase bool `json:"knowledgeBase"`
	OrgProfile    bool `json:"orgProfile"`
}

// handleAssistantChat streams the assistant's answer as plain text. The chat
// ID rides in the X-Chat-Id header so new conversations can be continued.
func (s *Server) handleAssistantChat(c echo.Context) error {
	orgID, err := auth.GetOrgIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	if s.AI == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "AI features are not configured"})
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil || req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message is required"})
	}

	ctx := c.Request().Context()

	chatID, history, err := s.loadOrCreateChat(c, orgID, req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Chat not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	org, err := s.Store.GetOrganization(ctx, orgID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	caps := agent.Capabilities{GrantSearch: true, KnowledgeBase: true, OrgProfile: true}
	if req.Capabilities != nil {
		caps = agent.Capabilities{
			GrantSearch:   req.Capabilities.GrantSearch,
			KnowledgeBase: req.Capabilities.KnowledgeBase,
			OrgProfile:    req.Capabilities.OrgProfile,
		}
	}
	system := agent.AssistantPrompt(org, caps)
	if req.Mode == "editor" {
		system = agent.EditorPrompt(org, caps)
	}

	// Disabled capabilities drop both the prompt block and the tool itself.
	var tools []agent.Tool
	if caps.GrantSearch {
		tools = append(tools, &agent.GrantSearchTool{Embedder: s.AI, Store: s.Store})
	}
	if caps.KnowledgeBase {
		tools = append(tools, &agent.KnowledgeBaseTool{KB: s.KB, OrgID: orgID})
	}
	runner := agent.New(s.AI.LLM(), system, tools)

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	resp.Header().Set("X-Chat-Id", chatID.String())
	resp.WriteHeader(http.StatusOK)

	answer, err := runner.Run(ctx, history, req.Message, func(_ context.Context, chunk []byte) error {
		if _, err := resp.Write(chunk); err != nil {
			return err
		}
		resp.Flush()
		return nil
	})
	if err != nil {
		// Headers are already out; surface the failure in the stream.
		io.WriteString(resp, "\n[assistant error: "+err.Error()+"]")
		c.Logger().Errorf("assistant run failed: %v", err)
		return nil
	}

	if err := s.Store.AppendChatMessage(ctx, chatID, "user", req.Message); err != nil {
		c.Logger().Errorf("persisting user message failed: %v", err)
	}
	if err := s.Store.AppendChatMessage(ctx, chatID, "assistant", answer); err != nil {
		c.Logger().Errorf("persisting assistant message failed: %v", err)
	}
	return nil
}

func (s *Server) loadOrCreateChat(c echo.Context, orgID uuid.UUID, req chatRequest) (uuid.UUID, []llms.MessageContent, error) {
	ctx := c.Request().Context()

	if req.ChatID != "" {
		chatID, err := uuid.Parse(req.ChatID)
		if err != nil {
			return uuid.Nil, nil, err
		}
		// History replays only for the chat's own organization.
		if _, err := s.Store.GetChat(ctx, orgID, chatID); err != nil {
			return uuid.Nil, nil, err
		}
		stored, err := s.Store.ListChatMessages(ctx, chatID)
		if err != nil {
			return uuid.Nil, nil, err
		}
		history := make([]llms.MessageContent, 0, len(stored))
		for _, m := range stored {
			role := llms.ChatMessageTypeHuman
			if m.Role == "assistant" {
				role = llms.ChatMessageTypeAI
			}
			history = append(history, llms.TextParts(role, m.Content))
		}
		return chatID, history, nil
	}

	title := req.Message
	if len(title) > 80 {
		title = title[:80]
	}
	chat, err := s.Store.CreateChat(ctx, orgID, title)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return chat.ID, nil, nil
}

// handlePDFExtract returns the text content of an uploaded PDF without
// storing anything. The editor uses it to pull RFP text into a document.
func (s *Server) handlePDFExtract(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "File is required"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cannot read file"})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cannot read file"})
	}

	text, err := docs.ExtractPDFText(data)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"text": text})
}
