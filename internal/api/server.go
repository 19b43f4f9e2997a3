// Package api wires the HTTP surface: grants catalog, bookmarks,
// applications, documents, organization profiles, and the AI endpoints.
package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/openfund/grantdesk/internal/ai"
	"github.com/openfund/grantdesk/internal/auth"
	"github.com/openfund/grantdesk/internal/cache"
	"github.com/openfund/grantdesk/internal/checklist"
	"github.com/openfund/grantdesk/internal/config"
	"github.com/openfund/grantdesk/internal/db"
	"github.com/openfund/grantdesk/internal/ingest"
	"github.com/openfund/grantdesk/internal/kb"
	"github.com/openfund/grantdesk/internal/recommend"
	"github.com/openfund/grantdesk/internal/storage"
)

type Server struct {
	Echo        *echo.Echo
	DB          *pgxpool.Pool
	Store       *db.Store
	AuthService *auth.Service
	AI          *ai.Client
	Storage     *storage.Service
	KB          *kb.Service
	Recommender *recommend.Service
	Checklist   *checklist.Generator
	Fetcher     ingest.Fetcher

	profileCache *cache.Cache
	cfg          *config.Config
}

func NewServer(pool *pgxpool.Pool, cfg *config.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{"X-Chat-Id"},
	}))

	store := db.NewStore(pool)

	aiClient, err := ai.NewClient(cfg.AI.APIKey, cfg.AI.ChatModel, cfg.AI.EmbeddingModel)
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			log.Println("AI features disabled: no API key configured")
		} else {
			log.Printf("AI client unavailable: %v", err)
		}
		aiClient = nil
	}

	storageSvc, err := storage.NewService(cfg.Storage)
	if err != nil {
		log.Printf("object storage unavailable: %v", err)
		storageSvc = nil
	}

	s := &Server{
		Echo:         e,
		DB:           pool,
		Store:        store,
		AuthService:  auth.NewService(pool),
		AI:           aiClient,
		Storage:      storageSvc,
		KB:           kb.NewService(store, aiClient),
		Recommender:  recommend.NewService(aiClient, store),
		Checklist:    &checklist.Generator{AI: aiClient, Store: store},
		Fetcher:      ingest.NewCollyFetcher(),
		profileCache: cache.New(cache.DefaultTTL),
		cfg:          cfg,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)

	api := s.Echo.Group("/api/v1")
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)
	api.GET("/stats", s.handleGetStats)

	protected := api.Group("")
	protected.Use(auth.Middleware)

	protected.GET("/grants", s.handleListGrants)
	protected.GET("/grants/:id", s.handleGetGrant)

	protected.GET("/bookmarks", s.handleListBookmarks)
	protected.POST("/bookmarks/:id", s.handleAddBookmark)
	protected.DELETE("/bookmarks/:id", s.handleRemoveBookmark)

	protected.GET("/applications", s.handleListApplications)
	protected.POST("/applications", s.handleCreateApplication)
	protected.POST("/applications/import", s.handleImportApplication)
	protected.GET("/applications/:id", s.handleGetApplication)
	protected.PATCH("/applications/:id", s.handleUpdateApplicationSnapshot)
	protected.PATCH("/applications/:id/status", s.handleUpdateApplicationStatus)
	protected.PATCH("/applications/:id/folder", s.handleSetApplicationFolder)
	protected.GET("/applications/:id/checklist", s.handleGetChecklist)
	protected.DELETE("/applications/:id", s.handleDeleteApplication)
	protected.GET("/applications/:id/documents", s.handleListApplicationDocuments)

	protected.GET("/folders", s.handleListFolders)
	protected.POST("/folders", s.handleCreateFolder)
	protected.PATCH("/folders/:id", s.handleUpdateFolder)
	protected.DELETE("/folders/:id", s.handleDeleteFolder)
	protected.GET("/folders/:id/documents", s.handleListFolderDocuments)

	protected.POST("/documents", s.handleCreateDocument)
	protected.POST("/documents/upload", s.handleUploadDocument)
	protected.GET("/documents/:id", s.handleGetDocument)
	protected.PUT("/documents/:id", s.handleUpdateDocument)
	protected.PATCH("/documents/:id/folder", s.handleMoveDocument)
	protected.DELETE("/documents/:id", s.handleDeleteDocument)

	protected.GET("/organization", s.handleGetOrganization)
	protected.PATCH("/organization", s.handleUpdateOrganization)
	protected.POST("/organization/plan-summary", s.handlePlanSummary)

	protected.POST("/ai/recommendations", s.handleStartRecommendations)
	protected.GET("/ai/recommendations/list", s.handleListRecommendations)
	protected.GET("/ai/recommendations/status", s.handleRecommendationStatus)

	protected.POST("/ai/assistant", s.handleAssistantChat)
	protected.POST("/pdf-extract", s.handlePDFExtract)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCreds) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.Store.GetStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Server.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // streaming chat responses
	}
	log.Printf("listening on %s", srv.Addr)
	return s.Echo.StartServer(srv)
}
