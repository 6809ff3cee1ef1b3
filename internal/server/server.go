// Package server provides the HTTP API for Yomitori.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/yomitori/internal/config"
	"github.com/hyperjump/yomitori/internal/export"
	"github.com/hyperjump/yomitori/internal/extract"
	"github.com/hyperjump/yomitori/internal/keyword"
	"github.com/hyperjump/yomitori/internal/models"
	"github.com/hyperjump/yomitori/internal/session"
	"github.com/hyperjump/yomitori/internal/storage"
	"github.com/hyperjump/yomitori/internal/vision"
)

// Server is the HTTP server for the Yomitori API.
type Server struct {
	store     storage.Store
	index     *keyword.Index
	sessions  *session.Store
	extractor *extract.Extractor
	assembler *export.Assembler
	model     vision.Model
	modelErr  error
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. model may be nil
// together with a non-nil modelErr; extraction endpoints then report a
// configuration error until the server is restarted with credentials.
func NewServer(
	store storage.Store,
	index *keyword.Index,
	sessions *session.Store,
	model vision.Model,
	modelErr error,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	s := &Server{
		store:     store,
		index:     index,
		sessions:  sessions,
		assembler: export.NewAssembler(logger),
		model:     model,
		modelErr:  modelErr,
		config:    cfg,
		logger:    logger,
	}
	if model != nil {
		s.extractor = extract.NewExtractor(model, logger)
	}
	return s
}

// Router assembles the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Post("/api/v1/auth/register", s.handleRegister)
	r.Post("/api/v1/auth/login", s.handleLogin)
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Post("/api/v1/auth/logout", s.handleLogout)
		r.Get("/api/v1/status", s.handleStatus)

		r.Post("/api/v1/extract", s.handleExtractAll)
		r.Post("/api/v1/extract/one", s.handleExtractOne)
		r.Get("/api/v1/session/items", s.handleSessionItems)
		r.Put("/api/v1/session/items/{index}", s.handleEditItem)
		r.Delete("/api/v1/session", s.handleClearSession)

		r.Post("/api/v1/documents", s.handleSaveDocument)
		r.Get("/api/v1/documents", s.handleListDocuments)
		r.Get("/api/v1/documents/search", s.handleSearchDocuments)
		r.Delete("/api/v1/documents/{id}", s.handleDeleteDocument)
		r.Get("/api/v1/documents/{id}/export/{format}", s.handleExportSaved)

		r.Post("/api/v1/export/{format}", s.handleExportSession)
	})

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// defaultFormatting maps the configured export baseline into a request-level
// formatting config.
func (s *Server) defaultFormatting() models.FormattingConfig {
	e := s.config.Export
	m := e.MarginInches
	return models.FormattingConfig{
		FontName:    e.FontName,
		FontSize:    e.FontSize,
		LineSpacing: e.LineSpacing,
		Margins:     models.Margins{Top: m, Bottom: m, Left: m, Right: m},
	}
}
