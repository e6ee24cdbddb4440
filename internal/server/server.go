// Package server exposes the extraction pipeline over HTTP. Uploaded
// documents are extracted synchronously, persisted, and addressable by ID
// for later retrieval and comparison.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rezonia/invoice-extractor/internal/backend"
	"github.com/rezonia/invoice-extractor/internal/extractor"
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/storage"
)

// Config holds server configuration.
type Config struct {
	Address      string
	DBPath       string
	UploadDir    string
	OCRLanguage  string
	APIKey       string
	LLMBaseURL   string
	LLMModel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server is the HTTP API server.
type Server struct {
	config    *Config
	router    *gin.Engine
	extractor *extractor.Extractor
	store     storage.Store
	logger    *slog.Logger
}

// NewServer builds a server with the default extraction stack. An API key
// in the config swaps Tesseract for the LLM vision backend.
func NewServer(config *Config, logger *slog.Logger) (*Server, error) {
	store, err := storage.NewBoltStore(config.DBPath)
	if err != nil {
		return nil, err
	}

	opts := []extractor.Option{extractor.WithLogger(logger)}
	if config.APIKey != "" {
		var llmOpts []backend.LLMOption
		if config.LLMBaseURL != "" {
			llmOpts = append(llmOpts, backend.WithLLMBaseURL(config.LLMBaseURL))
		}
		if config.LLMModel != "" {
			llmOpts = append(llmOpts, backend.WithLLMModel(config.LLMModel))
		}
		opts = append(opts, extractor.WithOCR(
			backend.NewLLMOCR(config.APIKey, backend.NewFitzRasterizer(), llmOpts...)))
	} else if config.OCRLanguage != "" {
		opts = append(opts, extractor.WithOCR(
			backend.NewTesseractOCR(config.OCRLanguage, logger)))
	}

	return NewServerWith(config, extractor.New(opts...), store, logger), nil
}

// NewServerWith wires explicit dependencies.
func NewServerWith(config *Config, ext *extractor.Extractor, store storage.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config:    config,
		router:    router,
		extractor: ext,
		store:     store,
		logger:    logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/extract", s.handleExtract)
		v1.GET("/documents", s.handleListDocuments)
		v1.GET("/documents/:id", s.handleGetDocument)
		v1.DELETE("/documents/:id", s.handleDeleteDocument)
		v1.POST("/compare", s.handleCompare)
		v1.GET("/providers", s.handleProviders)
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's persistent resources.
func (s *Server) Close() error {
	return s.store.Close()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleExtract(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing file upload"})
		return
	}
	supplier := c.PostForm("supplier")

	uploadDir := s.config.UploadDir
	if uploadDir == "" {
		uploadDir = filepath.Join(os.TempDir(), "invoice-extractor-uploads")
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to prepare upload dir", Details: err.Error()})
		return
	}
	dst := filepath.Join(uploadDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to save upload", Details: err.Error()})
		return
	}
	defer os.Remove(dst)

	if err := backend.ValidatePDF(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid document", Details: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	result, err := s.extractor.ExtractInvoiceData(ctx, model.DocumentRef(dst), supplier)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "extraction failed", Details: err.Error()})
		return
	}
	// Uploads are transient; keep the original name in the stored record.
	result.Document = model.DocumentRef(file.Filename)

	record, err := s.store.Save(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to persist result", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{ID: record.ID, Result: result})
}

func (s *Server) handleListDocuments(c *gin.Context) {
	records, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list documents", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ListResponse{Documents: records, Count: len(records)})
}

func (s *Server) handleGetDocument(c *gin.Context) {
	record, err := s.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load document", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleDeleteDocument(c *gin.Context) {
	if err := s.store.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to delete document", Details: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCompare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "doc1 and doc2 are required"})
		return
	}

	r1, err := s.store.Get(req.Doc1)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "document not found", Details: req.Doc1})
		return
	}
	r2, err := s.store.Get(req.Doc2)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "document not found", Details: req.Doc2})
		return
	}

	c.JSON(http.StatusOK, CompareResponse{
		Doc1:       req.Doc1,
		Doc2:       req.Doc2,
		Comparison: s.extractor.Compare(r1.Result.ProcessedData, r2.Result.ProcessedData),
	})
}

func (s *Server) handleProviders(c *gin.Context) {
	c.JSON(http.StatusOK, ProvidersResponse{
		Providers: s.extractor.Providers(),
		Fallback:  s.extractor.Fallback(),
	})
}
