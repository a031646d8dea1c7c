// SPDX-License-Identifier: Apache-2.0

// Package server exposes the extraction pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/talentsift/resume-extract/internal/lexicon"
	"github.com/talentsift/resume-extract/internal/pipeline"
)

// Config configures a Server. Zero values are replaced by defaults.
type Config struct {
	Extractor *pipeline.Extractor
	Lexicon   *lexicon.Lexicon

	// BodyLimit caps a whole request body (default: 50 MiB).
	BodyLimit int
	// MaxFileSize caps every file expanded from an uploaded zip
	// (default: BodyLimit).
	MaxFileSize int64
	// TempDir holds uploads while they are processed (default: os.TempDir()).
	TempDir string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Extractor == nil {
		c.Extractor = pipeline.New(pipeline.Config{Logger: c.Logger})
	}
	if c.Lexicon == nil {
		c.Lexicon = lexicon.Default()
	}
	if c.BodyLimit <= 0 {
		c.BodyLimit = 50 * 1024 * 1024
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = int64(c.BodyLimit)
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
}

// Server is the HTTP front end of the extractor.
type Server struct {
	cfg    Config
	app    *fiber.App
	logger *slog.Logger
}

// New creates a Server with all routes registered.
func New(cfg Config) *Server {
	cfg.defaults()
	s := &Server{cfg: cfg, logger: cfg.Logger}
	s.app = fiber.New(fiber.Config{
		AppName:               "resume-extract",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(s.logRequests)
	s.register()
	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) register() {
	s.app.Get("/health", s.health)
	s.app.Post("/upload", s.upload)
	s.app.Post("/upload-resumes", s.uploadResumes)
	s.app.Post("/export-csv", s.exportCSV)
	s.app.Post("/export-xlsx", s.exportXLSX)
	s.app.Put("/candidates/:id", s.updateCandidate)
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() { errc <- s.app.Listen(addr) }()
	s.logger.Info("http.listen", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.logger.Info("http.shutdown")
		return s.app.ShutdownWithTimeout(10 * time.Second)
	}
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	s.logger.Info("http.request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return err
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

func respondError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(errorResponse{Error: msg})
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("http.failed", "path", c.Path(), "err", err)
	}
	return respondError(c, code, err.Error())
}
