package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"notehub/internal/api"
	"notehub/internal/config"
	"notehub/internal/ingest"
	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/services"
)

const (
	maxUploadBytes  = 256 << 20
	shutdownTimeout = 5 * time.Second
	requestIDHeader = "X-Request-ID"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	app    *fiber.App

	mu       sync.Mutex
	listener net.Listener
}

// newAPIServer returns nil when paths.api_bind is empty; a nil server is a no-op.
func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}
	srv.app = srv.routes(cfg.Paths.APITokenHash)
	return srv, nil
}

func (s *apiServer) routes(tokenHash string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "notehub",
		DisableStartupMessage: true,
		BodyLimit:             maxUploadBytes,
		ReadTimeout:           2 * time.Minute,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           60 * time.Second,
		ErrorHandler:          s.handleError,
	})

	app.Use(s.requestContext)
	app.Use(authMiddleware(tokenHash, "/api/health"))

	app.Get("/api/health", s.handleHealth)
	app.Get("/api/status", s.handleStatus)
	app.Get("/api/notes", s.handleListNotes)
	app.Get("/api/notes/:id", s.handleGetNote)
	app.Post("/api/notes/audio", s.handleAddAudio)
	app.Post("/api/notes/text", s.handleAddText)
	return app
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.app.Listener(listener); err != nil {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.app.ShutdownWithTimeout(shutdownTimeout)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		s.logger.Warn("api server shutdown failed", logging.Error(err))
	}
	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()
}

func (s *apiServer) address() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// requestContext tags each request with a correlation id that flows into logs.
func (s *apiServer) requestContext(c *fiber.Ctx) error {
	rid := strings.TrimSpace(c.Get(requestIDHeader))
	if rid == "" {
		rid = uuid.NewString()
	}
	c.Set(requestIDHeader, rid)
	c.SetUserContext(services.WithRequestID(c.UserContext(), rid))
	return c.Next()
}

func (s *apiServer) handleHealth(c *fiber.Ctx) error {
	report := s.daemon.Health(c.UserContext())
	code := fiber.StatusOK
	if !report.Healthy() {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(report)
}

func (s *apiServer) handleStatus(c *fiber.Ctx) error {
	status := s.daemon.Status(c.UserContext())
	return c.JSON(api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		Store:        status.Store,
		LockFilePath: status.LockFilePath,
		Workflow:     api.FromStatusSummary(status.Workflow),
		Dependencies: api.FromDependencies(status.Dependencies),
	})
}

func (s *apiServer) handleListNotes(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", c.QueryInt("skip", 0))
	limit := c.QueryInt("limit", notes.DefaultListLimit)
	resp, err := s.daemon.ListNotes(c.UserContext(), offset, limit)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (s *apiServer) handleGetNote(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}
	note, err := s.daemon.DescribeNote(c.UserContext(), id)
	if err != nil {
		return err
	}
	if note == nil {
		return fiber.NewError(fiber.StatusNotFound, "note not found")
	}
	return c.JSON(api.NoteResponse{Note: *note})
}

func (s *apiServer) handleAddAudio(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field \"file\" is required")
	}
	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	var tags []string
	if form, err := c.MultipartForm(); err == nil {
		for _, raw := range form.Value["tags"] {
			tags = append(tags, notes.SplitTags(raw)...)
		}
	}

	note, err := s.daemon.AddAudio(c.UserContext(), ingest.AudioUpload{
		Filename: header.Filename,
		Body:     file,
		Title:    c.FormValue("title"),
		Tags:     tags,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(api.NoteResponse{Note: api.FromNote(note)})
}

func (s *apiServer) handleAddText(c *fiber.Ctx) error {
	var req api.CreateTextRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	note, err := s.daemon.AddText(c.UserContext(), ingest.TextInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(api.NoteResponse{Note: api.FromNote(note)})
}

// handleError maps fiber and service errors onto the JSON error envelope.
func (s *apiServer) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(api.ErrorResponse{Error: fe.Message})
	}

	details := services.Details(err)
	code := fiber.StatusInternalServerError
	switch details.Kind {
	case services.KindValidation:
		code = fiber.StatusBadRequest
	case services.KindNotFound:
		code = fiber.StatusNotFound
	}
	if errors.Is(err, notes.ErrNotFound) {
		code = fiber.StatusNotFound
	}

	logger := logging.WithContext(c.UserContext(), s.logger)
	if code >= fiber.StatusInternalServerError {
		logger.Error("api request failed",
			logging.String("method", c.Method()),
			logging.String("path", c.Path()),
			logging.String(logging.FieldErrorKind, string(details.Kind)),
			logging.Error(err),
		)
	}
	return c.Status(code).JSON(api.ErrorResponse{
		Error: details.Message,
		Kind:  string(details.Kind),
		Hint:  details.Hint,
	})
}
