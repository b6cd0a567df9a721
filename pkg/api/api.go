// Package api implements the REST API for evaluating expressions and
// browsing evaluation history.
package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/rpncalc/pkg/batch"
	"github.com/lemonberrylabs/rpncalc/pkg/store"
)

// MaxBatchLines is the maximum number of lines accepted by one batch request.
const MaxBatchLines = 10000

// Server is the HTTP API server.
type Server struct {
	app     *fiber.App
	store   *store.Store
	workers int
}

// New creates a new API server. workers bounds the concurrency of batch
// requests.
func New(s *store.Store, workers int) *Server {
	srv := &Server{
		store:   s,
		workers: max(workers, 1),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Post("/v1/evaluate", srv.evaluate)
	app.Post("/v1/evaluate\\:batch", srv.evaluateBatch)
	app.Get("/v1/evaluations", srv.listEvaluations)
	app.Get("/v1/evaluations/:id", srv.getEvaluation)
	app.Delete("/v1/evaluations", srv.clearEvaluations)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

// --- Evaluation Handlers ---

type evaluateRequest struct {
	Expression string `json:"expression"`
	Mode       string `json:"mode"`
}

type batchRequest struct {
	Lines []string `json:"lines"`
	Mode  string   `json:"mode"`
}

func (s *Server) evaluate(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, 400, "invalid request body: "+err.Error())
	}
	if batch.IsBlank(req.Expression) {
		return errorResponse(c, 400, "expression is required")
	}
	mode, err := batch.ParseMode(req.Mode)
	if err != nil {
		return errorResponse(c, 400, err.Error())
	}

	rec := batch.NewProcessor(batch.WithMode(mode)).ProcessLine(1, req.Expression)
	ev := s.store.CreateEvaluation(mode, rec)
	return c.JSON(ev)
}

func (s *Server) evaluateBatch(c *fiber.Ctx) error {
	var req batchRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, 400, "invalid request body: "+err.Error())
	}
	if len(req.Lines) > MaxBatchLines {
		return errorResponse(c, 400, "too many lines in batch")
	}
	mode, err := batch.ParseMode(req.Mode)
	if err != nil {
		return errorResponse(c, 400, err.Error())
	}

	p := batch.NewProcessor(batch.WithMode(mode), batch.WithWorkers(s.workers))
	records, err := p.ProcessStrings(c.UserContext(), req.Lines)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return errorResponse(c, 499, err.Error())
		}
		return errorResponse(c, 500, err.Error())
	}

	results := make([]*store.Evaluation, len(records))
	for i, rec := range records {
		results[i] = s.store.CreateEvaluation(mode, rec)
	}
	return c.JSON(fiber.Map{
		"results": results,
	})
}

func (s *Server) getEvaluation(c *fiber.Ctx) error {
	ev, err := s.store.GetEvaluation(c.Params("id"))
	if err != nil {
		return errorResponse(c, 404, err.Error())
	}
	return c.JSON(ev)
}

func (s *Server) listEvaluations(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"evaluations": s.store.ListEvaluations(),
	})
}

func (s *Server) clearEvaluations(c *fiber.Ctx) error {
	s.store.Clear()
	return c.JSON(fiber.Map{})
}

// --- Helpers ---

func errorResponse(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": msg,
			"status":  statusName(code),
		},
	})
}

func statusName(code int) string {
	switch code {
	case 400:
		return "INVALID_ARGUMENT"
	case 404:
		return "NOT_FOUND"
	case 499:
		return "CANCELLED"
	default:
		return "INTERNAL"
	}
}
