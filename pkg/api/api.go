// Package api implements the REST surface of the rewriter service: ad-hoc
// optimize and eval endpoints plus CRUD for named pipelines and their
// rewrite history.
package api

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/serjsysoev/pipefold/pkg/ast"
	"github.com/serjsysoev/pipefold/pkg/optimizer"
	"github.com/serjsysoev/pipefold/pkg/parser"
	"github.com/serjsysoev/pipefold/pkg/runtime"
	"github.com/serjsysoev/pipefold/pkg/store"
)

// Server is the HTTP API server.
type Server struct {
	app   *fiber.App
	store *store.Store
}

// New creates a new API server over the given store.
func New(s *store.Store) *Server {
	srv := &Server{store: s}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})

	// Ad-hoc chain endpoints
	app.Post("/v1/optimize", srv.optimizeChain)
	app.Post("/v1/eval", srv.evalChain)

	// Pipelines API
	app.Post("/v1/pipelines", srv.createPipeline)
	app.Get("/v1/pipelines", srv.listPipelines)
	app.Get("/v1/pipelines/:pipeline", srv.getPipeline)
	app.Patch("/v1/pipelines/:pipeline", srv.updatePipeline)
	app.Delete("/v1/pipelines/:pipeline", srv.deletePipeline)

	// Rewrites API
	app.Post("/v1/pipelines/:pipeline/rewrites", srv.createRewrite)
	app.Get("/v1/pipelines/:pipeline/rewrites", srv.listRewrites)
	app.Get("/v1/pipelines/:pipeline/rewrites/:rewrite", srv.getRewrite)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

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

// errorJSON writes the error envelope shared by every handler.
func errorJSON(c *fiber.Ctx, code int, status, format string, args ...interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": fmt.Sprintf(format, args...),
			"status":  status,
		},
	})
}

// chainError maps a parse or rewrite failure onto the envelope: the two
// user-visible kinds become 400 responses with their own statuses, a
// malformed-chain failure is a 500.
func chainError(c *fiber.Ctx, err error) error {
	switch {
	case ast.IsSyntaxError(err):
		return errorJSON(c, 400, "SYNTAX_ERROR", "%v", err)
	case ast.IsTypeError(err):
		return errorJSON(c, 400, "TYPE_ERROR", "%v", err)
	default:
		return errorJSON(c, 500, "INTERNAL", "%v", err)
	}
}

// --- Ad-hoc Handlers ---

type chainRequest struct {
	Source  string `json:"source"`
	Element int    `json:"element"`
}

func (s *Server) optimizeChain(c *fiber.Ctx) error {
	var req chainRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "invalid request body: %v", err)
	}

	canonical, err := rewriteSource(req.Source)
	if err != nil {
		return chainError(c, err)
	}

	return c.JSON(fiber.Map{
		"source":    req.Source,
		"canonical": canonical,
	})
}

func (s *Server) evalChain(c *fiber.Ctx) error {
	var req chainRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "invalid request body: %v", err)
	}

	chain, err := parser.Parse(req.Source)
	if err != nil {
		return chainError(c, err)
	}
	value, kept, err := runtime.Apply(chain, req.Element)
	if err != nil {
		return chainError(c, err)
	}

	resp := fiber.Map{
		"element": req.Element,
		"kept":    kept,
	}
	if kept {
		resp["value"] = value
	}
	return c.JSON(resp)
}

// --- Pipeline Handlers ---

type pipelineRequest struct {
	Source string `json:"source"`
}

func (s *Server) createPipeline(c *fiber.Ctx) error {
	pipelineID := c.Query("pipelineId")
	if pipelineID == "" {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "pipelineId query parameter is required")
	}
	if !validPipelineID.MatchString(pipelineID) {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "invalid pipeline ID %q", pipelineID)
	}

	var req pipelineRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "invalid request body: %v", err)
	}
	if req.Source == "" {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "source is required")
	}

	canonical, err := rewriteSource(req.Source)
	if err != nil {
		return chainError(c, err)
	}

	p, err := s.store.CreatePipeline(pipelineID, req.Source, canonical)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return errorJSON(c, 409, "ALREADY_EXISTS", "%v", err)
		}
		return errorJSON(c, 500, "INTERNAL", "%v", err)
	}

	return c.JSON(pipelineToJSON(p))
}

func (s *Server) getPipeline(c *fiber.Ctx) error {
	p, err := s.store.GetPipeline(c.Params("pipeline"))
	if err != nil {
		return errorJSON(c, 404, "NOT_FOUND", "%v", err)
	}
	return c.JSON(pipelineToJSON(p))
}

func (s *Server) listPipelines(c *fiber.Ctx) error {
	pipelines := s.store.ListPipelines()

	items := make([]fiber.Map, len(pipelines))
	for i, p := range pipelines {
		items[i] = pipelineToJSON(p)
	}

	return c.JSON(fiber.Map{
		"pipelines": items,
	})
}

func (s *Server) updatePipeline(c *fiber.Ctx) error {
	var req pipelineRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "invalid request body: %v", err)
	}
	if req.Source == "" {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "source is required")
	}

	canonical, err := rewriteSource(req.Source)
	if err != nil {
		return chainError(c, err)
	}

	p, err := s.store.UpdatePipeline(c.Params("pipeline"), req.Source, canonical)
	if err != nil {
		return errorJSON(c, 404, "NOT_FOUND", "%v", err)
	}

	return c.JSON(pipelineToJSON(p))
}

func (s *Server) deletePipeline(c *fiber.Ctx) error {
	if err := s.store.DeletePipeline(c.Params("pipeline")); err != nil {
		return errorJSON(c, 404, "NOT_FOUND", "%v", err)
	}
	return c.JSON(fiber.Map{})
}

// --- Rewrite Handlers ---

func (s *Server) createRewrite(c *fiber.Ctx) error {
	p, err := s.store.GetPipeline(c.Params("pipeline"))
	if err != nil {
		return errorJSON(c, 404, "NOT_FOUND", "%v", err)
	}

	result, rewriteErr := rewriteSource(p.Source)
	rw, err := s.store.RecordRewrite(p.Name, p.Source, result, rewriteErr)
	if err != nil {
		return errorJSON(c, 500, "INTERNAL", "%v", err)
	}

	return c.JSON(rewriteToJSON(rw))
}

func (s *Server) listRewrites(c *fiber.Ctx) error {
	rewrites, err := s.store.ListRewrites(c.Params("pipeline"))
	if err != nil {
		return errorJSON(c, 404, "NOT_FOUND", "%v", err)
	}

	items := make([]fiber.Map, len(rewrites))
	for i, rw := range rewrites {
		items[i] = rewriteToJSON(rw)
	}

	return c.JSON(fiber.Map{
		"rewrites": items,
	})
}

func (s *Server) getRewrite(c *fiber.Ctx) error {
	rw, err := s.store.GetRewrite(c.Params("pipeline"), c.Params("rewrite"))
	if err != nil {
		return errorJSON(c, 404, "NOT_FOUND", "%v", err)
	}
	return c.JSON(rewriteToJSON(rw))
}

// --- Directory Loading ---

var validPipelineID = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,63}$`)

// LoadDir registers every .chain file in dir as a pipeline. The file name
// (sans extension) becomes the pipeline ID; each file holds one chain on a
// single line. Invalid files are logged and skipped.
func (s *Server) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading pipelines directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".chain" {
			continue
		}

		pipelineID := strings.TrimSuffix(name, ".chain")
		if !validPipelineID.MatchString(pipelineID) {
			slog.Warn("skipping file: invalid pipeline ID", "file", name, "id", pipelineID)
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read file", "file", name, "error", err)
			continue
		}

		source := strings.TrimSpace(string(data))
		canonical, err := rewriteSource(source)
		if err != nil {
			slog.Warn("could not rewrite chain", "file", name, "error", err)
			continue
		}

		if _, err := s.store.CreatePipeline(pipelineID, source, canonical); err != nil {
			slog.Warn("could not register pipeline", "file", name, "error", err)
			continue
		}

		loaded++
		slog.Info("loaded pipeline", "id", pipelineID, "file", name)
	}

	slog.Info("pipeline directory loaded", "dir", dir, "count", loaded)
	return nil
}

// --- Helpers ---

// rewriteSource parses and rewrites a chain, returning its canonical
// rendering.
func rewriteSource(source string) (string, error) {
	chain, err := parser.Parse(source)
	if err != nil {
		return "", err
	}
	folded, err := optimizer.Optimize(chain)
	if err != nil {
		return "", err
	}
	return folded.Render()
}

func pipelineToJSON(p *store.Pipeline) fiber.Map {
	return fiber.Map{
		"name":       p.Name,
		"source":     p.Source,
		"canonical":  p.Canonical,
		"revisionId": p.RevisionID,
		"createTime": p.CreateTime.Format(time.RFC3339),
		"updateTime": p.UpdateTime.Format(time.RFC3339),
	}
}

func rewriteToJSON(rw *store.Rewrite) fiber.Map {
	result := fiber.Map{
		"name":       rw.Name,
		"pipeline":   rw.Pipeline,
		"state":      rw.State,
		"source":     rw.Source,
		"createTime": rw.CreateTime.Format(time.RFC3339),
	}
	if rw.Result != "" {
		result["result"] = rw.Result
	}
	if rw.Error != "" {
		result["error"] = rw.Error
	}
	return result
}
