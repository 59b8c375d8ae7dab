// Package web provides the embedded web UI for the rewriter service.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/serjsysoev/pipefold"
	"github.com/serjsysoev/pipefold/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the web UI pages.
type Handler struct {
	store   *store.Store
	funcMap template.FuncMap
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	NavActive string
	Data      interface{}
}

// New creates a new web UI handler.
func New(s *store.Store) *Handler {
	return &Handler{
		store: s,
		funcMap: template.FuncMap{
			"timeAgo":    timeAgo,
			"formatTime": formatTime,
			"stateClass": stateClass,
			"stateIcon":  stateIcon,
			"truncate":   truncate,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, page string, navActive string, data interface{}) error {
	// Parse templates fresh each time for the page-specific template
	// This avoids the Go template issue where define blocks conflict across pages
	tmpl := template.Must(
		template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page),
	)

	pd := pageData{
		NavActive: navActive,
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pd); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.dashboard)
	app.Get("/ui/pipelines", h.pipelineList)
	app.Get("/ui/pipelines/:pipeline", h.pipelineDetail)
	app.Get("/ui/playground", h.playground)
	app.Post("/ui/playground", h.playground)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

// --- Page Data Types ---

type dashboardContent struct {
	Pipelines      []*store.Pipeline
	RecentRewrites []*store.Rewrite
	SucceededCount int
	FailedCount    int
}

type pipelineListContent struct {
	Pipelines []*pipelineView
}

type pipelineView struct {
	*store.Pipeline
	RewriteCount int
}

type pipelineDetailContent struct {
	Pipeline *store.Pipeline
	Rewrites []*store.Rewrite
}

type playgroundContent struct {
	Source    string
	Canonical string
	Error     string
	Element   string
	Value     int
	Kept      bool
	Evaled    bool
}

type notFoundContent struct {
	Message string
}

// --- Page Handlers ---

func (h *Handler) dashboard(c *fiber.Ctx) error {
	pipelines := h.store.ListPipelines()

	sort.Slice(pipelines, func(i, j int) bool {
		return pipelines[i].UpdateTime.After(pipelines[j].UpdateTime)
	})

	var allRewrites []*store.Rewrite
	var succeeded, failed int

	for _, p := range pipelines {
		rewrites, err := h.store.ListRewrites(p.Name)
		if err != nil {
			continue
		}
		for _, rw := range rewrites {
			allRewrites = append(allRewrites, rw)
			switch rw.State {
			case store.RewriteSucceeded:
				succeeded++
			case store.RewriteFailed:
				failed++
			}
		}
	}

	sort.Slice(allRewrites, func(i, j int) bool {
		return allRewrites[i].CreateTime.After(allRewrites[j].CreateTime)
	})

	recent := allRewrites
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return h.render(c, "dashboard.html", "dashboard", dashboardContent{
		Pipelines:      pipelines,
		RecentRewrites: recent,
		SucceededCount: succeeded,
		FailedCount:    failed,
	})
}

func (h *Handler) pipelineList(c *fiber.Ctx) error {
	pipelines := h.store.ListPipelines()

	sort.Slice(pipelines, func(i, j int) bool {
		return pipelines[i].UpdateTime.After(pipelines[j].UpdateTime)
	})

	var views []*pipelineView
	for _, p := range pipelines {
		rewrites, _ := h.store.ListRewrites(p.Name)
		views = append(views, &pipelineView{
			Pipeline:     p,
			RewriteCount: len(rewrites),
		})
	}

	return h.render(c, "pipeline_list.html", "pipelines", pipelineListContent{
		Pipelines: views,
	})
}

func (h *Handler) pipelineDetail(c *fiber.Ctx) error {
	id := c.Params("pipeline")

	p, err := h.store.GetPipeline(id)
	if err != nil {
		return h.render(c, "not_found.html", "", notFoundContent{
			Message: fmt.Sprintf("Pipeline '%s' not found", id),
		})
	}

	rewrites, _ := h.store.ListRewrites(id)

	return h.render(c, "pipeline_detail.html", "pipelines", pipelineDetailContent{
		Pipeline: p,
		Rewrites: rewrites,
	})
}

func (h *Handler) playground(c *fiber.Ctx) error {
	content := playgroundContent{}

	if c.Method() == fiber.MethodPost {
		content.Source = c.FormValue("source")
		content.Element = c.FormValue("element")

		canonical, err := pipefold.Optimize(content.Source)
		if err != nil {
			content.Error = err.Error()
		} else {
			content.Canonical = canonical
			if content.Element != "" {
				if n, convErr := strconv.Atoi(content.Element); convErr != nil {
					content.Error = fmt.Sprintf("element must be an integer, got %q", content.Element)
				} else if value, kept, evalErr := pipefold.Apply(content.Source, n); evalErr != nil {
					content.Error = evalErr.Error()
				} else {
					content.Value = value
					content.Kept = kept
					content.Evaled = true
				}
			}
		}
	}

	return h.render(c, "playground.html", "playground", content)
}

// --- Template Helpers ---

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2006-01-02 15:04:05")
}

func stateClass(state store.RewriteState) string {
	switch state {
	case store.RewriteSucceeded:
		return "state-succeeded"
	case store.RewriteFailed:
		return "state-failed"
	default:
		return ""
	}
}

func stateIcon(state store.RewriteState) template.HTML {
	switch state {
	case store.RewriteSucceeded:
		return "&#10003;"
	case store.RewriteFailed:
		return "&#10007;"
	default:
		return "&#8226;"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
