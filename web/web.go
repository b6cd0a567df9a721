// Package web provides the embedded web UI for browsing evaluation history.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/rpncalc/pkg/batch"
	"github.com/lemonberrylabs/rpncalc/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// recentLimit is how many evaluations the dashboard shows.
const recentLimit = 50

// Handler serves the web UI pages.
type Handler struct {
	store   *store.Store
	funcMap template.FuncMap
}

type pageData struct {
	NavActive string
	Data      any
}

// New creates a new web UI handler.
func New(s *store.Store) *Handler {
	return &Handler{
		store: s,
		funcMap: template.FuncMap{
			"shortName":  shortName,
			"timeAgo":    timeAgo,
			"formatTime": formatTime,
			"stateClass": stateClass,
			"stateIcon":  stateIcon,
			"truncate":   truncate,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, page string, navActive string, data any) error {
	// Parsed per page so the page-specific define blocks do not collide.
	tmpl := template.Must(
		template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page),
	)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pageData{NavActive: navActive, Data: data}); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.dashboard)
	app.Post("/ui/evaluate", h.evaluate)
	app.Get("/ui/evaluations/:id", h.evaluationDetail)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

type dashboardContent struct {
	Evaluations    []*store.Evaluation
	Total          int
	SucceededCount int
	FailedCount    int
	Expression     string
	Mode           string
}

type notFoundContent struct {
	Message string
}

func (h *Handler) dashboard(c *fiber.Ctx) error {
	evals := h.store.ListEvaluations()

	content := dashboardContent{Total: len(evals), Mode: string(batch.ModeInfix)}
	for _, ev := range evals {
		switch ev.State {
		case store.EvaluationSucceeded:
			content.SucceededCount++
		case store.EvaluationFailed:
			content.FailedCount++
		}
	}

	// Newest first.
	for i := len(evals) - 1; i >= 0 && len(content.Evaluations) < recentLimit; i-- {
		content.Evaluations = append(content.Evaluations, evals[i])
	}

	return h.render(c, "dashboard.html", "dashboard", content)
}

func (h *Handler) evaluate(c *fiber.Ctx) error {
	expression := c.FormValue("expression")
	mode, err := batch.ParseMode(c.FormValue("mode"))
	if err != nil || batch.IsBlank(expression) {
		return c.Redirect("/ui")
	}

	rec := batch.NewProcessor(batch.WithMode(mode)).ProcessLine(1, expression)
	ev := h.store.CreateEvaluation(mode, rec)
	return c.Redirect("/ui/evaluations/" + shortName(ev.Name))
}

func (h *Handler) evaluationDetail(c *fiber.Ctx) error {
	id := c.Params("id")
	ev, err := h.store.GetEvaluation(id)
	if err != nil {
		return h.render(c, "not_found.html", "", notFoundContent{
			Message: fmt.Sprintf("Evaluation '%s' not found", id),
		})
	}
	return h.render(c, "evaluation_detail.html", "dashboard", ev)
}

// --- Template Helpers ---

func shortName(fullName string) string {
	if i := strings.LastIndex(fullName, "/"); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
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
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func stateClass(state store.EvaluationState) string {
	switch state {
	case store.EvaluationSucceeded:
		return "state-succeeded"
	case store.EvaluationFailed:
		return "state-failed"
	default:
		return ""
	}
}

func stateIcon(state store.EvaluationState) template.HTML {
	switch state {
	case store.EvaluationSucceeded:
		return "&#10003;"
	case store.EvaluationFailed:
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
