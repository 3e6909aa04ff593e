// Package rest exposes the curriculum workspace over HTTP/JSON.
package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/p-n-ai/curricuforge/internal/ai"
	"github.com/p-n-ai/curricuforge/internal/report"
	"github.com/p-n-ai/curricuforge/internal/workspace"
)

// UsageReporter reports accumulated AI token usage. *ai.Router satisfies it.
type UsageReporter interface {
	Usage() map[string]ai.Usage
}

// ReadinessCheck reports whether a dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// Container holds all dependencies for the router.
type Container struct {
	Engine     *workspace.Engine
	Tokens     *Tokens
	CookieName string
	Paginator  *report.Paginator
	Usage      UsageReporter
	Live       http.Handler              // optional websocket endpoint
	Checks     map[string]ReadinessCheck // run by /readyz
	Now        func() time.Time
}

// Handler serves the HTTP API.
type Handler struct {
	engine     *workspace.Engine
	tokens     *Tokens
	cookieName string
	paginator  *report.Paginator
	usage      UsageReporter
	checks     map[string]ReadinessCheck
	now        func() time.Time
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	h := &Handler{
		engine:     c.Engine,
		tokens:     c.Tokens,
		cookieName: c.CookieName,
		paginator:  c.Paginator,
		usage:      c.Usage,
		checks:     c.Checks,
		now:        c.Now,
	}
	if h.cookieName == "" {
		h.cookieName = "forge_session"
	}
	if h.paginator == nil {
		h.paginator = report.NewA4Paginator()
	}
	if h.now == nil {
		h.now = time.Now
	}

	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.Readyz).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/signup", h.Signup).Methods(http.MethodPost)

	// Signed-in routes
	private := api.NewRoute().Subrouter()
	private.Use(h.requireSession)

	private.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	private.HandleFunc("/session", h.Session).Methods(http.MethodGet)
	private.HandleFunc("/notices/{kind}/dismiss", h.Dismiss).Methods(http.MethodPost)
	private.HandleFunc("/usage", h.Usage).Methods(http.MethodGet)

	private.HandleFunc("/curricula", h.Generate).Methods(http.MethodPost)
	private.HandleFunc("/curricula", h.History).Methods(http.MethodGet)
	private.HandleFunc("/curricula/{id}", h.Get).Methods(http.MethodGet)
	private.HandleFunc("/curricula/{id}/reset", h.Reset).Methods(http.MethodPost)

	const topic = "/curricula/{id}/periods/{period:[0-9]+}/courses/{course:[0-9]+}/topics/{topic:[0-9]+}"
	private.HandleFunc(topic+"/toggle", h.Toggle).Methods(http.MethodPost)
	private.HandleFunc(topic+"/quiz", h.StartQuiz).Methods(http.MethodPost)
	private.HandleFunc(topic+"/quiz/grade", h.GradeQuiz).Methods(http.MethodPost)

	private.HandleFunc("/curricula/{id}/export.pdf", h.ExportPDF).Methods(http.MethodGet)
	private.HandleFunc("/curricula/{id}/export.xlsx", h.ExportWorkbook).Methods(http.MethodGet)
	private.HandleFunc("/curricula/{id}/export.yaml", h.ExportYAML).Methods(http.MethodGet)
	private.HandleFunc("/export.pdf", h.ExportPortfolio).Methods(http.MethodGet)
	private.HandleFunc("/export.xlsx", h.ExportPortfolioWorkbook).Methods(http.MethodGet)

	if c.Live != nil {
		private.Handle("/live", c.Live).Methods(http.MethodGet)
	}

	return r
}

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

// pathInt reads a numeric route variable. Routes only match digits, so the
// error case is overflow.
func pathInt(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(pathVar(r, name))
	return n, err == nil
}
