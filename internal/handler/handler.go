package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/dreamroute/internal/analytics"
	"github.com/pavelanni/dreamroute/internal/flow"
	"github.com/pavelanni/dreamroute/internal/model"
	"github.com/pavelanni/dreamroute/internal/responselog"
	"github.com/pavelanni/dreamroute/internal/riasec"
	"github.com/pavelanni/dreamroute/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store     *store.Store
	flow      flow.Definition
	bank      *riasec.Bank
	log       *responselog.Log
	analytics *analytics.Analyzer
	config    model.ServerConfig
	now       func() time.Time
}

// New creates a new Handler. an may be nil, in which case the admin page
// shows the raw log without the summary.
func New(s *store.Store, def flow.Definition, bank *riasec.Bank, log *responselog.Log, an *analytics.Analyzer, cfg model.ServerConfig) (*Handler, error) {
	if cfg.TopCategories <= 0 {
		cfg.TopCategories = 3
	}
	return &Handler{
		store:     s,
		flow:      def,
		bank:      bank,
		log:       log,
		analytics: an,
		config:    cfg,
		now:       time.Now,
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(h.csrfMiddleware)
	r.Use(h.loadUser)

	r.Get("/", h.handleIndex)
	r.Post("/start", h.handleStart)
	r.Get("/quiz", h.handleQuizPage)
	r.Post("/quiz", h.handleAnswer)
	r.Get("/result", h.handleResult)

	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	r.Get("/profiler", h.handleProfilerLanding)
	r.Post("/profiler/signup", h.handleSignup)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/profiler/quiz", h.handleProfilerQuestion)
		r.Post("/profiler/quiz", h.handleProfilerAnswer)
		r.Get("/profiler/results", h.handleProfilerResults)
		r.Get("/profiler/careers", h.handleProfilerCareers)
		r.Post("/profiler/restart", h.handleProfilerRestart)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Use(requireRole(model.UserRoleAdmin))
		r.Get("/admin", h.handleAdmin)
	})
}

// BasePathMiddleware stores the configured base path in the request context.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// path prefixes p with the base path.
func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

// localPath strips the base path from the request path.
func (h *Handler) localPath(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Path, h.config.BasePath)
}

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath + "/"
	}
	return "/"
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     h.cookiePath(),
		HttpOnly: httpOnly,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     h.cookiePath(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
	})
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "path", r.URL.Path, "error", err)
	}
}
