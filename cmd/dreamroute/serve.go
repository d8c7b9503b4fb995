package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/dreamroute/internal/analytics"
	"github.com/pavelanni/dreamroute/internal/flow"
	"github.com/pavelanni/dreamroute/internal/handler"
	appI18n "github.com/pavelanni/dreamroute/internal/i18n"
	"github.com/pavelanni/dreamroute/internal/model"
	"github.com/pavelanni/dreamroute/internal/responselog"
	"github.com/pavelanni/dreamroute/internal/riasec"
	"github.com/pavelanni/dreamroute/internal/store"
)

const adminUsername = "admin"

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the career quiz web server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "dreamroute.db", "SQLite database path")
	f.String("flow", "", "Question flow YAML/JSON file (empty = built-in career flow)")
	f.String("responses", "responses.csv", "CSV file completed quiz responses are appended to")
	f.String("profiler-questions", "", "Interest profiler questions CSV (empty = built-in)")
	f.String("profiler-careers", "", "Interest profiler careers CSV (empty = built-in)")
	f.StringP("lang", "l", "en", "Default UI language (en, ru)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /careers)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("admin-password", "", "Admin password (or set DREAMROUTE_ADMIN_PASSWORD)")
	f.Bool("allow-signup", true, "Let visitors create interest profiler accounts")
	f.Int("top-categories", 3, "Interest types shown on the profiler results page")
	f.Duration("quiz-ttl", 24*time.Hour, "Unfinished quiz sessions older than this are discarded at startup")
	addLogFlags(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	def, err := loadFlow(v.GetString("flow"))
	if err != nil {
		return err
	}
	previous, err := db.RecordFlowHash(def.Hash)
	if err != nil {
		return fmt.Errorf("record flow hash: %w", err)
	}
	if previous != "" && previous != def.Hash {
		slog.Warn("question flow changed since last start; in-progress quizzes on removed nodes will be reset",
			"previous", previous, "current", def.Hash)
	}

	bank, err := riasec.LoadBank(v.GetString("profiler-questions"), v.GetString("profiler-careers"))
	if err != nil {
		return fmt.Errorf("load profiler data: %w", err)
	}

	responses, err := responselog.Open(v.GetString("responses"))
	if err != nil {
		return fmt.Errorf("open response log: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	an, err := analytics.Open()
	if err != nil {
		slog.Warn("analytics unavailable, admin page will show the raw log only", "error", err)
		an = nil
	} else {
		defer an.Close()
	}

	if n, err := db.CleanupExpiredSessions(); err != nil {
		slog.Warn("failed to clean up auth sessions", "error", err)
	} else if n > 0 {
		slog.Info("removed expired auth sessions", "count", n)
	}
	if ttl := v.GetDuration("quiz-ttl"); ttl > 0 {
		if n, err := db.AbandonStaleQuizSessions(time.Now().Add(-ttl)); err != nil {
			slog.Warn("failed to discard stale quiz sessions", "error", err)
		} else if n > 0 {
			slog.Info("discarded stale quiz sessions", "count", n)
		}
	}

	basePath := normalizeBasePath(v.GetString("base-path"))

	cfg := model.ServerConfig{
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
		AllowSignup:   v.GetBool("allow-signup"),
		TopCategories: v.GetInt("top-categories"),
	}

	h, err := handler.New(db, def, bank, responses, an, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"flow_nodes", def.Table.Len(),
		"flow_hash", def.Hash,
		"profiler_questions", bank.Len(),
		"responses", responses.Path(),
		"base_path", basePath,
	)
	return http.ListenAndServe(addr, r)
}

func normalizeBasePath(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// loadFlow reads the flow file at path, or the built-in career flow when path is empty.
func loadFlow(path string) (flow.Definition, error) {
	def, err := flow.LoadOrDefault(path)
	if err != nil {
		return flow.Definition{}, fmt.Errorf("load flow: %w", err)
	}
	source := path
	if source == "" {
		source = "built-in"
	}
	slog.Info("loaded question flow", "source", source, "nodes", def.Table.Len(), "max_depth", def.Table.MaxDepth())
	return def, nil
}

// seedAdmin makes sure an admin account exists. A password that differs from
// the stored one replaces it, so the operator can rotate it from the environment.
func seedAdmin(db *store.Store, password string) error {
	if password == "" {
		count, err := db.UserCount(model.UserRoleAdmin)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return fmt.Errorf("admin password is required: set --admin-password flag or DREAMROUTE_ADMIN_PASSWORD env var")
	}

	existing, err := db.GetUserByUsername(adminUsername)
	if err != nil {
		return err
	}
	if existing != nil && existing.Role == model.UserRoleAdmin &&
		bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := db.EnsureAdmin(adminUsername, string(hash)); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	slog.Info("admin account ready", "username", adminUsername)
	return nil
}
