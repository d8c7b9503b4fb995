package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/dreamroute/internal/handler/views"
	appI18n "github.com/pavelanni/dreamroute/internal/i18n"
	"github.com/pavelanni/dreamroute/internal/model"
)

const (
	sessionCookieName = "session"
	csrfCookieName    = "csrf_token"

	minPasswordLen = 6
)

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// csrfMiddleware issues a fresh token on every safe request and checks the
// double-submitted token on every other one.
func (h *Handler) csrfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			cookie, err := r.Cookie(csrfCookieName)
			if err != nil || cookie.Value == "" {
				slog.Warn("CSRF cookie missing", "path", r.URL.Path)
				http.Error(w, "csrf token missing", http.StatusForbidden)
				return
			}
			formToken := r.FormValue("csrf_token")
			if formToken == "" {
				slog.Warn("CSRF form token missing", "path", r.URL.Path)
				http.Error(w, "csrf token missing", http.StatusForbidden)
				return
			}
			if len(formToken) != len(cookie.Value) || subtle.ConstantTimeCompare([]byte(formToken), []byte(cookie.Value)) != 1 {
				slog.Warn("CSRF token mismatch", "path", r.URL.Path)
				http.Error(w, "invalid csrf token", http.StatusForbidden)
				return
			}
		}

		token, err := generateCSRFToken()
		if err != nil {
			slog.Error("failed to generate CSRF token", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		h.setCookie(w, csrfCookieName, token, false)
		ctx := model.ContextWithCSRFToken(r.Context(), token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loadUser puts the logged-in user, if any, into the request context.
func (h *Handler) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		authSess, err := h.store.GetAuthSession(cookie.Value)
		if err != nil {
			slog.Error("failed to get auth session", "error", err)
		}
		if authSess == nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.store.GetUserByID(authSess.UserID)
		if err != nil {
			slog.Error("failed to get user", "id", authSess.UserID, "error", err)
		}
		if user == nil || !user.Active {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(model.ContextWithUser(r.Context(), user)))
	})
}

// requireAuth rejects requests without a logged-in user.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if model.UserFromContext(r.Context()) == nil {
			h.redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireRole returns middleware that checks the user has one of the allowed roles.
func requireRole(allowed ...model.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := model.UserFromContext(r.Context())
			if user == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range allowed {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

func (h *Handler) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	p := h.localPath(r)
	if strings.HasPrefix(p, "/profiler") {
		http.Redirect(w, r, h.path("/profiler"), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, h.path("/login")+"?next="+url.QueryEscape(p), http.StatusSeeOther)
}

// safeNext accepts only local absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	return next
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, views.LoginPage("", safeNext(r.URL.Query().Get("next"))))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := safeNext(r.FormValue("next"))

	user, err := h.store.GetUserByUsername(username)
	if err != nil {
		slog.Error("failed to get user", "error", err)
		h.renderLoginError(w, r, next)
		return
	}
	if user == nil || !user.Active {
		h.renderLoginError(w, r, next)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		h.renderLoginError(w, r, next)
		return
	}

	if err := h.startAuthSession(w, user); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if next == "" {
		next = "/profiler/quiz"
		if user.Role == model.UserRoleAdmin {
			next = "/admin"
		}
	}
	http.Redirect(w, r, h.path(next), http.StatusSeeOther)
}

func (h *Handler) startAuthSession(w http.ResponseWriter, user *model.User) error {
	token, err := h.store.CreateAuthSession(user.ID)
	if err != nil {
		slog.Error("failed to create auth session", "user", user.Username, "error", err)
		return err
	}
	h.setCookie(w, sessionCookieName, token, true)
	slog.Info("user logged in", "user", user.Username, "role", user.Role)
	return nil
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		_ = h.store.DeleteAuthSession(cookie.Value)
	}
	h.clearCookie(w, sessionCookieName)
	http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
}

func (h *Handler) renderLoginError(w http.ResponseWriter, r *http.Request, next string) {
	msg := appI18n.T(r.Context(), "LoginError")
	if strings.HasPrefix(next, "/profiler") {
		render(w, r, http.StatusUnauthorized, views.ProfilerLandingPage(msg, "", h.config.AllowSignup))
		return
	}
	render(w, r, http.StatusUnauthorized, views.LoginPage(msg, next))
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fail := func(status int, msgID string) {
		render(w, r, status, views.ProfilerLandingPage("", appI18n.T(ctx, msgID), h.config.AllowSignup))
	}
	if !h.config.AllowSignup {
		fail(http.StatusForbidden, "SignupClosed")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || len(password) < minPasswordLen {
		fail(http.StatusBadRequest, "SignupInvalid")
		return
	}

	existing, err := h.store.GetUserByUsername(username)
	if err != nil {
		slog.Error("failed to get user", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		fail(http.StatusConflict, "SignupTaken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	user := model.User{
		Username:     username,
		DisplayName:  username,
		PasswordHash: string(hash),
		Role:         model.UserRoleParticipant,
		Active:       true,
	}
	user.ID, err = h.store.CreateUser(user)
	if err != nil {
		http.Error(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	if err := h.startAuthSession(w, &user); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.path("/profiler/quiz"), http.StatusSeeOther)
}
