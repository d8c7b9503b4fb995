package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pavelanni/dreamroute/internal/flow"
	"github.com/pavelanni/dreamroute/internal/handler/views"
	appI18n "github.com/pavelanni/dreamroute/internal/i18n"
	"github.com/pavelanni/dreamroute/internal/model"
	"github.com/pavelanni/dreamroute/internal/responselog"
)

const quizCookieName = "quiz"

// currentQuiz loads the quiz session named by the cookie, or nil.
func (h *Handler) currentQuiz(r *http.Request) (*model.QuizSession, error) {
	cookie, err := r.Cookie(quizCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	return h.store.GetQuizSession(cookie.Value)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	q, err := h.currentQuiz(r)
	if err != nil {
		slog.Error("failed to load quiz session", "error", err)
	}
	if q != nil && q.Status == model.QuizInProgress {
		if err := h.store.DeleteQuizSession(q.ID); err != nil {
			slog.Error("failed to drop quiz session", "id", q.ID, "error", err)
		}
	}
	h.clearCookie(w, quizCookieName)
	render(w, r, http.StatusOK, views.IndexPage())
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	// Contact details are optional.
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = responselog.AnonymousName
	}
	email := strings.TrimSpace(r.FormValue("email"))

	id, err := h.store.CreateQuizSession(name, email, flow.Start(h.flow.Table))
	if err != nil {
		slog.Error("failed to create quiz session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	slog.Info("quiz started", "session", id)
	h.setCookie(w, quizCookieName, id, true)
	http.Redirect(w, r, h.path("/quiz"), http.StatusSeeOther)
}

func (h *Handler) handleQuizPage(w http.ResponseWriter, r *http.Request) {
	q, err := h.currentQuiz(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if q == nil {
		http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
		return
	}
	if q.State.Done() {
		http.Redirect(w, r, h.path("/result"), http.StatusSeeOther)
		return
	}

	node, ok := h.flow.Table.Node(q.State.Current)
	if !ok {
		h.resetConflict(w, r, q, flow.ErrUnknownNode)
		return
	}
	render(w, r, http.StatusOK, views.QuizPage(node, len(q.State.Steps)+1, h.flow.Table.MaxDepth()))
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	q, err := h.currentQuiz(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if q == nil {
		http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
		return
	}
	if q.State.Done() {
		http.Redirect(w, r, h.path("/result"), http.StatusSeeOther)
		return
	}
	// A resubmitted form from an earlier question is ignored.
	if node := r.FormValue("node"); node != "" && flow.NodeID(node) != q.State.Current {
		slog.Debug("stale quiz answer ignored", "session", q.ID, "node", node, "current", q.State.Current)
		http.Redirect(w, r, h.path("/quiz"), http.StatusSeeOther)
		return
	}

	answer := r.FormValue("answer")
	next, err := h.flow.Table.Step(q.State, answer)
	if errors.Is(err, flow.ErrUnknownNode) {
		h.resetConflict(w, r, q, err)
		return
	}
	if err != nil {
		slog.Error("failed to advance quiz", "session", q.ID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if !next.Done() {
		if err := h.store.SaveQuizState(q.ID, next); err != nil {
			slog.Error("failed to save quiz state", "session", q.ID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, h.path("/quiz"), http.StatusSeeOther)
		return
	}

	// Claim the completion first so a double submit logs the response once.
	field := h.flow.Classifier.ClassifyState(next)
	won, err := h.store.CompleteQuizSession(q.ID, next, field)
	if err != nil {
		slog.Error("failed to complete quiz session", "session", q.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !won {
		slog.Debug("quiz already completed", "session", q.ID)
		http.Redirect(w, r, h.path("/result"), http.StatusSeeOther)
		return
	}
	err = h.log.Append(responselog.CompletedResponse{
		Name:      q.Name,
		Email:     q.Email,
		Timestamp: h.now(),
		Steps:     next.Answers(),
		Field:     field,
	})
	if err != nil {
		slog.Error("failed to append response", "session", q.ID, "error", err)
		if err := h.store.ReopenQuizSession(q.ID, q.State); err != nil {
			slog.Error("failed to reopen quiz session", "session", q.ID, "error", err)
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	slog.Info("quiz completed", "session", q.ID, "steps", len(next.Steps), "field", field)
	http.Redirect(w, r, h.path("/result"), http.StatusSeeOther)
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	q, err := h.currentQuiz(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if q == nil {
		http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
		return
	}
	if !q.State.Done() {
		http.Redirect(w, r, h.path("/quiz"), http.StatusSeeOther)
		return
	}

	prompts := make(map[flow.NodeID]string, len(q.State.Steps))
	for _, s := range q.State.Steps {
		if n, ok := h.flow.Table.Node(s.Node); ok {
			prompts[s.Node] = n.Prompt
		}
	}
	render(w, r, http.StatusOK, views.ResultPage(q.Name, q.Field, q.State.Answers(), prompts))
}

// resetConflict handles a stored traversal pointing at a node the served flow
// does not have: the session is dropped and the participant starts over.
func (h *Handler) resetConflict(w http.ResponseWriter, r *http.Request, q *model.QuizSession, cause error) {
	slog.Error("quiz state references unknown node; resetting",
		"session", q.ID, "node", q.State.Current, "error", cause)
	if err := h.store.DeleteQuizSession(q.ID); err != nil {
		slog.Error("failed to drop quiz session", "session", q.ID, "error", err)
	}
	h.clearCookie(w, quizCookieName)
	ctx := r.Context()
	render(w, r, http.StatusConflict, views.NoticePage(
		appI18n.T(ctx, "NavHome"),
		appI18n.T(ctx, "FlowChanged"),
		"/",
		appI18n.T(ctx, "StartOver"),
	))
}
