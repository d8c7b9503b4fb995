package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pavelanni/dreamroute/internal/handler/views"
	"github.com/pavelanni/dreamroute/internal/model"
	"github.com/pavelanni/dreamroute/internal/riasec"
)

func (h *Handler) handleProfilerLanding(w http.ResponseWriter, r *http.Request) {
	if model.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, h.path("/profiler/quiz"), http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, views.ProfilerLandingPage("", "", h.config.AllowSignup))
}

// progress loads the profiler progress of the logged-in user.
func (h *Handler) progress(w http.ResponseWriter, r *http.Request) (*model.User, riasec.Progress, bool) {
	user := model.UserFromContext(r.Context())
	p, err := h.store.GetProfilerProgress(user.ID)
	if err != nil {
		slog.Error("failed to load profiler progress", "user", user.Username, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, p, false
	}
	return user, p, true
}

func (h *Handler) handleProfilerQuestion(w http.ResponseWriter, r *http.Request) {
	_, p, ok := h.progress(w, r)
	if !ok {
		return
	}
	total := h.bank.Len()
	if p.Done(total) {
		http.Redirect(w, r, h.path("/profiler/results"), http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, views.ProfilerQuestionPage(h.bank.Questions[p.Index], p.Index, total))
}

func (h *Handler) handleProfilerAnswer(w http.ResponseWriter, r *http.Request) {
	user, p, ok := h.progress(w, r)
	if !ok {
		return
	}
	total := h.bank.Len()
	if p.Done(total) {
		http.Redirect(w, r, h.path("/profiler/results"), http.StatusSeeOther)
		return
	}
	if idx, err := strconv.Atoi(r.FormValue("index")); err == nil && idx != p.Index {
		http.Redirect(w, r, h.path("/profiler/quiz"), http.StatusSeeOther)
		return
	}

	answer := r.FormValue("answer")
	if riasec.RatingValue(answer) == 0 {
		http.Error(w, "invalid answer", http.StatusBadRequest)
		return
	}

	p = p.Answer(answer)
	if err := h.store.SaveProfilerProgress(user.ID, p); err != nil {
		slog.Error("failed to save profiler progress", "user", user.Username, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if p.Done(total) {
		slog.Info("profiler completed", "user", user.Username)
		http.Redirect(w, r, h.path("/profiler/results"), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, h.path("/profiler/quiz"), http.StatusSeeOther)
}

// scores returns the sorted scores, or false after redirecting an unfinished participant.
func (h *Handler) scores(w http.ResponseWriter, r *http.Request) ([]riasec.CategoryScore, bool) {
	_, p, ok := h.progress(w, r)
	if !ok {
		return nil, false
	}
	if !p.Done(h.bank.Len()) {
		http.Redirect(w, r, h.path("/profiler/quiz"), http.StatusSeeOther)
		return nil, false
	}
	return riasec.Score(h.bank.Questions, p.Answers), true
}

func (h *Handler) handleProfilerResults(w http.ResponseWriter, r *http.Request) {
	scores, ok := h.scores(w, r)
	if !ok {
		return
	}
	render(w, r, http.StatusOK, views.ProfilerResultsPage(scores, riasec.Top(scores, h.config.TopCategories)))
}

func (h *Handler) handleProfilerCareers(w http.ResponseWriter, r *http.Request) {
	scores, ok := h.scores(w, r)
	if !ok {
		return
	}
	top := riasec.Top(scores, h.config.TopCategories)
	render(w, r, http.StatusOK, views.ProfilerCareersPage(h.bank.CareersFor(top)))
}

func (h *Handler) handleProfilerRestart(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	if err := h.store.ResetProfilerProgress(user.ID); err != nil {
		slog.Error("failed to reset profiler progress", "user", user.Username, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.path("/profiler/quiz"), http.StatusSeeOther)
}
