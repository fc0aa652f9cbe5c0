package handlers

import (
	"net/http"

	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

type loginResult struct {
	Achievements []models.Achievement `json:"achievements"`
	Profile      models.Profile       `json:"profile"`
}

type achievementView struct {
	models.Achievement
	Unlocked bool `json:"unlocked"`
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.Keeper.Engine.Profile())
}

// Handler: Track a daily login
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	unlocked := h.Keeper.Login(r.Context())
	h.respondJSON(w, http.StatusOK, loginResult{
		Achievements: h.recordUnlocked(unlocked),
		Profile:      h.Keeper.Engine.Profile(),
	})
}

// Handler: Full catalog with unlock flags, in catalog order
func (h *Handler) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	unlocked := map[string]bool{}
	for _, a := range h.Keeper.Engine.UnlockedAchievements() {
		unlocked[a.ID] = true
	}

	catalog := h.Keeper.Engine.Catalog()
	views := make([]achievementView, 0, len(catalog))
	for _, a := range catalog {
		views = append(views, achievementView{Achievement: a, Unlocked: unlocked[a.ID]})
	}
	h.respondJSON(w, http.StatusOK, views)
}

func (h *Handler) handleClearRecentAchievements(w http.ResponseWriter, r *http.Request) {
	drained := h.Keeper.Engine.ClearRecentAchievements(r.Context())
	h.respondJSON(w, http.StatusOK, map[string]any{"cleared": drained})
}

func (h *Handler) handleResetGamification(w http.ResponseWriter, r *http.Request) {
	h.Keeper.Engine.Reset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
