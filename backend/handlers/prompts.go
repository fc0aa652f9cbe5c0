package handlers

import (
	"net/http"
	"strconv"

	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

// promptResult is returned by mutations that can unlock achievements
type promptResult struct {
	Prompt       models.Prompt        `json:"prompt"`
	VersionID    string               `json:"versionId,omitempty"`
	Achievements []models.Achievement `json:"achievements"`
}

func (h *Handler) recordUnlocked(unlocked []models.Achievement) []models.Achievement {
	if unlocked == nil {
		return []models.Achievement{}
	}
	h.Metrics.AddAchievementsUnlocked(len(unlocked))
	return unlocked
}

// Handler: Create prompt
func (h *Handler) handleCreatePrompt(w http.ResponseWriter, r *http.Request) {
	var input models.PromptDraft
	if !h.decodeJSON(w, r, &input) {
		return
	}

	p, unlocked, err := h.Keeper.CreatePrompt(r.Context(), input)
	if err != nil {
		h.respondDomainError(w, err, "Failed to create prompt")
		return
	}

	h.Metrics.IncrementPromptsCreated()
	h.respondJSON(w, http.StatusCreated, promptResult{Prompt: p, Achievements: h.recordUnlocked(unlocked)})
}

// paginate applies the limit and offset query parameters. A limit of 0 means no limit.
func paginate(r *http.Request, prompts []models.Prompt) []models.Prompt {
	limit := 0
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if val, err := strconv.Atoi(limitStr); err == nil && val >= 0 {
			limit = val
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if val, err := strconv.Atoi(offsetStr); err == nil && val >= 0 {
			offset = val
		}
	}

	if offset >= len(prompts) {
		return []models.Prompt{}
	}
	prompts = prompts[offset:]
	if limit > 0 && limit < len(prompts) {
		prompts = prompts[:limit]
	}
	return prompts
}

// search runs the plain or fuzzy search selected by the fuzzy query parameter
func (h *Handler) search(r *http.Request, q string) []models.Prompt {
	if fuzzy, _ := strconv.ParseBool(r.URL.Query().Get("fuzzy")); fuzzy {
		return h.Keeper.Store.FuzzySearchPrompts(q)
	}
	return h.Keeper.Store.SearchPrompts(q)
}

// Handler: List prompts, optionally filtered by q, collection and category
func (h *Handler) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	s := h.Keeper.Store

	var results []models.Prompt
	switch {
	case query.Get("q") != "":
		results = h.search(r, query.Get("q"))
	case query.Get("collection") != "":
		results = s.GetPromptsByCollection(query.Get("collection"))
	case query.Get("category") != "":
		results = s.GetPromptsByCategory(query.Get("category"))
	default:
		results = s.ListPrompts()
	}

	if c := query.Get("collection"); c != "" {
		results = filter(results, func(p models.Prompt) bool { return p.CollectionID == c })
	}
	if c := query.Get("category"); c != "" {
		results = filter(results, func(p models.Prompt) bool { return p.Category == c })
	}

	h.respondJSON(w, http.StatusOK, paginate(r, results))
}

func filter(prompts []models.Prompt, keep func(models.Prompt) bool) []models.Prompt {
	out := []models.Prompt{}
	for _, p := range prompts {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Handler: Get prompt by id
func (h *Handler) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p, ok := h.Keeper.Store.GetPromptByID(id)
	if !ok {
		h.respondError(w, http.StatusNotFound, "prompt not found")
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

// Handler: Update prompt fields (versions are untouched)
func (h *Handler) handleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch models.PromptPatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}

	p, err := h.Keeper.UpdatePrompt(r.Context(), id, patch)
	if err != nil {
		h.respondDomainError(w, err, "Failed to update prompt", "id", id)
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

// Handler: Delete prompt
func (h *Handler) handleDeletePrompt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.Keeper.Store.DeletePrompt(r.Context(), id); err != nil {
		h.respondDomainError(w, err, "Failed to delete prompt", "id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Handler: Record a use
func (h *Handler) handleUsePrompt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p, unlocked, err := h.Keeper.UsePrompt(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err, "Failed to use prompt", "id", id)
		return
	}

	h.Metrics.IncrementPromptsUsed()
	h.respondJSON(w, http.StatusOK, promptResult{Prompt: p, Achievements: h.recordUnlocked(unlocked)})
}

// Handler: Toggle favorite
func (h *Handler) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	favorite := h.Keeper.Store.ToggleFavorite(r.Context(), id)
	h.respondJSON(w, http.StatusOK, map[string]any{"id": id, "favorite": favorite})
}

// Handler: List versions
func (h *Handler) handleListVersions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p, ok := h.Keeper.Store.GetPromptByID(id)
	if !ok {
		h.respondError(w, http.StatusNotFound, "prompt not found")
		return
	}

	h.respondJSON(w, http.StatusOK, p.Versions)
}

// Handler: Create version
func (h *Handler) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var input models.VersionDraft
	if !h.decodeJSON(w, r, &input) {
		return
	}

	p, versionID, unlocked, err := h.Keeper.AddVersion(r.Context(), id, input)
	if err != nil {
		h.respondDomainError(w, err, "Failed to create version", "id", id)
		return
	}

	h.Metrics.IncrementPromptVersionsCreated()
	h.respondJSON(w, http.StatusCreated, promptResult{
		Prompt:       p,
		VersionID:    versionID,
		Achievements: h.recordUnlocked(unlocked),
	})
}

// Handler: Activate version
func (h *Handler) handleActivateVersion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	versionID := r.PathValue("versionId")

	if err := h.Keeper.Store.SetActivePromptVersion(r.Context(), id, versionID); err != nil {
		h.respondDomainError(w, err, "Failed to activate version", "id", id, "version", versionID)
		return
	}

	p, _ := h.Keeper.Store.GetPromptByID(id)
	h.respondJSON(w, http.StatusOK, p)
}

// Handler: Delete version
func (h *Handler) handleDeleteVersion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	versionID := r.PathValue("versionId")

	if err := h.Keeper.Store.DeletePromptVersion(r.Context(), id, versionID); err != nil {
		h.respondDomainError(w, err, "Failed to delete version", "id", id, "version", versionID)
		return
	}

	p, _ := h.Keeper.Store.GetPromptByID(id)
	h.respondJSON(w, http.StatusOK, p)
}

func (h *Handler) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.Keeper.Store.GetFavoritePrompts())
}

func (h *Handler) handleListRecent(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.Keeper.Store.GetRecentPrompts())
}

// Handler: Search; an empty q yields an empty list
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, paginate(r, h.search(r, r.URL.Query().Get("q"))))
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.Keeper.Store.Categories())
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.Keeper.Store.Stats())
}

// Handler: Clear prompts and collections
func (h *Handler) handleClearData(w http.ResponseWriter, r *http.Request) {
	h.Keeper.Store.ClearAllData(r.Context())
	h.Logger.Info("all prompt data cleared")
	w.WriteHeader(http.StatusNoContent)
}
