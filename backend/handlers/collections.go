package handlers

import (
	"net/http"

	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

type collectionResult struct {
	Collection   models.Collection    `json:"collection"`
	Achievements []models.Achievement `json:"achievements"`
}

func (h *Handler) handleListCollections(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.Keeper.Store.ListCollections())
}

// Handler: Create collection
func (h *Handler) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var input models.Collection
	if !h.decodeJSON(w, r, &input) {
		return
	}

	c, unlocked, err := h.Keeper.CreateCollection(r.Context(), input)
	if err != nil {
		h.respondDomainError(w, err, "Failed to create collection")
		return
	}

	h.Metrics.IncrementCollectionsCreated()
	h.respondJSON(w, http.StatusCreated, collectionResult{Collection: c, Achievements: h.recordUnlocked(unlocked)})
}

// Handler: Update collection
func (h *Handler) handleUpdateCollection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch models.CollectionPatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}

	if err := h.Keeper.Store.UpdateCollection(r.Context(), id, patch); err != nil {
		h.respondDomainError(w, err, "Failed to update collection", "id", id)
		return
	}

	c, _ := h.Keeper.Store.GetCollection(id)
	h.respondJSON(w, http.StatusOK, c)
}

// Handler: Delete collection; prompts keep their collectionId
func (h *Handler) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.Keeper.Store.DeleteCollection(r.Context(), id); err != nil {
		h.respondDomainError(w, err, "Failed to delete collection", "id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListCollectionPrompts(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.Keeper.Store.GetPromptsByCollection(r.PathValue("id")))
}
