package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

type contentInput struct {
	Content string `json:"content"`
}

type apiKeyInput struct {
	Key string `json:"key"`
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.Settings.Get())
}

// Handler: Update AI settings
func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.AISettingsPatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}

	updated, err := h.Settings.Update(r.Context(), patch)
	if err != nil {
		h.respondDomainError(w, err, "Failed to update settings")
		return
	}

	h.respondJSON(w, http.StatusOK, updated)
}

// Handler: Reset settings to defaults, keeping API keys
func (h *Handler) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.Settings.Reset(r.Context()))
}

// Handler: Store an API key
func (h *Handler) handleUpdateAPIKey(w http.ResponseWriter, r *http.Request) {
	provider := models.Provider(r.PathValue("provider"))

	var input apiKeyInput
	if !h.decodeJSON(w, r, &input) {
		return
	}

	if err := h.Settings.UpdateAPIKey(r.Context(), provider, input.Key); err != nil {
		h.respondDomainError(w, err, "Failed to update API key", "provider", provider)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeContent reads a non-blank {"content": ...} body
func (h *Handler) decodeContent(w http.ResponseWriter, r *http.Request) (string, bool) {
	var input contentInput
	if !h.decodeJSON(w, r, &input) {
		return "", false
	}
	if strings.TrimSpace(input.Content) == "" {
		h.respondError(w, http.StatusBadRequest, "content cannot be empty")
		return "", false
	}
	return input.Content, true
}

// runAI counts the call and maps its error, if any. It reports whether the call succeeded.
func (h *Handler) runAI(ctx context.Context, w http.ResponseWriter, operation string, call func(context.Context) error) bool {
	h.Metrics.IncrementAIRequests()
	if err := call(ctx); err != nil {
		h.Metrics.IncrementAIErrors()
		h.respondDomainError(w, err, "AI request failed", "operation", operation)
		return false
	}
	return true
}

func (h *Handler) handleGenerateTitle(w http.ResponseWriter, r *http.Request) {
	content, ok := h.decodeContent(w, r)
	if !ok {
		return
	}

	var title string
	if !h.runAI(r.Context(), w, "title", func(ctx context.Context) (err error) {
		title, err = h.Keeper.Gateway.GenerateTitle(ctx, content)
		return err
	}) {
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"title": strings.TrimSpace(title)})
}

func (h *Handler) handleGenerateTags(w http.ResponseWriter, r *http.Request) {
	content, ok := h.decodeContent(w, r)
	if !ok {
		return
	}

	var tags []string
	if !h.runAI(r.Context(), w, "tags", func(ctx context.Context) (err error) {
		tags, err = h.Keeper.Gateway.GenerateTags(ctx, content)
		return err
	}) {
		return
	}

	h.respondJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}

func (h *Handler) handleImprovePrompt(w http.ResponseWriter, r *http.Request) {
	content, ok := h.decodeContent(w, r)
	if !ok {
		return
	}

	var improved string
	if !h.runAI(r.Context(), w, "improve", func(ctx context.Context) (err error) {
		improved, err = h.Keeper.Gateway.ImprovePrompt(ctx, content)
		return err
	}) {
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"content": improved})
}

// Handler: Connection test; failures are reported in the body with status 200
func (h *Handler) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	h.Metrics.IncrementAIRequests()
	result := h.Keeper.Gateway.TestAPIConnection(r.Context())
	if !result.Success {
		h.Metrics.IncrementAIErrors()
	}
	h.respondJSON(w, http.StatusOK, result)
}
