// Package service coordinates the prompt store with the gamification engine:
// it validates input, applies store mutations and forwards the resulting
// progress events.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/TH33ORACL3/prompt-keeper/backend/aigateway"
	"github.com/TH33ORACL3/prompt-keeper/backend/gamification"
	"github.com/TH33ORACL3/prompt-keeper/backend/models"
	"github.com/TH33ORACL3/prompt-keeper/backend/store"
)

var ErrValidation = errors.New("validation failed")

// Keeper is the consumer of the store and the engine
type Keeper struct {
	Store   *store.PromptStore
	Engine  *gamification.Engine
	Gateway *aigateway.Gateway
	Logger  *slog.Logger
}

func New(s *store.PromptStore, e *gamification.Engine, g *aigateway.Gateway, logger *slog.Logger) *Keeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Keeper{Store: s, Engine: e, Gateway: g, Logger: logger}
}

// ValidateDraft requires a non-blank title and content
func ValidateDraft(draft models.PromptDraft) error {
	if strings.TrimSpace(draft.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(draft.Content) == "" {
		return fmt.Errorf("%w: content cannot be empty", ErrValidation)
	}
	return nil
}

// ValidatePatch rejects a patch that would blank the title or content
func ValidatePatch(patch models.PromptPatch) error {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return fmt.Errorf("%w: content cannot be empty", ErrValidation)
	}
	return nil
}

func (k *Keeper) apply(ctx context.Context, events []models.ProgressEvent) []models.Achievement {
	unlocked := k.Engine.Apply(ctx, events...)
	for _, a := range unlocked {
		k.Logger.Info("achievement unlocked", "id", a.ID, "points", a.Points)
	}
	return unlocked
}

// CreatePrompt validates and stores a prompt, then records the progress
func (k *Keeper) CreatePrompt(ctx context.Context, draft models.PromptDraft) (models.Prompt, []models.Achievement, error) {
	if err := ValidateDraft(draft); err != nil {
		return models.Prompt{}, nil, err
	}
	p, events := k.Store.AddPrompt(ctx, draft)
	return p, k.apply(ctx, events), nil
}

func (k *Keeper) UpdatePrompt(ctx context.Context, id string, patch models.PromptPatch) (models.Prompt, error) {
	if err := ValidatePatch(patch); err != nil {
		return models.Prompt{}, err
	}
	if err := k.Store.UpdatePrompt(ctx, id, patch); err != nil {
		return models.Prompt{}, err
	}
	p, _ := k.Store.GetPromptByID(id)
	return p, nil
}

// AddVersion appends a version and returns the updated prompt with the new version's id
func (k *Keeper) AddVersion(ctx context.Context, id string, draft models.VersionDraft) (models.Prompt, string, []models.Achievement, error) {
	versionID, events, err := k.Store.AddPromptVersion(ctx, id, draft)
	if err != nil {
		return models.Prompt{}, "", nil, err
	}
	p, _ := k.Store.GetPromptByID(id)
	return p, versionID, k.apply(ctx, events), nil
}

func (k *Keeper) UsePrompt(ctx context.Context, id string) (models.Prompt, []models.Achievement, error) {
	p, events, err := k.Store.UsePrompt(ctx, id)
	if err != nil {
		return models.Prompt{}, nil, err
	}
	return p, k.apply(ctx, events), nil
}

func (k *Keeper) CreateCollection(ctx context.Context, c models.Collection) (models.Collection, []models.Achievement, error) {
	if strings.TrimSpace(c.Name) == "" {
		return models.Collection{}, nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	created, events := k.Store.AddCollection(ctx, c)
	return created, k.apply(ctx, events), nil
}

// Login records a visit for the daily streak
func (k *Keeper) Login(ctx context.Context) []models.Achievement {
	return k.Engine.TrackLogin(ctx)
}
