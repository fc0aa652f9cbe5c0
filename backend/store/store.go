package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TH33ORACL3/prompt-keeper/backend/kv"
	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

const maxRecent = 10

var (
	ErrPromptNotFound     = errors.New("prompt not found")
	ErrVersionNotFound    = errors.New("version not found")
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrLastVersion refuses to delete the only remaining version of a prompt.
	ErrLastVersion = errors.New("cannot delete the only version of a prompt")
)

// document is the persisted shape of the prompt store
type document struct {
	Prompts      []models.Prompt     `json:"prompts"`
	Collections  []models.Collection `json:"collections"`
	Favorites    []string            `json:"favorites"`
	RecentlyUsed []string            `json:"recentlyUsed"`
}

// Options configures a PromptStore
type Options struct {
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID defaults to uuid.NewString.
	NewID func() string
	// Seed fills an empty store with the default collections on first run.
	Seed bool
}

// PromptStore owns prompts, their versions, collections, favorites and the
// recently-used list. Every mutation is applied in memory under the lock and
// then written wholesale to the kv document.
type PromptStore struct {
	mu     sync.Mutex
	doc    document
	kv     kv.Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// New loads the prompt document from backend, or starts empty (optionally seeded).
func New(ctx context.Context, backend kv.Store, opts Options) (*PromptStore, error) {
	s := &PromptStore{
		kv:     backend,
		logger: opts.Logger,
		now:    opts.Now,
		newID:  opts.NewID,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	data, ok, err := backend.Load(ctx, kv.DocPrompts)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt document: %w", err)
	}
	if ok {
		if err := json.Unmarshal(data, &s.doc); err != nil {
			return nil, fmt.Errorf("failed to decode prompt document: %w", err)
		}
	} else if opts.Seed {
		s.doc.Collections = DefaultCollections()
	}
	s.normalize()

	s.logger.Info("prompt store loaded",
		"prompts", len(s.doc.Prompts),
		"collections", len(s.doc.Collections),
		"restored", ok,
	)
	return s, nil
}

func (s *PromptStore) normalize() {
	if s.doc.Prompts == nil {
		s.doc.Prompts = []models.Prompt{}
	}
	if s.doc.Collections == nil {
		s.doc.Collections = []models.Collection{}
	}
	if s.doc.Favorites == nil {
		s.doc.Favorites = []string{}
	}
	if s.doc.RecentlyUsed == nil {
		s.doc.RecentlyUsed = []string{}
	}
}

// persistLocked writes the whole document. Failures are logged and do not
// roll back the in-memory change.
func (s *PromptStore) persistLocked(ctx context.Context, operation string) {
	start := time.Now()
	data, err := json.Marshal(s.doc)
	if err != nil {
		s.logger.Error("failed to encode prompt document", "error", err, "operation", operation)
		return
	}
	if err := s.kv.Save(context.WithoutCancel(ctx), kv.DocPrompts, data); err != nil {
		s.logger.Error("failed to persist prompt document", "error", err, "operation", operation)
		return
	}
	s.logger.Debug("store operation",
		"operation", operation,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (s *PromptStore) indexOf(id string) int {
	for i := range s.doc.Prompts {
		if s.doc.Prompts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *PromptStore) collectionIndex(id string) int {
	for i := range s.doc.Collections {
		if s.doc.Collections[i].ID == id {
			return i
		}
	}
	return -1
}

// AddPrompt stores a new prompt with an initial version "1". The draft is
// stored as given; callers validate it.
func (s *PromptStore) AddPrompt(ctx context.Context, draft models.PromptDraft) (models.Prompt, []models.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	notes := draft.VersionNotes
	if notes == "" {
		notes = "Initial version"
	}
	tags := append([]string{}, draft.Tags...)

	prompt := models.Prompt{
		ID:           s.newID(),
		Title:        draft.Title,
		Content:      draft.Content,
		Category:     draft.Category,
		CollectionID: draft.CollectionID,
		Tags:         tags,
		Favorite:     draft.Favorite,
		Model:        draft.Model,
		CreatedAt:    now,
		UsageCount:   0,
		Versions: []models.Version{{
			VersionID: "1",
			Content:   draft.Content,
			Title:     draft.Title,
			CreatedAt: now,
			Notes:     notes,
		}},
		ActiveVersionID: "1",
	}
	s.doc.Prompts = append(s.doc.Prompts, prompt)
	s.persistLocked(ctx, "AddPrompt")

	return prompt.Clone(), []models.ProgressEvent{models.EventPromptCreated}
}

// UpdatePrompt shallow-merges the non-nil fields of patch. Versions are untouched.
func (s *PromptStore) UpdatePrompt(ctx context.Context, id string, patch models.PromptPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrPromptNotFound
	}
	p := &s.doc.Prompts[i]
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.CollectionID != nil {
		p.CollectionID = *patch.CollectionID
	}
	if patch.Tags != nil {
		p.Tags = append([]string{}, (*patch.Tags)...)
	}
	if patch.Favorite != nil {
		p.Favorite = *patch.Favorite
	}
	if patch.Model != nil {
		p.Model = *patch.Model
	}
	s.persistLocked(ctx, "UpdatePrompt")
	return nil
}

// nextVersionID returns len(versions)+1, skipping ids still held by
// surviving versions after a deletion.
func nextVersionID(versions []models.Version) string {
	taken := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		taken[v.VersionID] = struct{}{}
	}
	n := len(versions) + 1
	for {
		id := strconv.Itoa(n)
		if _, ok := taken[id]; !ok {
			return id
		}
		n++
	}
}

// AddPromptVersion appends a version, activates it and mirrors its title and
// content onto the prompt. Empty draft fields fall back to the current values.
func (s *PromptStore) AddPromptVersion(ctx context.Context, id string, draft models.VersionDraft) (string, []models.ProgressEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return "", nil, ErrPromptNotFound
	}
	p := &s.doc.Prompts[i]
	now := s.now()

	versionID := nextVersionID(p.Versions)
	title := draft.Title
	if title == "" {
		title = p.Title
	}
	content := draft.Content
	if content == "" {
		content = p.Content
	}
	notes := draft.Notes
	if notes == "" {
		notes = "Version " + versionID
	}

	p.Versions = append(p.Versions, models.Version{
		VersionID: versionID,
		Content:   content,
		Title:     title,
		CreatedAt: now,
		Notes:     notes,
	})
	p.ActiveVersionID = versionID
	p.Title = title
	p.Content = content
	p.LastModified = &now

	s.persistLocked(ctx, "AddPromptVersion")
	return versionID, []models.ProgressEvent{models.EventVersionCreated}, nil
}

// SetActivePromptVersion switches the active version and re-mirrors title and content.
func (s *PromptStore) SetActivePromptVersion(ctx context.Context, id, versionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrPromptNotFound
	}
	p := &s.doc.Prompts[i]
	for _, v := range p.Versions {
		if v.VersionID == versionID {
			p.ActiveVersionID = v.VersionID
			p.Title = v.Title
			p.Content = v.Content
			s.persistLocked(ctx, "SetActivePromptVersion")
			return nil
		}
	}
	return ErrVersionNotFound
}

// DeletePromptVersion removes a version. The last remaining version is never
// removed. Deleting the active version activates the remaining version with the
// latest CreatedAt; ties go to the earlier entry.
func (s *PromptStore) DeletePromptVersion(ctx context.Context, id, versionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrPromptNotFound
	}
	p := &s.doc.Prompts[i]
	if len(p.Versions) <= 1 {
		return ErrLastVersion
	}

	remaining := make([]models.Version, 0, len(p.Versions)-1)
	for _, v := range p.Versions {
		if v.VersionID != versionID {
			remaining = append(remaining, v)
		}
	}
	if len(remaining) == len(p.Versions) {
		return ErrVersionNotFound
	}

	if p.ActiveVersionID == versionID {
		latest := remaining[0]
		for _, v := range remaining[1:] {
			if v.CreatedAt.After(latest.CreatedAt) {
				latest = v
			}
		}
		p.ActiveVersionID = latest.VersionID
	}
	p.Versions = remaining
	if active, ok := p.ActiveVersion(); ok {
		p.Title = active.Title
		p.Content = active.Content
	}

	s.persistLocked(ctx, "DeletePromptVersion")
	return nil
}

// DeletePrompt removes the prompt and purges its id from favorites and
// recently-used. The purge happens even when the prompt is already gone.
func (s *PromptStore) DeletePrompt(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i >= 0 {
		s.doc.Prompts = append(s.doc.Prompts[:i], s.doc.Prompts[i+1:]...)
	}
	s.doc.Favorites = without(s.doc.Favorites, id)
	s.doc.RecentlyUsed = without(s.doc.RecentlyUsed, id)
	s.persistLocked(ctx, "DeletePrompt")

	if i < 0 {
		return ErrPromptNotFound
	}
	return nil
}

// ClearAllData empties prompts and collections. Favorites and recently-used
// are left as they are, so their ids may dangle until the next deletion or use.
func (s *PromptStore) ClearAllData(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Prompts = []models.Prompt{}
	s.doc.Collections = []models.Collection{}
	s.persistLocked(ctx, "ClearAllData")
}

// ToggleFavorite flips favorite membership for id and reports the new state.
// The id is not checked against existing prompts.
func (s *PromptStore) ToggleFavorite(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var favorite bool
	if contains(s.doc.Favorites, id) {
		s.doc.Favorites = without(s.doc.Favorites, id)
	} else {
		s.doc.Favorites = append(s.doc.Favorites, id)
		favorite = true
	}
	s.persistLocked(ctx, "ToggleFavorite")
	return favorite
}

// UsePrompt records a use: bumps the counter, stamps LastUsed and moves the id
// to the front of the recently-used list.
func (s *PromptStore) UsePrompt(ctx context.Context, id string) (models.Prompt, []models.ProgressEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Prompt{}, nil, ErrPromptNotFound
	}
	now := s.now()
	p := &s.doc.Prompts[i]
	p.UsageCount++
	p.LastUsed = &now

	recent := append([]string{id}, without(s.doc.RecentlyUsed, id)...)
	if len(recent) > maxRecent {
		recent = recent[:maxRecent]
	}
	s.doc.RecentlyUsed = recent

	s.persistLocked(ctx, "UsePrompt")
	return p.Clone(), []models.ProgressEvent{models.EventPromptUsed}, nil
}

// AddCollection stores a collection, assigning an id when the draft has none.
func (s *PromptStore) AddCollection(ctx context.Context, c models.Collection) (models.Collection, []models.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = s.newID()
	}
	s.doc.Collections = append(s.doc.Collections, c)
	s.persistLocked(ctx, "AddCollection")
	return c, []models.ProgressEvent{models.EventCollectionCreated}
}

func (s *PromptStore) UpdateCollection(ctx context.Context, id string, patch models.CollectionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.collectionIndex(id)
	if i < 0 {
		return ErrCollectionNotFound
	}
	if patch.Name != nil {
		s.doc.Collections[i].Name = *patch.Name
	}
	if patch.Icon != nil {
		s.doc.Collections[i].Icon = *patch.Icon
	}
	s.persistLocked(ctx, "UpdateCollection")
	return nil
}

// DeleteCollection removes the collection only; prompts keep their collectionId.
func (s *PromptStore) DeleteCollection(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.collectionIndex(id)
	if i < 0 {
		return ErrCollectionNotFound
	}
	s.doc.Collections = append(s.doc.Collections[:i], s.doc.Collections[i+1:]...)
	s.persistLocked(ctx, "DeleteCollection")
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
