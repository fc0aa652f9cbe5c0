package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/TH33ORACL3/prompt-keeper/backend/kv"
	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

// stepClock returns a clock that advances one minute per call
func stepClock() func() time.Time {
	t := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
}

func setupTestStore(t *testing.T) (*PromptStore, *kv.MemoryStore) {
	t.Helper()
	backend := kv.NewMemoryStore()
	s, err := New(context.Background(), backend, Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    stepClock(),
		NewID:  sequentialIDs(),
	})
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	return s, backend
}

func addTestPrompt(t *testing.T, s *PromptStore, title, content string) models.Prompt {
	t.Helper()
	p, _ := s.AddPrompt(context.Background(), models.PromptDraft{Title: title, Content: content})
	return p
}

// assertMirror checks that title/content match the active version and versions is non-empty
func assertMirror(t *testing.T, s *PromptStore, id string) models.Prompt {
	t.Helper()
	p, ok := s.GetPromptByID(id)
	if !ok {
		t.Fatalf("Prompt %q not found", id)
	}
	if len(p.Versions) == 0 {
		t.Fatal("Expected versions to never be empty")
	}
	active, ok := p.ActiveVersion()
	if !ok {
		t.Fatalf("Active version %q not in versions", p.ActiveVersionID)
	}
	if p.Title != active.Title || p.Content != active.Content {
		t.Errorf("Expected mirror of active version (%q/%q), got (%q/%q)",
			active.Title, active.Content, p.Title, p.Content)
	}
	return p
}

func TestAddPrompt_Success(t *testing.T) {
	s, _ := setupTestStore(t)

	p, events := s.AddPrompt(context.Background(), models.PromptDraft{
		Title:        "Summarize",
		Content:      "Summarize the text",
		Category:     "writing",
		CollectionID: "writing",
		Tags:         []string{"summary"},
	})

	if p.ID == "" {
		t.Fatal("Expected id to be assigned")
	}
	if len(p.Versions) != 1 || p.Versions[0].VersionID != "1" {
		t.Fatalf("Expected a single version \"1\", got %+v", p.Versions)
	}
	if p.ActiveVersionID != "1" {
		t.Errorf("Expected active version 1, got %q", p.ActiveVersionID)
	}
	if p.Versions[0].Notes != "Initial version" {
		t.Errorf("Expected notes %q, got %q", "Initial version", p.Versions[0].Notes)
	}
	if p.UsageCount != 0 || p.LastUsed != nil {
		t.Errorf("Expected fresh usage, got count=%d lastUsed=%v", p.UsageCount, p.LastUsed)
	}
	if p.CreatedAt.IsZero() {
		t.Error("Expected createdAt to be set")
	}
	if len(events) != 1 || events[0] != models.EventPromptCreated {
		t.Errorf("Expected PromptCreated event, got %v", events)
	}
	assertMirror(t, s, p.ID)
}

func TestAddPrompt_CustomVersionNotes(t *testing.T) {
	s, _ := setupTestStore(t)
	p, _ := s.AddPrompt(context.Background(), models.PromptDraft{Title: "T", Content: "C", VersionNotes: "first draft"})
	if p.Versions[0].Notes != "first draft" {
		t.Errorf("Expected notes %q, got %q", "first draft", p.Versions[0].Notes)
	}
}

func TestAddPrompt_StoresEmptyFields(t *testing.T) {
	s, _ := setupTestStore(t)
	p, _ := s.AddPrompt(context.Background(), models.PromptDraft{})
	if _, ok := s.GetPromptByID(p.ID); !ok {
		t.Error("Expected store to accept an empty draft")
	}
}

func TestAddPrompt_ReturnedValueIsCopy(t *testing.T) {
	s, _ := setupTestStore(t)
	p, _ := s.AddPrompt(context.Background(), models.PromptDraft{Title: "T", Content: "C", Tags: []string{"a"}})
	p.Tags[0] = "mutated"
	p.Versions[0].Content = "mutated"

	stored, _ := s.GetPromptByID(p.ID)
	if stored.Tags[0] != "a" || stored.Versions[0].Content != "C" {
		t.Error("Expected store state to be isolated from returned values")
	}
}

func TestUpdatePrompt_ShallowMerge(t *testing.T) {
	s, _ := setupTestStore(t)
	p := addTestPrompt(t, s, "T", "C")

	category := "technical"
	tags := []string{"go", "cli"}
	if err := s.UpdatePrompt(context.Background(), p.ID, models.PromptPatch{Category: &category, Tags: &tags}); err != nil {
		t.Fatalf("UpdatePrompt failed: %v", err)
	}

	got, _ := s.GetPromptByID(p.ID)
	if got.Category != "technical" || len(got.Tags) != 2 {
		t.Errorf("Expected patched fields, got %+v", got)
	}
	if got.Title != "T" || len(got.Versions) != 1 {
		t.Errorf("Expected untouched fields to survive, got %+v", got)
	}
}

func TestUpdatePrompt_UnknownID(t *testing.T) {
	s, _ := setupTestStore(t)
	title := "x"
	err := s.UpdatePrompt(context.Background(), "missing", models.PromptPatch{Title: &title})
	if !errors.Is(err, ErrPromptNotFound) {
		t.Errorf("Expected ErrPromptNotFound, got %v", err)
	}
}

func TestAddPromptVersion_ActivatesAndMirrors(t *testing.T) {
	s, _ := setupTestStore(t)
	p := addTestPrompt(t, s, "Title A", "A")

	versionID, events, err := s.AddPromptVersion(context.Background(), p.ID, models.VersionDraft{Content: "B"})
	if err != nil {
		t.Fatalf("AddPromptVersion failed: %v", err)
	}
	if versionID != "2" {
		t.Errorf("Expected version id 2, got %q", versionID)
	}
	if len(events) != 1 || events[0] != models.EventVersionCreated {
		t.Errorf("Expected VersionCreated event, got %v", events)
	}

	got := assertMirror(t, s, p.ID)
	if len(got.Versions) != 2 {
		t.Fatalf("Expected 2 versions, got %d", len(got.Versions))
	}
	if got.ActiveVersionID != "2" {
		t.Errorf("Expected active version 2, got %q", got.ActiveVersionID)
	}
	if got.Content != "B" {
		t.Errorf("Expected content B, got %q", got.Content)
	}
	if got.Title != "Title A" {
		t.Errorf("Expected title to fall back to %q, got %q", "Title A", got.Title)
	}
	if got.Versions[1].Notes != "Version 2" {
		t.Errorf("Expected default notes %q, got %q", "Version 2", got.Versions[1].Notes)
	}
	if got.LastModified == nil {
		t.Error("Expected lastModified to be set")
	}
}

func TestAddPromptVersion_ContentFallback(t *testing.T) {
	s, _ := setupTestStore(t)
	p := addTestPrompt(t, s, "T", "C")

	if _, _, err := s.AddPromptVersion(context.Background(), p.ID, models.VersionDraft{Title: "T2"}); err != nil {
		t.Fatalf("AddPromptVersion failed: %v", err)
	}
	got := assertMirror(t, s, p.ID)
	if got.Content != "C" || got.Title != "T2" {
		t.Errorf("Expected content fallback and new title, got %q/%q", got.Title, got.Content)
	}
}

func TestAddPromptVersion_UnknownPrompt(t *testing.T) {
	s, _ := setupTestStore(t)
	id, events, err := s.AddPromptVersion(context.Background(), "missing", models.VersionDraft{Content: "x"})
	if !errors.Is(err, ErrPromptNotFound) {
		t.Errorf("Expected ErrPromptNotFound, got %v", err)
	}
	if id != "" || len(events) != 0 {
		t.Errorf("Expected no id and no events, got %q %v", id, events)
	}
}

func TestAddPromptVersion_DoesNotReuseSurvivingID(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	p := addTestPrompt(t, s, "T", "v1")
	s.AddPromptVersion(ctx, p.ID, models.VersionDraft{Content: "v2"})
	s.AddPromptVersion(ctx, p.ID, models.VersionDraft{Content: "v3"})

	if err := s.DeletePromptVersion(ctx, p.ID, "2"); err != nil {
		t.Fatalf("DeletePromptVersion failed: %v", err)
	}
	versionID, _, _ := s.AddPromptVersion(ctx, p.ID, models.VersionDraft{Content: "v4"})
	if versionID != "4" {
		t.Errorf("Expected version id 4 after deleting 2 of 3, got %q", versionID)
	}

	seen := map[string]bool{}
	got := assertMirror(t, s, p.ID)
	for _, v := range got.Versions {
		if seen[v.VersionID] {
			t.Errorf("Duplicate version id %q", v.VersionID)
		}
		seen[v.VersionID] = true
	}
}

func TestSetActivePromptVersion(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	p := addTestPrompt(t, s, "T1", "C1")
	s.AddPromptVersion(ctx, p.ID, models.VersionDraft{Title: "T2", Content: "C2"})

	if err := s.SetActivePromptVersion(ctx, p.ID, "1"); err != nil {
		t.Fatalf("SetActivePromptVersion failed: %v", err)
	}
	got := assertMirror(t, s, p.ID)
	if got.ActiveVersionID != "1" || got.Content != "C1" || got.Title != "T1" {
		t.Errorf("Expected version 1 to be active and mirrored, got %+v", got)
	}
}

func TestSetActivePromptVersion_UnknownVersion(t *testing.T) {
	s, _ := setupTestStore(t)
	p := addTestPrompt(t, s, "T", "C")

	err := s.SetActivePromptVersion(context.Background(), p.ID, "9")
	if !errors.Is(err, ErrVersionNotFound) {
		t.Errorf("Expected ErrVersionNotFound, got %v", err)
	}
	if err := s.SetActivePromptVersion(context.Background(), "missing", "1"); !errors.Is(err, ErrPromptNotFound) {
		t.Errorf("Expected ErrPromptNotFound, got %v", err)
	}
	got := assertMirror(t, s, p.ID)
	if got.ActiveVersionID != "1" {
		t.Errorf("Expected active version unchanged, got %q", got.ActiveVersionID)
	}
}

func TestDeletePromptVersion_RefusesLastVersion(t *testing.T) {
	s, _ := setupTestStore(t)
	p := addTestPrompt(t, s, "T", "C")

	err := s.DeletePromptVersion(context.Background(), p.ID, "1")
	if !errors.Is(err, ErrLastVersion) {
		t.Fatalf("Expected ErrLastVersion, got %v", err)
	}
	got := assertMirror(t, s, p.ID)
	if len(got.Versions) != 1 || got.Versions[0].VersionID != "1" {
		t.Errorf("Expected versions unchanged, got %+v", got.Versions)
	}
}

func TestDeletePromptVersion_ActiveFallsBackToLatest(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	p := addTestPrompt(t, s, "T", "v1")
	s.AddPromptVersion(ctx, p.ID, models.VersionDraft{Content: "v2"})
	s.AddPromptVersion(ctx, p.ID, models.VersionDraft{Content: "v3"})
	s.SetActivePromptVersion(ctx, p.ID, "1")

	if err := s.DeletePromptVersion(ctx, p.ID, "1"); err != nil {
		t.Fatalf("DeletePromptVersion failed: %v", err)
	}
	got := assertMirror(t, s, p.ID)
	if got.ActiveVersionID != "3" {
		t.Errorf("Expected latest remaining version 3 to become active, got %q", got.ActiveVersionID)
	}
	if got.Content != "v3" {
		t.Errorf("Expected content v3, got %q", got.Content)
	}
}

func TestDeletePromptVersion_InactiveKeepsActive(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	p := addTestPrompt(t, s, "T", "v1")
	s.AddPromptVersion(ctx, p.ID, models.VersionDraft{Content: "v2"})

	if err := s.DeletePromptVersion(ctx, p.ID, "1"); err != nil {
		t.Fatalf("DeletePromptVersion failed: %v", err)
	}
	got := assertMirror(t, s, p.ID)
	if got.ActiveVersionID != "2" || len(got.Versions) != 1 {
		t.Errorf("Expected only version 2 left and active, got %+v", got)
	}
}

func TestDeletePromptVersion_UnknownVersion(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	p := addTestPrompt(t, s, "T", "v1")
	s.AddPromptVersion(ctx, p.ID, models.VersionDraft{Content: "v2"})

	if err := s.DeletePromptVersion(ctx, p.ID, "7"); !errors.Is(err, ErrVersionNotFound) {
		t.Errorf("Expected ErrVersionNotFound, got %v", err)
	}
	got := assertMirror(t, s, p.ID)
	if len(got.Versions) != 2 {
		t.Errorf("Expected versions unchanged, got %d", len(got.Versions))
	}
}

func TestDeletePrompt_PurgesFavoritesAndRecent(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	p := addTestPrompt(t, s, "T", "C")
	other := addTestPrompt(t, s, "O", "C")
	s.ToggleFavorite(ctx, p.ID)
	s.UsePrompt(ctx, p.ID)
	s.UsePrompt(ctx, other.ID)

	if err := s.DeletePrompt(ctx, p.ID); err != nil {
		t.Fatalf("DeletePrompt failed: %v", err)
	}
	if _, ok := s.GetPromptByID(p.ID); ok {
		t.Error("Expected prompt to be gone")
	}
	if s.IsFavorite(p.ID) {
		t.Error("Expected favorite to be purged")
	}
	recent := s.RecentlyUsed()
	if len(recent) != 1 || recent[0] != other.ID {
		t.Errorf("Expected only %q in recent, got %v", other.ID, recent)
	}

	if err := s.DeletePrompt(ctx, p.ID); !errors.Is(err, ErrPromptNotFound) {
		t.Errorf("Expected ErrPromptNotFound on second delete, got %v", err)
	}
}

func TestClearAllData_LeavesFavoritesAndRecent(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	p := addTestPrompt(t, s, "T", "C")
	s.AddCollection(ctx, models.Collection{Name: "Mine"})
	s.ToggleFavorite(ctx, p.ID)
	s.UsePrompt(ctx, p.ID)

	s.ClearAllData(ctx)

	if len(s.ListPrompts()) != 0 || len(s.ListCollections()) != 0 {
		t.Error("Expected prompts and collections to be emptied")
	}
	if !s.IsFavorite(p.ID) {
		t.Error("Expected favorites to survive ClearAllData")
	}
	if len(s.RecentlyUsed()) != 1 {
		t.Error("Expected recently-used to survive ClearAllData")
	}
	if len(s.GetFavoritePrompts()) != 0 || len(s.GetRecentPrompts()) != 0 {
		t.Error("Expected derived views to skip dangling ids")
	}
}

func TestToggleFavorite(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	p := addTestPrompt(t, s, "T", "C")
	addTestPrompt(t, s, "Other", "C")

	if !s.ToggleFavorite(ctx, p.ID) {
		t.Error("Expected first toggle to favorite")
	}
	favs := s.GetFavoritePrompts()
	if len(favs) != 1 || favs[0].ID != p.ID {
		t.Errorf("Expected only %q favorite, got %+v", p.ID, favs)
	}
	if s.ToggleFavorite(ctx, p.ID) {
		t.Error("Expected second toggle to unfavorite")
	}
	if len(s.GetFavoritePrompts()) != 0 {
		t.Error("Expected no favorites")
	}

	// no existence check
	if !s.ToggleFavorite(ctx, "ghost") || !s.IsFavorite("ghost") {
		t.Error("Expected unknown ids to be accepted")
	}
}

func TestUsePrompt_TwiceDeduplicates(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	p := addTestPrompt(t, s, "T", "C")
	other := addTestPrompt(t, s, "O", "C")

	s.UsePrompt(ctx, p.ID)
	s.UsePrompt(ctx, other.ID)
	used, events, err := s.UsePrompt(ctx, p.ID)
	if err != nil {
		t.Fatalf("UsePrompt failed: %v", err)
	}
	if len(events) != 1 || events[0] != models.EventPromptUsed {
		t.Errorf("Expected PromptUsed event, got %v", events)
	}
	if used.UsageCount != 2 {
		t.Errorf("Expected usage count 2, got %d", used.UsageCount)
	}
	if used.LastUsed == nil {
		t.Error("Expected lastUsed to be set")
	}

	recent := s.RecentlyUsed()
	if len(recent) != 2 || recent[0] != p.ID || recent[1] != other.ID {
		t.Errorf("Expected [%s %s], got %v", p.ID, other.ID, recent)
	}
	prompts := s.GetRecentPrompts()
	if prompts[0].ID != p.ID {
		t.Errorf("Expected %q first in recent prompts, got %q", p.ID, prompts[0].ID)
	}
}

func TestUsePrompt_RecentCappedAtTen(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	var last string
	for i := 0; i < 12; i++ {
		p := addTestPrompt(t, s, fmt.Sprintf("T%d", i), "C")
		s.UsePrompt(ctx, p.ID)
		last = p.ID
	}

	recent := s.RecentlyUsed()
	if len(recent) != 10 {
		t.Fatalf("Expected 10 recent entries, got %d", len(recent))
	}
	if recent[0] != last {
		t.Errorf("Expected most recent %q first, got %q", last, recent[0])
	}
	if recent[9] != "p3" {
		t.Errorf("Expected oldest kept entry p3, got %q", recent[9])
	}
}

func TestUsePrompt_UnknownID(t *testing.T) {
	s, _ := setupTestStore(t)
	_, events, err := s.UsePrompt(context.Background(), "missing")
	if !errors.Is(err, ErrPromptNotFound) {
		t.Errorf("Expected ErrPromptNotFound, got %v", err)
	}
	if len(events) != 0 || len(s.RecentlyUsed()) != 0 {
		t.Error("Expected no events and no recent entry")
	}
}

func TestCollections_CRUD(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	c, events := s.AddCollection(ctx, models.Collection{Name: "Research", Icon: "🔬"})
	if c.ID == "" {
		t.Fatal("Expected collection id to be assigned")
	}
	if len(events) != 1 || events[0] != models.EventCollectionCreated {
		t.Errorf("Expected CollectionCreated event, got %v", events)
	}

	named, _ := s.AddCollection(ctx, models.Collection{ID: "fixed", Name: "Fixed"})
	if named.ID != "fixed" {
		t.Errorf("Expected provided id to be kept, got %q", named.ID)
	}

	name := "Deep Research"
	if err := s.UpdateCollection(ctx, c.ID, models.CollectionPatch{Name: &name}); err != nil {
		t.Fatalf("UpdateCollection failed: %v", err)
	}
	got, _ := s.GetCollection(c.ID)
	if got.Name != "Deep Research" || got.Icon != "🔬" {
		t.Errorf("Expected merged collection, got %+v", got)
	}

	p, _ := s.AddPrompt(ctx, models.PromptDraft{Title: "T", Content: "C", CollectionID: c.ID})
	if err := s.DeleteCollection(ctx, c.ID); err != nil {
		t.Fatalf("DeleteCollection failed: %v", err)
	}
	if _, ok := s.GetCollection(c.ID); ok {
		t.Error("Expected collection to be gone")
	}
	stored, _ := s.GetPromptByID(p.ID)
	if stored.CollectionID != c.ID {
		t.Error("Expected prompt to keep its dangling collectionId")
	}
	if len(s.GetPromptsByCollection(c.ID)) != 1 {
		t.Error("Expected lookup by dangling collection id to still match")
	}

	if err := s.DeleteCollection(ctx, c.ID); !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("Expected ErrCollectionNotFound, got %v", err)
	}
}

func TestGetPromptsByCategory(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	s.AddPrompt(ctx, models.PromptDraft{Title: "A", Content: "C", Category: "writing"})
	s.AddPrompt(ctx, models.PromptDraft{Title: "B", Content: "C", Category: "technical"})
	s.AddPrompt(ctx, models.PromptDraft{Title: "C", Content: "C", Category: "writing"})

	got := s.GetPromptsByCategory("writing")
	if len(got) != 2 || got[0].Title != "A" || got[1].Title != "C" {
		t.Errorf("Expected A and C in order, got %+v", got)
	}
}

func TestSearchPrompts(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	s.AddPrompt(ctx, models.PromptDraft{Title: "Blog Outline", Content: "Write an outline"})
	s.AddPrompt(ctx, models.PromptDraft{Title: "Refactor", Content: "Improve this CODE"})
	s.AddPrompt(ctx, models.PromptDraft{Title: "Email", Content: "Draft a reply", Tags: []string{"Business"}})

	if got := s.SearchPrompts(""); len(got) != 0 {
		t.Errorf("Expected empty result for empty query, got %d", len(got))
	}
	if got := s.SearchPrompts("blog"); len(got) != 1 || got[0].Title != "Blog Outline" {
		t.Errorf("Expected title match, got %+v", got)
	}
	if got := s.SearchPrompts("code"); len(got) != 1 || got[0].Title != "Refactor" {
		t.Errorf("Expected content match, got %+v", got)
	}
	if got := s.SearchPrompts("busi"); len(got) != 1 || got[0].Title != "Email" {
		t.Errorf("Expected tag match, got %+v", got)
	}
	if got := s.SearchPrompts("nothing-here"); len(got) != 0 {
		t.Errorf("Expected no match, got %+v", got)
	}
}

func TestFuzzySearchPrompts(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	s.AddPrompt(ctx, models.PromptDraft{Title: "Code Review", Content: "Review this diff"})
	s.AddPrompt(ctx, models.PromptDraft{Title: "Poem", Content: "Write a haiku"})

	got := s.FuzzySearchPrompts("cdrvw")
	if len(got) != 1 || got[0].Title != "Code Review" {
		t.Errorf("Expected fuzzy match on Code Review, got %+v", got)
	}
	if len(s.FuzzySearchPrompts("  ")) != 0 {
		t.Error("Expected blank query to match nothing")
	}
}

func TestNew_RestoresPersistedDocument(t *testing.T) {
	s, backend := setupTestStore(t)
	ctx := context.Background()
	p := addTestPrompt(t, s, "T", "C")
	s.AddPromptVersion(ctx, p.ID, models.VersionDraft{Content: "C2"})
	s.ToggleFavorite(ctx, p.ID)
	s.UsePrompt(ctx, p.ID)
	s.AddCollection(ctx, models.Collection{ID: "mine", Name: "Mine"})

	reloaded, err := New(ctx, backend, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("Failed to reload store: %v", err)
	}
	got := assertMirror(t, reloaded, p.ID)
	if len(got.Versions) != 2 || got.UsageCount != 1 || got.Content != "C2" {
		t.Errorf("Expected restored prompt, got %+v", got)
	}
	if !reloaded.IsFavorite(p.ID) || len(reloaded.RecentlyUsed()) != 1 {
		t.Error("Expected favorites and recent to be restored")
	}
	if _, ok := reloaded.GetCollection("mine"); !ok {
		t.Error("Expected collection to be restored")
	}
}

func TestNew_SeedsDefaultCollections(t *testing.T) {
	s, err := New(context.Background(), kv.NewMemoryStore(), Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Seed:   true,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if len(s.ListCollections()) != 6 {
		t.Errorf("Expected 6 seeded collections, got %d", len(s.ListCollections()))
	}
	if len(s.Categories()) != 6 {
		t.Errorf("Expected 6 categories, got %d", len(s.Categories()))
	}
}

func TestNew_CorruptDocument(t *testing.T) {
	backend := kv.NewMemoryStore()
	backend.Save(context.Background(), kv.DocPrompts, []byte("{not json"))
	if _, err := New(context.Background(), backend, Options{}); err == nil {
		t.Error("Expected error for corrupt document")
	}
}

func TestStats(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	p := addTestPrompt(t, s, "T", "C")
	s.AddPromptVersion(ctx, p.ID, models.VersionDraft{Content: "C2"})
	s.UsePrompt(ctx, p.ID)

	stats := s.Stats()
	if stats.TotalPrompts != 1 || stats.TotalVersions != 2 || stats.TotalUsage != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}
