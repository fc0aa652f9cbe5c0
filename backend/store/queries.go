package store

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

// DefaultCollections is the starter set used when seeding an empty store
func DefaultCollections() []models.Collection {
	return []models.Collection{
		{ID: "writing", Name: "Writing", Icon: "✍️"},
		{ID: "coding", Name: "Coding", Icon: "💻"},
		{ID: "design", Name: "Design", Icon: "🎨"},
		{ID: "business", Name: "Business", Icon: "📊"},
		{ID: "academic", Name: "Academic", Icon: "🎓"},
		{ID: "personal", Name: "Personal", Icon: "🌟"},
	}
}

var categories = []models.Category{
	{ID: "writing", Name: "Writing", Icon: "✍️"},
	{ID: "creative", Name: "Creative", Icon: "🎨"},
	{ID: "technical", Name: "Technical", Icon: "💻"},
	{ID: "business", Name: "Business", Icon: "📊"},
	{ID: "academic", Name: "Academic", Icon: "🎓"},
	{ID: "personal", Name: "Personal", Icon: "🌟"},
}

// Categories returns the static category list
func (s *PromptStore) Categories() []models.Category {
	return append([]models.Category(nil), categories...)
}

// filterLocked copies every prompt matching keep, in storage order
func (s *PromptStore) filterLocked(keep func(p models.Prompt) bool) []models.Prompt {
	out := []models.Prompt{}
	for _, p := range s.doc.Prompts {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

func (s *PromptStore) ListPrompts() []models.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(func(models.Prompt) bool { return true })
}

func (s *PromptStore) GetPromptByID(id string) (models.Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Prompt{}, false
	}
	return s.doc.Prompts[i].Clone(), true
}

// GetPromptsByCollection matches on collectionId only; the collection itself
// need not exist.
func (s *PromptStore) GetPromptsByCollection(collectionID string) []models.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(func(p models.Prompt) bool { return p.CollectionID == collectionID })
}

func (s *PromptStore) GetPromptsByCategory(category string) []models.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(func(p models.Prompt) bool { return p.Category == category })
}

// GetFavoritePrompts returns favorite prompts in storage order
func (s *PromptStore) GetFavoritePrompts() []models.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(func(p models.Prompt) bool { return contains(s.doc.Favorites, p.ID) })
}

// GetRecentPrompts returns prompts in recently-used order, skipping ids whose
// prompt no longer exists.
func (s *PromptStore) GetRecentPrompts() []models.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Prompt{}
	for _, id := range s.doc.RecentlyUsed {
		if i := s.indexOf(id); i >= 0 {
			out = append(out, s.doc.Prompts[i].Clone())
		}
	}
	return out
}

// SearchPrompts does a case-insensitive substring match over title, content
// and tags. An empty query matches nothing.
func (s *PromptStore) SearchPrompts(query string) []models.Prompt {
	if query == "" {
		return []models.Prompt{}
	}
	q := strings.ToLower(query)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(func(p models.Prompt) bool {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Content), q) {
			return true
		}
		for _, tag := range p.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
}

// FuzzySearchPrompts ranks prompts by fuzzy match against title, tags and content,
// best match first.
func (s *PromptStore) FuzzySearchPrompts(query string) []models.Prompt {
	if strings.TrimSpace(query) == "" {
		return []models.Prompt{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	searchStrings := make([]string, len(s.doc.Prompts))
	for i, p := range s.doc.Prompts {
		searchStrings[i] = p.Title + " " + strings.Join(p.Tags, " ") + " " + p.Content
	}

	matches := fuzzy.Find(query, searchStrings)
	out := make([]models.Prompt, 0, len(matches))
	for _, match := range matches {
		out = append(out, s.doc.Prompts[match.Index].Clone())
	}
	return out
}

func (s *PromptStore) ListCollections() []models.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Collection{}, s.doc.Collections...)
}

func (s *PromptStore) GetCollection(id string) (models.Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.collectionIndex(id)
	if i < 0 {
		return models.Collection{}, false
	}
	return s.doc.Collections[i], true
}

func (s *PromptStore) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contains(s.doc.Favorites, id)
}

// Favorites returns the raw favorite id set, which may include ids of deleted prompts
func (s *PromptStore) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.doc.Favorites...)
}

// RecentlyUsed returns the raw recently-used ids, most recent first
func (s *PromptStore) RecentlyUsed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.doc.RecentlyUsed...)
}

func (s *PromptStore) Stats() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := models.Stats{
		TotalPrompts:     len(s.doc.Prompts),
		TotalCollections: len(s.doc.Collections),
		TotalFavorites:   len(s.doc.Favorites),
	}
	for _, p := range s.doc.Prompts {
		stats.TotalVersions += len(p.Versions)
		stats.TotalUsage += p.UsageCount
	}
	return stats
}
