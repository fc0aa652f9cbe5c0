package models

import "time"

// Prompt is a user-authored text template with its version history.
// Title and Content mirror the version referenced by ActiveVersionID.
type Prompt struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Category        string     `json:"category,omitempty"`
	CollectionID    string     `json:"collectionId,omitempty"`
	Tags            []string   `json:"tags"`
	Favorite        bool       `json:"favorite"`
	Model           string     `json:"model,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastUsed        *time.Time `json:"lastUsed"`
	LastModified    *time.Time `json:"lastModified,omitempty"`
	UsageCount      int        `json:"usageCount"`
	Versions        []Version  `json:"versions"`
	ActiveVersionID string     `json:"activeVersionId"`
}

// Version is a snapshot of a prompt at the time it was saved
type Version struct {
	VersionID string    `json:"versionId"`
	Content   string    `json:"content"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActiveVersion returns the version referenced by ActiveVersionID.
func (p Prompt) ActiveVersion() (Version, bool) {
	for _, v := range p.Versions {
		if v.VersionID == p.ActiveVersionID {
			return v, true
		}
	}
	return Version{}, false
}

// Clone returns a deep copy of the prompt
func (p Prompt) Clone() Prompt {
	out := p
	if p.Tags != nil {
		out.Tags = append([]string(nil), p.Tags...)
	}
	if p.Versions != nil {
		out.Versions = append([]Version(nil), p.Versions...)
	}
	if p.LastUsed != nil {
		t := *p.LastUsed
		out.LastUsed = &t
	}
	if p.LastModified != nil {
		t := *p.LastModified
		out.LastModified = &t
	}
	return out
}

// Collection is a named grouping of prompts
type Collection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Category is a static label prompts can be filed under
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// PromptDraft is the input for creating a prompt
type PromptDraft struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Category     string   `json:"category"`
	CollectionID string   `json:"collectionId"`
	Tags         []string `json:"tags"`
	Favorite     bool     `json:"favorite"`
	Model        string   `json:"model"`
	VersionNotes string   `json:"versionNotes"`
}

// VersionDraft is the input for adding a version; empty fields fall back
// to the prompt's current values.
type VersionDraft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Notes   string `json:"notes"`
}

// PromptPatch holds the fields to shallow-merge into a prompt. Nil fields are left alone.
type PromptPatch struct {
	Title        *string   `json:"title,omitempty"`
	Content      *string   `json:"content,omitempty"`
	Category     *string   `json:"category,omitempty"`
	CollectionID *string   `json:"collectionId,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
	Favorite     *bool     `json:"favorite,omitempty"`
	Model        *string   `json:"model,omitempty"`
}

// CollectionPatch holds the fields to merge into a collection
type CollectionPatch struct {
	Name *string `json:"name,omitempty"`
	Icon *string `json:"icon,omitempty"`
}

// Stats summarizes the prompt document
type Stats struct {
	TotalPrompts     int `json:"totalPrompts"`
	TotalVersions    int `json:"totalVersions"`
	TotalCollections int `json:"totalCollections"`
	TotalFavorites   int `json:"totalFavorites"`
	TotalUsage       int `json:"totalUsage"`
}

// ProgressEvent describes a mutation that counts towards gamification
type ProgressEvent string

const (
	EventPromptCreated     ProgressEvent = "prompt_created"
	EventCollectionCreated ProgressEvent = "collection_created"
	EventVersionCreated    ProgressEvent = "version_created"
	EventPromptUsed        ProgressEvent = "prompt_used"
)
