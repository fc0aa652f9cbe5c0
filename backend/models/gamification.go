package models

import "time"

// AchievementType selects which counter an achievement's threshold is compared against
type AchievementType string

const (
	AchievementPromptCount     AchievementType = "prompt_count"
	AchievementCollectionCount AchievementType = "collection_count"
	AchievementStreak          AchievementType = "streak"
	AchievementVersionCount    AchievementType = "version_count"
	AchievementUsageCount      AchievementType = "usage_count"
)

// Achievement is a catalog entry. Never mutated at runtime.
type Achievement struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Icon        string          `json:"icon" yaml:"icon"`
	Points      int             `json:"points" yaml:"points"`
	Type        AchievementType `json:"type" yaml:"type"`
	Threshold   int             `json:"threshold" yaml:"threshold"`
}

// GamificationState is the persisted gamification document
type GamificationState struct {
	Points               int           `json:"points"`
	StreakDays           int           `json:"streakDays"`
	LastLogin            *time.Time    `json:"lastLogin"`
	MaxStreakDays        int           `json:"maxStreakDays"`
	PromptCount          int           `json:"promptCount"`
	CollectionCount      int           `json:"collectionCount"`
	VersionCount         int           `json:"versionCount"`
	UsageCount           int           `json:"usageCount"`
	UnlockedAchievements []string      `json:"unlockedAchievements"`
	RecentAchievements   []Achievement `json:"recentAchievements"`
}

// Clone returns a deep copy of the state
func (s GamificationState) Clone() GamificationState {
	out := s
	if s.LastLogin != nil {
		t := *s.LastLogin
		out.LastLogin = &t
	}
	out.UnlockedAchievements = append([]string{}, s.UnlockedAchievements...)
	out.RecentAchievements = append([]Achievement{}, s.RecentAchievements...)
	return out
}

// Profile is the derived gamification view served to clients
type Profile struct {
	State         GamificationState `json:"state"`
	Level         int               `json:"level"`
	LevelProgress int               `json:"levelProgress"`
	Unlocked      []Achievement     `json:"unlocked"`
}
