package gamification

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/TH33ORACL3/prompt-keeper/backend/kv"
	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

// fakeClock is a settable clock for streak tests
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setupTestEngine(t *testing.T) (*Engine, *fakeClock, *kv.MemoryStore) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)}
	backend := kv.NewMemoryStore()
	e, err := New(context.Background(), backend, Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    clock.Now,
	})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e, clock, backend
}

func ids(achievements []models.Achievement) []string {
	out := make([]string, len(achievements))
	for i, a := range achievements {
		out[i] = a.ID
	}
	return out
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	if len(catalog) != 13 {
		t.Fatalf("Expected 13 achievements, got %d", len(catalog))
	}
	if catalog[0].ID != "first_prompt" || catalog[0].Points != 10 || catalog[0].Threshold != 1 {
		t.Errorf("Unexpected first entry %+v", catalog[0])
	}
	last := catalog[12]
	if last.ID != "prompt_usage_100" || last.Type != models.AchievementUsageCount || last.Points != 100 {
		t.Errorf("Unexpected last entry %+v", last)
	}
}

func TestParseCatalog_RejectsDuplicates(t *testing.T) {
	data := []byte("achievements:\n  - id: a\n  - id: a\n")
	if _, err := ParseCatalog(data); err == nil {
		t.Error("Expected error for duplicate ids")
	}
}

func TestIncrementPromptCount_FirstPrompt(t *testing.T) {
	e, _, _ := setupTestEngine(t)

	unlocked := e.IncrementPromptCount(context.Background())
	if len(unlocked) != 1 || unlocked[0].ID != "first_prompt" {
		t.Fatalf("Expected first_prompt, got %v", ids(unlocked))
	}

	state := e.State()
	if state.Points != 10 {
		t.Errorf("Expected 10 points, got %d", state.Points)
	}
	if e.Level() != 1 {
		t.Errorf("Expected level 1, got %d", e.Level())
	}
	if e.LevelProgress() != 10 {
		t.Errorf("Expected progress 10, got %d", e.LevelProgress())
	}
	recent := e.RecentAchievements()
	if len(recent) != 1 || recent[0].ID != "first_prompt" {
		t.Errorf("Expected first_prompt in recent, got %v", ids(recent))
	}
}

func TestCheckAchievements_BatchUnlock(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	e.state.PromptCount = 99

	unlocked := e.IncrementPromptCount(context.Background())
	got := ids(unlocked)
	want := []string{"first_prompt", "prompt_master", "prompt_champion"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %q at %d, got %q", want[i], i, got[i])
		}
	}

	state := e.State()
	if state.Points != 160 {
		t.Errorf("Expected 160 points, got %d", state.Points)
	}
	if len(state.RecentAchievements) != 3 {
		t.Errorf("Expected batch of 3 in recent, got %d", len(state.RecentAchievements))
	}
	if e.Level() != 2 || e.LevelProgress() != 60 {
		t.Errorf("Expected level 2 at 60%%, got %d at %d%%", e.Level(), e.LevelProgress())
	}
}

func TestCheckAchievements_NoDuplicates(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	e.IncrementPromptCount(ctx)
	e.IncrementPromptCount(ctx)
	if again := e.CheckAchievements(ctx); len(again) != 0 {
		t.Errorf("Expected nothing new, got %v", ids(again))
	}

	state := e.State()
	if len(state.UnlockedAchievements) != 1 {
		t.Errorf("Expected one unlocked id, got %v", state.UnlockedAchievements)
	}
	if state.Points != 10 {
		t.Errorf("Expected points to stay at 10, got %d", state.Points)
	}
}

func TestCheckAchievements_NewBatchReplacesRecent(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	e.IncrementPromptCount(ctx)
	e.IncrementCollectionCount(ctx)

	recent := e.RecentAchievements()
	if len(recent) != 1 || recent[0].ID != "first_collection" {
		t.Errorf("Expected only first_collection in recent, got %v", ids(recent))
	}

	// an empty batch leaves the previous notification in place
	e.IncrementCollectionCount(ctx)
	if len(e.RecentAchievements()) != 1 {
		t.Error("Expected recent to survive an evaluation with no unlocks")
	}
}

func TestClearRecentAchievements(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()
	e.IncrementVersionCount(ctx)

	drained := e.ClearRecentAchievements(ctx)
	if len(drained) != 1 || drained[0].ID != "first_version" {
		t.Errorf("Expected drained first_version, got %v", ids(drained))
	}
	if len(e.RecentAchievements()) != 0 {
		t.Error("Expected recent to be empty")
	}
	if len(e.UnlockedAchievements()) != 1 {
		t.Error("Expected unlocked achievements to be kept")
	}
}

func TestApply_MapsEvents(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	unlocked := e.Apply(context.Background(),
		models.EventPromptCreated,
		models.EventCollectionCreated,
		models.EventVersionCreated,
		models.EventPromptUsed,
		models.ProgressEvent("something_else"),
	)

	state := e.State()
	if state.PromptCount != 1 || state.CollectionCount != 1 || state.VersionCount != 1 || state.UsageCount != 1 {
		t.Errorf("Expected each counter at 1, got %+v", state)
	}
	if len(unlocked) != 3 {
		t.Errorf("Expected 3 unlocks, got %v", ids(unlocked))
	}
	if state.Points != 30 {
		t.Errorf("Expected 30 points, got %d", state.Points)
	}
}

func TestUsageAchievements(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		e.IncrementUsageCount(ctx)
	}
	unlocked := e.UnlockedAchievements()
	if len(unlocked) != 1 || unlocked[0].ID != "prompt_usage_10" {
		t.Errorf("Expected prompt_usage_10, got %v", ids(unlocked))
	}
}

func TestTrackLogin_FirstLogin(t *testing.T) {
	e, clock, _ := setupTestEngine(t)

	e.TrackLogin(context.Background())
	state := e.State()
	if state.StreakDays != 1 {
		t.Errorf("Expected streak 1, got %d", state.StreakDays)
	}
	if state.LastLogin == nil || !state.LastLogin.Equal(startOfDay(clock.Now())) {
		t.Errorf("Expected lastLogin at midnight, got %v", state.LastLogin)
	}
}

func TestTrackLogin_SameDayIsNoop(t *testing.T) {
	e, clock, _ := setupTestEngine(t)
	ctx := context.Background()

	e.TrackLogin(ctx)
	clock.advance(time.Hour)
	e.TrackLogin(ctx)
	e.TrackLogin(ctx)

	state := e.State()
	if state.StreakDays != 1 {
		t.Errorf("Expected streak to stay at 1, got %d", state.StreakDays)
	}
}

func TestTrackLogin_ConsecutiveDays(t *testing.T) {
	e, clock, _ := setupTestEngine(t)
	ctx := context.Background()

	e.TrackLogin(ctx)
	clock.advance(24 * time.Hour)
	e.TrackLogin(ctx)
	clock.advance(24 * time.Hour)
	unlocked := e.TrackLogin(ctx)

	state := e.State()
	if state.StreakDays != 3 || state.MaxStreakDays != 3 {
		t.Errorf("Expected streak 3/max 3, got %d/%d", state.StreakDays, state.MaxStreakDays)
	}
	if len(unlocked) != 1 || unlocked[0].ID != "daily_streak_3" {
		t.Errorf("Expected daily_streak_3, got %v", ids(unlocked))
	}
	if state.Points != 15 {
		t.Errorf("Expected 15 points, got %d", state.Points)
	}
}

func TestTrackLogin_LateNightToEarlyMorning(t *testing.T) {
	e, clock, _ := setupTestEngine(t)
	ctx := context.Background()
	clock.t = time.Date(2024, 5, 10, 23, 50, 0, 0, time.UTC)

	e.TrackLogin(ctx)
	clock.advance(20 * time.Minute)
	e.TrackLogin(ctx)

	if got := e.State().StreakDays; got != 2 {
		t.Errorf("Expected crossing midnight to extend streak, got %d", got)
	}
}

func TestTrackLogin_GapResetsStreak(t *testing.T) {
	e, clock, _ := setupTestEngine(t)
	ctx := context.Background()

	e.TrackLogin(ctx)
	clock.advance(24 * time.Hour)
	e.TrackLogin(ctx)
	clock.advance(72 * time.Hour)
	e.TrackLogin(ctx)

	state := e.State()
	if state.StreakDays != 1 {
		t.Errorf("Expected streak reset to 1, got %d", state.StreakDays)
	}
	if state.MaxStreakDays != 2 {
		t.Errorf("Expected max streak 2, got %d", state.MaxStreakDays)
	}
}

func TestTrackLogin_DSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	e, clock, _ := setupTestEngine(t)
	ctx := context.Background()

	// spring forward on 2024-03-10
	clock.t = time.Date(2024, 3, 9, 12, 0, 0, 0, loc)
	e.TrackLogin(ctx)
	clock.t = time.Date(2024, 3, 10, 12, 0, 0, 0, loc)
	e.TrackLogin(ctx)

	if got := e.State().StreakDays; got != 2 {
		t.Errorf("Expected streak 2 across DST, got %d", got)
	}
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		points, level, progress int
	}{
		{0, 1, 0},
		{10, 1, 10},
		{99, 1, 99},
		{100, 2, 0},
		{255, 3, 55},
	}
	for _, tc := range cases {
		if got := LevelFor(tc.points); got != tc.level {
			t.Errorf("LevelFor(%d): expected %d, got %d", tc.points, tc.level, got)
		}
		if got := LevelProgressFor(tc.points); got != tc.progress {
			t.Errorf("LevelProgressFor(%d): expected %d, got %d", tc.points, tc.progress, got)
		}
	}
}

func TestNew_RestoresState(t *testing.T) {
	e, _, backend := setupTestEngine(t)
	ctx := context.Background()
	e.IncrementPromptCount(ctx)
	e.TrackLogin(ctx)

	restored, err := New(ctx, backend, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("Failed to restore engine: %v", err)
	}
	state := restored.State()
	if state.Points != 10 || state.PromptCount != 1 || state.StreakDays != 1 {
		t.Errorf("Unexpected restored state %+v", state)
	}
	if len(restored.UnlockedAchievements()) != 1 {
		t.Error("Expected unlocked achievements to be restored")
	}
}

func TestReset(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()
	e.IncrementPromptCount(ctx)
	e.TrackLogin(ctx)

	e.Reset(ctx)

	profile := e.Profile()
	if profile.State.Points != 0 || profile.State.LastLogin != nil || profile.Level != 1 {
		t.Errorf("Expected zero state, got %+v", profile)
	}
	if len(profile.Unlocked) != 0 {
		t.Errorf("Expected no unlocked achievements, got %v", ids(profile.Unlocked))
	}
}
