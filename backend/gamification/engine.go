package gamification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/TH33ORACL3/prompt-keeper/backend/kv"
	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

const pointsPerLevel = 100

// Options configures an Engine
type Options struct {
	Logger *slog.Logger
	// Now defaults to time.Now. Day boundaries are taken in the location of
	// the returned time.
	Now func() time.Time
	// Catalog defaults to the embedded achievements.
	Catalog []models.Achievement
}

// Engine tracks usage counters, login streaks, points and unlocked achievements.
// State is persisted to the gamification document after every change.
type Engine struct {
	mu      sync.Mutex
	state   models.GamificationState
	kv      kv.Store
	logger  *slog.Logger
	now     func() time.Time
	catalog []models.Achievement
}

// New restores the engine from backend, or starts from a zero state.
func New(ctx context.Context, backend kv.Store, opts Options) (*Engine, error) {
	e := &Engine{
		kv:      backend,
		logger:  opts.Logger,
		now:     opts.Now,
		catalog: opts.Catalog,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.catalog == nil {
		e.catalog = DefaultCatalog()
	}

	data, ok, err := backend.Load(ctx, kv.DocGamification)
	if err != nil {
		return nil, fmt.Errorf("failed to load gamification document: %w", err)
	}
	if ok {
		if err := json.Unmarshal(data, &e.state); err != nil {
			return nil, fmt.Errorf("failed to decode gamification document: %w", err)
		}
	}
	e.normalize()

	e.logger.Info("gamification engine loaded",
		"points", e.state.Points,
		"unlocked", len(e.state.UnlockedAchievements),
		"restored", ok,
	)
	return e, nil
}

func (e *Engine) normalize() {
	if e.state.UnlockedAchievements == nil {
		e.state.UnlockedAchievements = []string{}
	}
	if e.state.RecentAchievements == nil {
		e.state.RecentAchievements = []models.Achievement{}
	}
}

func (e *Engine) persistLocked(ctx context.Context, operation string) {
	data, err := json.Marshal(e.state)
	if err != nil {
		e.logger.Error("failed to encode gamification document", "error", err, "operation", operation)
		return
	}
	if err := e.kv.Save(context.WithoutCancel(ctx), kv.DocGamification, data); err != nil {
		e.logger.Error("failed to persist gamification document", "error", err, "operation", operation)
	}
}

// startOfDay truncates t to midnight in its own location
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// calendarDays counts whole calendar days from a to b. Computed on the civil
// date so DST transitions do not produce 23 or 25 hour days.
func calendarDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// TrackLogin advances the daily streak. A second login on the same day changes
// nothing. A login on the following day extends the streak and evaluates
// achievements; any longer gap, or the first login ever, restarts it at 1.
func (e *Engine) TrackLogin(ctx context.Context) []models.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	today := startOfDay(now)

	if e.state.LastLogin == nil {
		e.state.LastLogin = &today
		e.state.StreakDays = 1
		e.persistLocked(ctx, "TrackLogin")
		return nil
	}

	var unlocked []models.Achievement
	switch calendarDays(e.state.LastLogin.In(now.Location()), now) {
	case 0:
		return nil
	case 1:
		e.state.LastLogin = &today
		e.state.StreakDays++
		if e.state.StreakDays > e.state.MaxStreakDays {
			e.state.MaxStreakDays = e.state.StreakDays
		}
		unlocked = e.checkLocked()
	default:
		e.state.LastLogin = &today
		e.state.StreakDays = 1
	}

	e.logger.Debug("login tracked", "streak_days", e.state.StreakDays, "max_streak_days", e.state.MaxStreakDays)
	e.persistLocked(ctx, "TrackLogin")
	return unlocked
}

func (e *Engine) increment(ctx context.Context, counter *int, operation string) []models.Achievement {
	*counter++
	unlocked := e.checkLocked()
	e.persistLocked(ctx, operation)
	return unlocked
}

func (e *Engine) IncrementPromptCount(ctx context.Context) []models.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.increment(ctx, &e.state.PromptCount, "IncrementPromptCount")
}

func (e *Engine) IncrementCollectionCount(ctx context.Context) []models.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.increment(ctx, &e.state.CollectionCount, "IncrementCollectionCount")
}

func (e *Engine) IncrementVersionCount(ctx context.Context) []models.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.increment(ctx, &e.state.VersionCount, "IncrementVersionCount")
}

func (e *Engine) IncrementUsageCount(ctx context.Context) []models.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.increment(ctx, &e.state.UsageCount, "IncrementUsageCount")
}

// Apply feeds progress events from the prompt store into the matching counters
// and returns every achievement unlocked along the way. Unknown events are ignored.
func (e *Engine) Apply(ctx context.Context, events ...models.ProgressEvent) []models.Achievement {
	var unlocked []models.Achievement
	for _, ev := range events {
		var batch []models.Achievement
		switch ev {
		case models.EventPromptCreated:
			batch = e.IncrementPromptCount(ctx)
		case models.EventCollectionCreated:
			batch = e.IncrementCollectionCount(ctx)
		case models.EventVersionCreated:
			batch = e.IncrementVersionCount(ctx)
		case models.EventPromptUsed:
			batch = e.IncrementUsageCount(ctx)
		default:
			e.logger.Warn("ignoring unknown progress event", "event", ev)
		}
		unlocked = append(unlocked, batch...)
	}
	return unlocked
}

// CheckAchievements evaluates the catalog against the current counters.
func (e *Engine) CheckAchievements(ctx context.Context) []models.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	unlocked := e.checkLocked()
	if len(unlocked) > 0 {
		e.persistLocked(ctx, "CheckAchievements")
	}
	return unlocked
}

func (e *Engine) counterFor(t models.AchievementType) (int, bool) {
	switch t {
	case models.AchievementPromptCount:
		return e.state.PromptCount, true
	case models.AchievementCollectionCount:
		return e.state.CollectionCount, true
	case models.AchievementStreak:
		return e.state.StreakDays, true
	case models.AchievementVersionCount:
		return e.state.VersionCount, true
	case models.AchievementUsageCount:
		return e.state.UsageCount, true
	}
	return 0, false
}

// checkLocked unlocks every catalog entry whose threshold is met, in catalog
// order. A non-empty batch replaces RecentAchievements; an empty one leaves it.
func (e *Engine) checkLocked() []models.Achievement {
	var batch []models.Achievement
	for _, a := range e.catalog {
		if contains(e.state.UnlockedAchievements, a.ID) {
			continue
		}
		value, known := e.counterFor(a.Type)
		if known && value >= a.Threshold {
			batch = append(batch, a)
		}
	}
	if len(batch) == 0 {
		return nil
	}

	points := 0
	for _, a := range batch {
		e.state.UnlockedAchievements = append(e.state.UnlockedAchievements, a.ID)
		points += a.Points
	}
	e.state.Points += points
	e.state.RecentAchievements = append([]models.Achievement{}, batch...)

	e.logger.Info("achievements unlocked",
		"count", len(batch),
		"points_awarded", points,
		"total_points", e.state.Points,
	)
	return append([]models.Achievement(nil), batch...)
}

// LevelFor returns 1 + points/100
func LevelFor(points int) int {
	return 1 + points/pointsPerLevel
}

// LevelProgressFor returns the percentage (0-99) of the way through the current level
func LevelProgressFor(points int) int {
	inLevel := points - (LevelFor(points)-1)*pointsPerLevel
	return inLevel * 100 / pointsPerLevel
}

func (e *Engine) Level() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return LevelFor(e.state.Points)
}

func (e *Engine) LevelProgress() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return LevelProgressFor(e.state.Points)
}

func (e *Engine) RecentAchievements() []models.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Achievement{}, e.state.RecentAchievements...)
}

// ClearRecentAchievements empties the notification batch and returns what it held.
func (e *Engine) ClearRecentAchievements(ctx context.Context) []models.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	drained := e.state.RecentAchievements
	e.state.RecentAchievements = []models.Achievement{}
	e.persistLocked(ctx, "ClearRecentAchievements")
	return drained
}

// UnlockedAchievements returns unlocked catalog entries in catalog order
func (e *Engine) UnlockedAchievements() []models.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unlockedLocked()
}

func (e *Engine) unlockedLocked() []models.Achievement {
	out := []models.Achievement{}
	for _, a := range e.catalog {
		if contains(e.state.UnlockedAchievements, a.ID) {
			out = append(out, a)
		}
	}
	return out
}

// Catalog returns every known achievement
func (e *Engine) Catalog() []models.Achievement {
	return append([]models.Achievement(nil), e.catalog...)
}

func (e *Engine) State() models.GamificationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Profile bundles the state with its derived level figures
func (e *Engine) Profile() models.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.Profile{
		State:         e.state.Clone(),
		Level:         LevelFor(e.state.Points),
		LevelProgress: LevelProgressFor(e.state.Points),
		Unlocked:      e.unlockedLocked(),
	}
}

// Reset returns the engine to its zero state
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = models.GamificationState{}
	e.normalize()
	e.persistLocked(ctx, "Reset")
	e.logger.Info("gamification reset")
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
