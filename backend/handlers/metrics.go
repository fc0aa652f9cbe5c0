package handlers

import (
	"fmt"
	"sync/atomic"
)

// Metrics holds application metrics using atomic counters
type Metrics struct {
	promptsCreated        atomic.Int64
	promptVersionsCreated atomic.Int64
	promptsUsed           atomic.Int64
	collectionsCreated    atomic.Int64
	achievementsUnlocked  atomic.Int64
	httpRequests          atomic.Int64
	httpErrors            atomic.Int64
	aiRequests            atomic.Int64
	aiErrors              atomic.Int64
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncrementPromptsCreated increments the prompts created counter
func (m *Metrics) IncrementPromptsCreated() {
	m.promptsCreated.Add(1)
}

// IncrementPromptVersionsCreated increments the prompt versions created counter
func (m *Metrics) IncrementPromptVersionsCreated() {
	m.promptVersionsCreated.Add(1)
}

func (m *Metrics) IncrementPromptsUsed() {
	m.promptsUsed.Add(1)
}

func (m *Metrics) IncrementCollectionsCreated() {
	m.collectionsCreated.Add(1)
}

// AddAchievementsUnlocked adds n newly unlocked achievements
func (m *Metrics) AddAchievementsUnlocked(n int) {
	m.achievementsUnlocked.Add(int64(n))
}

// IncrementHTTPRequests increments the HTTP requests counter
func (m *Metrics) IncrementHTTPRequests() {
	m.httpRequests.Add(1)
}

// IncrementHTTPErrors increments the HTTP errors counter
func (m *Metrics) IncrementHTTPErrors() {
	m.httpErrors.Add(1)
}

// IncrementAIRequests counts calls that reached the AI gateway
func (m *Metrics) IncrementAIRequests() {
	m.aiRequests.Add(1)
}

func (m *Metrics) IncrementAIErrors() {
	m.aiErrors.Add(1)
}

// ExportPrometheus returns metrics in Prometheus text format
func (m *Metrics) ExportPrometheus() string {
	return fmt.Sprintf(`# HELP prompts_created_total Total number of prompts created
# TYPE prompts_created_total counter
prompts_created_total %d

# HELP prompt_versions_created_total Total number of prompt versions created
# TYPE prompt_versions_created_total counter
prompt_versions_created_total %d

# HELP prompts_used_total Total number of prompt uses
# TYPE prompts_used_total counter
prompts_used_total %d

# HELP collections_created_total Total number of collections created
# TYPE collections_created_total counter
collections_created_total %d

# HELP achievements_unlocked_total Total number of achievements unlocked
# TYPE achievements_unlocked_total counter
achievements_unlocked_total %d

# HELP http_requests_total Total number of HTTP requests
# TYPE http_requests_total counter
http_requests_total %d

# HELP http_errors_total Total number of HTTP errors
# TYPE http_errors_total counter
http_errors_total %d

# HELP ai_requests_total Total number of AI gateway requests
# TYPE ai_requests_total counter
ai_requests_total %d

# HELP ai_errors_total Total number of failed AI gateway requests
# TYPE ai_errors_total counter
ai_errors_total %d
`,
		m.promptsCreated.Load(),
		m.promptVersionsCreated.Load(),
		m.promptsUsed.Load(),
		m.collectionsCreated.Load(),
		m.achievementsUnlocked.Load(),
		m.httpRequests.Load(),
		m.httpErrors.Load(),
		m.aiRequests.Load(),
		m.aiErrors.Load(),
	)
}
