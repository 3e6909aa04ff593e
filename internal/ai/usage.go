package ai

import "sync"

// Usage is the accumulated token usage of one task type.
type Usage struct {
	Requests     int   `json:"requests"`
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// UsageMeter accumulates token usage per task in memory.
type UsageMeter struct {
	mu     sync.RWMutex
	byTask map[TaskType]Usage
}

// NewUsageMeter creates an empty usage meter.
func NewUsageMeter() *UsageMeter {
	return &UsageMeter{byTask: make(map[TaskType]Usage)}
}

// Record adds the tokens of a completed request.
func (m *UsageMeter) Record(task TaskType, resp CompletionResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.byTask[task]
	u.Requests++
	u.InputTokens += int64(resp.InputTokens)
	u.OutputTokens += int64(resp.OutputTokens)
	m.byTask[task] = u
}

// Snapshot returns usage keyed by task name.
func (m *UsageMeter) Snapshot() map[string]Usage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Usage, len(m.byTask))
	for task, u := range m.byTask {
		out[task.String()] = u
	}
	return out
}
