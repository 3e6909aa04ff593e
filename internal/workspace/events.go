package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// EventType names a workspace transition.
type EventType string

const (
	EventCurriculumGenerated EventType = "curriculum_generated"
	EventGenerationFailed    EventType = "generation_failed"
	EventQuizAttached        EventType = "quiz_attached"
	EventTopicToggled        EventType = "topic_toggled"
	EventProgressReset       EventType = "progress_reset"
	EventReportExported      EventType = "report_exported"
)

// Event is one recorded workspace transition.
type Event struct {
	Type       EventType      `json:"type"`
	DocumentID string         `json:"document_id,omitempty"`
	UserEmail  string         `json:"user_email,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// Types lists the recorded event types in order.
func (l *MemoryEventLogger) Types() []EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EventType, len(l.events))
	for i, e := range l.events {
		out[i] = e.Type
	}
	return out
}

// PostgresEventLogger inserts events into the workspace_events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO workspace_events (event_type, document_id, user_email, data, created_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5)`,
		string(event.Type),
		event.DocumentID,
		event.UserEmail,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged",
		"type", event.Type,
		"document_id", event.DocumentID,
	)
	return nil
}

// MultiEventLogger fans an event out to several loggers. Every logger sees
// the event even when an earlier one fails.
type MultiEventLogger []EventLogger

func (m MultiEventLogger) LogEvent(event Event) error {
	var errs []error
	for _, l := range m {
		if err := l.LogEvent(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
