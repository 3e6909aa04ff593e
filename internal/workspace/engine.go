// Package workspace is the application state of a single curriculum session:
// who is signed in, the generated history and the document on display. All
// state changes go through Engine, which persists at transition points.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
	"github.com/p-n-ai/curricuforge/internal/generation"
	"github.com/p-n-ai/curricuforge/internal/session"
)

var (
	ErrNotAuthenticated     = errors.New("not signed in")
	ErrInvalidIdentity      = errors.New("email and a student or teacher role are required")
	ErrDocumentNotFound     = errors.New("curriculum not found")
	ErrTopicNotFound        = errors.New("topic not found")
	ErrNoQuiz               = errors.New("topic has no quiz yet")
	ErrConfirmationRequired = errors.New("reset requires confirmation")
)

// Generator produces curricula and quizzes. *generation.Gateway satisfies it.
type Generator interface {
	GenerateDocument(ctx context.Context, req generation.Request) (curriculum.Document, error)
	GenerateQuiz(ctx context.Context, topicTitle string) (curriculum.Quiz, error)
}

// EngineConfig holds dependencies for the workspace engine.
type EngineConfig struct {
	Generator Generator
	Store     session.Store    // defaults to an in-memory store
	Events    EventLogger      // defaults to NopEventLogger
	Now       func() time.Time // defaults to time.Now
	NewID     func() string    // defaults to uuid.NewString
	Timeout   time.Duration    // bounds one generation call, defaults to DefaultTimeout
}

// DefaultTimeout bounds a generation call when EngineConfig.Timeout is unset.
const DefaultTimeout = 2 * time.Minute

// Engine owns the session state. History is newest first and is only ever
// replaced as a whole, so a slice returned by History never changes.
type Engine struct {
	gen     Generator
	store   session.Store
	events  EventLogger
	now     func() time.Time
	newID   func() string
	timeout time.Duration

	mu        sync.RWMutex
	identity  *curriculum.Identity
	history   []*curriculum.Document
	currentID string

	// persistMu orders history writes so the store always ends up with the
	// latest snapshot.
	persistMu sync.Mutex

	trackers map[RequestKind]*RequestTracker
	stats    curriculum.StatsMemo
}

// NewEngine creates a new workspace engine.
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		gen:     cfg.Generator,
		store:   cfg.Store,
		events:  cfg.Events,
		now:     cfg.Now,
		newID:   cfg.NewID,
		timeout: cfg.Timeout,
		trackers: map[RequestKind]*RequestTracker{
			KindCurriculum: NewRequestTracker(KindCurriculum),
			KindQuiz:       NewRequestTracker(KindQuiz),
		},
	}
	if e.store == nil {
		e.store = session.NewMemoryStore()
	}
	if e.events == nil {
		e.events = NopEventLogger{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	return e
}

// detach returns a context that outlives the caller's. An issued generation
// request runs to completion or until the engine timeout.
func (e *Engine) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
}

// Restore loads the saved identity and history. On failure the engine keeps
// whatever it has in memory and the error is returned for logging.
func (e *Engine) Restore(ctx context.Context) error {
	var id curriculum.Identity
	okID, errID := session.LoadJSON(ctx, e.store, session.UserKey, &id)

	var history []*curriculum.Document
	okHist, errHist := session.LoadJSON(ctx, e.store, session.HistoryKey, &history)

	e.mu.Lock()
	if errID == nil && okID && id.Role.Valid() {
		e.identity = &id
	}
	if errHist == nil && okHist {
		e.history = slices.DeleteFunc(history, func(d *curriculum.Document) bool { return d == nil })
	}
	e.mu.Unlock()

	slog.Info("workspace restored", "signed_in", okID, "documents", len(history))
	return errors.Join(errID, errHist)
}

// Seed appends documents whose ids are not in the history yet. Seeds are
// treated as older than everything generated in the session.
func (e *Engine) Seed(docs []*curriculum.Document) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := slices.Clone(e.history)
	added := 0
	for _, d := range docs {
		if d == nil || d.ID == "" || indexOf(next, d.ID) >= 0 {
			continue
		}
		next = append(next, d)
		added++
	}
	e.history = next
	return added
}

// Login records a self-declared identity. Nothing is verified.
func (e *Engine) Login(ctx context.Context, email string, role curriculum.Role) (curriculum.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || !role.Valid() {
		return curriculum.Identity{}, ErrInvalidIdentity
	}
	id := curriculum.Identity{Email: email, Role: role}

	e.mu.Lock()
	e.identity = &id
	e.mu.Unlock()

	e.persist(ctx, session.UserKey, id)
	slog.Info("signed in", "email", email, "role", role)
	return id, nil
}

// Logout clears the identity and the displayed document. History is kept.
func (e *Engine) Logout(ctx context.Context) {
	e.mu.Lock()
	e.identity = nil
	e.currentID = ""
	e.mu.Unlock()

	if err := e.store.Remove(ctx, session.UserKey); err != nil {
		slog.Warn("failed to forget identity", "error", err)
	}
}

// Identity returns the signed-in user.
func (e *Engine) Identity() (curriculum.Identity, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.identity == nil {
		return curriculum.Identity{}, false
	}
	return *e.identity, true
}

func (e *Engine) requireIdentity() (curriculum.Identity, error) {
	id, ok := e.Identity()
	if !ok {
		return curriculum.Identity{}, ErrNotAuthenticated
	}
	return id, nil
}

// Generate creates a curriculum, stamps it and puts it at the head of the
// history. Nothing is kept when generation fails.
func (e *Engine) Generate(ctx context.Context, req generation.Request) (*curriculum.Document, error) {
	who, err := e.requireIdentity()
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tracker := e.trackers[KindCurriculum]
	if err := tracker.Begin(); err != nil {
		return nil, err
	}
	ctx, cancel := e.detach(ctx)
	defer cancel()

	generated, err := e.gen.GenerateDocument(ctx, req)
	if err != nil {
		tracker.Fail(FailureNotice)
		e.logEvent(Event{
			Type:      EventGenerationFailed,
			UserEmail: who.Email,
			Data:      map[string]any{"kind": string(KindCurriculum), "title": req.Title, "error": err.Error()},
		})
		return nil, err
	}

	doc := &generated
	doc.ID = e.newID()
	doc.CreatedAt = e.now()

	e.mu.Lock()
	e.history = append([]*curriculum.Document{doc}, e.history...)
	e.currentID = doc.ID
	e.mu.Unlock()

	tracker.Succeed()
	e.persistHistory(ctx)
	e.logEvent(Event{
		Type:       EventCurriculumGenerated,
		DocumentID: doc.ID,
		UserEmail:  who.Email,
		Data:       map[string]any{"title": doc.Title, "periods": len(doc.Periods)},
	})
	return doc, nil
}

// StartQuiz returns the quiz of a topic, generating it on first use. The
// result is attached to the latest version of the document, and only when
// that document is still in the history and the topic has no quiz yet.
func (e *Engine) StartQuiz(ctx context.Context, docID string, p curriculum.Path) (curriculum.Quiz, error) {
	who, err := e.requireIdentity()
	if err != nil {
		return curriculum.Quiz{}, err
	}
	doc, err := e.Document(docID)
	if err != nil {
		return curriculum.Quiz{}, err
	}
	if !p.In(doc) {
		return curriculum.Quiz{}, fmt.Errorf("%w: %s", ErrTopicNotFound, p)
	}
	topic := doc.Topic(p)
	if topic.Quiz != nil {
		return *topic.Quiz, nil
	}

	tracker := e.trackers[KindQuiz]
	if err := tracker.Begin(); err != nil {
		return curriculum.Quiz{}, err
	}
	ctx, cancel := e.detach(ctx)
	defer cancel()

	quiz, err := e.gen.GenerateQuiz(ctx, topic.Title)
	if err != nil {
		tracker.Fail(FailureNotice)
		e.logEvent(Event{
			Type:       EventGenerationFailed,
			DocumentID: docID,
			UserEmail:  who.Email,
			Data:       map[string]any{"kind": string(KindQuiz), "topic": topic.Title, "error": err.Error()},
		})
		return curriculum.Quiz{}, err
	}
	tracker.Succeed()

	e.mu.Lock()
	i := indexOf(e.history, docID)
	if i < 0 {
		e.mu.Unlock()
		slog.Warn("discarding quiz for removed curriculum", "document_id", docID, "topic", topic.Title)
		return curriculum.Quiz{}, ErrDocumentNotFound
	}
	latest := e.history[i]
	if existing := latest.Topic(p).Quiz; existing != nil {
		e.mu.Unlock()
		return *existing, nil
	}
	e.history = replaceAt(e.history, i, curriculum.Apply(latest, p, curriculum.AttachQuiz(quiz)))
	e.mu.Unlock()

	e.persistHistory(ctx)
	e.logEvent(Event{
		Type:       EventQuizAttached,
		DocumentID: docID,
		UserEmail:  who.Email,
		Data:       map[string]any{"topic": topic.Title, "questions": len(quiz.Questions)},
	})
	return quiz, nil
}

// ToggleTopic flips the completion of one topic.
func (e *Engine) ToggleTopic(ctx context.Context, docID string, p curriculum.Path) (*curriculum.Document, error) {
	who, err := e.requireIdentity()
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	i := indexOf(e.history, docID)
	if i < 0 {
		e.mu.Unlock()
		return nil, ErrDocumentNotFound
	}
	if !p.In(e.history[i]) {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrTopicNotFound, p)
	}
	updated := curriculum.Apply(e.history[i], p, curriculum.ToggleCompletion())
	e.history = replaceAt(e.history, i, updated)
	e.mu.Unlock()

	e.persistHistory(ctx)
	e.logEvent(Event{
		Type:       EventTopicToggled,
		DocumentID: docID,
		UserEmail:  who.Email,
		Data:       map[string]any{"path": p.String(), "completed": updated.Topic(p).Completed},
	})
	return updated, nil
}

// ResetProgress clears every completion mark of a document. It is
// irreversible, so the caller must pass confirm.
func (e *Engine) ResetProgress(ctx context.Context, docID string, confirm bool) (*curriculum.Document, error) {
	who, err := e.requireIdentity()
	if err != nil {
		return nil, err
	}
	if !confirm {
		return nil, ErrConfirmationRequired
	}

	e.mu.Lock()
	i := indexOf(e.history, docID)
	if i < 0 {
		e.mu.Unlock()
		return nil, ErrDocumentNotFound
	}
	updated := curriculum.ResetProgress(e.history[i])
	e.history = replaceAt(e.history, i, updated)
	e.mu.Unlock()

	e.persistHistory(ctx)
	e.logEvent(Event{Type: EventProgressReset, DocumentID: docID, UserEmail: who.Email})
	return updated, nil
}

// GradeQuiz scores a student attempt on the quiz attached to a topic.
func (e *Engine) GradeQuiz(docID string, p curriculum.Path, answers []int) (curriculum.Grade, error) {
	if _, err := e.requireIdentity(); err != nil {
		return curriculum.Grade{}, err
	}
	doc, err := e.Document(docID)
	if err != nil {
		return curriculum.Grade{}, err
	}
	if !p.In(doc) {
		return curriculum.Grade{}, fmt.Errorf("%w: %s", ErrTopicNotFound, p)
	}
	quiz := doc.Topic(p).Quiz
	if quiz == nil {
		return curriculum.Grade{}, ErrNoQuiz
	}
	return curriculum.GradeAttempt(*quiz, answers)
}

// Select makes a document from the history the displayed one.
func (e *Engine) Select(docID string) (*curriculum.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := indexOf(e.history, docID)
	if i < 0 {
		return nil, ErrDocumentNotFound
	}
	e.currentID = docID
	return e.history[i], nil
}

// Current returns the displayed document, if any.
func (e *Engine) Current() (*curriculum.Document, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i := indexOf(e.history, e.currentID)
	if i < 0 {
		return nil, false
	}
	return e.history[i], true
}

// Document returns the latest version of a document.
func (e *Engine) Document(docID string) (*curriculum.Document, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i := indexOf(e.history, docID)
	if i < 0 {
		return nil, ErrDocumentNotFound
	}
	return e.history[i], nil
}

// History returns the documents, newest first.
func (e *Engine) History() []*curriculum.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history
}

// Stats returns the statistics of a document.
func (e *Engine) Stats(docID string) (curriculum.Stats, error) {
	doc, err := e.Document(docID)
	if err != nil {
		return curriculum.Stats{}, err
	}
	return e.stats.Stats(doc), nil
}

// Requests returns the state of every request kind.
func (e *Engine) Requests() []RequestStatus {
	return []RequestStatus{
		e.trackers[KindCurriculum].Status(),
		e.trackers[KindQuiz].Status(),
	}
}

// Dismiss acknowledges the outcome of a request kind.
func (e *Engine) Dismiss(kind RequestKind) error {
	t, ok := e.trackers[kind]
	if !ok {
		return fmt.Errorf("unknown request kind %q", kind)
	}
	t.Dismiss()
	return nil
}

// RecordExport logs that a report was downloaded.
func (e *Engine) RecordExport(docID, format string) {
	who, _ := e.Identity()
	e.logEvent(Event{
		Type:       EventReportExported,
		DocumentID: docID,
		UserEmail:  who.Email,
		Data:       map[string]any{"format": format},
	})
}

func (e *Engine) persistHistory(ctx context.Context) {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()
	e.persist(ctx, session.HistoryKey, e.History())
}

func (e *Engine) persist(ctx context.Context, key string, v any) {
	if err := session.SaveJSON(ctx, e.store, key, v); err != nil {
		slog.Warn("session state not saved", "key", key, "error", err)
	}
}

func (e *Engine) logEvent(ev Event) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = e.now()
	}
	if err := e.events.LogEvent(ev); err != nil {
		slog.Warn("failed to log event", "type", ev.Type, "error", err)
	}
}

func indexOf(history []*curriculum.Document, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(history, func(d *curriculum.Document) bool { return d.ID == id })
}

// replaceAt returns a new slice with the i-th document replaced.
func replaceAt(history []*curriculum.Document, i int, doc *curriculum.Document) []*curriculum.Document {
	next := slices.Clone(history)
	next[i] = doc
	return next
}
