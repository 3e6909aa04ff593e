// Package generation turns curriculum and quiz requests into validated
// curriculum values using a text-generation backend.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/p-n-ai/curricuforge/internal/ai"
	"github.com/p-n-ai/curricuforge/internal/curriculum"
)

// QuizQuestions is the number of questions requested per quiz.
const QuizQuestions = 5

var (
	// ErrGenerationFailed wraps every transport, decode or schema failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrInvalidRequest is returned for a request that was never sent.
	ErrInvalidRequest = errors.New("invalid generation request")
)

// Completer is the completion backend the gateway talks to. *ai.Router
// satisfies it.
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error)
}

// Request describes the curriculum to generate.
type Request struct {
	Title    string                  `json:"title" validate:"required"`
	Unit     curriculum.DurationUnit `json:"durationType" validate:"required,oneof=Days Weeks Months Semesters"`
	Count    int                     `json:"durationValue" validate:"required,min=1"`
	Audience string                  `json:"targetAudience"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the request before anything is sent.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Gateway issues single-attempt generation calls. It never retries and never
// returns partial results.
type Gateway struct {
	ai        Completer
	maxTokens int
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithMaxTokens caps the reply size of curriculum requests.
func WithMaxTokens(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// New creates a gateway on top of c.
func New(c Completer, opts ...Option) *Gateway {
	g := &Gateway{ai: c, maxTokens: 16384}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateDocument asks for a curriculum with exactly req.Count periods. The
// result has no identity or timestamp; stamping is up to the caller.
func (g *Gateway) GenerateDocument(ctx context.Context, req Request) (curriculum.Document, error) {
	if err := req.Validate(); err != nil {
		return curriculum.Document{}, err
	}

	prompt, err := render(builtinPrompts.curriculum, curriculumPrompt(req))
	if err != nil {
		return curriculum.Document{}, fail(err)
	}

	raw, err := g.complete(ctx, ai.TaskCurriculum, prompt, documentSchema(requestSchema, req.Count), g.maxTokens)
	if err != nil {
		return curriculum.Document{}, err
	}

	var wire wireDocument
	if err := decodeValidated(documentValidator, raw, &wire); err != nil {
		slog.Error("curriculum reply rejected", "title", req.Title, "error", err)
		return curriculum.Document{}, fail(err)
	}

	doc := toDocument(wire, req)
	slog.Info("curriculum generated",
		"title", doc.Title,
		"periods", len(doc.Periods),
		"duration", doc.Duration(),
	)
	return doc, nil
}

// GenerateQuiz asks for a QuizQuestions-question quiz on topicTitle.
func (g *Gateway) GenerateQuiz(ctx context.Context, topicTitle string) (curriculum.Quiz, error) {
	if topicTitle == "" {
		return curriculum.Quiz{}, fmt.Errorf("%w: topic title is required", ErrInvalidRequest)
	}

	prompt, err := render(builtinPrompts.quiz, quizPrompt{TopicTitle: topicTitle, Questions: QuizQuestions})
	if err != nil {
		return curriculum.Quiz{}, fail(err)
	}

	raw, err := g.complete(ctx, ai.TaskQuiz, prompt, quizSchema(requestSchema, QuizQuestions), 4096)
	if err != nil {
		return curriculum.Quiz{}, err
	}

	var wire wireQuiz
	if err := decodeValidated(quizValidator, raw, &wire); err != nil {
		slog.Error("quiz reply rejected", "topic", topicTitle, "error", err)
		return curriculum.Quiz{}, fail(err)
	}
	return toQuiz(wire, topicTitle), nil
}

func (g *Gateway) complete(ctx context.Context, task ai.TaskType, prompt string, schema map[string]any, maxTokens int) (string, error) {
	resp, err := g.ai.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: builtinPrompts.system},
			{Role: "user", Content: prompt},
		},
		Task:           task,
		MaxTokens:      maxTokens,
		ResponseSchema: schema,
		SchemaName:     task.String(),
	})
	if err != nil {
		slog.Error("generation request failed", "task", task.String(), "error", err)
		return "", fail(err)
	}
	return stripFences(resp.Content), nil
}

func fail(err error) error {
	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}
