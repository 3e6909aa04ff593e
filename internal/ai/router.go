package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrNoProvider is returned when no provider can serve a task.
var ErrNoProvider = errors.New("no AI provider registered")

// Router selects the provider for a task. Each request is sent to exactly
// one provider once; failures are returned to the caller, never retried.
type Router struct {
	providers map[string]Provider
	order     []string
	routes    map[TaskType]string
	usage     *UsageMeter
	mu        sync.RWMutex
}

// NewRouter creates a new AI router.
func NewRouter() *Router {
	return &Router{
		providers: make(map[string]Provider),
		routes:    make(map[TaskType]string),
		usage:     NewUsageMeter(),
	}
}

// Register adds a provider to the router. The first registered provider
// serves every task without an explicit route.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.providers[name] = provider
}

// Route sends all requests of the given task to the named provider.
func (r *Router) Route(task TaskType, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("route %s: unknown provider %q", task, name)
	}
	r.routes[task] = name
	return nil
}

func (r *Router) pick(task TaskType) (string, Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.routes[task]
	if !ok {
		if len(r.order) == 0 {
			return "", nil, false
		}
		name = r.order[0]
	}
	return name, r.providers[name], true
}

// Complete sends the request to the provider routed for req.Task.
func (r *Router) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	name, provider, ok := r.pick(req.Task)
	if !ok {
		return CompletionResponse{}, ErrNoProvider
	}

	resp, err := provider.Complete(ctx, req)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("provider %s: %w", name, err)
	}

	r.usage.Record(req.Task, resp)
	slog.Debug("AI request completed",
		"provider", name,
		"task", req.Task.String(),
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
	)
	return resp, nil
}

// HasProvider returns true if at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}

// Models lists the models of every registered provider by provider name.
func (r *Router) Models() map[string][]ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]ModelInfo, len(r.providers))
	for name, p := range r.providers {
		out[name] = p.Models()
	}
	return out
}

// HealthCheck checks every provider that serves at least one task.
func (r *Router) HealthCheck(ctx context.Context) error {
	checked := make(map[string]bool)
	for _, task := range []TaskType{TaskCurriculum, TaskQuiz} {
		name, provider, ok := r.pick(task)
		if !ok {
			return ErrNoProvider
		}
		if checked[name] {
			continue
		}
		checked[name] = true
		if err := provider.HealthCheck(ctx); err != nil {
			return fmt.Errorf("provider %s: %w", name, err)
		}
	}
	return nil
}

// Usage returns the token usage recorded so far.
func (r *Router) Usage() map[string]Usage {
	return r.usage.Snapshot()
}
