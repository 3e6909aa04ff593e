package workspace

import (
	"errors"
	"fmt"
	"sync"
)

// ErrRequestInFlight is returned when a request of the same kind is already
// running.
var ErrRequestInFlight = errors.New("request already in flight")

// FailureNotice is the message shown for every failed generation.
const FailureNotice = "The forge ran too hot! Please try again later."

// RequestKind names an asynchronous request type.
type RequestKind string

const (
	KindCurriculum RequestKind = "curriculum"
	KindQuiz       RequestKind = "quiz"
)

// RequestState is a step of the request lifecycle.
type RequestState string

const (
	Idle       RequestState = "idle"
	Requesting RequestState = "requesting"
	Succeeded  RequestState = "succeeded"
	Failed     RequestState = "failed"
)

// RequestStatus is a snapshot of a tracker.
type RequestStatus struct {
	Kind   RequestKind  `json:"kind"`
	State  RequestState `json:"state"`
	Notice string       `json:"notice,omitempty"`
}

// RequestTracker enforces Idle -> Requesting -> (Succeeded | Failed) -> Idle
// for one request kind. A trigger is disabled exactly while Requesting.
type RequestTracker struct {
	kind RequestKind

	mu     sync.Mutex
	state  RequestState
	notice string
}

// NewRequestTracker creates an idle tracker.
func NewRequestTracker(kind RequestKind) *RequestTracker {
	return &RequestTracker{kind: kind, state: Idle}
}

// Begin moves to Requesting. Any previous notice is cleared.
func (r *RequestTracker) Begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Requesting {
		return fmt.Errorf("%s: %w", r.kind, ErrRequestInFlight)
	}
	r.state = Requesting
	r.notice = ""
	return nil
}

// Succeed ends the request successfully.
func (r *RequestTracker) Succeed() {
	r.finish(Succeeded, "")
}

// Fail ends the request and keeps notice until Dismiss or the next Begin.
func (r *RequestTracker) Fail(notice string) {
	r.finish(Failed, notice)
}

func (r *RequestTracker) finish(state RequestState, notice string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Requesting {
		return
	}
	r.state = state
	r.notice = notice
}

// Dismiss acknowledges a finished request and returns to Idle. It has no
// effect while Requesting.
func (r *RequestTracker) Dismiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Requesting {
		r.state = Idle
		r.notice = ""
	}
}

// Status returns the current state.
func (r *RequestTracker) Status() RequestStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RequestStatus{Kind: r.kind, State: r.state, Notice: r.notice}
}
