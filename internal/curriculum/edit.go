package curriculum

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidEditTarget is the panic value (wrapped) raised when an edit path
// does not address an existing topic. It signals a caller bug.
var ErrInvalidEditTarget = errors.New("invalid edit target")

// Path addresses a topic by its position in the document tree.
type Path struct {
	Period int `json:"period"`
	Course int `json:"course"`
	Topic  int `json:"topic"`
}

func (p Path) String() string {
	return fmt.Sprintf("period %d / course %d / topic %d", p.Period, p.Course, p.Topic)
}

// In reports whether p addresses an existing topic of d. Callers holding
// untrusted indices check this before calling Apply.
func (p Path) In(d *Document) bool {
	if p.Period < 0 || p.Period >= len(d.Periods) {
		return false
	}
	courses := d.Periods[p.Period].Courses
	if p.Course < 0 || p.Course >= len(courses) {
		return false
	}
	return p.Topic >= 0 && p.Topic < len(courses[p.Course].Topics)
}

// Edit is a change to a single topic.
type Edit interface {
	apply(Topic) Topic
}

type toggleCompletion struct{}

func (toggleCompletion) apply(t Topic) Topic {
	t.Completed = !t.Completed
	return t
}

// ToggleCompletion flips the completed flag of the targeted topic.
func ToggleCompletion() Edit {
	return toggleCompletion{}
}

type attachQuiz struct {
	quiz Quiz
}

func (a attachQuiz) apply(t Topic) Topic {
	if t.Quiz != nil {
		return t
	}
	q := a.quiz
	t.Quiz = &q
	return t
}

// AttachQuiz sets the quiz of the targeted topic. A topic that already has a
// quiz keeps it; callers reuse the cached quiz instead of issuing this edit.
func AttachQuiz(q Quiz) Edit {
	return attachQuiz{quiz: q}
}

// Apply returns a copy of d with e applied to the topic at p. Only the
// containers on the path to that topic are copied; d itself is not modified.
// Apply panics with ErrInvalidEditTarget when p is not in d.
func Apply(d *Document, p Path, e Edit) *Document {
	if !p.In(d) {
		panic(fmt.Errorf("%w: %s", ErrInvalidEditTarget, p))
	}

	out := *d
	out.Periods = slices.Clone(d.Periods)

	period := &out.Periods[p.Period]
	period.Courses = slices.Clone(period.Courses)

	course := &period.Courses[p.Course]
	course.Topics = slices.Clone(course.Topics)
	course.Topics[p.Topic] = e.apply(course.Topics[p.Topic])

	return &out
}

// ResetProgress returns a copy of d with every topic marked not completed.
// Courses without completed topics are shared with d.
func ResetProgress(d *Document) *Document {
	out := *d
	out.Periods = make([]Period, len(d.Periods))

	for pi, period := range d.Periods {
		courses := make([]Course, len(period.Courses))
		for ci, course := range period.Courses {
			if !slices.ContainsFunc(course.Topics, func(t Topic) bool { return t.Completed }) {
				courses[ci] = course
				continue
			}
			topics := slices.Clone(course.Topics)
			for ti := range topics {
				topics[ti].Completed = false
			}
			course.Topics = topics
			courses[ci] = course
		}
		period.Courses = courses
		out.Periods[pi] = period
	}

	return &out
}
