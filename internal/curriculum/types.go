// Package curriculum holds the generated curriculum document model, the
// copy-on-write edits applied to it and the statistics derived from it.
package curriculum

import (
	"fmt"
	"strings"
	"time"
)

// DurationUnit is the unit a curriculum's length is expressed in.
type DurationUnit string

const (
	Days      DurationUnit = "Days"
	Weeks     DurationUnit = "Weeks"
	Months    DurationUnit = "Months"
	Semesters DurationUnit = "Semesters"
)

// Units lists the supported duration units in display order.
var Units = []DurationUnit{Days, Weeks, Months, Semesters}

// Valid reports whether u is one of the supported units.
func (u DurationUnit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// Singular returns the unit name without its plural suffix ("Weeks" -> "Week").
func (u DurationUnit) Singular() string {
	return strings.TrimSuffix(string(u), "s")
}

// PeriodLabel returns the label of the n-th (1-based) period, e.g. "Week 3".
func (u DurationUnit) PeriodLabel(n int) string {
	return fmt.Sprintf("%s %d", u.Singular(), n)
}

// Difficulty classifies a topic.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// ResourceKind is the type of an external learning link.
type ResourceKind string

const (
	Video         ResourceKind = "video"
	Article       ResourceKind = "article"
	Blog          ResourceKind = "blog"
	Documentation ResourceKind = "documentation"
)

// Resource is an external learning link attached to a topic.
type Resource struct {
	Kind  ResourceKind `json:"type" yaml:"type"`
	Title string       `json:"title" yaml:"title"`
	URL   string       `json:"url" yaml:"url"`
}

// Question is one multiple-choice question. Options are shown lettered A-D.
type Question struct {
	Prompt        string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectOption int      `json:"correctAnswer" yaml:"correctAnswer"`
	Explanation   string   `json:"explanation" yaml:"explanation"`
}

// OptionLetter returns the display letter for the option at index i.
func OptionLetter(i int) string {
	return string(rune('A' + i))
}

// Quiz is a generated assessment attached to a single topic.
type Quiz struct {
	TopicTitle string     `json:"topicTitle" yaml:"topicTitle"`
	Questions  []Question `json:"questions" yaml:"questions"`
}

// Topic is the smallest trackable unit of learning content.
type Topic struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
	Completed   bool       `json:"completed" yaml:"completed"`
	Resources   []Resource `json:"resources,omitempty" yaml:"resources,omitempty"`
	Quiz        *Quiz      `json:"quiz,omitempty" yaml:"quiz,omitempty"`
}

// Course groups topics within a period. Code is expected, not enforced,
// to be unique within its period.
type Course struct {
	Name        string  `json:"courseName" yaml:"courseName"`
	Code        string  `json:"courseCode" yaml:"courseCode"`
	Description string  `json:"description" yaml:"description"`
	Topics      []Topic `json:"topics" yaml:"topics"`
}

// Period is one chronological phase of a curriculum, e.g. "Week 2".
type Period struct {
	Label   string   `json:"periodLabel" yaml:"periodLabel"`
	Courses []Course `json:"courses" yaml:"courses"`
}

// Document is a complete generated curriculum.
//
// A Document is never modified after it has been published to the session
// history; edits go through Apply and ResetProgress, which return a new
// Document and leave the receiver untouched.
type Document struct {
	ID               string       `json:"id" yaml:"id"`
	CreatedAt        time.Time    `json:"createdAt" yaml:"createdAt"`
	Title            string       `json:"title" yaml:"title"`
	Description      string       `json:"description" yaml:"description"`
	DurationCount    int          `json:"durationValue" yaml:"durationValue"`
	DurationUnit     DurationUnit `json:"durationType" yaml:"durationType"`
	Periods          []Period     `json:"periods" yaml:"periods"`
	Outcomes         []string     `json:"obe_outcomes" yaml:"obe_outcomes"`
	JobRoles         []string     `json:"job_roles" yaml:"job_roles"`
	CapstoneProjects []string     `json:"capstone_projects" yaml:"capstone_projects"`
}

// Duration renders the document length for display ("4 Weeks").
func (d *Document) Duration() string {
	return fmt.Sprintf("%d %s", d.DurationCount, d.DurationUnit)
}

// Topic returns the topic addressed by p. p must be valid for d.
func (d *Document) Topic(p Path) Topic {
	return d.Periods[p.Period].Courses[p.Course].Topics[p.Topic]
}

// Role is the self-declared role of the session user.
type Role string

const (
	Student Role = "student"
	Teacher Role = "teacher"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == Student || r == Teacher
}

// Identity is the session user. It is declared at login and never verified.
type Identity struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// RevealsAnswers reports whether quiz answers are shown before submission.
func (i Identity) RevealsAnswers() bool {
	return i.Role == Teacher
}
