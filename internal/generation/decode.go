package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
)

// Wire types mirror the reply JSON loosely; they are converted into the
// curriculum model right after validation.
type wireDocument struct {
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Periods          []wirePeriod `json:"periods"`
	Outcomes         []string     `json:"obe_outcomes"`
	JobRoles         []string     `json:"job_roles"`
	CapstoneProjects []string     `json:"capstone_projects"`
}

type wirePeriod struct {
	Label   string       `json:"periodLabel"`
	Courses []wireCourse `json:"courses"`
}

type wireCourse struct {
	Name        string      `json:"courseName"`
	Code        string      `json:"courseCode"`
	Description string      `json:"description"`
	Topics      []wireTopic `json:"topics"`
}

type wireTopic struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Difficulty  string         `json:"difficulty"`
	Resources   []wireResource `json:"resources"`
}

type wireResource struct {
	Kind  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type wireQuiz struct {
	TopicTitle string         `json:"topicTitle"`
	Questions  []wireQuestion `json:"questions"`
}

type wireQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	// Models sometimes emit 2.0 for an integer index.
	CorrectAnswer float64 `json:"correctAnswer"`
	Explanation   string  `json:"explanation"`
}

// stripFences removes a markdown code fence around a JSON reply.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// decodeValidated checks raw against schema and then decodes it into v.
func decodeValidated(schema *gojsonschema.Schema, raw string, v any) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("parse reply: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("reply violates schema: %s", strings.Join(problems, "; "))
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

func toDocument(w wireDocument, req Request) curriculum.Document {
	doc := curriculum.Document{
		Title:            strings.TrimSpace(w.Title),
		Description:      w.Description,
		DurationCount:    req.Count,
		DurationUnit:     req.Unit,
		Periods:          make([]curriculum.Period, len(w.Periods)),
		Outcomes:         nonNil(w.Outcomes),
		JobRoles:         nonNil(w.JobRoles),
		CapstoneProjects: nonNil(w.CapstoneProjects),
	}
	if doc.Title == "" {
		doc.Title = req.Title
	}

	for i, wp := range w.Periods {
		p := curriculum.Period{Label: wp.Label, Courses: make([]curriculum.Course, len(wp.Courses))}
		if p.Label == "" {
			p.Label = req.Unit.PeriodLabel(i + 1)
		}
		for j, wc := range wp.Courses {
			c := curriculum.Course{
				Name:        wc.Name,
				Code:        wc.Code,
				Description: wc.Description,
				Topics:      make([]curriculum.Topic, len(wc.Topics)),
			}
			for k, wt := range wc.Topics {
				c.Topics[k] = toTopic(wt)
			}
			p.Courses[j] = c
		}
		doc.Periods[i] = p
	}
	return doc
}

func toTopic(w wireTopic) curriculum.Topic {
	t := curriculum.Topic{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Difficulty:  normalizeDifficulty(w.Difficulty),
		Resources:   make([]curriculum.Resource, 0, len(w.Resources)),
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	for _, r := range w.Resources {
		t.Resources = append(t.Resources, curriculum.Resource{
			Kind:  normalizeResourceKind(r.Kind),
			Title: r.Title,
			URL:   r.URL,
		})
	}
	return t
}

func toQuiz(w wireQuiz, topicTitle string) curriculum.Quiz {
	q := curriculum.Quiz{
		TopicTitle: strings.TrimSpace(w.TopicTitle),
		Questions:  make([]curriculum.Question, len(w.Questions)),
	}
	if q.TopicTitle == "" {
		q.TopicTitle = topicTitle
	}
	for i, wq := range w.Questions {
		q.Questions[i] = curriculum.Question{
			Prompt:        wq.Question,
			Options:       wq.Options,
			CorrectOption: int(wq.CorrectAnswer),
			Explanation:   wq.Explanation,
		}
	}
	return q
}

// normalizeDifficulty maps any casing of Easy/Medium/Hard onto the enum.
// Unknown values become Medium.
func normalizeDifficulty(s string) curriculum.Difficulty {
	d := curriculum.Difficulty(cases.Title(language.English).String(strings.TrimSpace(s)))
	switch d {
	case curriculum.Easy, curriculum.Medium, curriculum.Hard:
		return d
	default:
		return curriculum.Medium
	}
}

// normalizeResourceKind maps a resource type onto the enum. Unknown values
// become article.
func normalizeResourceKind(s string) curriculum.ResourceKind {
	k := curriculum.ResourceKind(cases.Lower(language.English).String(strings.TrimSpace(s)))
	switch k {
	case curriculum.Video, curriculum.Article, curriculum.Blog, curriculum.Documentation:
		return k
	case "docs", "doc":
		return curriculum.Documentation
	default:
		return curriculum.Article
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
