package generation

import (
	"slices"

	"github.com/xeipuuv/gojsonschema"
)

// A schema is built in one of two flavours. The request flavour is sent to
// the model and carries enums and cardinality hints. The validation flavour
// checks the reply and only rejects what coercion cannot repair.
type schemaMode int

const (
	requestSchema schemaMode = iota
	validationSchema
)

var (
	documentValidator = mustCompile(documentSchema(validationSchema, 0))
	quizValidator     = mustCompile(quizSchema(validationSchema, 0))
)

type schemaBuilder struct {
	mode schemaMode
}

func (b schemaBuilder) str() map[string]any {
	return map[string]any{"type": "string"}
}

func (b schemaBuilder) stringList(lo, hi int) map[string]any {
	return b.hintedArray(b.str(), lo, hi)
}

func (b schemaBuilder) enum(values ...string) map[string]any {
	s := b.str()
	if b.mode == requestSchema {
		s["enum"] = values
	}
	return s
}

// hintedArray bounds the array only in the request flavour.
func (b schemaBuilder) hintedArray(items map[string]any, lo, hi int) map[string]any {
	if b.mode == requestSchema {
		return bounded(items, lo, hi)
	}
	return map[string]any{"type": "array", "items": items}
}

// object lists every property as required in the request flavour and only
// mustHave in the validation flavour.
func (b schemaBuilder) object(props map[string]any, mustHave ...string) map[string]any {
	required := mustHave
	if b.mode == requestSchema {
		required = make([]string, 0, len(props))
		for name := range props {
			required = append(required, name)
		}
		slices.Sort(required)
	}
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func bounded(items map[string]any, lo, hi int) map[string]any {
	s := map[string]any{"type": "array", "items": items}
	if lo > 0 {
		s["minItems"] = lo
	}
	if hi > 0 {
		s["maxItems"] = hi
	}
	return s
}

// documentSchema describes a curriculum reply with the given number of periods.
func documentSchema(mode schemaMode, periods int) map[string]any {
	b := schemaBuilder{mode: mode}

	resource := b.object(map[string]any{
		"type":  b.enum("video", "article", "blog", "documentation"),
		"title": b.str(),
		"url":   b.str(),
	})
	topic := b.object(map[string]any{
		"id":          b.str(),
		"title":       b.str(),
		"description": b.str(),
		"difficulty":  b.enum("Easy", "Medium", "Hard"),
		"resources":   b.hintedArray(resource, 2, 3),
	}, "title")
	course := b.object(map[string]any{
		"courseName":  b.str(),
		"courseCode":  b.str(),
		"description": b.str(),
		"topics":      b.hintedArray(topic, 3, 5),
	}, "courseName", "topics")
	period := b.object(map[string]any{
		"periodLabel": b.str(),
		"courses":     b.hintedArray(course, 1, 2),
	}, "courses")

	// At least one period is always required.
	periodsSchema := bounded(period, 1, 0)
	if mode == requestSchema && periods > 0 {
		periodsSchema = bounded(period, periods, periods)
	}

	return b.object(map[string]any{
		"title":             b.str(),
		"description":       b.str(),
		"periods":           periodsSchema,
		"obe_outcomes":      b.stringList(3, 5),
		"job_roles":         b.stringList(3, 5),
		"capstone_projects": b.stringList(1, 2),
	}, "periods")
}

// quizSchema describes a quiz reply with the given number of questions.
func quizSchema(mode schemaMode, questions int) map[string]any {
	b := schemaBuilder{mode: mode}

	question := b.object(map[string]any{
		"question":      b.str(),
		"options":       bounded(b.str(), 4, 4),
		"correctAnswer": map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
		"explanation":   b.str(),
	}, "question", "options", "correctAnswer")

	questionsSchema := bounded(question, 1, 0)
	if mode == requestSchema && questions > 0 {
		questionsSchema = bounded(question, questions, questions)
	}

	return b.object(map[string]any{
		"topicTitle": b.str(),
		"questions":  questionsSchema,
	}, "questions")
}

func mustCompile(schema map[string]any) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(err)
	}
	return s
}
