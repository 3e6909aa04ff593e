package curriculum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
)

func TestApply_ToggleIsInvolution(t *testing.T) {
	paths := []curriculum.Path{
		{Period: 0, Course: 0, Topic: 0},
		{Period: 0, Course: 0, Topic: 1},
		{Period: 1, Course: 0, Topic: 1},
		{Period: 1, Course: 1, Topic: 0},
	}

	for _, p := range paths {
		t.Run(p.String(), func(t *testing.T) {
			doc := sampleDocument()

			twice := curriculum.Apply(curriculum.Apply(doc, p, curriculum.ToggleCompletion()), p, curriculum.ToggleCompletion())

			assert.Equal(t, doc, twice)
			assert.NotSame(t, doc, twice)
		})
	}
}

func TestApply_DoesNotAliasOriginal(t *testing.T) {
	doc := sampleDocument()
	snapshot := sampleDocument()
	p := curriculum.Path{Period: 1, Course: 0, Topic: 1}

	edited := curriculum.Apply(doc, p, curriculum.ToggleCompletion())

	require.Equal(t, snapshot, doc, "original document must be unchanged")
	assert.True(t, edited.Topic(p).Completed)

	// Everything except the targeted topic is value-equal.
	restored := *edited
	restored.Periods = append([]curriculum.Period(nil), edited.Periods...)
	restored.Periods[1].Courses = append([]curriculum.Course(nil), edited.Periods[1].Courses...)
	restored.Periods[1].Courses[0].Topics = append([]curriculum.Topic(nil), edited.Periods[1].Courses[0].Topics...)
	restored.Periods[1].Courses[0].Topics[1].Completed = false
	assert.Equal(t, snapshot, &restored)
}

func TestApply_CopiesOnlyThePath(t *testing.T) {
	doc := sampleDocument()
	p := curriculum.Path{Period: 1, Course: 1, Topic: 0}

	edited := curriculum.Apply(doc, p, curriculum.ToggleCompletion())

	// Sibling course on the edited period keeps its topics slice.
	assert.Same(t, &doc.Periods[1].Courses[0].Topics[0], &edited.Periods[1].Courses[0].Topics[0])
	// Untouched period keeps its courses slice.
	assert.Same(t, &doc.Periods[0].Courses[0], &edited.Periods[0].Courses[0])
	// The edited course does not share storage with the original.
	assert.NotSame(t, &doc.Periods[1].Courses[1].Topics[0], &edited.Periods[1].Courses[1].Topics[0])
}

func TestApply_AttachQuiz(t *testing.T) {
	doc := sampleDocument()
	p := curriculum.Path{Period: 0, Course: 0, Topic: 0}
	quiz := sampleQuiz("Processes")

	withQuiz := curriculum.Apply(doc, p, curriculum.AttachQuiz(quiz))

	require.NotNil(t, withQuiz.Topic(p).Quiz)
	assert.Equal(t, quiz, *withQuiz.Topic(p).Quiz)
	assert.Nil(t, doc.Topic(p).Quiz)
}

func TestApply_AttachQuizKeepsExisting(t *testing.T) {
	p := curriculum.Path{Period: 0, Course: 0, Topic: 0}
	first := curriculum.Apply(sampleDocument(), p, curriculum.AttachQuiz(sampleQuiz("first")))

	second := curriculum.Apply(first, p, curriculum.AttachQuiz(sampleQuiz("second")))

	assert.Equal(t, "first", second.Topic(p).Quiz.TopicTitle)
}

func TestApply_InvalidPathPanics(t *testing.T) {
	tests := []curriculum.Path{
		{Period: 2, Course: 0, Topic: 0},
		{Period: 0, Course: 1, Topic: 0},
		{Period: 0, Course: 0, Topic: 5},
		{Period: -1, Course: 0, Topic: 0},
	}

	for _, p := range tests {
		t.Run(p.String(), func(t *testing.T) {
			assert.False(t, p.In(sampleDocument()))
			assert.PanicsWithError(t, "invalid edit target: "+p.String(), func() {
				curriculum.Apply(sampleDocument(), p, curriculum.ToggleCompletion())
			})
		})
	}
}

func TestResetProgress(t *testing.T) {
	doc := sampleDocument()
	doc = curriculum.Apply(doc, curriculum.Path{Period: 0, Course: 0, Topic: 0}, curriculum.ToggleCompletion())
	doc = curriculum.Apply(doc, curriculum.Path{Period: 1, Course: 1, Topic: 0}, curriculum.ToggleCompletion())
	before := curriculum.ComputeStats(doc)
	require.Equal(t, 2, before.Completed)

	reset := curriculum.ResetProgress(doc)

	assert.Equal(t, 0, curriculum.ComputeStats(reset).Completed)
	assert.Equal(t, before, curriculum.ComputeStats(doc), "reset must not modify its input")
	assert.Equal(t, doc.Periods[1].Courses[0], reset.Periods[1].Courses[0])
}
