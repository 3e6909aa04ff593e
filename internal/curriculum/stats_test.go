package curriculum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
)

func TestComputeStats(t *testing.T) {
	doc := sampleDocument()

	stats := curriculum.ComputeStats(doc)

	assert.Equal(t, curriculum.Stats{Total: 5, Completed: 0, Percent: 0}, stats)
}

func TestComputeStats_EmptyDocument(t *testing.T) {
	stats := curriculum.ComputeStats(&curriculum.Document{})

	assert.Equal(t, curriculum.Stats{}, stats)
}

func TestComputeStats_OneOfThree(t *testing.T) {
	doc := &curriculum.Document{
		Periods: []curriculum.Period{{
			Label: "Week 1",
			Courses: []curriculum.Course{{
				Name: "Basics", Code: "B1",
				Topics: []curriculum.Topic{{ID: "a"}, {ID: "b"}, {ID: "c"}},
			}},
		}},
	}

	toggled := curriculum.Apply(doc, curriculum.Path{}, curriculum.ToggleCompletion())

	assert.Equal(t, curriculum.Stats{Total: 3, Completed: 1, Percent: 33}, curriculum.ComputeStats(toggled))
}

func TestComputeStats_Rounding(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{1, 2, 50},
		{2, 3, 67},
		{1, 8, 13},
		{1, 200, 1},
		{1, 201, 0},
		{5, 5, 100},
	}

	for _, tt := range tests {
		topics := make([]curriculum.Topic, tt.total)
		for i := 0; i < tt.completed; i++ {
			topics[i].Completed = true
		}
		doc := &curriculum.Document{Periods: []curriculum.Period{{Courses: []curriculum.Course{{Topics: topics}}}}}

		got := curriculum.ComputeStats(doc)

		assert.Equal(t, tt.want, got.Percent, "%d of %d", tt.completed, tt.total)
		assert.LessOrEqual(t, got.Completed, got.Total)
	}
}

func TestPeriodCompletion(t *testing.T) {
	doc := sampleDocument()
	doc = curriculum.Apply(doc, curriculum.Path{Period: 0, Course: 0, Topic: 0}, curriculum.ToggleCompletion())
	doc = curriculum.Apply(doc, curriculum.Path{Period: 0, Course: 0, Topic: 1}, curriculum.ToggleCompletion())
	doc = curriculum.Apply(doc, curriculum.Path{Period: 1, Course: 0, Topic: 0}, curriculum.ToggleCompletion())

	assert.Equal(t, []bool{true, false}, curriculum.PeriodCompletion(doc))
}

func TestPeriodComplete_NoTopics(t *testing.T) {
	empty := curriculum.Period{Label: "Week 1", Courses: []curriculum.Course{{Name: "Empty"}}}

	assert.False(t, empty.Complete())
}

func TestStatsMemo(t *testing.T) {
	var memo curriculum.StatsMemo
	doc := sampleDocument()

	first := memo.Stats(doc)
	toggled := curriculum.Apply(doc, curriculum.Path{Period: 0, Course: 0, Topic: 0}, curriculum.ToggleCompletion())
	second := memo.Stats(toggled)

	assert.Equal(t, 0, first.Completed)
	assert.Equal(t, 1, second.Completed)
	assert.Equal(t, first, memo.Stats(doc))
}
