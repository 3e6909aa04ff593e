package curriculum

import (
	"errors"
	"fmt"
)

// ErrIncompleteAnswers is returned when a quiz is submitted without exactly
// one valid answer per question.
var ErrIncompleteAnswers = errors.New("every question needs exactly one answer")

// QuestionResult is the graded outcome of one question.
type QuestionResult struct {
	Selected      int    `json:"selected"`
	CorrectOption int    `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation"`
}

// Grade is the result of a submitted quiz attempt.
type Grade struct {
	Score   int              `json:"score"`
	Total   int              `json:"total"`
	Results []QuestionResult `json:"results"`
}

// GradeAttempt scores answers (one selected option index per question, in
// question order) against q.
func GradeAttempt(q Quiz, answers []int) (Grade, error) {
	if len(answers) != len(q.Questions) {
		return Grade{}, fmt.Errorf("%w: got %d answers for %d questions", ErrIncompleteAnswers, len(answers), len(q.Questions))
	}

	g := Grade{Total: len(q.Questions), Results: make([]QuestionResult, len(q.Questions))}
	for i, question := range q.Questions {
		selected := answers[i]
		if selected < 0 || selected >= len(question.Options) {
			return Grade{}, fmt.Errorf("%w: answer %d out of range for question %d", ErrIncompleteAnswers, selected, i+1)
		}
		correct := selected == question.CorrectOption
		if correct {
			g.Score++
		}
		g.Results[i] = QuestionResult{
			Selected:      selected,
			CorrectOption: question.CorrectOption,
			Correct:       correct,
			Explanation:   question.Explanation,
		}
	}
	return g, nil
}
