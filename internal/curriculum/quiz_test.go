package curriculum_test

import (
	"errors"
	"testing"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
)

func TestGradeAttempt(t *testing.T) {
	quiz := sampleQuiz("Processes")

	tests := []struct {
		name      string
		answers   []int
		wantScore int
		wantErr   bool
	}{
		{"all correct", []int{0, 1}, 2, false},
		{"one wrong", []int{3, 1}, 1, false},
		{"none correct", []int{1, 0}, 0, false},
		{"missing answer", []int{0}, 0, true},
		{"too many answers", []int{0, 1, 2}, 0, true},
		{"out of range", []int{0, 4}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grade, err := curriculum.GradeAttempt(quiz, tt.answers)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GradeAttempt() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, curriculum.ErrIncompleteAnswers) {
					t.Errorf("error = %v, want ErrIncompleteAnswers", err)
				}
				return
			}
			if grade.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", grade.Score, tt.wantScore)
			}
			if grade.Total != 2 {
				t.Errorf("Total = %d, want 2", grade.Total)
			}
			if grade.Results[0].Explanation != "The child sees 0." {
				t.Errorf("Explanation = %q", grade.Results[0].Explanation)
			}
		})
	}
}

func TestOptionLetter(t *testing.T) {
	for i, want := range []string{"A", "B", "C", "D"} {
		if got := curriculum.OptionLetter(i); got != want {
			t.Errorf("OptionLetter(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestDurationUnit_PeriodLabel(t *testing.T) {
	tests := []struct {
		unit curriculum.DurationUnit
		n    int
		want string
	}{
		{curriculum.Weeks, 4, "Week 4"},
		{curriculum.Days, 1, "Day 1"},
		{curriculum.Months, 12, "Month 12"},
		{curriculum.Semesters, 2, "Semester 2"},
	}
	for _, tt := range tests {
		if got := tt.unit.PeriodLabel(tt.n); got != tt.want {
			t.Errorf("PeriodLabel(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
	if curriculum.DurationUnit("Fortnights").Valid() {
		t.Error("Fortnights should not be a valid unit")
	}
}
