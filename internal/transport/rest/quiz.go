package rest

import (
	"net/http"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
)

// questionView is a quiz question as shown to the signed-in role. The answer
// key and explanation are only present for teachers.
type questionView struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

type quizView struct {
	TopicTitle     string         `json:"topicTitle"`
	RevealsAnswers bool           `json:"revealsAnswers"`
	Questions      []questionView `json:"questions"`
}

func newQuizView(q curriculum.Quiz, reveal bool) quizView {
	v := quizView{
		TopicTitle:     q.TopicTitle,
		RevealsAnswers: reveal,
		Questions:      make([]questionView, len(q.Questions)),
	}
	for i, question := range q.Questions {
		qv := questionView{Question: question.Prompt, Options: question.Options}
		if reveal {
			correct := question.CorrectOption
			qv.CorrectAnswer = &correct
			qv.Explanation = question.Explanation
		}
		v.Questions[i] = qv
	}
	return v
}

// StartQuiz handles POST .../topics/{topic}/quiz. A topic keeps its first
// quiz; later calls return it without generating again.
func (h *Handler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	p, ok := topicPath(r)
	if !ok {
		writeError(w, http.StatusNotFound, "topic not found")
		return
	}
	quiz, err := h.engine.StartQuiz(r.Context(), pathVar(r, "id"), p)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuizView(quiz, identityFrom(r.Context()).RevealsAnswers()))
}

type gradeRequest struct {
	Answers []int `json:"answers" validate:"required,dive,min=0,max=3"`
}

// GradeQuiz handles POST .../topics/{topic}/quiz/grade.
func (h *Handler) GradeQuiz(w http.ResponseWriter, r *http.Request) {
	p, ok := topicPath(r)
	if !ok {
		writeError(w, http.StatusNotFound, "topic not found")
		return
	}
	var req gradeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	grade, err := h.engine.GradeQuiz(pathVar(r, "id"), p, req.Answers)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grade)
}
