package rest

import (
	"net/http"
	"slices"
	"time"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
	"github.com/p-n-ai/curricuforge/internal/generation"
)

// documentView is a curriculum with its derived progress.
type documentView struct {
	Document       *curriculum.Document `json:"document"`
	Stats          curriculum.Stats     `json:"stats"`
	PeriodComplete []bool               `json:"periodComplete"`
}

// summaryView is one history entry.
type summaryView struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Duration  string           `json:"duration"`
	CreatedAt time.Time        `json:"createdAt"`
	Stats     curriculum.Stats `json:"stats"`
	Current   bool             `json:"current"`
}

func (h *Handler) view(r *http.Request, doc *curriculum.Document) documentView {
	stats, err := h.engine.Stats(doc.ID)
	if err != nil {
		stats = curriculum.ComputeStats(doc)
	}
	if !identityFrom(r.Context()).RevealsAnswers() {
		doc = withoutQuizzes(doc)
	}
	return documentView{
		Document:       doc,
		Stats:          stats,
		PeriodComplete: curriculum.PeriodCompletion(doc),
	}
}

// withoutQuizzes copies doc with every attached quiz removed. Students fetch
// questions through the quiz endpoint, which hides the answer key.
func withoutQuizzes(doc *curriculum.Document) *curriculum.Document {
	out := *doc
	out.Periods = slices.Clone(doc.Periods)
	for pi := range out.Periods {
		p := &out.Periods[pi]
		p.Courses = slices.Clone(p.Courses)
		for ci := range p.Courses {
			c := &p.Courses[ci]
			c.Topics = slices.Clone(c.Topics)
			for ti := range c.Topics {
				c.Topics[ti].Quiz = nil
			}
		}
	}
	return &out
}

// Generate handles POST /api/curricula.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generation.Request
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := h.engine.Generate(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(r, doc))
}

// History handles GET /api/curricula.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	current, _ := h.engine.Current()
	history := h.engine.History()

	out := make([]summaryView, 0, len(history))
	for _, doc := range history {
		stats, _ := h.engine.Stats(doc.ID)
		out = append(out, summaryView{
			ID:        doc.ID,
			Title:     doc.Title,
			Duration:  doc.Duration(),
			CreatedAt: doc.CreatedAt,
			Stats:     stats,
			Current:   current != nil && current.ID == doc.ID,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/curricula/{id}. The document becomes the displayed one.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.engine.Select(pathVar(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(r, doc))
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

// Reset handles POST /api/curricula/{id}/reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := h.engine.ResetProgress(r.Context(), pathVar(r, "id"), req.Confirm)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(r, doc))
}

// Toggle handles POST .../topics/{topic}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	p, ok := topicPath(r)
	if !ok {
		writeError(w, http.StatusNotFound, "topic not found")
		return
	}
	doc, err := h.engine.ToggleTopic(r.Context(), pathVar(r, "id"), p)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(r, doc))
}

func topicPath(r *http.Request) (curriculum.Path, bool) {
	period, ok1 := pathInt(r, "period")
	course, ok2 := pathInt(r, "course")
	topic, ok3 := pathInt(r, "topic")
	return curriculum.Path{Period: period, Course: course, Topic: topic}, ok1 && ok2 && ok3
}
