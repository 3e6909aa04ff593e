package curriculum

import "sync"

// Stats summarizes topic completion across a document.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Percent   int `json:"percent"`
}

// ComputeStats counts topics and completed topics over the whole document.
// Percent is rounded half up and is 0 for a document without topics.
func ComputeStats(d *Document) Stats {
	var s Stats
	for _, period := range d.Periods {
		for _, course := range period.Courses {
			for _, topic := range course.Topics {
				s.Total++
				if topic.Completed {
					s.Completed++
				}
			}
		}
	}
	s.Percent = percent(s.Completed, s.Total)
	return s
}

func percent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}

// Complete reports whether the period has at least one topic and all of its
// topics are completed.
func (p Period) Complete() bool {
	seen := false
	for _, course := range p.Courses {
		for _, topic := range course.Topics {
			if !topic.Completed {
				return false
			}
			seen = true
		}
	}
	return seen
}

// PeriodCompletion returns Period.Complete for every period of d, in order.
func PeriodCompletion(d *Document) []bool {
	out := make([]bool, len(d.Periods))
	for i, p := range d.Periods {
		out[i] = p.Complete()
	}
	return out
}

// StatsMemo caches the statistics of the most recently seen document. The
// cache is keyed on the document pointer; published documents are never
// modified, so a pointer match means the statistics are still current.
type StatsMemo struct {
	mu    sync.Mutex
	doc   *Document
	stats Stats
}

// Stats returns ComputeStats(d), reusing the previous result when d is the
// same document as last time.
func (m *StatsMemo) Stats(d *Document) Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.doc != d {
		m.doc = d
		m.stats = ComputeStats(d)
	}
	return m.stats
}
