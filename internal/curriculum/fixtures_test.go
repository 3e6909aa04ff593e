package curriculum_test

import (
	"time"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
)

// sampleDocument builds a two-period document with five topics.
func sampleDocument() *curriculum.Document {
	return &curriculum.Document{
		ID:            "doc-1",
		CreatedAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Title:         "Intro to Systems",
		Description:   "Processes, memory and files.",
		DurationCount: 2,
		DurationUnit:  curriculum.Weeks,
		Periods: []curriculum.Period{
			{
				Label: "Week 1",
				Courses: []curriculum.Course{
					{
						Name: "Operating Systems", Code: "OS101", Description: "Kernel basics",
						Topics: []curriculum.Topic{
							{ID: "t1", Title: "Processes", Description: "fork and exec", Difficulty: curriculum.Easy},
							{ID: "t2", Title: "Scheduling", Description: "run queues", Difficulty: curriculum.Medium,
								Resources: []curriculum.Resource{{Kind: curriculum.Video, Title: "CFS", URL: "https://example.com/cfs"}}},
						},
					},
				},
			},
			{
				Label: "Week 2",
				Courses: []curriculum.Course{
					{
						Name: "Storage", Code: "ST201", Description: "Disks and filesystems",
						Topics: []curriculum.Topic{
							{ID: "t3", Title: "Inodes", Description: "metadata", Difficulty: curriculum.Medium},
							{ID: "t4", Title: "Journaling", Description: "crash safety", Difficulty: curriculum.Hard},
						},
					},
					{
						Name: "Memory", Code: "MM202", Description: "Virtual memory",
						Topics: []curriculum.Topic{
							{ID: "t5", Title: "Paging", Description: "page tables", Difficulty: curriculum.Hard},
						},
					},
				},
			},
		},
		Outcomes:         []string{"Explain process lifecycles"},
		JobRoles:         []string{"Systems engineer"},
		CapstoneProjects: []string{"Toy filesystem"},
	}
}

func sampleQuiz(title string) curriculum.Quiz {
	return curriculum.Quiz{
		TopicTitle: title,
		Questions: []curriculum.Question{
			{Prompt: "What does fork return to the child?", Options: []string{"0", "1", "-1", "pid"}, CorrectOption: 0, Explanation: "The child sees 0."},
			{Prompt: "Which call replaces the image?", Options: []string{"wait", "exec", "kill", "exit"}, CorrectOption: 1, Explanation: "exec loads a new program."},
		},
	}
}
