package generation

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
)

//go:embed prompts.yaml
var promptsYAML []byte

var builtinPrompts = mustLoadPrompts(promptsYAML)

type promptFile struct {
	System     string `yaml:"system"`
	Curriculum string `yaml:"curriculum"`
	Quiz       string `yaml:"quiz"`
}

type prompts struct {
	system     string
	curriculum *template.Template
	quiz       *template.Template
}

type curriculumPrompt struct {
	Title    string
	Unit     curriculum.DurationUnit
	Count    int
	Audience string
}

type quizPrompt struct {
	TopicTitle string
	Questions  int
}

func loadPrompts(raw []byte) (*prompts, error) {
	var f promptFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	if f.System == "" || f.Curriculum == "" || f.Quiz == "" {
		return nil, fmt.Errorf("parse prompts: system, curriculum and quiz are required")
	}

	cur, err := template.New("curriculum").Option("missingkey=error").Parse(f.Curriculum)
	if err != nil {
		return nil, fmt.Errorf("parse curriculum prompt: %w", err)
	}
	quiz, err := template.New("quiz").Option("missingkey=error").Parse(f.Quiz)
	if err != nil {
		return nil, fmt.Errorf("parse quiz prompt: %w", err)
	}
	return &prompts{system: strings.TrimSpace(f.System), curriculum: cur, quiz: quiz}, nil
}

func mustLoadPrompts(raw []byte) *prompts {
	p, err := loadPrompts(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return strings.TrimSpace(b.String()), nil
}
