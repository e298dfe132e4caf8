package question

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

type promptFile struct {
	MultipleChoice string `yaml:"multiple_choice"`
	TrueFalse      string `yaml:"true_false"`
	ShortAnswer    string `yaml:"short_answer"`
	Judge          string `yaml:"judge"`
}

// Prompts renders the instructions sent to the text generator.
type Prompts struct {
	generation map[Type]*template.Template
	judge      *template.Template
}

type generationData struct {
	Type       Type
	Difficulty Difficulty
	Topic      string
}

type judgeData struct {
	Question  string
	Reference string
	Answer    string
}

// DefaultPrompts returns the embedded prompt set.
func DefaultPrompts() *Prompts {
	p, err := LoadPrompts(defaultPromptsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded prompts are invalid: %v", err))
	}
	return p
}

// LoadPrompts parses a YAML prompt file. Every template is required.
func LoadPrompts(data []byte) (*Prompts, error) {
	var f promptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode prompts: %w", err)
	}

	sources := map[string]string{
		string(TypeMultipleChoice): f.MultipleChoice,
		string(TypeTrueFalse):      f.TrueFalse,
		string(TypeShortAnswer):    f.ShortAnswer,
		"judge":                    f.Judge,
	}
	parsed := make(map[string]*template.Template, len(sources))
	for name, src := range sources {
		if strings.TrimSpace(src) == "" {
			return nil, fmt.Errorf("prompt %q is missing", name)
		}
		tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse prompt %q: %w", name, err)
		}
		parsed[name] = tmpl
	}

	return &Prompts{
		generation: map[Type]*template.Template{
			TypeMultipleChoice: parsed[string(TypeMultipleChoice)],
			TypeTrueFalse:      parsed[string(TypeTrueFalse)],
			TypeShortAnswer:    parsed[string(TypeShortAnswer)],
		},
		judge: parsed["judge"],
	}, nil
}

// Generation renders the question-generation prompt for t.
func (p *Prompts) Generation(t Type, d Difficulty, topic string) (string, error) {
	tmpl, ok := p.generation[t]
	if !ok {
		return "", fmt.Errorf("no prompt for type %q", t)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, generationData{Type: t, Difficulty: d, Topic: topic}); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t, err)
	}
	return b.String(), nil
}

// Judge renders the short-answer grading prompt.
func (p *Prompts) Judge(q Question, answer string) (string, error) {
	var b strings.Builder
	err := p.judge.Execute(&b, judgeData{
		Question:  q.Question,
		Reference: q.Answer,
		Answer:    answer,
	})
	if err != nil {
		return "", fmt.Errorf("render judge prompt: %w", err)
	}
	return b.String(), nil
}
