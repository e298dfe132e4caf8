package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPrompts_Generation(t *testing.T) {
	p := DefaultPrompts()

	for _, qt := range []Type{TypeMultipleChoice, TypeTrueFalse, TypeShortAnswer} {
		out, err := p.Generation(qt, DifficultyHard, "HTML")
		require.NoError(t, err, qt)
		assert.Contains(t, out, "Topic: HTML")
		assert.Contains(t, out, "Difficulty: hard")
		assert.Contains(t, out, string(qt))
	}

	_, err := p.Generation(Type("essay"), DifficultyEasy, "HTML")
	assert.Error(t, err)
}

func TestDefaultPrompts_Judge(t *testing.T) {
	out, err := DefaultPrompts().Judge(Question{
		Question: "Write the HTML tag for creating a link.",
		Answer:   `<a href="...">...</a>`,
	}, "<a>")
	require.NoError(t, err)
	assert.Contains(t, out, "Question: Write the HTML tag for creating a link.")
	assert.Contains(t, out, `Reference answer: <a href="...">...</a>`)
	assert.Contains(t, out, "Student answer: <a>")
}

func TestLoadPrompts(t *testing.T) {
	p, err := LoadPrompts([]byte(`
multiple_choice: "mc {{.Topic}}"
true_false: "tf {{.Topic}}"
short_answer: "sa {{.Difficulty}}"
judge: "judge {{.Answer}}"
`))
	require.NoError(t, err)

	out, err := p.Generation(TypeShortAnswer, DifficultyMedium, "Go")
	require.NoError(t, err)
	assert.Equal(t, "sa medium", out)
}

func TestLoadPrompts_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing judge": "multiple_choice: a\ntrue_false: b\nshort_answer: c\n",
		"bad template":  "multiple_choice: '{{.Topic'\ntrue_false: b\nshort_answer: c\njudge: d\n",
		"bad yaml":      "multiple_choice: [",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadPrompts([]byte(src))
			assert.Error(t, err)
		})
	}
}
