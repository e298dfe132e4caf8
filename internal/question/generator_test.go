package question

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestGenerator(ai TextGenerator, store QuestionStore) *Generator {
	return NewGenerator(ai, store, GeneratorOptions{Now: func() time.Time { return fixedNow }}, zerolog.Nop())
}

func TestGenerate_MultipleChoice(t *testing.T) {
	ai := &stubGenerator{reply: `{"question":"Which tag creates a hyperlink?","options":["<a>","<p>","<div>","<span>"],"answer":"A"}`}
	store := newMemoryStore()
	gen := newTestGenerator(ai, store)

	got, err := gen.Generate(context.Background(), GenerateRequest{Type: "multiple_choice", Difficulty: "easy", Topic: "HTML"})
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, TypeMultipleChoice, got.Type)
	assert.Equal(t, DifficultyEasy, got.Difficulty)
	assert.Equal(t, "HTML", got.Topic)
	assert.Equal(t, "Which tag creates a hyperlink?", got.Question)
	assert.Equal(t, []string{"<a>", "<p>", "<div>", "<span>"}, got.Options)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, 1, ai.calls())

	stored := store.items[got.ID]
	assert.Equal(t, "A", stored.Answer)
	assert.Equal(t, "HTML", stored.Topic)
}

func TestGenerate_ResponseNeverCarriesAnswer(t *testing.T) {
	replies := map[Type]string{
		TypeMultipleChoice: `{"question":"q","options":["a","b","c","d"],"answer":"B"}`,
		TypeTrueFalse:      `{"question":"q","answer":"false"}`,
		TypeShortAnswer:    `{"question":"q","answer":"secret"}`,
	}
	for qt, reply := range replies {
		for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
			gen := newTestGenerator(&stubGenerator{reply: reply}, newMemoryStore())
			got, err := gen.Generate(context.Background(), GenerateRequest{Type: string(qt), Difficulty: string(d), Topic: "Go"})
			require.NoError(t, err)

			data, err := json.Marshal(got)
			require.NoError(t, err)
			var fields map[string]any
			require.NoError(t, json.Unmarshal(data, &fields))

			assert.NotContains(t, fields, "answer", "%s/%s", qt, d)
			for _, key := range []string{"id", "type", "difficulty", "topic", "question"} {
				assert.Contains(t, fields, key, "%s/%s", qt, d)
			}
		}
	}
}

func TestGenerate_TrueFalseBackfilledOptionsPersisted(t *testing.T) {
	store := newMemoryStore()
	gen := newTestGenerator(&stubGenerator{reply: `{"question":"HTTP 404 means Not Found.","answer":"true"}`}, store)

	got, err := gen.Generate(context.Background(), GenerateRequest{Type: "true_false", Difficulty: "medium", Topic: "http"})
	require.NoError(t, err)

	assert.Equal(t, []string{"true", "false"}, store.items[got.ID].Options)
	assert.Equal(t, []string{"true", "false"}, got.Options)
}

func TestGenerate_DefaultTopic(t *testing.T) {
	ai := &stubGenerator{reply: `{"question":"q","answer":"a"}`}
	gen := newTestGenerator(ai, newMemoryStore())

	got, err := gen.Generate(context.Background(), GenerateRequest{Type: "short_answer", Difficulty: "hard", Topic: "   "})
	require.NoError(t, err)
	assert.Equal(t, DefaultTopic, got.Topic)
	require.Len(t, ai.prompts, 1)
	assert.Contains(t, ai.prompts[0], "Topic: "+DefaultTopic)
}

func TestGenerate_InvalidArguments(t *testing.T) {
	cases := map[string]GenerateRequest{
		"unknown type":       {Type: "essay", Difficulty: "easy"},
		"missing type":       {Difficulty: "easy"},
		"unknown difficulty": {Type: "multiple_choice", Difficulty: "extreme"},
		"missing difficulty": {Type: "true_false"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			ai := &stubGenerator{}
			store := newMemoryStore()
			_, err := newTestGenerator(ai, store).Generate(context.Background(), req)

			require.Error(t, err)
			assert.Equal(t, InvalidArgument, KindOf(err))
			assert.Zero(t, ai.calls())
			assert.Zero(t, store.count())
		})
	}
}

func TestGenerate_UpstreamFailureStoresNothing(t *testing.T) {
	for name, aiErr := range map[string]error{
		"error":   errors.New("connection refused"),
		"timeout": context.DeadlineExceeded,
	} {
		t.Run(name, func(t *testing.T) {
			ai := &stubGenerator{err: aiErr}
			store := newMemoryStore()
			_, err := newTestGenerator(ai, store).Generate(context.Background(), GenerateRequest{Type: "multiple_choice", Difficulty: "easy"})

			require.Error(t, err)
			assert.Equal(t, UpstreamServiceError, KindOf(err))
			assert.ErrorIs(t, err, aiErr)
			assert.Equal(t, 1, ai.calls())
			assert.Zero(t, store.count())
		})
	}
}

func TestGenerate_UnparseableResponseStoresNothing(t *testing.T) {
	store := newMemoryStore()
	gen := newTestGenerator(&stubGenerator{reply: `{"question":"q","options":["a","b"],"answer":"A"}`}, store)

	_, err := gen.Generate(context.Background(), GenerateRequest{Type: "multiple_choice", Difficulty: "easy"})
	require.Error(t, err)
	assert.Equal(t, ResponseParseError, KindOf(err))
	assert.True(t, IsUpstream(err))
	assert.Zero(t, store.count())
}

func TestGenerate_StorageFailure(t *testing.T) {
	store := newMemoryStore()
	store.insertErr = errors.New("disk full")
	gen := newTestGenerator(&stubGenerator{reply: `{"question":"q","answer":"a"}`}, store)

	_, err := gen.Generate(context.Background(), GenerateRequest{Type: "short_answer", Difficulty: "easy"})
	require.Error(t, err)
	assert.Equal(t, StorageError, KindOf(err))
}
