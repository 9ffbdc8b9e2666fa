package gemini

import (
	"context"
	"log/slog"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelwise/labelwise-api/internal/config"
	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/labeling"
)

func newTestLabeler(t *testing.T) *Labeler {
	t.Helper()

	tmpl, err := template.New("ner").Parse(nerPromptTemplate)
	require.NoError(t, err)

	return &Labeler{
		logger:         slog.Default(),
		config:         config.LabelerConfig{ModelName: "test-model", MaxRetries: 0},
		promptTemplate: tmpl,
		model:          "test-model",
	}
}

func TestCreatePrompt(t *testing.T) {
	t.Parallel()

	l := newTestLabeler(t)

	t.Run("includes text, language and classes", func(t *testing.T) {
		t.Parallel()

		prompt, err := l.createPrompt(context.Background(), labeling.Request{
			Text:          "Alice visited Paris.",
			TaskType:      domain.TaskTypeNER,
			Language:      "en",
			EntityClasses: []string{"PERSON", "LOC"},
		})
		require.NoError(t, err)
		assert.Contains(t, prompt, "Alice visited Paris.")
		assert.Contains(t, prompt, "PERSON, LOC")
		assert.Contains(t, prompt, "Language: en")
	})

	t.Run("defaults language and classes", func(t *testing.T) {
		t.Parallel()

		prompt, err := l.createPrompt(context.Background(), labeling.Request{
			Text:     "Some text",
			TaskType: domain.TaskTypeNER,
		})
		require.NoError(t, err)
		assert.Contains(t, prompt, "Language: en")
		assert.Contains(t, prompt, "PERSON, ORG, LOC, DATE, MISC")
	})

	t.Run("rejects empty text", func(t *testing.T) {
		t.Parallel()

		_, err := l.createPrompt(context.Background(), labeling.Request{TaskType: domain.TaskTypeNER})
		assert.ErrorIs(t, err, ErrEmptyText)
	})
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	l := newTestLabeler(t)
	source := "Alice visited Paris last May."

	t.Run("accepts aligned offsets", func(t *testing.T) {
		t.Parallel()

		entities, err := l.parseResponse(context.Background(), &responseSchema{
			Entities: []entitySchema{
				{Text: "Alice", ClassName: "PERSON", StartIndex: 0, EndIndex: 5},
				{Text: "Paris", ClassName: "LOC", StartIndex: 14, EndIndex: 19},
			},
		}, source)
		require.NoError(t, err)
		require.Len(t, entities, 2)
		assert.Equal(t, "Alice", entities[0].Text)
		assert.Equal(t, 14, entities[1].StartIndex)
	})

	t.Run("realigns misreported offsets", func(t *testing.T) {
		t.Parallel()

		entities, err := l.parseResponse(context.Background(), &responseSchema{
			Entities: []entitySchema{
				{Text: "Paris", ClassName: "LOC", StartIndex: 3, EndIndex: 8},
			},
		}, source)
		require.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, 14, entities[0].StartIndex)
		assert.Equal(t, 19, entities[0].EndIndex)
	})

	t.Run("drops entities absent from source", func(t *testing.T) {
		t.Parallel()

		entities, err := l.parseResponse(context.Background(), &responseSchema{
			Entities: []entitySchema{
				{Text: "London", ClassName: "LOC", StartIndex: 0, EndIndex: 6},
				{Text: "Alice", ClassName: "PERSON", StartIndex: 0, EndIndex: 5},
			},
		}, source)
		require.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, "Alice", entities[0].Text)
	})

	t.Run("rejects entity without class", func(t *testing.T) {
		t.Parallel()

		_, err := l.parseResponse(context.Background(), &responseSchema{
			Entities: []entitySchema{{Text: "Alice"}},
		}, source)
		assert.ErrorIs(t, err, labeling.ErrInvalidResponse)
	})

	t.Run("rejects nil response", func(t *testing.T) {
		t.Parallel()

		_, err := l.parseResponse(context.Background(), nil, source)
		assert.ErrorIs(t, err, labeling.ErrInvalidResponse)
	})

	t.Run("empty entity list is valid", func(t *testing.T) {
		t.Parallel()

		entities, err := l.parseResponse(context.Background(), &responseSchema{}, source)
		require.NoError(t, err)
		assert.Empty(t, entities)
	})
}

func TestLabelRejectsUnsupportedTaskType(t *testing.T) {
	t.Parallel()

	l := newTestLabeler(t)
	_, err := l.Label(context.Background(), labeling.Request{
		Text:     "text",
		TaskType: domain.TaskType("classification"),
	})
	assert.ErrorIs(t, err, labeling.ErrUnsupportedTaskType)
}
