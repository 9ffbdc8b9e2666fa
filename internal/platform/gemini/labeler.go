package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/labelwise/labelwise-api/internal/config"
	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/labeling"
)

// nerPromptTemplate instructs the model to extract named entities and return
// them as a strict JSON document matching responseSchema.
const nerPromptTemplate = `You are a named entity recognition system. Extract all named entities from the text below.

Language: {{.Language}}
Entity classes to extract: {{.EntityClasses}}

Return ONLY a JSON object of the form:
{"entities": [{"text": "<entity text>", "class_name": "<one of the entity classes>", "start_index": <character offset>, "end_index": <character offset past the last character>}]}

Rules:
- start_index and end_index are zero-based character offsets into the original text.
- Only use the entity classes listed above.
- If the text contains no entities, return {"entities": []}.
- Do not include any prose, markdown, or explanation outside the JSON object.

Text:
{{.Text}}`

// defaultEntityClasses is used when a request does not restrict the class set.
var defaultEntityClasses = []string{"PERSON", "ORG", "LOC", "DATE", "MISC"}

// Labeler implements the labeling.Labeler interface for named entity
// recognition using Google's Gemini API.
type Labeler struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains model-specific configuration
	config config.LabelerConfig

	// promptTemplate is the parsed template for creating prompts
	promptTemplate *template.Template

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// Ensure Labeler implements the labeling interface
var _ labeling.Labeler = (*Labeler)(nil)

// NewLabeler creates a new Gemini-backed labeler with the provided dependencies.
func NewLabeler(ctx context.Context, logger *slog.Logger, cfg config.LabelerConfig) (*Labeler, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", labeling.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", labeling.ErrInvalidConfig)
	}

	promptTemplate, err := template.New("ner").Parse(nerPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			labeling.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			labeling.ErrInvalidConfig, err)
	}

	return &Labeler{
		logger:         logger.With(slog.String("component", "gemini_labeler")),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// Label annotates the given text and returns the extracted entities.
// Transient API errors are retried with exponential backoff; malformed or
// safety-blocked responses are returned immediately.
func (l *Labeler) Label(ctx context.Context, req labeling.Request) (*domain.LabelResult, error) {
	if req.TaskType != domain.TaskTypeNER {
		return nil, fmt.Errorf("%w: %s", labeling.ErrUnsupportedTaskType, req.TaskType)
	}

	prompt, err := l.createPrompt(ctx, req)
	if err != nil {
		return nil, err
	}

	response, err := l.callGeminiWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	entities, err := l.parseResponse(ctx, response, req.Text)
	if err != nil {
		return nil, err
	}

	return domain.NewLabelResult(entities, l.model), nil
}

// createPrompt renders the NER prompt template for the request.
func (l *Labeler) createPrompt(ctx context.Context, req labeling.Request) (string, error) {
	if req.Text == "" {
		return "", ErrEmptyText
	}

	classes := req.EntityClasses
	if len(classes) == 0 {
		classes = defaultEntityClasses
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	data := promptData{
		Text:          req.Text,
		Language:      language,
		EntityClasses: strings.Join(classes, ", "),
	}

	var promptBuffer bytes.Buffer
	if err := l.promptTemplate.Execute(&promptBuffer, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	l.logger.DebugContext(ctx, "prompt generated",
		"text_length", len(req.Text),
		"prompt_length", promptBuffer.Len())

	return promptBuffer.String(), nil
}

// callGeminiWithRetry makes a call to the Gemini API with exponential backoff
// retry logic. Permanent errors (blocked content, malformed responses) are
// returned immediately without retrying.
func (l *Labeler) callGeminiWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	maxRetries := l.config.MaxRetries
	baseDelaySeconds := l.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		l.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptNum := attempt + 1
		l.logger.DebugContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		response, err, transient := l.callOnce(ctx, prompt, genConfig)
		if err == nil {
			return response, nil
		}

		l.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !transient {
			return nil, err
		}

		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				labeling.ErrTransientFailure, maxRetries)
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", labeling.ErrTransientFailure, ctx.Err())
		}
	}

	return nil, fmt.Errorf("%w: failed after %d attempts",
		labeling.ErrTransientFailure, maxRetries+1)
}

// callOnce performs a single API call. The third return value reports whether
// the error is transient and worth retrying.
func (l *Labeler) callOnce(
	ctx context.Context,
	prompt string,
	genConfig *genai.GenerateContentConfig,
) (*responseSchema, error, bool) {
	resp, err := l.client.Models.GenerateContent(ctx, l.model, genai.Text(prompt), genConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", labeling.ErrTransientFailure, err), true
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", labeling.ErrInvalidResponse), false
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: finish reason safety", labeling.ErrContentBlocked), false
	}

	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", labeling.ErrInvalidResponse), false
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(resp.Text()), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			labeling.ErrInvalidResponse, err), false
	}

	return &parsed, nil, false
}

// parseResponse converts the model's JSON document into domain entities.
// Entities whose offsets do not line up with the source text are realigned by
// searching for the entity text; entities that cannot be located are dropped
// with a warning rather than failing the whole task.
func (l *Labeler) parseResponse(
	ctx context.Context,
	response *responseSchema,
	sourceText string,
) ([]domain.Entity, error) {
	if response == nil {
		return nil, fmt.Errorf("%w: response is nil", labeling.ErrInvalidResponse)
	}

	entities := make([]domain.Entity, 0, len(response.Entities))
	for i, es := range response.Entities {
		if es.Text == "" || es.ClassName == "" {
			return nil, fmt.Errorf("%w: entity %d missing text or class", labeling.ErrInvalidResponse, i)
		}

		start, end := es.StartIndex, es.EndIndex
		if !offsetsMatch(sourceText, es.Text, start, end) {
			idx := strings.Index(sourceText, es.Text)
			if idx < 0 {
				l.logger.WarnContext(ctx, "dropping entity not present in source text",
					"entity_text", es.Text,
					"class_name", es.ClassName)
				continue
			}
			start, end = idx, idx+len(es.Text)
		}

		entities = append(entities, domain.Entity{
			Text:       es.Text,
			ClassName:  es.ClassName,
			StartIndex: start,
			EndIndex:   end,
		})
	}

	l.logger.DebugContext(ctx, "parsed model response",
		"entity_count", len(entities),
		"dropped", len(response.Entities)-len(entities))

	return entities, nil
}

func offsetsMatch(text, entity string, start, end int) bool {
	if start < 0 || end > len(text) || start >= end {
		return false
	}
	return text[start:end] == entity
}
