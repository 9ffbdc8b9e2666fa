package gemini

import "errors"

// promptData holds the values interpolated into the prompt template.
type promptData struct {
	Text          string
	Language      string
	EntityClasses string
}

// entitySchema is one entity in the model's JSON response.
type entitySchema struct {
	Text       string `json:"text"`
	ClassName  string `json:"class_name"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
}

// responseSchema is the structured JSON document the model is instructed
// to return.
type responseSchema struct {
	Entities []entitySchema `json:"entities"`
}

// ErrEmptyText is returned when the text to label is empty.
var ErrEmptyText = errors.New("text to label cannot be empty")
