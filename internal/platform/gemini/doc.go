// Package gemini implements the labeling interface using Google's Gemini API.
// It handles prompt construction, structured JSON response parsing, and retry
// with exponential backoff for transient API failures.
package gemini
