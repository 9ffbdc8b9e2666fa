// Package labeling provides interfaces and implementations for interacting
// with external AI/LLM services that annotate text. It abstracts the details
// of model API integration (Gemini), allowing the pipeline to label tasks
// without coupling to a specific external service.
package labeling
