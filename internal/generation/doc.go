// Package generation provides interfaces and implementations for
// interacting with external AI/LLM services. It abstracts the details of
// LLM API integration (Gemini), allowing the application to generate
// multiple-choice prompts from book excerpts and evaluate user answers
// without coupling to specific external services.
package generation
