package gemini

import "errors"

// Package-specific errors
var (
	// ErrEmptyExcerpt is returned when the book excerpt is empty
	ErrEmptyExcerpt = errors.New("book excerpt cannot be empty")

	// ErrEmptyPrompt is returned when a rendered prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)
