// Package task manages background job queuing, processing, and lifecycle.
// Prompt generation runs here so that book submission returns immediately
// while the Gemini calls happen on worker goroutines, and so interrupted
// jobs survive an application restart.
package task
