package gemini

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/bookwise/bookwise-api/internal/config"
	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/bookwise/bookwise-api/internal/generation"
	"github.com/bookwise/bookwise-api/internal/netcheck"
	"github.com/bookwise/bookwise-api/internal/retry"
	"google.golang.org/genai"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// modelCaller is the slice of the genai client the generator uses,
// extracted so tests can substitute a fake without network access.
type modelCaller interface {
	generateContent(ctx context.Context, model, prompt string) (*genai.GenerateContentResponse, error)
}

// genaiCaller is the production modelCaller backed by a real client.
type genaiCaller struct {
	client *genai.Client
}

func (c *genaiCaller) generateContent(ctx context.Context, model, prompt string) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
}

// Generator implements generation.PromptGenerator and
// generation.AnswerEvaluator using Google's Gemini API.
type Generator struct {
	logger       *slog.Logger
	config       config.LLMConfig
	generateTmpl *template.Template
	evaluateTmpl *template.Template
	caller       modelCaller
	gate         netcheck.Checker
	delay        retry.DelayFunc
}

// NewGenerator creates a Generator with the provided dependencies.
// The netcheck gate is consulted before every API call; pass
// netcheck.AlwaysOnline to disable gating. If logger is nil an error is
// returned - logging is not optional on the external call path.
func NewGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
	gate netcheck.Checker,
) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("%w: max attempts must be at least 1", generation.ErrInvalidConfig)
	}

	if gate == nil {
		gate = netcheck.AlwaysOnline
	}

	generateTmpl, err := template.ParseFS(templateFS, "templates/generate.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse generation template: %v",
			generation.ErrInvalidConfig, err)
	}

	evaluateTmpl, err := template.ParseFS(templateFS, "templates/evaluate.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse evaluation template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	backoff := retry.Backoff{
		BaseDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
		MaxDelay:   retry.DefaultMaxDelay,
		Multiplier: retry.DefaultMultiplier,
		Jitter:     true,
	}

	return &Generator{
		logger:       logger.With(slog.String("component", "gemini_generator")),
		config:       cfg,
		generateTmpl: generateTmpl,
		evaluateTmpl: evaluateTmpl,
		caller:       &genaiCaller{client: client},
		gate:         gate,
		delay:        backoff.DelayFunc(),
	}, nil
}

// Ensure Generator implements both generation interfaces.
var (
	_ generation.PromptGenerator = (*Generator)(nil)
	_ generation.AnswerEvaluator = (*Generator)(nil)
)

// GeneratePrompts implements generation.PromptGenerator.
func (g *Generator) GeneratePrompts(ctx context.Context, book *domain.Book) ([]*domain.Prompt, error) {
	if book == nil || book.Excerpt == "" {
		return nil, ErrEmptyExcerpt
	}

	prompt, err := g.renderTemplate(g.generateTmpl, generationPromptData{
		Title:          book.Title,
		Author:         book.Author,
		Excerpt:        book.Excerpt,
		PromptsPerBook: g.config.PromptsPerBook,
	})
	if err != nil {
		return nil, err
	}

	text, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var response generationSchema
	if err := json.Unmarshal([]byte(text), &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}

	return g.parseGenerationResponse(ctx, &response, book)
}

// EvaluateAnswer implements generation.AnswerEvaluator.
func (g *Generator) EvaluateAnswer(
	ctx context.Context,
	content *domain.PromptContent,
	selected []int,
	correct bool,
) (*generation.Evaluation, error) {
	if content == nil {
		return nil, fmt.Errorf("%w: prompt content is nil", generation.ErrEvaluationFailed)
	}

	data := evaluationPromptData{
		Question: content.Question,
		Options:  content.Options,
		Correct:  correct,
	}
	for _, idx := range selected {
		if idx >= 0 && idx < len(content.Options) {
			data.SelectedOptions = append(data.SelectedOptions, content.Options[idx])
		}
	}
	for _, idx := range content.CorrectIndices {
		if idx >= 0 && idx < len(content.Options) {
			data.CorrectOptions = append(data.CorrectOptions, content.Options[idx])
		}
	}

	prompt, err := g.renderTemplate(g.evaluateTmpl, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrEvaluationFailed, err)
	}

	text, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var response evaluationSchema
	if err := json.Unmarshal([]byte(text), &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}

	if response.Feedback == "" {
		return nil, fmt.Errorf("%w: empty feedback", generation.ErrInvalidResponse)
	}

	return &generation.Evaluation{Feedback: response.Feedback}, nil
}

// renderTemplate executes tmpl with data and returns the rendered prompt.
func (g *Generator) renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	prompt := buf.String()
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return prompt, nil
}

// callWithRetry makes a Gemini API call through the shared retry executor.
// The connectivity gate is consulted inside the retried operation so going
// offline mid-sequence fails fast instead of burning the remaining budget.
// Malformed responses and safety blocks are permanent; everything else is
// assumed transient.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	attempt := 0
	return retry.Do(ctx, g.config.MaxAttempts, func(ctx context.Context) (string, error) {
		attempt++
		log := g.logger.With(
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", g.config.MaxAttempts))

		if !g.gate.IsConnected() {
			log.Warn("skipping Gemini call, network is offline")
			return "", retry.Permanent(netcheck.ErrOffline)
		}

		log.Debug("making Gemini API call", slog.Int("prompt_length", len(prompt)))

		resp, err := g.caller.generateContent(ctx, g.config.ModelName, prompt)
		if err != nil {
			log.Error("Gemini API call error", slog.String("error", err.Error()))
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}

		text, err := extractText(resp)
		if err != nil {
			log.Warn("Gemini response rejected", slog.String("error", err.Error()))
			return "", retry.Permanent(err)
		}

		log.Debug("Gemini API call successful", slog.Int("response_length", len(text)))
		return text, nil
	}, g.delay)
}

// extractText pulls the text payload out of a response, mapping the
// failure modes onto the generation sentinels.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}

	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	text := ""
	for _, part := range candidate.Content.Parts {
		text += part.Text
	}
	if text == "" {
		return "", fmt.Errorf("%w: no text in response", generation.ErrInvalidResponse)
	}

	return text, nil
}

// parseGenerationResponse converts a generation response into domain
// prompts. If any prompt in the batch fails validation the whole batch is
// rejected; a partially valid batch would leave the book with an
// unpredictable prompt count.
func (g *Generator) parseGenerationResponse(
	ctx context.Context,
	response *generationSchema,
	book *domain.Book,
) ([]*domain.Prompt, error) {
	if len(response.Prompts) == 0 {
		return nil, fmt.Errorf("%w: no prompts in response", generation.ErrInvalidResponse)
	}

	g.logger.InfoContext(ctx, "parsing Gemini generation response",
		slog.Int("prompt_count", len(response.Prompts)),
		slog.String("book_id", book.ID.String()))

	prompts := make([]*domain.Prompt, 0, len(response.Prompts))
	for i, schema := range response.Prompts {
		content := domain.PromptContent{
			Question:       schema.Question,
			Options:        schema.Options,
			CorrectIndices: schema.CorrectIndices,
			Explanation:    schema.Explanation,
			Concept:        schema.Concept,
		}

		if err := content.Validate(); err != nil {
			return nil, fmt.Errorf("%w: prompt %d: %v", generation.ErrInvalidResponse, i, err)
		}

		contentJSON, err := json.Marshal(content)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal prompt content to JSON: %w", err)
		}

		prompt, err := domain.NewPrompt(book.UserID, book.ID, contentJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to create prompt: %w", err)
		}

		prompts = append(prompts, prompt)
	}

	return prompts, nil
}
