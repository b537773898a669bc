package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/bookwise/bookwise-api/internal/store"
)

// PromptSaver persists generated prompt batches atomically. It is the
// piece the prompt generation task uses to write its results; the whole
// batch lands or none of it does.
type PromptSaver struct {
	promptRepo PromptRepository
	logger     *slog.Logger
}

// NewPromptSaver creates a PromptSaver over the given repository.
func NewPromptSaver(promptRepo PromptRepository, logger *slog.Logger) *PromptSaver {
	if logger == nil {
		logger = slog.Default()
	}
	return &PromptSaver{
		promptRepo: promptRepo,
		logger:     logger.With("component", "prompt_saver"),
	}
}

// SavePrompts writes the batch inside a single transaction.
func (p *PromptSaver) SavePrompts(ctx context.Context, prompts []*domain.Prompt) error {
	if len(prompts) == 0 {
		return nil
	}

	err := store.RunInTransaction(ctx, p.promptRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return p.promptRepo.WithTx(tx).CreateMultiple(ctx, prompts)
	})
	if err != nil {
		return NewServiceError("prompt_saver", "save_prompts", "failed to save prompt batch", err)
	}

	p.logger.Info("prompt batch saved", "count", len(prompts))
	return nil
}
