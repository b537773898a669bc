package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePrompts(t *testing.T) {
	t.Parallel()

	promptRepo := newFakePromptRepo()
	promptRepo.db = newTxDB(t, 1)
	saver := NewPromptSaver(promptRepo, serviceTestLogger())

	raw, err := json.Marshal(studyPromptContent())
	require.NoError(t, err)
	prompt, err := domain.NewPrompt(uuid.New(), uuid.New(), raw)
	require.NoError(t, err)

	require.NoError(t, saver.SavePrompts(context.Background(), []*domain.Prompt{prompt}))
	assert.Len(t, promptRepo.prompts, 1)
}

func TestSavePromptsEmptyBatch(t *testing.T) {
	t.Parallel()

	// No database interaction expected for an empty batch.
	saver := NewPromptSaver(newFakePromptRepo(), serviceTestLogger())
	assert.NoError(t, saver.SavePrompts(context.Background(), nil))
}
