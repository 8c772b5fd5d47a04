package llmInteraction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveInteraction(ctx context.Context, interaction types.LlmInteraction) error {
	args := m.Called(ctx, interaction)
	return args.Error(0)
}

func sampleInteraction() types.LlmInteraction {
	return types.LlmInteraction{
		CallKind:     "extract",
		Provider:     "openai",
		ModelUsed:    "gpt-4o-mini",
		Prompt:       "prompt",
		ResponseText: `{"status":"ask"}`,
		Succeeded:    true,
		LatencyMs:    120,
	}
}

func TestRepositorySaveInteraction(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("inserts the interaction", func(t *testing.T) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer pool.Close()

		in := sampleInteraction()
		pool.ExpectExec("INSERT INTO llm_interactions").
			WithArgs(in.CallKind, in.Provider, in.ModelUsed, in.Prompt, in.ResponseText, in.Succeeded, in.LatencyMs).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewRepository(pool, logger)
		require.NoError(t, repo.SaveInteraction(context.Background(), in))
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("wraps database errors", func(t *testing.T) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer pool.Close()

		pool.ExpectExec("INSERT INTO llm_interactions").WillReturnError(errors.New("db down"))

		repo := NewRepository(pool, logger)
		err = repo.SaveInteraction(context.Background(), sampleInteraction())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save llm interaction")
	})
}

func TestServiceRecordSwallowsErrors(t *testing.T) {
	repo := new(MockRepository)
	repo.On("SaveInteraction", mock.Anything, sampleInteraction()).Return(errors.New("db down")).Once()

	svc := NewServiceImpl(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NotPanics(t, func() {
		svc.Record(context.Background(), sampleInteraction())
	})
	repo.AssertExpectations(t)
}
