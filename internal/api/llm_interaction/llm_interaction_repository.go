package llmInteraction

import (
	"context"
	"fmt"
	"log/slog"

	database "github.com/FACorreiaa/sosohaeng-api/app/db"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	SaveInteraction(ctx context.Context, interaction types.LlmInteraction) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.DB
}

func NewRepository(pgpool database.DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) SaveInteraction(ctx context.Context, interaction types.LlmInteraction) error {
	query := `
        INSERT INTO llm_interactions (
            call_kind, provider, model_used, prompt, response_text, succeeded, latency_ms
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.pgpool.Exec(ctx, query,
		interaction.CallKind, interaction.Provider, interaction.ModelUsed,
		interaction.Prompt, interaction.ResponseText, interaction.Succeeded, interaction.LatencyMs,
	)
	if err != nil {
		return fmt.Errorf("failed to save llm interaction: %w", err)
	}
	return nil
}
