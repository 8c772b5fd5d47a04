package llmInteraction

import (
	"context"
	"log/slog"
	"time"

	generativeAI "github.com/FACorreiaa/sosohaeng-api/internal/api/generative_ai"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

var _ generativeAI.Recorder = (*ServiceImpl)(nil)

// ServiceImpl stores LLM interactions best effort. A failed insert is logged
// and never reaches the chat request.
type ServiceImpl struct {
	logger  *slog.Logger
	repo    Repository
	timeout time.Duration
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		timeout: 2 * time.Second,
	}
}

func (s *ServiceImpl) Record(ctx context.Context, interaction types.LlmInteraction) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.SaveInteraction(ctx, interaction); err != nil {
		s.logger.WarnContext(ctx, "Failed to record LLM interaction",
			slog.String("call_kind", interaction.CallKind),
			slog.Any("error", err),
		)
	}
}
