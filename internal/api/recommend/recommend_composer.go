package recommend

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	generativeAI "github.com/FACorreiaa/sosohaeng-api/internal/api/generative_ai"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

const (
	NoResultsMessage      = "조건에 맞는 여행지를 찾지 못했어요. 다른 지역이나 여행 스타일로 다시 찾아보시겠어요?"
	DefaultFinalMessage   = "말씀해주신 취향에 맞는 여행지를 골라봤어요."
	BroadenPreferencesAsk = "조건에 맞는 여행지를 찾지 못했어요. 여행 스타일이나 지역을 조금 더 넓게 말씀해주시겠어요?"
)

type rationaleItem struct {
	ContentID string `json:"content_id"`
	Reason    string `json:"reason"`
}

type rationaleOutput struct {
	Message string          `json:"message"`
	Items   []rationaleItem `json:"items"`
}

// Composer turns retrieved candidates into the final message. It never adds,
// drops or reorders candidates.
type Composer struct {
	llm     generativeAI.Client
	prompts *PromptBuilder
	logger  *slog.Logger
}

func NewComposer(llm generativeAI.Client, prompts *PromptBuilder, logger *slog.Logger) *Composer {
	return &Composer{llm: llm, prompts: prompts, logger: logger}
}

// Compose never fails. An empty candidate list yields NoResultsMessage and an
// empty list; a failed rationale call yields default message and reasons.
func (c *Composer) Compose(ctx context.Context, candidates []types.RecommendationCandidate, profile types.PreferenceProfile) (string, []types.RecommendationCandidate) {
	if len(candidates) == 0 {
		return NoResultsMessage, []types.RecommendationCandidate{}
	}

	ctx, span := otel.Tracer("RecommendationComposer").Start(ctx, "Compose", trace.WithAttributes(
		attribute.Int("candidates", len(candidates)),
	))
	defer span.End()

	out := make([]types.RecommendationCandidate, len(candidates))
	copy(out, candidates)

	rationale, ok := c.rationale(ctx, out, profile)
	span.SetAttributes(attribute.Bool("rationale.generated", ok))

	reasons := make(map[string]string, len(rationale.Items))
	for _, item := range rationale.Items {
		id := strings.TrimSpace(item.ContentID)
		if reason := strings.TrimSpace(item.Reason); id != "" && reason != "" {
			if _, dup := reasons[id]; !dup {
				reasons[id] = reason
			}
		}
	}

	for i := range out {
		if reason, found := reasons[out[i].POI.ContentID]; found {
			out[i].Reason = reason
			continue
		}
		if strings.TrimSpace(out[i].Reason) == "" {
			out[i].Reason = defaultReason(out[i].POI)
		}
	}

	message := strings.TrimSpace(rationale.Message)
	if message == "" {
		message = DefaultFinalMessage
	}
	return message, out
}

func (c *Composer) rationale(ctx context.Context, candidates []types.RecommendationCandidate, profile types.PreferenceProfile) (rationaleOutput, bool) {
	if c.llm == nil {
		return rationaleOutput{}, false
	}
	req, err := c.prompts.RationalePrompt(candidates, profile)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to build rationale prompt", slog.Any("error", err))
		return rationaleOutput{}, false
	}
	resp, err := c.llm.Generate(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "Rationale generation failed, using default reasons", slog.Any("error", err))
		return rationaleOutput{}, false
	}
	var out rationaleOutput
	if err = generativeAI.DecodeJSON(resp.Text, &out); err != nil {
		c.logger.WarnContext(ctx, "Discarding malformed rationale output", slog.Any("error", err))
		return rationaleOutput{}, false
	}
	return out, true
}

func defaultReason(p types.PointOfInterest) string {
	if addr := strings.TrimSpace(p.Address()); addr != "" {
		return addr
	}
	return p.Title
}
