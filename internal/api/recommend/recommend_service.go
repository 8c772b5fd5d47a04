package recommend

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/sosohaeng-api/app/observability/metrics"
	"github.com/FACorreiaa/sosohaeng-api/config"
	generativeAI "github.com/FACorreiaa/sosohaeng-api/internal/api/generative_ai"
	"github.com/FACorreiaa/sosohaeng-api/internal/api/poi"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

const (
	randomRecommendCount   = 5
	RandomRecommendMessage = "랜덤 여행지 추천이 완료되었습니다."
)

// themeKeywords expands the fixed travel themes into catalog search terms.
// Other themes are searched as given.
var themeKeywords = map[string][]string{
	"휴양":     {"휴양림", "해변", "온천", "수목원"},
	"액티비티":   {"레포츠", "체험", "캠핑", "트레킹"},
	"전시/관람형": {"박물관", "미술관", "전시", "공연"},
	"이색 체험":  {"체험", "공방", "이색"},
}

// ChatTurnResult is either a QuestionResult or a FinalResult.
type ChatTurnResult interface {
	Mode() types.DialogueMode
}

// QuestionResult carries the next question and the session the caller must
// send back with its answer.
type QuestionResult struct {
	Text    string
	Session types.DialogueSession
}

func (QuestionResult) Mode() types.DialogueMode { return types.ModeQuestion }

type FinalResult struct {
	Text            string
	Recommendations []types.RecommendationCandidate
}

func (FinalResult) Mode() types.DialogueMode { return types.ModeFinal }

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ChatTurn(ctx context.Context, req types.ChatRequest) (ChatTurnResult, error)
	RandomRecommend(ctx context.Context, themes []string) (*types.RandomRecommendResponse, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	dialogue  *DialogueEngine
	retriever *Retriever
	composer  *Composer
}

func NewServiceImpl(dialogue *DialogueEngine, retriever *Retriever, composer *Composer, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		dialogue:  dialogue,
		retriever: retriever,
		composer:  composer,
	}
}

// NewServiceFromConfig wires the dialogue engine, retriever and composer from
// the application config.
func NewServiceFromConfig(llm generativeAI.Client, catalog Catalog, cfg *config.Config, logger *slog.Logger) *ServiceImpl {
	schema := NewSlotSchema(cfg.Recommend.Slots)
	prompts := NewPromptBuilder(schema, cfg.Recommend.MaxTurns, cfg.Recommend.MaxKeywords)
	retriever := NewRetriever(catalog, RetrieverConfig{
		Limit:         cfg.Recommend.ResultLimit,
		MaxKeywords:   cfg.Recommend.MaxKeywords,
		ExcludedAreas: cfg.Recommend.ExcludedAreas,
		QueryTimeout:  cfg.Catalog.QueryTimeout,
		CacheTTL:      cfg.Cache.TTL,
	}, logger)
	dialogue := NewDialogueEngine(llm, prompts, schema, cfg.Recommend.MaxTurns, retriever.UsableKeywords, logger)
	composer := NewComposer(llm, prompts, logger)
	return NewServiceImpl(dialogue, retriever, composer, logger)
}

func (s *ServiceImpl) ChatTurn(ctx context.Context, req types.ChatRequest) (ChatTurnResult, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "ChatTurn", trace.WithAttributes(
		attribute.Int("session.turn_count", req.TurnCount),
		attribute.Bool("session.retry_used", req.RetryUsed),
		attribute.Bool("request.has_location", req.Location != nil),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "ChatTurn"))

	step, err := s.dialogue.Advance(ctx, types.DialogueSession{
		Profile:   req.CurrentProfile,
		TurnCount: req.TurnCount,
		RetryUsed: req.RetryUsed,
	}, req.Message)
	if err != nil {
		l.ErrorContext(ctx, "Dialogue turn failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "dialogue failed")
		return nil, err
	}

	if step.Mode == types.ModeQuestion {
		return s.finish(ctx, span, QuestionResult{
			Text: step.Question,
			Session: types.DialogueSession{
				Profile:   step.Profile,
				TurnCount: step.TurnCount,
				RetryUsed: req.RetryUsed,
			},
		}), nil
	}

	span.SetAttributes(attribute.StringSlice("search.keywords", step.Keywords))
	pois, err := s.retriever.Search(ctx, step.Keywords)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.WarnContext(ctx, "Catalog unavailable, treating as empty retrieval", slog.Any("error", err))
		span.RecordError(err)
		pois = nil
	}

	candidates := toCandidates(pois, req.Location)
	if len(candidates) == 0 && !req.RetryUsed {
		l.InfoContext(ctx, "Empty retrieval, asking to broaden preferences", slog.Any("keywords", step.Keywords))
		return s.finish(ctx, span, QuestionResult{
			Text: BroadenPreferencesAsk,
			Session: types.DialogueSession{
				Profile:   step.Profile,
				TurnCount: step.TurnCount,
				RetryUsed: true,
			},
		}), nil
	}

	message, recommendations := s.composer.Compose(ctx, candidates, step.Profile)
	l.InfoContext(ctx, "Recommendations composed", slog.Int("count", len(recommendations)), slog.Int("turn", step.TurnCount))
	return s.finish(ctx, span, FinalResult{Text: message, Recommendations: recommendations}), nil
}

func (s *ServiceImpl) finish(ctx context.Context, span trace.Span, res ChatTurnResult) ChatTurnResult {
	metrics.Get().ChatTurnsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", string(res.Mode()))))
	span.SetAttributes(attribute.String("result.mode", string(res.Mode())))
	span.SetStatus(codes.Ok, "turn completed")
	return res
}

// toCandidates ranks by distance when a location is given. Spots without
// coordinates are dropped in that case.
func toCandidates(pois []types.PointOfInterest, loc *types.UserLocation) []types.RecommendationCandidate {
	if loc == nil {
		out := make([]types.RecommendationCandidate, len(pois))
		for i, p := range pois {
			out[i] = types.RecommendationCandidate{POI: p}
		}
		return out
	}

	ranked := poi.Rank(types.GeoPoint{Lat: loc.Lat, Lon: loc.Lon}, pois, loc.RadiusKm)
	out := make([]types.RecommendationCandidate, len(ranked))
	for i, r := range ranked {
		d := r.DistanceKm
		out[i] = types.RecommendationCandidate{POI: r.POI, DistanceKm: &d}
	}
	return out
}

func (s *ServiceImpl) RandomRecommend(ctx context.Context, themes []string) (*types.RandomRecommendResponse, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "RandomRecommend", trace.WithAttributes(
		attribute.StringSlice("themes", themes),
	))
	defer span.End()

	byTheme := make(map[string][]string, len(themes))
	var keywords []string
	for _, theme := range themes {
		theme = strings.TrimSpace(theme)
		kws, known := themeKeywords[theme]
		if !known {
			kws = []string{theme}
		}
		byTheme[theme] = kws
		keywords = append(keywords, kws...)
	}

	pois, err := s.retriever.Sample(ctx, keywords, randomRecommendCount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sample failed")
		s.logger.ErrorContext(ctx, "Failed to sample spots", slog.Any("themes", themes), slog.Any("error", err))
		return nil, err
	}

	if len(pois) < randomRecommendCount {
		// Top up from every known theme so the caller still gets a full set.
		var all []string
		for _, kws := range themeKeywords {
			all = append(all, kws...)
		}
		extra, err := s.retriever.Sample(ctx, all, randomRecommendCount*2)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to top up random recommendations", slog.Any("error", err))
		}
		pois = appendUnique(pois, extra, randomRecommendCount)
	}

	recs := make([]types.RandomRecommendation, len(pois))
	for i, p := range pois {
		recs[i] = types.RandomRecommendation{
			RecommendationItem: toRecommendationItem(types.RecommendationCandidate{POI: p, Reason: summary(p)}),
			MatchedThemes:      matchedThemes(p, themes, byTheme),
		}
	}

	span.SetAttributes(attribute.Int("results", len(recs)))
	span.SetStatus(codes.Ok, "sampled")
	return &types.RandomRecommendResponse{Message: RandomRecommendMessage, Recommendations: recs}, nil
}
