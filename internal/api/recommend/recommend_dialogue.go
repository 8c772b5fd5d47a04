package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	generativeAI "github.com/FACorreiaa/sosohaeng-api/internal/api/generative_ai"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

const (
	statusAsk    = "ask"
	statusSearch = "search"
)

const clarificationQuestion = "말씀을 잘 이해하지 못했어요. %s에 대해 조금 더 알려주시겠어요?"

// Step is the outcome of one dialogue turn: either a question for the user or
// the keywords to search with.
type Step struct {
	Mode      types.DialogueMode
	Question  string
	Profile   types.PreferenceProfile
	TurnCount int
	Keywords  []string
}

// KeywordFilter keeps the keywords the catalog can search with.
type KeywordFilter func(keywords []string) []string

type extraction struct {
	Status       string                  `json:"status"`
	Profile      types.PreferenceProfile `json:"profile"`
	NextQuestion string                  `json:"next_question"`
	Keywords     []string                `json:"keywords"`
}

func (e *extraction) validate() error {
	e.Status = strings.ToLower(strings.TrimSpace(e.Status))
	e.NextQuestion = strings.TrimSpace(e.NextQuestion)
	switch e.Status {
	case statusSearch:
	case statusAsk:
		if e.NextQuestion == "" {
			return fmt.Errorf("%w: status ask without next_question", types.ErrLLMMalformedOutput)
		}
	default:
		return fmt.Errorf("%w: unexpected status %q", types.ErrLLMMalformedOutput, e.Status)
	}
	return nil
}

type DialogueEngine struct {
	llm      generativeAI.Client
	prompts  *PromptBuilder
	schema   SlotSchema
	maxTurns int
	filter   KeywordFilter
	logger   *slog.Logger
}

func NewDialogueEngine(llm generativeAI.Client, prompts *PromptBuilder, schema SlotSchema, maxTurns int, filter KeywordFilter, logger *slog.Logger) *DialogueEngine {
	if filter == nil {
		filter = func(k []string) []string { return k }
	}
	return &DialogueEngine{
		llm:      llm,
		prompts:  prompts,
		schema:   schema,
		maxTurns: maxTurns,
		filter:   filter,
		logger:   logger,
	}
}

// Advance runs one turn. Only ErrLLMUnavailable and prompt rendering failures
// are returned; malformed model output degrades to a clarification question,
// or to a search once the turn budget is spent.
func (d *DialogueEngine) Advance(ctx context.Context, session types.DialogueSession, message string) (Step, error) {
	turn := session.TurnCount
	if turn < 0 {
		turn = 0
	}
	turn++
	profile := d.schema.Normalize(session.Profile)

	ctx, span := otel.Tracer("DialogueEngine").Start(ctx, "Advance", trace.WithAttributes(
		attribute.Int("dialogue.turn", turn),
		attribute.Int("dialogue.max_turns", d.maxTurns),
	))
	defer span.End()

	req, err := d.prompts.ExtractionPrompt(profile, turn, message)
	if err != nil {
		span.RecordError(err)
		return Step{}, err
	}

	ex, err := d.extract(ctx, req)
	if err != nil {
		if !errors.Is(err, types.ErrLLMMalformedOutput) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "extraction failed")
			return Step{}, err
		}
		d.logger.WarnContext(ctx, "Discarding malformed extraction", slog.Int("turn", turn), slog.Any("error", err))
		span.AddEvent("malformed extraction")
		if turn >= d.maxTurns {
			return d.searchStep(profile, turn, nil), nil
		}
		return Step{
			Mode:      types.ModeQuestion,
			Question:  d.clarification(profile),
			Profile:   profile,
			TurnCount: turn,
		}, nil
	}

	merged := d.schema.Normalize(Merge(profile, ex.Profile))
	span.SetAttributes(attribute.String("dialogue.status", ex.Status))

	if ex.Status == statusAsk && turn < d.maxTurns && !d.schema.Complete(merged) {
		span.SetStatus(codes.Ok, "question")
		return Step{
			Mode:      types.ModeQuestion,
			Question:  ex.NextQuestion,
			Profile:   merged,
			TurnCount: turn,
		}, nil
	}

	span.SetStatus(codes.Ok, "search")
	return d.searchStep(merged, turn, ex.Keywords), nil
}

func (d *DialogueEngine) extract(ctx context.Context, req generativeAI.Request) (extraction, error) {
	resp, err := d.llm.Generate(ctx, req)
	if err != nil {
		return extraction{}, err
	}
	var ex extraction
	if err = generativeAI.DecodeJSON(resp.Text, &ex); err != nil {
		return extraction{}, err
	}
	if err = ex.validate(); err != nil {
		return extraction{}, err
	}
	return ex, nil
}

// searchStep prefers the model's keywords and falls back to the profile values.
func (d *DialogueEngine) searchStep(profile types.PreferenceProfile, turn int, keywords []string) Step {
	usable := d.filter(keywords)
	if len(usable) == 0 {
		usable = d.filter(d.schema.KeywordsFromProfile(profile))
	}
	return Step{
		Mode:      types.ModeSearch,
		Profile:   profile,
		TurnCount: turn,
		Keywords:  usable,
	}
}

func (d *DialogueEngine) clarification(profile types.PreferenceProfile) string {
	topic := "원하시는 여행"
	if missing := d.schema.Missing(profile); len(missing) > 0 {
		for _, slot := range d.schema.Slots() {
			if slot.Name == missing[0] && slot.Description != "" {
				topic = slot.Description
				break
			}
		}
	}
	return fmt.Sprintf(clarificationQuestion, topic)
}
