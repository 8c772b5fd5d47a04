package recommend

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/sosohaeng-api/internal/api"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

type HandlerImpl struct {
	recommendService Service
	logger           *slog.Logger
}

func NewHandlerImpl(recommendService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		recommendService: recommendService,
		logger:           logger,
	}
}

// Chat godoc
// @Summary      Conversational recommendation turn
// @Description  Either asks the next preference question, returning the session to echo back, or returns grounded recommendations.
// @Tags         recommend
// @Accept       json
// @Produce      json
// @Param        request body types.ChatRequest true "Message and echoed session"
// @Success      200 {object} types.ChatResponse
// @Failure      400 {object} map[string]interface{}
// @Failure      429 {object} map[string]interface{}
// @Failure      503 {object} map[string]interface{}
// @Router       /recommend/chat [post]
func (h *HandlerImpl) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RecommendHandler").Start(r.Context(), "Chat", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/recommend/chat"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Chat"))

	var req types.ChatRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid chat request", slog.Any("error", err))
		api.DecodeErrorResponse(w, r, err)
		return
	}

	res, err := h.recommendService.ChatTurn(ctx, req)
	if err != nil {
		if errors.Is(err, types.ErrLLMUnavailable) {
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Recommendation assistant is temporarily unavailable")
			return
		}
		l.ErrorContext(ctx, "Chat turn failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to process chat turn")
		return
	}

	span.SetAttributes(attribute.String("chat.mode", string(res.Mode())))
	api.WriteJSONResponse(w, r, http.StatusOK, toChatResponse(res))
}

// RandomRecommend godoc
// @Summary      Random recommendations by theme
// @Tags         recommend
// @Accept       json
// @Produce      json
// @Param        request body types.RandomRecommendRequest true "Themes such as 휴양 or 액티비티"
// @Success      200 {object} types.RandomRecommendResponse
// @Failure      400 {object} map[string]interface{}
// @Router       /recommend/random [post]
func (h *HandlerImpl) RandomRecommend(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RecommendHandler").Start(r.Context(), "RandomRecommend", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/recommend/random"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "RandomRecommend"))

	var req types.RandomRecommendRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.DecodeErrorResponse(w, r, err)
		return
	}

	res, err := h.recommendService.RandomRecommend(ctx, req.Themes)
	if err != nil {
		l.ErrorContext(ctx, "Random recommendation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get random recommendations")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, res)
}
