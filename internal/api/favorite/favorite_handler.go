package favorite

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/sosohaeng-api/internal/api"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

type HandlerImpl struct {
	favoriteService Service
	logger          *slog.Logger
}

func NewHandlerImpl(favoriteService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		favoriteService: favoriteService,
		logger:          logger,
	}
}

// ToggleFavorite godoc
// @Summary      Toggle a favorite
// @Description  Adds the item to the user's favorites, or removes it when already present. The item must exist.
// @Tags         favorites
// @Accept       json
// @Produce      json
// @Param        userID  path string                      true "User id"
// @Param        request body types.ToggleFavoriteRequest true "Item"
// @Success      200 {object} types.ToggleFavoriteResponse
// @Failure      400 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Router       /users/{userID}/favorites [post]
func (h *HandlerImpl) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("FavoriteHandler").Start(r.Context(), "ToggleFavorite", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/users/{userID}/favorites"),
	))
	defer span.End()

	userID, err := api.URLParamUUID(r, "userID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req types.ToggleFavoriteRequest
	if err = api.DecodeAndValidate(w, r, &req); err != nil {
		api.DecodeErrorResponse(w, r, err)
		return
	}

	resp, err := h.favoriteService.Toggle(ctx, userID, req)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to toggle favorite")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// ListFavorites godoc
// @Summary      List favorites
// @Tags         favorites
// @Produce      json
// @Param        userID path string true "User id"
// @Success      200 {object} types.FavoritesResponse
// @Failure      400 {object} map[string]interface{}
// @Router       /users/{userID}/favorites [get]
func (h *HandlerImpl) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("FavoriteHandler").Start(r.Context(), "ListFavorites", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/users/{userID}/favorites"),
	))
	defer span.End()

	userID, err := api.URLParamUUID(r, "userID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.favoriteService.List(ctx, userID)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to list favorites")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
