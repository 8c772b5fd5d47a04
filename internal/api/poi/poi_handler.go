package poi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/sosohaeng-api/internal/api"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

type HandlerImpl struct {
	poiService Service
	logger     *slog.Logger
}

func NewHandlerImpl(poiService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		poiService: poiService,
		logger:     logger,
	}
}

// GetSpot godoc
// @Summary      Get a travel spot
// @Tags         spots
// @Produce      json
// @Param        contentID path string true "Catalog content id"
// @Success      200 {object} types.PointOfInterest
// @Failure      404 {object} map[string]interface{}
// @Router       /spots/{contentID} [get]
func (h *HandlerImpl) GetSpot(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "GetSpot", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/spots/{contentID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetSpot"))

	contentID := chi.URLParam(r, "contentID")
	if contentID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Content ID is required")
		return
	}

	spot, err := h.poiService.GetSpot(ctx, contentID)
	if err != nil {
		if errors.Is(err, types.ErrPOINotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Spot not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get spot", slog.String("content_id", contentID), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get spot")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, spot)
}

// GetNearbySpots godoc
// @Summary      Spots near a travel spot
// @Description  Other catalog spots within radius km of the target, nearest first.
// @Tags         spots
// @Produce      json
// @Param        contentID path  string true  "Catalog content id"
// @Param        radius    query number false "Radius in km" default(20)
// @Success      200 {object} types.NearbySpotsResponse
// @Failure      400 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Router       /spots/{contentID}/nearby [get]
func (h *HandlerImpl) GetNearbySpots(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "GetNearbySpots", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/spots/{contentID}/nearby"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetNearbySpots"))

	contentID := chi.URLParam(r, "contentID")
	if contentID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Content ID is required")
		return
	}

	radius, err := api.QueryFloat(r, "radius")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	radiusKm := DefaultNearbyRadiusKm
	if radius != nil {
		if *radius <= 0 || *radius > 500 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "radius must be between 0 and 500 km")
			return
		}
		radiusKm = *radius
	}

	target, ranked, err := h.poiService.GetNearby(ctx, contentID, radiusKm)
	if err != nil {
		if errors.Is(err, types.ErrPOINotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Spot not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get nearby spots", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get nearby spots")
		return
	}

	l.DebugContext(ctx, "Nearby spots ranked", slog.String("content_id", contentID), slog.Int("count", len(ranked)))
	api.WriteJSONResponse(w, r, http.StatusOK, types.NearbySpotsResponse{
		Target:      *target,
		NearbySpots: toNearbySpots(ranked),
	})
}
