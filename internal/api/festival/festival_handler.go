package festival

import (
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/sosohaeng-api/internal/api"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

type HandlerImpl struct {
	festivalService Service
	logger          *slog.Logger
}

func NewHandlerImpl(festivalService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		festivalService: festivalService,
		logger:          logger,
	}
}

func errInvalid(msg string) error {
	return fmt.Errorf("%w: %s", types.ErrInvalidInput, msg)
}

func parseFilter(r *http.Request) (types.FestivalFilter, error) {
	var f types.FestivalFilter
	var err error

	if f.Lat, err = api.QueryFloat(r, "lat"); err != nil {
		return f, err
	}
	if f.Lon, err = api.QueryFloat(r, "lon"); err != nil {
		return f, err
	}
	if (f.Lat == nil) != (f.Lon == nil) {
		return f, errInvalid("lat and lon must be given together")
	}
	if f.Lat != nil && (*f.Lat < -90 || *f.Lat > 90 || *f.Lon < -180 || *f.Lon > 180) {
		return f, errInvalid("lat or lon out of range")
	}

	radius, err := api.QueryFloat(r, "radius_km")
	if err != nil {
		return f, err
	}
	if radius != nil {
		if *radius <= 0 || *radius > 500 {
			return f, errInvalid("radius_km must be between 0 and 500")
		}
		f.RadiusKm = *radius
	}

	if f.Page, err = api.QueryInt(r, "page", 1); err != nil {
		return f, err
	}
	if f.Size, err = api.QueryInt(r, "size", DefaultPageSize); err != nil {
		return f, err
	}
	if f.Page < 1 || f.Size < 1 || f.Size > MaxPageSize {
		return f, errInvalid("page must be >= 1 and size between 1 and 100")
	}

	f.OrderBy = r.URL.Query().Get("order_by")
	f.Query = r.URL.Query().Get("q")
	return f, nil
}

// ListFestivals godoc
// @Summary      List festivals
// @Description  Title ordered, or distance ordered within radius_km of lat/lon with a distance per item.
// @Tags         festivals
// @Produce      json
// @Param        lat       query number false "Latitude"
// @Param        lon       query number false "Longitude"
// @Param        radius_km query number false "Radius in km" default(10)
// @Param        page      query int    false "Page" default(1)
// @Param        size      query int    false "Page size" default(20)
// @Param        order_by  query string false "distance or title"
// @Param        q         query string false "Title or location search"
// @Success      200 {object} types.Page[types.FestivalListItem]
// @Failure      400 {object} map[string]interface{}
// @Router       /festivals [get]
func (h *HandlerImpl) ListFestivals(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("FestivalHandler").Start(r.Context(), "ListFestivals", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/festivals"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListFestivals"))

	filter, err := parseFilter(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.festivalService.List(ctx, filter)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err, "Failed to list festivals")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, page)
}

// GetFestival godoc
// @Summary      Get a festival
// @Tags         festivals
// @Produce      json
// @Param        festivalID path string true "Festival id"
// @Success      200 {object} types.Festival
// @Failure      404 {object} map[string]interface{}
// @Router       /festivals/{festivalID} [get]
func (h *HandlerImpl) GetFestival(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("FestivalHandler").Start(r.Context(), "GetFestival", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/festivals/{festivalID}"),
	))
	defer span.End()

	id, err := api.URLParamUUID(r, "festivalID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	f, err := h.festivalService.Get(ctx, id)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to get festival")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, f)
}

// CreateFestival godoc
// @Summary      Create a festival
// @Tags         festivals
// @Accept       json
// @Produce      json
// @Param        request body types.CreateFestivalRequest true "Festival"
// @Success      201 {object} types.Festival
// @Failure      400 {object} map[string]interface{}
// @Router       /festivals [post]
func (h *HandlerImpl) CreateFestival(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("FestivalHandler").Start(r.Context(), "CreateFestival", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/festivals"),
	))
	defer span.End()

	var req types.CreateFestivalRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.DecodeErrorResponse(w, r, err)
		return
	}

	f, err := h.festivalService.Create(ctx, req)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to create festival")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, f)
}

// UpdateFestival godoc
// @Summary      Update a festival
// @Description  Only the fields present in the body are changed.
// @Tags         festivals
// @Accept       json
// @Produce      json
// @Param        festivalID path string true "Festival id"
// @Param        request body types.UpdateFestivalRequest true "Fields to change"
// @Success      200 {object} types.Festival
// @Failure      400 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Router       /festivals/{festivalID} [put]
func (h *HandlerImpl) UpdateFestival(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("FestivalHandler").Start(r.Context(), "UpdateFestival", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/festivals/{festivalID}"),
	))
	defer span.End()

	id, err := api.URLParamUUID(r, "festivalID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req types.UpdateFestivalRequest
	if err = api.DecodeAndValidate(w, r, &req); err != nil {
		api.DecodeErrorResponse(w, r, err)
		return
	}

	f, err := h.festivalService.Update(ctx, id, req)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to update festival")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, f)
}

// DeleteFestival godoc
// @Summary      Delete a festival
// @Tags         festivals
// @Param        festivalID path string true "Festival id"
// @Success      204
// @Failure      404 {object} map[string]interface{}
// @Router       /festivals/{festivalID} [delete]
func (h *HandlerImpl) DeleteFestival(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("FestivalHandler").Start(r.Context(), "DeleteFestival", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/festivals/{festivalID}"),
	))
	defer span.End()

	id, err := api.URLParamUUID(r, "festivalID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err = h.festivalService.Delete(ctx, id); err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to delete festival")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
