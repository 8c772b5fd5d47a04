package market

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/sosohaeng-api/internal/api"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

type HandlerImpl struct {
	marketService Service
	logger        *slog.Logger
}

func NewHandlerImpl(marketService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		marketService: marketService,
		logger:        logger,
	}
}

func startSpan(r *http.Request, name, route string) (*http.Request, trace.Span) {
	ctx, span := otel.Tracer("MarketHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return r.WithContext(ctx), span
}

func parsePaging(r *http.Request) (page, size int, err error) {
	if page, err = api.QueryInt(r, "page", 1); err != nil {
		return 0, 0, err
	}
	if size, err = api.QueryInt(r, "size", DefaultPageSize); err != nil {
		return 0, 0, err
	}
	if page < 1 || size < 1 || size > MaxPageSize {
		return 0, 0, fmt.Errorf("page must be >= 1 and size between 1 and %d", MaxPageSize)
	}
	return page, size, nil
}

func queryIntPtr(r *http.Request, key string) (*int, error) {
	if r.URL.Query().Get(key) == "" {
		return nil, nil
	}
	v, err := api.QueryInt(r, key, 0)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListMarkets godoc
// @Summary      List markets
// @Tags         markets
// @Produce      json
// @Param        q         query string false "Name or address search"
// @Param        region    query string false "Region name"
// @Param        is_active query bool   false "Active flag"
// @Param        order_by  query string false "name or recent"
// @Param        page      query int    false "Page" default(1)
// @Param        size      query int    false "Page size" default(20)
// @Success      200 {object} types.Page[types.Market]
// @Failure      400 {object} map[string]interface{}
// @Router       /markets [get]
func (h *HandlerImpl) ListMarkets(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "ListMarkets", "/markets")
	defer span.End()

	page, size, err := parsePaging(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	active, err := api.QueryBool(r, "is_active")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	result, err := h.marketService.ListMarkets(r.Context(), types.MarketFilter{
		Query:    q.Get("q"),
		Region:   q.Get("region"),
		IsActive: active,
		Page:     page,
		Size:     size,
		OrderBy:  q.Get("order_by"),
	})
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to list markets")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// GetMarket godoc
// @Summary      Get a market
// @Tags         markets
// @Produce      json
// @Param        marketID path string true "Market id"
// @Success      200 {object} types.Market
// @Failure      404 {object} map[string]interface{}
// @Router       /markets/{marketID} [get]
func (h *HandlerImpl) GetMarket(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "GetMarket", "/markets/{marketID}")
	defer span.End()

	id, err := api.URLParamUUID(r, "marketID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.marketService.GetMarket(r.Context(), id)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to get market")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, m)
}

// CreateMarket godoc
// @Summary      Create a market
// @Tags         markets
// @Accept       json
// @Produce      json
// @Param        request body types.CreateMarketRequest true "Market"
// @Success      201 {object} types.Market
// @Failure      400 {object} map[string]interface{}
// @Router       /markets [post]
func (h *HandlerImpl) CreateMarket(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "CreateMarket", "/markets")
	defer span.End()

	var req types.CreateMarketRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.DecodeErrorResponse(w, r, err)
		return
	}
	m, err := h.marketService.CreateMarket(r.Context(), req)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to create market")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, m)
}

// UpdateMarket godoc
// @Summary      Update a market
// @Tags         markets
// @Accept       json
// @Produce      json
// @Param        marketID path string true "Market id"
// @Param        request body types.UpdateMarketRequest true "Fields to change"
// @Success      200 {object} types.Market
// @Failure      404 {object} map[string]interface{}
// @Router       /markets/{marketID} [put]
func (h *HandlerImpl) UpdateMarket(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "UpdateMarket", "/markets/{marketID}")
	defer span.End()

	id, err := api.URLParamUUID(r, "marketID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req types.UpdateMarketRequest
	if err = api.DecodeAndValidate(w, r, &req); err != nil {
		api.DecodeErrorResponse(w, r, err)
		return
	}
	m, err := h.marketService.UpdateMarket(r.Context(), id, req)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to update market")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, m)
}

// ListProducts godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        q         query string false "Name or summary search"
// @Param        market_id query string false "Market id"
// @Param        status    query string false "ACTIVE, INACTIVE or OUT_OF_STOCK"
// @Param        price_min query int    false "Minimum price"
// @Param        price_max query int    false "Maximum price"
// @Param        sort      query string false "recent, price_asc, price_desc or name"
// @Param        page      query int    false "Page" default(1)
// @Param        size      query int    false "Page size" default(20)
// @Success      200 {object} types.Page[types.Product]
// @Failure      400 {object} map[string]interface{}
// @Router       /products [get]
func (h *HandlerImpl) ListProducts(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "ListProducts", "/products")
	defer span.End()

	page, size, err := parsePaging(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	filter := types.ProductFilter{
		Query:  q.Get("q"),
		Status: types.ProductStatus(strings.ToUpper(q.Get("status"))),
		Sort:   q.Get("sort"),
		Page:   page,
		Size:   size,
	}
	if raw := q.Get("market_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "query parameter \"market_id\" must be a valid UUID")
			return
		}
		filter.MarketID = &id
	}
	if filter.PriceMin, err = queryIntPtr(r, "price_min"); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if filter.PriceMax, err = queryIntPtr(r, "price_max"); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.marketService.ListProducts(r.Context(), filter)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to list products")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// GetProduct godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        productID path string true "Product id"
// @Success      200 {object} types.Product
// @Failure      404 {object} map[string]interface{}
// @Router       /products/{productID} [get]
func (h *HandlerImpl) GetProduct(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "GetProduct", "/products/{productID}")
	defer span.End()

	id, err := api.URLParamUUID(r, "productID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.marketService.GetProduct(r.Context(), id)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to get product")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// CreateProduct godoc
// @Summary      Create a product
// @Description  The market must exist. Status defaults to ACTIVE.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body types.CreateProductRequest true "Product"
// @Success      201 {object} types.Product
// @Failure      400 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Router       /products [post]
func (h *HandlerImpl) CreateProduct(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "CreateProduct", "/products")
	defer span.End()

	var req types.CreateProductRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.DecodeErrorResponse(w, r, err)
		return
	}
	p, err := h.marketService.CreateProduct(r.Context(), req)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to create product")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, p)
}

// UpdateProduct godoc
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        productID path string true "Product id"
// @Param        request body types.UpdateProductRequest true "Fields to change"
// @Success      200 {object} types.Product
// @Failure      404 {object} map[string]interface{}
// @Router       /products/{productID} [put]
func (h *HandlerImpl) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "UpdateProduct", "/products/{productID}")
	defer span.End()

	id, err := api.URLParamUUID(r, "productID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req types.UpdateProductRequest
	if err = api.DecodeAndValidate(w, r, &req); err != nil {
		api.DecodeErrorResponse(w, r, err)
		return
	}
	p, err := h.marketService.UpdateProduct(r.Context(), id, req)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to update product")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// DeleteProduct godoc
// @Summary      Delete a product
// @Tags         products
// @Param        productID path string true "Product id"
// @Success      204
// @Failure      404 {object} map[string]interface{}
// @Router       /products/{productID} [delete]
func (h *HandlerImpl) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "DeleteProduct", "/products/{productID}")
	defer span.End()

	id, err := api.URLParamUUID(r, "productID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err = h.marketService.DeleteProduct(r.Context(), id); err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateReview godoc
// @Summary      Review a product
// @Description  Rating is 1 to 5.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        productID path string true "Product id"
// @Param        request body types.CreateReviewRequest true "Review"
// @Success      201 {object} types.ProductReview
// @Failure      400 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Router       /products/{productID}/reviews [post]
func (h *HandlerImpl) CreateReview(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "CreateReview", "/products/{productID}/reviews")
	defer span.End()

	id, err := api.URLParamUUID(r, "productID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req types.CreateReviewRequest
	if err = api.DecodeAndValidate(w, r, &req); err != nil {
		api.DecodeErrorResponse(w, r, err)
		return
	}
	review, err := h.marketService.CreateReview(r.Context(), id, req)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to create review")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, review)
}

// ListReviews godoc
// @Summary      List product reviews
// @Tags         products
// @Produce      json
// @Param        productID path string true "Product id"
// @Success      200 {object} types.ProductReviews
// @Failure      404 {object} map[string]interface{}
// @Router       /products/{productID}/reviews [get]
func (h *HandlerImpl) ListReviews(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "ListReviews", "/products/{productID}/reviews")
	defer span.End()

	id, err := api.URLParamUUID(r, "productID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	reviews, err := h.marketService.ListReviews(r.Context(), id)
	if err != nil {
		api.ServiceErrorResponse(w, r, h.logger, err, "Failed to list reviews")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, reviews)
}
