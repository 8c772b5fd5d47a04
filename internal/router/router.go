package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appMiddleware "github.com/FACorreiaa/sosohaeng-api/app/middleware"
	"github.com/FACorreiaa/sosohaeng-api/internal/api/favorite"
	"github.com/FACorreiaa/sosohaeng-api/internal/api/festival"
	"github.com/FACorreiaa/sosohaeng-api/internal/api/market"
	"github.com/FACorreiaa/sosohaeng-api/internal/api/poi"
	"github.com/FACorreiaa/sosohaeng-api/internal/api/recommend"
	_ "github.com/FACorreiaa/sosohaeng-api/internal/docs"
)

// Config contains dependencies needed for the router setup
type Config struct {
	RecommendHandler *recommend.HandlerImpl
	POIHandler       *poi.HandlerImpl
	FestivalHandler  *festival.HandlerImpl
	MarketHandler    *market.HandlerImpl
	FavoriteHandler  *favorite.HandlerImpl

	CORSOrigins []string
	ChatLimit   int
	ChatWindow  time.Duration
	Logger      *slog.Logger
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/recommend", func(r chi.Router) {
			r.With(appMiddleware.RateLimitByIP(cfg.ChatLimit, cfg.ChatWindow, cfg.Logger)).
				Post("/chat", cfg.RecommendHandler.Chat)
			r.Post("/random", cfg.RecommendHandler.RandomRecommend)
		})

		r.Route("/spots/{contentID}", func(r chi.Router) {
			r.Get("/", cfg.POIHandler.GetSpot)
			r.Get("/nearby", cfg.POIHandler.GetNearbySpots)
		})

		r.Route("/festivals", func(r chi.Router) {
			r.Get("/", cfg.FestivalHandler.ListFestivals)
			r.Post("/", cfg.FestivalHandler.CreateFestival)
			r.Get("/{festivalID}", cfg.FestivalHandler.GetFestival)
			r.Put("/{festivalID}", cfg.FestivalHandler.UpdateFestival)
			r.Delete("/{festivalID}", cfg.FestivalHandler.DeleteFestival)
		})

		r.Route("/markets", func(r chi.Router) {
			r.Get("/", cfg.MarketHandler.ListMarkets)
			r.Post("/", cfg.MarketHandler.CreateMarket)
			r.Get("/{marketID}", cfg.MarketHandler.GetMarket)
			r.Put("/{marketID}", cfg.MarketHandler.UpdateMarket)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", cfg.MarketHandler.ListProducts)
			r.Post("/", cfg.MarketHandler.CreateProduct)
			r.Get("/{productID}", cfg.MarketHandler.GetProduct)
			r.Put("/{productID}", cfg.MarketHandler.UpdateProduct)
			r.Delete("/{productID}", cfg.MarketHandler.DeleteProduct)
			r.Get("/{productID}/reviews", cfg.MarketHandler.ListReviews)
			r.Post("/{productID}/reviews", cfg.MarketHandler.CreateReview)
		})

		r.Route("/users/{userID}/favorites", func(r chi.Router) {
			r.Get("/", cfg.FavoriteHandler.ListFavorites)
			r.Post("/", cfg.FavoriteHandler.ToggleFavorite)
		})
	})

	return r
}
