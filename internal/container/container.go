package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/sosohaeng-api/app/db"
	"github.com/FACorreiaa/sosohaeng-api/config"
	"github.com/FACorreiaa/sosohaeng-api/internal/api/favorite"
	"github.com/FACorreiaa/sosohaeng-api/internal/api/festival"
	generativeAI "github.com/FACorreiaa/sosohaeng-api/internal/api/generative_ai"
	llmInteraction "github.com/FACorreiaa/sosohaeng-api/internal/api/llm_interaction"
	"github.com/FACorreiaa/sosohaeng-api/internal/api/market"
	"github.com/FACorreiaa/sosohaeng-api/internal/api/poi"
	"github.com/FACorreiaa/sosohaeng-api/internal/api/recommend"
	"github.com/FACorreiaa/sosohaeng-api/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	RecommendHandler *recommend.HandlerImpl
	POIHandler       *poi.HandlerImpl
	FestivalHandler  *festival.HandlerImpl
	MarketHandler    *market.HandlerImpl
	FavoriteHandler  *favorite.HandlerImpl

	llmRecorder *generativeAI.RecordingClient
}

// NewContainer builds repositories, services and handlers on top of an
// initialized pool.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Container, error) {
	poiRepo := poi.NewRepository(pool, logger)
	festivalRepo := festival.NewRepository(pool, logger)
	marketRepo := market.NewRepository(pool, logger)
	favoriteRepo := favorite.NewRepository(pool, logger)
	llmInteractionRepo := llmInteraction.NewRepository(pool, logger)

	llmClient, err := generativeAI.NewClientFromConfig(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("Failed to initialize LLM client", slog.Any("error", err))
		return nil, err
	}
	provider, model := llmIdentity(cfg.LLM)
	recorded := generativeAI.NewRecordingClient(llmClient, llmInteraction.NewServiceImpl(llmInteractionRepo, logger), provider, model)

	recommendService := recommend.NewServiceFromConfig(recorded, poiRepo, cfg, logger)
	poiService := poi.NewServiceImpl(poiRepo, cfg.Cache.TTL, cfg.Catalog.QueryTimeout, logger)
	festivalService := festival.NewServiceImpl(festivalRepo, logger)
	marketService := market.NewServiceImpl(marketRepo, logger)
	favoriteService := favorite.NewServiceImpl(favoriteRepo, festivalRepo, marketRepo, poiRepo, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		RecommendHandler: recommend.NewHandlerImpl(recommendService, logger),
		POIHandler:       poi.NewHandlerImpl(poiService, logger),
		FestivalHandler:  festival.NewHandlerImpl(festivalService, logger),
		MarketHandler:    market.NewHandlerImpl(marketService, logger),
		FavoriteHandler:  favorite.NewHandlerImpl(favoriteService, logger),
		llmRecorder:      recorded,
	}, nil
}

// RouterConfig exposes the handlers and HTTP settings to the router.
func (c *Container) RouterConfig() *router.Config {
	return &router.Config{
		RecommendHandler: c.RecommendHandler,
		POIHandler:       c.POIHandler,
		FestivalHandler:  c.FestivalHandler,
		MarketHandler:    c.MarketHandler,
		FavoriteHandler:  c.FavoriteHandler,
		CORSOrigins:      c.Config.Server.CORSOrigins,
		ChatLimit:        c.Config.RateLimit.Requests,
		ChatWindow:       c.Config.RateLimit.Window,
		Logger:           c.Logger,
	}
}

func llmIdentity(cfg config.LLMConfig) (provider, model string) {
	if cfg.Provider == generativeAI.ProviderGemini {
		return cfg.Provider, cfg.GeminiModel
	}
	return generativeAI.ProviderOpenAI, cfg.OpenAIModel
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.llmRecorder != nil {
		c.llmRecorder.Wait()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
