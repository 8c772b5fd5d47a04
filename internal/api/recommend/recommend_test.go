package recommend

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	generativeAI "github.com/FACorreiaa/sosohaeng-api/internal/api/generative_ai"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

// MockLLMClient is a mock implementation of generativeAI.Client
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Generate(ctx context.Context, req generativeAI.Request) (generativeAI.Response, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(generativeAI.Response), args.Error(1)
}

// MockCatalog is a mock implementation of Catalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) SearchByKeywords(ctx context.Context, keywords, excludedAreas []string, limit int) ([]types.PointOfInterest, error) {
	args := m.Called(ctx, keywords, excludedAreas, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PointOfInterest), args.Error(1)
}

func (m *MockCatalog) SampleByKeywords(ctx context.Context, keywords, excludedAreas []string, limit int) ([]types.PointOfInterest, error) {
	args := m.Called(ctx, keywords, excludedAreas, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PointOfInterest), args.Error(1)
}

var testExcludedAreas = []string{"서울", "부산", "Seoul", "Busan"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func kind(k string) interface{} {
	return mock.MatchedBy(func(req generativeAI.Request) bool { return req.Kind == k })
}

func llmText(text string) generativeAI.Response {
	return generativeAI.Response{Text: text, Model: "test-model", Provider: "test"}
}

func spot(id, title, addr string, lat, lon *float64) types.PointOfInterest {
	p := types.PointOfInterest{ContentID: id, Title: title, Addr1: addr, MapY: lat}
	p.MapX = lon
	return p
}

func newTestRetriever(catalog Catalog) *Retriever {
	return NewRetriever(catalog, RetrieverConfig{
		Limit:         5,
		MaxKeywords:   5,
		ExcludedAreas: testExcludedAreas,
		QueryTimeout:  time.Second,
		CacheTTL:      time.Minute,
	}, discardLogger())
}

type recommendFixture struct {
	service   *ServiceImpl
	llm       *MockLLMClient
	catalog   *MockCatalog
	retriever *Retriever
}

func setupRecommendServiceTest() recommendFixture {
	llm := new(MockLLMClient)
	catalog := new(MockCatalog)
	logger := discardLogger()
	schema := DefaultSlotSchema()
	prompts := NewPromptBuilder(schema, 5, 5)
	retriever := newTestRetriever(catalog)
	dialogue := NewDialogueEngine(llm, prompts, schema, 5, retriever.UsableKeywords, logger)
	composer := NewComposer(llm, prompts, logger)
	return recommendFixture{
		service:   NewServiceImpl(dialogue, retriever, composer, logger),
		llm:       llm,
		catalog:   catalog,
		retriever: retriever,
	}
}
