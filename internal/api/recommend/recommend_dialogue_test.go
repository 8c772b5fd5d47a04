package recommend

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	generativeAI "github.com/FACorreiaa/sosohaeng-api/internal/api/generative_ai"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

func setupDialogueTest() (*DialogueEngine, *MockLLMClient) {
	llm := new(MockLLMClient)
	schema := DefaultSlotSchema()
	retriever := newTestRetriever(new(MockCatalog))
	engine := NewDialogueEngine(llm, NewPromptBuilder(schema, 5, 5), schema, 5, retriever.UsableKeywords, discardLogger())
	return engine, llm
}

func TestDialogueEngineAdvance(t *testing.T) {
	ctx := context.Background()

	t.Run("asks the next question with the merged profile", func(t *testing.T) {
		engine, llm := setupDialogueTest()
		llm.On("Generate", mock.Anything, kind(KindExtract)).Return(llmText(
			`{"status":"ask","profile":{"style":"healing","companions":"alone","timing":null,"transport":null},"next_question":"언제 떠나세요?","keywords":[]}`,
		), nil).Once()

		step, err := engine.Advance(ctx, types.DialogueSession{
			Profile:   types.PreferenceProfile{"style": strPtr("healing")},
			TurnCount: 1,
		}, "혼자 가요")
		require.NoError(t, err)

		assert.Equal(t, types.ModeQuestion, step.Mode)
		assert.Equal(t, "언제 떠나세요?", step.Question)
		assert.Equal(t, 2, step.TurnCount)
		assert.Equal(t, "healing", *step.Profile["style"])
		assert.Equal(t, "alone", *step.Profile["companions"])
		assert.Nil(t, step.Profile["timing"])
		assert.Nil(t, step.Profile["transport"])
		llm.AssertExpectations(t)
	})

	t.Run("a model that drops a known slot cannot clear it", func(t *testing.T) {
		engine, llm := setupDialogueTest()
		llm.On("Generate", mock.Anything, kind(KindExtract)).Return(llmText(
			`{"status":"ask","profile":{"style":null},"next_question":"누구와 가세요?"}`,
		), nil).Once()

		step, err := engine.Advance(ctx, types.DialogueSession{Profile: types.PreferenceProfile{"style": strPtr("healing")}}, "음")
		require.NoError(t, err)
		assert.Equal(t, "healing", *step.Profile["style"])
	})

	t.Run("search status yields usable keywords", func(t *testing.T) {
		engine, llm := setupDialogueTest()
		llm.On("Generate", mock.Anything, kind(KindExtract)).Return(llmText(
			"```json\n{\"status\":\"search\",\"profile\":{},\"next_question\":\"\",\"keywords\":[\"온천\",\"서울\",\"a\",\"온천\",\"수목원\"]}\n```",
		), nil).Once()

		step, err := engine.Advance(ctx, types.DialogueSession{TurnCount: 2}, "온천 가고 싶어요")
		require.NoError(t, err)
		assert.Equal(t, types.ModeSearch, step.Mode)
		assert.Equal(t, 3, step.TurnCount)
		assert.Equal(t, []string{"온천", "수목원"}, step.Keywords)
	})

	t.Run("ask with every required slot filled goes to search", func(t *testing.T) {
		engine, llm := setupDialogueTest()
		llm.On("Generate", mock.Anything, kind(KindExtract)).Return(llmText(
			`{"status":"ask","profile":{"style":"휴양","companions":"가족","timing":"주말","transport":"자가용"},"next_question":"예산은요?","keywords":[]}`,
		), nil).Once()

		step, err := engine.Advance(ctx, types.DialogueSession{}, "가족이랑 주말에 차로 휴양")
		require.NoError(t, err)
		assert.Equal(t, types.ModeSearch, step.Mode)
		assert.Equal(t, []string{"휴양", "가족", "주말", "자가용"}, step.Keywords)
	})

	t.Run("the turn budget forces search", func(t *testing.T) {
		engine, llm := setupDialogueTest()
		llm.On("Generate", mock.Anything, kind(KindExtract)).Return(llmText(
			`{"status":"ask","profile":{"style":"캠핑"},"next_question":"누구와 가세요?","keywords":["캠핑"]}`,
		), nil).Once()

		step, err := engine.Advance(ctx, types.DialogueSession{TurnCount: 4}, "캠핑")
		require.NoError(t, err)
		assert.Equal(t, types.ModeSearch, step.Mode)
		assert.Equal(t, 5, step.TurnCount)
		assert.Equal(t, []string{"캠핑"}, step.Keywords)
	})

	t.Run("malformed output keeps the profile and asks for clarification", func(t *testing.T) {
		for _, text := range []string{
			"not json at all",
			`{"status":"maybe","profile":{}}`,
			`{"status":"ask","profile":{"style":"x"},"next_question":"  "}`,
			`{"status":"ask","profile":{"style":42},"next_question":"q"}`,
		} {
			engine, llm := setupDialogueTest()
			llm.On("Generate", mock.Anything, kind(KindExtract)).Return(llmText(text), nil).Once()

			before := types.PreferenceProfile{"style": strPtr("healing")}
			step, err := engine.Advance(ctx, types.DialogueSession{Profile: before, TurnCount: 1}, "???")
			require.NoError(t, err, text)
			assert.Equal(t, types.ModeQuestion, step.Mode, text)
			assert.Equal(t, 2, step.TurnCount, text)
			assert.Equal(t, "healing", *step.Profile["style"], text)
			assert.Nil(t, step.Profile["companions"], text)
			assert.Contains(t, step.Question, "동행", text)
		}
	})

	t.Run("malformed output on the last turn searches with profile keywords", func(t *testing.T) {
		engine, llm := setupDialogueTest()
		llm.On("Generate", mock.Anything, kind(KindExtract)).Return(generativeAI.Response{},
			fmt.Errorf("%w: no choices", types.ErrLLMMalformedOutput)).Once()

		step, err := engine.Advance(ctx, types.DialogueSession{
			Profile:   types.PreferenceProfile{"style": strPtr("온천"), "companions": strPtr("혼자")},
			TurnCount: 4,
		}, "...")
		require.NoError(t, err)
		assert.Equal(t, types.ModeSearch, step.Mode)
		assert.Equal(t, []string{"온천", "혼자"}, step.Keywords)
	})

	t.Run("unavailable provider is returned", func(t *testing.T) {
		engine, llm := setupDialogueTest()
		llm.On("Generate", mock.Anything, kind(KindExtract)).Return(generativeAI.Response{},
			fmt.Errorf("%w: breaker open", types.ErrLLMUnavailable)).Once()

		_, err := engine.Advance(ctx, types.DialogueSession{}, "hi")
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrLLMUnavailable)
	})

	t.Run("a negative turn count starts from the first turn", func(t *testing.T) {
		engine, llm := setupDialogueTest()
		llm.On("Generate", mock.Anything, kind(KindExtract)).Return(llmText(
			`{"status":"ask","profile":{},"next_question":"어떤 여행을 원하세요?"}`,
		), nil).Once()

		step, err := engine.Advance(ctx, types.DialogueSession{TurnCount: -3}, "hi")
		require.NoError(t, err)
		assert.Equal(t, 1, step.TurnCount)
	})
}

func TestDialogueTurnsAreBounded(t *testing.T) {
	responses := []string{
		`{"status":"ask","profile":{},"next_question":"어떤 여행을 원하세요?"}`,
		`garbage`,
		`{"status":"ask","profile":{"style":"unknown"},"next_question":"다시 알려주세요"}`,
	}

	for i, text := range responses {
		t.Run(fmt.Sprintf("stubborn model %d", i), func(t *testing.T) {
			engine, llm := setupDialogueTest()
			llm.On("Generate", mock.Anything, kind(KindExtract)).Return(llmText(text), nil)

			session := types.DialogueSession{}
			reached := false
			for turn := 0; turn < 10; turn++ {
				step, err := engine.Advance(context.Background(), session, "몰라요")
				require.NoError(t, err)
				require.LessOrEqual(t, step.TurnCount, 5)
				if step.Mode == types.ModeSearch {
					reached = true
					break
				}
				session = types.DialogueSession{Profile: step.Profile, TurnCount: step.TurnCount}
			}
			assert.True(t, reached, "dialogue never reached search")
		})
	}
}
