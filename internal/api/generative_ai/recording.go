package generativeAI

import (
	"context"
	"sync"
	"time"

	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

// maxPendingRecords bounds concurrent background inserts. Records beyond it are dropped.
const maxPendingRecords = 16

// Recorder persists LLM interactions. Implementations must not fail the caller.
type Recorder interface {
	Record(ctx context.Context, interaction types.LlmInteraction)
}

// RecordingClient reports every call, successful or not, to a Recorder in the
// background so a slow insert never delays the chat turn.
type RecordingClient struct {
	next     Client
	recorder Recorder
	provider string
	model    string

	pending chan struct{}
	wg      sync.WaitGroup
}

var _ Client = (*RecordingClient)(nil)

func NewRecordingClient(next Client, recorder Recorder, provider, model string) *RecordingClient {
	return &RecordingClient{
		next:     next,
		recorder: recorder,
		provider: provider,
		model:    model,
		pending:  make(chan struct{}, maxPendingRecords),
	}
}

func (c *RecordingClient) Generate(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, err := c.next.Generate(ctx, req)

	interaction := types.LlmInteraction{
		CallKind:     req.Kind,
		Provider:     c.provider,
		ModelUsed:    c.model,
		Prompt:       req.System + "\n\n" + req.User,
		ResponseText: resp.Text,
		Succeeded:    err == nil,
		LatencyMs:    int(time.Since(start).Milliseconds()),
	}
	if resp.Model != "" {
		interaction.ModelUsed = resp.Model
	}
	c.record(context.WithoutCancel(ctx), interaction)

	return resp, err
}

func (c *RecordingClient) record(ctx context.Context, interaction types.LlmInteraction) {
	select {
	case c.pending <- struct{}{}:
	default:
		return
	}
	c.wg.Add(1)
	go func() {
		defer func() {
			<-c.pending
			c.wg.Done()
		}()
		c.recorder.Record(ctx, interaction)
	}()
}

// Wait blocks until every background record has finished.
func (c *RecordingClient) Wait() {
	c.wg.Wait()
}
