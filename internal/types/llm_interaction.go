package types

// LlmInteraction is one recorded call to the text generation provider.
type LlmInteraction struct {
	CallKind     string `json:"call_kind"`
	Provider     string `json:"provider"`
	ModelUsed    string `json:"model_used"`
	Prompt       string `json:"prompt"`
	ResponseText string `json:"response_text"`
	Succeeded    bool   `json:"succeeded"`
	LatencyMs    int    `json:"latency_ms"`
}
