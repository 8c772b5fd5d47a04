package generativeAI

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

// CleanJSONResponse strips markdown fences and any prose around the outermost JSON object.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}
	lastBrace := strings.LastIndex(response, "}")
	if lastBrace == -1 || lastBrace <= firstBrace {
		return response
	}
	return strings.TrimSpace(response[firstBrace : lastBrace+1])
}

// DecodeJSON cleans a model response and unmarshals it into dst. Any failure is
// reported as ErrLLMMalformedOutput.
func DecodeJSON(text string, dst any) error {
	cleaned := CleanJSONResponse(text)
	if cleaned == "" {
		return fmt.Errorf("%w: empty response", types.ErrLLMMalformedOutput)
	}
	if err := json.Unmarshal([]byte(cleaned), dst); err != nil {
		return fmt.Errorf("%w: %w", types.ErrLLMMalformedOutput, err)
	}
	return nil
}
