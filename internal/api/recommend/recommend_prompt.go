package recommend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	generativeAI "github.com/FACorreiaa/sosohaeng-api/internal/api/generative_ai"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

const (
	KindExtract   = "extract"
	KindRationale = "rationale"
)

const extractionSystem = `You are a travel planner for domestic trips in South Korea.
You collect the traveller's preferences one question at a time and reply only with a JSON object.
Write every user-facing sentence in Korean.`

var extractionTemplate = template.Must(template.New("extract").Parse(`Preference slots:
{{- range .Slots}}
- {{.Name}}{{if .Required}} (required){{end}}: {{.Description}}
{{- end}}

Known profile (null means unknown):
{{.ProfileJSON}}

This is turn {{.Turn}} of at most {{.MaxTurns}}.{{if .LastTurn}} This is the last turn, so status must be "search".{{end}}

Traveller message:
"""
{{.Message}}
"""

Steps:
1. Extract values for any slot the message answers. Keep known values unless the traveller changes them.
2. If a required slot is still unknown and turns remain, set status to "ask" and write one short question about exactly one unknown slot.
3. Otherwise set status to "search" and list up to {{.MaxKeywords}} short Korean search keywords for places, such as place types, activities or regions outside the major metropolitan cities.

Respond with this JSON object and nothing else:
{"status": "ask" | "search", "profile": { {{- range $i, $s := .Slots}}{{if $i}}, {{end}}"{{$s.Name}}": string or null{{end -}} }, "next_question": string, "keywords": [string]}`))

const rationaleSystem = `You are a travel guide writing short recommendations in Korean.
Only describe the places you are given. Reply only with a JSON object.`

var rationaleTemplate = template.Must(template.New("rationale").Parse(`Traveller profile:
{{.ProfileJSON}}

Candidate places:
{{- range .Places}}
- content_id={{.ContentID}} | {{.Title}} | {{.Address}}{{if .Category}} | {{.Category}}{{end}}{{if .Distance}} | {{.Distance}} km away{{end}}
{{- end}}

Write a one or two sentence greeting message that introduces the picks, and one short reason per place explaining why it fits the profile.
Use the content_id values exactly as given and do not add places.

Respond with this JSON object and nothing else:
{"message": string, "items": [{"content_id": string, "reason": string}]}`))

type extractionData struct {
	Slots       []Slot
	ProfileJSON string
	Turn        int
	MaxTurns    int
	LastTurn    bool
	MaxKeywords int
	Message     string
}

type rationalePlace struct {
	ContentID string
	Title     string
	Address   string
	Category  string
	Distance  string
}

type rationaleData struct {
	ProfileJSON string
	Places      []rationalePlace
}

// PromptBuilder renders the dialogue and rationale prompts for a slot schema.
type PromptBuilder struct {
	schema      SlotSchema
	maxTurns    int
	maxKeywords int
}

func NewPromptBuilder(schema SlotSchema, maxTurns, maxKeywords int) *PromptBuilder {
	return &PromptBuilder{schema: schema, maxTurns: maxTurns, maxKeywords: maxKeywords}
}

// ExtractionPrompt asks the model to merge the message into the profile and
// either pick the next question or declare readiness to search.
func (b *PromptBuilder) ExtractionPrompt(profile types.PreferenceProfile, turn int, message string) (generativeAI.Request, error) {
	profileJSON, err := b.profileJSON(profile)
	if err != nil {
		return generativeAI.Request{}, err
	}

	var buf bytes.Buffer
	err = extractionTemplate.Execute(&buf, extractionData{
		Slots:       b.schema.Slots(),
		ProfileJSON: profileJSON,
		Turn:        turn,
		MaxTurns:    b.maxTurns,
		LastTurn:    turn >= b.maxTurns,
		MaxKeywords: b.maxKeywords,
		Message:     strings.TrimSpace(message),
	})
	if err != nil {
		return generativeAI.Request{}, fmt.Errorf("failed to render extraction prompt: %w", err)
	}

	return generativeAI.Request{
		Kind:   KindExtract,
		System: extractionSystem,
		User:   buf.String(),
		JSON:   true,
	}, nil
}

// RationalePrompt asks for a greeting and one reason per retrieved place.
func (b *PromptBuilder) RationalePrompt(candidates []types.RecommendationCandidate, profile types.PreferenceProfile) (generativeAI.Request, error) {
	profileJSON, err := b.profileJSON(profile)
	if err != nil {
		return generativeAI.Request{}, err
	}

	places := make([]rationalePlace, 0, len(candidates))
	for _, c := range candidates {
		p := rationalePlace{
			ContentID: c.POI.ContentID,
			Title:     c.POI.Title,
			Address:   c.POI.Address(),
			Category:  strings.Join(nonEmpty(c.POI.Cat1, c.POI.Cat2, c.POI.Cat3), "/"),
		}
		if c.DistanceKm != nil {
			p.Distance = fmt.Sprintf("%.1f", *c.DistanceKm)
		}
		places = append(places, p)
	}

	var buf bytes.Buffer
	if err = rationaleTemplate.Execute(&buf, rationaleData{ProfileJSON: profileJSON, Places: places}); err != nil {
		return generativeAI.Request{}, fmt.Errorf("failed to render rationale prompt: %w", err)
	}

	return generativeAI.Request{
		Kind:   KindRationale,
		System: rationaleSystem,
		User:   buf.String(),
		JSON:   true,
	}, nil
}

func (b *PromptBuilder) profileJSON(profile types.PreferenceProfile) (string, error) {
	data, err := json.Marshal(b.schema.Normalize(profile))
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}
	return string(data), nil
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
