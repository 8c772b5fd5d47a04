package recommend

import (
	"strings"
	"unicode/utf8"

	"github.com/FACorreiaa/sosohaeng-api/internal/api"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

const summaryRunes = 120

func toRecommendationItem(c types.RecommendationCandidate) types.RecommendationItem {
	item := types.RecommendationItem{
		ContentID:  c.POI.ContentID,
		Title:      c.POI.Title,
		Address:    c.POI.Address(),
		Category:   firstNonEmpty(c.POI.Cat3, c.POI.Cat2, c.POI.Cat1),
		FirstImage: c.POI.FirstImage,
		MapX:       c.POI.MapX,
		MapY:       c.POI.MapY,
		Reason:     c.Reason,
	}
	if c.DistanceKm != nil {
		d := api.RoundKm(*c.DistanceKm)
		item.DistanceKm = &d
	}
	return item
}

// toChatResponse is the only place distances are rounded for chat output.
func toChatResponse(res ChatTurnResult) types.ChatResponse {
	switch r := res.(type) {
	case QuestionResult:
		session := r.Session
		return types.ChatResponse{
			Mode:              types.ModeQuestion,
			AIResponseText:    r.Text,
			Session:           &session,
			DBRecommendations: []types.RecommendationItem{},
		}
	case FinalResult:
		items := make([]types.RecommendationItem, len(r.Recommendations))
		for i, c := range r.Recommendations {
			items[i] = toRecommendationItem(c)
		}
		return types.ChatResponse{
			Mode:              types.ModeFinal,
			AIResponseText:    r.Text,
			DBRecommendations: items,
		}
	}
	return types.ChatResponse{Mode: res.Mode(), DBRecommendations: []types.RecommendationItem{}}
}

func appendUnique(dst, src []types.PointOfInterest, limit int) []types.PointOfInterest {
	seen := make(map[string]struct{}, len(dst))
	for _, p := range dst {
		seen[p.ContentID] = struct{}{}
	}
	for _, p := range src {
		if len(dst) >= limit {
			break
		}
		if _, dup := seen[p.ContentID]; dup {
			continue
		}
		seen[p.ContentID] = struct{}{}
		dst = append(dst, p)
	}
	return dst
}

// matchedThemes lists the requested themes whose keywords appear in the spot.
func matchedThemes(p types.PointOfInterest, themes []string, byTheme map[string][]string) []string {
	haystack := strings.ToLower(strings.Join([]string{p.Title, p.Address(), p.Cat1, p.Cat2, p.Cat3, p.Overview}, " "))
	matched := make([]string, 0, len(themes))
	for _, theme := range themes {
		theme = strings.TrimSpace(theme)
		for _, kw := range byTheme[theme] {
			if strings.Contains(haystack, strings.ToLower(kw)) {
				matched = append(matched, theme)
				break
			}
		}
	}
	return matched
}

func summary(p types.PointOfInterest) string {
	text := strings.TrimSpace(p.Overview)
	if text == "" {
		return defaultReason(p)
	}
	if utf8.RuneCountInString(text) <= summaryRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:summaryRunes]) + "…"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
