package types

type DialogueMode string

const (
	ModeQuestion DialogueMode = "QUESTION"
	ModeSearch   DialogueMode = "SEARCH"
	ModeFinal    DialogueMode = "FINAL"
)

// PreferenceProfile maps a slot name to its value. A nil value means the slot
// is still unknown and is serialized as JSON null.
type PreferenceProfile map[string]*string

// DialogueSession is the state the caller echoes back on every chat turn.
type DialogueSession struct {
	Profile   PreferenceProfile `json:"current_profile"`
	TurnCount int               `json:"turn_count"`
	RetryUsed bool              `json:"retry_used"`
}

type UserLocation struct {
	Lat      float64  `json:"lat" validate:"latitude"`
	Lon      float64  `json:"lon" validate:"longitude"`
	RadiusKm *float64 `json:"radius_km,omitempty" validate:"omitempty,gt=0,lte=500"`
}

type ChatRequest struct {
	Message        string            `json:"message" validate:"required,max=2000"`
	CurrentProfile PreferenceProfile `json:"current_profile,omitempty"`
	TurnCount      int               `json:"turn_count" validate:"min=0,max=100"`
	RetryUsed      bool              `json:"retry_used"`
	Location       *UserLocation     `json:"location,omitempty" validate:"omitempty"`
}

type ChatResponse struct {
	Mode              DialogueMode         `json:"mode"`
	AIResponseText    string               `json:"ai_response_text"`
	Session           *DialogueSession     `json:"session,omitempty"`
	DBRecommendations []RecommendationItem `json:"db_recommendations"`
}

type RandomRecommendRequest struct {
	Themes []string `json:"themes" validate:"required,min=1,max=5,dive,required,max=50"`
}

type RandomRecommendation struct {
	RecommendationItem
	MatchedThemes []string `json:"matched_themes"`
}

type RandomRecommendResponse struct {
	Message         string                 `json:"message"`
	Recommendations []RandomRecommendation `json:"recommendations"`
}
