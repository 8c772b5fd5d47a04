package recommend

import (
	"strings"
	"unicode"

	"github.com/FACorreiaa/sosohaeng-api/config"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

// Slot is one preference the dialogue tries to learn from the user.
type Slot struct {
	Name        string
	Description string
	Required    bool
}

// SlotSchema is the ordered, fixed set of slots a PreferenceProfile may hold.
type SlotSchema struct {
	slots []Slot
	index map[string]int
}

func NewSlotSchema(cfg []config.SlotConfig) SlotSchema {
	s := SlotSchema{index: make(map[string]int, len(cfg))}
	for _, c := range cfg {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		if _, dup := s.index[name]; dup {
			continue
		}
		s.index[name] = len(s.slots)
		s.slots = append(s.slots, Slot{Name: name, Description: c.Description, Required: c.Required})
	}
	if len(s.slots) == 0 {
		return DefaultSlotSchema()
	}
	return s
}

func DefaultSlotSchema() SlotSchema {
	return NewSlotSchema([]config.SlotConfig{
		{Name: "style", Description: "여행 스타일 (휴양, 액티비티, 전시/관람형, 이색 체험 등)", Required: true},
		{Name: "companions", Description: "동행 (혼자, 친구, 연인, 가족 등)", Required: true},
		{Name: "timing", Description: "여행 시기 또는 기간", Required: true},
		{Name: "transport", Description: "이동 수단 (자가용, 대중교통 등)", Required: true},
		{Name: "age", Description: "연령대"},
		{Name: "budget", Description: "예산 수준"},
	})
}

func (s SlotSchema) Slots() []Slot {
	return s.slots
}

func (s SlotSchema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Normalize returns a profile holding exactly the schema's slots. Unknown slot
// names are dropped and placeholder values become nil.
func (s SlotSchema) Normalize(p types.PreferenceProfile) types.PreferenceProfile {
	out := make(types.PreferenceProfile, len(s.slots))
	for _, slot := range s.slots {
		out[slot.Name] = cleanValue(p[slot.Name])
	}
	return out
}

// Missing lists the required slots that are still unknown, in schema order.
func (s SlotSchema) Missing(p types.PreferenceProfile) []string {
	var missing []string
	for _, slot := range s.slots {
		if slot.Required && cleanValue(p[slot.Name]) == nil {
			missing = append(missing, slot.Name)
		}
	}
	return missing
}

func (s SlotSchema) Complete(p types.PreferenceProfile) bool {
	return len(s.Missing(p)) == 0
}

// Merge overwrites old with every present value of extracted and keeps the
// rest. A filled slot never becomes unknown. Neither argument is modified.
func Merge(old, extracted types.PreferenceProfile) types.PreferenceProfile {
	out := make(types.PreferenceProfile, len(old)+len(extracted))
	for k, v := range old {
		out[k] = cleanValue(v)
	}
	for k, v := range extracted {
		if cv := cleanValue(v); cv != nil {
			out[k] = cv
		}
	}
	return out
}

// KeywordsFromProfile derives search terms from the filled slot values in
// schema order.
func (s SlotSchema) KeywordsFromProfile(p types.PreferenceProfile) []string {
	var keywords []string
	for _, slot := range s.slots {
		v := cleanValue(p[slot.Name])
		if v == nil {
			continue
		}
		keywords = append(keywords, strings.FieldsFunc(*v, func(r rune) bool {
			return r == ',' || r == '/' || unicode.IsSpace(r)
		})...)
	}
	return keywords
}

func cleanValue(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	switch strings.ToLower(t) {
	case "", "unknown", "null", "none":
		return nil
	}
	return &t
}
