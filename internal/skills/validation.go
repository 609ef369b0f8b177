package skills

import (
	"encoding/json"
	"math"
	"strings"
)

// ValidateResponse turns untrusted model output into skill records. It either
// accepts every element or rejects the whole response with an *OutputError.
func ValidateResponse(raw string) ([]SkillRecord, error) {
	doc, err := NormalizeResponse(raw)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(doc)) {
		return nil, &OutputError{Index: -1, Reason: "response is not valid JSON"}
	}
	if err := checkShape(doc); err != nil {
		return nil, err
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &items); err != nil {
		return nil, &OutputError{Index: -1, Reason: "response must be a JSON array of skill objects"}
	}

	records := make([]SkillRecord, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, &OutputError{Index: i, Reason: "must be an object"}
		}
		var name string
		if err := json.Unmarshal(item["NAME"], &name); err != nil {
			return nil, &OutputError{Index: i, Field: "NAME", Reason: "must be a non-empty string"}
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &OutputError{Index: i, Field: "NAME", Reason: "must be a non-empty string"}
		}
		var years float64
		if err := json.Unmarshal(item["EXPERIENCE"], &years); err != nil {
			return nil, &OutputError{Index: i, Field: "EXPERIENCE", Reason: "must be a finite number >= 0"}
		}
		if math.IsNaN(years) || math.IsInf(years, 0) || years < 0 {
			return nil, &OutputError{Index: i, Field: "EXPERIENCE", Reason: "must be a finite number >= 0"}
		}
		records = append(records, SkillRecord{Name: name, ExperienceYears: years})
	}
	return records, nil
}
