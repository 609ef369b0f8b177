package skills

import (
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const skillListSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["NAME", "EXPERIENCE"],
    "properties": {
      "NAME": {"type": "string", "pattern": "\\S"},
      "EXPERIENCE": {"type": "number", "minimum": 0}
    }
  }
}`

var loadSkillListSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(skillListSchema))
})

// checkShape validates doc against the skill list schema and reports the
// first violation in array order.
func checkShape(doc string) error {
	schema, err := loadSkillListSchema()
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return &OutputError{Index: -1, Reason: "response is not valid JSON"}
	}
	if result.Valid() {
		return nil
	}

	var first *OutputError
	for _, re := range result.Errors() {
		candidate := outputErrorFromSchema(re)
		if first == nil || candidate.Index < first.Index {
			first = candidate
		}
	}
	return first
}

// outputErrorFromSchema converts a schema violation such as "0.EXPERIENCE"
// into an OutputError. The description never echoes the offending value.
func outputErrorFromSchema(re gojsonschema.ResultError) *OutputError {
	parts := strings.SplitN(re.Field(), ".", 2)
	idx, err := strconv.Atoi(parts[0])
	if err != nil {
		return &OutputError{Index: -1, Reason: "response must be a JSON array of skill objects"}
	}
	out := &OutputError{Index: idx}
	if len(parts) == 2 {
		out.Field = parts[1]
	}
	switch re.Type() {
	case "required":
		if prop, ok := re.Details()["property"].(string); ok {
			out.Field = prop
		}
		out.Reason = "is required"
	case "invalid_type":
		if out.Field == "" {
			out.Reason = "must be an object"
		} else {
			out.Reason = "has the wrong type"
		}
	case "pattern":
		out.Reason = "must be a non-empty string"
	case "number_gte":
		out.Reason = "must be a finite number >= 0"
	default:
		out.Reason = "is invalid"
	}
	return out
}
