package skills

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "clean", raw: `[{"NAME":"Go","EXPERIENCE":3}]`, want: `[{"NAME":"Go","EXPERIENCE":3}]`},
		{name: "json fence", raw: "```json\n[{\"NAME\":\"Go\",\"EXPERIENCE\":3}]\n```", want: `[{"NAME":"Go","EXPERIENCE":3}]`},
		{name: "bare fence", raw: "```\n[]\n```", want: `[]`},
		{name: "single line fence", raw: "```[{\"NAME\":\"Go\",\"EXPERIENCE\":1}]```", want: `[{"NAME":"Go","EXPERIENCE":1}]`},
		{name: "prose around", raw: "Here are the skills:\n[{\"NAME\":\"SQL\",\"EXPERIENCE\":2}]\nLet me know!", want: `[{"NAME":"SQL","EXPERIENCE":2}]`},
		{name: "prose with brackets before fence", raw: "Skills [see below]:\n```json\n[]\n```", want: `[]`},
		{name: "backticks inside value", raw: "[{\"NAME\":\"Markdown ``` fences\",\"EXPERIENCE\":1}]", want: "[{\"NAME\":\"Markdown ``` fences\",\"EXPERIENCE\":1}]"},
		{name: "fenced backticks inside value", raw: "```json\n[{\"NAME\":\"a ``` b\",\"EXPERIENCE\":1}]\n```", want: "[{\"NAME\":\"a ``` b\",\"EXPERIENCE\":1}]"},
		{name: "inline backticks in prose", raw: "Use ```json``` blocks? No:\n[{\"NAME\":\"Go\",\"EXPERIENCE\":2}]", want: `[{"NAME":"Go","EXPERIENCE":2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeResponse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := NormalizeResponse(got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestNormalizeResponseWithoutArray(t *testing.T) {
	for _, raw := range []string{"", "I could not find any skills.", "{\"NAME\":\"Go\"}", "] backwards ["} {
		_, err := NormalizeResponse(raw)
		assert.ErrorIs(t, err, ErrInvalidModelOutput, raw)
	}
}

func TestValidateResponseAccepts(t *testing.T) {
	records, err := ValidateResponse("```json\n[{\"NAME\":\"  Python \",\"EXPERIENCE\":5},{\"NAME\":\"Go\",\"EXPERIENCE\":2.5},{\"NAME\":\"Go\",\"EXPERIENCE\":0}]\n```")
	require.NoError(t, err)
	assert.Equal(t, []SkillRecord{
		{Name: "Python", ExperienceYears: 5},
		{Name: "Go", ExperienceYears: 2.5},
		{Name: "Go", ExperienceYears: 0},
	}, records)
}

func TestValidateResponseBackticksInName(t *testing.T) {
	records, err := ValidateResponse("[{\"NAME\":\"Markdown ``` fences\",\"EXPERIENCE\":1}]")
	require.NoError(t, err)
	assert.Equal(t, []SkillRecord{{Name: "Markdown ``` fences", ExperienceYears: 1}}, records)
}

func TestValidateResponseEmptyArray(t *testing.T) {
	records, err := ValidateResponse("[]")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestValidateResponseIgnoresExtraFields(t *testing.T) {
	records, err := ValidateResponse(`[{"NAME":"Rust","EXPERIENCE":1,"LEVEL":"senior"}]`)
	require.NoError(t, err)
	assert.Equal(t, []SkillRecord{{Name: "Rust", ExperienceYears: 1}}, records)
}

func TestValidateResponseRejects(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantIndex int
		wantField string
	}{
		{name: "not json", raw: `[{"NAME":"Go",}]`, wantIndex: -1},
		{name: "not an array of objects", raw: `["Go"]`, wantIndex: 0},
		{name: "missing name", raw: `[{"EXPERIENCE":1}]`, wantIndex: 0, wantField: "NAME"},
		{name: "missing experience", raw: `[{"NAME":"Go"}]`, wantIndex: 0, wantField: "EXPERIENCE"},
		{name: "string experience", raw: `[{"NAME":"Go","EXPERIENCE":1},{"NAME":"Go","EXPERIENCE":"3"}]`, wantIndex: 1, wantField: "EXPERIENCE"},
		{name: "negative experience", raw: `[{"NAME":"Java","EXPERIENCE":-1}]`, wantIndex: 0, wantField: "EXPERIENCE"},
		{name: "blank name", raw: `[{"NAME":"   ","EXPERIENCE":1}]`, wantIndex: 0, wantField: "NAME"},
		{name: "null name", raw: `[{"NAME":null,"EXPERIENCE":1}]`, wantIndex: 0, wantField: "NAME"},
		{name: "overflowing number", raw: `[{"NAME":"Go","EXPERIENCE":1e400}]`, wantIndex: 0, wantField: "EXPERIENCE"},
		{name: "lowercase keys", raw: `[{"name":"Go","experience":1}]`, wantIndex: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ValidateResponse(tt.raw)
			assert.Nil(t, records)
			require.ErrorIs(t, err, ErrInvalidModelOutput)

			var outErr *OutputError
			require.ErrorAs(t, err, &outErr)
			assert.Equal(t, tt.wantIndex, outErr.Index)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, outErr.Field)
			}
		})
	}
}

func TestValidateResponseIsAllOrNothing(t *testing.T) {
	raw := `[{"NAME":"Go","EXPERIENCE":4},{"NAME":"","EXPERIENCE":1},{"NAME":"SQL","EXPERIENCE":2}]`
	records, err := ValidateResponse(raw)
	require.Error(t, err)
	assert.Nil(t, records)
}

func TestValidateResponseErrorDoesNotEchoContent(t *testing.T) {
	_, err := ValidateResponse(`[{"NAME":"secret-project-x","EXPERIENCE":"lots"}]`)
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "secret-project-x"))
	assert.False(t, strings.Contains(err.Error(), "lots"))
}

func TestValidateResponseNeverPanics(t *testing.T) {
	inputs := []string{
		"[", "]", "[]]", "[[[[", "```", "```json", "[null]", "[{}]", "[1,2,3]",
		`[{"NAME":["Go"],"EXPERIENCE":{}}]`, "\x00[\xff]", strings.Repeat("[", 1000) + strings.Repeat("]", 1000),
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			records, err := ValidateResponse(in)
			if err == nil {
				assert.NotNil(t, records)
			}
		}, in)
	}
}

func TestValidateResponseFencedRust(t *testing.T) {
	records, err := ValidateResponse("```json\n[{\"NAME\":\"Rust\",\"EXPERIENCE\":1}]\n```")
	require.NoError(t, err)
	assert.Equal(t, []SkillRecord{{Name: "Rust", ExperienceYears: 1}}, records)
}

func TestValidateResponseProseOnly(t *testing.T) {
	_, err := ValidateResponse("I could not determine any skills.")
	assert.ErrorIs(t, err, ErrInvalidModelOutput)
}
