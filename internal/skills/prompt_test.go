package skills

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBuildEmbedsDocumentAndFormatRules(t *testing.T) {
	p := PromptBuilder{MaxChars: 1000}.Build("Go developer since 2019.")

	assert.Contains(t, p.Text, "Go developer since 2019.")
	assert.Contains(t, p.Text, `"NAME"`)
	assert.Contains(t, p.Text, `"EXPERIENCE"`)
	assert.Contains(t, p.Text, "ONLY a JSON array")
	assert.NotContains(t, p.Text, "{{DOCUMENT_TEXT}}")
	assert.False(t, p.Truncated)
	assert.Equal(t, PromptVersion, p.Version)
}

func TestBuildIsDeterministic(t *testing.T) {
	b := PromptBuilder{MaxChars: 50}
	text := strings.Repeat("Kubernetes operator work. ", 10)
	assert.Equal(t, b.Build(text), b.Build(text))
}

func TestBuildEmptyDocument(t *testing.T) {
	p := PromptBuilder{}.Build("")
	assert.Contains(t, p.Text, "ONLY a JSON array")
	assert.Zero(t, p.SourceChars)
	assert.False(t, p.Truncated)
}

func TestBuildDoesNotExpandPlaceholderInDocument(t *testing.T) {
	p := PromptBuilder{MaxChars: 1000}.Build("literal {{DOCUMENT_TEXT}} token")
	assert.Equal(t, 1, strings.Count(p.Text, "literal {{DOCUMENT_TEXT}} token"))
}

func TestBuildTruncatesAtParagraph(t *testing.T) {
	first := strings.Repeat("a", 60)
	second := strings.Repeat("b", 60)
	p := PromptBuilder{MaxChars: 100}.Build(first + "\n\n" + second)

	assert.True(t, p.Truncated)
	assert.Contains(t, p.Text, first+"\n\n[... document truncated: 60 of 122 characters included ...]")
	assert.NotContains(t, p.Text, "bbb")
}

func TestTruncateTextBoundaries(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{name: "sentence", text: "Built APIs in Go. Led a team of five engineers", max: 30, want: "Built APIs in Go."},
		{name: "word", text: "Kubernetes Terraform Prometheus Grafana", max: 25, want: "Kubernetes Terraform"},
		{name: "next rune is space", text: "Kubernetes Terraform Prometheus", max: 20, want: "Kubernetes Terraform"},
		{name: "no boundary", text: strings.Repeat("x", 40), max: 10, want: strings.Repeat("x", 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := truncateText(tt.text, tt.max)
			assert.True(t, truncated)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), tt.max)
		})
	}
}

func TestTruncateTextCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 10)
	got, truncated := truncateText(text, 10)
	assert.False(t, truncated)
	assert.Equal(t, text, got)

	got, truncated = truncateText(text+"ü", 10)
	assert.True(t, truncated)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 10, utf8.RuneCountInString(got))
}
