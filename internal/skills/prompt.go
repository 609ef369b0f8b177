package skills

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PromptVersion identifies the embedded template in logs.
const PromptVersion = "skills_v1"

// DefaultPromptMaxChars bounds the document text embedded in a prompt.
const DefaultPromptMaxChars = 24000

//go:embed prompts/skills_v1.txt
var promptTemplate string

// Prompt is a rendered model instruction.
type Prompt struct {
	Text          string
	Version       string
	Truncated     bool
	SourceChars   int
	IncludedChars int
}

// PromptBuilder renders the skill-extraction instruction around document text.
// Text longer than MaxChars characters is shortened at the nearest paragraph,
// sentence or word boundary and followed by a truncation marker.
type PromptBuilder struct {
	MaxChars int
}

// Build renders the prompt. It is deterministic for a given input and MaxChars.
func (b PromptBuilder) Build(documentText string) Prompt {
	maxChars := b.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultPromptMaxChars
	}
	source := utf8.RuneCountInString(documentText)
	body, truncated := truncateText(documentText, maxChars)
	included := utf8.RuneCountInString(body)
	if truncated {
		body += fmt.Sprintf("\n\n[... document truncated: %d of %d characters included ...]", included, source)
	}

	replacer := strings.NewReplacer("{{DOCUMENT_TEXT}}", body)
	return Prompt{
		Text:          replacer.Replace(promptTemplate),
		Version:       PromptVersion,
		Truncated:     truncated,
		SourceChars:   source,
		IncludedChars: included,
	}
}

// truncateText keeps at most maxChars runes of text. A boundary is only used
// when it keeps at least half of the allowed characters.
func truncateText(text string, maxChars int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text, false
	}
	cut := string(runes[:maxChars])
	floor := len(cut) / 2

	if i := strings.LastIndex(cut, "\n\n"); i >= floor {
		return strings.TrimRightFunc(cut[:i], unicode.IsSpace), true
	}
	if i := lastSentenceEnd(cut); i >= floor {
		return cut[:i], true
	}
	if unicode.IsSpace(runes[maxChars]) {
		return strings.TrimRightFunc(cut, unicode.IsSpace), true
	}
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i >= floor {
		return strings.TrimRightFunc(cut[:i], unicode.IsSpace), true
	}
	return cut, true
}

// lastSentenceEnd returns the byte offset just past the last sentence
// terminator that is followed by whitespace, or -1.
func lastSentenceEnd(s string) int {
	best := -1
	for _, sep := range []string{". ", "! ", "? ", ".\n", "!\n", "?\n"} {
		if i := strings.LastIndex(s, sep); i >= 0 && i+1 > best {
			best = i + 1
		}
	}
	return best
}
