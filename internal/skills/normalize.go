package skills

import "strings"

const fence = "```"

// NormalizeResponse reduces raw model output to the JSON array it contains.
// Markdown code fences are removed first, then everything outside the first
// '[' and the last ']' is dropped. Applying it to its own output is a no-op.
func NormalizeResponse(raw string) (string, error) {
	s := stripCodeFence(strings.TrimSpace(raw))
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end < start {
		return "", &OutputError{Index: -1, Reason: "response does not contain a JSON array"}
	}
	return s[start : end+1], nil
}

// stripCodeFence returns the body of the first fenced block in s, or s when
// there is none. A fence only counts when it starts s or opens a line, so
// backticks inside JSON string values are left alone. A language tag on the
// opening fence line is dropped.
func stripCodeFence(s string) string {
	if strings.HasPrefix(s, "[") {
		return s
	}
	open := fenceOpen(s)
	if open < 0 {
		return s
	}
	body := s[open+len(fence):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && isLanguageTag(body[:nl]) {
		body = body[nl+1:]
	}
	if closeIdx := strings.Index(body, "\n"+fence); closeIdx >= 0 {
		body = body[:closeIdx]
	} else if closeIdx := strings.LastIndex(body, fence); closeIdx >= 0 {
		body = body[:closeIdx]
	}
	return strings.TrimSpace(body)
}

func fenceOpen(s string) int {
	if strings.HasPrefix(s, fence) {
		return 0
	}
	if i := strings.Index(s, "\n"+fence); i >= 0 {
		return i + 1
	}
	return -1
}

func isLanguageTag(line string) bool {
	line = strings.TrimSpace(line)
	if len(line) > 20 {
		return false
	}
	return !strings.ContainsAny(line, "[]{}\" \t")
}
