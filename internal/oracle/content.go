package oracle

import "strings"

// ExtractJSON strips optional Markdown code fences (```json ... ``` or
// ``` ... ```) from oracle output and returns the inner text. Applying
// it to unfenced content returns the content unchanged, so parsing a
// fenced and a bare response yields identical results.
func ExtractJSON(content string) string {
	s := strings.TrimSpace(content)

	if !strings.HasPrefix(s, "```") {
		return sliceToBraces(s)
	}

	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" up to the first newline.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "" {
			s = s[idx+1:]
		}
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return sliceToBraces(strings.TrimSpace(s))
}

// sliceToBraces trims any prose surrounding the outermost JSON object.
// Models occasionally preface fenced output with a sentence; slicing to
// the outer braces recovers the object without touching its contents.
func sliceToBraces(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
