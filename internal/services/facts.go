package services

import (
	"encoding/json"
	"strings"
)

// FactMarker is the token the model is instructed to append before a JSON
// string array of newly learned user facts. The marker channel is best effort:
// a marker that does not parse is ignored and the reply is returned untouched.
const FactMarker = "[FACTS]"

// ExtractFacts splits a model reply into the human-readable text and any
// well-formed facts carried by a trailing fact marker. Markdown fences around
// the marker block are tolerated. On a malformed marker the original text is
// returned unchanged with no facts.
func ExtractFacts(text string) (string, []string) {
	idx := strings.LastIndex(text, FactMarker)
	if idx == -1 {
		return text, nil
	}

	payload := stripFences(text[idx+len(FactMarker):])

	var raw []string
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return text, nil
	}

	facts := make([]string, 0, len(raw))
	for _, fact := range raw {
		if trimmed := strings.TrimSpace(fact); trimmed != "" {
			facts = append(facts, trimmed)
		}
	}

	clean := strings.TrimSpace(stripTrailingFenceOpen(text[:idx]))
	return clean, facts
}

// stripFences removes surrounding markdown code fences and whitespace from the
// marker payload.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// stripTrailingFenceOpen drops a dangling fence opener left behind when the
// whole marker block was fenced ("```json\n[FACTS] ...").
func stripTrailingFenceOpen(s string) string {
	trimmed := strings.TrimRight(s, " \t\n")
	for _, opener := range []string{"```json", "```"} {
		if strings.HasSuffix(trimmed, opener) {
			return trimmed[:len(trimmed)-len(opener)]
		}
	}
	return trimmed
}

