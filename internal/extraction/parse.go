package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outcome tells callers whether the reply was structured.
type Outcome int

const (
	// Parsed means a JSON object was found and decoded.
	Parsed Outcome = iota
	// Degraded means the reply is kept verbatim as the summary.
	Degraded
)

func (o Outcome) String() string {
	if o == Parsed {
		return "parsed"
	}
	return "degraded"
}

// Result is the interpreted LLM reply.
type Result struct {
	Outcome     Outcome
	Summary     string
	ActionItems []string
	Title       string
}

type replyPayload struct {
	Summary     any `json:"summary"`
	ActionItems any `json:"action_items"`
	Title       any `json:"title"`
}

// ParseResponse decodes the span from the first '{' to the last '}' of
// reply. Anything else degrades to the trimmed reply as summary with no
// action items. ActionItems is never nil.
func ParseResponse(reply string) Result {
	trimmed := strings.TrimSpace(reply)
	degraded := Result{Outcome: Degraded, Summary: trimmed, ActionItems: []string{}}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return degraded
	}

	var payload replyPayload
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &payload); err != nil {
		return degraded
	}
	return Result{
		Outcome:     Parsed,
		Summary:     scalarText(payload.Summary),
		ActionItems: actionItems(payload.ActionItems),
		Title:       scalarText(payload.Title),
	}
}

func scalarText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// actionItems accepts a list or a single string.
func actionItems(value any) []string {
	items := []string{}
	switch v := value.(type) {
	case string:
		if text := strings.TrimSpace(v); text != "" {
			items = append(items, text)
		}
	case []any:
		for _, entry := range v {
			if text := scalarText(entry); text != "" {
				items = append(items, text)
			}
		}
	}
	return items
}
