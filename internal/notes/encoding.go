package notes

import (
	"encoding/json"
	"strings"
)

// EncodeList renders a string list for a JSON text column.
func EncodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// DecodeList parses a JSON text column into a string list. Malformed
// values decode to an empty list.
func DecodeList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil || values == nil {
		return []string{}
	}
	return values
}

// EncodeErrorInfo renders diagnostics for storage; nil yields SQL NULL.
func EncodeErrorInfo(info *ErrorInfo) any {
	if info == nil {
		return nil
	}
	data, err := json.Marshal(info)
	if err != nil {
		return nil
	}
	return string(data)
}

// DecodeErrorInfo parses stored diagnostics. Non-JSON legacy values are
// kept as the message.
func DecodeErrorInfo(raw string) *ErrorInfo {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var info ErrorInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return &ErrorInfo{Message: raw}
	}
	return &info
}

// CleanTags trims tags and drops blanks and duplicates, keeping order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// SplitTags parses a comma separated tag string.
func SplitTags(raw string) []string {
	return CleanTags(strings.Split(raw, ","))
}
