package main

import (
	"strconv"
	"strings"
	"time"

	"notehub/internal/api"
	"notehub/internal/notes"
	"notehub/internal/textutil"
)

var noteListColumns = []tableColumn{
	{Header: "ID"},
	{Header: "Title", MaxWidth: 48},
	{Header: "Status"},
	{Header: "Created"},
	{Header: "Tags", MaxWidth: 32},
}

func buildNoteListRows(items []api.NoteSummary, colorize bool) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "Untitled"
		}
		rows = append(rows, []string{
			item.ID,
			title,
			renderNoteStatus(item.Status, colorize),
			formatDisplayTime(item.CreatedAt),
			formatTags(item.Tags),
		})
	}
	return rows
}

// buildStatusRows lists counts in pipeline order, then any status the
// daemon reported that this build does not know about.
func buildStatusRows(stats map[string]int, colorize bool) [][]string {
	rows := make([][]string, 0, len(stats))
	seen := make(map[string]struct{}, len(stats))
	for _, status := range notes.AllStatuses() {
		key := string(status)
		seen[key] = struct{}{}
		rows = append(rows, []string{renderNoteStatus(key, colorize), strconv.Itoa(stats[key])})
	}
	for key, count := range stats {
		if _, ok := seen[key]; ok {
			continue
		}
		rows = append(rows, []string{renderNoteStatus(key, colorize), strconv.Itoa(count)})
	}
	return rows
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ", ")
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.Local().Format("2006-01-02 15:04")
	}
	return value
}

func statusTitle(status string) string {
	if status == "" {
		return "Unknown"
	}
	return textutil.TitleCase(status)
}
