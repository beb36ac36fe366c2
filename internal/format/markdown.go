// Package format renders command results for display.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// NoEntries is rendered in place of an empty table.
const NoEntries = "**No entries.**"

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// TableToMarkdown renders data as a titled markdown table.
//
// A map becomes one row and a list of maps one row per element. Scalars in
// a list land in a single column named after the title. Headers are the
// sorted union of keys; with removeNull, columns empty in every row are
// dropped.
func TableToMarkdown(title string, data any, removeNull bool) string {
	var b strings.Builder
	if title != "" {
		b.WriteString("### ")
		b.WriteString(title)
		b.WriteString("\n")
	}

	rows := toRows(title, normalize(data))
	headers := collectHeaders(rows, removeNull)
	if len(rows) == 0 || len(headers) == 0 {
		b.WriteString(NoEntries)
		b.WriteString("\n")
		return b.String()
	}

	t := table.New().
		Border(lipgloss.MarkdownBorder()).
		BorderTop(false).
		BorderBottom(false).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
		Headers(headers...)

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = Cell(row[h])
		}
		t.Row(cells...)
	}

	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

// normalize converts typed values (structs, typed slices) into the generic
// JSON shapes the renderer walks.
func normalize(data any) any {
	switch data.(type) {
	case nil, map[string]any, []any, string, bool, float64, json.Number:
		return data
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprint(data)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return string(raw)
	}
	return v
}

func toRows(title string, data any) []map[string]any {
	column := title
	if column == "" {
		column = "value"
	}

	switch v := data.(type) {
	case nil:
		return nil
	case map[string]any:
		return []map[string]any{v}
	case []any:
		rows := make([]map[string]any, 0, len(v))
		for _, el := range v {
			if m, ok := normalize(el).(map[string]any); ok {
				rows = append(rows, m)
			} else {
				rows = append(rows, map[string]any{column: el})
			}
		}
		return rows
	default:
		return []map[string]any{{column: v}}
	}
}

func collectHeaders(rows []map[string]any, removeNull bool) []string {
	seen := map[string]bool{}
	for _, row := range rows {
		for k, v := range row {
			if removeNull && isEmpty(v) {
				if _, ok := seen[k]; !ok {
					seen[k] = false
				}
				continue
			}
			seen[k] = true
		}
	}

	headers := make([]string, 0, len(seen))
	for k, keep := range seen {
		if keep || !removeNull {
			headers = append(headers, k)
		}
	}
	sort.Strings(headers)
	return headers
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// Cell formats a single value for a table cell.
func Cell(v any) string {
	return escape(plain(v))
}

func plain(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			parts = append(parts, plain(el))
		}
		return strings.Join(parts, ", ")
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}

var cellReplacer = strings.NewReplacer(
	"|", `\|`,
	"\r\n", "<br>",
	"\n", "<br>",
)

func escape(s string) string {
	return cellReplacer.Replace(s)
}
