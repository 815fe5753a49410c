package entrez

import (
	"encoding/json"
	"fmt"
	"strings"
)

// fieldUnavailable is the sentinel used when no candidate field matched
const fieldUnavailable = "unavailable"

// Summary field shapes vary by collection (for example Title vs Caption).
// Each logical field has an ordered candidate list; the first present,
// non-empty candidate wins.
var (
	titleCandidates   = []string{"title", "caption"}
	authorsCandidates = []string{"authors", "authorlist"}
	dateCandidates    = []string{"pubdate", "createdate"}
)

// parseSummaries decodes a summary response into RecordSummary values,
// preserving the order given by the uids array
func parseSummaries(body []byte, collection string) ([]RecordSummary, error) {
	var resp summaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding summary response: %w", err)
	}

	var uids []string
	if raw, ok := resp.Result["uids"]; ok {
		if err := json.Unmarshal(raw, &uids); err != nil {
			return nil, fmt.Errorf("decoding summary uid list: %w", err)
		}
	}

	summaries := make([]RecordSummary, 0, len(uids))
	for _, uid := range uids {
		raw, ok := resp.Result[uid]
		if !ok {
			continue
		}

		var fields map[string]interface{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}

		summaries = append(summaries, RecordSummary{
			ID:         uid,
			Title:      pickField(fields, titleCandidates),
			Authors:    pickField(fields, authorsCandidates),
			Date:       pickField(fields, dateCandidates),
			Collection: collection,
		})
	}

	return summaries, nil
}

// pickField returns the first present, non-empty candidate rendered as a
// string, or the unavailable sentinel on total miss
func pickField(fields map[string]interface{}, candidates []string) string {
	for _, name := range candidates {
		value, ok := fields[name]
		if !ok {
			continue
		}
		if rendered := renderField(value); rendered != "" {
			return rendered
		}
	}
	return fieldUnavailable
}

// renderField flattens the dynamic summary value shapes: plain strings,
// numbers, lists of strings, and lists of {name: ...} objects
func renderField(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	case []interface{}:
		var parts []string
		for _, item := range v {
			switch entry := item.(type) {
			case string:
				parts = append(parts, entry)
			case map[string]interface{}:
				if name, ok := entry["name"].(string); ok && name != "" {
					parts = append(parts, name)
				}
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
