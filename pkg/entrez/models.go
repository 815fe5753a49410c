package entrez

import (
	"encoding/json"
	"time"
)

// SearchSession holds the opaque handles returned by a search call. The
// handles let later fetch calls reference the exact result set without
// resubmitting the query. They are only valid for a bounded window after
// creation; a stale session is refreshed by re-issuing the search.
type SearchSession struct {
	Collection string
	Term       string
	Count      int
	WebEnv     string
	QueryKey   string
	CreatedAt  time.Time
}

// RecordSummary is the brief description of one record used by preview mode
type RecordSummary struct {
	ID         string
	Title      string
	Authors    string
	Date       string
	Collection string
}

// Wire types for the JSON responses

type infoResponse struct {
	Result infoResult `json:"einforesult"`
}

type infoResult struct {
	DBList []string `json:"dblist"`
}

type searchResponse struct {
	Result searchResult `json:"esearchresult"`
}

type searchResult struct {
	Count    string   `json:"count"`
	WebEnv   string   `json:"webenv"`
	QueryKey string   `json:"querykey"`
	IDList   []string `json:"idlist"`
	Error    string   `json:"ERROR"`
}

// summaryResponse carries one object per record keyed by uid, plus a "uids"
// array preserving result order
type summaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}
