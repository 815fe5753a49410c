package entrez

import (
	"net/url"
	"strings"
	"testing"
)

func mustParseQuery(t *testing.T, rawURL string) url.Values {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("Bad URL %q: %v", rawURL, err)
	}
	return parsed.Query()
}

func TestSearchURL(t *testing.T) {
	params := clientParams{Tool: "entrezharvest", Email: "a@b.org", APIKey: "k1"}
	rawURL := searchURL("https://example.org/eutils", "protein", "endolysin", 0, params)

	if !strings.HasPrefix(rawURL, "https://example.org/eutils/esearch.fcgi?") {
		t.Fatalf("Wrong endpoint: %s", rawURL)
	}

	q := mustParseQuery(t, rawURL)
	expected := map[string]string{
		"db":         "protein",
		"term":       "endolysin",
		"usehistory": "y",
		"retmax":     "0",
		"retmode":    "json",
		"tool":       "entrezharvest",
		"email":      "a@b.org",
		"api_key":    "k1",
	}
	for key, want := range expected {
		if got := q.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestFetchURL(t *testing.T) {
	params := clientParams{Tool: "entrezharvest", Email: "a@b.org"}
	rawURL := fetchURL("https://example.org/eutils", "protein", "gb", "text", 100, 50, "WE_1", "QK_1", params)

	if !strings.HasPrefix(rawURL, "https://example.org/eutils/efetch.fcgi?") {
		t.Fatalf("Wrong endpoint: %s", rawURL)
	}

	q := mustParseQuery(t, rawURL)
	expected := map[string]string{
		"db":        "protein",
		"rettype":   "gb",
		"retmode":   "text",
		"retstart":  "100",
		"retmax":    "50",
		"WebEnv":    "WE_1",
		"query_key": "QK_1",
	}
	for key, want := range expected {
		if got := q.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if q.Has("api_key") {
		t.Error("Empty API key must not be sent")
	}
}

func TestFetchURLOmitsEmptyRetType(t *testing.T) {
	rawURL := fetchURL("https://example.org/eutils", "sra", "", "text", 0, 50, "W", "Q", clientParams{})
	q := mustParseQuery(t, rawURL)
	if q.Has("rettype") {
		t.Error("Empty rettype must be omitted")
	}
}

func TestSummaryURL(t *testing.T) {
	rawURL := summaryURL("https://example.org/eutils", "gene", []string{"1", "2", "3"}, clientParams{})
	q := mustParseQuery(t, rawURL)
	if got := q.Get("id"); got != "1,2,3" {
		t.Errorf("id = %q, want 1,2,3", got)
	}
	if got := q.Get("retmode"); got != "json" {
		t.Errorf("retmode = %q, want json", got)
	}
}

func TestInfoURL(t *testing.T) {
	rawURL := infoURL("https://example.org/eutils", clientParams{Email: "a@b.org"})
	if !strings.Contains(rawURL, "/einfo.fcgi?") {
		t.Errorf("Wrong endpoint: %s", rawURL)
	}
}
