package entrez

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the base URL for the E-utilities service
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// InfoEndpoint lists the available collections
	InfoEndpoint = "/einfo.fcgi"

	// SearchEndpoint submits a query and returns a count plus session handles
	SearchEndpoint = "/esearch.fcgi"

	// FetchEndpoint retrieves record content for a result page
	FetchEndpoint = "/efetch.fcgi"

	// SummaryEndpoint retrieves brief summaries for a list of record IDs
	SummaryEndpoint = "/esummary.fcgi"

	// MaxIDListSize is the remote's hard limit on IDs returned by one search
	MaxIDListSize = 10000
)

// clientParams identify the caller on every request. The remote's
// acceptable-use policy requires tool and email; an API key raises the
// allowed request rate.
type clientParams struct {
	Tool   string
	Email  string
	APIKey string
}

func (p clientParams) apply(values url.Values) {
	if p.Tool != "" {
		values.Set("tool", p.Tool)
	}
	if p.Email != "" {
		values.Set("email", p.Email)
	}
	if p.APIKey != "" {
		values.Set("api_key", p.APIKey)
	}
}

// infoURL constructs the URL for listing available collections
func infoURL(baseURL string, p clientParams) string {
	values := url.Values{}
	values.Set("retmode", "json")
	p.apply(values)
	return fmt.Sprintf("%s%s?%s", baseURL, InfoEndpoint, values.Encode())
}

// searchURL constructs the URL for a history-backed search. With retMax 0
// only the count and the session handles are returned.
func searchURL(baseURL, collection, term string, retMax int, p clientParams) string {
	values := url.Values{}
	values.Set("db", collection)
	values.Set("term", term)
	values.Set("usehistory", "y")
	values.Set("retmax", fmt.Sprintf("%d", retMax))
	values.Set("retmode", "json")
	p.apply(values)
	return fmt.Sprintf("%s%s?%s", baseURL, SearchEndpoint, values.Encode())
}

// fetchURL constructs the URL for fetching one result page via the session
// handles from a previous search
func fetchURL(baseURL, collection, retType, retMode string, start, length int, webEnv, queryKey string, p clientParams) string {
	values := url.Values{}
	values.Set("db", collection)
	if retType != "" {
		values.Set("rettype", retType)
	}
	values.Set("retmode", retMode)
	values.Set("retstart", fmt.Sprintf("%d", start))
	values.Set("retmax", fmt.Sprintf("%d", length))
	values.Set("WebEnv", webEnv)
	values.Set("query_key", queryKey)
	p.apply(values)
	return fmt.Sprintf("%s%s?%s", baseURL, FetchEndpoint, values.Encode())
}

// summaryURL constructs the URL for fetching summaries of specific records
func summaryURL(baseURL, collection string, ids []string, p clientParams) string {
	values := url.Values{}
	values.Set("db", collection)
	values.Set("id", strings.Join(ids, ","))
	values.Set("retmode", "json")
	p.apply(values)
	return fmt.Sprintf("%s%s?%s", baseURL, SummaryEndpoint, values.Encode())
}
