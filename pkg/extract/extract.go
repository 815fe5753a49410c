// Package extract turns raw bulk payloads into individual record payloads
// and derives stable identifiers for them. All functions are pure: the same
// payload always yields the same records and identifiers.
package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// Format identifies the segmentation rules for a raw payload
type Format string

const (
	// FormatFlatfile is line-oriented text where records end with a "//" line
	FormatFlatfile Format = "flatfile"
	// FormatXML is an XML payload whose record container tag varies by collection
	FormatXML Format = "xml"
	// FormatDelimited is plain text split by rows or blank-line paragraphs
	FormatDelimited Format = "delimited-text"
)

// Collection-specific XML container tags. Literature collections nest
// entries under PubmedArticle (with Article as a secondary shape); document
// summary collections use DocumentSummary with a uid attribute.
var (
	pubmedArticlePattern   = regexp.MustCompile(`(?s)<PubmedArticle.*?</PubmedArticle>`)
	articlePattern         = regexp.MustCompile(`(?s)<Article.*?</Article>`)
	documentSummaryPattern = regexp.MustCompile(`(?s)<DocumentSummary.*?</DocumentSummary>`)

	// Generic container tags tried in order when no collection rule applies
	genericXMLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<DocumentSummary.*?</DocumentSummary>`),
		regexp.MustCompile(`(?is)<record.*?</record>`),
		regexp.MustCompile(`(?is)<entry.*?</entry>`),
		regexp.MustCompile(`(?is)<item.*?</item>`),
	}

	accessionPattern = regexp.MustCompile(`ACCESSION\s+(\S+)`)
	locusPattern     = regexp.MustCompile(`LOCUS\s+(\S+)`)
	pmidPattern      = regexp.MustCompile(`<PMID.*?>(\d+)</PMID>`)
	uidPattern       = regexp.MustCompile(`(?s)<DocumentSummary.*?uid="(\d+)"`)
)

var literatureCollections = map[string]bool{
	"pubmed": true,
	"pmc":    true,
}

var documentSummaryCollections = map[string]bool{
	"gene":       true,
	"biosample":  true,
	"bioproject": true,
}

// Segment splits a raw bulk payload into individual record payloads
// according to the declared format. The collection name selects
// collection-specific rules where formats differ by collection.
func Segment(payload string, format Format, collection string) []string {
	switch format {
	case FormatFlatfile:
		return segmentFlatfile(payload)
	case FormatXML:
		return segmentXML(payload, collection)
	default:
		return segmentDelimited(payload, collection)
	}
}

// segmentFlatfile splits on terminator lines consisting solely of "//".
// The terminator stays with its record. A trailing buffer with any non-blank
// line becomes a final record.
func segmentFlatfile(payload string) []string {
	var records []string
	var current []string

	for _, line := range strings.Split(payload, "\n") {
		current = append(current, line)
		if strings.TrimSpace(line) == "//" {
			if len(current) > 1 {
				records = append(records, strings.Join(current, "\n"))
			}
			current = nil
		}
	}

	if len(current) > 0 && anyNonBlank(current) {
		records = append(records, strings.Join(current, "\n"))
	}

	return records
}

// segmentXML applies collection-specific outer-element patterns first, then
// a fixed ordered list of generic container tags, and finally treats the
// whole payload as a single record if it is non-blank.
func segmentXML(payload, collection string) []string {
	var records []string

	switch {
	case literatureCollections[collection]:
		records = append(records, pubmedArticlePattern.FindAllString(payload, -1)...)
		records = append(records, articlePattern.FindAllString(payload, -1)...)
	case documentSummaryCollections[collection]:
		records = append(records, documentSummaryPattern.FindAllString(payload, -1)...)
	default:
		for _, pattern := range genericXMLPatterns {
			if matches := pattern.FindAllString(payload, -1); len(matches) > 0 {
				records = append(records, matches...)
				break
			}
		}
	}

	if len(records) == 0 && strings.TrimSpace(payload) != "" {
		records = append(records, payload)
	}

	return records
}

// segmentDelimited handles row-oriented text. The sra collection returns
// one tabular row per record sharing a header line; everything else is
// split on blank-line paragraphs.
func segmentDelimited(payload, collection string) []string {
	var records []string

	if collection == "sra" {
		lines := strings.Split(strings.TrimSpace(payload), "\n")
		if len(lines) > 1 {
			header := lines[0]
			for i, line := range lines[1:] {
				if strings.TrimSpace(line) == "" {
					continue
				}
				records = append(records, fmt.Sprintf("# SRA Record %d\n%s\n%s", i+1, header, line))
			}
		}
		return records
	}

	for _, paragraph := range strings.Split(payload, "\n\n") {
		if strings.TrimSpace(paragraph) != "" {
			records = append(records, paragraph)
		}
	}

	return records
}

// DeriveIdentifier extracts a stable identifier from one record's content.
// Priority: accession/locus labels for flatfile records, PMID for literature
// XML, DocumentSummary uid for summary XML, then the ordinal fallback
// <collection>_record_<6-digit ordinal>. The ordinal is 1-based within the
// whole run, not within the page.
func DeriveIdentifier(record string, format Format, collection string, ordinal int) string {
	if format == FormatFlatfile {
		if m := accessionPattern.FindStringSubmatch(record); m != nil {
			return m[1]
		}
		if m := locusPattern.FindStringSubmatch(record); m != nil {
			return m[1]
		}
	}

	if collection == "pubmed" {
		if m := pmidPattern.FindStringSubmatch(record); m != nil {
			return "PMID_" + m[1]
		}
	}

	if documentSummaryCollections[collection] {
		if m := uidPattern.FindStringSubmatch(record); m != nil {
			return fmt.Sprintf("%s_%s", collection, m[1])
		}
	}

	return fmt.Sprintf("%s_record_%06d", collection, ordinal)
}

func anyNonBlank(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}
