package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"entrezharvest/pkg/catalog"
)

// RecordStats describes one persisted record for manifest accounting
type RecordStats struct {
	Filename string
	RecordID string
	Size     int64
	Page     int // 1-based page (batch) number
}

// PageStats is the per-page byte/record breakdown
type PageStats struct {
	Page    int
	Records int
	Bytes   int64
}

// Manifest aggregates counters for one collection's harvest run. It is
// derived, not authoritative: it is rebuilt at the end of a run from the
// records actually written during that run.
type Manifest struct {
	Collection       string
	SearchTerm       string
	Format           catalog.FormatPair
	TotalCount       int // total discoverable records
	TargetCount      int // capped download target
	RecordsPersisted int
	TotalBytes       int64
	FailedPages      []int
	Records          []RecordStats
	GeneratedAt      time.Time
}

// NewManifest creates an empty manifest for one collection run
func NewManifest(collection, term string, format catalog.FormatPair, totalCount, targetCount int) *Manifest {
	return &Manifest{
		Collection:  collection,
		SearchTerm:  term,
		Format:      format,
		TotalCount:  totalCount,
		TargetCount: targetCount,
	}
}

// AddRecord accounts for one persisted record
func (m *Manifest) AddRecord(rec RecordStats) {
	m.Records = append(m.Records, rec)
	m.RecordsPersisted++
	m.TotalBytes += rec.Size
}

// AddFailedPage notes a page whose fetch exhausted its retries
func (m *Manifest) AddFailedPage(page int) {
	m.FailedPages = append(m.FailedPages, page)
}

// PageBreakdown returns per-page stats sorted by page number
func (m *Manifest) PageBreakdown() []PageStats {
	byPage := make(map[int]*PageStats)
	for _, rec := range m.Records {
		stats, ok := byPage[rec.Page]
		if !ok {
			stats = &PageStats{Page: rec.Page}
			byPage[rec.Page] = stats
		}
		stats.Records++
		stats.Bytes += rec.Size
	}

	pages := make([]PageStats, 0, len(byPage))
	for _, stats := range byPage {
		pages = append(pages, *stats)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })
	return pages
}

// SizeRange returns the min, max and average record size in bytes
func (m *Manifest) SizeRange() (min, max, avg int64) {
	if len(m.Records) == 0 {
		return 0, 0, 0
	}
	min = m.Records[0].Size
	max = m.Records[0].Size
	for _, rec := range m.Records {
		if rec.Size < min {
			min = rec.Size
		}
		if rec.Size > max {
			max = rec.Size
		}
	}
	avg = m.TotalBytes / int64(len(m.Records))
	return min, max, avg
}

// WriteStatistics renders the manifest as a plain-text report in the
// collection directory and returns the report path
func (m *Manager) WriteStatistics(manifest *Manifest) (string, error) {
	dir, err := m.CollectionDir(manifest.Collection)
	if err != nil {
		return "", err
	}

	manifest.GeneratedAt = time.Now()
	path := filepath.Join(dir, fmt.Sprintf("%s_statistics.txt", manifest.Collection))

	var b strings.Builder
	fmt.Fprintf(&b, "# %s collection statistics\n", strings.ToUpper(manifest.Collection))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString("## General\n")
	fmt.Fprintf(&b, "Collection: %s\n", manifest.Collection)
	fmt.Fprintf(&b, "Search term: %s\n", manifest.SearchTerm)
	fmt.Fprintf(&b, "Generated: %s\n", manifest.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Format: %s (%s)\n", manifest.Format.RetType, manifest.Format.RetMode)
	fmt.Fprintf(&b, "Directory: %s\n\n", dir)

	b.WriteString("## Counts\n")
	fmt.Fprintf(&b, "Total records found: %d\n", manifest.TotalCount)
	fmt.Fprintf(&b, "Download target: %d\n", manifest.TargetCount)
	fmt.Fprintf(&b, "Records persisted: %d\n", manifest.RecordsPersisted)
	if manifest.TargetCount > 0 {
		fmt.Fprintf(&b, "Completion: %.1f%%\n", float64(manifest.RecordsPersisted)/float64(manifest.TargetCount)*100)
	}
	if manifest.TotalCount > 0 {
		fmt.Fprintf(&b, "Coverage: %.1f%%\n", float64(manifest.RecordsPersisted)/float64(manifest.TotalCount)*100)
	}
	if len(manifest.FailedPages) > 0 {
		pages := make([]string, 0, len(manifest.FailedPages))
		for _, p := range manifest.FailedPages {
			pages = append(pages, fmt.Sprintf("%d", p))
		}
		fmt.Fprintf(&b, "Failed pages (resumable): %s\n", strings.Join(pages, ", "))
	}
	b.WriteString("\n")

	b.WriteString("## Sizes\n")
	fmt.Fprintf(&b, "Total size: %s\n", FormatFileSize(manifest.TotalBytes))
	if manifest.RecordsPersisted > 0 {
		min, max, avg := manifest.SizeRange()
		fmt.Fprintf(&b, "Average record size: %s\n", FormatFileSize(avg))
		fmt.Fprintf(&b, "Largest record: %s\n", FormatFileSize(max))
		fmt.Fprintf(&b, "Smallest record: %s\n", FormatFileSize(min))
	}
	b.WriteString("\n")

	if pages := manifest.PageBreakdown(); len(pages) > 0 {
		b.WriteString("## Pages\n")
		fmt.Fprintf(&b, "Pages with records: %d\n", len(pages))
		for _, page := range pages {
			fmt.Fprintf(&b, "Page %d: %d records, %s\n", page.Page, page.Records, FormatFileSize(page.Bytes))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Files\n")
	fmt.Fprintf(&b, "%-6s %-50s %-20s %-10s %-6s\n", "No.", "Filename", "Record ID", "Size", "Page")
	b.WriteString(strings.Repeat("-", 92) + "\n")
	for i, rec := range manifest.Records {
		filename := rec.Filename
		if len(filename) > 50 {
			filename = filename[:47] + "..."
		}
		recordID := rec.RecordID
		if len(recordID) > 20 {
			recordID = recordID[:17] + "..."
		}
		fmt.Fprintf(&b, "%-6d %-50s %-20s %-10s %-6d\n", i+1, filename, recordID, FormatFileSize(rec.Size), rec.Page)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write statistics report: %w", err)
	}

	m.logger.InfoWithFields("statistics report written", map[string]interface{}{
		"collection": manifest.Collection,
		"path":       path,
	})

	return path, nil
}

// SearchOutcome is one line of the cross-collection search summary
type SearchOutcome struct {
	Collection string
	Found      int
	Downloaded int
}

// WriteSearchSummary renders the per-collection found/downloaded summary
// written once after a multi-collection run
func (m *Manager) WriteSearchSummary(outcomes []SearchOutcome, maxRecords int) (string, error) {
	path := filepath.Join(m.baseDir, "search_summary.txt")

	var b strings.Builder
	b.WriteString("Search results summary\n")
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "Limit: at most %d records per collection\n", maxRecords)
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "%-20s %12s %12s %10s\n", "Collection", "Found", "Downloaded", "Ratio")
	b.WriteString(strings.Repeat("-", 60) + "\n")

	var totalFound, totalDownloaded int
	for _, outcome := range outcomes {
		ratio := 0.0
		if outcome.Found > 0 {
			ratio = float64(outcome.Downloaded) / float64(outcome.Found) * 100
		}
		fmt.Fprintf(&b, "%-20s %12d %12d %9.1f%%\n", outcome.Collection, outcome.Found, outcome.Downloaded, ratio)
		totalFound += outcome.Found
		totalDownloaded += outcome.Downloaded
	}

	b.WriteString(strings.Repeat("-", 60) + "\n")
	totalRatio := 0.0
	if totalFound > 0 {
		totalRatio = float64(totalDownloaded) / float64(totalFound) * 100
	}
	fmt.Fprintf(&b, "%-20s %12d %12d %9.1f%%\n", "Total", totalFound, totalDownloaded, totalRatio)
	fmt.Fprintf(&b, "\nCollections with data: %d\n", len(outcomes))

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write search summary: %w", err)
	}

	return path, nil
}

// FormatFileSize renders a byte count as B/KB/MB/GB
func FormatFileSize(sizeBytes int64) string {
	switch {
	case sizeBytes >= 1024*1024*1024:
		return fmt.Sprintf("%.2f GB", float64(sizeBytes)/(1024*1024*1024))
	case sizeBytes >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(sizeBytes)/(1024*1024))
	case sizeBytes >= 1024:
		return fmt.Sprintf("%.2f KB", float64(sizeBytes)/1024)
	default:
		return fmt.Sprintf("%d B", sizeBytes)
	}
}
