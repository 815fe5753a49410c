package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entrezharvest/pkg/catalog"
	"entrezharvest/pkg/entrez"
)

// PreviewInfo describes what a collection download would cover without
// fetching any payloads
type PreviewInfo struct {
	Collection   string
	TotalCount   int
	AvailableIDs int
	Format       catalog.FormatPair
	Samples      []entrez.RecordSummary
	Err          string
}

// WritePreview renders the download preview listing for all collections
func (m *Manager) WritePreview(previews []PreviewInfo) (string, error) {
	path := filepath.Join(m.baseDir, "download_lists_preview.txt")

	var b strings.Builder
	b.WriteString("Download lists preview\n")
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().Format(time.RFC3339))
	b.WriteString(strings.Repeat("=", 80) + "\n\n")

	var totalRecords, totalAvailable int
	for _, preview := range previews {
		totalRecords += preview.TotalCount
		totalAvailable += preview.AvailableIDs

		fmt.Fprintf(&b, "Collection: %s\n", strings.ToUpper(preview.Collection))
		fmt.Fprintf(&b, "Total records: %d\n", preview.TotalCount)
		fmt.Fprintf(&b, "Available IDs: %d\n", preview.AvailableIDs)
		fmt.Fprintf(&b, "Download format: %s (%s)\n", preview.Format.RetType, preview.Format.RetMode)
		fmt.Fprintf(&b, "Sample records: %d\n", len(preview.Samples))

		if preview.Err != "" {
			fmt.Fprintf(&b, "Error: %s\n", preview.Err)
		}

		if len(preview.Samples) > 0 {
			b.WriteString("Samples:\n")
			for i, sample := range preview.Samples {
				if i >= 3 {
					break
				}
				fmt.Fprintf(&b, "  %d. ID: %s\n", i+1, sample.ID)
				fmt.Fprintf(&b, "     Title: %s\n", sample.Title)
				fmt.Fprintf(&b, "     Authors: %s\n", sample.Authors)
				fmt.Fprintf(&b, "     Date: %s\n", sample.Date)
			}
		}

		b.WriteString(strings.Repeat("-", 60) + "\n\n")
	}

	b.WriteString("Totals:\n")
	fmt.Fprintf(&b, "Collections with data: %d\n", len(previews))
	fmt.Fprintf(&b, "Total records: %d\n", totalRecords)
	fmt.Fprintf(&b, "Total available IDs: %d\n", totalAvailable)

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write preview listing: %w", err)
	}

	return path, nil
}
