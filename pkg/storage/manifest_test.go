package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"entrezharvest/pkg/catalog"
)

func TestManifestCounters(t *testing.T) {
	m := NewManifest("protein", "endolysin", catalog.Format("protein"), 500, 150)

	m.AddRecord(RecordStats{Filename: "a.gbk", RecordID: "A", Size: 1000, Page: 1})
	m.AddRecord(RecordStats{Filename: "b.gbk", RecordID: "B", Size: 3000, Page: 1})
	m.AddRecord(RecordStats{Filename: "c.gbk", RecordID: "C", Size: 2000, Page: 2})
	m.AddFailedPage(3)

	if m.RecordsPersisted != 3 {
		t.Errorf("Expected 3 persisted, got %d", m.RecordsPersisted)
	}
	if m.TotalBytes != 6000 {
		t.Errorf("Expected 6000 bytes, got %d", m.TotalBytes)
	}

	min, max, avg := m.SizeRange()
	if min != 1000 || max != 3000 || avg != 2000 {
		t.Errorf("SizeRange = %d/%d/%d, want 1000/3000/2000", min, max, avg)
	}

	pages := m.PageBreakdown()
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(pages))
	}
	if pages[0].Page != 1 || pages[0].Records != 2 || pages[0].Bytes != 4000 {
		t.Errorf("Page 1 breakdown wrong: %+v", pages[0])
	}
	if pages[1].Page != 2 || pages[1].Records != 1 {
		t.Errorf("Page 2 breakdown wrong: %+v", pages[1])
	}
}

func TestSizeRangeEmpty(t *testing.T) {
	m := NewManifest("gene", "x", catalog.Format("gene"), 0, 0)
	min, max, avg := m.SizeRange()
	if min != 0 || max != 0 || avg != 0 {
		t.Errorf("Empty manifest SizeRange = %d/%d/%d, want zeros", min, max, avg)
	}
}

func TestWriteStatistics(t *testing.T) {
	mgr := newTestManager(t)

	manifest := NewManifest("protein", "endolysin", catalog.Format("protein"), 200, 100)
	manifest.AddRecord(RecordStats{Filename: "WP_0001.gbk", RecordID: "WP_0001", Size: 2048, Page: 1})
	manifest.AddRecord(RecordStats{Filename: "WP_0002.gbk", RecordID: "WP_0002", Size: 4096, Page: 2})
	manifest.AddFailedPage(3)

	path, err := mgr.WriteStatistics(manifest)
	if err != nil {
		t.Fatalf("WriteStatistics failed: %v", err)
	}
	if filepath.Base(path) != "protein_statistics.txt" {
		t.Errorf("Unexpected report name: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Report missing: %v", err)
	}

	text := string(content)
	for _, want := range []string{
		"PROTEIN collection statistics",
		"Search term: endolysin",
		"Total records found: 200",
		"Download target: 100",
		"Records persisted: 2",
		"Completion: 2.0%",
		"Failed pages (resumable): 3",
		"WP_0001.gbk",
		"2.00 KB",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}

func TestWriteSearchSummary(t *testing.T) {
	mgr := newTestManager(t)

	outcomes := []SearchOutcome{
		{Collection: "protein", Found: 200, Downloaded: 150},
		{Collection: "pubmed", Found: 50, Downloaded: 50},
	}

	path, err := mgr.WriteSearchSummary(outcomes, 500000)
	if err != nil {
		t.Fatalf("WriteSearchSummary failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Summary missing: %v", err)
	}

	text := string(content)
	for _, want := range []string{
		"protein", "pubmed",
		"at most 500000 records",
		"Collections with data: 2",
		"Total",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Summary missing %q", want)
		}
	}
}

func TestWritePreview(t *testing.T) {
	mgr := newTestManager(t)

	previews := []PreviewInfo{
		{
			Collection:   "protein",
			TotalCount:   120,
			AvailableIDs: 120,
			Format:       catalog.Format("protein"),
		},
		{
			Collection: "pubmed",
			Err:        "search rejected",
		},
	}

	path, err := mgr.WritePreview(previews)
	if err != nil {
		t.Fatalf("WritePreview failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Preview missing: %v", err)
	}

	text := string(content)
	for _, want := range []string{
		"Collection: PROTEIN",
		"Total records: 120",
		"Error: search rejected",
		"Total records: 120",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Preview missing %q", want)
		}
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{3 * 1024 * 1024, "3.00 MB"},
		{int64(5) * 1024 * 1024 * 1024, "5.00 GB"},
	}
	for _, tt := range tests {
		if got := FormatFileSize(tt.bytes); got != tt.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
