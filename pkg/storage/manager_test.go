package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"entrezharvest/pkg/catalog"
	"entrezharvest/pkg/logger"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), logger.NewTestLogger())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestSaveRecord(t *testing.T) {
	m := newTestManager(t)
	format := catalog.Format("protein")

	size, err := m.SaveRecord("protein", "WP_0001", "LOCUS WP_0001\nACCESSION WP_0001\n//", format)
	if err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	if size <= 0 {
		t.Errorf("Expected positive size, got %d", size)
	}

	path := filepath.Join(m.BaseDir(), "protein", "WP_0001.gbk")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Record file missing: %v", err)
	}

	text := string(content)
	for _, want := range []string{
		"# Collection: protein",
		"# Record ID: WP_0001",
		"# Downloaded:",
		"# Format: gb (text)",
		"ACCESSION WP_0001",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Record file missing %q:\n%s", want, text)
		}
	}
	if !strings.HasSuffix(text, "\n") {
		t.Error("Record file should end with a newline")
	}
	if int64(len(content)) != size {
		t.Errorf("Reported size %d, file is %d bytes", size, len(content))
	}
}

func TestSaveRecordOverwritesSameID(t *testing.T) {
	m := newTestManager(t)
	format := catalog.Format("pubmed")

	if _, err := m.SaveRecord("pubmed", "PMID_1", "<PubmedArticle>old</PubmedArticle>", format); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SaveRecord("pubmed", "PMID_1", "<PubmedArticle>new</PubmedArticle>", format); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Join(m.BaseDir(), "pubmed"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 file after overwrite, got %d", len(entries))
	}

	content, _ := os.ReadFile(filepath.Join(m.BaseDir(), "pubmed", entries[0].Name()))
	if !strings.Contains(string(content), "new") {
		t.Error("Overwrite did not replace content")
	}
}

func TestSaveRecordSanitizesFilename(t *testing.T) {
	m := newTestManager(t)

	_, err := m.SaveRecord("gene", "abc/../../etc passwd", "<DocumentSummary/>", catalog.Format("gene"))
	if err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(m.BaseDir(), "gene"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 file, got %d", len(entries))
	}
	name := entries[0].Name()
	if strings.ContainsAny(name, "/ \\") {
		t.Errorf("Filename not sanitized: %q", name)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"WP_0001.gbk", "WP_0001.gbk"},
		{"a b/c:d*e?.txt", "abcde.txt"},
		{"PMID_123.xml", "PMID_123.xml"},
		{"weird\x00null", "weirdnull"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollectionDirCreated(t *testing.T) {
	m := newTestManager(t)

	dir, err := m.CollectionDir("nucleotide")
	if err != nil {
		t.Fatalf("CollectionDir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("Collection directory not created: %v", err)
	}
}
