// Package failure persists durable descriptors for pages whose fetch
// exhausted its retries, so a later run can resume exactly those pages.
package failure

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	descriptorFilePattern = regexp.MustCompile(`^error_batch_(\d+)\.txt$`)
	recordRangePattern    = regexp.MustCompile(`Record range:\s*(\d+)-(\d+)`)
)

// Descriptor records one failed page: which 1-based records it covered
// and what the final error was
type Descriptor struct {
	Collection  string
	Page        int // 1-based page (batch) number
	FirstRecord int // 1-based position of the first record in the page
	LastRecord  int // 1-based position of the last record in the page
	Message     string
	OccurredAt  time.Time
}

// RecordCount returns the number of records the failed page covered
func (d *Descriptor) RecordCount() int {
	return d.LastRecord - d.FirstRecord + 1
}

// Filename returns the descriptor's file name within its collection directory
func (d *Descriptor) Filename() string {
	return fmt.Sprintf("error_batch_%d.txt", d.Page)
}

// Store reads and writes failure descriptors inside one collection directory
type Store struct {
	dir string
}

// NewStore creates a descriptor store rooted at a collection directory
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file path a descriptor for the given page would use
func (s *Store) Path(page int) string {
	return filepath.Join(s.dir, fmt.Sprintf("error_batch_%d.txt", page))
}

// Write persists a descriptor, overwriting any previous descriptor for the
// same page
func (s *Store) Write(d *Descriptor) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create descriptor directory: %w", err)
	}

	if d.OccurredAt.IsZero() {
		d.OccurredAt = time.Now()
	}

	var b strings.Builder
	b.WriteString("# Harvest error\n")
	fmt.Fprintf(&b, "# Collection: %s\n", d.Collection)
	fmt.Fprintf(&b, "# Batch: %d\n", d.Page)
	fmt.Fprintf(&b, "# Record range: %d-%d\n", d.FirstRecord, d.LastRecord)
	fmt.Fprintf(&b, "# Time: %s\n", d.OccurredAt.Format(time.RFC3339))
	b.WriteString("# --------------------------------------------------\n")
	b.WriteString(d.Message)
	if !strings.HasSuffix(d.Message, "\n") {
		b.WriteString("\n")
	}

	path := s.Path(d.Page)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write failure descriptor: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename failure descriptor: %w", err)
	}

	return nil
}

// List returns every parseable descriptor in the store sorted by page,
// plus the file names of descriptors whose record range could not be
// recovered. A missing directory is an empty store, not an error.
func (s *Store) List() ([]*Descriptor, []string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read descriptor directory: %w", err)
	}

	var descriptors []*Descriptor
	var skipped []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := descriptorFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}

		page, err := strconv.Atoi(match[1])
		if err != nil {
			skipped = append(skipped, entry.Name())
			continue
		}

		d, err := s.read(entry.Name(), page)
		if err != nil {
			skipped = append(skipped, entry.Name())
			continue
		}
		descriptors = append(descriptors, d)
	}

	sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].Page < descriptors[j].Page })
	return descriptors, skipped, nil
}

// Delete removes the descriptor for a page. Deleting a descriptor that does
// not exist is not an error.
func (s *Store) Delete(page int) error {
	err := os.Remove(s.Path(page))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete failure descriptor: %w", err)
	}
	return nil
}

func (s *Store) read(name string, page int) (*Descriptor, error) {
	content, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}

	match := recordRangePattern.FindStringSubmatch(string(content))
	if match == nil {
		return nil, fmt.Errorf("descriptor %s has no record range", name)
	}

	first, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, err
	}
	last, err := strconv.Atoi(match[2])
	if err != nil {
		return nil, err
	}
	if first < 1 || last < first {
		return nil, fmt.Errorf("descriptor %s has invalid record range %d-%d", name, first, last)
	}

	d := &Descriptor{
		Collection:  filepath.Base(s.dir),
		Page:        page,
		FirstRecord: first,
		LastRecord:  last,
	}

	for _, line := range strings.Split(string(content), "\n") {
		if rest, ok := strings.CutPrefix(line, "# Time: "); ok {
			if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(rest)); err == nil {
				d.OccurredAt = ts
			}
		}
	}

	if idx := strings.Index(string(content), "# ----"); idx >= 0 {
		rest := string(content)[idx:]
		if nl := strings.Index(rest, "\n"); nl >= 0 {
			d.Message = strings.TrimSpace(rest[nl+1:])
		}
	}

	return d, nil
}
