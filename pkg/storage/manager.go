// Package storage persists harvested records, statistics reports and
// preview listings under one directory per collection.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entrezharvest/pkg/catalog"
	"entrezharvest/pkg/logger"
)

const headerSeparator = "# =================================================="

// Manager handles record file storage for all collections under a base
// directory. Record writes are keyed by identifier and idempotent:
// re-writing the same identifier overwrites the previous file.
type Manager struct {
	baseDir string
	logger  logger.Logger
}

// NewManager creates a new storage manager rooted at baseDir
func NewManager(baseDir string, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		baseDir: baseDir,
		logger:  log,
	}, nil
}

// BaseDir returns the base output directory
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// CollectionDir ensures and returns the directory for one collection
func (m *Manager) CollectionDir(collection string) (string, error) {
	dir := filepath.Join(m.baseDir, collection)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create collection directory: %w", err)
	}
	return dir, nil
}

// SaveRecord writes one record to its collection directory and returns the
// file size in bytes. The file begins with a comment header naming the
// collection, identifier, write time and format pair, followed by a
// separator line and the raw content with a trailing newline.
func (m *Manager) SaveRecord(collection, recordID, content string, format catalog.FormatPair) (int64, error) {
	dir, err := m.CollectionDir(collection)
	if err != nil {
		return 0, err
	}

	filename := SanitizeFilename(fmt.Sprintf("%s.%s", recordID, format.FileExtension()))
	path := filepath.Join(dir, filename)

	var b strings.Builder
	fmt.Fprintf(&b, "# Collection: %s\n", collection)
	fmt.Fprintf(&b, "# Record ID: %s\n", recordID)
	fmt.Fprintf(&b, "# Downloaded: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "# Format: %s (%s)\n", format.RetType, format.RetMode)
	b.WriteString(headerSeparator + "\n\n")
	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}

	// Write to a temp file and rename so a concurrent reader never sees a
	// half-written record
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, []byte(b.String()), 0644); err != nil {
		return 0, fmt.Errorf("failed to write record file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return 0, fmt.Errorf("failed to rename record file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat record file: %w", err)
	}

	return info.Size(), nil
}

// SanitizeFilename strips every character outside [A-Za-z0-9._-]
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '.' || c == '_' || c == '-' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
