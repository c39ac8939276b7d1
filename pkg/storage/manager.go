package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// invalidFilenameChars are replaced with '_' when deriving an on-disk name
const invalidFilenameChars = `<>:"/\|?*`

// SanitizeFilename replaces characters invalid in file names with '_'.
// Distinct titles can collide after sanitization; the first one written wins.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidFilenameChars, r) {
			return '_'
		}
		return r
	}, name)
}

// Manager handles file storage operations and duplicate detection
type Manager struct {
	outputDir string
	existing  map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a new storage manager. The output directory is created
// if absent and scanned for files downloaded by previous runs.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		existing:  make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles records files already present in the output directory
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			m.existing[entry.Name()] = true
		}
	}

	return nil
}

// Exists checks if a file with the given sanitized name is already on disk
func (m *Manager) Exists(fileName string) bool {
	m.mu.RLock()
	known := m.existing[fileName]
	m.mu.RUnlock()

	if known {
		return true
	}

	// Double-check the filesystem in case the file appeared after the scan
	path := filepath.Join(m.outputDir, fileName)
	if _, err := os.Stat(path); err == nil {
		m.mu.Lock()
		m.existing[fileName] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// Save writes file content under the given sanitized name. The data is
// written to a temporary file first and moved into place with an atomic
// rename, so a partial download never shadows a future retry.
func (m *Manager) Save(r io.Reader, fileName string) error {
	path := filepath.Join(m.outputDir, fileName)

	tempPath := path + ".tmp"
	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write file data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.existing[fileName] = true
	m.mu.Unlock()

	return nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// Count returns the number of files known to be on disk
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.existing)
}
