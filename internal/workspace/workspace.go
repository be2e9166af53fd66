package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
)

// Manager handles one ephemeral workspace directory.
type Manager struct {
	baseDir string
	dir     string
	now     func() time.Time
}

// NewManager creates a workspace manager rooted at baseDir (os.TempDir when empty).
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir, now: time.Now}
}

// Create makes a fresh timestamped directory, e.g. arxivbuilder-20251214-122336-123456.
func (m *Manager) Create() error {
	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace base directory: %w", err)
	}
	pattern := fmt.Sprintf("arxivbuilder-%s-*", m.now().Format("20060102-150405"))
	dir, err := os.MkdirTemp(m.baseDir, pattern)
	if err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.dir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// GetPath returns the path to the workspace directory, empty before Create.
func (m *Manager) GetPath() string {
	return m.dir
}

// CreateSubdir creates a subdirectory within the workspace.
func (m *Manager) CreateSubdir(name string) (string, error) {
	if m.dir == "" {
		return "", fmt.Errorf("workspace not created")
	}
	subdir := filepath.Join(m.dir, name)
	if err := os.MkdirAll(subdir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}
	return subdir, nil
}

// Cleanup removes the workspace directory. It is safe to call more than once.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}
