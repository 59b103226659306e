package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPathManager implements path management functionality
type DefaultPathManager struct {
	root string
}

// NewDefaultPathManager creates a path manager rooted at "results"
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{root: "results"}
}

// GetDefaultOutputDir returns results/<SYMBOL>
func (p *DefaultPathManager) GetDefaultOutputDir(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		s = "UNKNOWN"
	}
	return filepath.Join(p.root, s)
}

// AnalysisFileName returns the augmented frame file name of a symbol
func AnalysisFileName(symbol string) string {
	s := strings.TrimSpace(symbol)
	if s == "" {
		s = "series"
	}
	return fmt.Sprintf("%s_analysis.csv", s)
}

// EnsureDirectoryExists creates the parent directory of path
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// DefaultOutputDir is the package-level form of GetDefaultOutputDir
func DefaultOutputDir(symbol string) string {
	return NewDefaultPathManager().GetDefaultOutputDir(symbol)
}
