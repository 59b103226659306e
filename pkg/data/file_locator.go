package data

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileLocator resolves <root>/<symbol>_data.csv, falling back to
// <root>/<symbol>.csv.
type DefaultFileLocator struct{}

// NewDefaultFileLocator creates a new default file locator
func NewDefaultFileLocator() *DefaultFileLocator {
	return &DefaultFileLocator{}
}

// FindDataFile returns the first existing candidate path
func (f *DefaultFileLocator) FindDataFile(dataRoot, symbol string) (string, error) {
	if symbol == "" {
		return "", fmt.Errorf("symbol is required to locate a data file")
	}
	candidates := []string{
		filepath.Join(dataRoot, symbol+"_data.csv"),
		filepath.Join(dataRoot, symbol+".csv"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("no data file for %s under %s (tried %v)", symbol, dataRoot, candidates)
}
