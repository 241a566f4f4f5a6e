package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sumforge/uniongen/internal/generator/emit"
)

// CleanResult lists what a clean pass removed.
type CleanResult struct {
	Removed []string
}

// Clean removes every generated union file and the skip cache from a
// package directory. Only files carrying the generated-code header are
// touched, so hand-written code with a matching name survives.
func Clean(dir string) (*CleanResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading package directory: %w", err)
	}

	result := &CleanResult{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return result, err
		}
		if !strings.HasPrefix(string(data), emit.Header) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return result, err
		}
		result.Removed = append(result.Removed, path)
	}

	cachePath := filepath.Join(dir, cacheFileName)
	if err := os.Remove(cachePath); err == nil {
		result.Removed = append(result.Removed, cachePath)
	} else if !os.IsNotExist(err) {
		return result, err
	}
	return result, nil
}
