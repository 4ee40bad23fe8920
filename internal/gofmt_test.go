package internal

import (
	"bytes"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestGofmtCompliance verifies that all Go source files in the project
// are properly formatted according to gofmt standards.
//
// This test exists to catch formatting issues before code is committed.
// If this test fails, run: gofmt -w .
func TestGofmtCompliance(t *testing.T) {
	// Get the project root (parent of internal/)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	// Navigate to project root from internal/
	projectRoot := filepath.Dir(wd)
	if filepath.Base(wd) != "internal" {
		// We might be running from project root
		projectRoot = wd
	}

	var unformattedFiles []string

	err = filepath.Walk(projectRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip directories
		if info.IsDir() {
			// Skip vendor and hidden directories
			if info.Name() == "vendor" || strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		// Only check .go files
		if !strings.HasSuffix(path, ".go") {
			return nil
		}

		// Read the file
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		// Format the content
		formatted, err := format.Source(content)
		if err != nil {
			// Parse errors surface in the build, not here
			return nil
		}

		if !bytes.Equal(content, formatted) {
			rel, relErr := filepath.Rel(projectRoot, path)
			if relErr != nil {
				rel = path
			}
			unformattedFiles = append(unformattedFiles, rel)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk project tree: %v", err)
	}

	if len(unformattedFiles) > 0 {
		t.Errorf("The following files are not gofmt-formatted:\n  %s\nRun 'gofmt -w .' to fix.",
			strings.Join(unformattedFiles, "\n  "))
	}
}
