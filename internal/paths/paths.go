// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}

// ValidatePath rejects empty paths and paths containing null bytes.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return &PathValidationError{Path: path, Reason: "path is empty"}
	}
	if strings.ContainsRune(path, 0) {
		return &PathValidationError{Path: path, Reason: "contains null byte"}
	}
	return nil
}

// ValidateInputDir checks that dir exists and is a directory.
func ValidateInputDir(dir string) error {
	if err := ValidatePath(dir); err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return &PathValidationError{Path: dir, Reason: err.Error()}
	}
	if !info.IsDir() {
		return &PathValidationError{Path: dir, Reason: "not a directory"}
	}
	return nil
}

// SplitPatterns splits a comma-separated list of glob patterns.
func SplitPatterns(list string) []string {
	var out []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CollectInputs returns the regular files directly inside dir whose base
// name matches any of the patterns, sorted by name. A positive limit keeps
// only the first limit files after sorting.
func CollectInputs(dir string, patterns []string, limit int) ([]string, error) {
	if err := ValidateInputDir(dir); err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no file pattern given")
	}

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			if info, err := os.Stat(m); err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}

	sort.Strings(files)
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}
