package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// gitignoreCacheEntry holds cached gitignore patterns with metadata
type gitignoreCacheEntry struct {
	patterns []string
	modTime  time.Time
}

var (
	gitignoreCache = make(map[string]*gitignoreCacheEntry)
	cacheMutex     sync.RWMutex
)

// ignoredDirs are never scanned: build output, dependencies, VCS and tool state.
var ignoredDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"coverage":     true,
	".git":         true,
	".svn":         true,
	".next":        true,
	".vite":        true,
	".turbo":       true,
	".cache":       true,
	".idea":        true,
	".vscode":      true,
	".reactforge":  true,
}

// vendoredUIDirs hold generated third-party UI primitives (shadcn and similar).
var vendoredUIDirs = []string{
	"components/ui/",
	"src/components/ui/",
	"src/ui/",
	"vendor/",
}

// GetGitignorePatterns reads the project's .gitignore, cached by mtime.
// A missing file yields no patterns.
func GetGitignorePatterns(cwd string) ([]string, error) {
	gitignorePath := filepath.Join(cwd, ".gitignore")

	fileInfo, err := os.Stat(gitignorePath)
	if os.IsNotExist(err) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking .gitignore: %w", err)
	}

	cacheMutex.RLock()
	if cached, exists := gitignoreCache[gitignorePath]; exists && fileInfo.ModTime().Equal(cached.modTime) {
		cacheMutex.RUnlock()
		return cached.patterns, nil
	}
	cacheMutex.RUnlock()

	patterns, err := readGitignore(gitignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}

	cacheMutex.Lock()
	gitignoreCache[gitignorePath] = &gitignoreCacheEntry{patterns: patterns, modTime: fileInfo.ModTime()}
	cacheMutex.Unlock()

	return patterns, nil
}

// IsDefaultIgnored reports whether any segment of a slash-separated relative
// path is an ignored directory.
func IsDefaultIgnored(relativePath string) bool {
	for _, part := range strings.Split(relativePath, "/") {
		if ignoredDirs[strings.ToLower(part)] {
			return true
		}
	}
	return false
}

// IsVendoredUIPath reports whether the path follows a vendored UI-library directory convention.
func IsVendoredUIPath(relativePath string) bool {
	p := strings.ToLower(relativePath)
	for _, dir := range vendoredUIDirs {
		if strings.HasPrefix(p, dir) {
			return true
		}
	}
	return false
}

func readGitignore(gitignorePath string) ([]string, error) {
	content, err := os.ReadFile(gitignorePath)
	if err != nil {
		return nil, err
	}
	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "!") {
			patterns = append(patterns, line)
		}
	}
	return patterns, nil
}

// IsGitIgnored matches a slash-separated relative path against gitignore patterns.
func IsGitIgnored(relativePath string, patterns []string) bool {
	base := path.Base(relativePath)
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(pattern, "/")
		if strings.HasSuffix(pattern, "/") {
			dir := strings.TrimSuffix(pattern, "/")
			if relativePath == dir || strings.HasPrefix(relativePath, pattern) || strings.Contains(relativePath, "/"+pattern) {
				return true
			}
			continue
		}
		if match, _ := path.Match(pattern, relativePath); match {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if match, _ := path.Match(pattern, base); match {
				return true
			}
		}
	}
	return false
}

// ClearGitignoreCache clears all cached gitignore patterns
func ClearGitignoreCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	gitignoreCache = make(map[string]*gitignoreCacheEntry)
}
