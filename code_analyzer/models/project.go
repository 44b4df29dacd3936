package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type FileType string

const (
	FileTypeComponent FileType = "component"
	FileTypePage      FileType = "page"
	FileTypeConfig    FileType = "config"
	FileTypeStyle     FileType = "style"
	FileTypeTest      FileType = "test"
	FileTypeOther     FileType = "other"
)

// ProjectFile is one scanned source file. A rescan replaces the whole record.
type ProjectFile struct {
	Path          string
	RelativePath  string
	Content       string
	Lines         int
	FileType      FileType
	ContentHash   uint64
	ModTime       time.Time
	Size          int64
	HasButtons    bool
	HasSignIn     bool
	IsMainFile    bool
	ComponentName string
	Imports       []string
	Exports       []string
	Dependencies  []string
	Elements      []JSXNode
}

// IsScript reports whether the file is JS/TS source.
func (f *ProjectFile) IsScript() bool {
	switch strings.ToLower(extension(f.RelativePath)) {
	case ".tsx", ".jsx", ".ts", ".js", ".mjs", ".cjs":
		return true
	}
	return false
}

func extension(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 && !strings.Contains(path[i:], "/") {
		return path[i:]
	}
	return ""
}

// ProjectSnapshot maps relative paths to scanned files.
type ProjectSnapshot struct {
	RootDir string
	BuiltAt time.Time
	Files   map[string]*ProjectFile
}

func NewProjectSnapshot(rootDir string) *ProjectSnapshot {
	return &ProjectSnapshot{RootDir: rootDir, BuiltAt: time.Now(), Files: make(map[string]*ProjectFile)}
}

// IsEmpty signals that no project exists yet.
func (s *ProjectSnapshot) IsEmpty() bool {
	return s == nil || len(s.Files) == 0
}

func (s *ProjectSnapshot) Get(relativePath string) (*ProjectFile, bool) {
	if s == nil {
		return nil, false
	}
	f, ok := s.Files[relativePath]
	return f, ok
}

// Paths returns the relative paths in lexical order.
func (s *ProjectSnapshot) Paths() []string {
	if s == nil {
		return nil
	}
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// MainFile returns the app entry file, if one was detected.
func (s *ProjectSnapshot) MainFile() *ProjectFile {
	for _, p := range s.Paths() {
		if f := s.Files[p]; f.IsMainFile {
			return f
		}
	}
	return nil
}

// Summary renders a compact listing used as LLM context.
func (s *ProjectSnapshot) Summary() string {
	if s.IsEmpty() {
		return "(empty project)"
	}
	var b strings.Builder
	for _, p := range s.Paths() {
		f := s.Files[p]
		fmt.Fprintf(&b, "- %s [%s", p, f.FileType)
		if f.ComponentName != "" {
			fmt.Fprintf(&b, ", component %s", f.ComponentName)
		}
		if f.IsMainFile {
			b.WriteString(", main")
		}
		if f.HasButtons {
			b.WriteString(", buttons")
		}
		b.WriteString("]\n")
	}
	return b.String()
}
