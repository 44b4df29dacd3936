package code_analyzer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/meysamhadeli/reactforge/code_analyzer/contracts"
	"github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/utils"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

const maxSourceFileSize = 200 * 1024

var sourceExtensions = map[string]bool{
	".tsx": true, ".ts": true, ".jsx": true, ".js": true, ".mjs": true, ".cjs": true,
	".css": true, ".scss": true, ".sass": true, ".less": true, ".html": true,
}

var vendoredImportSources = []string{"@radix-ui/", "@headlessui/", "class-variance-authority", "@ark-ui/"}

// CodeAnalyzer builds project snapshots from the working tree.
type CodeAnalyzer struct {
	cacheManager *CacheManager
}

// NewCodeAnalyzer creates an analyzer. An empty cacheDir disables the parse cache.
func NewCodeAnalyzer(cacheDir string) contracts.ICodeAnalyzer {
	analyzer := &CodeAnalyzer{}
	if cacheDir != "" {
		cacheManager, err := NewCacheManager(cacheDir)
		if err != nil {
			logrus.Warnf("Failed to initialize parse cache: %v", err)
		} else {
			analyzer.cacheManager = cacheManager
		}
	}
	return analyzer
}

// BuildSnapshot scans rootDir for source files. Unreadable files are skipped
// with a warning; a missing or empty root yields an empty snapshot.
func (analyzer *CodeAnalyzer) BuildSnapshot(ctx context.Context, rootDir string) (*models.ProjectSnapshot, error) {
	snapshot := models.NewProjectSnapshot(rootDir)

	if _, err := os.Stat(rootDir); os.IsNotExist(err) {
		return snapshot, nil
	}

	gitIgnorePatterns, err := utils.GetGitignorePatterns(rootDir)
	if err != nil {
		logrus.Warnf("Ignoring unreadable .gitignore: %v", err)
	}

	err = filepath.WalkDir(rootDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logrus.WithField("file", p).Warnf("Skipping unreadable path: %v", err)
			if d != nil && d.IsDir() && p != rootDir {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relativePath, relErr := filepath.Rel(rootDir, p)
		if relErr != nil || relativePath == "." {
			return nil
		}
		relativePath = filepath.ToSlash(relativePath)

		if utils.IsDefaultIgnored(relativePath) || utils.IsGitIgnored(relativePath, gitIgnorePatterns) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isSourceFile(relativePath) || utils.IsVendoredUIPath(relativePath) {
			return nil
		}

		file, err := analyzer.AnalyzeFile(ctx, rootDir, relativePath)
		if err != nil {
			logrus.WithField("file", relativePath).Warnf("Skipping file: %v", err)
			return nil
		}
		if file == nil {
			return nil
		}
		snapshot.Files[relativePath] = file
		return nil
	})
	if err != nil {
		return snapshot, err
	}

	snapshot.BuiltAt = time.Now()
	return snapshot, nil
}

// RefreshFiles replaces the records for the given paths; deleted files are dropped.
func (analyzer *CodeAnalyzer) RefreshFiles(ctx context.Context, snapshot *models.ProjectSnapshot, relativePaths []string) error {
	for _, rel := range relativePaths {
		rel = filepath.ToSlash(rel)
		file, err := analyzer.AnalyzeFile(ctx, snapshot.RootDir, rel)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				delete(snapshot.Files, rel)
				continue
			}
			return err
		}
		if file == nil {
			delete(snapshot.Files, rel)
			continue
		}
		snapshot.Files[rel] = file
	}
	snapshot.BuiltAt = time.Now()
	return nil
}

// AnalyzeFile reads and classifies one file. It returns nil, nil for files that
// are excluded from the snapshot (oversized or vendored UI code).
func (analyzer *CodeAnalyzer) AnalyzeFile(ctx context.Context, rootDir string, relativePath string) (*models.ProjectFile, error) {
	absPath := filepath.Join(rootDir, filepath.FromSlash(relativePath))

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) && analyzer.cacheManager != nil {
			_ = analyzer.cacheManager.Invalidate(absPath)
		}
		return nil, err
	}
	if info.Size() > maxSourceFileSize {
		return nil, nil
	}

	if analyzer.cacheManager != nil {
		if cached, found := analyzer.cacheManager.GetProjectFile(absPath); found {
			cached.Path = absPath
			return cached, nil
		}
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %s, error: %w", relativePath, err)
	}

	file := analyzer.describe(ctx, absPath, relativePath, content, info)
	if file == nil {
		return nil, nil
	}

	if analyzer.cacheManager != nil {
		if err := analyzer.cacheManager.SetProjectFile(absPath, file); err != nil {
			logrus.WithField("file", relativePath).Debugf("parse cache write failed: %v", err)
		}
	}
	return file, nil
}

func (analyzer *CodeAnalyzer) describe(ctx context.Context, absPath, relativePath string, content []byte, info fs.FileInfo) *models.ProjectFile {
	text := string(content)
	file := &models.ProjectFile{
		Path:         absPath,
		RelativePath: relativePath,
		Content:      text,
		Lines:        strings.Count(text, "\n") + 1,
		ContentHash:  xxh3.Hash(content),
		ModTime:      info.ModTime(),
		Size:         info.Size(),
		IsMainFile:   isMainFile(relativePath),
		HasButtons:   strings.Contains(text, "<button") || strings.Contains(text, "<Button") || strings.Contains(text, `role="button"`),
		HasSignIn:    signInPattern.MatchString(text),
	}

	if file.IsScript() {
		outline := ExtractOutline(ctx, relativePath, content)
		file.Imports = outline.Imports
		file.Exports = outline.Exports
		file.Dependencies = outline.Dependencies
		file.ComponentName = outline.ComponentName

		if isVendoredUIFile(relativePath, outline.Dependencies) {
			logrus.WithField("file", relativePath).Debug("excluding vendored UI file")
			return nil
		}

		if nodes, err := ParseJSXNodes(ctx, relativePath, content); err == nil {
			file.Elements = nodes
		}
	}

	file.FileType = classify(file)
	return file
}

func (analyzer *CodeAnalyzer) ParseJSXNodes(ctx context.Context, relativePath string, content []byte) ([]models.JSXNode, error) {
	return ParseJSXNodes(ctx, relativePath, content)
}

func (analyzer *CodeAnalyzer) RankFiles(snapshot *models.ProjectSnapshot, prompt string, limit int) []*models.ProjectFile {
	return RankFiles(snapshot, prompt, limit)
}

func (analyzer *CodeAnalyzer) ClearCache() error {
	if analyzer.cacheManager == nil {
		return nil
	}
	return analyzer.cacheManager.ClearCache()
}

// CleanExpiredCache drops parse results older than maxAge.
func (analyzer *CodeAnalyzer) CleanExpiredCache(maxAge time.Duration) (int, error) {
	if analyzer.cacheManager == nil {
		return 0, nil
	}
	return analyzer.cacheManager.CleanExpiredCache(maxAge)
}

func (analyzer *CodeAnalyzer) GetCacheStats() (map[string]interface{}, error) {
	stats := map[string]interface{}{"cache_enabled": analyzer.cacheManager != nil}
	if analyzer.cacheManager == nil {
		return stats, nil
	}

	usage, err := analyzer.cacheManager.GetCacheUsage()
	if err != nil {
		return nil, err
	}
	performance := analyzer.cacheManager.GetPerformanceStats()

	stats["cache_dir"] = usage.Dir
	stats["cache_files"] = usage.Files
	stats["total_size"] = usage.TotalBytes
	stats["largest_files"] = usage.Largest
	stats["hit_rate"] = performance.HitRate
	stats["requests"] = performance.TotalRequests
	return stats, nil
}

func isSourceFile(relativePath string) bool {
	return sourceExtensions[strings.ToLower(path.Ext(relativePath))]
}

// isMainFile matches the App entry component at the source root.
func isMainFile(relativePath string) bool {
	dir, base := path.Split(relativePath)
	dir = strings.TrimSuffix(dir, "/")
	if dir != "" && dir != "src" && dir != "app" && dir != "src/app" {
		return false
	}
	switch strings.ToLower(base) {
	case "app.tsx", "app.jsx", "app.js":
		return true
	}
	return false
}

// isVendoredUIFile detects generated UI primitives: lowercase file names that
// import from headless UI libraries.
func isVendoredUIFile(relativePath string, dependencies []string) bool {
	base := path.Base(relativePath)
	if base == "" || base[0] < 'a' || base[0] > 'z' {
		return false
	}
	for _, dep := range dependencies {
		for _, src := range vendoredImportSources {
			if strings.HasPrefix(dep, src) {
				return true
			}
		}
	}
	return false
}

func classify(file *models.ProjectFile) models.FileType {
	rel := strings.ToLower(file.RelativePath)
	base := path.Base(rel)
	ext := path.Ext(rel)

	switch {
	case ext == ".css" || ext == ".scss" || ext == ".sass" || ext == ".less":
		return models.FileTypeStyle
	case strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") || strings.Contains(rel, "__tests__/"):
		return models.FileTypeTest
	case strings.Contains(base, ".config.") || strings.HasPrefix(base, "vite-env") || base == "index.html":
		return models.FileTypeConfig
	case strings.Contains(rel, "/pages/") || strings.HasPrefix(rel, "pages/") || strings.Contains(rel, "/views/") || strings.HasPrefix(base, "page."):
		return models.FileTypePage
	case file.IsScript() && (file.ComponentName != "" || strings.Contains(rel, "components/")):
		return models.FileTypeComponent
	}
	return models.FileTypeOther
}
