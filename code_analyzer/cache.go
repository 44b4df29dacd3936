package code_analyzer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/zeebo/xxh3"
)

const cacheFileSuffix = ".cache"

// CacheEntry is one gob-encoded analysis result plus the source file state it was built from.
type CacheEntry struct {
	File      *models.ProjectFile
	Timestamp time.Time
	FileSize  int64
	ModTime   time.Time
}

// FileCache stores entries under cacheDir, invalidated when the source file's mtime or size changes.
type FileCache struct {
	cacheDir string
	mutex    sync.RWMutex
}

type CacheStats struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	LastResetTime time.Time
	mutex         sync.RWMutex
}

// CacheManager caches analyzed ProjectFile records across scans.
type CacheManager struct {
	fileCache *FileCache
	stats     *CacheStats
}

// NewCacheManager creates the cache directory if needed.
func NewCacheManager(cacheDir string) (*CacheManager, error) {
	gob.Register(&models.ProjectFile{})

	if cacheDir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &CacheManager{
		fileCache: &FileCache{cacheDir: cacheDir},
		stats:     &CacheStats{LastResetTime: time.Now()},
	}, nil
}

func (fc *FileCache) cachePath(filePath string) string {
	return filepath.Join(fc.cacheDir, fmt.Sprintf("%016x%s", xxh3.HashString(filePath), cacheFileSuffix))
}

func (fc *FileCache) isFileChanged(filePath string, entry *CacheEntry) (bool, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return true, err
	}
	return !fileInfo.ModTime().Equal(entry.ModTime) || fileInfo.Size() != entry.FileSize, nil
}

// Get returns the cached entry if the source file is unchanged. Stale entries are removed.
func (fc *FileCache) Get(filePath string) (*CacheEntry, bool) {
	fc.mutex.RLock()
	defer fc.mutex.RUnlock()

	cachePath := fc.cachePath(filePath)
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}

	var entry CacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		return nil, false
	}

	changed, err := fc.isFileChanged(filePath, &entry)
	if err != nil || changed {
		_ = os.Remove(cachePath)
		return nil, false
	}

	return &entry, true
}

// Set stores file metadata together with the source file's current mtime and size.
func (fc *FileCache) Set(filePath string, file *models.ProjectFile) error {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}

	entry := CacheEntry{
		File:      file,
		Timestamp: time.Now(),
		FileSize:  fileInfo.Size(),
		ModTime:   fileInfo.ModTime(),
	}

	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(entry); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := os.WriteFile(fc.cachePath(filePath), buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

func (fc *FileCache) Delete(filePath string) error {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	if err := os.Remove(fc.cachePath(filePath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// GetProjectFile returns a cached analysis for an unchanged file.
func (cm *CacheManager) GetProjectFile(filePath string) (*models.ProjectFile, bool) {
	entry, found := cm.fileCache.Get(filePath)
	if !found || entry.File == nil {
		cm.recordCacheMiss()
		return nil, false
	}
	cm.recordCacheHit()
	return entry.File, true
}

func (cm *CacheManager) SetProjectFile(filePath string, file *models.ProjectFile) error {
	return cm.fileCache.Set(filePath, file)
}

func (cm *CacheManager) Invalidate(filePath string) error {
	return cm.fileCache.Delete(filePath)
}

// ClearCache removes all cache files and recreates the directory.
func (cm *CacheManager) ClearCache() error {
	cm.fileCache.mutex.Lock()
	defer cm.fileCache.mutex.Unlock()

	if err := os.RemoveAll(cm.fileCache.cacheDir); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	if err := os.MkdirAll(cm.fileCache.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to recreate cache directory: %w", err)
	}
	cm.ResetPerformanceStats()
	return nil
}

// CleanExpiredCache removes entries older than maxAge and returns how many were removed.
func (cm *CacheManager) CleanExpiredCache(maxAge time.Duration) (int, error) {
	cm.fileCache.mutex.Lock()
	defer cm.fileCache.mutex.Unlock()

	entries, err := os.ReadDir(cm.fileCache.cacheDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), cacheFileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(cm.fileCache.cacheDir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// CacheUsage summarizes the on-disk footprint, largest files first.
type CacheUsage struct {
	Dir        string
	Files      int
	TotalBytes int64
	Largest    []string
}

func (cm *CacheManager) GetCacheUsage() (*CacheUsage, error) {
	entries, err := os.ReadDir(cm.fileCache.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	type sized struct {
		name string
		size int64
	}
	var files []sized
	usage := &CacheUsage{Dir: cm.fileCache.cacheDir}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		usage.Files++
		usage.TotalBytes += info.Size()
		files = append(files, sized{e.Name(), info.Size()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].size > files[j].size })
	for i := 0; i < len(files) && i < 5; i++ {
		usage.Largest = append(usage.Largest, files[i].name)
	}
	return usage, nil
}
