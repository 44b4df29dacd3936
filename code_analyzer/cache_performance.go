package code_analyzer

import (
	"time"
)

func (cm *CacheManager) recordCacheHit() {
	if cm.stats == nil {
		return
	}
	cm.stats.mutex.Lock()
	defer cm.stats.mutex.Unlock()
	cm.stats.TotalRequests++
	cm.stats.CacheHits++
}

func (cm *CacheManager) recordCacheMiss() {
	if cm.stats == nil {
		return
	}
	cm.stats.mutex.Lock()
	defer cm.stats.mutex.Unlock()
	cm.stats.TotalRequests++
	cm.stats.CacheMisses++
}

// PerformanceStats is a copy of the hit/miss counters.
type PerformanceStats struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	HitRate       float64
	Uptime        time.Duration
}

func (cm *CacheManager) GetPerformanceStats() PerformanceStats {
	if cm.stats == nil {
		return PerformanceStats{}
	}

	cm.stats.mutex.RLock()
	defer cm.stats.mutex.RUnlock()

	stats := PerformanceStats{
		TotalRequests: cm.stats.TotalRequests,
		CacheHits:     cm.stats.CacheHits,
		CacheMisses:   cm.stats.CacheMisses,
		Uptime:        time.Since(cm.stats.LastResetTime),
	}
	if stats.TotalRequests > 0 {
		stats.HitRate = float64(stats.CacheHits) / float64(stats.TotalRequests) * 100
	}
	return stats
}

func (cm *CacheManager) ResetPerformanceStats() {
	if cm.stats == nil {
		return
	}
	cm.stats.mutex.Lock()
	defer cm.stats.mutex.Unlock()

	cm.stats.TotalRequests = 0
	cm.stats.CacheHits = 0
	cm.stats.CacheMisses = 0
	cm.stats.LastResetTime = time.Now()
}
