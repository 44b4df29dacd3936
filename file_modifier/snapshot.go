package file_modifier

import (
	"context"

	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/sirupsen/logrus"
)

// loadSnapshot prefers the in-memory snapshot, then the session cache
// refreshed for files changed on disk, then a fresh scan. Scan errors leave
// an empty snapshot.
func (m *FileModifier) loadSnapshot(ctx context.Context) *codeModels.ProjectSnapshot {
	s := m.session
	if snapshot := s.Snapshot(); snapshot != nil {
		return snapshot
	}

	log := logrus.WithField("session", s.ID)
	if snapshot, stale, ok := s.cachedSnapshot(ctx); ok && m.deps.Analyzer != nil {
		if len(stale) == 0 {
			s.setSnapshot(ctx, snapshot)
			return snapshot
		}
		err := m.deps.Analyzer.RefreshFiles(ctx, snapshot, stale)
		if err == nil {
			log.Debugf("refreshed %d stale cached file(s)", len(stale))
			s.setSnapshot(ctx, snapshot)
			return snapshot
		}
		log.Warnf("cached snapshot refresh failed, rescanning: %v", err)
	}

	return m.rebuildSnapshot(ctx)
}

func (m *FileModifier) rebuildSnapshot(ctx context.Context) *codeModels.ProjectSnapshot {
	s := m.session
	snapshot := codeModels.NewProjectSnapshot(s.BasePath)
	if m.deps.Analyzer != nil {
		built, err := m.deps.Analyzer.BuildSnapshot(ctx, s.BasePath)
		if err != nil {
			logrus.WithField("session", s.ID).Warnf("snapshot build failed: %v", err)
		}
		if built != nil {
			snapshot = built
		}
	}
	s.setSnapshot(ctx, snapshot)
	return snapshot
}

// refreshSnapshot re-reads the files a tier touched. Added files need a full
// rescan since they may change how other files are classified.
func (m *FileModifier) refreshSnapshot(ctx context.Context, snapshot *codeModels.ProjectSnapshot, result *models.StrategyResult) *codeModels.ProjectSnapshot {
	if len(result.AddedFiles) > 0 || snapshot == nil || m.deps.Analyzer == nil {
		return m.rebuildSnapshot(ctx)
	}
	if err := m.deps.Analyzer.RefreshFiles(ctx, snapshot, result.ModifiedFiles); err != nil {
		logrus.WithField("session", m.session.ID).Warnf("snapshot refresh failed, rescanning: %v", err)
		return m.rebuildSnapshot(ctx)
	}
	m.session.setSnapshot(ctx, snapshot)
	return snapshot
}
