// Package store provides result store implementations keyed by email hash.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
)

// MemoryStore is an in-memory implementation of core.ResultStore, used for
// tests and single-instance deployments.
type MemoryStore struct {
	byHash    map[string]*core.AnalysisResult
	mu        sync.RWMutex
	logger    *zap.Logger
	retention time.Duration
	stopCh    chan struct{}
}

// NewMemoryStore creates an in-memory result store. Results older than
// retention are swept in the background.
func NewMemoryStore(logger *zap.Logger, retention, cleanupFreq time.Duration) *MemoryStore {
	s := &MemoryStore{
		byHash:    make(map[string]*core.AnalysisResult),
		logger:    logger,
		retention: retention,
		stopCh:    make(chan struct{}),
	}
	go s.startCleanupTask(cleanupFreq)
	return s
}

// FindByHash returns the stored result for a hash, or nil when absent.
func (s *MemoryStore) FindByHash(_ context.Context, hash string) (*core.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.byHash[hash]
	if !ok {
		return nil, nil
	}
	copied := *result
	return &copied, nil
}

// Save stores a result, replacing any previous result with the same hash.
func (s *MemoryStore) Save(_ context.Context, result *core.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *result
	s.byHash[result.EmailHash] = &copied
	return nil
}

// RecentThreats lists non-SAFE results newer than since, newest first.
func (s *MemoryStore) RecentThreats(_ context.Context, since time.Time, limit int) ([]core.ThreatSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threats := make([]core.ThreatSummary, 0)
	for _, result := range s.byHash {
		if result.Verdict == core.VerdictSafe || result.Timestamp.Before(since) {
			continue
		}
		threats = append(threats, core.ThreatSummary{
			ID:        result.ID,
			Timestamp: result.Timestamp,
			Sender:    result.Artifacts.Sender,
			Subject:   result.Artifacts.Subject,
			Verdict:   result.Verdict,
			RiskScore: result.RiskScore,
		})
	}
	sort.Slice(threats, func(i, j int) bool {
		return threats[i].Timestamp.After(threats[j].Timestamp)
	})
	if limit > 0 && len(threats) > limit {
		threats = threats[:limit]
	}
	return threats, nil
}

// Stats computes the aggregate counts for the day containing the given time.
func (s *MemoryStore) Stats(_ context.Context, day time.Time) (*core.DailyStats, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &core.DailyStats{}
	for _, result := range s.byHash {
		if result.Timestamp.Before(start) || !result.Timestamp.Before(end) {
			continue
		}
		stats.TotalEmails++
		switch result.Verdict {
		case core.VerdictMalicious:
			stats.MaliciousCount++
		case core.VerdictSuspicious:
			stats.SuspiciousCount++
		}
	}
	return stats, nil
}

// UpdateDailyStats is a no-op: the memory store computes stats on read.
func (s *MemoryStore) UpdateDailyStats(_ context.Context) error {
	return nil
}

func (s *MemoryStore) startCleanupTask(freq time.Duration) {
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-s.retention)
			s.mu.Lock()
			removed := 0
			for hash, result := range s.byHash {
				if result.Timestamp.Before(cutoff) {
					delete(s.byHash, hash)
					removed++
				}
			}
			s.mu.Unlock()
			if removed > 0 {
				s.logger.Debug("Removed expired analysis results", zap.Int("removed", removed))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task.
func (s *MemoryStore) Stop() {
	close(s.stopCh)
}
