package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/koweyli/vantage-console/internal/logger"
	"github.com/koweyli/vantage-console/internal/metrics"
	"github.com/koweyli/vantage-console/internal/models"
)

const auditDocument = "audit_logs"

// MaxAuditEntries bounds the log: inserts beyond it drop the oldest entries.
const MaxAuditEntries = 1000

// AuditFilter selects entries for Query, All and the export pipeline. Nil or
// zero fields are not applied; date bounds are inclusive.
type AuditFilter struct {
	UserID *int
	Module string
	Action string
	Start  *time.Time
	End    *time.Time
}

// AuditStore owns the newest-first entry list, mirrored to the snapshotter on
// every mutation and truncated to MaxAuditEntries.
type AuditStore struct {
	mu      sync.Mutex
	entries []models.AuditEntry
	snap    Snapshotter
}

// NewAuditStore loads the persisted log; a missing snapshot starts empty.
func NewAuditStore(snap Snapshotter) (*AuditStore, error) {
	s := &AuditStore{snap: snap}
	var entries []models.AuditEntry
	if err := snap.Load(auditDocument, &entries); err != nil && err != ErrNoSnapshot {
		return nil, fmt.Errorf("load audit log: %w", err)
	}
	s.entries = entries
	return s, nil
}

func (s *AuditStore) persist() {
	if err := s.snap.Save(auditDocument, s.entries); err != nil {
		metrics.IncSnapshotFailure()
		logger.WithError(err).Warn("audit snapshot failed, in-memory entries may be lost on restart")
	}
}

// Flush re-persists the current state and reports the outcome.
func (s *AuditStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Save(auditDocument, s.entries)
}

// Insert prepends the entry and truncates the log to its bound.
func (s *AuditStore) Insert(e models.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]models.AuditEntry{e}, s.entries...)
	if len(s.entries) > MaxAuditEntries {
		s.entries = s.entries[:MaxAuditEntries]
	}
	s.persist()
}

// Len returns the current entry count.
func (s *AuditStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Query applies the filter chain and paginates with a 1-based page. It
// returns the page slice and the filtered total.
func (s *AuditStore) Query(f AuditFilter, page, limit int) ([]models.AuditEntry, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.filter(f)
	total := len(filtered)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= total {
		return []models.AuditEntry{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return filtered[start:end], total
}

// All applies the filter chain without pagination, for export.
func (s *AuditStore) All(f AuditFilter) []models.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(f)
}

// filter must be called with the lock held. It returns copies, newest first.
func (s *AuditStore) filter(f AuditFilter) []models.AuditEntry {
	out := make([]models.AuditEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if f.UserID != nil && e.UserID != *f.UserID {
			continue
		}
		if f.Module != "" && e.Module != f.Module {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.Start != nil || f.End != nil {
			ts, err := time.Parse(time.RFC3339, e.Timestamp)
			if err != nil {
				// Unparseable stamps never match a date-bounded query.
				continue
			}
			if f.Start != nil && ts.Before(*f.Start) {
				continue
			}
			if f.End != nil && ts.After(*f.End) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// Stats summarizes activity for one user, or for everyone when userID is nil.
func (s *AuditStore) Stats(userID *int) models.AuditStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := time.Now().UTC().Format("2006-01-02")
	actions := map[string]int{}
	modules := map[string]int{}
	stats := models.AuditStats{
		RecentActions: []models.ActionCount{},
		ModuleStats:   []models.ModuleCount{},
	}

	for _, e := range s.entries {
		if userID != nil && e.UserID != *userID {
			continue
		}
		stats.TotalActions++
		if strings.HasPrefix(e.Timestamp, today) {
			stats.TodayActions++
		}
		actions[e.Action]++
		modules[e.Module]++
	}

	for action, count := range actions {
		stats.RecentActions = append(stats.RecentActions, models.ActionCount{Action: action, Count: count})
	}
	for module, count := range modules {
		stats.ModuleStats = append(stats.ModuleStats, models.ModuleCount{Module: module, Count: count})
	}
	// Map iteration order is random; sort for a stable payload.
	sort.Slice(stats.RecentActions, func(i, j int) bool {
		a, b := stats.RecentActions[i], stats.RecentActions[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Action < b.Action
	})
	sort.Slice(stats.ModuleStats, func(i, j int) bool {
		a, b := stats.ModuleStats[i], stats.ModuleStats[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Module < b.Module
	})
	return stats
}

// Delete removes a single entry by id and returns it.
func (s *AuditStore) Delete(id string) (models.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.persist()
			return e, nil
		}
	}
	return models.AuditEntry{}, ErrLogNotFound
}

// DeleteMany removes every entry whose id is in ids, returning the count.
func (s *AuditStore) DeleteMany(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	deleted := len(s.entries) - len(kept)
	s.entries = kept
	if deleted > 0 {
		s.persist()
	}
	return deleted
}
