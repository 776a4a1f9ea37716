package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ppiankov/factlens/internal/model"
)

// MemoryStore keeps every record in process memory
type MemoryStore struct {
	mu        sync.RWMutex
	analyses  map[string]model.AnalysisRecord
	bookmarks map[string]model.Bookmark
	alerts    map[string]model.AlertRule
	triggered map[string]model.TriggeredAlert
	profiles  map[string]model.Profile // by user id
	reports   map[string]model.Report
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		analyses:  make(map[string]model.AnalysisRecord),
		bookmarks: make(map[string]model.Bookmark),
		alerts:    make(map[string]model.AlertRule),
		triggered: make(map[string]model.TriggeredAlert),
		profiles:  make(map[string]model.Profile),
		reports:   make(map[string]model.Report),
	}
}

func (s *MemoryStore) SaveAnalysis(ctx context.Context, record *model.AnalysisRecord) error {
	if err := ctx.Err(); err != nil {
		return wrap("save analysis", err)
	}
	prepareAnalysis(record)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[record.ID] = *record
	return nil
}

func (s *MemoryStore) GetAnalysis(ctx context.Context, id string) (*model.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.analyses[id]
	if !ok {
		return nil, notFound("get analysis", "analysis", id)
	}
	return &r, nil
}

func (s *MemoryStore) RecentAnalyses(ctx context.Context, userID string, limit int) ([]model.AnalysisRecord, error) {
	return s.filterAnalyses(userID, limitOr(limit, DefaultRecentLimit), func(model.AnalysisRecord) bool { return true }), nil
}

func (s *MemoryStore) SearchAnalyses(ctx context.Context, userID, query string, limit int) ([]model.AnalysisRecord, error) {
	return s.filterAnalyses(userID, limitOr(limit, DefaultSearchLimit), func(r model.AnalysisRecord) bool {
		return matchesQuery(r, query)
	}), nil
}

func (s *MemoryStore) ListAnalyses(ctx context.Context, userID string, since time.Time) ([]model.AnalysisRecord, error) {
	return s.filterAnalyses(userID, 0, func(r model.AnalysisRecord) bool {
		return !r.CreatedAt.Before(since)
	}), nil
}

// filterAnalyses returns matching records newest first; limit 0 means all
func (s *MemoryStore) filterAnalyses(userID string, limit int, keep func(model.AnalysisRecord) bool) []model.AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.AnalysisRecord{}
	for _, r := range s.analyses {
		if userID != "" && r.UserID != userID {
			continue
		}
		if keep(r) {
			out = append(out, r)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *MemoryStore) AddBookmark(ctx context.Context, bookmark *model.Bookmark) error {
	prepareBookmark(bookmark)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bookmarks {
		if b.UserID == bookmark.UserID && b.AnalysisID == bookmark.AnalysisID {
			*bookmark = b
			return nil
		}
	}
	s.bookmarks[bookmark.ID] = *bookmark
	return nil
}

func (s *MemoryStore) RemoveBookmark(ctx context.Context, userID, analysisID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, b := range s.bookmarks {
		if b.UserID == userID && b.AnalysisID == analysisID {
			delete(s.bookmarks, id)
			return nil
		}
	}
	return notFound("remove bookmark", "bookmark", analysisID)
}

func (s *MemoryStore) IsBookmarked(ctx context.Context, userID, analysisID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.bookmarks {
		if b.UserID == userID && b.AnalysisID == analysisID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListBookmarks(ctx context.Context, userID string) ([]model.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Bookmark{}
	for _, b := range s.bookmarks {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CreateAlert(ctx context.Context, rule *model.AlertRule) error {
	prepareAlert(rule, true)
	rule.Keywords = append([]string(nil), rule.Keywords...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[rule.ID] = *rule
	return nil
}

func (s *MemoryStore) UpdateAlert(ctx context.Context, rule *model.AlertRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.alerts[rule.ID]
	if !ok || existing.UserID != rule.UserID {
		return notFound("update alert", "alert", rule.ID)
	}

	prepareAlert(rule, false)
	rule.CreatedAt = existing.CreatedAt
	rule.Keywords = append([]string(nil), rule.Keywords...)
	s.alerts[rule.ID] = *rule
	return nil
}

func (s *MemoryStore) DeleteAlert(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.alerts[id]
	if !ok || existing.UserID != userID {
		return notFound("delete alert", "alert", id)
	}
	delete(s.alerts, id)
	return nil
}

func (s *MemoryStore) ListAlerts(ctx context.Context, userID string) ([]model.AlertRule, error) {
	return s.filterAlerts(func(r model.AlertRule) bool { return r.UserID == userID }), nil
}

func (s *MemoryStore) ActiveAlerts(ctx context.Context) ([]model.AlertRule, error) {
	return s.filterAlerts(func(r model.AlertRule) bool { return r.IsActive }), nil
}

func (s *MemoryStore) filterAlerts(keep func(model.AlertRule) bool) []model.AlertRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.AlertRule{}
	for _, r := range s.alerts {
		if keep(r) {
			r.Keywords = append([]string(nil), r.Keywords...)
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) SaveTriggeredAlerts(ctx context.Context, alerts []model.TriggeredAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range alerts {
		prepareTriggered(&alerts[i])
		s.triggered[alerts[i].ID] = alerts[i]
	}
	return nil
}

func (s *MemoryStore) ListTriggeredAlerts(ctx context.Context, userID string, unreadOnly bool) ([]model.TriggeredAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.TriggeredAlert{}
	for _, a := range s.triggered {
		if a.UserID != userID || (unreadOnly && a.IsRead) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TriggeredAt.After(out[j].TriggeredAt)
	})
	return out, nil
}

func (s *MemoryStore) MarkAlertRead(ctx context.Context, userID, id string, read bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.triggered[id]
	if !ok || a.UserID != userID {
		return notFound("mark alert read", "triggered alert", id)
	}
	a.IsRead = read
	s.triggered[id] = a
	return nil
}

func (s *MemoryStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, notFound("get profile", "profile", userID)
	}
	return &p, nil
}

func (s *MemoryStore) UpsertProfile(ctx context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.profiles[profile.UserID]; ok {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	}
	prepareProfile(profile)
	s.profiles[profile.UserID] = *profile
	return nil
}

func (s *MemoryStore) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (s *MemoryStore) ProfileStats(ctx context.Context, userID string) (model.ProfileStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats model.ProfileStats
	for _, r := range s.analyses {
		if r.UserID == userID {
			stats.Analyses++
		}
	}
	for _, b := range s.bookmarks {
		if b.UserID == userID {
			stats.Bookmarks++
		}
	}
	for _, a := range s.alerts {
		if a.UserID == userID {
			stats.Alerts++
		}
	}
	for _, r := range s.reports {
		if r.UserID == userID {
			stats.Reports++
		}
	}
	return stats, nil
}

func (s *MemoryStore) SaveReport(ctx context.Context, report *model.Report) error {
	prepareReport(report)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = *report
	return nil
}

func (s *MemoryStore) ListReports(ctx context.Context, userID string) ([]model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Report{}
	for _, r := range s.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
