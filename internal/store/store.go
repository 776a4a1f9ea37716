package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/model"
)

// Default page sizes
const (
	DefaultRecentLimit = 10
	DefaultSearchLimit = 20
)

// Store persists analyses and user records. Every error it returns is a
// *model.PersistenceError; missing records wrap model.ErrNotFound.
// An empty userID on analysis queries matches every user.
type Store interface {
	SaveAnalysis(ctx context.Context, record *model.AnalysisRecord) error
	GetAnalysis(ctx context.Context, id string) (*model.AnalysisRecord, error)
	RecentAnalyses(ctx context.Context, userID string, limit int) ([]model.AnalysisRecord, error)
	SearchAnalyses(ctx context.Context, userID, query string, limit int) ([]model.AnalysisRecord, error)
	ListAnalyses(ctx context.Context, userID string, since time.Time) ([]model.AnalysisRecord, error)

	AddBookmark(ctx context.Context, bookmark *model.Bookmark) error
	RemoveBookmark(ctx context.Context, userID, analysisID string) error
	IsBookmarked(ctx context.Context, userID, analysisID string) (bool, error)
	ListBookmarks(ctx context.Context, userID string) ([]model.Bookmark, error)

	CreateAlert(ctx context.Context, rule *model.AlertRule) error
	UpdateAlert(ctx context.Context, rule *model.AlertRule) error
	DeleteAlert(ctx context.Context, userID, id string) error
	ListAlerts(ctx context.Context, userID string) ([]model.AlertRule, error)
	ActiveAlerts(ctx context.Context) ([]model.AlertRule, error)

	SaveTriggeredAlerts(ctx context.Context, alerts []model.TriggeredAlert) error
	ListTriggeredAlerts(ctx context.Context, userID string, unreadOnly bool) ([]model.TriggeredAlert, error)
	MarkAlertRead(ctx context.Context, userID, id string, read bool) error

	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpsertProfile(ctx context.Context, profile *model.Profile) error
	ListProfiles(ctx context.Context) ([]model.Profile, error)
	ProfileStats(ctx context.Context, userID string) (model.ProfileStats, error)

	SaveReport(ctx context.Context, report *model.Report) error
	ListReports(ctx context.Context, userID string) ([]model.Report, error)

	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MongoStore)(nil)
)

// New opens the configured store
func New(ctx context.Context, config model.StoreConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(config.Driver) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres", "postgresql":
		s, err := OpenPostgres(ctx, config.DSN, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mongo", "mongodb":
		s, err := OpenMongo(ctx, config.DSN, config.Database, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s (supported: memory, postgres, mongo)", config.Driver)
	}
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *model.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &model.PersistenceError{Op: op, Err: err}
}

func notFound(op, kind, id string) error {
	return &model.PersistenceError{Op: op, Err: fmt.Errorf("%s %s: %w", kind, id, model.ErrNotFound)}
}

// clock and id generator shared by every backend, replaced in tests
var (
	now   = func() time.Time { return time.Now().UTC() }
	newID = uuid.NewString
)

func prepareAnalysis(r *model.AnalysisRecord) {
	if r.ID == "" {
		r.ID = newID()
	}
	t := now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = t
	}
	r.UpdatedAt = t
	r.ContentExcerpt = model.Truncate(r.ContentExcerpt, model.AnalysisExcerptLen)
	r.Result.ID = r.ID
}

func prepareBookmark(b *model.Bookmark) {
	if b.ID == "" {
		b.ID = newID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now()
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
}

func prepareAlert(r *model.AlertRule, create bool) {
	t := now()
	if create {
		if r.ID == "" {
			r.ID = newID()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = t
		}
	}
	r.UpdatedAt = t
}

func prepareTriggered(a *model.TriggeredAlert) {
	if a.ID == "" {
		a.ID = newID()
	}
	if a.TriggeredAt.IsZero() {
		a.TriggeredAt = now()
	}
	a.ContentExcerpt = model.Truncate(a.ContentExcerpt, model.AlertExcerptLen)
}

func prepareProfile(p *model.Profile) {
	t := now()
	if p.ID == "" {
		p.ID = newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = t
	}
	p.UpdatedAt = t
}

func prepareReport(r *model.Report) {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now()
	}
}

func limitOr(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

// matchesQuery is the case-insensitive substring test used by SearchAnalyses
func matchesQuery(r model.AnalysisRecord, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(r.ContentExcerpt), q) ||
		strings.Contains(strings.ToLower(r.URL), q)
}
