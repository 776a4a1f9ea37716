package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS analysis_history (
	id                  TEXT PRIMARY KEY,
	user_id             TEXT,
	url                 TEXT,
	content_excerpt     TEXT NOT NULL,
	analysis_result     JSONB NOT NULL,
	source_verification JSONB,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS analysis_history_user_created_idx ON analysis_history (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS bookmarks (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	analysis_id TEXT NOT NULL,
	tags        TEXT[] NOT NULL DEFAULT '{}',
	notes       TEXT,
	created_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, analysis_id)
);

CREATE TABLE IF NOT EXISTS alerts (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	keywords   TEXT[] NOT NULL,
	alert_type TEXT NOT NULL,
	is_active  BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS triggered_alerts (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	alert_id         TEXT NOT NULL,
	analysis_id      TEXT NOT NULL,
	content_excerpt  TEXT NOT NULL,
	matched_keywords TEXT[] NOT NULL,
	is_read          BOOLEAN NOT NULL DEFAULT FALSE,
	triggered_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL UNIQUE,
	display_name TEXT,
	avatar_url   TEXT,
	preferences  JSONB,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	title            TEXT NOT NULL,
	report_type      TEXT NOT NULL,
	date_range_start TIMESTAMPTZ NOT NULL,
	date_range_end   TIMESTAMPTZ NOT NULL,
	data             JSONB NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
);
`

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	analysisColumns  = []string{"id", "user_id", "url", "content_excerpt", "analysis_result", "source_verification", "created_at", "updated_at"}
	bookmarkColumns  = []string{"id", "user_id", "analysis_id", "tags", "notes", "created_at"}
	alertColumns     = []string{"id", "user_id", "keywords", "alert_type", "is_active", "created_at", "updated_at"}
	triggeredColumns = []string{"id", "user_id", "alert_id", "analysis_id", "content_excerpt", "matched_keywords", "is_read", "triggered_at"}
	profileColumns   = []string{"id", "user_id", "display_name", "avatar_url", "preferences", "created_at", "updated_at"}
	reportColumns    = []string{"id", "user_id", "title", "report_type", "date_range_start", "date_range_end", "data", "created_at"}
)

// PostgresStore persists records in PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenPostgres connects to PostgreSQL and creates missing tables
func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	if dsn == "" {
		return nil, wrap("open postgres", errors.New("store.dsn is required"))
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, wrap("open postgres", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, wrap("ping postgres", err)
	}

	s := NewPostgresStore(db, logger)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Info("connected to postgres")
	return s, nil
}

// NewPostgresStore wraps an existing connection pool
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{db: db, logger: logger}
}

// Migrate creates the tables if they do not exist
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return wrap("migrate", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *PostgresStore) exec(ctx context.Context, op string, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, wrap(op, fmt.Errorf("build query: %w", err))
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	return res, nil
}

func (s *PostgresStore) query(ctx context.Context, op string, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, wrap(op, fmt.Errorf("build query: %w", err))
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	return rows, nil
}

func (s *PostgresStore) queryRow(ctx context.Context, op string, b sq.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, wrap(op, fmt.Errorf("build query: %w", err))
	}
	return s.db.QueryRowContext(ctx, query, args...), nil
}

// collect scans every row with scan and closes rows
func collect[T any](op string, rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer func() { _ = rows.Close() }()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, wrap(op, fmt.Errorf("scan row: %w", err))
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, fmt.Errorf("rows iteration: %w", err))
	}
	return out, nil
}

func affected(op, kind, id string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return notFound(op, kind, id)
	}
	return nil
}

// Analyses

func saveAnalysisQuery(r *model.AnalysisRecord) (sq.InsertBuilder, error) {
	result, err := json.Marshal(r.Result)
	if err != nil {
		return sq.InsertBuilder{}, fmt.Errorf("encode result: %w", err)
	}
	var verification []byte
	if r.SourceVerification != nil {
		if verification, err = json.Marshal(r.SourceVerification); err != nil {
			return sq.InsertBuilder{}, fmt.Errorf("encode source verification: %w", err)
		}
	}

	return psql.Insert("analysis_history").
		Columns(analysisColumns...).
		Values(r.ID, nullString(r.UserID), nullString(r.URL), r.ContentExcerpt, result, verification, r.CreatedAt, r.UpdatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET analysis_result = EXCLUDED.analysis_result, " +
			"source_verification = EXCLUDED.source_verification, updated_at = EXCLUDED.updated_at"), nil
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, record *model.AnalysisRecord) error {
	prepareAnalysis(record)
	b, err := saveAnalysisQuery(record)
	if err != nil {
		return wrap("save analysis", err)
	}
	_, err = s.exec(ctx, "save analysis", b)
	return err
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id string) (*model.AnalysisRecord, error) {
	row, err := s.queryRow(ctx, "get analysis", psql.Select(analysisColumns...).From("analysis_history").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	r, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("get analysis", "analysis", id)
	}
	if err != nil {
		return nil, wrap("get analysis", err)
	}
	return &r, nil
}

func analysesQuery(userID string) sq.SelectBuilder {
	b := psql.Select(analysisColumns...).From("analysis_history")
	if userID != "" {
		b = b.Where(sq.Eq{"user_id": userID})
	}
	return b.OrderBy("created_at DESC")
}

func searchAnalysesQuery(userID, query string, limit int) sq.SelectBuilder {
	pattern := "%" + escapeLike(query) + "%"
	return analysesQuery(userID).
		Where(sq.Or{sq.ILike{"content_excerpt": pattern}, sq.ILike{"url": pattern}}).
		Limit(uint64(limitOr(limit, DefaultSearchLimit)))
}

func (s *PostgresStore) RecentAnalyses(ctx context.Context, userID string, limit int) ([]model.AnalysisRecord, error) {
	rows, err := s.query(ctx, "recent analyses", analysesQuery(userID).Limit(uint64(limitOr(limit, DefaultRecentLimit))))
	if err != nil {
		return nil, err
	}
	return collect("recent analyses", rows, scanAnalysis)
}

func (s *PostgresStore) SearchAnalyses(ctx context.Context, userID, query string, limit int) ([]model.AnalysisRecord, error) {
	rows, err := s.query(ctx, "search analyses", searchAnalysesQuery(userID, query, limit))
	if err != nil {
		return nil, err
	}
	return collect("search analyses", rows, scanAnalysis)
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, userID string, since time.Time) ([]model.AnalysisRecord, error) {
	rows, err := s.query(ctx, "list analyses", analysesQuery(userID).Where(sq.GtOrEq{"created_at": since}))
	if err != nil {
		return nil, err
	}
	return collect("list analyses", rows, scanAnalysis)
}

func scanAnalysis(row rowScanner) (model.AnalysisRecord, error) {
	var (
		r                    model.AnalysisRecord
		userID, url          sql.NullString
		result, verification []byte
	)
	if err := row.Scan(&r.ID, &userID, &url, &r.ContentExcerpt, &result, &verification, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return r, err
	}
	r.UserID = userID.String
	r.URL = url.String
	if err := json.Unmarshal(result, &r.Result); err != nil {
		return r, fmt.Errorf("decode result: %w", err)
	}
	if len(verification) > 0 {
		r.SourceVerification = &model.SourceInsights{}
		if err := json.Unmarshal(verification, r.SourceVerification); err != nil {
			return r, fmt.Errorf("decode source verification: %w", err)
		}
	}
	return r, nil
}

// Bookmarks

func (s *PostgresStore) AddBookmark(ctx context.Context, bookmark *model.Bookmark) error {
	prepareBookmark(bookmark)
	b := psql.Insert("bookmarks").
		Columns(bookmarkColumns...).
		Values(bookmark.ID, bookmark.UserID, bookmark.AnalysisID, pq.Array(bookmark.Tags), nullString(bookmark.Notes), bookmark.CreatedAt).
		Suffix("ON CONFLICT (user_id, analysis_id) DO UPDATE SET user_id = EXCLUDED.user_id RETURNING " + strings.Join(bookmarkColumns, ", "))

	row, err := s.queryRow(ctx, "add bookmark", b)
	if err != nil {
		return err
	}
	stored, err := scanBookmark(row)
	if err != nil {
		return wrap("add bookmark", err)
	}
	*bookmark = stored
	return nil
}

func (s *PostgresStore) RemoveBookmark(ctx context.Context, userID, analysisID string) error {
	res, err := s.exec(ctx, "remove bookmark", psql.Delete("bookmarks").Where(sq.Eq{"user_id": userID, "analysis_id": analysisID}))
	if err != nil {
		return err
	}
	return affected("remove bookmark", "bookmark", analysisID, res)
}

func (s *PostgresStore) IsBookmarked(ctx context.Context, userID, analysisID string) (bool, error) {
	row, err := s.queryRow(ctx, "is bookmarked", psql.Select("1").From("bookmarks").Where(sq.Eq{"user_id": userID, "analysis_id": analysisID}).Limit(1))
	if err != nil {
		return false, err
	}
	var one int
	err = row.Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, wrap("is bookmarked", err)
	}
	return true, nil
}

func (s *PostgresStore) ListBookmarks(ctx context.Context, userID string) ([]model.Bookmark, error) {
	rows, err := s.query(ctx, "list bookmarks", psql.Select(bookmarkColumns...).From("bookmarks").Where(sq.Eq{"user_id": userID}).OrderBy("created_at DESC"))
	if err != nil {
		return nil, err
	}
	return collect("list bookmarks", rows, scanBookmark)
}

func scanBookmark(row rowScanner) (model.Bookmark, error) {
	var (
		b     model.Bookmark
		tags  pq.StringArray
		notes sql.NullString
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.AnalysisID, &tags, &notes, &b.CreatedAt); err != nil {
		return b, err
	}
	b.Tags = []string(tags)
	if b.Tags == nil {
		b.Tags = []string{}
	}
	b.Notes = notes.String
	return b, nil
}

// Alerts

func (s *PostgresStore) CreateAlert(ctx context.Context, rule *model.AlertRule) error {
	prepareAlert(rule, true)
	_, err := s.exec(ctx, "create alert", psql.Insert("alerts").
		Columns(alertColumns...).
		Values(rule.ID, rule.UserID, pq.Array(rule.Keywords), string(rule.AlertType), rule.IsActive, rule.CreatedAt, rule.UpdatedAt))
	return err
}

func (s *PostgresStore) UpdateAlert(ctx context.Context, rule *model.AlertRule) error {
	prepareAlert(rule, false)
	row, err := s.queryRow(ctx, "update alert", psql.Update("alerts").
		Set("keywords", pq.Array(rule.Keywords)).
		Set("alert_type", string(rule.AlertType)).
		Set("is_active", rule.IsActive).
		Set("updated_at", rule.UpdatedAt).
		Where(sq.Eq{"id": rule.ID, "user_id": rule.UserID}).
		Suffix("RETURNING created_at"))
	if err != nil {
		return err
	}
	err = row.Scan(&rule.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("update alert", "alert", rule.ID)
	}
	return wrap("update alert", err)
}

func (s *PostgresStore) DeleteAlert(ctx context.Context, userID, id string) error {
	res, err := s.exec(ctx, "delete alert", psql.Delete("alerts").Where(sq.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return err
	}
	return affected("delete alert", "alert", id, res)
}

func (s *PostgresStore) ListAlerts(ctx context.Context, userID string) ([]model.AlertRule, error) {
	rows, err := s.query(ctx, "list alerts", psql.Select(alertColumns...).From("alerts").Where(sq.Eq{"user_id": userID}).OrderBy("created_at DESC"))
	if err != nil {
		return nil, err
	}
	return collect("list alerts", rows, scanAlert)
}

func (s *PostgresStore) ActiveAlerts(ctx context.Context) ([]model.AlertRule, error) {
	rows, err := s.query(ctx, "active alerts", psql.Select(alertColumns...).From("alerts").Where(sq.Eq{"is_active": true}).OrderBy("created_at DESC"))
	if err != nil {
		return nil, err
	}
	return collect("active alerts", rows, scanAlert)
}

func scanAlert(row rowScanner) (model.AlertRule, error) {
	var (
		r         model.AlertRule
		keywords  pq.StringArray
		alertType string
	)
	if err := row.Scan(&r.ID, &r.UserID, &keywords, &alertType, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return r, err
	}
	r.Keywords = []string(keywords)
	r.AlertType = model.AlertType(alertType)
	return r, nil
}

// Triggered alerts

func saveTriggeredQuery(alerts []model.TriggeredAlert) sq.InsertBuilder {
	b := psql.Insert("triggered_alerts").Columns(triggeredColumns...)
	for _, a := range alerts {
		b = b.Values(a.ID, a.UserID, a.AlertID, a.AnalysisID, a.ContentExcerpt, pq.Array(a.MatchedKeywords), a.IsRead, a.TriggeredAt)
	}
	return b
}

func (s *PostgresStore) SaveTriggeredAlerts(ctx context.Context, alerts []model.TriggeredAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	for i := range alerts {
		prepareTriggered(&alerts[i])
	}
	_, err := s.exec(ctx, "save triggered alerts", saveTriggeredQuery(alerts))
	return err
}

func (s *PostgresStore) ListTriggeredAlerts(ctx context.Context, userID string, unreadOnly bool) ([]model.TriggeredAlert, error) {
	b := psql.Select(triggeredColumns...).From("triggered_alerts").Where(sq.Eq{"user_id": userID})
	if unreadOnly {
		b = b.Where(sq.Eq{"is_read": false})
	}
	rows, err := s.query(ctx, "list triggered alerts", b.OrderBy("triggered_at DESC"))
	if err != nil {
		return nil, err
	}
	return collect("list triggered alerts", rows, scanTriggered)
}

func (s *PostgresStore) MarkAlertRead(ctx context.Context, userID, id string, read bool) error {
	res, err := s.exec(ctx, "mark alert read", psql.Update("triggered_alerts").Set("is_read", read).Where(sq.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return err
	}
	return affected("mark alert read", "triggered alert", id, res)
}

func scanTriggered(row rowScanner) (model.TriggeredAlert, error) {
	var (
		a        model.TriggeredAlert
		keywords pq.StringArray
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.AlertID, &a.AnalysisID, &a.ContentExcerpt, &keywords, &a.IsRead, &a.TriggeredAt); err != nil {
		return a, err
	}
	a.MatchedKeywords = []string(keywords)
	return a, nil
}

// Profiles

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	row, err := s.queryRow(ctx, "get profile", psql.Select(profileColumns...).From("profiles").Where(sq.Eq{"user_id": userID}))
	if err != nil {
		return nil, err
	}
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("get profile", "profile", userID)
	}
	if err != nil {
		return nil, wrap("get profile", err)
	}
	return &p, nil
}

func (s *PostgresStore) UpsertProfile(ctx context.Context, profile *model.Profile) error {
	prepareProfile(profile)
	var prefs []byte
	if profile.Preferences != nil {
		var err error
		if prefs, err = json.Marshal(profile.Preferences); err != nil {
			return wrap("upsert profile", fmt.Errorf("encode preferences: %w", err))
		}
	}

	row, err := s.queryRow(ctx, "upsert profile", psql.Insert("profiles").
		Columns(profileColumns...).
		Values(profile.ID, profile.UserID, nullString(profile.DisplayName), nullString(profile.AvatarURL), prefs, profile.CreatedAt, profile.UpdatedAt).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET display_name = EXCLUDED.display_name, avatar_url = EXCLUDED.avatar_url, " +
			"preferences = EXCLUDED.preferences, updated_at = EXCLUDED.updated_at RETURNING id, created_at"))
	if err != nil {
		return err
	}
	return wrap("upsert profile", row.Scan(&profile.ID, &profile.CreatedAt))
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.query(ctx, "list profiles", psql.Select(profileColumns...).From("profiles").OrderBy("user_id"))
	if err != nil {
		return nil, err
	}
	return collect("list profiles", rows, scanProfile)
}

func profileStatsQuery(userID string) sq.SelectBuilder {
	return psql.Select().
		Column(sq.Expr("(SELECT COUNT(*) FROM analysis_history WHERE user_id = ?)", userID)).
		Column(sq.Expr("(SELECT COUNT(*) FROM bookmarks WHERE user_id = ?)", userID)).
		Column(sq.Expr("(SELECT COUNT(*) FROM alerts WHERE user_id = ?)", userID)).
		Column(sq.Expr("(SELECT COUNT(*) FROM reports WHERE user_id = ?)", userID))
}

func (s *PostgresStore) ProfileStats(ctx context.Context, userID string) (model.ProfileStats, error) {
	var stats model.ProfileStats
	row, err := s.queryRow(ctx, "profile stats", profileStatsQuery(userID))
	if err != nil {
		return stats, err
	}
	err = row.Scan(&stats.Analyses, &stats.Bookmarks, &stats.Alerts, &stats.Reports)
	return stats, wrap("profile stats", err)
}

func scanProfile(row rowScanner) (model.Profile, error) {
	var (
		p               model.Profile
		display, avatar sql.NullString
		preferences     []byte
	)
	if err := row.Scan(&p.ID, &p.UserID, &display, &avatar, &preferences, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}
	p.DisplayName = display.String
	p.AvatarURL = avatar.String
	if len(preferences) > 0 {
		if err := json.Unmarshal(preferences, &p.Preferences); err != nil {
			return p, fmt.Errorf("decode preferences: %w", err)
		}
	}
	return p, nil
}

// Reports

func (s *PostgresStore) SaveReport(ctx context.Context, report *model.Report) error {
	prepareReport(report)
	data, err := json.Marshal(report.Data)
	if err != nil {
		return wrap("save report", fmt.Errorf("encode report data: %w", err))
	}
	_, err = s.exec(ctx, "save report", psql.Insert("reports").
		Columns(reportColumns...).
		Values(report.ID, report.UserID, report.Title, report.ReportType, report.DateRangeStart, report.DateRangeEnd, data, report.CreatedAt))
	return err
}

func (s *PostgresStore) ListReports(ctx context.Context, userID string) ([]model.Report, error) {
	rows, err := s.query(ctx, "list reports", psql.Select(reportColumns...).From("reports").Where(sq.Eq{"user_id": userID}).OrderBy("created_at DESC"))
	if err != nil {
		return nil, err
	}
	return collect("list reports", rows, scanReport)
}

func scanReport(row rowScanner) (model.Report, error) {
	var (
		r    model.Report
		data []byte
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.ReportType, &r.DateRangeStart, &r.DateRangeEnd, &data, &r.CreatedAt); err != nil {
		return r, err
	}
	if err := json.Unmarshal(data, &r.Data); err != nil {
		return r, fmt.Errorf("decode report data: %w", err)
	}
	return r, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// escapeLike escapes LIKE wildcards so the query matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
