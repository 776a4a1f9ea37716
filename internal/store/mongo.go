package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/model"
)

// Collection names mirror the PostgreSQL tables
const (
	collAnalyses  = "analysis_history"
	collBookmarks = "bookmarks"
	collAlerts    = "alerts"
	collTriggered = "triggered_alerts"
	collProfiles  = "profiles"
	collReports   = "reports"
)

// MongoStore persists records in MongoDB
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// OpenMongo connects to MongoDB and ensures indexes
func OpenMongo(ctx context.Context, uri, database string, logger *zap.Logger) (*MongoStore, error) {
	if uri == "" {
		return nil, wrap("open mongo", errors.New("store.dsn is required"))
	}
	if database == "" {
		database = "factlens"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, wrap("open mongo", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, wrap("ping mongo", err)
	}

	s := &MongoStore{client: client, db: client.Database(database), logger: logger}
	s.ensureIndexes(ctx)

	logger.Info("connected to mongo", zap.String("database", database))
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) {
	indexes := map[string][]mongo.IndexModel{
		collAnalyses: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		collBookmarks: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "analysisId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collAlerts: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "isActive", Value: 1}}},
		},
		collTriggered: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "triggeredAt", Value: -1}}},
		},
		collProfiles: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collReports: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			s.logger.Warn("failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}
}

func (s *MongoStore) coll(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// findAll decodes every document matching filter
func findAll[T any](ctx context.Context, op string, coll *mongo.Collection, filter interface{}, opts *options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrap(op, err)
	}
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, wrap(op, err)
	}
	return out, nil
}

func findOne[T any](ctx context.Context, op, kind, id string, coll *mongo.Collection, filter interface{}) (*T, error) {
	var out T
	err := coll.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(op, kind, id)
	}
	if err != nil {
		return nil, wrap(op, err)
	}
	return &out, nil
}

func newestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}})
}

func userFilter(userID string) bson.M {
	if userID == "" {
		return bson.M{}
	}
	return bson.M{"userId": userID}
}

// Analyses

func (s *MongoStore) SaveAnalysis(ctx context.Context, record *model.AnalysisRecord) error {
	prepareAnalysis(record)
	_, err := s.coll(collAnalyses).ReplaceOne(ctx, bson.M{"_id": record.ID}, record, options.Replace().SetUpsert(true))
	return wrap("save analysis", err)
}

func (s *MongoStore) GetAnalysis(ctx context.Context, id string) (*model.AnalysisRecord, error) {
	return findOne[model.AnalysisRecord](ctx, "get analysis", "analysis", id, s.coll(collAnalyses), bson.M{"_id": id})
}

func (s *MongoStore) RecentAnalyses(ctx context.Context, userID string, limit int) ([]model.AnalysisRecord, error) {
	opts := newestFirst("createdAt").SetLimit(int64(limitOr(limit, DefaultRecentLimit)))
	return findAll[model.AnalysisRecord](ctx, "recent analyses", s.coll(collAnalyses), userFilter(userID), opts)
}

func searchFilter(userID, query string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := userFilter(userID)
	filter["$or"] = bson.A{
		bson.M{"contentExcerpt": pattern},
		bson.M{"url": pattern},
	}
	return filter
}

func (s *MongoStore) SearchAnalyses(ctx context.Context, userID, query string, limit int) ([]model.AnalysisRecord, error) {
	opts := newestFirst("createdAt").SetLimit(int64(limitOr(limit, DefaultSearchLimit)))
	return findAll[model.AnalysisRecord](ctx, "search analyses", s.coll(collAnalyses), searchFilter(userID, query), opts)
}

func (s *MongoStore) ListAnalyses(ctx context.Context, userID string, since time.Time) ([]model.AnalysisRecord, error) {
	filter := userFilter(userID)
	filter["createdAt"] = bson.M{"$gte": since}
	return findAll[model.AnalysisRecord](ctx, "list analyses", s.coll(collAnalyses), filter, newestFirst("createdAt"))
}

// Bookmarks

func (s *MongoStore) AddBookmark(ctx context.Context, bookmark *model.Bookmark) error {
	prepareBookmark(bookmark)
	filter := bson.M{"userId": bookmark.UserID, "analysisId": bookmark.AnalysisID}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	err := s.coll(collBookmarks).FindOneAndUpdate(ctx, filter, bson.M{"$setOnInsert": bookmark}, opts).Decode(bookmark)
	return wrap("add bookmark", err)
}

func (s *MongoStore) RemoveBookmark(ctx context.Context, userID, analysisID string) error {
	res, err := s.coll(collBookmarks).DeleteOne(ctx, bson.M{"userId": userID, "analysisId": analysisID})
	if err != nil {
		return wrap("remove bookmark", err)
	}
	if res.DeletedCount == 0 {
		return notFound("remove bookmark", "bookmark", analysisID)
	}
	return nil
}

func (s *MongoStore) IsBookmarked(ctx context.Context, userID, analysisID string) (bool, error) {
	n, err := s.coll(collBookmarks).CountDocuments(ctx, bson.M{"userId": userID, "analysisId": analysisID}, options.Count().SetLimit(1))
	if err != nil {
		return false, wrap("is bookmarked", err)
	}
	return n > 0, nil
}

func (s *MongoStore) ListBookmarks(ctx context.Context, userID string) ([]model.Bookmark, error) {
	return findAll[model.Bookmark](ctx, "list bookmarks", s.coll(collBookmarks), bson.M{"userId": userID}, newestFirst("createdAt"))
}

// Alerts

func (s *MongoStore) CreateAlert(ctx context.Context, rule *model.AlertRule) error {
	prepareAlert(rule, true)
	_, err := s.coll(collAlerts).InsertOne(ctx, rule)
	return wrap("create alert", err)
}

func (s *MongoStore) UpdateAlert(ctx context.Context, rule *model.AlertRule) error {
	prepareAlert(rule, false)
	update := bson.M{"$set": bson.M{
		"keywords":  rule.Keywords,
		"alertType": rule.AlertType,
		"isActive":  rule.IsActive,
		"updatedAt": rule.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	err := s.coll(collAlerts).FindOneAndUpdate(ctx, bson.M{"_id": rule.ID, "userId": rule.UserID}, update, opts).Decode(rule)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound("update alert", "alert", rule.ID)
	}
	return wrap("update alert", err)
}

func (s *MongoStore) DeleteAlert(ctx context.Context, userID, id string) error {
	res, err := s.coll(collAlerts).DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return wrap("delete alert", err)
	}
	if res.DeletedCount == 0 {
		return notFound("delete alert", "alert", id)
	}
	return nil
}

func (s *MongoStore) ListAlerts(ctx context.Context, userID string) ([]model.AlertRule, error) {
	return findAll[model.AlertRule](ctx, "list alerts", s.coll(collAlerts), bson.M{"userId": userID}, newestFirst("createdAt"))
}

func (s *MongoStore) ActiveAlerts(ctx context.Context) ([]model.AlertRule, error) {
	return findAll[model.AlertRule](ctx, "active alerts", s.coll(collAlerts), bson.M{"isActive": true}, newestFirst("createdAt"))
}

// Triggered alerts

func (s *MongoStore) SaveTriggeredAlerts(ctx context.Context, alerts []model.TriggeredAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	docs := make([]interface{}, len(alerts))
	for i := range alerts {
		prepareTriggered(&alerts[i])
		docs[i] = alerts[i]
	}
	_, err := s.coll(collTriggered).InsertMany(ctx, docs)
	return wrap("save triggered alerts", err)
}

func (s *MongoStore) ListTriggeredAlerts(ctx context.Context, userID string, unreadOnly bool) ([]model.TriggeredAlert, error) {
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["isRead"] = false
	}
	return findAll[model.TriggeredAlert](ctx, "list triggered alerts", s.coll(collTriggered), filter, newestFirst("triggeredAt"))
}

func (s *MongoStore) MarkAlertRead(ctx context.Context, userID, id string, read bool) error {
	res, err := s.coll(collTriggered).UpdateOne(ctx, bson.M{"_id": id, "userId": userID}, bson.M{"$set": bson.M{"isRead": read}})
	if err != nil {
		return wrap("mark alert read", err)
	}
	if res.MatchedCount == 0 {
		return notFound("mark alert read", "triggered alert", id)
	}
	return nil
}

// Profiles

func (s *MongoStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return findOne[model.Profile](ctx, "get profile", "profile", userID, s.coll(collProfiles), bson.M{"userId": userID})
}

func (s *MongoStore) UpsertProfile(ctx context.Context, profile *model.Profile) error {
	prepareProfile(profile)
	update := bson.M{
		"$set": bson.M{
			"displayName": profile.DisplayName,
			"avatarUrl":   profile.AvatarURL,
			"preferences": profile.Preferences,
			"updatedAt":   profile.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":       profile.ID,
			"createdAt": profile.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	err := s.coll(collProfiles).FindOneAndUpdate(ctx, bson.M{"userId": profile.UserID}, update, opts).Decode(profile)
	return wrap("upsert profile", err)
}

func (s *MongoStore) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "userId", Value: 1}})
	return findAll[model.Profile](ctx, "list profiles", s.coll(collProfiles), bson.M{}, opts)
}

func (s *MongoStore) ProfileStats(ctx context.Context, userID string) (model.ProfileStats, error) {
	var stats model.ProfileStats
	counts := []struct {
		coll string
		dst  *int
	}{
		{collAnalyses, &stats.Analyses},
		{collBookmarks, &stats.Bookmarks},
		{collAlerts, &stats.Alerts},
		{collReports, &stats.Reports},
	}

	for _, c := range counts {
		n, err := s.coll(c.coll).CountDocuments(ctx, bson.M{"userId": userID})
		if err != nil {
			return stats, wrap("profile stats", err)
		}
		*c.dst = int(n)
	}
	return stats, nil
}

// Reports

func (s *MongoStore) SaveReport(ctx context.Context, report *model.Report) error {
	prepareReport(report)
	_, err := s.coll(collReports).InsertOne(ctx, report)
	return wrap("save report", err)
}

func (s *MongoStore) ListReports(ctx context.Context, userID string) ([]model.Report, error) {
	return findAll[model.Report](ctx, "list reports", s.coll(collReports), bson.M{"userId": userID}, newestFirst("createdAt"))
}

// Close disconnects the client
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
