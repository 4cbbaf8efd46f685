package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"travel-planner-server/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	plansCollection = "travelplans"
	auditCollection = "auditlogs"
)

// MongoStore keeps each plan as a single document, days and all.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	plans  *mongo.Collection
	audit  *mongo.Collection
}

func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI environment variable is required")
	}
	if database == "" {
		database = "travel-planner"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := newMongoStore(client, client.Database(database))
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func newMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{
		client: client,
		users:  db.Collection(usersCollection),
		plans:  db.Collection(plansCollection),
		audit:  db.Collection(auditCollection),
	}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	_, err = s.plans.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "updatedAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("plans index: %w", err)
	}
	_, err = s.audit.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("audit index: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	_, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translateMongo(err)
	}
	return &user, nil
}

func (s *MongoStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListPlans(ctx context.Context, userID string, q PlanQuery) ([]models.TravelPlan, int64, error) {
	filter := bson.M{"user": userID}
	if q.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
		filter["$or"] = bson.A{bson.M{"title": pattern}, bson.M{"description": pattern}}
	}

	total, err := s.plans.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	cursor, err := s.plans.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	plans := []models.TravelPlan{}
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}

func (s *MongoStore) FindPlan(ctx context.Context, id, userID string) (*models.TravelPlan, error) {
	var plan models.TravelPlan
	err := s.plans.FindOne(ctx, bson.M{"_id": id, "user": userID}).Decode(&plan)
	if err != nil {
		return nil, translateMongo(err)
	}
	return &plan, nil
}

func (s *MongoStore) CreatePlan(ctx context.Context, plan *models.TravelPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	plan.Normalize()
	now := time.Now().UTC()
	plan.CreatedAt, plan.UpdatedAt = now, now
	_, err := s.plans.InsertOne(ctx, plan)
	return err
}

func (s *MongoStore) SavePlan(ctx context.Context, plan *models.TravelPlan) error {
	plan.Normalize()
	plan.UpdatedAt = time.Now().UTC()
	res, err := s.plans.ReplaceOne(ctx, bson.M{"_id": plan.ID, "user": plan.UserID}, plan)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeletePlan(ctx context.Context, id, userID string) error {
	res, err := s.plans.DeleteOne(ctx, bson.M{"_id": id, "user": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) RecordAudit(ctx context.Context, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.audit.InsertOne(ctx, entry)
	return err
}

func (s *MongoStore) ListAudit(ctx context.Context, userID string, limit int) ([]models.AuditLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.audit.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	entries := []models.AuditLog{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func translateMongo(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
