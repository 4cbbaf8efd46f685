package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"travel-planner-server/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// likeEscaper makes a search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// GormStore keeps users and plans in a relational database; plan days are a
// JSON column so a plan is still read and written as one document.
type GormStore struct {
	db *gorm.DB
}

func connectToDB() *gorm.DB {
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic().Msg("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if dbError != nil {
		log.Panic().Err(dbError).Msg("error connection to db")
	}

	DB = db
	return db
}

func performMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.TravelPlan{},
		&models.AuditLog{},
	)
}

// NewGormStore migrates the schema on db and wraps it.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := performMigrations(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// OpenGorm opens any gorm dialector; tests pass an in-memory SQLite one.
func OpenGorm(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewGormStore(db)
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Save(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *GormStore) ListPlans(ctx context.Context, userID string, q PlanQuery) ([]models.TravelPlan, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.TravelPlan{}).Where("user_id = ?", userID)
	if q.Search != "" {
		search := "%" + likeEscaper.Replace(strings.ToLower(q.Search)) + "%"
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	plans := []models.TravelPlan{}
	err := query.Order("updated_at DESC").
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&plans).Error
	if err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}

func (s *GormStore) FindPlan(ctx context.Context, id, userID string) (*models.TravelPlan, error) {
	var plan models.TravelPlan
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&plan).Error
	if err != nil {
		return nil, translate(err)
	}
	return &plan, nil
}

func (s *GormStore) CreatePlan(ctx context.Context, plan *models.TravelPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	plan.Normalize()
	return s.db.WithContext(ctx).Create(plan).Error
}

func (s *GormStore) SavePlan(ctx context.Context, plan *models.TravelPlan) error {
	plan.Normalize()
	return s.db.WithContext(ctx).Save(plan).Error
}

func (s *GormStore) DeletePlan(ctx context.Context, id, userID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.TravelPlan{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) RecordAudit(ctx context.Context, entry *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// ListAudit returns the newest entries first.
func (s *GormStore) ListAudit(ctx context.Context, userID string, limit int) ([]models.AuditLog, error) {
	entries := []models.AuditLog{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// InitializeDB connects the store named by STORE_DRIVER (postgres by default).
func InitializeDB(ctx context.Context) Repository {
	switch driver := os.Getenv("STORE_DRIVER"); driver {
	case "", "postgres":
		store, err := NewGormStore(connectToDB())
		if err != nil {
			log.Panic().Err(err).Msg("error migrating db")
		}
		Store = store
	case "mongo":
		store, err := ConnectMongo(ctx, os.Getenv("MONGO_URI"), os.Getenv("MONGO_DATABASE"))
		if err != nil {
			log.Panic().Err(err).Msg("error connection to mongo")
		}
		Store = store
	default:
		log.Panic().Str("driver", driver).Msg("unknown STORE_DRIVER")
	}
	log.Info().Str("driver", os.Getenv("STORE_DRIVER")).Msg("store initialized")
	return Store
}
