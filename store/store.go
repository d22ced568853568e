package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/smartassist/smartassist-api/models"
)

// ErrNotFound is returned when a lookup or partial update targets a missing row.
var ErrNotFound = errors.New("record not found")

// TechnicianFilter narrows a technician search. Empty fields are ignored.
type TechnicianFilter struct {
	City      string
	State     string
	Specialty string
}

// IsEmpty reports whether no filter field is set
func (f TechnicianFilter) IsEmpty() bool {
	return strings.TrimSpace(f.City) == "" &&
		strings.TrimSpace(f.State) == "" &&
		strings.TrimSpace(f.Specialty) == ""
}

// Store defines the interface for all database operations.
type Store interface {
	Ping(ctx context.Context) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error)

	GetAppliance(ctx context.Context, id string) (*models.Appliance, error)
	ListUserAppliances(ctx context.Context, userID string) ([]models.Appliance, error)
	CreateAppliance(ctx context.Context, appliance *models.Appliance) error
	UpdateAppliance(ctx context.Context, id string, fields map[string]interface{}) (*models.Appliance, error)
	DeleteAppliance(ctx context.Context, id string) error

	GetDiagnosis(ctx context.Context, id string) (*models.Diagnosis, error)
	ListUserDiagnoses(ctx context.Context, userID string) ([]models.Diagnosis, error)
	CreateDiagnosis(ctx context.Context, diagnosis *models.Diagnosis) error
	UpdateDiagnosis(ctx context.Context, id string, fields map[string]interface{}) (*models.Diagnosis, error)

	GetTechnician(ctx context.Context, id string) (*models.Technician, error)
	SearchTechnicians(ctx context.Context, filter TechnicianFilter) ([]models.Technician, error)
	ListTechnicians(ctx context.Context) ([]models.Technician, error)
	CreateTechnician(ctx context.Context, technician *models.Technician) error

	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	ListTechnicianBookings(ctx context.Context, technicianID, userID string) ([]models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateBooking(ctx context.Context, id string, fields map[string]interface{}) (*models.Booking, error)

	GetReview(ctx context.Context, id string) (*models.Review, error)
	ListTechnicianReviews(ctx context.Context, technicianID string) ([]models.Review, error)
	CreateReview(ctx context.Context, review *models.Review) error

	Seed(ctx context.Context, placeholderUserID string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// first loads one row by primary key and maps gorm's not-found error.
func first[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	var row T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// updateFields applies a partial update and reloads the row.
func updateFields[T any](ctx context.Context, db *gorm.DB, id string, fields map[string]interface{}) (*T, error) {
	if len(fields) > 0 {
		var model T
		result := db.WithContext(ctx).Model(&model).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return first[T](ctx, db, id)
}
