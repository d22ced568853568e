package store

import (
	"context"
	"time"

	"github.com/smartassist/smartassist-api/models"
)

func (s *gormStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return first[models.Booking](ctx, s.db, id)
}

func (s *gormStore) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// ListTechnicianBookings returns userID's bookings with technicianID, latest visit first
func (s *gormStore) ListTechnicianBookings(ctx context.Context, technicianID, userID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := s.db.WithContext(ctx).
		Where("technician_id = ? AND user_id = ?", technicianID, userID).
		Order("scheduled_date DESC").
		Find(&bookings).Error
	return bookings, err
}

func (s *gormStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return s.db.WithContext(ctx).Create(booking).Error
}

func (s *gormStore) UpdateBooking(ctx context.Context, id string, fields map[string]interface{}) (*models.Booking, error) {
	if len(fields) > 0 {
		fields["updated_at"] = time.Now()
	}
	return updateFields[models.Booking](ctx, s.db, id, fields)
}
