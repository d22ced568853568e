package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/smartassist/smartassist-api/models"
)

func (s *gormStore) GetAppliance(ctx context.Context, id string) (*models.Appliance, error) {
	return first[models.Appliance](ctx, s.db, id)
}

func (s *gormStore) ListUserAppliances(ctx context.Context, userID string) ([]models.Appliance, error) {
	appliances := []models.Appliance{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&appliances).Error
	return appliances, err
}

func (s *gormStore) CreateAppliance(ctx context.Context, appliance *models.Appliance) error {
	return s.db.WithContext(ctx).Create(appliance).Error
}

func (s *gormStore) UpdateAppliance(ctx context.Context, id string, fields map[string]interface{}) (*models.Appliance, error) {
	return updateFields[models.Appliance](ctx, s.db, id, fields)
}

// DeleteAppliance removes the appliance and clears the references bookings and
// diagnoses hold to it.
func (s *gormStore) DeleteAppliance(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appliance models.Appliance
		if err := tx.Where("id = ?", id).First(&appliance).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&models.Booking{}).
			Where("appliance_id = ?", id).
			Update("appliance_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach bookings from appliance %s: %w", id, err)
		}
		if err := tx.Model(&models.Diagnosis{}).
			Where("appliance_id = ?", id).
			Update("appliance_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach diagnoses from appliance %s: %w", id, err)
		}

		if err := tx.Delete(&appliance).Error; err != nil {
			return fmt.Errorf("failed to delete appliance %s: %w", id, err)
		}
		return nil
	})
}
