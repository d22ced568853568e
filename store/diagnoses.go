package store

import (
	"context"
	"time"

	"github.com/smartassist/smartassist-api/models"
)

func (s *gormStore) GetDiagnosis(ctx context.Context, id string) (*models.Diagnosis, error) {
	return first[models.Diagnosis](ctx, s.db, id)
}

func (s *gormStore) ListUserDiagnoses(ctx context.Context, userID string) ([]models.Diagnosis, error) {
	diagnoses := []models.Diagnosis{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&diagnoses).Error
	return diagnoses, err
}

func (s *gormStore) CreateDiagnosis(ctx context.Context, diagnosis *models.Diagnosis) error {
	return s.db.WithContext(ctx).Create(diagnosis).Error
}

func (s *gormStore) UpdateDiagnosis(ctx context.Context, id string, fields map[string]interface{}) (*models.Diagnosis, error) {
	if len(fields) > 0 {
		fields["updated_at"] = time.Now()
	}
	return updateFields[models.Diagnosis](ctx, s.db, id, fields)
}
