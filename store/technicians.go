package store

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/smartassist/smartassist-api/models"
)

func (s *gormStore) GetTechnician(ctx context.Context, id string) (*models.Technician, error) {
	return first[models.Technician](ctx, s.db, id)
}

// SearchTechnicians filters city and state in SQL and matches the specialty as a
// case-insensitive substring of any of the technician's specialties.
func (s *gormStore) SearchTechnicians(ctx context.Context, filter TechnicianFilter) ([]models.Technician, error) {
	query := s.db.WithContext(ctx).Order("rating DESC")
	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where("city = ?", city)
	}
	if state := strings.TrimSpace(filter.State); state != "" {
		query = query.Where("state = ?", state)
	}

	technicians := []models.Technician{}
	if err := query.Find(&technicians).Error; err != nil {
		return nil, err
	}

	specialty := strings.ToLower(strings.TrimSpace(filter.Specialty))
	if specialty == "" {
		return technicians, nil
	}
	return lo.Filter(technicians, func(t models.Technician, _ int) bool {
		return lo.SomeBy(t.Specialties, func(s string) bool {
			return strings.Contains(strings.ToLower(s), specialty)
		})
	}), nil
}

func (s *gormStore) ListTechnicians(ctx context.Context) ([]models.Technician, error) {
	return s.SearchTechnicians(ctx, TechnicianFilter{})
}

func (s *gormStore) CreateTechnician(ctx context.Context, technician *models.Technician) error {
	return s.db.WithContext(ctx).Create(technician).Error
}
