package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartassist/smartassist-api/models"
)

func (s *gormStore) GetReview(ctx context.Context, id string) (*models.Review, error) {
	return first[models.Review](ctx, s.db, id)
}

func (s *gormStore) ListTechnicianReviews(ctx context.Context, technicianID string) ([]models.Review, error) {
	reviews := []models.Review{}
	err := s.db.WithContext(ctx).
		Where("technician_id = ?", technicianID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// CreateReview inserts the review and recomputes the technician's rating in the
// same transaction. The technician row is locked first so concurrent reviews for
// the same technician are applied one after another.
func (s *gormStore) CreateReview(ctx context.Context, review *models.Review) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var technician models.Technician
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", review.TechnicianID).
			First(&technician).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		if err := recomputeTechnicianRating(tx, review.TechnicianID); err != nil {
			return fmt.Errorf("failed to update rating for technician %s: %w", review.TechnicianID, err)
		}
		return nil
	})
}

// recomputeTechnicianRating rewrites rating and total_reviews from the reviews
// table in a single statement.
func recomputeTechnicianRating(tx *gorm.DB, technicianID string) error {
	return tx.Model(&models.Technician{}).
		Where("id = ?", technicianID).
		Updates(map[string]interface{}{
			"rating": gorm.Expr(
				"(SELECT COALESCE(ROUND(AVG(reviews.rating), 2), 0) FROM reviews WHERE reviews.technician_id = ?)",
				technicianID,
			),
			"total_reviews": gorm.Expr(
				"(SELECT COUNT(*) FROM reviews WHERE reviews.technician_id = ?)",
				technicianID,
			),
		}).Error
}
