package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smartassist/smartassist-api/models"
)

func (s *gormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return first[models.User](ctx, s.db, id)
}

func (s *gormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *gormStore) GetUserByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error) {
	return s.findUser(ctx, "auth0_id = ?", auth0ID)
}

func (s *gormStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *gormStore) UpdateUser(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	return updateFields[models.User](ctx, s.db, id, fields)
}

func (s *gormStore) findUser(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
