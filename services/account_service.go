package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartassist/smartassist-api/models"
	"github.com/smartassist/smartassist-api/store"
)

// ErrMissingEmail is returned when Auth0 does not share an email for a new account
var ErrMissingEmail = errors.New("email not provided by Auth0")

// ProfileFetcher loads the Auth0 profile behind an access token
type ProfileFetcher interface {
	Profile(ctx context.Context, accessToken string) (*Auth0Profile, error)
}

// AccountService maps Auth0 subjects to local user rows, creating the row on first sign-in
type AccountService struct {
	store    store.Store
	profiles ProfileFetcher
}

// NewAccountService creates an account service
func NewAccountService(s store.Store, profiles ProfileFetcher) *AccountService {
	return &AccountService{store: s, profiles: profiles}
}

// ResolveAuth0User returns the local user id for subject
func (a *AccountService) ResolveAuth0User(ctx context.Context, subject, accessToken string) (string, error) {
	user, err := a.store.GetUserByAuth0ID(ctx, subject)
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	info, err := a.profiles.Profile(ctx, accessToken)
	if err != nil {
		return "", err
	}
	if info.Email == "" {
		return "", ErrMissingEmail
	}

	// Accounts created through Auth0 never sign in with a local password
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	sub := subject
	user = &models.User{
		Username: info.Email,
		Email:    info.Email,
		Password: string(hash),
		Auth0ID:  &sub,
	}
	if info.Name != "" {
		name := info.Name
		user.FullName = &name
	}

	if err := a.store.CreateUser(ctx, user); err != nil {
		// A concurrent first request for the same subject may have inserted the row
		if existing, getErr := a.store.GetUserByAuth0ID(ctx, subject); getErr == nil {
			return existing.ID, nil
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "auth0_id": subject}).Info("created user on first sign-in")
	return user.ID, nil
}
