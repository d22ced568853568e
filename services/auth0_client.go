package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/smartassist/smartassist-api/config"
)

// profileTTL bounds how long a token's profile is reused. Auth0 rate limits /userinfo.
const profileTTL = 5 * time.Minute

// ErrAuth0Rejected is returned when Auth0 refuses the access token
var ErrAuth0Rejected = errors.New("access token rejected by Auth0")

// Auth0Profile is the part of the /userinfo response used to create accounts
type Auth0Profile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Auth0Client reads user profiles from the tenant's /userinfo endpoint
type Auth0Client struct {
	userInfoURL string
	httpClient  *http.Client
	profiles    *cache.Cache
}

func NewAuth0Client(cfg *config.Config) *Auth0Client {
	return &Auth0Client{
		userInfoURL: userInfoURL(cfg.Auth0Domain),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		profiles:    cache.New(profileTTL, 2*profileTTL),
	}
}

// userInfoURL accepts a bare tenant domain or a full base URL (tests pass httptest servers)
func userInfoURL(domain string) string {
	domain = strings.TrimSuffix(domain, "/")
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain + "/userinfo"
	}
	return "https://" + domain + "/userinfo"
}

// Profile returns the profile for accessToken, reusing a recent answer for the same token
func (a *Auth0Client) Profile(ctx context.Context, accessToken string) (*Auth0Profile, error) {
	if cached, ok := a.profiles.Get(accessToken); ok {
		return cached.(*Auth0Profile), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d)", ErrAuth0Rejected, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var profile Auth0Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}

	a.profiles.SetDefault(accessToken, &profile)
	return &profile, nil
}
