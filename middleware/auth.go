package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/smartassist/smartassist-api/config"
	"github.com/smartassist/smartassist-api/services"
)

// Gin context keys
const (
	userIDKey       = "user_id"
	auth0SubjectKey = "auth0_subject"
	accessTokenKey  = "access_token"
)

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		logrus.Fatalf("Failed to parse the issuer url: %v", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		logrus.Fatalf("Failed to set up the jwt validator: %v", err)
	}

	return validatingMiddleware(jwtValidator.ValidateToken)
}

// validatingMiddleware adapts the net/http JWT middleware to gin and stores the
// subject, raw token and claims in the gin context.
func validatingMiddleware(validate jwtmiddleware.ValidateToken) gin.HandlerFunc {
	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logrus.WithError(err).Warn("Encountered error while validating JWT")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			logrus.WithError(writeErr).Error("Failed to write error response")
		}
	}

	middleware := jwtmiddleware.New(
		validate,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r

			// Unvalidated OPTIONS requests carry no claims
			token, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			if !ok {
				return
			}
			c.Set(auth0SubjectKey, token.RegisteredClaims.Subject)
			c.Set(accessTokenKey, bearerToken(r.Header.Get("Authorization")))
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// UserResolver maps an Auth0 subject to a local user id
type UserResolver interface {
	ResolveAuth0User(ctx context.Context, subject, accessToken string) (string, error)
}

// ResolveUser sets the current user id. With Auth0 configured it maps the
// validated token's subject through resolver; otherwise every request acts as
// the configured placeholder user.
func ResolveUser(cfg *config.Config, resolver UserResolver) gin.HandlerFunc {
	placeholder := cfg.PlaceholderUserID
	authEnabled := cfg.AuthEnabled()

	return func(c *gin.Context) {
		if !authEnabled {
			c.Set(userIDKey, placeholder)
			c.Next()
			return
		}

		subject, err := GetAuth0Subject(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
			return
		}
		token, _ := c.Get(accessTokenKey)
		accessToken, _ := token.(string)

		userID, err := resolver.ResolveAuth0User(c.Request.Context(), subject, accessToken)
		if err != nil {
			logrus.WithError(err).WithField("auth0_id", subject).Error("failed to resolve user")
			switch {
			case errors.Is(err, services.ErrMissingEmail):
				abortWithError(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
				return
			case errors.Is(err, services.ErrAuth0Rejected):
				abortWithError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Access token was rejected by Auth0")
				return
			}
			abortWithError(c, http.StatusInternalServerError, "AUTH0_ERROR", "Failed to resolve user account")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the user id set by ResolveUser, or "" outside that middleware
func CurrentUserID(c *gin.Context) string {
	userID, err := GetUserID(c)
	if err != nil {
		return ""
	}
	return userID
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	return getString(c, userIDKey, "USER_ID", "User ID")
}

// GetAuth0Subject extracts the validated token subject from the Gin context
func GetAuth0Subject(c *gin.Context) (string, error) {
	return getString(c, auth0SubjectKey, "SUBJECT", "Token subject")
}

func getString(c *gin.Context, key, code, label string) (string, error) {
	value, exists := c.Get(key)
	if !exists {
		return "", &AuthError{Code: "MISSING_" + code, Message: label + " not found in context"}
	}

	s, ok := value.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_" + code, Message: label + " is not a string"}
	}

	return s, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
