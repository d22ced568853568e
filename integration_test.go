package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartassist/smartassist-api/config"
	"github.com/smartassist/smartassist-api/models"
)

func TestProtectedRoutesUsePlaceholderUser(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(t, http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, json.Unmarshal(parse(t, w).Data, &user))
	assert.Equal(t, placeholderUserID, user.ID)
}

func TestApplianceListIsCachedUntilMutation(t *testing.T) {
	app := newTestApp(t, nil)

	first := app.do(t, http.MethodGet, "/api/appliances", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := app.do(t, http.MethodGet, "/api/appliances", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	created := app.do(t, http.MethodPost, "/api/appliances", map[string]interface{}{
		"name": "Basement Washer",
		"type": "washing_machine",
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	third := app.do(t, http.MethodGet, "/api/appliances", nil)
	require.Equal(t, http.StatusOK, third.Code)
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))

	var appliances []models.Appliance
	require.NoError(t, json.Unmarshal(parse(t, third).Data, &appliances))
	require.Len(t, appliances, 1)
	assert.Equal(t, "Basement Washer", appliances[0].Name)
}

func TestFailedMutationKeepsCache(t *testing.T) {
	app := newTestApp(t, nil)

	app.do(t, http.MethodGet, "/api/appliances", nil)
	require.Equal(t, 1, app.cache.Len())

	w := app.do(t, http.MethodPost, "/api/appliances", map[string]interface{}{"name": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, app.cache.Len())
}

func TestReviewInvalidatesTechnicianCache(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(t, http.MethodGet, "/api/technicians", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var technicians []models.Technician
	require.NoError(t, json.Unmarshal(parse(t, w).Data, &technicians))
	require.NotEmpty(t, technicians)
	tech := technicians[0]

	w = app.do(t, http.MethodGet, "/api/technicians/"+tech.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodGet, "/api/technicians/"+tech.ID, nil)
	require.Equal(t, "HIT", w.Header().Get("X-Cache"))

	booking := app.do(t, http.MethodPost, "/api/bookings", map[string]interface{}{
		"technicianId":       tech.ID,
		"scheduledDate":      "2030-01-15T10:00",
		"serviceType":        "repair",
		"problemDescription": "Fridge is warm",
	})
	require.Equal(t, http.StatusCreated, booking.Code, booking.Body.String())
	var created models.Booking
	require.NoError(t, json.Unmarshal(parse(t, booking).Data, &created))

	review := app.do(t, http.MethodPost, "/api/reviews", map[string]interface{}{
		"bookingId":    created.ID,
		"technicianId": tech.ID,
		"rating":       5,
	})
	require.Equal(t, http.StatusCreated, review.Code, review.Body.String())

	w = app.do(t, http.MethodGet, "/api/technicians/"+tech.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	var updated models.Technician
	require.NoError(t, json.Unmarshal(parse(t, w).Data, &updated))
	// Seeded totals are replaced by the aggregate over stored reviews
	assert.Equal(t, 1, updated.TotalReviews)
	assert.InDelta(t, 5.0, updated.Rating, 0.001)
}

func TestAIRoutesAreRateLimited(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.AIRateLimitPerSec = 0.001
		cfg.AIRateLimitBurst = 1
	})

	body := map[string]interface{}{"issue": "Dryer does not heat"}
	first := app.do(t, http.MethodPost, "/api/diagnose", body)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	second := app.do(t, http.MethodPost, "/api/diagnose", body)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "RATE_LIMITED", parse(t, second).Error.Code)

	// Non-AI routes are unaffected
	w := app.do(t, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitKeysOnTrustedClientIP(t *testing.T) {
	tests := []struct {
		name           string
		trustedProxies []string
		wantSecond     int
	}{
		// httptest requests come from 192.0.2.1
		{name: "forwarded header ignored by default", wantSecond: http.StatusTooManyRequests},
		{name: "forwarded header honoured from trusted proxy", trustedProxies: []string{"192.0.2.0/24"}, wantSecond: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, func(cfg *config.Config) {
				cfg.AIRateLimitPerSec = 0.001
				cfg.AIRateLimitBurst = 1
				cfg.TrustedProxies = tt.trustedProxies
			})

			send := func(forwardedFor string) *httptest.ResponseRecorder {
				req := httptest.NewRequest(http.MethodPost, "/api/diagnose", strings.NewReader(`{"issue":"Dryer does not heat"}`))
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-Forwarded-For", forwardedFor)
				w := httptest.NewRecorder()
				app.router.ServeHTTP(w, req)
				return w
			}

			first := send("203.0.113.10")
			require.Equal(t, http.StatusOK, first.Code, first.Body.String())
			assert.Equal(t, tt.wantSecond, send("203.0.113.11").Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.CORSAllowedOrigins = []string{"https://app.smartassist.ai"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/appliances", nil)
	req.Header.Set("Origin", "https://app.smartassist.ai")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.smartassist.ai", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, nil)
	app.do(t, http.MethodGet, "/api/health", nil)

	w := app.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "smartassist_http_requests_total")
}
