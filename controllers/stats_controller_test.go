package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartassist/smartassist-api/models"
)

func TestGetStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createAppliance(t, testUserID, "Fridge")
	env.createAppliance(t, testUserID, "Washer")
	env.createAppliance(t, otherUserID, "Not mine")
	require.NoError(t, env.store.CreateDiagnosis(ctx, &models.Diagnosis{UserID: testUserID, Issue: "open one"}))
	require.NoError(t, env.store.CreateDiagnosis(ctx, &models.Diagnosis{UserID: testUserID, Issue: "done", Status: models.DiagnosisStatusResolved}))

	upcoming := env.createBooking(t, testUserID, nil)
	cancelled := env.createBooking(t, testUserID, nil)
	_, err := env.store.UpdateBooking(ctx, cancelled.ID, map[string]interface{}{"status": models.BookingStatusCancelled})
	require.NoError(t, err)
	past := env.createBooking(t, testUserID, nil)
	_, err = env.store.UpdateBooking(ctx, past.ID, map[string]interface{}{"scheduled_date": time.Now().Add(-24 * time.Hour)})
	require.NoError(t, err)
	require.NotEmpty(t, upcoming.ID)

	w := env.doJSON(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	stats, _ := decode[models.Stats](t, w)
	assert.Equal(t, models.Stats{TotalDevices: 2, ActiveDiagnoses: 1, UpcomingBookings: 1}, stats)
}
