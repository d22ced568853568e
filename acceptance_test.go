package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartassist/smartassist-api/models"
)

type client struct {
	t      *testing.T
	server *httptest.Server
}

func (c *client) call(method, path string, body interface{}, out interface{}) int {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(c.t, err)
	}
	req, err := http.NewRequest(method, c.server.URL+path, bytes.NewReader(payload))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		var env envelope
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
		require.True(c.t, env.Success)
		require.NoError(c.t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode
}

// TestApplianceRepairJourney walks a homeowner from registering an appliance
// through diagnosis, booking, payment and review over a real HTTP server.
func TestApplianceRepairJourney(t *testing.T) {
	app := newTestApp(t, nil)
	server := httptest.NewServer(app.router)
	defer server.Close()
	c := &client{t: t, server: server}

	var appliance models.Appliance
	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/api/appliances", map[string]interface{}{
		"name":         "Laundry Washer",
		"type":         "washing_machine",
		"brand":        "LG",
		"model":        "WM3400",
		"purchaseDate": "2022-03-01",
	}, &appliance))
	require.NotEmpty(t, appliance.ID)

	var diagnosis struct {
		DiagnosisID string `json:"diagnosisId"`
		Response    string `json:"response"`
	}
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/diagnose", map[string]interface{}{
		"issue":       "Water pools under the washer after each cycle",
		"applianceId": appliance.ID,
	}, &diagnosis))
	assert.Equal(t, "Tighten the drain hose clamp.", diagnosis.Response)

	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/diagnose", map[string]interface{}{
		"issue":       "The clamp is tight but it still leaks",
		"diagnosisId": diagnosis.DiagnosisID,
	}, nil))

	var stored models.Diagnosis
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/diagnoses/"+diagnosis.DiagnosisID, nil, &stored))
	assert.Len(t, stored.Messages, 4)
	calls := app.ai.DiagnoseCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "washing_machine", calls[1].ApplianceType)
	assert.Equal(t, "LG", calls[1].Brand)

	var technicians []models.Technician
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/technicians?specialty=appliance", nil, &technicians))
	require.NotEmpty(t, technicians)
	tech := technicians[0]

	var booking models.Booking
	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/api/bookings", map[string]interface{}{
		"technicianId":       tech.ID,
		"applianceId":        appliance.ID,
		"diagnosisId":        diagnosis.DiagnosisID,
		"scheduledDate":      time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		"serviceType":        "repair",
		"problemDescription": "Washer leaks from the drain hose",
		"estimatedCost":      120,
	}, &booking))
	assert.Equal(t, models.PaymentStatusUnpaid, booking.PaymentStatus)

	var stats models.Stats
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/stats", nil, &stats))
	assert.Equal(t, models.Stats{TotalDevices: 1, ActiveDiagnoses: 1, UpcomingBookings: 1}, stats)

	var intent struct {
		ClientSecret    string `json:"clientSecret"`
		PaymentIntentID string `json:"paymentIntentId"`
	}
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/create-payment-intent", map[string]interface{}{
		"amount":    120,
		"bookingId": booking.ID,
	}, &intent))
	require.NotEmpty(t, intent.ClientSecret)

	app.payments.SetStatus(intent.PaymentIntentID, models.PaymentStatusPaid)
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/bookings/"+booking.ID+"/payment-status", nil, &booking))
	assert.Equal(t, models.PaymentStatusPaid, booking.PaymentStatus)

	require.Equal(t, http.StatusOK, c.call(http.MethodPatch, "/api/diagnoses/"+diagnosis.DiagnosisID, map[string]interface{}{
		"status":   "resolved",
		"resolved": true,
	}, nil))
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/stats", nil, &stats))
	assert.Equal(t, 0, stats.ActiveDiagnoses)

	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/api/reviews", map[string]interface{}{
		"bookingId":    booking.ID,
		"technicianId": tech.ID,
		"rating":       4,
		"comment":      "Fixed the leak in one visit",
	}, nil))

	var reviews []models.Review
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/technicians/"+tech.ID+"/reviews", nil, &reviews))
	assert.NotEmpty(t, reviews)

	require.Equal(t, http.StatusNoContent, c.call(http.MethodDelete, "/api/appliances/"+appliance.ID, nil, nil))
	require.Equal(t, http.StatusNotFound, c.call(http.MethodGet, "/api/appliances/"+appliance.ID, nil, nil))
}
