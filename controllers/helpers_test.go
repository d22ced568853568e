package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smartassist/smartassist-api/config"
	"github.com/smartassist/smartassist-api/middleware"
	"github.com/smartassist/smartassist-api/models"
	"github.com/smartassist/smartassist-api/services"
	"github.com/smartassist/smartassist-api/store"
)

const (
	testUserID  = "temp-user-001"
	otherUserID = "other-user"
)

// pngHeader is enough of a PNG for content sniffing
var pngHeader = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53, 0xDE,
}

type testEnv struct {
	handler  *Handler
	store    store.Store
	ai       *services.MockAIService
	payments *services.MockPaymentService
	images   *services.MockImageService
	router   *gin.Engine
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details"`
	} `json:"error"`
}

// newTestEnv wires a Handler to an in-memory database seeded with the
// placeholder user and sample technicians, plus a second user.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, store.Migrate(db))

	s := store.NewGormStore(db)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx, testUserID))
	require.NoError(t, s.CreateUser(ctx, &models.User{
		ID:       otherUserID,
		Username: "other",
		Email:    "other@example.com",
		Password: "hash",
	}))

	log := logrus.New()
	log.SetOutput(io.Discard)

	env := &testEnv{
		store:    s,
		ai:       services.NewMockAIService("Check the door seal for a leak."),
		payments: services.NewMockPaymentService(),
		images:   services.NewMockImageService(),
	}
	env.handler = &Handler{
		Store:    s,
		AI:       env.ai,
		Payments: env.payments,
		Images:   env.images,
		Stats:    services.NewStatsService(s),
		Config:   &config.Config{UploadDir: t.TempDir(), PlaceholderUserID: testUserID},
		Log:      log,
	}
	env.router = newTestRouter(env.handler)
	return env
}

// newTestRouter registers every handler under /api. The X-Test-User header
// overrides the current user.
func newTestRouter(h *Handler) *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		userID := c.GetHeader("X-Test-User")
		if userID == "" {
			userID = testUserID
		}
		c.Set("user_id", userID)
		c.Next()
	})

	api.GET("/health", h.Health)
	api.GET("/database/status", h.DatabaseStatus)
	api.GET("/uploads/:filename", h.GetUploadedImage)
	api.GET("/users/me", h.GetMyProfile)
	api.PATCH("/users/me", h.UpdateMyProfile)

	api.GET("/appliances", h.ListAppliances)
	api.GET("/appliances/:id", h.GetAppliance)
	api.POST("/appliances", h.CreateAppliance)
	api.PATCH("/appliances/:id", h.UpdateAppliance)
	api.DELETE("/appliances/:id", h.DeleteAppliance)

	api.GET("/diagnoses", h.ListDiagnoses)
	api.GET("/diagnoses/:id", h.GetDiagnosis)
	api.PATCH("/diagnoses/:id", h.UpdateDiagnosis)
	api.POST("/diagnose", h.Diagnose)
	api.POST("/analyze-image", middleware.LimitBody(MaxImageRequestBytes), h.AnalyzeImage)

	api.GET("/technicians", h.ListTechnicians)
	api.GET("/technicians/:id", h.GetTechnician)
	api.GET("/technicians/:id/reviews", h.ListTechnicianReviews)
	api.GET("/technicians/:id/bookings", h.ListTechnicianBookings)

	api.GET("/bookings", h.ListBookings)
	api.GET("/bookings/:id", h.GetBooking)
	api.POST("/bookings", h.CreateBooking)
	api.PATCH("/bookings/:id", h.UpdateBooking)
	api.POST("/bookings/:id/payment-status", h.RefreshPaymentStatus)

	api.POST("/reviews", h.CreateReview)
	api.POST("/create-payment-intent", h.CreatePaymentIntent)
	api.GET("/stats", h.GetStats)
	return r
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	return e.doJSONAs(t, testUserID, method, path, body)
}

func (e *testEnv) doJSONAs(t *testing.T, userID, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Test-User", userID)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doMultipart(t *testing.T, path, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode parses the response envelope and unmarshals its data into T
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) (T, envelope) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())

	var data T
	if len(env.Data) > 0 && string(env.Data) != "null" {
		require.NoError(t, json.Unmarshal(env.Data, &data))
	}
	return data, env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	_, env := decode[json.RawMessage](t, w)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error.Code
}

func (e *testEnv) createAppliance(t *testing.T, userID, name string) *models.Appliance {
	t.Helper()
	brand := "Whirlpool"
	appliance := &models.Appliance{UserID: userID, Name: name, Type: "refrigerator", Brand: &brand}
	require.NoError(t, e.store.CreateAppliance(context.Background(), appliance))
	return appliance
}

func (e *testEnv) firstTechnician(t *testing.T) *models.Technician {
	t.Helper()
	technicians, err := e.store.ListTechnicians(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, technicians)
	return &technicians[0]
}

func (e *testEnv) createBooking(t *testing.T, userID string, applianceID *string) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		UserID:             userID,
		TechnicianID:       e.firstTechnician(t).ID,
		ApplianceID:        applianceID,
		ScheduledDate:      time.Now().Add(48 * time.Hour),
		ServiceType:        "repair",
		ProblemDescription: "Fridge is warm",
	}
	require.NoError(t, e.store.CreateBooking(context.Background(), booking))
	return booking
}
