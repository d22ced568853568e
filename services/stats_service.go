package services

import (
	"context"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/smartassist/smartassist-api/models"
	"github.com/smartassist/smartassist-api/store"
)

// StatsService computes the dashboard counters for a user
type StatsService struct {
	store store.Store
	now   func() time.Time
}

// NewStatsService creates a stats service reading from s
func NewStatsService(s store.Store) *StatsService {
	return &StatsService{store: s, now: time.Now}
}

// WithClock replaces the clock used to decide which bookings are upcoming
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// Compute loads the user's appliances, diagnoses and bookings concurrently and counts them
func (s *StatsService) Compute(ctx context.Context, userID string) (*models.Stats, error) {
	var (
		appliances []models.Appliance
		diagnoses  []models.Diagnosis
		bookings   []models.Booking
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		appliances, err = s.store.ListUserAppliances(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		diagnoses, err = s.store.ListUserDiagnoses(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		bookings, err = s.store.ListUserBookings(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := ComputeStats(appliances, diagnoses, bookings, s.now())
	return &stats, nil
}

// ComputeStats counts all appliances, open diagnoses, and bookings that are
// neither cancelled nor completed and scheduled strictly after now.
func ComputeStats(appliances []models.Appliance, diagnoses []models.Diagnosis, bookings []models.Booking, now time.Time) models.Stats {
	return models.Stats{
		TotalDevices: len(appliances),
		ActiveDiagnoses: lo.CountBy(diagnoses, func(d models.Diagnosis) bool {
			return d.IsActive()
		}),
		UpcomingBookings: lo.CountBy(bookings, func(b models.Booking) bool {
			return b.IsUpcoming(now)
		}),
	}
}
