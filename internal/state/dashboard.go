package state

import (
	"context"

	"github.com/test89/property_client/internal/domain/property"
)

// dashboardState backs the owner dashboard: listing stats plus the bookings
// made against the owner's properties. The listings themselves live in the
// properties slice owner projection.
type dashboardState struct {
	stats   property.Stats
	statsLC Lifecycle

	bookings listView
}

// DashboardStats returns the aggregate listing figures.
func (s *Store) DashboardStats() (property.Stats, Lifecycle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dashboard.stats, s.dashboard.statsLC
}

// OwnerBookings returns reservations guests made on the owner's listings.
func (s *Store) OwnerBookings() ReservationList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservationList(&s.dashboard.bookings)
}

// FetchDashboardStats loads the aggregate figures.
func (s *Store) FetchDashboardStats(ctx context.Context) error {
	token := s.begin(&s.dashboard.statsLC)
	stats, err := s.propertySvc.Stats(ctx)
	if err != nil {
		return s.fail(&s.dashboard.statsLC, token, err, "Failed to fetch dashboard statistics")
	}

	s.mu.Lock()
	if supersededLocked(&s.dashboard.statsLC, token) {
		s.mu.Unlock()
		return nil
	}
	s.dashboard.stats = stats
	fulfillLocked(&s.dashboard.statsLC)
	s.mu.Unlock()
	s.notify()
	return nil
}

// FetchOwnerBookings loads the bookings guests made on the owner's
// listings.
func (s *Store) FetchOwnerBookings(ctx context.Context) error {
	token := s.begin(&s.dashboard.bookings.Lifecycle)
	items, err := s.reservationSvc.OwnerBookings(ctx)
	if err != nil {
		return s.fail(&s.dashboard.bookings.Lifecycle, token, err, "Failed to fetch bookings")
	}

	s.mu.Lock()
	if supersededLocked(&s.dashboard.bookings.Lifecycle, token) {
		s.mu.Unlock()
		return nil
	}
	s.dashboard.bookings.replace(s.cache.putReservations(items), 0, 1)
	fulfillLocked(&s.dashboard.bookings.Lifecycle)
	s.mu.Unlock()
	s.notify()
	return nil
}
