package state

import (
	"context"
	"errors"

	"github.com/test89/property_client/internal/domain/reservation"
)

type reservationsState struct {
	upcoming   listView
	all        listView
	byProperty listView

	byPropertyID int64

	cancel       Lifecycle
	statusChange Lifecycle
}

// ReservationList is a materialized reservation page.
type ReservationList struct {
	Items      []reservation.Reservation
	Page       int
	TotalPages int
	Lifecycle
}

func (s *Store) reservationList(v *listView) ReservationList {
	return ReservationList{
		Items:      s.cache.materializeReservations(v.IDs),
		Page:       v.Page,
		TotalPages: v.TotalPages,
		Lifecycle:  v.Lifecycle,
	}
}

// UpcomingReservations returns the user's upcoming stays.
func (s *Store) UpcomingReservations() ReservationList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservationList(&s.reservations.upcoming)
}

// UserReservations returns the user's full history page.
func (s *Store) UserReservations() ReservationList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservationList(&s.reservations.all)
}

// PropertyReservations returns the page for the property last fetched with
// FetchPropertyReservations.
func (s *Store) PropertyReservations() (int64, ReservationList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservations.byPropertyID, s.reservationList(&s.reservations.byProperty)
}

// ReservationOps returns the cancel and status-change lifecycles.
func (s *Store) ReservationOps() (cancel, statusChange Lifecycle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservations.cancel, s.reservations.statusChange
}

// FetchUpcomingReservations loads a page of upcoming stays.
func (s *Store) FetchUpcomingReservations(ctx context.Context, page, size int) error {
	token := s.begin(&s.reservations.upcoming.Lifecycle)
	res, err := s.reservationSvc.Upcoming(ctx, page, size)
	if err != nil {
		return s.fail(&s.reservations.upcoming.Lifecycle, token, err, "Failed to fetch upcoming reservations")
	}

	s.mu.Lock()
	if supersededLocked(&s.reservations.upcoming.Lifecycle, token) {
		s.mu.Unlock()
		return nil
	}
	s.reservations.upcoming.replace(s.cache.putReservations(res.Content), res.Number, res.TotalPages)
	fulfillLocked(&s.reservations.upcoming.Lifecycle)
	s.mu.Unlock()
	s.notify()
	return nil
}

// FetchUserReservations loads a page of the user's reservation history.
func (s *Store) FetchUserReservations(ctx context.Context, page, size int) error {
	token := s.begin(&s.reservations.all.Lifecycle)
	res, err := s.reservationSvc.User(ctx, page, size)
	if err != nil {
		return s.fail(&s.reservations.all.Lifecycle, token, err, "Failed to fetch reservations")
	}

	s.mu.Lock()
	if supersededLocked(&s.reservations.all.Lifecycle, token) {
		s.mu.Unlock()
		return nil
	}
	s.reservations.all.replace(s.cache.putReservations(res.Content), res.Number, res.TotalPages)
	fulfillLocked(&s.reservations.all.Lifecycle)
	s.mu.Unlock()
	s.notify()
	return nil
}

// FetchPropertyReservations loads a page of bookings against one listing.
func (s *Store) FetchPropertyReservations(ctx context.Context, propertyID int64, page, size int) error {
	token := s.begin(&s.reservations.byProperty.Lifecycle)
	res, err := s.reservationSvc.ByProperty(ctx, propertyID, page, size)
	if err != nil {
		return s.fail(&s.reservations.byProperty.Lifecycle, token, err, "Failed to fetch property reservations")
	}

	s.mu.Lock()
	if supersededLocked(&s.reservations.byProperty.Lifecycle, token) {
		s.mu.Unlock()
		return nil
	}
	s.reservations.byPropertyID = propertyID
	s.reservations.byProperty.replace(s.cache.putReservations(res.Content), res.Number, res.TotalPages)
	fulfillLocked(&s.reservations.byProperty.Lifecycle)
	s.mu.Unlock()
	s.notify()
	return nil
}

// CancelReservation cancels a stay. The updated record lands in the entity
// cache, so every projection holding the id shows the cancelled status.
func (s *Store) CancelReservation(ctx context.Context, id int64) error {
	s.mu.Lock()
	if cur, ok := s.cache.reservations[id]; ok && reservation.Terminal(cur.Status) {
		s.mu.Unlock()
		return errors.New("reservation is already finalized")
	}
	s.mu.Unlock()

	token := s.begin(&s.reservations.cancel)
	updated, err := s.reservationSvc.Cancel(ctx, id)
	if err != nil {
		return s.fail(&s.reservations.cancel, token, err, "Failed to cancel reservation")
	}

	s.mu.Lock()
	if supersededLocked(&s.reservations.cancel, token) {
		s.mu.Unlock()
		return nil
	}
	s.cache.putReservation(updated)
	fulfillLocked(&s.reservations.cancel)
	s.mu.Unlock()
	s.notify()
	return nil
}

// UpdateReservationStatus applies an owner-side transition, such as
// confirming a pending booking.
func (s *Store) UpdateReservationStatus(ctx context.Context, id int64, status string) error {
	token := s.begin(&s.reservations.statusChange)
	updated, err := s.reservationSvc.UpdateStatus(ctx, id, status)
	if err != nil {
		return s.fail(&s.reservations.statusChange, token, err, "Failed to update reservation status")
	}

	s.mu.Lock()
	if supersededLocked(&s.reservations.statusChange, token) {
		s.mu.Unlock()
		return nil
	}
	s.cache.putReservation(updated)
	fulfillLocked(&s.reservations.statusChange)
	s.mu.Unlock()
	s.notify()
	return nil
}
