package state

import (
	"context"
	"errors"

	"github.com/test89/property_client/internal/domain/reservation"
)

// bookingState tracks the reservation form for one property: the last
// availability verdict and the submit lifecycle. A verdict is only valid
// for the exact property and date range it was checked against.
type bookingState struct {
	propertyID int64
	checkIn    string
	checkOut   string
	available  bool

	check  Lifecycle
	submit Lifecycle

	created   reservation.Reservation
	hasResult bool
}

// Booking is the materialized booking form snapshot.
type Booking struct {
	PropertyID int64
	CheckIn    string
	CheckOut   string
	Available  bool

	Check  Lifecycle
	Submit Lifecycle
}

// BookingView returns the current booking form state.
func (s *Store) BookingView() Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Booking{
		PropertyID: s.booking.propertyID,
		CheckIn:    s.booking.checkIn,
		CheckOut:   s.booking.checkOut,
		Available:  s.booking.available,
		Check:      s.booking.check,
		Submit:     s.booking.submit,
	}
}

// CreatedReservation returns the reservation produced by the last
// successful submit, if any.
func (s *Store) CreatedReservation() (reservation.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.booking.created, s.booking.hasResult
}

// ResetBooking clears the form, typically on leaving the property page.
func (s *Store) ResetBooking() {
	s.mu.Lock()
	s.booking = bookingState{}
	s.mu.Unlock()
	s.notify()
}

// CheckAvailability asks the backend whether the range is free and records
// the verdict against the exact property and dates it covers.
func (s *Store) CheckAvailability(ctx context.Context, propertyID int64, checkIn, checkOut string) error {
	token := s.begin(&s.booking.check)
	res, err := s.propertySvc.CheckAvailability(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		return s.fail(&s.booking.check, token, err, "Failed to check availability")
	}

	s.mu.Lock()
	if supersededLocked(&s.booking.check, token) {
		s.mu.Unlock()
		return nil
	}
	s.booking.propertyID = propertyID
	s.booking.checkIn = checkIn
	s.booking.checkOut = checkOut
	s.booking.available = res.Available
	fulfillLocked(&s.booking.check)
	s.mu.Unlock()
	s.notify()
	return nil
}

// CanSubmitBooking reports whether a submit for the request would be
// allowed: the range must have a fulfilled availability check that came
// back free. A check for a different property or range does not count.
func (s *Store) CanSubmitBooking(req reservation.CreateRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked(req)
}

func (s *Store) canSubmitLocked(req reservation.CreateRequest) bool {
	b := &s.booking
	return b.check.Status == StatusFulfilled &&
		b.available &&
		b.propertyID == req.PropertyID &&
		b.checkIn == req.CheckInDate &&
		b.checkOut == req.CheckOutDate
}

// SubmitBooking creates the reservation. It refuses locally when the range
// has not been verified as available, without touching the backend.
func (s *Store) SubmitBooking(ctx context.Context, req reservation.CreateRequest) error {
	s.mu.Lock()
	ok := s.canSubmitLocked(req)
	s.mu.Unlock()
	if !ok {
		return errors.New("property is not available for the selected dates")
	}

	token := s.begin(&s.booking.submit)
	created, err := s.reservationSvc.Create(ctx, req)
	if err != nil {
		return s.fail(&s.booking.submit, token, err, "Failed to create reservation")
	}

	s.mu.Lock()
	if supersededLocked(&s.booking.submit, token) {
		s.mu.Unlock()
		return nil
	}
	s.cache.putReservation(created)
	s.booking.created = created
	s.booking.hasResult = true
	s.reservations.upcoming.prepend(created.ID)
	s.reservations.all.prepend(created.ID)
	fulfillLocked(&s.booking.submit)
	s.mu.Unlock()
	s.notify()
	return nil
}
