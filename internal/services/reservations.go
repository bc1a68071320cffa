package services

import (
	"context"
	"fmt"

	"github.com/test89/property_client/internal/api"
	"github.com/test89/property_client/internal/domain/reservation"
)

// Reservations wraps the reservation endpoints.
type Reservations struct {
	client *api.Client
}

// NewReservations creates the reservation service module.
func NewReservations(client *api.Client) *Reservations {
	return &Reservations{client: client}
}

// Create books a property. The backend owns conflict detection and pricing.
func (s *Reservations) Create(ctx context.Context, req reservation.CreateRequest) (reservation.Reservation, error) {
	if err := checkValid(req); err != nil {
		return reservation.Reservation{}, err
	}
	if req.Nights() == 0 {
		return reservation.Reservation{}, fmt.Errorf("invalid request: check-out must be after check-in")
	}
	var res reservation.Reservation
	if err := s.client.Post(ctx, "/reservations", req, &res); err != nil {
		return reservation.Reservation{}, err
	}
	return res, nil
}

// Get fetches one reservation by id.
func (s *Reservations) Get(ctx context.Context, id int64) (reservation.Reservation, error) {
	var res reservation.Reservation
	if err := s.client.Get(ctx, fmt.Sprintf("/reservations/%d", id), nil, &res); err != nil {
		return reservation.Reservation{}, err
	}
	return res, nil
}

// User returns a page of the current user's reservations.
func (s *Reservations) User(ctx context.Context, page, size int) (api.Page[reservation.Reservation], error) {
	var result api.Page[reservation.Reservation]
	if err := s.client.Get(ctx, "/reservations/user", pageQuery(page, size), &result); err != nil {
		return api.Page[reservation.Reservation]{}, err
	}
	return result, nil
}

// Upcoming returns a page of the current user's upcoming reservations.
func (s *Reservations) Upcoming(ctx context.Context, page, size int) (api.Page[reservation.Reservation], error) {
	var result api.Page[reservation.Reservation]
	if err := s.client.Get(ctx, "/reservations/user/upcoming", pageQuery(page, size), &result); err != nil {
		return api.Page[reservation.Reservation]{}, err
	}
	return result, nil
}

// Cancel cancels a reservation and returns the updated record.
func (s *Reservations) Cancel(ctx context.Context, id int64) (reservation.Reservation, error) {
	var res reservation.Reservation
	if err := s.client.Patch(ctx, fmt.Sprintf("/reservations/%d/cancel", id), nil, &res); err != nil {
		return reservation.Reservation{}, err
	}
	return res, nil
}

// ByProperty returns a page of reservations for one owned property.
func (s *Reservations) ByProperty(ctx context.Context, propertyID int64, page, size int) (api.Page[reservation.Reservation], error) {
	var result api.Page[reservation.Reservation]
	path := fmt.Sprintf("/reservations/property/%d", propertyID)
	if err := s.client.Get(ctx, path, pageQuery(page, size), &result); err != nil {
		return api.Page[reservation.Reservation]{}, err
	}
	return result, nil
}

// UpdateStatus moves a reservation to a new status (owner action).
func (s *Reservations) UpdateStatus(ctx context.Context, id int64, status string) (reservation.Reservation, error) {
	body := map[string]string{"status": status}
	var res reservation.Reservation
	if err := s.client.Patch(ctx, fmt.Sprintf("/reservations/%d/status", id), body, &res); err != nil {
		return reservation.Reservation{}, err
	}
	return res, nil
}

// OwnerBookings returns bookings across all of the current owner's
// properties.
func (s *Reservations) OwnerBookings(ctx context.Context) ([]reservation.Reservation, error) {
	var page api.Page[reservation.Reservation]
	if err := s.client.Get(ctx, "/reservations/owner-bookings", nil, &page); err != nil {
		return nil, err
	}
	return page.Content, nil
}
