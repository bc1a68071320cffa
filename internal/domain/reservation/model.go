// Package reservation mirrors the catalog's reservation resource.
package reservation

import "github.com/test89/property_client/internal/domain/property"

// Reservation statuses. Transitions happen server-side; the client only
// disables actions for terminal states.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// Terminal reports whether a status permits no further transitions from the
// client's point of view.
func Terminal(status string) bool {
	return status == StatusCancelled || status == StatusCompleted
}

// PropertySummary is the trimmed property record embedded in reservations.
type PropertySummary struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	City     string  `json:"city,omitempty"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// UserSummary is the trimmed guest record embedded in reservations.
type UserSummary struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Reservation mirrors the backend's ReservationDto.
type Reservation struct {
	ID              int64            `json:"id"`
	Property        *PropertySummary `json:"property,omitempty"`
	User            *UserSummary     `json:"user,omitempty"`
	CheckInDate     string           `json:"checkInDate"`
	CheckOutDate    string           `json:"checkOutDate"`
	GuestCount      int              `json:"guestCount"`
	TotalPrice      float64          `json:"totalPrice"`
	Status          string           `json:"status"`
	SpecialRequests string           `json:"specialRequests,omitempty"`
	CreatedAt       string           `json:"createdAt,omitempty"`
	UpdatedAt       string           `json:"updatedAt,omitempty"`
}

// CreateRequest is the booking payload. Date fields use the wire date
// layout; only presence and ordering are checked client-side.
type CreateRequest struct {
	PropertyID      int64   `json:"propertyId" validate:"required"`
	CheckInDate     string  `json:"checkInDate" validate:"required,datetime=2006-01-02"`
	CheckOutDate    string  `json:"checkOutDate" validate:"required,datetime=2006-01-02"`
	GuestCount      int     `json:"guestCount" validate:"required,gte=1"`
	TotalPrice      float64 `json:"totalPrice,omitempty"`
	SpecialRequests string  `json:"specialRequests,omitempty"`
}

// Nights is the stay length implied by the request dates.
func (r CreateRequest) Nights() int {
	return property.Nights(r.CheckInDate, r.CheckOutDate)
}
