// Package property defines the client-side mirror of the catalog's property
// resource. Fields track the backend representation; the client never owns a
// canonical schema of its own.
package property

import "time"

// Availability statuses reported by the catalog.
const (
	StatusAvailable   = "AVAILABLE"
	StatusMaintenance = "MAINTENANCE"
	StatusUnavailable = "UNAVAILABLE"
)

// Address is the nested address block of a property.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OwnerSummary is the trimmed owner record embedded in property payloads.
type OwnerSummary struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Property mirrors the backend's PropertyDto.
type Property struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Type        string        `json:"type"`
	Price       float64       `json:"price"`
	Bedrooms    int           `json:"bedrooms"`
	Bathrooms   int           `json:"bathrooms"`
	Area        float64       `json:"area,omitempty"`
	Address     Address       `json:"address"`
	Amenities   []string      `json:"amenities,omitempty"`
	ImageURLs   []string      `json:"imageUrls,omitempty"`
	Status      string        `json:"status"`
	Rating      float64       `json:"rating,omitempty"`
	Featured    bool          `json:"featured,omitempty"`
	CreatedAt   string        `json:"createdAt,omitempty"`
	UpdatedAt   string        `json:"updatedAt,omitempty"`
	Owner       *OwnerSummary `json:"owner,omitempty"`
}

// Draft is the owner-authored payload for create and update operations.
// Validation here is shallow field checking; the backend decides the rest.
type Draft struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type" validate:"required"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Bedrooms    int      `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int      `json:"bathrooms" validate:"gte=0"`
	Area        float64  `json:"area,omitempty"`
	Address     Address  `json:"address"`
	Amenities   []string `json:"amenities,omitempty"`
	Status      string   `json:"status" validate:"required"`
}

// SearchQuery carries the public search criteria. Zero values are omitted
// from the request.
type SearchQuery struct {
	City      string
	MinPrice  float64
	MaxPrice  float64
	Bedrooms  int
	Bathrooms int
	MaxGuests int
	Page      int
	Size      int
}

// Filters lists the distinct values the search form can offer.
type Filters struct {
	Types     []string `json:"types"`
	Cities    []string `json:"cities"`
	Amenities []string `json:"amenities,omitempty"`
}

// AvailabilityResult is the ephemeral answer to an availability check. It is
// meaningful only for the exact property and date range it was computed for.
type AvailabilityResult struct {
	Available bool `json:"available"`
}

// MonthRevenue is one bar of the owner dashboard revenue chart.
type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// PropertyRevenue is the per-property revenue breakdown.
type PropertyRevenue struct {
	PropertyID int64   `json:"propertyId"`
	Title      string  `json:"title"`
	Revenue    float64 `json:"revenue"`
}

// Checkout is an upcoming check-out entry on the dashboard.
type Checkout struct {
	ReservationID int64  `json:"reservationId"`
	PropertyID    int64  `json:"propertyId"`
	GuestName     string `json:"guestName"`
	CheckOutDate  string `json:"checkOutDate"`
}

// Stats aggregates the owner dashboard numbers. Missing fields keep their
// zero defaults when the backend omits them.
type Stats struct {
	TotalProperties   int               `json:"totalProperties"`
	TotalRevenue      float64           `json:"totalRevenue"`
	ActiveBookings    int               `json:"activeBookings"`
	OccupancyRate     float64           `json:"occupancyRate"`
	PendingBookings   int               `json:"pendingBookings"`
	ConfirmedBookings int               `json:"confirmedBookings"`
	CancelledBookings int               `json:"cancelledBookings"`
	MonthlyRevenue    []MonthRevenue    `json:"monthlyRevenue,omitempty"`
	RevenueByProperty []PropertyRevenue `json:"revenueByProperty,omitempty"`
	UpcomingCheckouts []Checkout        `json:"upcomingCheckouts,omitempty"`
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Nights returns the number of nights between two wire-format dates, or 0
// when either date is missing or malformed.
func Nights(checkIn, checkOut string) int {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return 0
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return 0
	}
	n := int(out.Sub(in).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// QuotedTotal is display-layer price arithmetic: nightly price times nights.
// The backend computes the authoritative total at booking time.
func QuotedTotal(pricePerNight float64, checkIn, checkOut string) float64 {
	return pricePerNight * float64(Nights(checkIn, checkOut))
}
