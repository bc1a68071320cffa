// Package testutil provides an in-memory stand-in for the rental API used
// across the client tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/test89/property_client/internal/domain/property"
	"github.com/test89/property_client/internal/domain/reservation"
	"github.com/test89/property_client/internal/domain/review"
	"github.com/test89/property_client/internal/domain/user"
)

type account struct {
	user     user.User
	password string
}

// Backend serves the subset of the rental REST contract the client talks
// to, backed by maps. Every mutator is safe for concurrent use.
type Backend struct {
	mu sync.Mutex

	srv *httptest.Server

	accounts     map[string]*account // email -> account
	tokens       map[string]int64    // bearer token -> user id
	properties   map[int64]property.Property
	reservations map[int64]reservation.Reservation
	reviews      map[int64]review.Review
	favorites    map[int64]map[int64]bool // user id -> property ids

	nextID int64

	// Unavailable marks property ids whose availability checks answer
	// false.
	Unavailable map[int64]bool

	// FailNext forces the next matched request to answer with this status
	// and message, then clears itself. Zero means no forced failure.
	FailNext struct {
		Status  int
		Message string
	}
}

// NewBackend starts the fake server. Callers own the Close.
func NewBackend() *Backend {
	b := &Backend{
		accounts:     make(map[string]*account),
		tokens:       make(map[string]int64),
		properties:   make(map[int64]property.Property),
		reservations: make(map[int64]reservation.Reservation),
		reviews:      make(map[int64]review.Review),
		favorites:    make(map[int64]map[int64]bool),
		Unavailable:  make(map[int64]bool),
	}
	b.srv = httptest.NewServer(b.router())
	return b
}

// URL returns the API base, including the /api/v1 prefix.
func (b *Backend) URL() string { return b.srv.URL + "/api/v1" }

// Close shuts the server down.
func (b *Backend) Close() { b.srv.Close() }

func (b *Backend) id() int64 {
	b.nextID++
	return b.nextID
}

// Seeding ---------------------------------------------------------------------

// SeedUser registers an account and returns its record.
func (b *Backend) SeedUser(email, password string) user.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := user.User{
		ID:        b.id(),
		Username:  strings.SplitN(email, "@", 2)[0],
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
	}
	b.accounts[email] = &account{user: u, password: password}
	return u
}

// SeedToken issues a bearer token for an already seeded user.
func (b *Backend) SeedToken(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	token := uuid.NewString()
	b.tokens[token] = userID
	return token
}

// SeedProperty stores a property, assigning an id when missing.
func (b *Backend) SeedProperty(p property.Property) property.Property {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == 0 {
		p.ID = b.id()
	}
	if p.Status == "" {
		p.Status = property.StatusAvailable
	}
	b.properties[p.ID] = p
	return p
}

// SeedReservation stores a reservation, assigning an id when missing.
func (b *Backend) SeedReservation(r reservation.Reservation) reservation.Reservation {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.ID == 0 {
		r.ID = b.id()
	}
	if r.Status == "" {
		r.Status = reservation.StatusPending
	}
	b.reservations[r.ID] = r
	return r
}

// SeedReview stores a review, assigning an id when missing.
func (b *Backend) SeedReview(r review.Review) review.Review {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.ID == 0 {
		r.ID = b.id()
	}
	b.reviews[r.ID] = r
	return r
}

// RevokeTokens invalidates every issued token, making the next
// authenticated request answer 401.
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]int64)
}

// Router ----------------------------------------------------------------------

func (b *Backend) router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/login", b.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", b.handleRegister).Methods(http.MethodPost)

	api.HandleFunc("/properties/public/search", b.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/properties/public/{id}", b.handleGetProperty).Methods(http.MethodGet)
	api.HandleFunc("/properties/stats", b.auth(b.handleStats)).Methods(http.MethodGet)
	api.HandleFunc("/properties/filters", b.handleFilters).Methods(http.MethodGet)
	api.HandleFunc("/properties/owner", b.auth(b.handleOwnerProperties)).Methods(http.MethodGet)
	api.HandleFunc("/properties/favorites", b.auth(b.handleFavorites)).Methods(http.MethodGet)
	api.HandleFunc("/properties/recommended", b.auth(b.handleRecommended)).Methods(http.MethodGet)
	api.HandleFunc("/properties", b.handleListProperties).Methods(http.MethodGet)
	api.HandleFunc("/properties", b.auth(b.handleCreateProperty)).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id}", b.auth(b.handleUpdateProperty)).Methods(http.MethodPut)
	api.HandleFunc("/properties/{id}", b.auth(b.handleDeleteProperty)).Methods(http.MethodDelete)
	api.HandleFunc("/properties/{id}/availability", b.handleAvailability).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id}/images", b.auth(b.handleUploadImage)).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id}/favorites", b.auth(b.handleAddFavorite)).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id}/favorites", b.auth(b.handleRemoveFavorite)).Methods(http.MethodDelete)
	api.HandleFunc("/properties/{id}/reviews", b.handlePropertyReviews).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id}/reviews", b.auth(b.handleCreateReview)).Methods(http.MethodPost)

	api.HandleFunc("/reservations", b.auth(b.handleCreateReservation)).Methods(http.MethodPost)
	api.HandleFunc("/reservations/user", b.auth(b.handleUserReservations)).Methods(http.MethodGet)
	api.HandleFunc("/reservations/user/upcoming", b.auth(b.handleUpcomingReservations)).Methods(http.MethodGet)
	api.HandleFunc("/reservations/owner-bookings", b.auth(b.handleOwnerBookings)).Methods(http.MethodGet)
	api.HandleFunc("/reservations/property/{id}", b.auth(b.handleReservationsByProperty)).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id}", b.auth(b.handleGetReservation)).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id}/cancel", b.auth(b.handleCancelReservation)).Methods(http.MethodPatch)
	api.HandleFunc("/reservations/{id}/status", b.auth(b.handleReservationStatus)).Methods(http.MethodPatch)

	api.HandleFunc("/reviews/user", b.auth(b.handleUserReviews)).Methods(http.MethodGet)
	api.HandleFunc("/reviews/{id}", b.auth(b.handleUpdateReview)).Methods(http.MethodPut)
	api.HandleFunc("/reviews/{id}", b.auth(b.handleDeleteReview)).Methods(http.MethodDelete)

	api.HandleFunc("/users/profile", b.auth(b.handleProfile)).Methods(http.MethodGet)
	api.HandleFunc("/users/profile", b.auth(b.handleUpdateProfile)).Methods(http.MethodPut)
	api.HandleFunc("/users/change-password", b.auth(b.handleChangePassword)).Methods(http.MethodPut)
	api.HandleFunc("/users/profile/image", b.auth(b.handleProfileImage)).Methods(http.MethodPost)

	return b.failNext(r)
}

func (b *Backend) failNext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		fail := b.FailNext
		b.FailNext.Status = 0
		b.mu.Unlock()
		if fail.Status != 0 {
			writeError(w, fail.Status, fail.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) auth(next func(http.ResponseWriter, *http.Request, user.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		id, ok := b.tokens[token]
		var u user.User
		if ok {
			ok = false
			for _, acct := range b.accounts {
				if acct.user.ID == id {
					u = acct.user
					ok = true
					break
				}
			}
		}
		b.mu.Unlock()
		if token == "" || !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r, u)
	}
}

// Helpers ---------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

type pageEnvelope struct {
	Content    any `json:"content"`
	TotalPages int `json:"totalPages"`
	Number     int `json:"number"`
}

func pageParams(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}
	return page, size
}

func paginate[T any](items []T, page, size int) pageEnvelope {
	total := (len(items) + size - 1) / size
	if total == 0 {
		total = 1
	}
	start := page * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return pageEnvelope{Content: items[start:end], TotalPages: total, Number: page}
}

// Auth ------------------------------------------------------------------------

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds user.Credentials
	_ = json.NewDecoder(r.Body).Decode(&creds)

	b.mu.Lock()
	acct, ok := b.accounts[creds.Email]
	if !ok || acct.password != creds.Password {
		b.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token := uuid.NewString()
	b.tokens[token] = acct.user.ID
	u := acct.user
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, user.AuthResponse{Token: token, User: u})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg user.Registration
	_ = json.NewDecoder(r.Body).Decode(&reg)

	b.mu.Lock()
	if _, exists := b.accounts[reg.Email]; exists {
		b.mu.Unlock()
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	u := user.User{
		ID:          b.id(),
		Username:    reg.Username,
		Email:       reg.Email,
		FirstName:   reg.FirstName,
		LastName:    reg.LastName,
		PhoneNumber: reg.PhoneNumber,
	}
	b.accounts[reg.Email] = &account{user: u, password: reg.Password}
	token := uuid.NewString()
	b.tokens[token] = u.ID
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, user.AuthResponse{Token: token, User: u})
}

// Properties ------------------------------------------------------------------

func (b *Backend) sortedProperties(keep func(property.Property) bool) []property.Property {
	out := make([]property.Property, 0, len(b.properties))
	for _, p := range b.properties {
		if keep == nil || keep(p) {
			out = append(out, p)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ID < out[j-1].ID; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func (b *Backend) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, size := pageParams(r)

	b.mu.Lock()
	items := b.sortedProperties(func(p property.Property) bool {
		if city := q.Get("city"); city != "" && !strings.EqualFold(p.Address.City, city) {
			return false
		}
		if v := q.Get("minPrice"); v != "" {
			if min, _ := strconv.ParseFloat(v, 64); p.Price < min {
				return false
			}
		}
		if v := q.Get("maxPrice"); v != "" {
			if max, _ := strconv.ParseFloat(v, 64); p.Price > max {
				return false
			}
		}
		if v := q.Get("bedrooms"); v != "" {
			if n, _ := strconv.Atoi(v); p.Bedrooms < n {
				return false
			}
		}
		if v := q.Get("bathrooms"); v != "" {
			if n, _ := strconv.Atoi(v); p.Bathrooms < n {
				return false
			}
		}
		return true
	})
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, paginate(items, page, size))
}

func (b *Backend) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	p, ok := b.properties[pathID(r)]
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Property not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) handleListProperties(w http.ResponseWriter, r *http.Request) {
	featured := r.URL.Query().Get("featured") == "true"
	b.mu.Lock()
	items := b.sortedProperties(func(p property.Property) bool {
		return !featured || p.Featured
	})
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(items, 0, 100))
}

func (b *Backend) handleOwnerProperties(w http.ResponseWriter, _ *http.Request, u user.User) {
	b.mu.Lock()
	items := b.sortedProperties(func(p property.Property) bool {
		return p.Owner != nil && p.Owner.ID == u.ID
	})
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(items, 0, 100))
}

func (b *Backend) handleCreateProperty(w http.ResponseWriter, r *http.Request, u user.User) {
	var draft property.Draft
	_ = json.NewDecoder(r.Body).Decode(&draft)

	b.mu.Lock()
	p := property.Property{
		ID:          b.id(),
		Title:       draft.Title,
		Description: draft.Description,
		Type:        draft.Type,
		Price:       draft.Price,
		Bedrooms:    draft.Bedrooms,
		Bathrooms:   draft.Bathrooms,
		Area:        draft.Area,
		Address:     draft.Address,
		Amenities:   draft.Amenities,
		Status:      draft.Status,
		Owner:       &property.OwnerSummary{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName},
	}
	b.properties[p.ID] = p
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) handleUpdateProperty(w http.ResponseWriter, r *http.Request, _ user.User) {
	var draft property.Draft
	_ = json.NewDecoder(r.Body).Decode(&draft)

	b.mu.Lock()
	p, ok := b.properties[pathID(r)]
	if ok {
		p.Title = draft.Title
		p.Description = draft.Description
		p.Type = draft.Type
		p.Price = draft.Price
		p.Bedrooms = draft.Bedrooms
		p.Bathrooms = draft.Bathrooms
		p.Area = draft.Area
		p.Address = draft.Address
		p.Amenities = draft.Amenities
		p.Status = draft.Status
		b.properties[p.ID] = p
	}
	b.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Property not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) handleDeleteProperty(w http.ResponseWriter, r *http.Request, _ user.User) {
	b.mu.Lock()
	delete(b.properties, pathID(r))
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleAvailability(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	q := r.URL.Query()
	if q.Get("checkInDate") == "" || q.Get("checkOutDate") == "" {
		writeError(w, http.StatusBadRequest, "checkInDate and checkOutDate are required")
		return
	}
	b.mu.Lock()
	_, exists := b.properties[id]
	blocked := b.Unavailable[id]
	b.mu.Unlock()
	if !exists {
		writeError(w, http.StatusNotFound, "Property not found")
		return
	}
	writeJSON(w, http.StatusOK, property.AvailabilityResult{Available: !blocked})
}

func (b *Backend) handleUploadImage(w http.ResponseWriter, r *http.Request, _ user.User) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	file.Close()

	b.mu.Lock()
	p, ok := b.properties[pathID(r)]
	if ok {
		p.ImageURLs = append(p.ImageURLs, "/uploads/"+header.Filename)
		b.properties[p.ID] = p
	}
	b.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Property not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) handleStats(w http.ResponseWriter, _ *http.Request, u user.User) {
	b.mu.Lock()
	stats := property.Stats{}
	for _, p := range b.properties {
		if p.Owner != nil && p.Owner.ID == u.ID {
			stats.TotalProperties++
		}
	}
	for _, res := range b.reservations {
		switch res.Status {
		case reservation.StatusPending:
			stats.PendingBookings++
		case reservation.StatusConfirmed:
			stats.ConfirmedBookings++
			stats.ActiveBookings++
			stats.TotalRevenue += res.TotalPrice
		case reservation.StatusCancelled:
			stats.CancelledBookings++
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (b *Backend) handleFilters(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	seenType := map[string]bool{}
	seenCity := map[string]bool{}
	f := property.Filters{Types: []string{}, Cities: []string{}}
	for _, p := range b.sortedProperties(nil) {
		if !seenType[p.Type] {
			seenType[p.Type] = true
			f.Types = append(f.Types, p.Type)
		}
		if !seenCity[p.Address.City] {
			seenCity[p.Address.City] = true
			f.Cities = append(f.Cities, p.Address.City)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, f)
}

func (b *Backend) handleFavorites(w http.ResponseWriter, _ *http.Request, u user.User) {
	b.mu.Lock()
	ids := b.favorites[u.ID]
	items := b.sortedProperties(func(p property.Property) bool { return ids[p.ID] })
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(items, 0, 100))
}

func (b *Backend) handleAddFavorite(w http.ResponseWriter, r *http.Request, u user.User) {
	id := pathID(r)
	b.mu.Lock()
	_, exists := b.properties[id]
	if exists {
		if b.favorites[u.ID] == nil {
			b.favorites[u.ID] = make(map[int64]bool)
		}
		b.favorites[u.ID][id] = true
	}
	b.mu.Unlock()
	if !exists {
		writeError(w, http.StatusNotFound, "Property not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleRemoveFavorite(w http.ResponseWriter, r *http.Request, u user.User) {
	b.mu.Lock()
	delete(b.favorites[u.ID], pathID(r))
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleRecommended(w http.ResponseWriter, _ *http.Request, _ user.User) {
	b.mu.Lock()
	items := b.sortedProperties(func(p property.Property) bool { return p.Rating >= 4 })
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(items, 0, 100))
}

// Reservations ----------------------------------------------------------------

func (b *Backend) sortedReservations(keep func(reservation.Reservation) bool) []reservation.Reservation {
	out := make([]reservation.Reservation, 0, len(b.reservations))
	for _, r := range b.reservations {
		if keep == nil || keep(r) {
			out = append(out, r)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ID < out[j-1].ID; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func (b *Backend) handleCreateReservation(w http.ResponseWriter, r *http.Request, u user.User) {
	var req reservation.CreateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	p, exists := b.properties[req.PropertyID]
	if !exists {
		b.mu.Unlock()
		writeError(w, http.StatusNotFound, "Property not found")
		return
	}
	if b.Unavailable[req.PropertyID] {
		b.mu.Unlock()
		writeError(w, http.StatusConflict, "Property is not available for the selected dates")
		return
	}
	res := reservation.Reservation{
		ID:              b.id(),
		Property:        &reservation.PropertySummary{ID: p.ID, Title: p.Title, City: p.Address.City, Price: p.Price},
		User:            &reservation.UserSummary{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName},
		CheckInDate:     req.CheckInDate,
		CheckOutDate:    req.CheckOutDate,
		GuestCount:      req.GuestCount,
		TotalPrice:      property.QuotedTotal(p.Price, req.CheckInDate, req.CheckOutDate),
		Status:          reservation.StatusPending,
		SpecialRequests: req.SpecialRequests,
	}
	b.reservations[res.ID] = res
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, res)
}

func (b *Backend) handleGetReservation(w http.ResponseWriter, r *http.Request, _ user.User) {
	b.mu.Lock()
	res, ok := b.reservations[pathID(r)]
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Reservation not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (b *Backend) handleUserReservations(w http.ResponseWriter, r *http.Request, u user.User) {
	page, size := pageParams(r)
	b.mu.Lock()
	items := b.sortedReservations(func(res reservation.Reservation) bool {
		return res.User != nil && res.User.ID == u.ID
	})
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(items, page, size))
}

func (b *Backend) handleUpcomingReservations(w http.ResponseWriter, r *http.Request, u user.User) {
	page, size := pageParams(r)
	b.mu.Lock()
	items := b.sortedReservations(func(res reservation.Reservation) bool {
		return res.User != nil && res.User.ID == u.ID && !reservation.Terminal(res.Status)
	})
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(items, page, size))
}

func (b *Backend) handleOwnerBookings(w http.ResponseWriter, _ *http.Request, u user.User) {
	b.mu.Lock()
	owned := make(map[int64]bool)
	for _, p := range b.properties {
		if p.Owner != nil && p.Owner.ID == u.ID {
			owned[p.ID] = true
		}
	}
	items := b.sortedReservations(func(res reservation.Reservation) bool {
		return res.Property != nil && owned[res.Property.ID]
	})
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(items, 0, 100))
}

func (b *Backend) handleReservationsByProperty(w http.ResponseWriter, r *http.Request, _ user.User) {
	id := pathID(r)
	page, size := pageParams(r)
	b.mu.Lock()
	items := b.sortedReservations(func(res reservation.Reservation) bool {
		return res.Property != nil && res.Property.ID == id
	})
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(items, page, size))
}

func (b *Backend) handleCancelReservation(w http.ResponseWriter, r *http.Request, _ user.User) {
	b.mu.Lock()
	res, ok := b.reservations[pathID(r)]
	if ok {
		if reservation.Terminal(res.Status) {
			b.mu.Unlock()
			writeError(w, http.StatusConflict, "Reservation is already finalized")
			return
		}
		res.Status = reservation.StatusCancelled
		b.reservations[res.ID] = res
	}
	b.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Reservation not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (b *Backend) handleReservationStatus(w http.ResponseWriter, r *http.Request, _ user.User) {
	var body struct {
		Status string `json:"status"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	res, ok := b.reservations[pathID(r)]
	if ok {
		res.Status = body.Status
		b.reservations[res.ID] = res
	}
	b.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Reservation not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Reviews ---------------------------------------------------------------------

func (b *Backend) sortedReviews(keep func(review.Review) bool) []review.Review {
	out := make([]review.Review, 0, len(b.reviews))
	for _, r := range b.reviews {
		if keep == nil || keep(r) {
			out = append(out, r)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ID < out[j-1].ID; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func (b *Backend) handlePropertyReviews(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	page, size := pageParams(r)
	b.mu.Lock()
	items := b.sortedReviews(func(rv review.Review) bool { return rv.PropertyID == id })
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(items, page, size))
}

func (b *Backend) handleUserReviews(w http.ResponseWriter, r *http.Request, u user.User) {
	page, size := pageParams(r)
	b.mu.Lock()
	items := b.sortedReviews(func(rv review.Review) bool { return rv.UserID == u.ID })
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(items, page, size))
}

func (b *Backend) handleCreateReview(w http.ResponseWriter, r *http.Request, u user.User) {
	var draft review.Draft
	_ = json.NewDecoder(r.Body).Decode(&draft)
	if draft.Rating < 1 || draft.Rating > 5 {
		writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	b.mu.Lock()
	rv := review.Review{
		ID:         b.id(),
		PropertyID: pathID(r),
		UserID:     u.ID,
		UserName:   u.FirstName + " " + u.LastName,
		Rating:     draft.Rating,
		Comment:    draft.Comment,
	}
	b.reviews[rv.ID] = rv
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, rv)
}

func (b *Backend) handleUpdateReview(w http.ResponseWriter, r *http.Request, _ user.User) {
	var draft review.Draft
	_ = json.NewDecoder(r.Body).Decode(&draft)

	b.mu.Lock()
	rv, ok := b.reviews[pathID(r)]
	if ok {
		rv.Rating = draft.Rating
		rv.Comment = draft.Comment
		b.reviews[rv.ID] = rv
	}
	b.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Review not found")
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (b *Backend) handleDeleteReview(w http.ResponseWriter, r *http.Request, _ user.User) {
	b.mu.Lock()
	delete(b.reviews, pathID(r))
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// Users -----------------------------------------------------------------------

func (b *Backend) handleProfile(w http.ResponseWriter, _ *http.Request, u user.User) {
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) handleUpdateProfile(w http.ResponseWriter, r *http.Request, u user.User) {
	var update user.ProfileUpdate
	_ = json.NewDecoder(r.Body).Decode(&update)

	b.mu.Lock()
	acct := b.accounts[u.Email]
	acct.user.FirstName = update.FirstName
	acct.user.LastName = update.LastName
	acct.user.PhoneNumber = update.PhoneNumber
	updated := acct.user
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, updated)
}

func (b *Backend) handleChangePassword(w http.ResponseWriter, r *http.Request, u user.User) {
	var change user.PasswordChange
	_ = json.NewDecoder(r.Body).Decode(&change)

	b.mu.Lock()
	acct := b.accounts[u.Email]
	if acct.password != change.CurrentPassword {
		b.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	acct.password = change.NewPassword
	b.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleProfileImage(w http.ResponseWriter, r *http.Request, u user.User) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	file.Close()

	b.mu.Lock()
	acct := b.accounts[u.Email]
	acct.user.ImageURL = "/uploads/" + header.Filename
	updated := acct.user
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, updated)
}
