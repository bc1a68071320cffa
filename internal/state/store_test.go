package state

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/test89/property_client/internal/api"
	"github.com/test89/property_client/internal/domain/property"
	"github.com/test89/property_client/internal/domain/reservation"
	"github.com/test89/property_client/internal/domain/review"
	"github.com/test89/property_client/internal/domain/user"
	"github.com/test89/property_client/internal/services"
	"github.com/test89/property_client/pkg/testutil"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type fixture struct {
	backend *testutil.Backend
	user    user.User
	store   *Store
}

func setup(t *testing.T) *fixture {
	t.Helper()
	backend := testutil.NewBackend()
	t.Cleanup(backend.Close)

	u := backend.SeedUser("guest@example.com", "hunter22")
	token := backend.SeedToken(u.ID)

	client, err := api.New(api.Config{BaseURL: backend.URL(), Tokens: staticToken(token)})
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	store := New(Config{
		Properties:   services.NewProperties(client),
		Reservations: services.NewReservations(client),
		Reviews:      services.NewReviews(client),
		Users:        services.NewUsers(client),
	})
	return &fixture{backend: backend, user: u, store: store}
}

func (f *fixture) seedProperty(title, city string, price float64) property.Property {
	return f.backend.SeedProperty(property.Property{
		Title:   title,
		Type:    "APARTMENT",
		Price:   price,
		Address: property.Address{City: city, Country: "PT"},
	})
}

func (f *fixture) seedReservation(p property.Property, status string) reservation.Reservation {
	return f.backend.SeedReservation(reservation.Reservation{
		Property:     &reservation.PropertySummary{ID: p.ID, Title: p.Title, Price: p.Price},
		User:         &reservation.UserSummary{ID: f.user.ID, Email: f.user.Email},
		CheckInDate:  "2026-10-01",
		CheckOutDate: "2026-10-04",
		GuestCount:   2,
		Status:       status,
	})
}

// Lifecycle -------------------------------------------------------------------

func TestDispatchGoesPendingBeforeSettling(t *testing.T) {
	f := setup(t)
	f.seedProperty("Harbor Flat", "Lisbon", 80)

	var mu sync.Mutex
	var statuses []Status
	f.store.Subscribe(func() {
		mu.Lock()
		statuses = append(statuses, f.store.SearchResults().Status)
		mu.Unlock()
	})

	if err := f.store.SearchProperties(context.Background(), property.SearchQuery{}); err != nil {
		t.Fatalf("SearchProperties: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(statuses) < 2 {
		t.Fatalf("got %d notifications want >= 2", len(statuses))
	}
	if statuses[0] != StatusPending {
		t.Fatalf("first status=%q want pending", statuses[0])
	}
	if statuses[len(statuses)-1] != StatusFulfilled {
		t.Fatalf("last status=%q want fulfilled", statuses[len(statuses)-1])
	}
}

func TestSearchStoresPageVerbatim(t *testing.T) {
	f := setup(t)
	for i := 0; i < 5; i++ {
		f.seedProperty("Flat", "Lisbon", float64(50+i))
	}

	err := f.store.SearchProperties(context.Background(), property.SearchQuery{Page: 1, Size: 2})
	if err != nil {
		t.Fatalf("SearchProperties: %v", err)
	}

	list := f.store.SearchResults()
	if list.Status != StatusFulfilled {
		t.Fatalf("Status=%q", list.Status)
	}
	if list.Page != 1 || list.TotalPages != 3 {
		t.Fatalf("Page=%d TotalPages=%d want 1/3", list.Page, list.TotalPages)
	}
	if len(list.Items) != 2 {
		t.Fatalf("got %d items want 2", len(list.Items))
	}
}

func TestRejectedKeepsPreviousData(t *testing.T) {
	f := setup(t)
	f.seedProperty("Harbor Flat", "Lisbon", 80)
	ctx := context.Background()

	if err := f.store.SearchProperties(ctx, property.SearchQuery{}); err != nil {
		t.Fatalf("SearchProperties: %v", err)
	}

	f.backend.FailNext.Status = 500
	f.backend.FailNext.Message = "catalog offline"
	if err := f.store.SearchProperties(ctx, property.SearchQuery{}); err == nil {
		t.Fatal("expected search failure")
	}

	list := f.store.SearchResults()
	if list.Status != StatusRejected {
		t.Fatalf("Status=%q want rejected", list.Status)
	}
	if list.Err != "catalog offline" {
		t.Fatalf("Err=%q want server message", list.Err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("previous page dropped, got %d items", len(list.Items))
	}
}

func TestRejectedUsesFallbackWithoutServerMessage(t *testing.T) {
	f := setup(t)
	f.backend.FailNext.Status = 500

	err := f.store.SearchProperties(context.Background(), property.SearchQuery{})
	if err == nil {
		t.Fatal("expected search failure")
	}
	if !strings.Contains(err.Error(), "Failed to search properties") {
		t.Fatalf("err=%q want fallback text", err)
	}
}

func TestStaleSettleIsDiscarded(t *testing.T) {
	f := setup(t)
	s := f.store

	first := s.begin(&s.properties.search.Lifecycle)
	second := s.begin(&s.properties.search.Lifecycle)

	// the first dispatch settles after being superseded; its rejection must
	// not land
	err := s.fail(&s.properties.search.Lifecycle, first, &api.Error{Status: 500, Message: "late failure"}, "fallback")
	if err == nil {
		t.Fatal("fail should still report to its own caller")
	}
	if got := s.SearchResults(); got.Status != StatusPending || got.Err != "" {
		t.Fatalf("stale settle landed: status=%q err=%q", got.Status, got.Err)
	}

	s.mu.Lock()
	if supersededLocked(&s.properties.search.Lifecycle, second) {
		s.mu.Unlock()
		t.Fatal("live token reported superseded")
	}
	fulfillLocked(&s.properties.search.Lifecycle)
	s.mu.Unlock()

	if got := s.SearchResults(); got.Status != StatusFulfilled {
		t.Fatalf("Status=%q want fulfilled", got.Status)
	}
}

// Normalized cache ------------------------------------------------------------

func TestCancelVisibleThroughEveryProjection(t *testing.T) {
	f := setup(t)
	p := f.seedProperty("Harbor Flat", "Lisbon", 80)
	res := f.seedReservation(p, reservation.StatusConfirmed)
	ctx := context.Background()

	if err := f.store.FetchUpcomingReservations(ctx, 0, 10); err != nil {
		t.Fatalf("FetchUpcomingReservations: %v", err)
	}
	if err := f.store.FetchUserReservations(ctx, 0, 10); err != nil {
		t.Fatalf("FetchUserReservations: %v", err)
	}
	if err := f.store.FetchPropertyReservations(ctx, p.ID, 0, 10); err != nil {
		t.Fatalf("FetchPropertyReservations: %v", err)
	}

	if err := f.store.CancelReservation(ctx, res.ID); err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}

	for name, list := range map[string]ReservationList{
		"upcoming": f.store.UpcomingReservations(),
		"all":      f.store.UserReservations(),
	} {
		if len(list.Items) != 1 {
			t.Fatalf("%s: got %d items want 1", name, len(list.Items))
		}
		if list.Items[0].Status != reservation.StatusCancelled {
			t.Fatalf("%s: status=%q want CANCELLED", name, list.Items[0].Status)
		}
	}
	_, byProperty := f.store.PropertyReservations()
	if byProperty.Items[0].Status != reservation.StatusCancelled {
		t.Fatalf("byProperty: status=%q want CANCELLED", byProperty.Items[0].Status)
	}
}

func TestCancelRefusesTerminalLocally(t *testing.T) {
	f := setup(t)
	p := f.seedProperty("Harbor Flat", "Lisbon", 80)
	res := f.seedReservation(p, reservation.StatusCancelled)
	ctx := context.Background()

	if err := f.store.FetchUserReservations(ctx, 0, 10); err != nil {
		t.Fatalf("FetchUserReservations: %v", err)
	}
	if err := f.store.CancelReservation(ctx, res.ID); err == nil {
		t.Fatal("expected local refusal for terminal reservation")
	}
}

func TestCreatedReviewLandsInBothProjections(t *testing.T) {
	f := setup(t)
	p := f.seedProperty("Harbor Flat", "Lisbon", 80)
	ctx := context.Background()

	if err := f.store.FetchPropertyReviews(ctx, p.ID, 0, 10); err != nil {
		t.Fatalf("FetchPropertyReviews: %v", err)
	}
	if err := f.store.FetchUserReviews(ctx, 0, 10); err != nil {
		t.Fatalf("FetchUserReviews: %v", err)
	}

	if err := f.store.CreateReview(ctx, p.ID, review.Draft{Rating: 5, Comment: "Great stay"}); err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	_, byProperty := f.store.PropertyReviews()
	if len(byProperty.Items) != 1 || byProperty.Items[0].Comment != "Great stay" {
		t.Fatalf("byProperty=%+v", byProperty.Items)
	}
	byUser := f.store.UserReviews()
	if len(byUser.Items) != 1 || byUser.Items[0].ID != byProperty.Items[0].ID {
		t.Fatalf("byUser=%+v", byUser.Items)
	}
}

func TestDeletedReviewLeavesBothProjections(t *testing.T) {
	f := setup(t)
	p := f.seedProperty("Harbor Flat", "Lisbon", 80)
	rv := f.backend.SeedReview(review.Review{PropertyID: p.ID, UserID: f.user.ID, Rating: 4})
	ctx := context.Background()

	if err := f.store.FetchPropertyReviews(ctx, p.ID, 0, 10); err != nil {
		t.Fatalf("FetchPropertyReviews: %v", err)
	}
	if err := f.store.FetchUserReviews(ctx, 0, 10); err != nil {
		t.Fatalf("FetchUserReviews: %v", err)
	}

	if err := f.store.DeleteReview(ctx, rv.ID); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}

	if _, byProperty := f.store.PropertyReviews(); len(byProperty.Items) != 0 {
		t.Fatalf("byProperty still has %d items", len(byProperty.Items))
	}
	if byUser := f.store.UserReviews(); len(byUser.Items) != 0 {
		t.Fatalf("byUser still has %d items", len(byUser.Items))
	}
}

func TestDeletePropertyDropsEveryProjection(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if err := f.store.CreateProperty(ctx, property.Draft{
		Title:   "Garden Studio",
		Type:    "STUDIO",
		Price:   65,
		Address: property.Address{City: "Faro"},
		Status:  property.StatusAvailable,
	}); err != nil {
		t.Fatalf("CreateProperty: %v", err)
	}
	owner := f.store.OwnerProperties()
	if len(owner.Items) != 1 {
		t.Fatalf("owner=%d items want 1", len(owner.Items))
	}
	id := owner.Items[0].ID

	if err := f.store.SearchProperties(ctx, property.SearchQuery{}); err != nil {
		t.Fatalf("SearchProperties: %v", err)
	}

	if err := f.store.DeleteProperty(ctx, id); err != nil {
		t.Fatalf("DeleteProperty: %v", err)
	}
	if owner := f.store.OwnerProperties(); len(owner.Items) != 0 {
		t.Fatalf("owner still has %d items", len(owner.Items))
	}
	if search := f.store.SearchResults(); len(search.Items) != 0 {
		t.Fatalf("search still has %d items", len(search.Items))
	}
}

// Booking ---------------------------------------------------------------------

func TestBookingBlockedWhenUnavailable(t *testing.T) {
	f := setup(t)
	p := f.seedProperty("Harbor Flat", "Lisbon", 80)
	f.backend.Unavailable[p.ID] = true
	ctx := context.Background()

	if err := f.store.CheckAvailability(ctx, p.ID, "2026-10-01", "2026-10-04"); err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if b := f.store.BookingView(); b.Available {
		t.Fatal("Available=true for blocked property")
	}

	req := reservation.CreateRequest{
		PropertyID:   p.ID,
		CheckInDate:  "2026-10-01",
		CheckOutDate: "2026-10-04",
		GuestCount:   2,
	}
	if f.store.CanSubmitBooking(req) {
		t.Fatal("CanSubmitBooking=true")
	}
	if err := f.store.SubmitBooking(ctx, req); err == nil {
		t.Fatal("expected local refusal")
	}
	if _, ok := f.store.CreatedReservation(); ok {
		t.Fatal("a reservation was recorded")
	}
}

func TestBookingVerdictBoundToExactRange(t *testing.T) {
	f := setup(t)
	p := f.seedProperty("Harbor Flat", "Lisbon", 80)
	ctx := context.Background()

	if err := f.store.CheckAvailability(ctx, p.ID, "2026-10-01", "2026-10-04"); err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}

	// same property, different dates: the verdict does not transfer
	req := reservation.CreateRequest{
		PropertyID:   p.ID,
		CheckInDate:  "2026-11-01",
		CheckOutDate: "2026-11-04",
		GuestCount:   2,
	}
	if f.store.CanSubmitBooking(req) {
		t.Fatal("verdict transferred to a different range")
	}
}

func TestBookingSubmitCreatesAndPatchesLists(t *testing.T) {
	f := setup(t)
	p := f.seedProperty("Harbor Flat", "Lisbon", 80)
	ctx := context.Background()

	if err := f.store.CheckAvailability(ctx, p.ID, "2026-10-01", "2026-10-04"); err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	req := reservation.CreateRequest{
		PropertyID:   p.ID,
		CheckInDate:  "2026-10-01",
		CheckOutDate: "2026-10-04",
		GuestCount:   2,
	}
	if err := f.store.SubmitBooking(ctx, req); err != nil {
		t.Fatalf("SubmitBooking: %v", err)
	}

	created, ok := f.store.CreatedReservation()
	if !ok {
		t.Fatal("no created reservation recorded")
	}
	if created.TotalPrice != 240 {
		t.Fatalf("TotalPrice=%.2f want 240", created.TotalPrice)
	}
	upcoming := f.store.UpcomingReservations()
	if len(upcoming.Items) != 1 || upcoming.Items[0].ID != created.ID {
		t.Fatalf("upcoming=%+v", upcoming.Items)
	}
}

// Session boundary ------------------------------------------------------------

func TestClearUserStateDropsUserSlices(t *testing.T) {
	f := setup(t)
	p := f.seedProperty("Harbor Flat", "Lisbon", 80)
	f.seedReservation(p, reservation.StatusConfirmed)
	ctx := context.Background()

	if err := f.store.FetchUserReservations(ctx, 0, 10); err != nil {
		t.Fatalf("FetchUserReservations: %v", err)
	}
	if err := f.store.FetchProfile(ctx); err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if err := f.store.SearchProperties(ctx, property.SearchQuery{}); err != nil {
		t.Fatalf("SearchProperties: %v", err)
	}

	f.store.ClearUserState()

	if list := f.store.UserReservations(); len(list.Items) != 0 || list.Status != StatusIdle {
		t.Fatalf("reservations survived: %d items, status=%q", len(list.Items), list.Status)
	}
	if _, ok := f.store.Profile(); ok {
		t.Fatal("profile survived")
	}
	// public search data is not user state
	if list := f.store.SearchResults(); len(list.Items) != 1 {
		t.Fatalf("public search dropped, %d items", len(list.Items))
	}
}

func TestFetchProfileStoresUser(t *testing.T) {
	f := setup(t)
	if err := f.store.FetchProfile(context.Background()); err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	u, ok := f.store.Profile()
	if !ok || u.Email != "guest@example.com" {
		t.Fatalf("got ok=%v user=%+v", ok, u)
	}
}
