package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/test89/property_client/internal/domain/property"
	"github.com/test89/property_client/internal/domain/reservation"
	"github.com/test89/property_client/internal/domain/review"
	"github.com/test89/property_client/internal/domain/user"
	"github.com/test89/property_client/internal/state"
)

// Account ---------------------------------------------------------------------

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	fs.Parse(args)

	u, err := a.session.Login(ctx, user.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s %s <%s>\n", u.FirstName, u.LastName, u.Email)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "Username")
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Password")
	first := fs.String("first-name", "", "First name")
	last := fs.String("last-name", "", "Last name")
	phone := fs.String("phone", "", "Phone number")
	fs.Parse(args)

	u, err := a.session.Register(ctx, user.Registration{
		Username:    *username,
		Email:       *email,
		Password:    *password,
		FirstName:   *first,
		LastName:    *last,
		PhoneNumber: *phone,
	})
	if err != nil {
		return err
	}
	fmt.Printf("account created, signed in as %s\n", u.Email)
	return nil
}

func (a *app) cmdLogout(context.Context, []string) error {
	a.session.Logout()
	a.store.ClearUserState()
	fmt.Println("signed out")
	return nil
}

func (a *app) cmdWhoami(context.Context, []string) error {
	u := a.session.CurrentUser()
	if u == nil {
		return errors.New("not signed in")
	}
	fmt.Printf("%s %s <%s>", u.FirstName, u.LastName, u.Email)
	if u.Role != "" {
		fmt.Printf(" role=%s", u.Role)
	}
	fmt.Println()
	return nil
}

func (a *app) cmdProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	first := fs.String("first-name", "", "New first name")
	last := fs.String("last-name", "", "New last name")
	phone := fs.String("phone", "", "New phone number")
	image := fs.String("image", "", "Path to a new profile image")
	fs.Parse(args)

	if *image != "" {
		f, err := os.Open(*image)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := a.store.UploadProfileImage(ctx, filepath.Base(*image), f); err != nil {
			return err
		}
	}
	if *first != "" || *last != "" || *phone != "" {
		// Unset flags keep their current values, the update payload is whole.
		if err := a.store.FetchProfile(ctx); err != nil {
			return err
		}
		cur, ok := a.store.Profile()
		if !ok {
			return errors.New("no profile loaded")
		}
		upd := user.ProfileUpdate{
			FirstName:   cur.FirstName,
			LastName:    cur.LastName,
			PhoneNumber: cur.PhoneNumber,
		}
		if *first != "" {
			upd.FirstName = *first
		}
		if *last != "" {
			upd.LastName = *last
		}
		if *phone != "" {
			upd.PhoneNumber = *phone
		}
		if err := a.store.UpdateProfile(ctx, upd); err != nil {
			return err
		}
	}

	if err := a.store.FetchProfile(ctx); err != nil {
		return err
	}
	u, ok := a.store.Profile()
	if !ok {
		return errors.New("no profile loaded")
	}
	fmt.Printf("username:  %s\n", u.Username)
	fmt.Printf("name:      %s %s\n", u.FirstName, u.LastName)
	fmt.Printf("email:     %s\n", u.Email)
	if u.PhoneNumber != "" {
		fmt.Printf("phone:     %s\n", u.PhoneNumber)
	}
	return nil
}

func (a *app) cmdPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("password", flag.ExitOnError)
	current := fs.String("current", "", "Current password")
	next := fs.String("new", "", "New password")
	fs.Parse(args)

	if err := a.store.ChangePassword(ctx, user.PasswordChange{
		CurrentPassword: *current,
		NewPassword:     *next,
	}); err != nil {
		return err
	}
	fmt.Println("password changed")
	return nil
}

// Browsing --------------------------------------------------------------------

func (a *app) cmdSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	city := fs.String("city", "", "Filter by city")
	minPrice := fs.Float64("min-price", 0, "Minimum nightly price")
	maxPrice := fs.Float64("max-price", 0, "Maximum nightly price")
	bedrooms := fs.Int("bedrooms", 0, "Minimum bedrooms")
	bathrooms := fs.Int("bathrooms", 0, "Minimum bathrooms")
	maxGuests := fs.Int("max-guests", 0, "Minimum guest capacity")
	page := fs.Int("page", 0, "Page number")
	fs.Parse(args)

	err := a.store.SearchProperties(ctx, property.SearchQuery{
		City:      *city,
		MinPrice:  *minPrice,
		MaxPrice:  *maxPrice,
		Bedrooms:  *bedrooms,
		Bathrooms: *bathrooms,
		MaxGuests: *maxGuests,
		Page:      *page,
		Size:      a.cfg.PageSize,
	})
	if err != nil {
		return err
	}
	printProperties(a.store.SearchResults())
	return nil
}

func (a *app) cmdShow(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}
	if err := a.store.FetchPropertyDetails(ctx, id); err != nil {
		return err
	}
	p, _, ok := a.store.PropertyDetails()
	if !ok {
		return errors.New("property not loaded")
	}

	fmt.Printf("#%d %s (%s)\n", p.ID, p.Title, p.Status)
	fmt.Printf("%s, %s\n", p.Address.Street, p.Address.City)
	fmt.Printf("%.2f/night, %d bd / %d ba", p.Price, p.Bedrooms, p.Bathrooms)
	if p.Rating > 0 {
		fmt.Printf(", rated %.1f", p.Rating)
	}
	fmt.Println()
	if p.Description != "" {
		fmt.Println(p.Description)
	}

	if err := a.store.FetchPropertyReviews(ctx, id, 0, a.cfg.PageSize); err != nil {
		return err
	}
	_, reviews := a.store.PropertyReviews()
	for _, r := range reviews.Items {
		fmt.Printf("  [%d/5] %s: %s\n", r.Rating, r.UserName, r.Comment)
	}
	return nil
}

func (a *app) cmdFeatured(ctx context.Context, _ []string) error {
	if err := a.store.FetchFeaturedProperties(ctx); err != nil {
		return err
	}
	printProperties(a.store.FeaturedProperties())
	return nil
}

func (a *app) cmdRecommended(ctx context.Context, _ []string) error {
	if err := a.store.FetchRecommendedProperties(ctx); err != nil {
		return err
	}
	printProperties(a.store.RecommendedProperties())
	return nil
}

func (a *app) cmdFavorites(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("favorites", flag.ExitOnError)
	add := fs.Int64("add", 0, "Property id to add")
	remove := fs.Int64("remove", 0, "Property id to remove")
	fs.Parse(args)

	if *add != 0 {
		if err := a.store.AddPropertyToFavorites(ctx, *add); err != nil {
			return err
		}
	}
	if *remove != 0 {
		if err := a.store.RemovePropertyFromFavorites(ctx, *remove); err != nil {
			return err
		}
	}
	if err := a.store.FetchFavoriteProperties(ctx); err != nil {
		return err
	}
	printProperties(a.store.FavoriteProperties())
	return nil
}

// Booking ---------------------------------------------------------------------

func (a *app) cmdAvailability(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("availability", flag.ExitOnError)
	id := fs.Int64("property", 0, "Property id")
	checkIn := fs.String("check-in", "", "Check-in date (YYYY-MM-DD)")
	checkOut := fs.String("check-out", "", "Check-out date (YYYY-MM-DD)")
	fs.Parse(args)

	if err := a.store.CheckAvailability(ctx, *id, *checkIn, *checkOut); err != nil {
		return err
	}
	b := a.store.BookingView()
	if b.Available {
		fmt.Printf("available for %d night(s)\n", property.Nights(*checkIn, *checkOut))
	} else {
		fmt.Println("not available for those dates")
	}
	return nil
}

func (a *app) cmdBook(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	id := fs.Int64("property", 0, "Property id")
	checkIn := fs.String("check-in", "", "Check-in date (YYYY-MM-DD)")
	checkOut := fs.String("check-out", "", "Check-out date (YYYY-MM-DD)")
	guests := fs.Int("guests", 1, "Guest count")
	requests := fs.String("requests", "", "Special requests")
	fs.Parse(args)

	if err := a.store.CheckAvailability(ctx, *id, *checkIn, *checkOut); err != nil {
		return err
	}
	req := reservation.CreateRequest{
		PropertyID:      *id,
		CheckInDate:     *checkIn,
		CheckOutDate:    *checkOut,
		GuestCount:      *guests,
		SpecialRequests: *requests,
	}
	if err := a.store.SubmitBooking(ctx, req); err != nil {
		return err
	}
	res, ok := a.store.CreatedReservation()
	if !ok {
		return errors.New("reservation not recorded")
	}
	fmt.Printf("reservation #%d created: %s to %s, total %.2f (%s)\n",
		res.ID, res.CheckInDate, res.CheckOutDate, res.TotalPrice, res.Status)
	return nil
}

func (a *app) cmdReservations(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reservations", flag.ExitOnError)
	upcoming := fs.Bool("upcoming", false, "Only upcoming stays")
	page := fs.Int("page", 0, "Page number")
	fs.Parse(args)

	var list state.ReservationList
	if *upcoming {
		if err := a.store.FetchUpcomingReservations(ctx, *page, a.cfg.PageSize); err != nil {
			return err
		}
		list = a.store.UpcomingReservations()
	} else {
		if err := a.store.FetchUserReservations(ctx, *page, a.cfg.PageSize); err != nil {
			return err
		}
		list = a.store.UserReservations()
	}
	printReservations(list)
	return nil
}

func (a *app) cmdCancel(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}
	if err := a.store.CancelReservation(ctx, id); err != nil {
		return err
	}
	fmt.Printf("reservation #%d cancelled\n", id)
	return nil
}

func (a *app) cmdReview(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	propertyID := fs.Int64("property", 0, "Property id (create)")
	reviewID := fs.Int64("id", 0, "Review id (update or delete)")
	rating := fs.Int("rating", 0, "Rating 1-5")
	comment := fs.String("comment", "", "Review text")
	del := fs.Bool("delete", false, "Delete the review")
	fs.Parse(args)

	switch {
	case *del:
		if err := a.store.DeleteReview(ctx, *reviewID); err != nil {
			return err
		}
		fmt.Printf("review #%d deleted\n", *reviewID)
	case *reviewID != 0:
		if err := a.store.UpdateReview(ctx, *reviewID, review.Draft{Rating: *rating, Comment: *comment}); err != nil {
			return err
		}
		fmt.Printf("review #%d updated\n", *reviewID)
	default:
		if err := a.store.CreateReview(ctx, *propertyID, review.Draft{Rating: *rating, Comment: *comment}); err != nil {
			return err
		}
		fmt.Println("review submitted")
	}
	return nil
}

func (a *app) cmdReviews(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reviews", flag.ExitOnError)
	page := fs.Int("page", 0, "Page number")
	fs.Parse(args)

	if err := a.store.FetchUserReviews(ctx, *page, a.cfg.PageSize); err != nil {
		return err
	}
	list := a.store.UserReviews()
	for _, r := range list.Items {
		fmt.Printf("#%d property %d [%d/5] %s\n", r.ID, r.PropertyID, r.Rating, r.Comment)
	}
	fmt.Printf("page %d of %d\n", list.Page+1, list.TotalPages)
	return nil
}

// Hosting ---------------------------------------------------------------------

func (a *app) cmdListings(ctx context.Context, _ []string) error {
	if err := a.store.FetchOwnerProperties(ctx); err != nil {
		return err
	}
	printProperties(a.store.OwnerProperties())
	return nil
}

func (a *app) cmdListing(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("listing", flag.ExitOnError)
	id := fs.Int64("id", 0, "Property id (update, delete, or image upload)")
	del := fs.Bool("delete", false, "Delete the property")
	image := fs.String("image", "", "Path to an image to attach")
	title := fs.String("title", "", "Title")
	description := fs.String("description", "", "Description")
	kind := fs.String("type", "", "Property type")
	price := fs.Float64("price", 0, "Nightly price")
	bedrooms := fs.Int("bedrooms", 0, "Bedrooms")
	bathrooms := fs.Int("bathrooms", 0, "Bathrooms")
	street := fs.String("street", "", "Street address")
	city := fs.String("city", "", "City")
	country := fs.String("country", "", "Country")
	status := fs.String("status", property.StatusAvailable, "Listing status")
	fs.Parse(args)

	if *del {
		if err := a.store.DeleteProperty(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("property #%d deleted\n", *id)
		return nil
	}
	if *image != "" {
		f, err := os.Open(*image)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := a.store.UploadPropertyImage(ctx, *id, filepath.Base(*image), f); err != nil {
			return err
		}
		fmt.Printf("image attached to property #%d\n", *id)
		return nil
	}

	draft := property.Draft{
		Title:       *title,
		Description: *description,
		Type:        *kind,
		Price:       *price,
		Bedrooms:    *bedrooms,
		Bathrooms:   *bathrooms,
		Address:     property.Address{Street: *street, City: *city, Country: *country},
		Status:      *status,
	}
	if *id != 0 {
		if err := a.store.UpdateProperty(ctx, *id, draft); err != nil {
			return err
		}
		fmt.Printf("property #%d updated\n", *id)
		return nil
	}
	if err := a.store.CreateProperty(ctx, draft); err != nil {
		return err
	}
	fmt.Println("property created")
	return nil
}

func (a *app) cmdFilters(ctx context.Context, _ []string) error {
	if err := a.store.FetchPropertyFilters(ctx); err != nil {
		return err
	}
	f, _ := a.store.PropertyFilters()
	fmt.Printf("types:  %v\n", f.Types)
	fmt.Printf("cities: %v\n", f.Cities)
	return nil
}

func (a *app) cmdBookings(ctx context.Context, _ []string) error {
	if err := a.store.FetchOwnerBookings(ctx); err != nil {
		return err
	}
	printReservations(a.store.OwnerBookings())
	return nil
}

func (a *app) cmdConfirm(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("confirm", flag.ExitOnError)
	id := fs.Int64("id", 0, "Reservation id")
	status := fs.String("status", reservation.StatusConfirmed, "New status")
	fs.Parse(args)

	if err := a.store.UpdateReservationStatus(ctx, *id, *status); err != nil {
		return err
	}
	fmt.Printf("reservation #%d set to %s\n", *id, *status)
	return nil
}

func (a *app) cmdDashboard(ctx context.Context, _ []string) error {
	if err := a.store.FetchDashboardStats(ctx); err != nil {
		return err
	}
	stats, _ := a.store.DashboardStats()
	fmt.Printf("properties:  %d\n", stats.TotalProperties)
	fmt.Printf("revenue:     %.2f\n", stats.TotalRevenue)
	fmt.Printf("active:      %d\n", stats.ActiveBookings)
	fmt.Printf("pending:     %d\n", stats.PendingBookings)
	fmt.Printf("confirmed:   %d\n", stats.ConfirmedBookings)
	fmt.Printf("cancelled:   %d\n", stats.CancelledBookings)
	return nil
}

// Output ----------------------------------------------------------------------

func printProperties(list state.PropertyList) {
	for _, p := range list.Items {
		fmt.Printf("#%-5d %-32s %-14s %8.2f/night  %dbd/%dba\n",
			p.ID, p.Title, p.Address.City, p.Price, p.Bedrooms, p.Bathrooms)
	}
	if list.TotalPages > 1 {
		fmt.Printf("page %d of %d\n", list.Page+1, list.TotalPages)
	}
}

func printReservations(list state.ReservationList) {
	for _, r := range list.Items {
		title := ""
		if r.Property != nil {
			title = r.Property.Title
		}
		fmt.Printf("#%-5d %-32s %s to %s  %d guest(s)  %8.2f  %s\n",
			r.ID, title, r.CheckInDate, r.CheckOutDate, r.GuestCount, r.TotalPrice, r.Status)
	}
	if list.TotalPages > 1 {
		fmt.Printf("page %d of %d\n", list.Page+1, list.TotalPages)
	}
}

func argID(args []string) (int64, error) {
	if len(args) < 1 {
		return 0, errors.New("an id argument is required")
	}
	return strconv.ParseInt(args[0], 10, 64)
}
