package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/test89/property_client/internal/api"
	"github.com/test89/property_client/internal/config"
	"github.com/test89/property_client/internal/services"
	"github.com/test89/property_client/internal/session"
	"github.com/test89/property_client/internal/state"
	"github.com/test89/property_client/pkg/logger"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: propertyctl <command> [flags]

Account:
  login         Sign in and store the session token
  register      Create an account and sign in
  logout        Drop the stored session
  whoami        Show the signed-in user
  profile       Show or update the profile
  password      Change the password

Browsing:
  search        Search public listings
  show          Show one listing with its reviews
  featured      List featured listings
  recommended   List recommended listings
  favorites     List or toggle favorites

Booking:
  availability  Check a date range
  book          Check availability and create a reservation
  reservations  List your reservations
  cancel        Cancel a reservation
  review        Create, update, or delete a review
  reviews       List your reviews

Hosting:
  listings      List your properties
  listing       Create, update, or delete a property
  bookings      List bookings on your properties
  confirm       Set a booking status
  dashboard     Show listing statistics
  filters       Show the search filter values
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	a, err := newApp()
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	ctx := context.Background()
	cmd, args := os.Args[1], os.Args[2:]

	// Commands below the account group expect a live session when one is
	// stored; an expired token is dropped before the command runs.
	if cmd != "login" && cmd != "register" && cmd != "logout" {
		if _, err := a.session.Rehydrate(ctx); err != nil {
			a.log.WithError(err).Warn("session rehydrate failed")
		}
	}

	run := map[string]func(context.Context, []string) error{
		"login":        a.cmdLogin,
		"register":     a.cmdRegister,
		"logout":       a.cmdLogout,
		"whoami":       a.cmdWhoami,
		"profile":      a.cmdProfile,
		"password":     a.cmdPassword,
		"search":       a.cmdSearch,
		"show":         a.cmdShow,
		"featured":     a.cmdFeatured,
		"recommended":  a.cmdRecommended,
		"favorites":    a.cmdFavorites,
		"availability": a.cmdAvailability,
		"book":         a.cmdBook,
		"reservations": a.cmdReservations,
		"cancel":       a.cmdCancel,
		"review":       a.cmdReview,
		"reviews":      a.cmdReviews,
		"listings":     a.cmdListings,
		"listing":      a.cmdListing,
		"filters":      a.cmdFilters,
		"bookings":     a.cmdBookings,
		"confirm":      a.cmdConfirm,
		"dashboard":    a.cmdDashboard,
	}[cmd]
	if run == nil {
		usage()
	}

	if err := run(ctx, args); err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

type app struct {
	cfg     *config.Config
	log     *logger.Logger
	session *session.Manager
	store   *state.Store
}

func newApp() (*app, error) {
	cfg, err := config.LoadFile(configPath())
	if err != nil {
		return nil, err
	}
	lg := logger.New("propertyctl", os.Stderr, cfg.LogLevel)

	tokens, err := session.NewFileStore("")
	if err != nil {
		return nil, err
	}
	mgr, err := session.NewManager(tokens, lg)
	if err != nil {
		return nil, err
	}

	client, err := api.New(api.Config{
		BaseURL: config.ResolveBaseURL(cfg.BaseURL, os.Getenv("HOSTNAME")),
		Timeout: cfg.Timeout,
		Tokens:  mgr,
		Logger:  lg,
	})
	if err != nil {
		return nil, err
	}

	auth := services.NewAuth(client)
	mgr.AttachAuth(auth)
	client.SetUnauthorizedHook(mgr.Invalidate)

	store := state.New(state.Config{
		Properties:   services.NewProperties(client),
		Reservations: services.NewReservations(client),
		Reviews:      services.NewReviews(client),
		Users:        services.NewUsers(client),
		Logger:       lg,
	})
	mgr.SetExpiredHandler(func() {
		store.ClearUserState()
		fmt.Fprintln(os.Stderr, "session expired, please log in again")
	})

	return &app{cfg: cfg, log: lg, session: mgr, store: store}, nil
}

func configPath() string {
	if p := os.Getenv("PROPERTYCTL_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "propertyctl.yaml"
	}
	return dir + "/propertyctl/config.yaml"
}
