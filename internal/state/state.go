// Package state is the client-side cache of server data plus the request
// lifecycle of every tracked operation. Views read materialized snapshots
// and re-render on change notifications; all mutation happens here, under
// one mutex, never in view code.
//
// Two rules shape the design. Entities live in a single normalized cache
// keyed by id, and every list is a projection of ids over that cache, so a
// mutation patches exactly one place and every list containing the record
// sees it. And every dispatch carries a token; a settle whose token has
// been superseded by a newer dispatch is discarded, so a slow stale
// response can never overwrite newer state.
package state

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/test89/property_client/internal/api"
	"github.com/test89/property_client/internal/services"
	"github.com/test89/property_client/pkg/logger"
)

// Status is the request lifecycle of one tracked operation.
type Status string

// StatusIdle is the zero value so fresh and reset segments need no
// initialization.
const (
	StatusIdle      Status = ""
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusRejected  Status = "rejected"
)

// Lifecycle is the observable request state of an operation segment.
type Lifecycle struct {
	Status Status
	Err    string

	token string
}

// Loading reports whether the operation is in flight.
func (l Lifecycle) Loading() bool { return l.Status == StatusPending }

// Config wires the store to the service modules.
type Config struct {
	Properties   *services.Properties
	Reservations *services.Reservations
	Reviews      *services.Reviews
	Users        *services.Users
	Logger       *logger.Logger
}

// Store holds every slice. Safe for concurrent use.
type Store struct {
	mu sync.Mutex

	propertySvc    *services.Properties
	reservationSvc *services.Reservations
	reviewSvc      *services.Reviews
	userSvc        *services.Users
	log            *logger.Logger

	cache *entityCache

	properties   propertiesState
	booking      bookingState
	reservations reservationsState
	reviews      reviewsState
	dashboard    dashboardState
	profile      profileState

	subscribers []func()
}

// New creates an empty store over the given service modules.
func New(cfg Config) *Store {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Store{
		propertySvc:    cfg.Properties,
		reservationSvc: cfg.Reservations,
		reviewSvc:      cfg.Reviews,
		userSvc:        cfg.Users,
		log:            log,
		cache:          newEntityCache(),
	}
}

// Subscribe registers a change callback invoked after every committed
// transition. The view layer uses it as its re-render signal.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// begin moves a segment to pending, clears its previous error, and returns
// the dispatch token the settle must present.
func (s *Store) begin(lc *Lifecycle) string {
	s.mu.Lock()
	token := uuid.NewString()
	lc.token = token
	lc.Status = StatusPending
	lc.Err = ""
	s.mu.Unlock()
	s.notify()
	return token
}

// fail settles a segment as rejected with the display message for err,
// leaving previously cached data untouched. A superseded token is dropped.
// The returned error carries the surfaced message for direct callers.
func (s *Store) fail(lc *Lifecycle, token string, err error, fallback string) error {
	msg := api.Message(err, fallback)
	s.mu.Lock()
	if lc.token == token {
		lc.Status = StatusRejected
		lc.Err = msg
	}
	s.mu.Unlock()
	s.notify()
	return errors.New(msg)
}

// failSilent wraps the display message for operations tracked by no
// lifecycle segment, such as favorite toggles.
func (s *Store) failSilent(err error, fallback string) error {
	return errors.New(api.Message(err, fallback))
}

// fulfillLocked settles a segment as fulfilled. Callers hold the mutex and
// have already checked the token.
func fulfillLocked(lc *Lifecycle) {
	lc.Status = StatusFulfilled
	lc.Err = ""
}

// supersededLocked reports whether the settle for token lost to a newer
// dispatch.
func supersededLocked(lc *Lifecycle, token string) bool {
	return lc.token != token
}

// resetLocked returns a segment to idle.
func resetLocked(lc *Lifecycle) {
	*lc = Lifecycle{}
}
