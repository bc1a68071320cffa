package state

import (
	"context"
	"io"

	"github.com/test89/property_client/internal/domain/user"
)

type profileState struct {
	user    user.User
	hasUser bool

	fetch    Lifecycle
	update   Lifecycle
	password Lifecycle
	upload   Lifecycle
}

// ProfileOps exposes the profile mutation lifecycles.
type ProfileOps struct {
	Fetch    Lifecycle
	Update   Lifecycle
	Password Lifecycle
	Upload   Lifecycle
}

// Profile returns the loaded account record, if any.
func (s *Store) Profile() (user.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.user, s.profile.hasUser
}

// ProfileOps returns the profile lifecycles.
func (s *Store) ProfileOps() ProfileOps {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ProfileOps{
		Fetch:    s.profile.fetch,
		Update:   s.profile.update,
		Password: s.profile.password,
		Upload:   s.profile.upload,
	}
}

// FetchProfile loads the current account record.
func (s *Store) FetchProfile(ctx context.Context) error {
	token := s.begin(&s.profile.fetch)
	u, err := s.userSvc.Profile(ctx)
	if err != nil {
		return s.fail(&s.profile.fetch, token, err, "Failed to fetch profile")
	}

	s.mu.Lock()
	if supersededLocked(&s.profile.fetch, token) {
		s.mu.Unlock()
		return nil
	}
	s.profile.user = u
	s.profile.hasUser = true
	fulfillLocked(&s.profile.fetch)
	s.mu.Unlock()
	s.notify()
	return nil
}

// UpdateProfile saves account edits and replaces the cached record.
func (s *Store) UpdateProfile(ctx context.Context, update user.ProfileUpdate) error {
	token := s.begin(&s.profile.update)
	u, err := s.userSvc.UpdateProfile(ctx, update)
	if err != nil {
		return s.fail(&s.profile.update, token, err, "Failed to update profile")
	}

	s.mu.Lock()
	if supersededLocked(&s.profile.update, token) {
		s.mu.Unlock()
		return nil
	}
	s.profile.user = u
	s.profile.hasUser = true
	fulfillLocked(&s.profile.update)
	s.mu.Unlock()
	s.notify()
	return nil
}

// ChangePassword submits a password change. No local state beyond the
// lifecycle changes.
func (s *Store) ChangePassword(ctx context.Context, change user.PasswordChange) error {
	token := s.begin(&s.profile.password)
	if err := s.userSvc.ChangePassword(ctx, change); err != nil {
		return s.fail(&s.profile.password, token, err, "Failed to change password")
	}

	s.mu.Lock()
	if supersededLocked(&s.profile.password, token) {
		s.mu.Unlock()
		return nil
	}
	fulfillLocked(&s.profile.password)
	s.mu.Unlock()
	s.notify()
	return nil
}

// UploadProfileImage attaches an avatar and replaces the cached record.
func (s *Store) UploadProfileImage(ctx context.Context, filename string, r io.Reader) error {
	token := s.begin(&s.profile.upload)
	u, err := s.userSvc.UploadImage(ctx, filename, r)
	if err != nil {
		return s.fail(&s.profile.upload, token, err, "Failed to upload profile image")
	}

	s.mu.Lock()
	if supersededLocked(&s.profile.upload, token) {
		s.mu.Unlock()
		return nil
	}
	s.profile.user = u
	s.profile.hasUser = true
	fulfillLocked(&s.profile.upload)
	s.mu.Unlock()
	s.notify()
	return nil
}

// ClearUserState drops everything tied to the signed-in user. The session
// manager calls it on logout and on auth expiry.
func (s *Store) ClearUserState() {
	s.mu.Lock()
	s.reservations = reservationsState{}
	s.reviews.byUser = listView{}
	s.reviews.create = Lifecycle{}
	s.reviews.update = Lifecycle{}
	s.reviews.remove = Lifecycle{}
	s.dashboard = dashboardState{}
	s.profile = profileState{}
	s.booking = bookingState{}
	s.properties.owner = listView{}
	s.properties.favorites = listView{}
	s.properties.recommended = listView{}
	s.mu.Unlock()
	s.notify()
}
