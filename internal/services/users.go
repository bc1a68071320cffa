package services

import (
	"context"
	"io"

	"github.com/test89/property_client/internal/api"
	"github.com/test89/property_client/internal/domain/user"
)

// Users wraps the profile endpoints.
type Users struct {
	client *api.Client
}

// NewUsers creates the user profile service module.
func NewUsers(client *api.Client) *Users {
	return &Users{client: client}
}

// Profile fetches the current user's profile.
func (s *Users) Profile(ctx context.Context) (user.User, error) {
	var u user.User
	if err := s.client.Get(ctx, "/users/profile", nil, &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// UpdateProfile saves the editable profile fields.
func (s *Users) UpdateProfile(ctx context.Context, update user.ProfileUpdate) (user.User, error) {
	if err := checkValid(update); err != nil {
		return user.User{}, err
	}
	var u user.User
	if err := s.client.Put(ctx, "/users/profile", update, &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// ChangePassword updates the account password.
func (s *Users) ChangePassword(ctx context.Context, change user.PasswordChange) error {
	if err := checkValid(change); err != nil {
		return err
	}
	return s.client.Put(ctx, "/users/change-password", change, nil)
}

// UploadImage replaces the profile picture.
func (s *Users) UploadImage(ctx context.Context, filename string, r io.Reader) (user.User, error) {
	var u user.User
	if err := s.client.Upload(ctx, "/users/profile/image", "file", filename, r, &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}
