package services

import (
	"context"

	"github.com/test89/property_client/internal/api"
	"github.com/test89/property_client/internal/domain/user"
)

// Auth wraps the authentication endpoints.
type Auth struct {
	client *api.Client
}

// NewAuth creates the auth service module.
func NewAuth(client *api.Client) *Auth {
	return &Auth{client: client}
}

// Login exchanges credentials for a token and the authenticated user.
func (a *Auth) Login(ctx context.Context, creds user.Credentials) (user.AuthResponse, error) {
	if err := checkValid(creds); err != nil {
		return user.AuthResponse{}, err
	}
	var resp user.AuthResponse
	if err := a.client.Post(ctx, "/auth/login", creds, &resp); err != nil {
		return user.AuthResponse{}, err
	}
	return resp, nil
}

// Register creates an account and returns a fresh session token with it.
func (a *Auth) Register(ctx context.Context, reg user.Registration) (user.AuthResponse, error) {
	if err := checkValid(reg); err != nil {
		return user.AuthResponse{}, err
	}
	var resp user.AuthResponse
	if err := a.client.Post(ctx, "/auth/register", reg, &resp); err != nil {
		return user.AuthResponse{}, err
	}
	return resp, nil
}

// Profile fetches the current user's record, confirming the session.
func (a *Auth) Profile(ctx context.Context) (user.User, error) {
	var u user.User
	if err := a.client.Get(ctx, "/users/profile", nil, &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}
