// Package user mirrors the catalog's user resource and the auth payloads.
package user

// User mirrors the backend's UserDto.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        string `json:"role,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up payload. Checks mirror the registration form:
// presence, lengths, email shape, and phone shape. Password strength beyond
// length stays with the backend.
type Registration struct {
	Username    string `json:"username" validate:"required,min=3,max=20"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"firstName" validate:"required,min=2"`
	LastName    string `json:"lastName" validate:"required,min=2"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=7,max=20"`
}

// ProfileUpdate is the editable subset of the profile.
type ProfileUpdate struct {
	FirstName   string `json:"firstName" validate:"required,min=2"`
	LastName    string `json:"lastName" validate:"required,min=2"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// PasswordChange is the change-password payload.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// AuthResponse is the login/registration response: the bearer token plus the
// authenticated user record.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
