package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var userRoles = []interface{}{"admin", "editor", "user"}

type User struct {
	ID         int64      `json:"id,omitempty"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name,omitempty"`
	LastName   string     `json:"last_name,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Role       string     `json:"role,omitempty"`
	IsActive   bool       `json:"is_active"`
	Password   string     `json:"password,omitempty"`
	DateJoined *time.Time `json:"date_joined,omitempty"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

func (u User) EntityID() string { return idString(u.ID) }

// Validate checks a user record; a password is required until the user
// has an id.
func (u User) Validate() error {
	return u.validate(u.ID == 0)
}

// ValidateUpdate checks an edit of an existing user, where an empty
// password keeps the current one.
func (u User) ValidateUpdate() error {
	return u.validate(false)
}

func (u User) validate(requirePassword bool) error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Email, validation.Required, is.EmailFormat),
		validation.Field(&u.Role, validation.In(userRoles...)),
		validation.Field(&u.Password, validation.When(requirePassword, validation.Required), validation.Length(8, 128)),
	)
}

func (u User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}

// Profile is the signed-in user's own record. It has no collection; the
// slice keeps it as the selected record.
type Profile struct {
	ID        int64  `json:"id,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Role      string `json:"role,omitempty"`
}

func (p Profile) EntityID() string { return idString(p.ID) }

func (p Profile) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.EmailFormat),
		validation.Field(&p.FirstName, validation.Length(0, 150)),
		validation.Field(&p.LastName, validation.Length(0, 150)),
	)
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required),
	)
}

// LoginResponse accepts both the {access, refresh} and the
// {token, accessToken, refreshToken} shapes of the auth endpoints.
type LoginResponse struct {
	Access       string `json:"access"`
	Refresh      string `json:"refresh"`
	Token        string `json:"token"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

func (r LoginResponse) BearerToken() string {
	for _, value := range []string{r.Access, r.AccessToken, r.Token} {
		if value != "" {
			return value
		}
	}
	return ""
}

func (r LoginResponse) RefreshValue() string {
	if r.Refresh != "" {
		return r.Refresh
	}
	return r.RefreshToken
}
