// README: User account model (passengers and drivers share one record).
package user

import (
	"time"

	"ridehail/internal/types"
)

type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
)

func (r Role) Valid() bool {
	return r == RolePassenger || r == RoleDriver
}

const DefaultLanguage = "en"

type User struct {
	ID           types.ID  `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	Language     string    `json:"language"`
	Online       bool      `json:"online"`
	CreatedAt    time.Time `json:"created_at"`
}

// Patch carries optional profile changes; nil fields are left untouched.
type Patch struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Language    *string `json:"language"`
	Online      *bool   `json:"online"`
}

func (p Patch) apply(u User) User {
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Language != nil {
		u.Language = *p.Language
	}
	if p.Online != nil {
		u.Online = *p.Online
	}
	return u
}
