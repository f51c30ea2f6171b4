// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Preferences captures what a user told us during onboarding.
type Preferences struct {
	Styles    []string   `json:"styles,omitempty"`
	Seasons   []Season   `json:"seasons,omitempty"`
	Occasions []Occasion `json:"occasions,omitempty"`
	Goals     []string   `json:"goals,omitempty"`
	Age       string     `json:"age,omitempty"`
	Gender    string     `json:"gender,omitempty"`
}

// User represents a Drobeo account. A user signs in either with email and
// password or with a verified phone number.
type User struct {
	ID                 uint                            `gorm:"primaryKey" json:"id"`
	Username           string                          `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email              *string                         `gorm:"size:254;uniqueIndex" json:"email,omitempty"`
	Password           string                          `json:"-"`
	Name               string                          `gorm:"size:100" json:"name"`
	Avatar             string                          `json:"avatar,omitempty"`
	PhoneNumber        *string                         `gorm:"size:20;uniqueIndex" json:"phone_number,omitempty"`
	PhoneVerified      bool                            `gorm:"not null;default:false" json:"phone_verified"`
	OnboardingComplete bool                            `gorm:"not null;default:false" json:"onboarding_complete"`
	Preferences        datatypes.JSONType[Preferences] `json:"preferences"`
	CreatedAt          time.Time                       `json:"created_at"`
	UpdatedAt          time.Time                       `json:"updated_at"`
}

// HasPasswordLogin reports whether the account can authenticate with email and password.
func (u *User) HasPasswordLogin() bool {
	return u.Email != nil && *u.Email != "" && u.Password != ""
}

// HasPhoneLogin reports whether the account can authenticate with a phone code.
func (u *User) HasPhoneLogin() bool {
	return u.PhoneNumber != nil && *u.PhoneNumber != "" && u.PhoneVerified
}
