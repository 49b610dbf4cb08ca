package domain

import (
	"encoding/json"
	"time"
)

const (
	RoleCustomer = "customer"
	RoleCaterer  = "caterer"
	RoleAdmin    = "admin"
)

// ResponseTimes holds the allowed response-time buckets for caterer profiles.
var ResponseTimes = []string{
	"Within an hour",
	"Within a day",
	"Within 3 days",
	"Within a week",
}

// User is an account row. List fields are always typed slices in memory;
// they are serialized to text only inside the postgres adapter.
type User struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	PasswordHash   []byte          `json:"-"`
	PasswordSalt   []byte          `json:"-"`
	Role           string          `json:"role"`
	Bio            *string         `json:"bio,omitempty"`
	Phone          *string         `json:"phone,omitempty"`
	Location       *string         `json:"location,omitempty"`
	Avatar         *string         `json:"avatar,omitempty"`
	Experience     *int            `json:"experience,omitempty"`
	ResponseTime   *string         `json:"response_time,omitempty"`
	MinGuests      *int            `json:"min_guests,omitempty"`
	MaxGuests      *int            `json:"max_guests,omitempty"`
	Specialties    []string        `json:"specialties"`
	ServiceAreas   []string        `json:"service_areas"`
	Languages      []string        `json:"languages"`
	Certifications []string        `json:"certifications"`
	Equipment      []string        `json:"equipment"`
	Availability   json.RawMessage `json:"availability,omitempty"`
	ResetToken     *string         `json:"-"`
	ResetExpires   *time.Time      `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProfileUpdate carries a partial profile edit. Nil fields are left
// untouched by the store; non-nil fields overwrite.
type ProfileUpdate struct {
	Name           *string
	Bio            *string
	Phone          *string
	Location       *string
	Avatar         *string
	Experience     *int
	ResponseTime   *string
	MinGuests      *int
	MaxGuests      *int
	Specialties    *[]string
	ServiceAreas   *[]string
	Languages      *[]string
	Certifications *[]string
	Equipment      *[]string
	Availability   *json.RawMessage
}

func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleCaterer, RoleAdmin:
		return true
	}
	return false
}

func ValidResponseTime(bucket string) bool {
	for _, rt := range ResponseTimes {
		if rt == bucket {
			return true
		}
	}
	return false
}
