package http

import (
	"encoding/json"

	"github.com/feastflow/feastflow-api/internal/domain"
)

// UpdateProfileRequest is a partial profile edit. Absent fields stay
// untouched; present fields overwrite.
type UpdateProfileRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=2"`
	Bio            *string          `json:"bio"`
	Phone          *string          `json:"phone"`
	Location       *string          `json:"location"`
	Avatar         *string          `json:"avatar"`
	Experience     *int             `json:"experience" validate:"omitempty,gte=0"`
	ResponseTime   *string          `json:"response_time"`
	MinGuests      *int             `json:"min_guests" validate:"omitempty,gte=0"`
	MaxGuests      *int             `json:"max_guests" validate:"omitempty,gte=0"`
	Specialties    *[]string        `json:"specialties"`
	ServiceAreas   *[]string        `json:"service_areas"`
	Languages      *[]string        `json:"languages"`
	Certifications *[]string        `json:"certifications"`
	Equipment      *[]string        `json:"equipment"`
	Availability   *json.RawMessage `json:"availability"`
}

func (r *UpdateProfileRequest) toUpdate() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Name:           r.Name,
		Bio:            r.Bio,
		Phone:          r.Phone,
		Location:       r.Location,
		Avatar:         r.Avatar,
		Experience:     r.Experience,
		ResponseTime:   r.ResponseTime,
		MinGuests:      r.MinGuests,
		MaxGuests:      r.MaxGuests,
		Specialties:    r.Specialties,
		ServiceAreas:   r.ServiceAreas,
		Languages:      r.Languages,
		Certifications: r.Certifications,
		Equipment:      r.Equipment,
		Availability:   r.Availability,
	}
}
