package postgres

import (
	"encoding/json"
	"time"

	"github.com/feastflow/feastflow-api/internal/domain"
)

// userRow mirrors the users table. List fields live here as JSON text; the
// domain type only ever sees typed slices.
type userRow struct {
	ID             int64      `db:"id"`
	Name           string     `db:"name"`
	Email          string     `db:"email"`
	PasswordHash   []byte     `db:"password_hash"`
	PasswordSalt   []byte     `db:"password_salt"`
	Role           string     `db:"role"`
	Bio            *string    `db:"bio"`
	Phone          *string    `db:"phone"`
	Location       *string    `db:"location"`
	Avatar         *string    `db:"avatar"`
	Experience     *int       `db:"experience"`
	ResponseTime   *string    `db:"response_time"`
	MinGuests      *int       `db:"min_guests"`
	MaxGuests      *int       `db:"max_guests"`
	Specialties    *string    `db:"specialties"`
	ServiceAreas   *string    `db:"service_areas"`
	Languages      *string    `db:"languages"`
	Certifications *string    `db:"certifications"`
	Equipment      *string    `db:"equipment"`
	Availability   *string    `db:"availability"`
	ResetToken     *string    `db:"reset_token"`
	ResetExpires   *time.Time `db:"reset_expires"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		PasswordSalt:   r.PasswordSalt,
		Role:           r.Role,
		Bio:            r.Bio,
		Phone:          r.Phone,
		Location:       r.Location,
		Avatar:         r.Avatar,
		Experience:     r.Experience,
		ResponseTime:   r.ResponseTime,
		MinGuests:      r.MinGuests,
		MaxGuests:      r.MaxGuests,
		Specialties:    decodeList(r.Specialties),
		ServiceAreas:   decodeList(r.ServiceAreas),
		Languages:      decodeList(r.Languages),
		Certifications: decodeList(r.Certifications),
		Equipment:      decodeList(r.Equipment),
		Availability:   decodeRaw(r.Availability),
		ResetToken:     r.ResetToken,
		ResetExpires:   r.ResetExpires,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// decodeList turns a stored JSON array into a string slice. Missing or
// malformed text yields an empty slice, never an error.
func decodeList(raw *string) []string {
	if raw == nil || *raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(*raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// encodeList serializes a string slice for storage. A nil pointer means
// "not provided" and maps to SQL NULL through COALESCE.
func encodeList(list *[]string) *string {
	if list == nil {
		return nil
	}
	items := *list
	if items == nil {
		items = []string{}
	}
	buf, err := json.Marshal(items)
	if err != nil {
		return nil
	}
	s := string(buf)
	return &s
}

func decodeRaw(raw *string) json.RawMessage {
	if raw == nil || *raw == "" {
		return nil
	}
	if !json.Valid([]byte(*raw)) {
		return nil
	}
	return json.RawMessage(*raw)
}

func encodeRaw(raw *json.RawMessage) *string {
	if raw == nil || len(*raw) == 0 {
		return nil
	}
	s := string(*raw)
	return &s
}
