package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Gender of a participant.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

var genderCodes = []Gender{GenderMale, GenderFemale, GenderOther}

// Code returns the storage code of the gender.
func (g Gender) Code() int16 {
	for i, v := range genderCodes {
		if v == g {
			return int16(i)
		}
	}
	return -1
}

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool { return g.Code() >= 0 }

// GenderFromCode maps a storage code back to a gender.
func GenderFromCode(code int16) (Gender, error) {
	if code < 0 || int(code) >= len(genderCodes) {
		return "", fmt.Errorf("unknown gender code %d", code)
	}
	return genderCodes[code], nil
}

// UnmarshalJSON accepts the gender name in any case.
func (g *Gender) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed := Gender(strings.ToUpper(strings.TrimSpace(raw)))
	if !parsed.Valid() {
		return fmt.Errorf("unknown gender %q", raw)
	}
	*g = parsed
	return nil
}

// Category is the event track a participant registered for.
type Category string

const (
	CategoryRagam      Category = "RAGAM"
	CategoryKalotsavam Category = "KALOTSAVAM"
)

var categoryCodes = []Category{CategoryRagam, CategoryKalotsavam}

// Code returns the storage code of the category.
func (c Category) Code() int16 {
	for i, v := range categoryCodes {
		if v == c {
			return int16(i)
		}
	}
	return -1
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return c.Code() >= 0 }

// CategoryFromCode maps a storage code back to a category.
func CategoryFromCode(code int16) (Category, error) {
	if code < 0 || int(code) >= len(categoryCodes) {
		return "", fmt.Errorf("unknown category code %d", code)
	}
	return categoryCodes[code], nil
}

// UnmarshalJSON accepts the category name in any case.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed := Category(strings.ToUpper(strings.TrimSpace(raw)))
	if !parsed.Valid() {
		return fmt.Errorf("unknown category %q", raw)
	}
	*c = parsed
	return nil
}

// ParticipantInfo holds the personal details entered at the desk.
type ParticipantInfo struct {
	Name     string   `json:"name" validate:"required,max=255"`
	Gender   Gender   `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	Email    string   `json:"email" validate:"required,email"`
	Phone    string   `json:"phone" validate:"required,max=32"`
	Category Category `json:"category" validate:"required,oneof=RAGAM KALOTSAVAM"`
}

// Hospitality is the accommodation assigned to a participant.
type Hospitality struct {
	Admin  Admin  `json:"admin"`
	Hostel string `json:"hostel"`
	Room   string `json:"room"`
}

// Participant is a registered attendee.
type Participant struct {
	ID           int64
	Info         ParticipantInfo
	College      College
	Registration Registration
	Hospitality  *Hospitality
}

// NotVerified returns the verification token while the participant is unverified.
func (p Participant) NotVerified() (NotVerified, bool) {
	token, ok := p.Registration.(NotVerified)
	if !ok || token.id != p.ID {
		return NotVerified{}, false
	}
	return token, true
}

// VerifiedBy returns the verifying admin once the participant is verified.
func (p Participant) VerifiedBy() (Admin, bool) {
	v, ok := p.Registration.(Verified)
	if !ok {
		return Admin{}, false
	}
	return v.Admin(), true
}

// Code returns the printed participant code.
func (p Participant) Code() string {
	return FormatParticipantCode(p.Info.Category, p.ID)
}

// CreateParticipantRequest is the payload for registering a participant at the desk.
type CreateParticipantRequest struct {
	ParticipantInfo
	CollegeID int64 `json:"college_id" validate:"required,gt=0"`
	Verified  bool  `json:"verified"`
}

// UpdateParticipantRequest replaces the details and college of a participant.
type UpdateParticipantRequest struct {
	ParticipantInfo
	CollegeID int64 `json:"college_id" validate:"required,gt=0"`
}

// HospitalityRequest assigns a hostel room.
type HospitalityRequest struct {
	Hostel string `json:"hostel" validate:"required,max=255"`
	Room   string `json:"room" validate:"required,max=255"`
}
