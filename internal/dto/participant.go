package dto

import "github.com/noah-isme/regdesk-api/internal/models"

// Registration statuses exposed over HTTP.
const (
	RegistrationNotVerified = "NOT_VERIFIED"
	RegistrationVerified    = "VERIFIED"
)

// RegistrationView describes the verification state of a participant.
type RegistrationView struct {
	Status     string        `json:"status"`
	VerifiedBy *models.Admin `json:"verified_by,omitempty"`
}

// HospitalityView describes an assigned room.
type HospitalityView struct {
	Hostel     string       `json:"hostel"`
	Room       string       `json:"room"`
	AssignedBy models.Admin `json:"assigned_by"`
}

// ParticipantResponse is the participant card shown at the desk.
type ParticipantResponse struct {
	ID           int64            `json:"id"`
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	Gender       models.Gender    `json:"gender"`
	Email        string           `json:"email"`
	Phone        string           `json:"phone"`
	Category     models.Category  `json:"category"`
	College      models.College   `json:"college"`
	Registration RegistrationView `json:"registration"`
	Hospitality  *HospitalityView `json:"hospitality,omitempty"`
}

// NewParticipantResponse maps a participant to its HTTP representation.
func NewParticipantResponse(p models.Participant) ParticipantResponse {
	res := ParticipantResponse{
		ID:           p.ID,
		Code:         p.Code(),
		Name:         p.Info.Name,
		Gender:       p.Info.Gender,
		Email:        p.Info.Email,
		Phone:        p.Info.Phone,
		Category:     p.Info.Category,
		College:      p.College,
		Registration: RegistrationView{Status: RegistrationNotVerified},
	}
	if admin, ok := p.VerifiedBy(); ok {
		res.Registration = RegistrationView{Status: RegistrationVerified, VerifiedBy: &admin}
	}
	if p.Hospitality != nil {
		res.Hospitality = &HospitalityView{
			Hostel:     p.Hospitality.Hostel,
			Room:       p.Hospitality.Room,
			AssignedBy: p.Hospitality.Admin,
		}
	}
	return res
}

// CollegeListResponse wraps a filtered college list.
type CollegeListResponse struct {
	Query    string           `json:"query,omitempty"`
	Colleges []models.College `json:"colleges"`
}
