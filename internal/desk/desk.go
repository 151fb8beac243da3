// Package desk defines the contracts between the registration desk and its storage
// backends.
package desk

import (
	"context"

	"github.com/noah-isme/regdesk-api/internal/models"
)

// Gate authenticates an operator and opens a desk session for them.
type Gate interface {
	// Login returns a fresh session scoped to the admin matching the credentials.
	// Unknown users and wrong passwords fail with the same error.
	Login(ctx context.Context, username, password string) (Session, error)
}

// Session is the authenticated handle all desk work goes through. A session is
// owned by one goroutine at a time and never shared.
type Session interface {
	Admin() models.Admin

	// GetParticipant reports ok=false when no participant has the id.
	GetParticipant(ctx context.Context, id int64) (models.Participant, bool, error)
	NewParticipant(ctx context.Context, info models.ParticipantInfo, college models.College) (models.Participant, error)
	// NewVerifiedParticipant registers a walk-in and verifies them in one step.
	NewVerifiedParticipant(ctx context.Context, info models.ParticipantInfo, college models.College) (models.Participant, error)
	// UpdateParticipant replaces info and college only.
	UpdateParticipant(ctx context.Context, participant models.Participant) (models.Participant, error)
	VerifyRegistration(ctx context.Context, token models.NotVerified) (models.Participant, error)
	UpdateHospitality(ctx context.Context, participant models.Participant, hostel, room string) (models.Participant, error)

	AddCollege(ctx context.Context, name string) (models.College, error)
	FindCollege(ctx context.Context, id int64) (models.College, error)
	// ListColleges returns every college when filter is empty, ordered by id.
	ListColleges(ctx context.Context, filter string) ([]models.College, error)
}
