package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/regdesk-api/internal/desk"
	"github.com/noah-isme/regdesk-api/internal/models"
	"github.com/noah-isme/regdesk-api/internal/repository"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
)

type participantStore interface {
	FindByID(ctx context.Context, id int64) (models.Participant, error)
	Create(ctx context.Context, info models.ParticipantInfo, collegeID int64) (int64, error)
	CreateVerified(ctx context.Context, info models.ParticipantInfo, collegeID, adminID int64) (int64, error)
	Update(ctx context.Context, id int64, info models.ParticipantInfo, collegeID int64) error
	Verify(ctx context.Context, participantID, adminID int64) error
	UpsertHospitality(ctx context.Context, participantID, adminID int64, hostel, room string) error
}

// CollegeStore persists colleges. Both backends and CollegeCache implement it.
type CollegeStore interface {
	Create(ctx context.Context, name string) (models.College, error)
	FindByID(ctx context.Context, id int64) (models.College, error)
	List(ctx context.Context) ([]models.College, error)
}

// DeskSession is the desk.Session shared by every backend. It acts on behalf of
// one admin and is not safe for concurrent use.
type DeskSession struct {
	admin        models.Admin
	participants participantStore
	colleges     CollegeStore
	validator    *validator.Validate
	logger       *zap.Logger

	// ids of the NotVerified tokens this session handed out and not yet consumed
	issued map[int64]struct{}
}

var _ desk.Session = (*DeskSession)(nil)

// NewDeskSession constructs a session scoped to admin.
func NewDeskSession(admin models.Admin, participants participantStore, colleges CollegeStore, validate *validator.Validate, logger *zap.Logger) *DeskSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DeskSession{
		admin:        admin,
		participants: participants,
		colleges:     colleges,
		validator:    validate,
		logger:       logger,
		issued:       make(map[int64]struct{}),
	}
}

// Admin returns the admin the session acts for.
func (s *DeskSession) Admin() models.Admin {
	return s.admin
}

// GetParticipant looks up a participant. A missing participant is not an error.
func (s *DeskSession) GetParticipant(ctx context.Context, id int64) (models.Participant, bool, error) {
	if id <= 0 {
		return models.Participant{}, false, nil
	}
	p, err := s.participants.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Participant{}, false, nil
		}
		return models.Participant{}, false, appErrors.Internal(err, "failed to load participant")
	}
	return s.track(p), true, nil
}

// NewParticipant registers a participant awaiting verification.
func (s *DeskSession) NewParticipant(ctx context.Context, info models.ParticipantInfo, college models.College) (models.Participant, error) {
	if err := s.validateNew(info, college); err != nil {
		return models.Participant{}, err
	}
	id, err := s.participants.Create(ctx, info, college.ID)
	if err != nil {
		return models.Participant{}, s.mapWriteError(err, "failed to create participant")
	}
	s.logger.Info("participant registered", zap.Int64("participant_id", id), zap.Int64("college_id", college.ID))
	return s.track(models.Participant{
		ID:           id,
		Info:         info,
		College:      college,
		Registration: models.RestoreRegistration(id, nil),
	}), nil
}

// NewVerifiedParticipant registers a participant already verified by the session admin.
func (s *DeskSession) NewVerifiedParticipant(ctx context.Context, info models.ParticipantInfo, college models.College) (models.Participant, error) {
	if err := s.validateNew(info, college); err != nil {
		return models.Participant{}, err
	}
	id, err := s.participants.CreateVerified(ctx, info, college.ID, s.admin.ID)
	if err != nil {
		return models.Participant{}, s.mapWriteError(err, "failed to create participant")
	}
	s.logger.Info("participant registered verified", zap.Int64("participant_id", id), zap.Int64("college_id", college.ID))
	admin := s.admin
	return models.Participant{
		ID:           id,
		Info:         info,
		College:      college,
		Registration: models.RestoreRegistration(id, &admin),
	}, nil
}

// UpdateParticipant replaces info and college. Registration and hospitality are kept.
func (s *DeskSession) UpdateParticipant(ctx context.Context, participant models.Participant) (models.Participant, error) {
	if err := s.validateNew(participant.Info, participant.College); err != nil {
		return models.Participant{}, err
	}
	if err := s.participants.Update(ctx, participant.ID, participant.Info, participant.College.ID); err != nil {
		return models.Participant{}, s.mapWriteError(err, "failed to update participant")
	}
	return s.reload(ctx, participant.ID)
}

// VerifyRegistration consumes the token and records the session admin as verifier.
// Only tokens this session handed out through a participant it returned are accepted.
func (s *DeskSession) VerifyRegistration(ctx context.Context, token models.NotVerified) (models.Participant, error) {
	if token.IsZero() {
		return models.Participant{}, appErrors.Clone(appErrors.ErrValidation, "registration token is empty")
	}
	if _, ok := s.issued[token.ID()]; !ok {
		s.logger.Warn("rejected unissued registration token", zap.Int64("participant_id", token.ID()))
		return models.Participant{}, appErrors.Clone(appErrors.ErrValidation, "registration token was not issued by this desk")
	}
	if err := s.participants.Verify(ctx, token.ID(), s.admin.ID); err != nil {
		mapped := s.mapWriteError(err, "failed to verify registration")
		if !errors.Is(mapped, appErrors.ErrInternal) {
			delete(s.issued, token.ID())
		}
		return models.Participant{}, mapped
	}
	delete(s.issued, token.ID())
	s.logger.Info("registration verified", zap.Int64("participant_id", token.ID()))
	return s.reload(ctx, token.ID())
}

// UpdateHospitality assigns a room, overwriting any earlier assignment.
func (s *DeskSession) UpdateHospitality(ctx context.Context, participant models.Participant, hostel, room string) (models.Participant, error) {
	req := models.HospitalityRequest{Hostel: strings.TrimSpace(hostel), Room: strings.TrimSpace(room)}
	if err := s.validator.Struct(req); err != nil {
		return models.Participant{}, appErrors.Validation(err, "invalid hospitality payload")
	}
	if err := s.participants.UpsertHospitality(ctx, participant.ID, s.admin.ID, req.Hostel, req.Room); err != nil {
		return models.Participant{}, s.mapWriteError(err, "failed to update hospitality")
	}
	return s.reload(ctx, participant.ID)
}

// AddCollege creates a college. Duplicate names are allowed.
func (s *DeskSession) AddCollege(ctx context.Context, name string) (models.College, error) {
	req := models.CreateCollegeRequest{Name: strings.TrimSpace(name)}
	if err := s.validator.Struct(req); err != nil {
		return models.College{}, appErrors.Validation(err, "invalid college payload")
	}
	college, err := s.colleges.Create(ctx, req.Name)
	if err != nil {
		return models.College{}, appErrors.Internal(err, "failed to create college")
	}
	s.logger.Info("college added", zap.Int64("college_id", college.ID))
	return college, nil
}

// ListColleges returns the colleges matching filter ordered by id.
func (s *DeskSession) ListColleges(ctx context.Context, filter string) ([]models.College, error) {
	colleges, err := s.colleges.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list colleges")
	}
	return desk.FilterColleges(colleges, filter), nil
}

// FindCollege resolves a college id to the stored college.
func (s *DeskSession) FindCollege(ctx context.Context, id int64) (models.College, error) {
	college, err := s.colleges.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.College{}, appErrors.Clone(appErrors.ErrNotFound, "college not found")
		}
		return models.College{}, appErrors.Internal(err, "failed to load college")
	}
	return college, nil
}

func (s *DeskSession) validateNew(info models.ParticipantInfo, college models.College) error {
	if err := s.validator.Struct(info); err != nil {
		return appErrors.Validation(err, "invalid participant payload")
	}
	if college.ID <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "college is required")
	}
	return nil
}

func (s *DeskSession) reload(ctx context.Context, id int64) (models.Participant, error) {
	p, err := s.participants.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Participant{}, appErrors.Clone(appErrors.ErrNotFound, "participant not found")
		}
		return models.Participant{}, appErrors.Internal(err, "failed to reload participant")
	}
	return s.track(p), nil
}

// track remembers the NotVerified token carried by p so VerifyRegistration accepts it.
func (s *DeskSession) track(p models.Participant) models.Participant {
	if token, ok := p.NotVerified(); ok {
		s.issued[token.ID()] = struct{}{}
	}
	return p
}

func (s *DeskSession) mapWriteError(err error, message string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "participant not found")
	case errors.Is(err, repository.ErrCollegeNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "college not found")
	case errors.Is(err, repository.ErrAlreadyVerified):
		return appErrors.Clone(appErrors.ErrAlreadyVerified, "")
	default:
		return appErrors.Internal(err, message)
	}
}
