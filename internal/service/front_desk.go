package service

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/regdesk-api/internal/desk"
	"github.com/noah-isme/regdesk-api/internal/dispatch"
	"github.com/noah-isme/regdesk-api/internal/models"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
	"github.com/noah-isme/regdesk-api/pkg/logger"
	"github.com/noah-isme/regdesk-api/pkg/middleware/requestid"
)

// Dispatched operation names, used in desk status and metrics.
const (
	OpGetParticipant     = "get_participant"
	OpNewParticipant     = "new_participant"
	OpUpdateParticipant  = "update_participant"
	OpVerifyRegistration = "verify_registration"
	OpUpdateHospitality  = "update_hospitality"
	OpAddCollege         = "add_college"
	OpListColleges       = "list_colleges"
)

// DeskStatus describes an open desk and its pending operation.
type DeskStatus struct {
	DeskID   string          `json:"desk_id"`
	Admin    models.Admin    `json:"admin"`
	OpenedAt time.Time       `json:"opened_at"`
	Pending  dispatch.Status `json:"pending"`
}

type participantLookup struct {
	participant models.Participant
	found       bool
}

// FrontDesk implements the desk screens. Every storage call runs through the desk's
// dispatch loop so at most one operation per desk is in flight.
type FrontDesk struct {
	registry  *DeskRegistry
	tokens    *DeskTokenService
	audit     *AuditService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFrontDesk constructs the front desk.
func NewFrontDesk(registry *DeskRegistry, tokens *DeskTokenService, audit *AuditService, validate *validator.Validate, logger *zap.Logger) *FrontDesk {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FrontDesk{registry: registry, tokens: tokens, audit: audit, validator: validate, logger: logger}
}

// Login opens a desk and issues its bearer token.
func (f *FrontDesk) Login(ctx context.Context, req models.LoginRequest) (*models.DeskLoginResponse, error) {
	if err := f.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid login payload")
	}
	d, err := f.registry.Open(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := f.tokens.Issue(d.ID, d.Admin)
	if err != nil {
		_ = f.registry.Close(d.ID)
		return nil, appErrors.Internal(err, "failed to issue desk token")
	}
	if err := f.registry.SetExpiry(d.ID, expiresAt); err != nil {
		return nil, err
	}
	f.audit.Record(d.ID, d.Admin, models.AuditActionLogin, models.AuditResourceDesk, d.ID, nil)
	return &models.DeskLoginResponse{
		DeskID:    d.ID,
		Token:     token,
		ExpiresIn: int64(f.tokens.TTL().Seconds()),
		Admin:     d.Admin,
		IssuedAt:  d.OpenedAt,
	}, nil
}

// Logout closes the desk after its pending operation returns.
func (f *FrontDesk) Logout(_ context.Context, deskID string) error {
	d, err := f.registry.Get(deskID)
	if err != nil {
		return err
	}
	if err := f.registry.Close(deskID); err != nil {
		return err
	}
	f.audit.Record(deskID, d.Admin, models.AuditActionLogout, models.AuditResourceDesk, deskID, nil)
	return nil
}

// Status reports what the desk is doing.
func (f *FrontDesk) Status(_ context.Context, deskID string) (*DeskStatus, error) {
	d, err := f.registry.Get(deskID)
	if err != nil {
		return nil, err
	}
	return &DeskStatus{
		DeskID:   d.ID,
		Admin:    d.Admin,
		OpenedAt: d.OpenedAt,
		Pending:  d.Controller().Status(),
	}, nil
}

// LookupParticipant finds a participant by badge code or id.
func (f *FrontDesk) LookupParticipant(ctx context.Context, deskID, code string) (models.Participant, error) {
	id, err := parseParticipantCode(code)
	if err != nil {
		return models.Participant{}, err
	}
	d, err := f.registry.Get(deskID)
	if err != nil {
		return models.Participant{}, err
	}
	lookup, err := callDesk(ctx, f, d, OpGetParticipant, getParticipant(id))
	if err != nil {
		return models.Participant{}, err
	}
	if !lookup.found {
		return models.Participant{}, appErrors.Clone(appErrors.ErrNotFound, "participant not found")
	}
	return lookup.participant, nil
}

// RegisterParticipant creates a participant, verified straight away when requested.
func (f *FrontDesk) RegisterParticipant(ctx context.Context, deskID string, req models.CreateParticipantRequest) (models.Participant, error) {
	if err := f.validator.Struct(req); err != nil {
		return models.Participant{}, appErrors.Validation(err, "invalid participant payload")
	}
	d, err := f.registry.Get(deskID)
	if err != nil {
		return models.Participant{}, err
	}
	p, err := callDesk(ctx, f, d, OpNewParticipant, func(ctx context.Context, s desk.Session) (models.Participant, error) {
		college, err := s.FindCollege(ctx, req.CollegeID)
		if err != nil {
			return models.Participant{}, err
		}
		if req.Verified {
			return s.NewVerifiedParticipant(ctx, req.ParticipantInfo, college)
		}
		return s.NewParticipant(ctx, req.ParticipantInfo, college)
	})
	if err != nil {
		return models.Participant{}, err
	}
	f.audit.Record(deskID, d.Admin, models.AuditActionParticipantCreate, models.AuditResourceParticipant, participantRef(p.ID), req)
	return p, nil
}

// UpdateParticipant replaces the details and college of a participant.
func (f *FrontDesk) UpdateParticipant(ctx context.Context, deskID, code string, req models.UpdateParticipantRequest) (models.Participant, error) {
	id, err := parseParticipantCode(code)
	if err != nil {
		return models.Participant{}, err
	}
	if err := f.validator.Struct(req); err != nil {
		return models.Participant{}, appErrors.Validation(err, "invalid participant payload")
	}
	d, err := f.registry.Get(deskID)
	if err != nil {
		return models.Participant{}, err
	}
	p, err := callDesk(ctx, f, d, OpUpdateParticipant, func(ctx context.Context, s desk.Session) (models.Participant, error) {
		current, ok, err := s.GetParticipant(ctx, id)
		if err != nil {
			return models.Participant{}, err
		}
		if !ok {
			return models.Participant{}, appErrors.Clone(appErrors.ErrNotFound, "participant not found")
		}
		college, err := s.FindCollege(ctx, req.CollegeID)
		if err != nil {
			return models.Participant{}, err
		}
		current.Info = req.ParticipantInfo
		current.College = college
		return s.UpdateParticipant(ctx, current)
	})
	if err != nil {
		return models.Participant{}, err
	}
	f.audit.Record(deskID, d.Admin, models.AuditActionParticipantUpdate, models.AuditResourceParticipant, participantRef(p.ID), req)
	return p, nil
}

// VerifyParticipant fetches the participant, takes its registration token and
// verifies it as two consecutive dispatches on the desk loop.
func (f *FrontDesk) VerifyParticipant(ctx context.Context, deskID, code string) (models.Participant, error) {
	id, err := parseParticipantCode(code)
	if err != nil {
		return models.Participant{}, err
	}
	d, err := f.registry.Get(deskID)
	if err != nil {
		return models.Participant{}, err
	}

	results := make(chan dispatch.Outcome[models.Participant], 1)
	fail := func(err error) {
		results <- dispatch.Outcome[models.Participant]{Err: err}
	}

	err = d.Controller().Do(ctx, func(l *dispatch.Loop) {
		err := dispatch.Dispatch(l, OpGetParticipant, getParticipant(id), func(l *dispatch.Loop, got dispatch.Outcome[participantLookup]) {
			if got.Err != nil {
				fail(got.Err)
				return
			}
			if !got.Value.found {
				fail(appErrors.Clone(appErrors.ErrNotFound, "participant not found"))
				return
			}
			token, ok := got.Value.participant.NotVerified()
			if !ok {
				fail(appErrors.Clone(appErrors.ErrAlreadyVerified, ""))
				return
			}
			verify := func(ctx context.Context, s desk.Session) (models.Participant, error) {
				return s.VerifyRegistration(ctx, token)
			}
			if err := dispatch.Dispatch(l, OpVerifyRegistration, verify, func(_ *dispatch.Loop, o dispatch.Outcome[models.Participant]) {
				results <- o
			}); err != nil {
				fail(err)
			}
		})
		if err != nil {
			fail(err)
		}
	})
	if err != nil {
		return models.Participant{}, err
	}

	select {
	case o := <-results:
		if o.Err != nil {
			return models.Participant{}, o.Err
		}
		f.audit.Record(deskID, d.Admin, models.AuditActionVerify, models.AuditResourceParticipant, participantRef(o.Value.ID), nil)
		return o.Value, nil
	case <-ctx.Done():
		return models.Participant{}, ctx.Err()
	}
}

// AssignHospitality sets the hostel room of a participant.
func (f *FrontDesk) AssignHospitality(ctx context.Context, deskID, code string, req models.HospitalityRequest) (models.Participant, error) {
	id, err := parseParticipantCode(code)
	if err != nil {
		return models.Participant{}, err
	}
	if err := f.validator.Struct(req); err != nil {
		return models.Participant{}, appErrors.Validation(err, "invalid hospitality payload")
	}
	d, err := f.registry.Get(deskID)
	if err != nil {
		return models.Participant{}, err
	}
	p, err := callDesk(ctx, f, d, OpUpdateHospitality, func(ctx context.Context, s desk.Session) (models.Participant, error) {
		current, ok, err := s.GetParticipant(ctx, id)
		if err != nil {
			return models.Participant{}, err
		}
		if !ok {
			return models.Participant{}, appErrors.Clone(appErrors.ErrNotFound, "participant not found")
		}
		return s.UpdateHospitality(ctx, current, req.Hostel, req.Room)
	})
	if err != nil {
		return models.Participant{}, err
	}
	f.audit.Record(deskID, d.Admin, models.AuditActionHospitality, models.AuditResourceParticipant, participantRef(p.ID), req)
	return p, nil
}

// ListColleges returns the colleges matching query.
func (f *FrontDesk) ListColleges(ctx context.Context, deskID, query string) ([]models.College, error) {
	d, err := f.registry.Get(deskID)
	if err != nil {
		return nil, err
	}
	return callDesk(ctx, f, d, OpListColleges, func(ctx context.Context, s desk.Session) ([]models.College, error) {
		return s.ListColleges(ctx, query)
	})
}

// AddCollege creates a college.
func (f *FrontDesk) AddCollege(ctx context.Context, deskID string, req models.CreateCollegeRequest) (models.College, error) {
	if err := f.validator.Struct(req); err != nil {
		return models.College{}, appErrors.Validation(err, "invalid college payload")
	}
	d, err := f.registry.Get(deskID)
	if err != nil {
		return models.College{}, err
	}
	college, err := callDesk(ctx, f, d, OpAddCollege, func(ctx context.Context, s desk.Session) (models.College, error) {
		return s.AddCollege(ctx, req.Name)
	})
	if err != nil {
		return models.College{}, err
	}
	f.audit.Record(deskID, d.Admin, models.AuditActionCollegeCreate, models.AuditResourceCollege, strconv.FormatInt(college.ID, 10), req)
	return college, nil
}

// callDesk runs op on the desk loop and logs failures with the originating request.
func callDesk[T any](ctx context.Context, f *FrontDesk, d *Desk, name string, op dispatch.Operation[T]) (T, error) {
	value, err := dispatch.Call(ctx, d.Controller(), name, op)
	if err != nil {
		f.logger.Debug("desk operation failed",
			zap.String(logger.DeskIDKey, d.ID),
			zap.String("operation", name),
			zap.String("request_id", requestid.FromContext(ctx)),
			zap.Error(err))
	}
	return value, err
}

func getParticipant(id int64) dispatch.Operation[participantLookup] {
	return func(ctx context.Context, s desk.Session) (participantLookup, error) {
		p, ok, err := s.GetParticipant(ctx, id)
		return participantLookup{participant: p, found: ok}, err
	}
}

func parseParticipantCode(code string) (int64, error) {
	id, err := models.ParseParticipantCode(code)
	if err != nil {
		return 0, appErrors.Validation(err, "invalid participant code")
	}
	return id, nil
}

func participantRef(id int64) string {
	return strconv.FormatInt(id, 10)
}
