package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/regdesk-api/internal/desk"
	"github.com/noah-isme/regdesk-api/internal/models"
	"github.com/noah-isme/regdesk-api/internal/repository"
	"github.com/noah-isme/regdesk-api/pkg/config"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
)

type adminStore interface {
	FindByUsername(ctx context.Context, username string) (*models.AdminAccount, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, account *models.AdminAccount) error
}

// LoginService is the desk.Gate over a storage backend.
type LoginService struct {
	admins       adminStore
	participants participantStore
	colleges     CollegeStore
	validator    *validator.Validate
	logger       *zap.Logger
	// compared against when the username is unknown so both failures cost the same
	dummyHash []byte
}

var _ desk.Gate = (*LoginService)(nil)

// NewLoginService constructs the gate.
func NewLoginService(admins adminStore, participants participantStore, colleges CollegeStore, validate *validator.Validate, logger *zap.Logger) *LoginService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("regdesk-dummy-password"), bcrypt.MinCost)
	return &LoginService{
		admins:       admins,
		participants: participants,
		colleges:     colleges,
		validator:    validate,
		logger:       logger,
		dummyHash:    dummy,
	}
}

// Login checks the credentials and opens a fresh session for the matching admin.
func (s *LoginService) Login(ctx context.Context, username, password string) (desk.Session, error) {
	if username == "" || password == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	account, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Internal(err, "failed to fetch admin")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	s.logger.Info("admin logged in", zap.Int64("admin_id", account.ID))
	return NewDeskSession(account.Admin, s.participants, s.colleges, s.validator, s.logger.With(zap.Int64("admin_id", account.ID))), nil
}

// Bootstrap creates the configured admin when the store has none.
func (s *LoginService) Bootstrap(ctx context.Context, cfg config.BootstrapConfig) error {
	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" || cfg.AdminPassword == "" {
		return nil
	}
	total, err := s.admins.Count(ctx)
	if err != nil {
		return appErrors.Internal(err, "failed to count admins")
	}
	if total > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash bootstrap password")
	}
	name := strings.TrimSpace(cfg.AdminName)
	if name == "" {
		name = username
	}
	account := &models.AdminAccount{Admin: models.Admin{Name: name}, Username: username, PasswordHash: string(hash)}
	if err := s.admins.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAdminExists) {
			return nil
		}
		return appErrors.Internal(err, "failed to create bootstrap admin")
	}
	s.logger.Info("bootstrap admin created", zap.Int64("admin_id", account.ID), zap.String("username", username))
	return nil
}
