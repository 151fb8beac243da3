package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/regdesk-api/internal/models"
	"github.com/noah-isme/regdesk-api/pkg/config"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
)

// DeskTokenService issues and validates the bearer tokens bound to an open desk.
type DeskTokenService struct {
	config config.DeskTokenConfig
}

// NewDeskTokenService constructs the token service.
func NewDeskTokenService(cfg config.DeskTokenConfig) *DeskTokenService {
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	return &DeskTokenService{config: cfg}
}

// TTL returns the token lifetime.
func (s *DeskTokenService) TTL() time.Duration {
	return s.config.TTL
}

// Issue signs a token for deskID acting as admin.
func (s *DeskTokenService) Issue(deskID string, admin models.Admin) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TTL)
	claims := &models.DeskClaims{
		DeskID:    deskID,
		AdminID:   admin.ID,
		AdminName: admin.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatInt(admin.ID, 10),
			ID:        deskID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a desk token.
func (s *DeskTokenService) Validate(tokenString string) (*models.DeskClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.DeskClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid desk token")
	}

	claims, ok := token.Claims.(*models.DeskClaims)
	if !ok || !token.Valid || claims.DeskID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid desk token claims")
	}
	return claims, nil
}
