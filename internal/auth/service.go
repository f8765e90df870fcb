package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukahub/dukahub-backend/internal/users"
	pkgauth "github.com/dukahub/dukahub-backend/pkg/auth"
	"github.com/dukahub/dukahub-backend/pkg/config"
	"github.com/dukahub/dukahub-backend/pkg/db"
	"github.com/dukahub/dukahub-backend/pkg/db/models"
	"github.com/dukahub/dukahub-backend/pkg/enums"
	pkgerrors "github.com/dukahub/dukahub-backend/pkg/errors"
	"github.com/dukahub/dukahub-backend/pkg/logger"
	"github.com/dukahub/dukahub-backend/pkg/security"
)

const minPasswordLength = 8

// cartMerger absorbs a guest cart into the user's cart after login.
type cartMerger interface {
	MergeGuestCart(ctx context.Context, sessionID string, userID uuid.UUID) error
}

// RegisterInput carries a signup request.
type RegisterInput struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
}

// LoginInput carries a login request. SessionID, when present, identifies the
// guest cart to merge into the user's cart on success.
type LoginInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	SessionID string `json:"-"`
}

// Session is the authenticated result returned to clients.
type Session struct {
	User        *users.UserDTO `json:"user"`
	AccessToken string         `json:"access_token"`
	ExpiresIn   int            `json:"expires_in"`
}

// Service handles registration and credential authentication.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*users.UserDTO, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
}

type service struct {
	repo   users.UserRepository
	carts  cartMerger
	jwtCfg config.JWTConfig
	pwCfg  config.PasswordConfig
	log    *logger.Logger
	now    func() time.Time
}

// NewService builds the auth service.
func NewService(
	repo users.UserRepository,
	carts cartMerger,
	jwtCfg config.JWTConfig,
	pwCfg config.PasswordConfig,
	log *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart merger required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		carts:  carts,
		jwtCfg: jwtCfg,
		pwCfg:  pwCfg,
		log:    log,
		now:    time.Now,
	}, nil
}

// Register creates a customer account. Emails are stored lowercased and
// duplicates surface as a conflict rather than a unique violation.
func (s *service) Register(ctx context.Context, input RegisterInput) (*users.UserDTO, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        input.Phone,
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}

	s.log.Info(s.log.WithUserID(ctx, created.ID.String()), "user registered")
	return users.ToDTO(created), nil
}

// Login verifies credentials, merges any guest cart carried by the session and
// mints an access token. A wrong password and an unknown email return the same
// error.
func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, invalidCredentials()
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	if sessionID := strings.TrimSpace(input.SessionID); sessionID != "" {
		if err := s.carts.MergeGuestCart(ctx, sessionID, user.ID); err != nil {
			// Login still succeeds; the guest cart stays behind for a retry.
			logCtx := s.log.WithFields(ctx, map[string]any{
				"user_id": user.ID.String(),
				"error":   err.Error(),
			})
			s.log.Warn(logCtx, "guest cart merge failed")
		}
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stamping last login")
	}
	user.LastLoginAt = &now

	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	return &Session{
		User:        users.ToDTO(user),
		AccessToken: token,
		ExpiresIn:   s.jwtCfg.ExpirationMinutes * 60,
	}, nil
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is not valid")
	}
	return email, nil
}
