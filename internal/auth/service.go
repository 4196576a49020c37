package auth

import (
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/timesheet-management/internal"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
)

// UserStore is the slice of the directory the auth flow needs.
type UserStore interface {
	GetByEmail(email string) (*coreuser.User, error)
	GetByID(id int64) (*coreuser.User, error)
}

// Service drives the login session machine: password check, optional
// second-factor verification, token refresh.
type Service struct {
	users  UserStore
	tokens TokenGenerator
	totp   TOTPVerifier
	logger *slog.Logger
}

func NewService(users UserStore, tokens TokenGenerator, totp TOTPVerifier, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		totp:   totp,
		logger: logger,
	}
}

// Authenticate validates credentials. Password-provider users receive a
// pending token and must call VerifyTOTP before the session is usable;
// federated users get the full token pair immediately.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	user, err := s.users.GetByEmail(dto.Email)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !user.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("failed login attempt", "email", dto.Email)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if user.RequiresSecondFactor() {
		pending, err := s.tokens.GenerateAccessToken(user, StateSecondFactorPending)
		if err != nil {
			return AuthTokens{}, err
		}
		return AuthTokens{AccessToken: pending, MFARequired: true}, nil
	}

	return s.issueVerifiedTokens(user)
}

// VerifyTOTP completes the second-factor step for a pending session.
func (s *Service) VerifyTOTP(pendingToken string, dto VerifyTOTPDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	claims, err := s.tokens.ValidateAccessToken(pendingToken)
	if err != nil {
		return AuthTokens{}, err
	}
	if claims.MFAState != StateSecondFactorPending {
		return AuthTokens{}, internal.ErrInvalidToken
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if !user.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	if !s.totp.Verify(user.TOTPSecret, dto.Code) {
		s.logger.Warn("failed second-factor attempt", "user_id", user.ID)
		return AuthTokens{}, internal.ErrInvalidTOTPCode
	}

	return s.issueVerifiedTokens(user)
}

// RefreshTokens exchanges a valid refresh token for a new pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if !user.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.issueVerifiedTokens(user)
}

// ValidateAccessToken validates access token and returns claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

// GetUserByID loads the user for an authenticated request's context.
func (s *Service) GetUserByID(id int64) (*coreuser.User, error) {
	return s.users.GetByID(id)
}

func (s *Service) issueVerifiedTokens(user *coreuser.User) (AuthTokens, error) {
	access, err := s.tokens.GenerateAccessToken(user, StateSecondFactorVerified)
	if err != nil {
		return AuthTokens{}, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user)
	if err != nil {
		return AuthTokens{}, err
	}
	return AuthTokens{AccessToken: access, RefreshToken: refresh}, nil
}

// HashPassword creates a bcrypt hash for user provisioning.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
