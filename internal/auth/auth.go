package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/timesheet-management/internal"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
)

// Session states for the second-factor flow. Password-provider users land in
// second_factor_pending after a correct password and must verify a TOTP code
// before the session is usable; externally federated users skip straight to
// verified.
const (
	StateSecondFactorPending  = "second_factor_pending"
	StateSecondFactorVerified = "second_factor_verified"
)

const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

// Claims represents JWT token claims, including the session's second-factor
// state.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	MFAState string `json:"mfa_state,omitempty"`
	Kind     string `json:"kind"`
	jwt.RegisteredClaims
}

func (c *Claims) IsVerified() bool {
	return c.MFAState == StateSecondFactorVerified
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	MFARequired  bool   `json:"mfa_required,omitempty"`
}

// TokenGenerator creates and validates tokens.
type TokenGenerator interface {
	GenerateAccessToken(user *coreuser.User, mfaState string) (string, error)
	GenerateRefreshToken(user *coreuser.User) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

func (j *JWTTokenGenerator) GenerateAccessToken(user *coreuser.User, mfaState string) (string, error) {
	return j.sign(user, tokenKindAccess, mfaState, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(user *coreuser.User) (string, error) {
	return j.sign(user, tokenKindRefresh, StateSecondFactorVerified, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(user *coreuser.User, kind, mfaState string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Email:    user.Email,
		MFAState: mfaState,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.parse(tokenString, tokenKindAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.parse(tokenString, tokenKindRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) parse(tokenString, kind string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Kind != kind {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
