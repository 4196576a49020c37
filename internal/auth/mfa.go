package auth

import (
	"github.com/pquerna/otp/totp"
)

// TOTPVerifier checks time-based one-time codes and provisions new secrets.
type TOTPVerifier interface {
	Verify(secret, code string) bool
	GenerateSecret(issuer, accountName string) (string, error)
}

// OTPVerifier is the production TOTPVerifier, RFC 6238 with 30-second steps.
type OTPVerifier struct{}

func NewOTPVerifier() *OTPVerifier {
	return &OTPVerifier{}
}

func (v *OTPVerifier) Verify(secret, code string) bool {
	if secret == "" || code == "" {
		return false
	}
	return totp.Validate(code, secret)
}

func (v *OTPVerifier) GenerateSecret(issuer, accountName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}
