package auth_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AuthService Suite")
}

type mockUserStore struct {
	byEmail map[string]*coreuser.User
	byID    map[int64]*coreuser.User
}

func newMockUserStore(users ...*coreuser.User) *mockUserStore {
	store := &mockUserStore{
		byEmail: make(map[string]*coreuser.User),
		byID:    make(map[int64]*coreuser.User),
	}
	for _, u := range users {
		store.byEmail[u.Email] = u
		store.byID[u.ID] = u
	}
	return store
}

func (m *mockUserStore) GetByEmail(email string) (*coreuser.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserStore) GetByID(id int64) (*coreuser.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

type mockTOTP struct {
	accepted string
}

func (m *mockTOTP) Verify(secret, code string) bool {
	return secret != "" && code == m.accepted
}

func (m *mockTOTP) GenerateSecret(issuer, accountName string) (string, error) {
	return "JBSWY3DPEHPK3PXP", nil
}

var _ = Describe("AuthService", func() {
	var (
		service      *auth.Service
		tokens       *auth.JWTTokenGenerator
		totp         *mockTOTP
		passwordUser *coreuser.User
		ssoUser      *coreuser.User
		inactive     *coreuser.User
	)

	const password = "correct horse battery staple"

	BeforeEach(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).ToNot(HaveOccurred())

		passwordUser = &coreuser.User{
			ID:           1,
			Email:        "alice@example.com",
			PasswordHash: string(hash),
			Role:         coreuser.RoleUser,
			AuthProvider: coreuser.ProviderPassword,
			TOTPSecret:   "JBSWY3DPEHPK3PXP",
			IsActive:     true,
		}
		ssoUser = &coreuser.User{
			ID:           2,
			Email:        "bob@example.com",
			Role:         coreuser.RoleValidator,
			AuthProvider: coreuser.ProviderMicrosoft,
			IsActive:     true,
		}
		inactive = &coreuser.User{
			ID:           3,
			Email:        "gone@example.com",
			PasswordHash: string(hash),
			AuthProvider: coreuser.ProviderPassword,
			IsActive:     false,
		}

		tokens = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
		totp = &mockTOTP{accepted: "123456"}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(newMockUserStore(passwordUser, ssoUser, inactive), tokens, totp, logger)
	})

	Describe("Authenticate", func() {
		It("rejects unknown emails and wrong passwords identically", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "nobody@example.com", Password: password})
			Expect(err).To(Equal(internal.ErrInvalidCredentials))

			_, err = service.Authenticate(auth.LoginDTO{Email: passwordUser.Email, Password: "wrong"})
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("rejects inactive users", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: inactive.Email, Password: password})
			Expect(err).To(Equal(internal.ErrUserInactive))
		})

		It("leaves password-provider users in a pending session", func() {
			result, err := service.Authenticate(auth.LoginDTO{Email: passwordUser.Email, Password: password})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.MFARequired).To(BeTrue())
			Expect(result.RefreshToken).To(BeEmpty())

			claims, err := tokens.ValidateAccessToken(result.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.IsVerified()).To(BeFalse())
			Expect(claims.MFAState).To(Equal(auth.StateSecondFactorPending))
		})

		It("issues a fully verified pair to federated users", func() {
			result, err := service.Authenticate(auth.LoginDTO{Email: ssoUser.Email, Password: "ignored"})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.MFARequired).To(BeFalse())
			Expect(result.RefreshToken).ToNot(BeEmpty())

			claims, err := tokens.ValidateAccessToken(result.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.IsVerified()).To(BeTrue())
		})
	})

	Describe("VerifyTOTP", func() {
		var pendingToken string

		BeforeEach(func() {
			result, err := service.Authenticate(auth.LoginDTO{Email: passwordUser.Email, Password: password})
			Expect(err).ToNot(HaveOccurred())
			pendingToken = result.AccessToken
		})

		It("upgrades the session on a correct code", func() {
			result, err := service.VerifyTOTP(pendingToken, auth.VerifyTOTPDTO{Code: "123456"})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.RefreshToken).ToNot(BeEmpty())

			claims, err := tokens.ValidateAccessToken(result.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.IsVerified()).To(BeTrue())
		})

		It("rejects a wrong code", func() {
			_, err := service.VerifyTOTP(pendingToken, auth.VerifyTOTPDTO{Code: "000000"})
			Expect(err).To(Equal(internal.ErrInvalidTOTPCode))
		})

		It("rejects tokens that are not in the pending state", func() {
			verified, err := service.VerifyTOTP(pendingToken, auth.VerifyTOTPDTO{Code: "123456"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.VerifyTOTP(verified.AccessToken, auth.VerifyTOTPDTO{Code: "123456"})
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})
	})

	Describe("RefreshTokens", func() {
		It("exchanges a refresh token for a new verified pair", func() {
			login, err := service.Authenticate(auth.LoginDTO{Email: ssoUser.Email, Password: "x"})
			Expect(err).ToNot(HaveOccurred())

			refreshed, err := service.RefreshTokens(login.RefreshToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(refreshed.AccessToken).ToNot(BeEmpty())
			Expect(refreshed.RefreshToken).ToNot(BeEmpty())
		})

		It("rejects an access token used as a refresh token", func() {
			login, err := service.Authenticate(auth.LoginDTO{Email: ssoUser.Email, Password: "x"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.RefreshTokens(login.AccessToken)
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})

		It("rejects refresh for a user deactivated since login", func() {
			login, err := service.Authenticate(auth.LoginDTO{Email: ssoUser.Email, Password: "x"})
			Expect(err).ToNot(HaveOccurred())

			ssoUser.IsActive = false
			_, err = service.RefreshTokens(login.RefreshToken)
			Expect(err).To(Equal(internal.ErrUserInactive))
		})
	})
})
