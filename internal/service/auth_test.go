package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"zuru/internal/service"
)

func newAuthService(t *testing.T) (*service.AuthService, *MockUserRepository, *MockTokenStore) {
	t.Helper()

	users := NewMockUserRepository()
	tokens := NewMockTokenStore()
	svc := service.NewAuthService(users, tokens, nil, service.AuthConfig{
		Secret:            []byte("test-secret"),
		TokenTTL:          time.Hour,
		RecentLoginWindow: 5 * time.Minute,
		BcryptCost:        bcrypt.MinCost,
	}, nil)
	return svc, users, tokens
}

func signUp(t *testing.T, svc *service.AuthService) *service.AuthResult {
	t.Helper()

	res, err := svc.SignUp(context.Background(), service.SignUpForm{
		Email:           "Traveller@Example.com",
		Password:        "safari123",
		ConfirmPassword: "safari123",
		DisplayName:     "Wanjiku",
	})
	require.NoError(t, err)
	return res
}

func TestAuth_SignUpThenSignIn(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	created := signUp(t, svc)

	assert.Equal(t, "traveller@example.com", created.User.Email)
	assert.NotEqual(t, "safari123", created.User.PasswordHash)
	assert.NotEmpty(t, created.Token)

	signed, err := svc.SignIn(context.Background(), service.SignInForm{Email: "traveller@example.com", Password: "safari123"})
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, signed.User.ID)

	session, err := svc.Authenticate(context.Background(), signed.Token)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, session.UserID)
	assert.Equal(t, "traveller@example.com", session.Email)
	assert.Equal(t, "Wanjiku", session.DisplayName)
	assert.Equal(t, signed.Session.TokenID, session.TokenID)
}

func TestAuth_SignUpDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	signUp(t, svc)

	_, err := svc.SignUp(context.Background(), service.SignUpForm{Email: "traveller@example.com", Password: "x"})
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestAuth_SignUpValidation(t *testing.T) {
	t.Parallel()

	svc, users, _ := newAuthService(t)

	_, err := svc.SignUp(context.Background(), service.SignUpForm{Email: "nope", Password: "x"})
	assert.Equal(t, "email", service.FieldOf(err))
	assert.Equal(t, int32(0), users.CreateCallCount)
}

func TestAuth_SignInWrongPassword(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	signUp(t, svc)

	_, err := svc.SignIn(context.Background(), service.SignInForm{Email: "traveller@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.SignIn(context.Background(), service.SignInForm{Email: "nobody@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuth_SignOutRevokesToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	res := signUp(t, svc)

	require.NoError(t, svc.SignOut(context.Background(), res.Session))

	_, err := svc.Authenticate(context.Background(), res.Token)
	assert.ErrorIs(t, err, service.ErrTokenRevoked)
}

func TestAuth_RejectsTamperedAndExpiredTokens(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	res := signUp(t, svc)

	_, err := svc.Authenticate(context.Background(), res.Token+"x")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	expiring := service.NewAuthService(NewMockUserRepository(), NewMockTokenStore(), nil, service.AuthConfig{
		Secret:     []byte("test-secret"),
		TokenTTL:   -time.Minute,
		BcryptCost: bcrypt.MinCost,
	}, nil)
	old, err := expiring.SignUp(context.Background(), service.SignUpForm{Email: "a@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = expiring.Authenticate(context.Background(), old.Token)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestAuth_SensitiveOperationsNeedRecentLogin(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	res := signUp(t, svc)

	stale := *res.Session
	stale.AuthTime = time.Now().Add(-10 * time.Minute)

	_, err := svc.UpdateEmail(context.Background(), &stale, "new@example.com")
	assert.ErrorIs(t, err, service.ErrRecentLoginRequired)

	err = svc.UpdatePassword(context.Background(), &stale, "newpass", "newpass")
	assert.ErrorIs(t, err, service.ErrRecentLoginRequired)

	err = svc.DeleteAccount(context.Background(), &stale)
	assert.ErrorIs(t, err, service.ErrRecentLoginRequired)

	// Display name changes are not sensitive.
	_, err = svc.UpdateProfile(context.Background(), &stale, "Achieng")
	assert.NoError(t, err)
}

func TestAuth_ReauthenticateRefreshesAuthTime(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	res := signUp(t, svc)

	stale := *res.Session
	stale.AuthTime = time.Now().Add(-10 * time.Minute)

	_, err := svc.Reauthenticate(context.Background(), &stale, "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	fresh, err := svc.Reauthenticate(context.Background(), &stale, "safari123")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), fresh.Session.AuthTime, 2*time.Second)

	require.NoError(t, svc.UpdatePassword(context.Background(), fresh.Session, "newpass", "newpass"))

	_, err = svc.SignIn(context.Background(), service.SignInForm{Email: "traveller@example.com", Password: "newpass"})
	assert.NoError(t, err)

	// The token replaced by re-authentication no longer works.
	_, err = svc.Authenticate(context.Background(), res.Token)
	assert.ErrorIs(t, err, service.ErrTokenRevoked)
}

func TestAuth_UpdateEmail(t *testing.T) {
	t.Parallel()

	svc, users, _ := newAuthService(t)
	res := signUp(t, svc)

	_, err := svc.SignUp(context.Background(), service.SignUpForm{Email: "taken@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = svc.UpdateEmail(context.Background(), res.Session, "taken@example.com")
	assert.ErrorIs(t, err, service.ErrEmailTaken)

	_, err = svc.UpdateEmail(context.Background(), res.Session, "bad")
	assert.Equal(t, "email", service.FieldOf(err))

	updated, err := svc.UpdateEmail(context.Background(), res.Session, "New@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Session.Email)

	stored, err := users.GetByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", stored.Email)
}

func TestAuth_UpdatePasswordValidation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	res := signUp(t, svc)

	err := svc.UpdatePassword(context.Background(), res.Session, "abc", "abd")
	assert.Equal(t, "confirmPassword", service.FieldOf(err))

	err = svc.UpdatePassword(context.Background(), res.Session, "", "")
	assert.Equal(t, "password", service.FieldOf(err))
}

func TestAuth_DeleteAccount(t *testing.T) {
	t.Parallel()

	svc, users, _ := newAuthService(t)
	publisher := &MockPublisher{}
	svc = service.NewAuthService(users, NewMockTokenStore(), service.NewNotificationService(publisher, nil), service.AuthConfig{
		Secret:            []byte("test-secret"),
		TokenTTL:          time.Hour,
		RecentLoginWindow: 5 * time.Minute,
		BcryptCost:        bcrypt.MinCost,
	}, nil)
	res := signUp(t, svc)

	require.NoError(t, svc.DeleteAccount(context.Background(), res.Session))

	_, err := users.GetByID(context.Background(), res.User.ID)
	assert.Error(t, err)

	_, err = svc.Authenticate(context.Background(), res.Token)
	assert.ErrorIs(t, err, service.ErrTokenRevoked)
	assert.Equal(t, []string{"account.deleted"}, publisher.Events())
}

func TestAuth_DeleteAccountEndsOtherSessions(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	res := signUp(t, svc)
	other, err := svc.SignIn(context.Background(), service.SignInForm{Email: "traveller@example.com", Password: "safari123"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(context.Background(), res.Session))

	_, err = svc.Authenticate(context.Background(), other.Token)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestAuth_NilSession(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)

	_, err := svc.CurrentUser(context.Background(), nil)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	assert.ErrorIs(t, svc.SignOut(context.Background(), nil), service.ErrUnauthenticated)
}
