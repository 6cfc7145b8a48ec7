package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"zuru/internal/domain"
	"zuru/internal/repository"
)

// TokenStore remembers revoked session tokens.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	Secret            []byte
	TokenTTL          time.Duration
	RecentLoginWindow time.Duration
	BcryptCost        int
}

// SignInForm is the raw input of the sign-in screen.
type SignInForm struct {
	Email    string
	Password string
}

// AuthResult is a user together with a freshly signed session token.
type AuthResult struct {
	User    *domain.User
	Token   string
	Session *domain.Session
}

type sessionClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	AuthTime int64  `json:"auth_time"`
	jwt.RegisteredClaims
}

// AuthService handles accounts and session tokens.
type AuthService struct {
	users    repository.UserRepository
	tokens   TokenStore
	notifier *NotificationService
	cfg      AuthConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, tokens TokenStore, notifier *NotificationService, cfg AuthConfig, logger *zap.Logger) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// ValidateSignIn checks the sign-in form.
func ValidateSignIn(form SignInForm) error {
	if err := ValidateEmail(form.Email); err != nil {
		return err
	}
	if strings.TrimSpace(form.Password) == "" {
		return invalid("password", "password is required")
	}
	return nil
}

// SignUp creates an account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, form SignUpForm) (*AuthResult, error) {
	if err := ValidateSignUp(form); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        normalizeEmail(form.Email),
		DisplayName:  strings.TrimSpace(form.DisplayName),
		PasswordHash: string(hash),
		CreatedAt:    now.Truncate(time.Millisecond),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return s.issue(user, now)
}

// SignIn checks the credentials and starts a session.
func (s *AuthService) SignIn(ctx context.Context, form SignInForm) (*AuthResult, error) {
	if err := ValidateSignIn(form); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(form.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user, s.now())
}

// SignOut revokes the session's token.
func (s *AuthService) SignOut(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return ErrUnauthenticated
	}
	return s.tokens.Revoke(ctx, session.TokenID, session.ExpiresAt)
}

// Authenticate verifies a bearer token and returns its session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrUnauthenticated
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	// Tokens outlive a deleted account.
	if _, err := s.users.GetByID(ctx, claims.Subject); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	session := &domain.Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		TokenID:     claims.ID,
		AuthTime:    time.Unix(claims.AuthTime, 0),
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// CurrentUser returns the account behind session.
func (s *AuthService) CurrentUser(ctx context.Context, session *domain.Session) (*domain.User, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	return s.users.GetByID(ctx, session.UserID)
}

// UpdateProfile changes the display name and returns a token carrying it.
func (s *AuthService) UpdateProfile(ctx context.Context, session *domain.Session, displayName string) (*AuthResult, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, invalid("displayName", "display name is required")
	}

	if err := s.users.UpdateDisplayName(ctx, session.UserID, displayName); err != nil {
		return nil, err
	}
	return s.reissue(ctx, session)
}

// UpdateEmail changes the sign-in email. Requires a recent login.
func (s *AuthService) UpdateEmail(ctx context.Context, session *domain.Session, email string) (*AuthResult, error) {
	if err := s.requireRecentLogin(session); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	if err := s.users.UpdateEmail(ctx, session.UserID, normalizeEmail(email)); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.reissue(ctx, session)
}

// UpdatePassword replaces the password. Requires a recent login.
func (s *AuthService) UpdatePassword(ctx context.Context, session *domain.Session, password, confirm string) error {
	if err := s.requireRecentLogin(session); err != nil {
		return err
	}
	if err := ValidateNewPassword(password, confirm); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePasswordHash(ctx, session.UserID, string(hash))
}

// Reauthenticate checks the password again and returns a session with a
// fresh auth time, allowing sensitive operations.
func (s *AuthService) Reauthenticate(ctx context.Context, session *domain.Session, password string) (*AuthResult, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.tokens.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return nil, err
	}
	return s.issue(user, s.now())
}

// DeleteAccount removes the user and ends the session. Requires a recent
// login. Booking and payment history is kept.
func (s *AuthService) DeleteAccount(ctx context.Context, session *domain.Session) error {
	if err := s.requireRecentLogin(session); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, session.UserID); err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		s.logger.Warn("revoke token of deleted account", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("account deleted", zap.String("user_id", user.ID))
	if s.notifier != nil {
		_ = s.notifier.NotifyAccountDeleted(ctx, user)
	}
	return nil
}

func (s *AuthService) requireRecentLogin(session *domain.Session) error {
	if session == nil {
		return ErrUnauthenticated
	}
	if s.now().Sub(session.AuthTime) > s.cfg.RecentLoginWindow {
		return ErrRecentLoginRequired
	}
	return nil
}

// reissue signs a replacement token for the updated account, keeping the
// original auth time, and revokes the old one.
func (s *AuthService) reissue(ctx context.Context, session *domain.Session) (*AuthResult, error) {
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return nil, err
	}
	return s.issue(user, session.AuthTime)
}

func (s *AuthService) issue(user *domain.User, authTime time.Time) (*AuthResult, error) {
	now := s.now().Truncate(time.Second)
	session := &domain.Session{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		TokenID:     uuid.New().String(),
		IssuedAt:    now,
		AuthTime:    authTime.Truncate(time.Second),
		ExpiresAt:   now.Add(s.cfg.TokenTTL),
	}

	claims := sessionClaims{
		Email:    session.Email,
		Name:     session.DisplayName,
		AuthTime: session.AuthTime.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			ID:        session.TokenID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &AuthResult{User: user, Token: token, Session: session}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
