package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/securedocs/fileshare/internal/api/metrics"
	"github.com/securedocs/fileshare/internal/core/domain"
	"github.com/securedocs/fileshare/internal/core/ports"
)

const verificationTokenBytes = 32

// AuthService implements signup, email verification and login.
type AuthService struct {
	users     ports.UserRepository
	tokens    ports.VerificationTokenRepository
	mail      ports.MailEnqueuer
	jwtSecret string
	accessTTL time.Duration
	verifyTTL time.Duration
	baseURL   string
	logger    zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.VerificationTokenRepository,
	mail ports.MailEnqueuer,
	jwtSecret string,
	accessTTL, verifyTTL time.Duration,
	baseURL string,
	logger zerolog.Logger,
) *AuthService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if verifyTTL <= 0 {
		verifyTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		mail:      mail,
		jwtSecret: jwtSecret,
		accessTTL: accessTTL,
		verifyTTL: verifyTTL,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
	}
}

// Signup creates an unverified account and issues its verification token.
// Email uniqueness is enforced by the repository, so two concurrent signups
// with the same address cannot both succeed.
func (s *AuthService) Signup(ctx context.Context, email, password, role string) (*ports.SignupResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         role,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	secureURL, err := s.issueVerification(ctx, created)
	if err != nil {
		return nil, err
	}

	s.mail.Enqueue(ports.VerificationMail{To: created.Email, SecureURL: secureURL})
	metrics.SignupsTotal.WithLabelValues(created.Role).Inc()
	s.logger.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user signed up")

	return &ports.SignupResult{User: created, SecureURL: secureURL}, nil
}

// issueVerification stores a fresh one-time token for the user, replacing any
// pending one, and returns the verification URL.
func (s *AuthService) issueVerification(ctx context.Context, user *domain.User) (string, error) {
	token, err := opaqueToken()
	if err != nil {
		return "", err
	}

	vt := &domain.VerificationToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(s.verifyTTL),
	}
	if err := s.tokens.Replace(ctx, vt); err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}

	return s.baseURL + "/verify-email/" + token, nil
}

// VerifyEmail consumes the one-time token and marks the user verified.
// Consumption is atomic in the store; a second attempt with the same token
// fails even when racing with the first.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidOrExpiredToken
	}

	vt, err := s.tokens.Consume(ctx, token)
	if err != nil {
		return nil, err
	}
	if vt.Expired(time.Now().UTC()) {
		return nil, domain.ErrInvalidOrExpiredToken
	}

	if err := s.users.MarkVerified(ctx, vt.UserID); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, vt.UserID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("email verified")
	return user, nil
}

// Login validates credentials and returns a signed access token. An
// unverified account is rejected after the password check, so a correct
// password never reveals more than "not verified".
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if !user.Verified {
		return "", nil, domain.ErrEmailNotVerified
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"role":  user.Role,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// opaqueToken returns an unguessable URL-safe token.
func opaqueToken() (string, error) {
	b := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
