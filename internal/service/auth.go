package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/BackofficeGo/internal/auth"
	"github.com/utafrali/BackofficeGo/internal/domain"
	"github.com/utafrali/BackofficeGo/internal/repository"
	apperrors "github.com/utafrali/BackofficeGo/pkg/errors"
)

const bearerPrefix = "Bearer "

// TokenIssuer issues and inspects signed tokens.
type TokenIssuer interface {
	Issue(subject string, extra map[string]any, ttl time.Duration) (string, error)
	ExtractSubject(tokenString string) (string, error)
	IsValid(tokenString, subject string) (bool, error)
}

// PasswordVerifier hashes and checks passwords.
type PasswordVerifier interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// AuthEvents receives authentication lifecycle notifications.
type AuthEvents interface {
	UserRegistered(ctx context.Context, user *domain.User)
	UserLoggedIn(ctx context.Context, user *domain.User)
}

// AuthService implements account registration, login and token refresh.
type AuthService struct {
	users      repository.UserRepository
	tokens     repository.TokenRepository
	codec      TokenIssuer
	passwords  PasswordVerifier
	events     AuthEvents
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
}

// NewAuthService creates the authentication service.
func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	codec TokenIssuer,
	passwords PasswordVerifier,
	events AuthEvents,
	accessTTL, refreshTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		codec:      codec,
		passwords:  passwords,
		events:     events,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// Register creates a new account and returns its first token pair.
// A brand-new account has no prior tokens, so nothing is revoked.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error) {
	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Wrap(err, "check existing account")
	}
	if exists {
		return nil, apperrors.AlreadyExists("user", "email", req.Email)
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "hash password")
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         domain.RoleOperator,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.Wrap(err, "create user")
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Save(ctx, newTokenRecord(user.ID, pair.AccessToken)); err != nil {
		return nil, apperrors.Wrap(err, "persist token")
	}

	s.events.UserRegistered(ctx, user)
	s.logger.InfoContext(ctx, "account registered",
		slog.String("user_id", user.ID),
	)
	return pair, nil
}

// Login verifies credentials and issues a fresh token pair. Every prior
// store-valid token of the user is revoked in the same transaction that
// persists the new one, so at most one active session survives a login.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, apperrors.Wrap(err, "lookup user")
	}

	if !user.IsActive {
		return nil, apperrors.Unauthorized("account is disabled")
	}
	if !s.passwords.Verify(user.PasswordHash, req.Password) {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.RevokeActiveAndSave(ctx, user.ID, newTokenRecord(user.ID, pair.AccessToken)); err != nil {
		return nil, apperrors.Wrap(err, "rotate session")
	}

	s.events.UserLoggedIn(ctx, user)
	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)
	return pair, nil
}

// Refresh exchanges a refresh token, carried in the Authorization header,
// for a new access token. The refresh token itself is returned verbatim;
// it is not rotated.
func (s *AuthService) Refresh(ctx context.Context, authorizationHeader string) (*domain.TokenPair, error) {
	if !strings.HasPrefix(authorizationHeader, bearerPrefix) {
		return nil, apperrors.InvalidInput("authorization header must use the Bearer scheme")
	}
	refreshToken := authorizationHeader[len(bearerPrefix):]
	if refreshToken == "" {
		return nil, apperrors.InvalidInput("authorization header carries no token")
	}

	email, err := s.codec.ExtractSubject(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrMalformedToken) {
			return nil, apperrors.InvalidInputWrap(err, "malformed refresh token")
		}
		return nil, apperrors.Wrap(err, "extract subject")
	}
	if email == "" {
		return nil, apperrors.InvalidInput("refresh token carries no subject")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Wrap(err, "lookup user")
	}

	valid, err := s.codec.IsValid(refreshToken, user.Email)
	if err != nil {
		if errors.Is(err, auth.ErrMalformedToken) {
			return nil, apperrors.InvalidInputWrap(err, "malformed refresh token")
		}
		return nil, apperrors.Wrap(err, "validate refresh token")
	}
	if !valid {
		return nil, apperrors.InvalidInput("refresh token is expired or invalid")
	}

	accessToken, err := s.issueAccess(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.RevokeActiveAndSave(ctx, user.ID, newTokenRecord(user.ID, accessToken)); err != nil {
		return nil, apperrors.Wrap(err, "rotate session")
	}

	s.logger.InfoContext(ctx, "token refreshed",
		slog.String("user_id", user.ID),
	)
	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccessToken checks a bearer token presented on a protected
// route. The token must verify cryptographically for its subject, belong
// to an active user, and still be store-valid (neither expired nor
// revoked). Returns the identity bound to the token.
func (s *AuthService) ValidateAccessToken(ctx context.Context, tokenString string) (*domain.User, error) {
	email, err := s.codec.ExtractSubject(tokenString)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token")
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized("account is disabled")
	}

	valid, err := s.codec.IsValid(tokenString, user.Email)
	if err != nil || !valid {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	record, err := s.tokens.FindByValue(ctx, tokenString)
	if err != nil {
		return nil, apperrors.Unauthorized("unknown token")
	}
	if !record.Valid() {
		return nil, apperrors.Unauthorized("token has been revoked")
	}

	return user, nil
}

func (s *AuthService) issuePair(user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.issueAccess(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.Issue(user.Email, map[string]any{"scope": "refresh"}, s.refreshTTL)
	if err != nil {
		return nil, apperrors.Wrap(err, "issue refresh token")
	}
	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthService) issueAccess(user *domain.User) (string, error) {
	accessToken, err := s.codec.Issue(user.Email, map[string]any{
		"user_id": user.ID,
		"role":    string(user.Role),
		"scope":   "access",
	}, s.accessTTL)
	if err != nil {
		return "", apperrors.Wrap(err, "issue access token")
	}
	return accessToken, nil
}

func newTokenRecord(userID, value string) *domain.Token {
	return &domain.Token{
		ID:        uuid.New().String(),
		Value:     value,
		Kind:      domain.TokenKindBearer,
		Expired:   false,
		Revoked:   false,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}
