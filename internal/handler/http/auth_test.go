package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/BackofficeGo/internal/domain"
	apperrors "github.com/utafrali/BackofficeGo/pkg/errors"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *mockAuthService) Refresh(ctx context.Context, header string) (*domain.TokenPair, error) {
	args := m.Called(ctx, header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func newAuthHandler(svc *mockAuthService) *AuthHandler {
	return NewAuthHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAuthHandler_Register(t *testing.T) {
	svc := new(mockAuthService)
	handler := newAuthHandler(svc)

	pair := &domain.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-jwt"}
	svc.On("Register", mock.Anything, mock.AnythingOfType("domain.RegisterRequest")).Return(pair, nil)

	body := `{"name":"Ana Torres","email":"ana@example.com","password":"s3cret-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	// The token pair is the top-level object with exactly these field names.
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "access-jwt", got["accessToken"])
	assert.Equal(t, "refresh-jwt", got["refreshToken"])
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	svc := new(mockAuthService)
	handler := newAuthHandler(svc)

	body := `{"name":"A","email":"not-an-email","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestAuthHandler_Login(t *testing.T) {
	svc := new(mockAuthService)
	handler := newAuthHandler(svc)

	pair := &domain.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-jwt"}
	svc.On("Login", mock.Anything, domain.LoginRequest{
		Email:    "ana@example.com",
		Password: "s3cret-password",
	}).Return(pair, nil)

	body := `{"email":"ana@example.com","password":"s3cret-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accessToken":"access-jwt"`)
	assert.Contains(t, rec.Body.String(), `"refreshToken":"refresh-jwt"`)
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	svc := new(mockAuthService)
	handler := newAuthHandler(svc)

	svc.On("Login", mock.Anything, mock.AnythingOfType("domain.LoginRequest")).
		Return(nil, apperrors.Unauthorized("invalid email or password"))

	body := `{"email":"ana@example.com","password":"wrong-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestAuthHandler_Refresh(t *testing.T) {
	svc := new(mockAuthService)
	handler := newAuthHandler(svc)

	pair := &domain.TokenPair{AccessToken: "new-access-jwt", RefreshToken: "refresh-jwt"}
	svc.On("Refresh", mock.Anything, "Bearer refresh-jwt").Return(pair, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer refresh-jwt")
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "new-access-jwt", got["accessToken"])
	assert.Equal(t, "refresh-jwt", got["refreshToken"])
}

func TestAuthHandler_Refresh_MissingHeader(t *testing.T) {
	svc := new(mockAuthService)
	handler := newAuthHandler(svc)

	svc.On("Refresh", mock.Anything, "").
		Return(nil, apperrors.InvalidInput("authorization header must use the Bearer scheme"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	svc := new(mockAuthService)
	handler := newAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}
