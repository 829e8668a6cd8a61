package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockService) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockService) GetByID(ctx context.Context, userID int) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*User), args.Error(2)
}

func setupRouter(svc Service, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.RefreshToken)
	r.GET("/me", func(c *gin.Context) {
		if userID > 0 {
			c.Set("user_id", userID)
		}
		h.GetMe(c)
	})
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Register(t *testing.T) {
	svc := new(MockService)
	svc.On("Register", mock.Anything, RegisterRequest{Name: "Mia", Email: "mia@example.com", Password: "password123"}).
		Return(&User{ID: 3, Name: "Mia", Email: "mia@example.com", PasswordHash: "hash", Role: "member"}, "access", "refresh", nil)
	svc.On("Register", mock.Anything, RegisterRequest{Name: "Dup", Email: "dup@example.com", Password: "password123"}).
		Return(nil, "", "", ErrEmailExists)
	r := setupRouter(svc, 0)

	w := post(r, "/auth/register", `{"name":"Mia","email":"mia@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "hash")

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, 3, resp.User.ID)

	assert.Equal(t, http.StatusConflict, post(r, "/auth/register", `{"name":"Dup","email":"dup@example.com","password":"password123"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/auth/register", `{"name":"Mia","email":"not-an-email","password":"password123"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/auth/register", `{"name":"Mia","email":"mia@example.com","password":"short"}`).Code)
}

func TestHandler_Login(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, LoginRequest{Email: "mia@example.com", Password: "wrong"}).
		Return(nil, "", "", ErrInvalidCredentials)
	r := setupRouter(svc, 0)

	assert.Equal(t, http.StatusUnauthorized, post(r, "/auth/login", `{"email":"mia@example.com","password":"wrong"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/auth/login", `{"email":"mia@example.com"}`).Code)
}

func TestHandler_RefreshToken(t *testing.T) {
	svc := new(MockService)
	svc.On("RefreshToken", mock.Anything, "expired").Return("", nil, ErrInvalidCredentials)
	r := setupRouter(svc, 0)

	assert.Equal(t, http.StatusUnauthorized, post(r, "/auth/refresh", `{"refresh_token":"expired"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/auth/refresh", `{}`).Code)
}

func TestHandler_GetMe(t *testing.T) {
	svc := new(MockService)
	svc.On("GetByID", mock.Anything, 3).Return(&User{ID: 3, Name: "Mia"}, nil)

	w := httptest.NewRecorder()
	setupRouter(svc, 3).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Mia"`)

	w = httptest.NewRecorder()
	setupRouter(svc, 0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
