package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"drobeo/internal/config"
	"drobeo/internal/models"
	"drobeo/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

const testSecret = "test-secret-key-12345678901234567890123456789012"

func authServer(repo *MockUserRepository) *Server {
	return &Server{
		config:      &config.Config{JWTSecret: testSecret},
		authService: service.NewAuthService(repo, nil, testSecret, nil),
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSignup(t *testing.T) {
	mockRepo := new(MockUserRepository)
	s := authServer(mockRepo)
	app := fiber.New()
	app.Post("/signup", s.Signup)

	mockRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	mockRepo.On("GetByUsername", mock.Anything, "newuser").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = 7 }).
		Return(nil)
	mockRepo.On("GetByEmail", mock.Anything, "exists@example.com").Return(&models.User{ID: 1}, nil)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success",
			body: map[string]string{
				"username": "newuser",
				"email":    "New@Example.com",
				"password": "Password123!",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate User",
			body: map[string]string{
				"username": "someone",
				"email":    "exists@example.com",
				"password": "Password123!",
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   models.CodeConflict,
		},
		{
			name:           "Missing Fields",
			body:           map[string]string{"email": "x@example.com"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/signup", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, resp).Code)
				return
			}
			var res service.AuthResult
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
			assert.NotEmpty(t, res.Token)
			assert.Equal(t, uint(7), res.User.ID)
			assert.Empty(t, res.User.Password)
		})
	}
	mockRepo.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	require.NoError(t, err)
	email := "ana@example.com"
	user := &models.User{ID: 3, Username: "ana", Email: &email, Password: string(hash)}

	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByEmail", mock.Anything, "ana@example.com").Return(user, nil)
	mockRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)
	mockRepo.On("GetByEmail", mock.Anything, "broken@example.com").Return(nil, errors.New("connection reset"))

	s := authServer(mockRepo)
	app := fiber.New()
	app.Post("/login", s.Login)

	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"valid", map[string]string{"email": "ana@example.com", "password": "Password123!"}, http.StatusOK},
		{"wrong password", map[string]string{"email": "ana@example.com", "password": "nope"}, http.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "ghost@example.com", "password": "Password123!"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"email": "ana@example.com"}, http.StatusBadRequest},
		{"repository failure", map[string]string{"email": "broken@example.com", "password": "Password123!"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/login", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
