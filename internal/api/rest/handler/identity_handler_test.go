package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/akowalczyk/backoffice/internal/api/rest/middleware"
	"github.com/akowalczyk/backoffice/internal/domain"
	"github.com/akowalczyk/backoffice/internal/repository"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) (int, error) {
	args := m.Called(ctx, user)
	return args.Int(0), args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, userID int) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) CreateRole(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

func (m *mockUserRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Role), args.Error(1)
}

func testTokenConfig() *TokenConfig {
	return &TokenConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "backoffice",
		Audience: "backoffice-api",
		TokenTTL: time.Hour,
	}
}

func newIdentityHandler(users *mockUserRepository) *IdentityHandler {
	return NewIdentityHandler(users, testTokenConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIdentityHandler_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	adminUser := &domain.User{
		ID:           1,
		Username:     "admin",
		PasswordHash: string(hash),
		RoleID:       1,
		Role:         "admin",
	}

	testCases := map[string]struct {
		requestBody    map[string]string
		setupMock      func(users *mockUserRepository)
		expectedStatus int
	}{
		"should issue token for valid credentials": {
			requestBody: map[string]string{"username": "admin", "password": "correct-password"},
			setupMock: func(users *mockUserRepository) {
				users.On("GetByUsername", mock.Anything, "admin").Return(adminUser, nil)
			},
			expectedStatus: http.StatusOK,
		},

		"should reject wrong password": {
			requestBody: map[string]string{"username": "admin", "password": "wrong-password"},
			setupMock: func(users *mockUserRepository) {
				users.On("GetByUsername", mock.Anything, "admin").Return(adminUser, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},

		"should reject unknown account with the same status as wrong password": {
			requestBody: map[string]string{"username": "ghost", "password": "whatever"},
			setupMock: func(users *mockUserRepository) {
				users.On("GetByUsername", mock.Anything, "ghost").Return(nil, &repository.NotFoundError{
					Resource: "user", Key: "username", Value: "ghost",
				})
			},
			expectedStatus: http.StatusUnauthorized,
		},

		"should reject missing credentials": {
			requestBody:    map[string]string{"username": "admin"},
			setupMock:      func(_ *mockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			users := &mockUserRepository{}
			tc.setupMock(users)
			handler := newIdentityHandler(users)

			body, _ := json.Marshal(tc.requestBody)
			req := httptest.NewRequest(http.MethodPost, "/identity/login", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Login(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)

			if tc.expectedStatus == http.StatusOK {
				var response LoginResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, "Bearer", response.TokenType)

				claims := &middleware.Claims{}
				_, err := jwt.ParseWithClaims(response.Token, claims, func(_ *jwt.Token) (any, error) {
					return []byte("test-secret"), nil
				})
				require.NoError(t, err)
				assert.Equal(t, "1", claims.Subject)
				assert.Equal(t, "admin", claims.Role)
				assert.Equal(t, "backoffice", claims.Issuer)
				assert.NotEmpty(t, claims.ID)
			}

			users.AssertExpectations(t)
		})
	}
}

func TestIdentityHandler_CreateUser(t *testing.T) {
	testCases := map[string]struct {
		requestBody    map[string]any
		setupMock      func(users *mockUserRepository)
		expectedStatus int
		expectedError  string
	}{
		"should create account with hashed password": {
			requestBody: map[string]any{"username": "clerk", "password": "s3cret", "id_role": 2},
			setupMock: func(users *mockUserRepository) {
				users.On("Create", mock.Anything, mock.MatchedBy(func(user *domain.User) bool {
					// The stored hash must verify against the submitted password.
					return user.Username == "clerk" &&
						user.RoleID == 2 &&
						bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")) == nil
				})).Return(7, nil)
			},
			expectedStatus: http.StatusCreated,
		},

		"should reject missing role": {
			requestBody:    map[string]any{"username": "clerk", "password": "s3cret"},
			setupMock:      func(_ *mockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Username, password and role are required",
		},

		"should return bad request when username is taken": {
			requestBody: map[string]any{"username": "clerk", "password": "s3cret", "id_role": 2},
			setupMock: func(users *mockUserRepository) {
				users.On("Create", mock.Anything, mock.Anything).
					Return(0, &repository.ValidationError{Reason: `username "clerk" is taken`})
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "is taken",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			users := &mockUserRepository{}
			tc.setupMock(users)
			handler := newIdentityHandler(users)

			body, _ := json.Marshal(tc.requestBody)
			req := httptest.NewRequest(http.MethodPost, "/identity/user", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreateUser(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)

			if tc.expectedError != "" {
				var errorResponse ErrorResponse
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &errorResponse))
				assert.Contains(t, errorResponse.Message, tc.expectedError)
			}

			users.AssertExpectations(t)
		})
	}
}

func TestIdentityHandler_ListRoles(t *testing.T) {
	users := &mockUserRepository{}
	users.On("ListRoles", mock.Anything).Return([]domain.Role{
		{ID: 1, Name: "admin"},
		{ID: 2, Name: "clerk"},
	}, nil)

	handler := newIdentityHandler(users)

	req := httptest.NewRequest(http.MethodGet, "/identity/roles", http.NoBody)
	w := httptest.NewRecorder()

	handler.ListRoles(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var roles []domain.Role
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roles))
	assert.Len(t, roles, 2)
}
