package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/akowalczyk/backoffice/internal/api/rest/middleware"
	"github.com/akowalczyk/backoffice/internal/domain"
	"github.com/akowalczyk/backoffice/internal/repository"
	"github.com/gorilla/mux"
)

// UserRepository defines the account and role operations identity endpoints use.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (int, error)
	Delete(ctx context.Context, userID int) (bool, error)
	CreateRole(ctx context.Context, name string) (int, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
}

// TokenConfig holds token issuance configuration
type TokenConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	TokenTTL time.Duration
}

// IdentityHandler handles sign-in and account management requests
type IdentityHandler struct {
	users  UserRepository
	config *TokenConfig
	logger *slog.Logger
}

// NewIdentityHandler creates a new IdentityHandler instance
func NewIdentityHandler(users UserRepository, config *TokenConfig, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{
		users:  users,
		config: config,
		logger: logger,
	}
}

// LoginRequest represents the sign-in request payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the sign-in response payload
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

// CreateUserRequest represents the account creation payload
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	RoleID   int    `json:"id_role"`
}

// CreateRoleRequest represents the role creation payload
type CreateRoleRequest struct {
	Name string `json:"name"`
}

// Login handles POST /identity/login - verifies credentials and issues a JWT
func (h *IdentityHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Username and password are required")
		return
	}

	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		var notFoundErr *repository.NotFoundError
		if errors.As(err, &notFoundErr) {
			h.logger.Warn("sign in attempt for unknown account", "username", req.Username)
		} else {
			h.logger.Error("failed to load account during sign in", "username", req.Username, "error", err)
		}
		WriteErrorResponse(w, http.StatusUnauthorized, "authentication_failed", "Authentication failed")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.Warn("sign in attempt with wrong password", "username", req.Username)
		WriteErrorResponse(w, http.StatusUnauthorized, "authentication_failed", "Authentication failed")
		return
	}

	token, err := h.generateJWT(user)
	if err != nil {
		h.logger.Error("failed to sign token", "user_id", user.ID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "authentication_failed", "Authentication failed")
		return
	}

	h.logger.Info("account signed in", "user_id", user.ID, "role", user.Role)

	WriteJSONResponse(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
	})
}

// CreateUser handles POST /identity/user
func (h *IdentityHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" || req.RoleID <= 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Username, password and role are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to create account")
		return
	}

	id, err := h.users.Create(r.Context(), &domain.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		RoleID:       req.RoleID,
	})
	if err != nil {
		h.logger.Error("failed to create account", "username", req.Username, "error", err)
		writeDomainError(w, err)
		return
	}

	h.logger.Info("account created", "user_id", id, "username", req.Username)
	WriteJSONResponse(w, http.StatusCreated, map[string]int{"id_user": id})
}

// DeleteUser handles DELETE /identity/user/{id}
func (h *IdentityHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || userID <= 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "ID must be a positive integer")
		return
	}

	found, err := h.users.Delete(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to delete account", "user_id", userID, "error", err)
		writeDomainError(w, err)
		return
	}
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, "not_found",
			(&repository.NotFoundError{Resource: "user", Key: "id", Value: strconv.Itoa(userID)}).Error())
		return
	}

	h.logger.Info("account deleted", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// CreateRole handles POST /identity/role
func (h *IdentityHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.Name == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Name is required")
		return
	}

	id, err := h.users.CreateRole(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("failed to create role", "name", req.Name, "error", err)
		writeDomainError(w, err)
		return
	}

	h.logger.Info("role created", "role_id", id, "name", req.Name)
	WriteJSONResponse(w, http.StatusCreated, map[string]int{"id_role": id})
}

// ListRoles handles GET /identity/roles
func (h *IdentityHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.users.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("failed to list roles", "error", err)
		writeDomainError(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, roles)
}

// generateJWT creates a signed token for the authenticated account
func (h *IdentityHandler) generateJWT(user *domain.User) (string, error) {
	now := time.Now()

	claims := middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    h.config.Issuer,
			Subject:   strconv.Itoa(user.ID),
			Audience:  jwt.ClaimStrings{h.config.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(h.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Role: user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.config.Secret)
}
