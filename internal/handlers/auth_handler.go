package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mahammedjunedattar/cloth-invent/internal/auth"
	"github.com/mahammedjunedattar/cloth-invent/internal/middleware"
	"github.com/mahammedjunedattar/cloth-invent/internal/models"
	"github.com/mahammedjunedattar/cloth-invent/internal/repository"
)

type AuthHandler struct {
	Users         UserStore
	Issuer        *auth.Issuer
	SecureCookies bool
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}
	ctx := c.Request.Context()

	_, err := h.Users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		c.JSON(http.StatusConflict, ErrorResponse{Error: "User already exists"})
		return
	case !errors.Is(err, repository.ErrNotFound):
		internalError(c, "Internal server error", err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		internalError(c, "Internal server error", err)
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		StoreID:      uuid.NewString(),
		Role:         models.RoleOwner,
	}
	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "User already exists"})
			return
		}
		internalError(c, "Internal server error", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created", "userId": user.ID.Hex()})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: auth.ErrInvalidCredentials.Error()})
			return
		}
		internalError(c, "Internal server error", err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: auth.ErrInvalidCredentials.Error()})
		return
	}

	token, err := h.Issuer.Issue(user.ID.Hex(), user.StoreID, user.Role, user.Email)
	if err != nil {
		internalError(c, "Internal server error", err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.Issuer.TTL().Seconds()), "/", "", h.SecureCookies, true)
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: *user})
}
