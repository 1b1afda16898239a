package api

import (
	"net/http"

	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name           string      `json:"name" binding:"required,max=100"`
	Email          string      `json:"email" binding:"required,email"`
	Password       string      `json:"password" binding:"required,min=6"`
	Role           domain.Role `json:"role" binding:"omitempty,oneof=user trainer"`
	Certifications string      `json:"certifications" binding:"max=500"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type ProfileResponse struct {
	UserResponse
	FollowedTrainers []UserResponse `json:"followedTrainers"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new account (user or trainer)
// @Description Creates a new account and returns a JWT for it.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} Envelope{data=AuthResponse}
// @Failure 400 {object} Envelope "Validation error or email already registered"
// @Failure 500 {object} Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindingError(c, err)
		return
	}

	token, user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		Certifications: req.Certifications,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, AuthResponse{Token: token, User: MapUserToResponse(user)})
}

// Login godoc
// @Summary Log in
// @Description Authenticates an account and returns a JWT.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} Envelope{data=AuthResponse}
// @Failure 400 {object} Envelope "Validation error"
// @Failure 401 {object} Envelope "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindingError(c, err)
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, AuthResponse{Token: token, User: MapUserToResponse(user)})
}

// Profile godoc
// @Summary Current account
// @Description Returns the caller's account and the trainers they follow.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=ProfileResponse}
// @Failure 401 {object} Envelope
// @Failure 404 {object} Envelope "Account no longer exists"
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.authService.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, ProfileResponse{
		UserResponse:     MapUserToResponse(profile.User),
		FollowedTrainers: MapUsersToResponse(profile.FollowedTrainers),
	})
}
