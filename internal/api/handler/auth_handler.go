package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/ports"
)

// AuthHandler handles registration, login, and the current-user endpoint.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		PartnerID: u.PartnerID,
		ParentID:  u.ParentID,
		CreatedAt: u.CreatedAt,
	}
}

// Register creates a new PARTNER or PARENT account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  Envelope{data=userResponse}
// @Failure      400   {object}  Envelope
// @Router       /api/v1/user [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "User registered successfully", toUserResponse(user))
}

// Login exchanges credentials for a JWT.
//
// @Summary      Generate an auth token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Envelope{data=loginResponse}
// @Failure      401   {object}  Envelope
// @Router       /api/v1/user/generate-auth-token [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Authenticated successfully", loginResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

// Me returns the profile behind the presented token.
//
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=userResponse}
// @Failure      401  {object}  Envelope
// @Router       /api/v1/user/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := userClaims(c)
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User fetched successfully", toUserResponse(user))
}
