package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/lithammer/shortuuid/v4"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/server/auth"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store"
)

// minPasswordLength matches the signup form's requirement.
const minPasswordLength = 6

type signupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int32  `json:"id"`
	Email string `json:"email"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (s *APIV1Service) registerAuthRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/auth")
	g.POST("/signup", s.signup)
	g.POST("/signin", s.signin)
	g.POST("/signout", s.signout)
}

func (s *APIV1Service) signup(c *echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "a valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 6 characters")
	}
	if req.Password != req.ConfirmPassword {
		return echo.NewHTTPError(http.StatusBadRequest, "passwords do not match")
	}

	ctx := c.Request().Context()
	existing, err := s.Store.GetUser(ctx, &store.FindUser{Email: &req.Email})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "an account with this email already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	user, err := s.Store.CreateUser(ctx, &store.User{
		UID:          shortuuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return s.respondWithToken(c, user, http.StatusCreated)
}

func (s *APIV1Service) signin(c *echo.Context) error {
	var req signinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.Store.GetUser(c.Request().Context(), &store.FindUser{Email: &req.Email})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	return s.respondWithToken(c, user, http.StatusOK)
}

func (s *APIV1Service) signout(c *echo.Context) error {
	if user, err := s.requireAuth(c); err == nil {
		s.dropManager(user.ID)
	}
	http.SetCookie(c.Response(), &http.Cookie{
		Name:     auth.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.NoContent(http.StatusOK)
}

func (s *APIV1Service) respondWithToken(c *echo.Context, user *store.User, status int) error {
	token, err := auth.GenerateAccessToken(user, s.Secret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	http.SetCookie(c.Response(), &http.Cookie{
		Name:     auth.AccessTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.AccessTokenDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return c.JSON(status, authResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Email: user.Email},
	})
}
