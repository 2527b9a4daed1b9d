package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/todoboard/todoboard-back/internal/db"
)

type (
	RegisterReq struct {
		Username string `json:"username" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	LoginReq struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	UserResp struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
)

func newUserResp(user *db.User) UserResp {
	return UserResp{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

func (s *HTTPServer) Register(c echo.Context) error {
	req := RegisterReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	token, err := s.svc.StartSession(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	s.setSessionCookie(c, token)

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"user":    newUserResp(user),
		"token":   token,
	})
}

func (s *HTTPServer) Login(c echo.Context) error {
	req := LoginReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := s.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	s.setSessionCookie(c, token)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    newUserResp(user),
		"token":   token,
	})
}

func (s *HTTPServer) Logout(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}

	token, _ := c.Get("session_token").(string)
	if err := s.svc.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	s.clearSessionCookie(c)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "successfully logged out",
	})
}

func (s *HTTPServer) CurrentUser(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    newUserResp(user),
	})
}

// SessionCheck reports session state without erroring for anonymous callers.
func (s *HTTPServer) SessionCheck(c echo.Context) error {
	user := currentUser(c)
	if user == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"success":       true,
			"authenticated": false,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"authenticated": true,
		"user":          newUserResp(user),
	})
}

func (s *HTTPServer) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *HTTPServer) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
