package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/todoboard/todoboard-back/internal/config"
	"github.com/todoboard/todoboard-back/internal/db"
	"github.com/todoboard/todoboard-back/internal/service"
)

const sessionCookie = "todoboard_session"

type (
	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		svc        *service.Service
		logger     *zap.SugaredLogger
		sessionTTL time.Duration
	}
)

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, svc *service.Service, logger *zap.SugaredLogger) *HTTPServer {
	instance := &HTTPServer{
		svc:        svc,
		logger:     logger,
		sessionTTL: cfg.SessionTTL(),
	}

	e := instance.router()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				if err := e.Start(listen); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal("shutting down the server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return e.Shutdown(ctx)
		},
	})

	return instance
}

func (s *HTTPServer) router() *echo.Echo {
	e := echo.New()

	api := e.Group("/api/v1")

	authG := api.Group("/auth")
	authG.POST("/register", s.Register)
	authG.POST("/login", s.Login)
	authG.POST("/logout", s.Logout)
	authG.GET("/user", s.CurrentUser)
	authG.GET("/session", s.SessionCheck)

	dashboardG := api.Group("/todo/dashboards")
	dashboardG.GET("", s.DashboardList)
	dashboardG.POST("", s.DashboardCreate)
	dashboardG.GET("/:id", s.DashboardGet)
	dashboardG.PUT("/:id", s.DashboardUpdate)
	dashboardG.DELETE("/:id", s.DashboardDelete)

	dashboardG.GET("/:id/members", s.MemberList)
	dashboardG.POST("/:id/members", s.MemberAdd)
	dashboardG.PUT("/:id/members/:member_id", s.MemberUpdate)
	dashboardG.DELETE("/:id/members/:member_id", s.MemberRemove)

	dashboardG.GET("/:id/tags", s.TagList)
	dashboardG.POST("/:id/tags", s.TagCreate)
	dashboardG.PUT("/:id/tags/:tag_id", s.TagUpdate)
	dashboardG.DELETE("/:id/tags/:tag_id", s.TagDelete)

	dashboardG.GET("/:id/todos", s.TodoList)
	dashboardG.POST("/:id/todos", s.TodoCreate)
	dashboardG.GET("/:id/todos/search", s.TodoSearch)
	dashboardG.GET("/:id/todos/:todo_id", s.TodoGet)
	dashboardG.PUT("/:id/todos/:todo_id", s.TodoUpdate)
	dashboardG.DELETE("/:id/todos/:todo_id", s.TodoDelete)
	dashboardG.POST("/:id/todos/:todo_id/complete", s.TodoComplete)
	dashboardG.POST("/:id/todos/:todo_id/uncomplete", s.TodoUncomplete)

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, resBody []byte) {
		if len(reqBody) == 0 {
			return
		}
		s.logger.Debugw("request body",
			"method", c.Request().Method,
			"uri", c.Request().RequestURI,
			"body", string(censorBody(reqBody)),
		)
	}))

	e.Use(s.AuthMiddleware)

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = s.errorHandler

	return e
}

// AuthMiddleware resolves the session cookie. Register, login and ping skip it
// entirely; read-only todo routes and the session check tolerate anonymous
// callers, everything else requires a session.
func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		switch c.Path() {
		case "/ping", "/api/v1/auth/register", "/api/v1/auth/login":
			return next(c)
		}

		cookie, err := c.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			if anonymousAllowed(c) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}

		user, err := s.svc.Resolve(c.Request().Context(), cookie.Value)
		if err != nil {
			return err
		}

		c.Set("user", user)
		c.Set("session_token", cookie.Value)
		return next(c)
	}
}

func anonymousAllowed(c echo.Context) bool {
	if c.Path() == "/api/v1/auth/session" {
		return true
	}
	return c.Request().Method == http.MethodGet &&
		strings.HasPrefix(c.Path(), "/api/v1/todo/")
}

func (s *HTTPServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal server error"

	var svcErr *service.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &svcErr):
		status = statusForKind(svcErr.Kind)
		if status < http.StatusInternalServerError {
			msg = svcErr.Message
		}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		msg = fmt.Sprintf("%v", httpErr.Message)
	}

	if status >= http.StatusInternalServerError {
		s.logger.Errorw("request failed",
			"method", c.Request().Method,
			"uri", c.Request().RequestURI,
			"error", err,
		)
	}

	if err := c.JSON(status, echo.Map{"success": false, "error": msg}); err != nil {
		s.logger.Errorw("write error response", "error", err)
	}
}

func statusForKind(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindAuth:
		return http.StatusUnauthorized
	case service.KindPermission:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func censorBody(b []byte) []byte {
	body := map[string]interface{}{}
	if err := json.Unmarshal(b, &body); err != nil {
		return b
	}
	if _, ok := body["password"]; ok {
		body["password"] = "$censored"
	}
	censored, err := json.Marshal(body)
	if err != nil {
		return b
	}
	return censored
}

////////

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func BindAndValidate(c echo.Context, v interface{}) error {
	var err error
	if err = c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(v); err != nil {
		return err
	}
	return nil
}

func currentUser(c echo.Context) *db.User {
	if user, ok := c.Get("user").(*db.User); ok {
		return user
	}
	return nil
}

// currentUserID is 0 for anonymous callers on routes that tolerate them.
func currentUserID(c echo.Context) uint64 {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return 0
}

func requireUser(c echo.Context) (*db.User, error) {
	user := currentUser(c)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return user, nil
}

func GetParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return value, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	v, e := GetParam(c, name)
	if e != nil {
		return 0, e
	}
	vv, e := strconv.ParseUint(v, 10, 64)
	if e != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return vv, nil
}
