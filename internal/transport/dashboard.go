package transport

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/todoboard/todoboard-back/internal/db"
)

type (
	DashboardReq struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
	}

	DashboardResp struct {
		ID          uint64 `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
		PublicLink  string `json:"public_link"`
		OwnerID     uint64 `json:"owner_id"`
		CreatedAt   string `json:"created_at"`
	}
)

func newDashboardResp(d *db.Dashboard) DashboardResp {
	return DashboardResp{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		IsPublic:    d.IsPublic,
		PublicLink:  d.PublicLink,
		OwnerID:     d.OwnerID,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
}

func (s *HTTPServer) DashboardList(c echo.Context) error {
	dashboards, err := s.svc.ListDashboards(currentUserID(c))
	if err != nil {
		return err
	}

	resp := make([]DashboardResp, len(dashboards))
	for i := range dashboards {
		resp[i] = newDashboardResp(&dashboards[i])
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"dashboards": resp,
	})
}

func (s *HTTPServer) DashboardCreate(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	req := DashboardReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	dashboard, err := s.svc.CreateDashboard(user.ID, req.Title, req.Description, req.IsPublic)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":   true,
		"dashboard": newDashboardResp(dashboard),
	})
}

func (s *HTTPServer) DashboardGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	dashboard, err := s.svc.GetDashboard(currentUserID(c), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"dashboard": newDashboardResp(dashboard),
	})
}

func (s *HTTPServer) DashboardUpdate(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	req := DashboardReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	dashboard, err := s.svc.UpdateDashboard(user.ID, id, req.Title, req.Description, req.IsPublic)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"dashboard": newDashboardResp(dashboard),
	})
}

func (s *HTTPServer) DashboardDelete(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.svc.DeleteDashboard(user.ID, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
