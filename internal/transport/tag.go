package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/todoboard/todoboard-back/internal/db"
)

type (
	TagReq struct {
		Name  string `json:"name" validate:"required"`
		Color string `json:"color" validate:"omitempty,hexcolor"`
	}

	TagResp struct {
		ID    uint64 `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}
)

func newTagResp(t *db.Tag) TagResp {
	return TagResp{
		ID:    t.ID,
		Name:  t.Name,
		Color: t.Color,
	}
}

func (s *HTTPServer) TagList(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	tags, err := s.svc.ListTags(currentUserID(c), id)
	if err != nil {
		return err
	}

	resp := make([]TagResp, len(tags))
	for i := range tags {
		resp[i] = newTagResp(&tags[i])
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"tags":    resp,
	})
}

func (s *HTTPServer) TagCreate(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	req := TagReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	tag, err := s.svc.CreateTag(user.ID, id, req.Name, req.Color)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"tag":     newTagResp(tag),
	})
}

func (s *HTTPServer) TagUpdate(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	tagID, err := GetAndParseParam(c, "tag_id")
	if err != nil {
		return err
	}

	req := TagReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	tag, err := s.svc.UpdateTag(user.ID, id, tagID, req.Name, req.Color)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"tag":     newTagResp(tag),
	})
}

func (s *HTTPServer) TagDelete(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	tagID, err := GetAndParseParam(c, "tag_id")
	if err != nil {
		return err
	}

	if err := s.svc.DeleteTag(user.ID, id, tagID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
