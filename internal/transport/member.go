package transport

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/todoboard/todoboard-back/internal/db"
)

type (
	MemberAddReq struct {
		Email string `json:"email" validate:"required,email"`
		Role  string `json:"role" validate:"required"`
	}

	MemberUpdateReq struct {
		Role string `json:"role" validate:"required"`
	}

	MemberResp struct {
		ID       uint64 `json:"id"`
		UserID   uint64 `json:"user_id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		JoinedAt string `json:"joined_at"`
	}
)

func newMemberResp(m *db.Membership) MemberResp {
	return MemberResp{
		ID:       m.ID,
		UserID:   m.UserID,
		Username: m.User.Username,
		Email:    m.User.Email,
		Role:     m.Role,
		JoinedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func (s *HTTPServer) MemberList(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	members, err := s.svc.ListMembers(currentUserID(c), id)
	if err != nil {
		return err
	}

	resp := make([]MemberResp, len(members))
	for i := range members {
		resp[i] = newMemberResp(&members[i])
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"members": resp,
	})
}

func (s *HTTPServer) MemberAdd(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	req := MemberAddReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	member, err := s.svc.AddMember(user.ID, id, req.Email, req.Role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"member":  newMemberResp(member),
	})
}

func (s *HTTPServer) MemberUpdate(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	memberID, err := GetAndParseParam(c, "member_id")
	if err != nil {
		return err
	}

	req := MemberUpdateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	member, err := s.svc.UpdateMemberRole(user.ID, id, memberID, req.Role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"member":  newMemberResp(member),
	})
}

func (s *HTTPServer) MemberRemove(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	memberID, err := GetAndParseParam(c, "member_id")
	if err != nil {
		return err
	}

	if err := s.svc.RemoveMember(user.ID, id, memberID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
