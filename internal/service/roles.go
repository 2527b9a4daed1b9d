package service

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/todoboard/todoboard-back/internal/db"
)

type Role string

const (
	RoleOwner  Role = db.RoleOwner
	RoleEditor Role = db.RoleEditor
	RoleViewer Role = db.RoleViewer
	RoleNone   Role = "none"
)

// ParseRole accepts the roles assignable to an invited member. Owner is not
// assignable: it belongs to the dashboard's owner record only.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleEditor, RoleViewer:
		return Role(s), nil
	}
	return RoleNone, errValidation("role must be 'editor' or 'viewer'")
}

func (r Role) CanView() bool {
	return r != RoleNone
}

func (r Role) CanEdit() bool {
	return r == RoleOwner || r == RoleEditor
}

func (r Role) CanManageMembers() bool {
	return r == RoleOwner
}

// EffectiveRole resolves the permission level of a user on a dashboard.
// userID 0 stands for an unauthenticated caller.
func (s *Service) EffectiveRole(userID uint64, dashboard *db.Dashboard) (Role, error) {
	if userID != 0 && dashboard.OwnerID == userID {
		return RoleOwner, nil
	}

	if userID != 0 {
		member := db.Membership{}
		res := s.db.Where("dashboard_id = ? AND user_id = ?", dashboard.ID, userID).First(&member)
		if res.Error == nil {
			return Role(member.Role), nil
		}
		if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return RoleNone, errInternal(res.Error, "find membership")
		}
	}

	if dashboard.IsPublic {
		return RoleViewer, nil
	}

	return RoleNone, nil
}

// dashboardForRole loads a dashboard and the caller's role on it. A dashboard
// the caller cannot view is reported as absent, the same as one that does not
// exist.
func (s *Service) dashboardForRole(userID, dashboardID uint64) (*db.Dashboard, Role, error) {
	dashboard := db.Dashboard{}
	res := s.db.First(&dashboard, dashboardID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, RoleNone, errNotFound("dashboard not found")
		}
		return nil, RoleNone, errInternal(res.Error, "find dashboard")
	}

	role, err := s.EffectiveRole(userID, &dashboard)
	if err != nil {
		return nil, RoleNone, err
	}
	if !role.CanView() {
		return nil, RoleNone, errNotFound("dashboard not found")
	}

	return &dashboard, role, nil
}
