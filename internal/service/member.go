package service

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/todoboard/todoboard-back/internal/db"
)

func (s *Service) ListMembers(userID, dashboardID uint64) ([]db.Membership, error) {
	_, _, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}

	members := make([]db.Membership, 0)
	res := s.db.Preload("User").Where("dashboard_id = ?", dashboardID).Order("id").Find(&members)
	if res.Error != nil {
		return nil, errInternal(res.Error, "list members")
	}

	return members, nil
}

// AddMember invites an existing user by email. The owner never gets a
// membership row, so inviting the owner's own email is a conflict.
func (s *Service) AddMember(userID, dashboardID uint64, email, roleName string) (*db.Membership, error) {
	dashboard, role, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}
	if !role.CanManageMembers() {
		return nil, errPermission("only the owner can manage members")
	}

	newRole, err := ParseRole(roleName)
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	invited := db.User{}
	res := s.db.Where("email = ?", email).First(&invited)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, errNotFound("user with email " + email + " not found")
		}
		return nil, errInternal(res.Error, "find invited user")
	}

	if invited.ID == dashboard.OwnerID {
		return nil, errConflict("user " + email + " already has access to this dashboard")
	}

	count := int64(0)
	res = s.db.Model(&db.Membership{}).
		Where("dashboard_id = ? AND user_id = ?", dashboard.ID, invited.ID).
		Count(&count)
	if res.Error != nil {
		return nil, errInternal(res.Error, "check membership")
	}
	if count > 0 {
		return nil, errConflict("user " + email + " already has access to this dashboard")
	}

	member := db.Membership{
		DashboardID: dashboard.ID,
		UserID:      invited.ID,
		Role:        string(newRole),
		User:        invited,
	}
	if res := s.db.Create(&member); res.Error != nil {
		return nil, errInternal(res.Error, "create membership")
	}

	return &member, nil
}

func (s *Service) UpdateMemberRole(userID, dashboardID, memberID uint64, roleName string) (*db.Membership, error) {
	_, role, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}
	if !role.CanManageMembers() {
		return nil, errPermission("only the owner can manage members")
	}

	newRole, err := ParseRole(roleName)
	if err != nil {
		return nil, err
	}

	member, err := s.memberInDashboard(dashboardID, memberID)
	if err != nil {
		return nil, err
	}

	if res := s.db.Model(member).Update("role", string(newRole)); res.Error != nil {
		return nil, errInternal(res.Error, "update member role")
	}

	return member, nil
}

func (s *Service) RemoveMember(userID, dashboardID, memberID uint64) error {
	_, role, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return err
	}
	if !role.CanManageMembers() {
		return errPermission("only the owner can manage members")
	}

	member, err := s.memberInDashboard(dashboardID, memberID)
	if err != nil {
		return err
	}

	if res := s.db.Delete(member); res.Error != nil {
		return errInternal(res.Error, "delete membership")
	}

	return nil
}

func (s *Service) memberInDashboard(dashboardID, memberID uint64) (*db.Membership, error) {
	member := db.Membership{}
	res := s.db.Preload("User").Where("id = ? AND dashboard_id = ?", memberID, dashboardID).First(&member)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, errNotFound("member not found")
		}
		return nil, errInternal(res.Error, "find member")
	}
	return &member, nil
}
