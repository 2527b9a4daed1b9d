package service

import (
	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/todoboard/todoboard-back/internal/db"
)

// ListDashboards returns every dashboard the caller may view: owned, joined
// through a membership, or public. userID 0 (anonymous) sees public ones only.
func (s *Service) ListDashboards(userID uint64) ([]db.Dashboard, error) {
	sql, args, err := squirrel.
		Select("DISTINCT d.*").From("dashboards d").
		LeftJoin("memberships m ON m.dashboard_id = d.id AND m.user_id = ?", userID).
		Where(squirrel.Or{
			squirrel.Eq{"d.owner_id": userID},
			squirrel.Expr("m.id IS NOT NULL"),
			squirrel.Eq{"d.is_public": true},
		}).
		OrderBy("d.id").
		ToSql()
	if err != nil {
		return nil, errInternal(err, "build sql")
	}

	dashboards := make([]db.Dashboard, 0)
	res := s.db.Raw(sql, args...).Scan(&dashboards)
	if res.Error != nil {
		return nil, errInternal(res.Error, "scan dashboards")
	}

	return dashboards, nil
}

func (s *Service) CreateDashboard(userID uint64, title, description string, isPublic bool) (*db.Dashboard, error) {
	model := db.Dashboard{
		Title:       title,
		Description: description,
		IsPublic:    isPublic,
		PublicLink:  uuid.New().String(),
		OwnerID:     userID,
	}

	res := s.db.Create(&model)
	if res.Error != nil {
		return nil, errInternal(res.Error, "create dashboard")
	}

	return &model, nil
}

func (s *Service) GetDashboard(userID, dashboardID uint64) (*db.Dashboard, error) {
	dashboard, _, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}
	return dashboard, nil
}

func (s *Service) UpdateDashboard(userID, dashboardID uint64, title, description string, isPublic bool) (*db.Dashboard, error) {
	dashboard, role, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}
	if role != RoleOwner {
		return nil, errPermission("only the owner can update a dashboard")
	}

	res := s.db.Model(dashboard).Updates(map[string]interface{}{
		"title":       title,
		"description": description,
		"is_public":   isPublic,
	})
	if res.Error != nil {
		return nil, errInternal(res.Error, "update dashboard")
	}

	return dashboard, nil
}

// DeleteDashboard removes the dashboard together with its memberships, tags,
// todos and tag associations.
func (s *Service) DeleteDashboard(userID, dashboardID uint64) error {
	dashboard, role, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return err
	}
	if role != RoleOwner {
		return errPermission("only the owner can delete a dashboard")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if res := tx.Exec(
			"DELETE FROM todo_tags WHERE todo_id IN (SELECT id FROM todos WHERE dashboard_id = ?)",
			dashboard.ID,
		); res.Error != nil {
			return errors.Wrap(res.Error, "delete tag associations")
		}
		if res := tx.Where("dashboard_id = ?", dashboard.ID).Delete(&db.Todo{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete todos")
		}
		if res := tx.Where("dashboard_id = ?", dashboard.ID).Delete(&db.Tag{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete tags")
		}
		if res := tx.Where("dashboard_id = ?", dashboard.ID).Delete(&db.Membership{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete memberships")
		}
		if res := tx.Delete(&db.Dashboard{}, dashboard.ID); res.Error != nil {
			return errors.Wrap(res.Error, "delete dashboard")
		}
		return nil
	})
	if err != nil {
		return errInternal(err, "delete dashboard")
	}

	return nil
}
