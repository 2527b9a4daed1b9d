package service

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/todoboard/todoboard-back/internal/db"
)

const defaultTagColor = "#000000"

func (s *Service) ListTags(userID, dashboardID uint64) ([]db.Tag, error) {
	_, _, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}

	tags := make([]db.Tag, 0)
	res := s.db.Where("dashboard_id = ?", dashboardID).Order("id").Find(&tags)
	if res.Error != nil {
		return nil, errInternal(res.Error, "list tags")
	}

	return tags, nil
}

func (s *Service) CreateTag(userID, dashboardID uint64, name, color string) (*db.Tag, error) {
	dashboard, role, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}
	if !role.CanEdit() {
		return nil, errPermission("editor role required")
	}

	if color == "" {
		color = defaultTagColor
	}

	count := int64(0)
	res := s.db.Model(&db.Tag{}).Where("dashboard_id = ? AND name = ?", dashboard.ID, name).Count(&count)
	if res.Error != nil {
		return nil, errInternal(res.Error, "check tag name")
	}
	if count > 0 {
		return nil, errConflict("tag with name '" + name + "' already exists in this dashboard")
	}

	model := db.Tag{
		Name:        name,
		Color:       color,
		DashboardID: dashboard.ID,
	}
	if res := s.db.Create(&model); res.Error != nil {
		return nil, errInternal(res.Error, "create tag")
	}

	return &model, nil
}

func (s *Service) UpdateTag(userID, dashboardID, tagID uint64, name, color string) (*db.Tag, error) {
	_, role, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}
	if !role.CanEdit() {
		return nil, errPermission("editor role required")
	}

	tag, err := s.tagInDashboard(dashboardID, tagID)
	if err != nil {
		return nil, err
	}

	if name != tag.Name {
		count := int64(0)
		res := s.db.Model(&db.Tag{}).
			Where("dashboard_id = ? AND name = ? AND id != ?", dashboardID, name, tag.ID).
			Count(&count)
		if res.Error != nil {
			return nil, errInternal(res.Error, "check tag name")
		}
		if count > 0 {
			return nil, errConflict("tag with name '" + name + "' already exists in this dashboard")
		}
	}

	if color == "" {
		color = tag.Color
	}

	res := s.db.Model(tag).Updates(map[string]interface{}{
		"name":  name,
		"color": color,
	})
	if res.Error != nil {
		return nil, errInternal(res.Error, "update tag")
	}

	return tag, nil
}

func (s *Service) DeleteTag(userID, dashboardID, tagID uint64) error {
	_, role, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return err
	}
	if !role.CanEdit() {
		return errPermission("editor role required")
	}

	tag, err := s.tagInDashboard(dashboardID, tagID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if res := tx.Exec("DELETE FROM todo_tags WHERE tag_id = ?", tag.ID); res.Error != nil {
			return errors.Wrap(res.Error, "delete tag associations")
		}
		if res := tx.Delete(tag); res.Error != nil {
			return errors.Wrap(res.Error, "delete tag")
		}
		return nil
	})
	if err != nil {
		return errInternal(err, "delete tag")
	}

	return nil
}

func (s *Service) tagInDashboard(dashboardID, tagID uint64) (*db.Tag, error) {
	tag := db.Tag{}
	res := s.db.Where("id = ? AND dashboard_id = ?", tagID, dashboardID).First(&tag)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, errNotFound("tag not found")
		}
		return nil, errInternal(res.Error, "find tag")
	}
	return &tag, nil
}
