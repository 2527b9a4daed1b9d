package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/todoboard/todoboard-back/internal/db"
)

const (
	defaultPriority = 3
	minPriority     = 1
	maxPriority     = 5
)

var todoSortFields = map[string]string{
	"created_at": "t.created_at",
	"priority":   "t.priority",
	"due_date":   "t.due_date",
}

// TodoQuery holds validated filter and sort options for todo listings.
type TodoQuery struct {
	Status   string
	Priority int
	TagIDs   []uint64
	SortBy   string
	Order    string
}

// ParseTodoQuery validates raw query parameter values. Empty values fall back
// to defaults; invalid values are rejected rather than ignored.
func ParseTodoQuery(status, priority, tags, sortBy, order string) (TodoQuery, error) {
	q := TodoQuery{
		SortBy: "created_at",
		Order:  "asc",
	}

	switch status {
	case "", db.StatusPending, db.StatusCompleted:
		q.Status = status
	default:
		return q, errValidation("invalid status value, must be one of: pending, completed")
	}

	if priority != "" {
		p, err := strconv.Atoi(priority)
		if err != nil || p < minPriority || p > maxPriority {
			return q, errValidation("invalid priority value, must be a number between 1 and 5")
		}
		q.Priority = p
	}

	if tags != "" {
		for _, raw := range strings.Split(tags, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return q, errValidation("invalid tags value, must be a comma-separated list of ids")
			}
			q.TagIDs = append(q.TagIDs, id)
		}
	}

	if sortBy != "" {
		if _, ok := todoSortFields[sortBy]; !ok {
			return q, errValidation("invalid sort value, must be one of: created_at, priority, due_date")
		}
		q.SortBy = sortBy
	}

	switch order {
	case "":
	case "asc", "desc":
		q.Order = order
	default:
		return q, errValidation("invalid order value, must be one of: asc, desc")
	}

	return q, nil
}

func (s *Service) ListTodos(userID, dashboardID uint64, q TodoQuery) ([]db.Todo, error) {
	_, _, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}
	return s.queryTodos(dashboardID, q, "")
}

// SearchTodos matches the search text against title and description,
// case-insensitively, on top of the regular filters.
func (s *Service) SearchTodos(userID, dashboardID uint64, text string, q TodoQuery) ([]db.Todo, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errValidation("search query is required")
	}
	_, _, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}
	return s.queryTodos(dashboardID, q, text)
}

func (s *Service) queryTodos(dashboardID uint64, q TodoQuery, search string) ([]db.Todo, error) {
	w := squirrel.Eq{
		"t.dashboard_id": dashboardID,
	}
	if q.Status != "" {
		w["t.status"] = q.Status
	}
	if q.Priority != 0 {
		w["t.priority"] = q.Priority
	}

	b := squirrel.Select("DISTINCT t.*").From("todos t").Where(w)
	if len(q.TagIDs) != 0 {
		b = b.Join("todo_tags tt ON t.id = tt.todo_id").Where(squirrel.Eq{"tt.tag_id": q.TagIDs})
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		b = b.Where(squirrel.Or{
			squirrel.Expr("LOWER(t.title) LIKE ?", pattern),
			squirrel.Expr("LOWER(t.description) LIKE ?", pattern),
		})
	}
	b = b.OrderBy(todoSortFields[q.SortBy] + " " + strings.ToUpper(q.Order))

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, errInternal(err, "build sql")
	}

	todos := make([]db.Todo, 0)
	res := s.db.Raw(sql, args...).Scan(&todos)
	if res.Error != nil {
		return nil, errInternal(res.Error, "scan todos")
	}

	if err := s.loadTodoTags(todos); err != nil {
		return nil, err
	}

	return todos, nil
}

// loadTodoTags fills the Tags association for raw-scanned rows.
func (s *Service) loadTodoTags(todos []db.Todo) error {
	if len(todos) == 0 {
		return nil
	}

	ids := make([]uint64, len(todos))
	for i := range todos {
		ids[i] = todos[i].ID
	}

	sql, args, err := squirrel.
		Select("tt.todo_id", "g.id", "g.name", "g.color", "g.dashboard_id").
		From("todo_tags tt").
		Join("tags g ON g.id = tt.tag_id").
		Where(squirrel.Eq{"tt.todo_id": ids}).
		OrderBy("g.id").
		ToSql()
	if err != nil {
		return errInternal(err, "build sql")
	}

	rows := make([]struct {
		TodoID      uint64
		ID          uint64
		Name        string
		Color       string
		DashboardID uint64
	}, 0)
	res := s.db.Raw(sql, args...).Scan(&rows)
	if res.Error != nil {
		return errInternal(res.Error, "scan tag associations")
	}

	byTodo := make(map[uint64][]db.Tag, len(todos))
	for _, r := range rows {
		tag := db.Tag{Name: r.Name, Color: r.Color, DashboardID: r.DashboardID}
		tag.ID = r.ID
		byTodo[r.TodoID] = append(byTodo[r.TodoID], tag)
	}
	for i := range todos {
		todos[i].Tags = byTodo[todos[i].ID]
	}

	return nil
}

func (s *Service) GetTodo(userID, dashboardID, todoID uint64) (*db.Todo, error) {
	_, _, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}
	return s.todoInDashboard(dashboardID, todoID)
}

func (s *Service) CreateTodo(userID, dashboardID uint64, title, description string, priority int, dueDate *time.Time, tagIDs []uint64) (*db.Todo, error) {
	dashboard, role, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}
	if !role.CanEdit() {
		return nil, errPermission("editor role required")
	}

	if priority == 0 {
		priority = defaultPriority
	}
	if priority < minPriority || priority > maxPriority {
		return nil, errValidation("priority must be between 1 and 5")
	}
	if err := validateDueDate(dueDate); err != nil {
		return nil, err
	}

	tags, err := s.dashboardTags(dashboard.ID, tagIDs)
	if err != nil {
		return nil, err
	}

	model := db.Todo{
		Title:       title,
		Description: description,
		Priority:    priority,
		DueDate:     dueDate,
		Status:      db.StatusPending,
		DashboardID: dashboard.ID,
		Tags:        tags,
	}
	if res := s.db.Create(&model); res.Error != nil {
		return nil, errInternal(res.Error, "create todo")
	}

	return &model, nil
}

func (s *Service) UpdateTodo(userID, dashboardID, todoID uint64, title, description string, priority int, dueDate *time.Time, tagIDs []uint64) (*db.Todo, error) {
	_, role, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}
	if !role.CanEdit() {
		return nil, errPermission("editor role required")
	}

	todo, err := s.todoInDashboard(dashboardID, todoID)
	if err != nil {
		return nil, err
	}

	if priority == 0 {
		priority = todo.Priority
	}
	if priority < minPriority || priority > maxPriority {
		return nil, errValidation("priority must be between 1 and 5")
	}
	if err := validateDueDate(dueDate); err != nil {
		return nil, err
	}

	tags, err := s.dashboardTags(dashboardID, tagIDs)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(todo).Updates(map[string]interface{}{
			"title":       title,
			"description": description,
			"priority":    priority,
			"due_date":    dueDate,
		})
		if res.Error != nil {
			return errors.Wrap(res.Error, "update todo")
		}
		if err := tx.Model(todo).Association("Tags").Replace(&tags); err != nil {
			return errors.Wrap(err, "replace tags")
		}
		return nil
	})
	if err != nil {
		return nil, errInternal(err, "update todo")
	}

	todo.Tags = tags
	return todo, nil
}

func (s *Service) DeleteTodo(userID, dashboardID, todoID uint64) error {
	_, role, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return err
	}
	if !role.CanEdit() {
		return errPermission("editor role required")
	}

	todo, err := s.todoInDashboard(dashboardID, todoID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if res := tx.Exec("DELETE FROM todo_tags WHERE todo_id = ?", todo.ID); res.Error != nil {
			return errors.Wrap(res.Error, "delete tag associations")
		}
		if res := tx.Delete(todo); res.Error != nil {
			return errors.Wrap(res.Error, "delete todo")
		}
		return nil
	})
	if err != nil {
		return errInternal(err, "delete todo")
	}

	return nil
}

// CompleteTodo records who completed the todo and when. Completing an already
// completed todo is rejected.
func (s *Service) CompleteTodo(userID, dashboardID, todoID uint64) (*db.Todo, error) {
	_, role, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}
	if !role.CanEdit() {
		return nil, errPermission("editor role required")
	}

	todo, err := s.todoInDashboard(dashboardID, todoID)
	if err != nil {
		return nil, err
	}
	if todo.Status == db.StatusCompleted {
		return nil, errConflict("todo is already completed")
	}

	now := time.Now()
	res := s.db.Model(todo).Updates(map[string]interface{}{
		"status":          db.StatusCompleted,
		"completed_by_id": userID,
		"completed_at":    now,
	})
	if res.Error != nil {
		return nil, errInternal(res.Error, "complete todo")
	}

	todo.Status = db.StatusCompleted
	todo.CompletedByID = &userID
	todo.CompletedAt = &now
	return todo, nil
}

func (s *Service) UncompleteTodo(userID, dashboardID, todoID uint64) (*db.Todo, error) {
	_, role, err := s.dashboardForRole(userID, dashboardID)
	if err != nil {
		return nil, err
	}
	if !role.CanEdit() {
		return nil, errPermission("editor role required")
	}

	todo, err := s.todoInDashboard(dashboardID, todoID)
	if err != nil {
		return nil, err
	}
	if todo.Status == db.StatusPending {
		return nil, errConflict("todo is already pending")
	}

	res := s.db.Model(todo).Updates(map[string]interface{}{
		"status":          db.StatusPending,
		"completed_by_id": nil,
		"completed_at":    nil,
	})
	if res.Error != nil {
		return nil, errInternal(res.Error, "uncomplete todo")
	}

	todo.Status = db.StatusPending
	todo.CompletedByID = nil
	todo.CompletedAt = nil
	return todo, nil
}

func (s *Service) todoInDashboard(dashboardID, todoID uint64) (*db.Todo, error) {
	todo := db.Todo{}
	res := s.db.Preload("Tags").Where("id = ? AND dashboard_id = ?", todoID, dashboardID).First(&todo)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, errNotFound("todo not found")
		}
		return nil, errInternal(res.Error, "find todo")
	}
	return &todo, nil
}

// dashboardTags resolves tag ids against the dashboard. A tag from another
// dashboard is invalid here.
func (s *Service) dashboardTags(dashboardID uint64, tagIDs []uint64) ([]db.Tag, error) {
	if len(tagIDs) == 0 {
		return []db.Tag{}, nil
	}

	unique := make(map[uint64]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		unique[id] = struct{}{}
	}

	tags := make([]db.Tag, 0, len(unique))
	res := s.db.Where("dashboard_id = ? AND id IN ?", dashboardID, tagIDs).Find(&tags)
	if res.Error != nil {
		return nil, errInternal(res.Error, "find tags")
	}
	if len(tags) != len(unique) {
		return nil, errValidation("invalid tag")
	}

	return tags, nil
}

func validateDueDate(dueDate *time.Time) error {
	if dueDate == nil {
		return nil
	}
	today := time.Now().Truncate(24 * time.Hour)
	if dueDate.Before(today) {
		return errValidation("due date cannot be in the past")
	}
	return nil
}
