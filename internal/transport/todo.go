package transport

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/todoboard/todoboard-back/internal/db"
	"github.com/todoboard/todoboard-back/internal/service"
)

const dueDateLayout = "2006-01-02"

type (
	TodoReq struct {
		Title       string   `json:"title" validate:"required"`
		Description string   `json:"description"`
		Priority    int      `json:"priority" validate:"omitempty,min=1,max=5"`
		DueDate     string   `json:"due_date"`
		Tags        []uint64 `json:"tags"`
	}

	TodoResp struct {
		ID          uint64   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Priority    int      `json:"priority"`
		DueDate     *string  `json:"due_date"`
		Status      string   `json:"status"`
		Tags        []uint64 `json:"tags"`
		CreatedAt   string   `json:"created_at"`
		CompletedBy *uint64  `json:"completed_by"`
		CompletedAt *string  `json:"completed_at"`
	}
)

func newTodoResp(t *db.Todo) TodoResp {
	resp := TodoResp{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		Tags:        make([]uint64, len(t.Tags)),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		CompletedBy: t.CompletedByID,
	}
	for i := range t.Tags {
		resp.Tags[i] = t.Tags[i].ID
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(dueDateLayout)
		resp.DueDate = &due
	}
	if t.CompletedAt != nil {
		completed := t.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &completed
	}
	return resp
}

func newTodoListResp(todos []db.Todo) []TodoResp {
	resp := make([]TodoResp, len(todos))
	for i := range todos {
		resp[i] = newTodoResp(&todos[i])
	}
	return resp
}

func parseTodoQuery(c echo.Context) (service.TodoQuery, error) {
	return service.ParseTodoQuery(
		c.QueryParam("status"),
		c.QueryParam("priority"),
		c.QueryParam("tags"),
		c.QueryParam("sort"),
		c.QueryParam("order"),
	)
}

func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	due, err := time.Parse(dueDateLayout, raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid due_date, expected YYYY-MM-DD")
	}
	return &due, nil
}

func (s *HTTPServer) TodoList(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	query, err := parseTodoQuery(c)
	if err != nil {
		return err
	}

	todos, err := s.svc.ListTodos(currentUserID(c), id, query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"todos":   newTodoListResp(todos),
	})
}

func (s *HTTPServer) TodoSearch(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	query, err := parseTodoQuery(c)
	if err != nil {
		return err
	}

	todos, err := s.svc.SearchTodos(currentUserID(c), id, c.QueryParam("q"), query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"todos":   newTodoListResp(todos),
	})
}

func (s *HTTPServer) TodoGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	todoID, err := GetAndParseParam(c, "todo_id")
	if err != nil {
		return err
	}

	todo, err := s.svc.GetTodo(currentUserID(c), id, todoID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"todo":    newTodoResp(todo),
	})
}

func (s *HTTPServer) TodoCreate(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	req := TodoReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return err
	}

	todo, err := s.svc.CreateTodo(user.ID, id, req.Title, req.Description, req.Priority, dueDate, req.Tags)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"todo":    newTodoResp(todo),
	})
}

func (s *HTTPServer) TodoUpdate(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	todoID, err := GetAndParseParam(c, "todo_id")
	if err != nil {
		return err
	}

	req := TodoReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return err
	}

	todo, err := s.svc.UpdateTodo(user.ID, id, todoID, req.Title, req.Description, req.Priority, dueDate, req.Tags)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"todo":    newTodoResp(todo),
	})
}

func (s *HTTPServer) TodoDelete(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	todoID, err := GetAndParseParam(c, "todo_id")
	if err != nil {
		return err
	}

	if err := s.svc.DeleteTodo(user.ID, id, todoID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (s *HTTPServer) TodoComplete(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	todoID, err := GetAndParseParam(c, "todo_id")
	if err != nil {
		return err
	}

	todo, err := s.svc.CompleteTodo(user.ID, id, todoID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"todo":    newTodoResp(todo),
	})
}

func (s *HTTPServer) TodoUncomplete(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	todoID, err := GetAndParseParam(c, "todo_id")
	if err != nil {
		return err
	}

	todo, err := s.svc.UncompleteTodo(user.ID, id, todoID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"todo":    newTodoResp(todo),
	})
}
