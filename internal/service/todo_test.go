package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/todoboard/todoboard-back/internal/db"
)

func TestParseTodoQuery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		q, err := ParseTodoQuery("", "", "", "", "")
		assert.Nil(t, err)
		assert.Equal(t, TodoQuery{SortBy: "created_at", Order: "asc"}, q)
	})

	t.Run("full", func(t *testing.T) {
		q, err := ParseTodoQuery("pending", "4", "1,2, 3", "due_date", "desc")
		assert.Nil(t, err)
		assert.Equal(t, TodoQuery{
			Status:   "pending",
			Priority: 4,
			TagIDs:   []uint64{1, 2, 3},
			SortBy:   "due_date",
			Order:    "desc",
		}, q)
	})

	invalid := []struct {
		name                                  string
		status, priority, tags, sortBy, order string
	}{
		{"bad status", "done", "", "", "", ""},
		{"bad priority", "", "6", "", "", ""},
		{"non-numeric priority", "", "high", "", "", ""},
		{"bad tags", "", "", "1,x", "", ""},
		{"bad sort", "", "", "", "title", ""},
		{"bad order", "", "", "", "", "down"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTodoQuery(tc.status, tc.priority, tc.tags, tc.sortBy, tc.order)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestCreateTodo(t *testing.T) {
	s := newTestService(t)

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")
	dashboard := createTestDashboard(t, s, alice, "work", false)
	addTestMember(t, s, dashboard, bob, RoleViewer)

	tag, err := s.CreateTag(alice.ID, dashboard.ID, "urgent", "#ff0000")
	assert.Nil(t, err)

	todo, err := s.CreateTodo(alice.ID, dashboard.ID, "write report", "quarterly", 0, nil, []uint64{tag.ID})
	assert.Nil(t, err)
	assert.Equal(t, 3, todo.Priority)
	assert.Equal(t, db.StatusPending, todo.Status)
	assert.Len(t, todo.Tags, 1)

	_, err = s.CreateTodo(bob.ID, dashboard.ID, "nope", "", 3, nil, nil)
	assert.Equal(t, KindPermission, KindOf(err))

	_, err = s.CreateTodo(alice.ID, dashboard.ID, "bad priority", "", 9, nil, nil)
	assert.Equal(t, KindValidation, KindOf(err))

	yesterday := time.Now().Add(-48 * time.Hour)
	_, err = s.CreateTodo(alice.ID, dashboard.ID, "late", "", 3, &yesterday, nil)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCreateTodoCrossDashboardTag(t *testing.T) {
	s := newTestService(t)

	alice := createTestUser(t, s, "alice")
	dashboard := createTestDashboard(t, s, alice, "work", false)
	other := createTestDashboard(t, s, alice, "home", false)

	foreign, err := s.CreateTag(alice.ID, other.ID, "chores", "#00ff00")
	assert.Nil(t, err)

	_, err = s.CreateTodo(alice.ID, dashboard.ID, "task", "", 3, nil, []uint64{foreign.ID})
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "invalid tag")
}

func TestUpdateTodo(t *testing.T) {
	s := newTestService(t)

	alice := createTestUser(t, s, "alice")
	dashboard := createTestDashboard(t, s, alice, "work", false)
	other := createTestDashboard(t, s, alice, "home", false)

	tagA, err := s.CreateTag(alice.ID, dashboard.ID, "a", "#ff0000")
	assert.Nil(t, err)
	tagB, err := s.CreateTag(alice.ID, dashboard.ID, "b", "#00ff00")
	assert.Nil(t, err)

	todo, err := s.CreateTodo(alice.ID, dashboard.ID, "task", "", 2, nil, []uint64{tagA.ID})
	assert.Nil(t, err)

	updated, err := s.UpdateTodo(alice.ID, dashboard.ID, todo.ID, "renamed", "details", 5, nil, []uint64{tagB.ID})
	assert.Nil(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, 5, updated.Priority)
	assert.Len(t, updated.Tags, 1)
	assert.Equal(t, tagB.ID, updated.Tags[0].ID)

	// todo ids are scoped to the addressed dashboard
	_, err = s.UpdateTodo(alice.ID, other.ID, todo.ID, "x", "", 1, nil, nil)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCompleteUncompleteRoundTrip(t *testing.T) {
	s := newTestService(t)

	alice := createTestUser(t, s, "alice")
	dashboard := createTestDashboard(t, s, alice, "work", false)

	todo, err := s.CreateTodo(alice.ID, dashboard.ID, "task", "desc", 4, nil, nil)
	assert.Nil(t, err)

	completed, err := s.CompleteTodo(alice.ID, dashboard.ID, todo.ID)
	assert.Nil(t, err)
	assert.Equal(t, db.StatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	assert.Equal(t, alice.ID, *completed.CompletedByID)

	_, err = s.CompleteTodo(alice.ID, dashboard.ID, todo.ID)
	assert.Equal(t, KindConflict, KindOf(err))

	pending, err := s.UncompleteTodo(alice.ID, dashboard.ID, todo.ID)
	assert.Nil(t, err)
	assert.Equal(t, db.StatusPending, pending.Status)
	assert.Nil(t, pending.CompletedAt)
	assert.Nil(t, pending.CompletedByID)

	// round trip leaves everything else untouched
	assert.Equal(t, "task", pending.Title)
	assert.Equal(t, "desc", pending.Description)
	assert.Equal(t, 4, pending.Priority)

	_, err = s.UncompleteTodo(alice.ID, dashboard.ID, todo.ID)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestListTodosFilterAndSort(t *testing.T) {
	s := newTestService(t)

	alice := createTestUser(t, s, "alice")
	dashboard := createTestDashboard(t, s, alice, "work", false)

	urgent, err := s.CreateTag(alice.ID, dashboard.ID, "urgent", "#ff0000")
	assert.Nil(t, err)

	low, err := s.CreateTodo(alice.ID, dashboard.ID, "low", "", 1, nil, nil)
	assert.Nil(t, err)
	mid, err := s.CreateTodo(alice.ID, dashboard.ID, "mid", "", 3, nil, []uint64{urgent.ID})
	assert.Nil(t, err)
	high, err := s.CreateTodo(alice.ID, dashboard.ID, "high", "", 5, nil, []uint64{urgent.ID})
	assert.Nil(t, err)

	_, err = s.CompleteTodo(alice.ID, dashboard.ID, mid.ID)
	assert.Nil(t, err)

	ids := func(todos []db.Todo) []uint64 {
		out := make([]uint64, len(todos))
		for i := range todos {
			out[i] = todos[i].ID
		}
		return out
	}

	got, err := s.ListTodos(alice.ID, dashboard.ID, TodoQuery{Status: "pending", SortBy: "created_at", Order: "asc"})
	assert.Nil(t, err)
	assert.Equal(t, []uint64{low.ID, high.ID}, ids(got))

	got, err = s.ListTodos(alice.ID, dashboard.ID, TodoQuery{Priority: 5, SortBy: "created_at", Order: "asc"})
	assert.Nil(t, err)
	assert.Equal(t, []uint64{high.ID}, ids(got))

	got, err = s.ListTodos(alice.ID, dashboard.ID, TodoQuery{TagIDs: []uint64{urgent.ID}, SortBy: "created_at", Order: "asc"})
	assert.Nil(t, err)
	assert.Equal(t, []uint64{mid.ID, high.ID}, ids(got))
	assert.Len(t, got[0].Tags, 1)

	got, err = s.ListTodos(alice.ID, dashboard.ID, TodoQuery{SortBy: "priority", Order: "desc"})
	assert.Nil(t, err)
	assert.Equal(t, []uint64{high.ID, mid.ID, low.ID}, ids(got))
}

func TestSearchTodos(t *testing.T) {
	s := newTestService(t)

	alice := createTestUser(t, s, "alice")
	dashboard := createTestDashboard(t, s, alice, "work", false)

	report, err := s.CreateTodo(alice.ID, dashboard.ID, "Quarterly Report", "numbers for finance", 3, nil, nil)
	assert.Nil(t, err)
	groceries, err := s.CreateTodo(alice.ID, dashboard.ID, "groceries", "buy milk and REPORT back", 3, nil, nil)
	assert.Nil(t, err)
	_, err = s.CreateTodo(alice.ID, dashboard.ID, "unrelated", "nothing here", 3, nil, nil)
	assert.Nil(t, err)

	query := TodoQuery{SortBy: "created_at", Order: "asc"}

	got, err := s.SearchTodos(alice.ID, dashboard.ID, "report", query)
	assert.Nil(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, report.ID, got[0].ID)
	assert.Equal(t, groceries.ID, got[1].ID)

	got, err = s.SearchTodos(alice.ID, dashboard.ID, "milk", query)
	assert.Nil(t, err)
	assert.Len(t, got, 1)

	_, err = s.SearchTodos(alice.ID, dashboard.ID, "  ", query)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestDeleteTodo(t *testing.T) {
	s := newTestService(t)

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")
	dashboard := createTestDashboard(t, s, alice, "work", false)
	addTestMember(t, s, dashboard, bob, RoleViewer)

	todo, err := s.CreateTodo(alice.ID, dashboard.ID, "task", "", 3, nil, nil)
	assert.Nil(t, err)

	err = s.DeleteTodo(bob.ID, dashboard.ID, todo.ID)
	assert.Equal(t, KindPermission, KindOf(err))

	err = s.DeleteTodo(alice.ID, dashboard.ID, todo.ID)
	assert.Nil(t, err)

	_, err = s.GetTodo(alice.ID, dashboard.ID, todo.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}
