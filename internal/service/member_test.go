package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddMember(t *testing.T) {
	s := newTestService(t)

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")
	dashboard := createTestDashboard(t, s, alice, "work", false)

	t.Run("success", func(t *testing.T) {
		member, err := s.AddMember(alice.ID, dashboard.ID, "bob@example.com", "editor")
		assert.Nil(t, err)
		assert.Equal(t, bob.ID, member.UserID)
		assert.Equal(t, "editor", member.Role)

		role, err := s.EffectiveRole(bob.ID, dashboard)
		assert.Nil(t, err)
		assert.Equal(t, RoleEditor, role)
	})

	t.Run("already a member", func(t *testing.T) {
		_, err := s.AddMember(alice.ID, dashboard.ID, "bob@example.com", "viewer")
		assert.Equal(t, KindConflict, KindOf(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := s.AddMember(alice.ID, dashboard.ID, "nobody@example.com", "viewer")
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.Contains(t, err.Error(), "user with email")
	})

	t.Run("owner email", func(t *testing.T) {
		_, err := s.AddMember(alice.ID, dashboard.ID, "alice@example.com", "viewer")
		assert.Equal(t, KindConflict, KindOf(err))
	})

	t.Run("cannot invite as owner", func(t *testing.T) {
		carol := createTestUser(t, s, "carol")
		_, err := s.AddMember(alice.ID, dashboard.ID, carol.Email, "owner")
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("non-owner cannot invite", func(t *testing.T) {
		carol := createTestUser(t, s, "carol2")
		_, err := s.AddMember(bob.ID, dashboard.ID, carol.Email, "viewer")
		assert.Equal(t, KindPermission, KindOf(err))
	})
}

func TestUpdateMemberRole(t *testing.T) {
	s := newTestService(t)

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")
	dashboard := createTestDashboard(t, s, alice, "work", false)
	other := createTestDashboard(t, s, alice, "other", false)

	member := addTestMember(t, s, dashboard, bob, RoleViewer)

	updated, err := s.UpdateMemberRole(alice.ID, dashboard.ID, member.ID, "editor")
	assert.Nil(t, err)
	assert.Equal(t, "editor", updated.Role)

	role, err := s.EffectiveRole(bob.ID, dashboard)
	assert.Nil(t, err)
	assert.Equal(t, RoleEditor, role)

	// member ids are scoped to the addressed dashboard
	_, err = s.UpdateMemberRole(alice.ID, other.ID, member.ID, "viewer")
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = s.UpdateMemberRole(bob.ID, dashboard.ID, member.ID, "viewer")
	assert.Equal(t, KindPermission, KindOf(err))
}

func TestRemoveMember(t *testing.T) {
	s := newTestService(t)

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")
	dashboard := createTestDashboard(t, s, alice, "work", false)

	member := addTestMember(t, s, dashboard, bob, RoleEditor)

	err := s.RemoveMember(bob.ID, dashboard.ID, member.ID)
	assert.Equal(t, KindPermission, KindOf(err))

	err = s.RemoveMember(alice.ID, dashboard.ID, member.ID)
	assert.Nil(t, err)

	// a removed member no longer sees the private dashboard at all
	role, err := s.EffectiveRole(bob.ID, dashboard)
	assert.Nil(t, err)
	assert.Equal(t, RoleNone, role)

	_, err = s.ListTodos(bob.ID, dashboard.ID, TodoQuery{SortBy: "created_at", Order: "asc"})
	assert.Equal(t, KindNotFound, KindOf(err))

	err = s.RemoveMember(alice.ID, dashboard.ID, member.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListMembers(t *testing.T) {
	s := newTestService(t)

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")
	carol := createTestUser(t, s, "carol")
	dashboard := createTestDashboard(t, s, alice, "work", false)

	addTestMember(t, s, dashboard, bob, RoleEditor)
	addTestMember(t, s, dashboard, carol, RoleViewer)

	members, err := s.ListMembers(bob.ID, dashboard.ID)
	assert.Nil(t, err)
	assert.Len(t, members, 2)
	assert.Equal(t, "bob", members[0].User.Username)
	assert.Equal(t, "carol", members[1].User.Username)

	outsider := createTestUser(t, s, "outsider")
	_, err = s.ListMembers(outsider.ID, dashboard.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}
