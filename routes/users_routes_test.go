package routes

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

func TestPathfinderCannotReachStaffRoutes(t *testing.T) {
	s := newTestServer(t)
	_, token := s.createUser("jane", models.RolePathfinder)
	id := "00000000-0000-0000-0000-000000000001"

	for _, r := range []request{
		{method: http.MethodGet, path: "/users"},
		{method: http.MethodGet, path: "/users/search?username=a"},
		{method: http.MethodDelete, path: "/users/delete/" + id},
		{method: http.MethodPost, path: "/classes/add", body: map[string]string{"name": "x"}},
		{method: http.MethodPut, path: "/classes/update/" + id},
		{method: http.MethodDelete, path: "/classes/delete/" + id},
		{method: http.MethodPost, path: "/categories/add/" + id},
		{method: http.MethodPost, path: "/questions/add/" + id + "/" + id},
		{method: http.MethodPost, path: "/resources/add", body: map[string]string{"title": "x"}},
		{method: http.MethodGet, path: "/admin"},
		{method: http.MethodGet, path: "/admin/requests"},
	} {
		r.token = token
		w := s.do(r)
		assert.Equal(t, http.StatusUnauthorized, w.Code, r.method+" "+r.path)
	}
}

func TestAdminCannotReachSuperuserRoutes(t *testing.T) {
	s := newTestServer(t)
	_, token := s.createUser("boss", models.RoleAdmin)

	for _, path := range []string{"/admin", "/admin/requests", "/admin/approved", "/admin/rejected"} {
		assert.Equal(t, http.StatusUnauthorized, s.do(request{method: http.MethodGet, path: path, token: token}).Code, path)
	}
}

func TestDeleteUserPolicy(t *testing.T) {
	cases := []struct {
		actor  models.Role
		target models.Role
		want   int
	}{
		{models.RoleAdmin, models.RolePathfinder, http.StatusNoContent},
		{models.RoleAdmin, models.RoleAdmin, http.StatusForbidden},
		{models.RoleAdmin, models.RoleSuperuser, http.StatusForbidden},
		{models.RoleSuperuser, models.RolePathfinder, http.StatusNoContent},
		{models.RoleSuperuser, models.RoleAdmin, http.StatusNoContent},
		{models.RoleSuperuser, models.RoleSuperuser, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(string(tc.actor)+"_deletes_"+string(tc.target), func(t *testing.T) {
			s := newTestServer(t)
			_, token := s.createUser("actor", tc.actor)
			target, _ := s.createUser("target", tc.target)

			w := s.do(request{method: http.MethodDelete, path: "/users/delete/" + target.ID.String(), token: token})
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestDeleteUserTwiceAndCleansLikes(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.createUser("admin", models.RoleAdmin)
	jane, janeToken := s.createUser("jane", models.RolePathfinder)

	w := s.do(request{method: http.MethodPost, path: "/resources/add", token: admin, body: map[string]string{"title": "Notes"}})
	require.Equal(t, http.StatusCreated, w.Code)
	var resource models.Resource
	decode(t, w, &resource)
	require.Equal(t, http.StatusOK, s.do(request{method: http.MethodPost, path: "/resources/like/" + resource.ID.String(), token: janeToken}).Code)

	path := "/users/delete/" + jane.ID.String()
	assert.Equal(t, http.StatusNoContent, s.do(request{method: http.MethodDelete, path: path, token: admin}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(request{method: http.MethodDelete, path: path, token: admin}).Code)

	var stored models.Resource
	require.NoError(t, s.db.First(&stored, "id = ?", resource.ID).Error)
	assert.Equal(t, 0, stored.Likes)

	// token của user đã xoá không còn dùng được
	assert.Equal(t, http.StatusUnauthorized, s.do(request{method: http.MethodGet, path: "/classes", token: janeToken}).Code)
}

func TestSearchUsers(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.createUser("admin", models.RoleAdmin)
	s.createUser("JohnSmith", models.RolePathfinder)
	s.createUser("johnny", models.RolePathfinder)
	s.createUser("under_score", models.RolePathfinder)

	search := func(query string) []string {
		w := s.do(request{method: http.MethodGet, path: "/users/search" + query, token: admin})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var users []models.User
		decode(t, w, &users)
		names := make([]string, 0, len(users))
		for _, u := range users {
			names = append(names, u.Username)
		}
		return names
	}

	assert.ElementsMatch(t, []string{"JohnSmith", "johnny"}, search("?username=JOHN"))
	assert.ElementsMatch(t, []string{"johnny"}, search("?username=john&lastname=NY"))
	assert.ElementsMatch(t, []string{"under_score"}, search("?username=_"))
	assert.Empty(t, search("?username=%25"))
	assert.Len(t, search(""), 4)
}

func TestGetAndUpdateUser(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.createUser("admin", models.RoleAdmin)
	jane, janeToken := s.createUser("jane", models.RolePathfinder)
	_, bobToken := s.createUser("bob", models.RolePathfinder)

	w := s.do(request{method: http.MethodGet, path: "/users/" + jane.ID.String(), token: admin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Equal(t, http.StatusNotFound, s.do(request{method: http.MethodGet, path: "/users/00000000-0000-0000-0000-000000000001", token: admin}).Code)

	path := "/users/update/" + jane.ID.String()
	assert.Equal(t, http.StatusForbidden, s.do(request{method: http.MethodPut, path: path, token: bobToken, body: map[string]string{"firstname": "Hacked"}}).Code)
	assert.Equal(t, http.StatusConflict, s.do(request{method: http.MethodPut, path: path, token: janeToken, body: map[string]string{"username": "bob"}}).Code)

	w = s.do(request{method: http.MethodPut, path: path, token: janeToken, body: map[string]string{"firstname": "Janet"}})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.User
	decode(t, w, &updated)
	assert.Equal(t, "Janet", updated.Firstname)
	assert.Equal(t, "jane", updated.Username)
	assert.Equal(t, jane.Lastname, updated.Lastname)

	w = s.do(request{method: http.MethodPut, path: path, token: admin, body: map[string]string{"username": "jane2"}})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &updated)
	assert.Equal(t, "jane2", updated.Username)
}

func TestAdminRequestWorkflow(t *testing.T) {
	s := newTestServer(t)
	_, root := s.createUser("root", models.RoleSuperuser)

	var sent []utils.Mail
	orig := utils.SendMail
	utils.SendMail = func(m utils.Mail) error {
		sent = append(sent, m)
		return nil
	}
	t.Cleanup(func() { utils.SendMail = orig })

	for _, name := range []string{"alice", "carol"} {
		w := s.do(request{method: http.MethodPost, path: "/users/register", body: registerBody(name, name+"@mail.com", "admin")})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	list := func(path string) []models.User {
		w := s.do(request{method: http.MethodGet, path: path, token: root})
		require.Equal(t, http.StatusOK, w.Code, path)
		var users []models.User
		decode(t, w, &users)
		return users
	}
	requests := list("/admin/requests")
	require.Len(t, requests, 2)

	var alice, carol models.User
	for _, u := range requests {
		switch u.Username {
		case "alice":
			alice = u
		case "carol":
			carol = u
		}
	}

	w := s.do(request{method: http.MethodPut, path: "/admin/approve/" + alice.ID.String(), token: root})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(request{method: http.MethodPut, path: "/admin/reject/" + carol.ID.String(), token: root})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// đã xử lý thì không duyệt lại được
	assert.Equal(t, http.StatusConflict, s.do(request{method: http.MethodPut, path: "/admin/approve/" + alice.ID.String(), token: root}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(request{method: http.MethodPut, path: "/admin/approve/00000000-0000-0000-0000-000000000001", token: root}).Code)

	assert.Empty(t, list("/admin/requests"))
	admins := list("/admin")
	require.Len(t, admins, 1)
	assert.Equal(t, "alice", admins[0].Username)
	assert.Len(t, list("/admin/approved"), 1)
	rejected := list("/admin/rejected")
	require.Len(t, rejected, 1)
	assert.Equal(t, models.RolePathfinder, rejected[0].Role)

	require.Len(t, sent, 2)
	assert.Equal(t, "alice@mail.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, "approved")
	assert.Equal(t, "carol@mail.com", sent[1].To)
	assert.Contains(t, sent[1].Subject, "rejected")
}

func TestAdminDecisionCreatesNotification(t *testing.T) {
	s := newTestServer(t)
	_, root := s.createUser("root", models.RoleSuperuser)
	orig := utils.SendMail
	utils.SendMail = func(utils.Mail) error { return nil }
	t.Cleanup(func() { utils.SendMail = orig })

	w := s.do(request{method: http.MethodPost, path: "/users/register", body: registerBody("alice", "alice@mail.com", "admin")})
	require.Equal(t, http.StatusCreated, w.Code)
	var registered struct {
		User models.User `json:"user"`
	}
	decode(t, w, &registered)
	require.Equal(t, http.StatusOK, s.do(request{method: http.MethodPut, path: "/admin/approve/" + registered.User.ID.String(), token: root}).Code)

	w = s.do(request{method: http.MethodPost, path: "/users/login", body: map[string]string{"email": "alice@mail.com", "password": "password123"}})
	require.Equal(t, http.StatusOK, w.Code)
	var login map[string]string
	decode(t, w, &login)
	alice := login["token"]

	w = s.do(request{method: http.MethodGet, path: "/notifications/unread-count", token: alice})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"unreadCount":1}`, w.Body.String())

	w = s.do(request{method: http.MethodGet, path: "/notifications", token: alice})
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Notification
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationAdminDecision, list[0].Type)
	assert.False(t, list[0].IsRead)

	// user khác không đánh dấu được thông báo của alice
	_, bob := s.createUser("bob", models.RolePathfinder)
	assert.Equal(t, http.StatusNotFound, s.do(request{method: http.MethodPut, path: "/notifications/read/" + list[0].ID.String(), token: bob}).Code)

	require.Equal(t, http.StatusOK, s.do(request{method: http.MethodPut, path: "/notifications/read/" + list[0].ID.String(), token: alice}).Code)
	w = s.do(request{method: http.MethodGet, path: "/notifications/unread-count", token: alice})
	assert.JSONEq(t, `{"unreadCount":0}`, w.Body.String())

	assert.Equal(t, http.StatusNoContent, s.do(request{method: http.MethodDelete, path: "/notifications/read", token: alice}).Code)
	w = s.do(request{method: http.MethodGet, path: "/notifications", token: alice})
	assert.JSONEq(t, `[]`, w.Body.String())
}
