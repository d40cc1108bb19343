package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersHandler(t *testing.T) {
	srv := setupTest(t)
	seedUser(t, srv.DB, "root@example.com", true)
	seedUser(t, srv.DB, "member@example.com", false)
	h := protect(srv, UsersHandler(srv))

	t.Run("any entity can list users", func(t *testing.T) {
		w := doRequest(t, h, http.MethodGet, "/api/users", "member@example.com", nil)
		require.Equal(t, http.StatusOK, w.Code)

		users, ok := decodeBody(t, w)["users"].([]any)
		require.True(t, ok)
		assert.Len(t, users, 2)
	})

	t.Run("only superusers can add users", func(t *testing.T) {
		w := doRequest(t, h, http.MethodPost, "/api/users", "member@example.com",
			UserRequest{Email: "new@example.com"})
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, false, decodeBody(t, w)["isAuthorized"])
	})

	t.Run("superuser adds a user", func(t *testing.T) {
		superuser := true
		w := doRequest(t, h, http.MethodPost, "/api/users", "root@example.com",
			UserRequest{Email: "new@example.com", Superuser: &superuser})
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "User added!", body["message"])

		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "new@example.com", user["email"])
		assert.Equal(t, true, user["superuser"])
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		w := doRequest(t, h, http.MethodPost, "/api/users", "root@example.com",
			UserRequest{Email: "member@example.com"})
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid email fails", func(t *testing.T) {
		w := doRequest(t, h, http.MethodPost, "/api/users", "root@example.com",
			UserRequest{Email: "not-an-email"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler(t *testing.T) {
	srv := setupTest(t)
	seedUser(t, srv.DB, "root@example.com", true)
	target := seedUser(t, srv.DB, "target@example.com", false)

	h := protect(srv, RequireSuperuser(srv, UserHandler(srv)))
	path := fmt.Sprintf("/api/users/%d", target.ID)

	t.Run("regular user cannot reach the route", func(t *testing.T) {
		w := doRequest(t, h, http.MethodPut, path, "target@example.com",
			map[string]any{"superuser": true})
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("superuser updates a user", func(t *testing.T) {
		w := doRequest(t, h, http.MethodPut, path, "root@example.com",
			map[string]any{"superuser": true})
		require.Equal(t, http.StatusOK, w.Code)

		user, ok := decodeBody(t, w)["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, true, user["superuser"])
	})

	t.Run("unknown primary key is not found", func(t *testing.T) {
		w := doRequest(t, h, http.MethodPut, "/api/users/9999", "root@example.com",
			map[string]any{"superuser": true})
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found.", decodeBody(t, w)["message"])
	})

	t.Run("non-numeric primary key fails", func(t *testing.T) {
		w := doRequest(t, h, http.MethodPut, "/api/users/abc", "root@example.com",
			map[string]any{"superuser": true})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("superuser removes a user", func(t *testing.T) {
		w := doRequest(t, h, http.MethodDelete, path, "root@example.com", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "User removed!", decodeBody(t, w)["message"])

		w = doRequest(t, h, http.MethodDelete, path, "root@example.com", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminsHandler(t *testing.T) {
	srv := setupTest(t)
	seedUser(t, srv.DB, "root@example.com", true)
	seedUser(t, srv.DB, "member@example.com", false)
	h := protect(srv, AdminsHandler(srv))

	w := doRequest(t, h, http.MethodGet, "/api/admins", "member@example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	admins, ok := decodeBody(t, w)["admins"].([]any)
	require.True(t, ok)
	require.Len(t, admins, 1)

	admin, ok := admins[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "root@example.com", admin["email"])
}
