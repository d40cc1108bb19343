package api

import (
	"net/http"
	"strconv"

	"github.com/stp-archive/catalog/internal/server"
	"github.com/stp-archive/catalog/pkg/models"
)

// UserRequest contains the fields accepted when adding or updating a user.
type UserRequest struct {
	Email     string `json:"email"`
	Superuser *bool  `json:"superuser"`
	Access    *int   `json:"access"`
}

// UsersHandler serves the user roster: GET lists every user, POST adds one.
// Adding a user is restricted to superusers.
func UsersHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			users, err := models.GetAllUsers(srv.DB)
			if err != nil {
				srv.Logger.Error("error listing users", "error", err)
				respondFail(w, srv.Logger, http.StatusInternalServerError,
					"Something went wrong.")
				return
			}
			respondSuccess(w, srv.Logger, http.StatusOK, "", envelope{
				"users": users,
			})

		case http.MethodPost:
			if !callerIsSuperuser(srv, w, r) {
				return
			}

			var req UserRequest
			if err := decodeRequest(r, &req); err != nil {
				srv.Logger.Warn("error decoding user request", "error", err)
				respondFail(w, srv.Logger, http.StatusBadRequest, "Bad request.")
				return
			}

			user := &models.User{
				Email:  req.Email,
				Access: req.Access,
			}
			if req.Superuser != nil {
				user.Superuser = *req.Superuser
			}
			if err := user.Create(srv.DB); err != nil {
				respondModelError(w, srv.Logger, err, "User not found.")
				return
			}

			srv.Logger.Info("user added", "email", user.Email)
			respondSuccess(w, srv.Logger, http.StatusCreated, "User added!",
				envelope{"user": user})

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// UserHandler serves a single user by primary key: PUT updates the editable
// columns, DELETE removes the user. Both require superuser privilege, which
// the route's middleware enforces.
func UserHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pk, err := parseNumericID(r.URL.Path, "users")
		if err != nil {
			respondFail(w, srv.Logger, http.StatusBadRequest, "Bad request.")
			return
		}

		var user models.User
		if err := user.Get(srv.DB, pk); err != nil {
			respondModelError(w, srv.Logger, err, "User not found.")
			return
		}

		switch r.Method {
		case http.MethodPut:
			var updates map[string]any
			if err := decodeRequest(r, &updates); err != nil {
				srv.Logger.Warn("error decoding user update", "error", err)
				respondFail(w, srv.Logger, http.StatusBadRequest, "Bad request.")
				return
			}
			if err := user.Update(srv.DB, updates); err != nil {
				respondModelError(w, srv.Logger, err, "User not found.")
				return
			}

			srv.Logger.Info("user updated", "email", user.Email)
			respondSuccess(w, srv.Logger, http.StatusOK, "User updated!",
				envelope{"user": user})

		case http.MethodDelete:
			if err := user.Delete(srv.DB); err != nil {
				respondModelError(w, srv.Logger, err, "User not found.")
				return
			}

			srv.Logger.Info("user removed", "email", user.Email)
			respondSuccess(w, srv.Logger, http.StatusOK, "User removed!", nil)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// AdminsHandler lists the users holding superuser privilege.
func AdminsHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		admins, err := models.GetAllSuperusers(srv.DB)
		if err != nil {
			srv.Logger.Error("error listing superusers", "error", err)
			respondFail(w, srv.Logger, http.StatusInternalServerError,
				"Something went wrong.")
			return
		}
		respondSuccess(w, srv.Logger, http.StatusOK, "", envelope{
			"admins": admins,
		})
	})
}

// callerIsSuperuser checks the resolved entity's privilege for mutations on
// collection routes whose reads stay open to every entity. Writes the
// rejection itself and returns false when the caller lacks privilege.
func callerIsSuperuser(srv server.Server, w http.ResponseWriter, r *http.Request) bool {
	entity, ok := EntityFromContext(r.Context())
	if !ok || !entity.IsSuperuser() {
		srv.Logger.Warn("superuser privilege required",
			"path", r.URL.Path,
			"method", r.Method,
		)
		respondUnauthorized(w, srv.Logger, http.StatusForbidden,
			"Not authorized.")
		return false
	}
	return true
}

// parseNumericID extracts and parses the numeric primary key from a URL
// path of the form "/api/{apiPath}/{pk}".
func parseNumericID(urlPath, apiPath string) (uint, error) {
	raw, err := parseResourceID(urlPath, apiPath)
	if err != nil {
		return 0, err
	}
	pk, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(pk), nil
}
