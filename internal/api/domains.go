package api

import (
	"net/http"

	"github.com/stp-archive/catalog/internal/server"
	"github.com/stp-archive/catalog/pkg/models"
)

// DomainRequest contains the fields accepted when adding or updating an
// email domain.
type DomainRequest struct {
	EmailDomain string `json:"email_domain"`
	Access      *int   `json:"access"`
}

// DomainsHandler serves the domain roster: GET lists every allowed email
// domain, POST adds one. Adding a domain is restricted to superusers.
func DomainsHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			domains, err := models.GetAllDomains(srv.DB)
			if err != nil {
				srv.Logger.Error("error listing domains", "error", err)
				respondFail(w, srv.Logger, http.StatusInternalServerError,
					"Something went wrong.")
				return
			}
			respondSuccess(w, srv.Logger, http.StatusOK, "", envelope{
				"domains": domains,
			})

		case http.MethodPost:
			if !callerIsSuperuser(srv, w, r) {
				return
			}

			var req DomainRequest
			if err := decodeRequest(r, &req); err != nil {
				srv.Logger.Warn("error decoding domain request", "error", err)
				respondFail(w, srv.Logger, http.StatusBadRequest, "Bad request.")
				return
			}

			domain := &models.Domain{
				EmailDomain: req.EmailDomain,
			}
			if req.Access != nil {
				domain.Access = req.Access
			}
			if err := domain.Create(srv.DB); err != nil {
				respondModelError(w, srv.Logger, err, "Domain not found.")
				return
			}

			srv.Logger.Info("domain added", "email_domain", domain.EmailDomain)
			respondSuccess(w, srv.Logger, http.StatusCreated, "Domain added!",
				envelope{"domain": domain})

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// DomainHandler serves a single domain by primary key: PUT updates the
// editable columns, DELETE removes the domain. Both require superuser
// privilege, which the route's middleware enforces.
func DomainHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pk, err := parseNumericID(r.URL.Path, "domains")
		if err != nil {
			respondFail(w, srv.Logger, http.StatusBadRequest, "Bad request.")
			return
		}

		var domain models.Domain
		if err := domain.Get(srv.DB, pk); err != nil {
			respondModelError(w, srv.Logger, err, "Domain not found.")
			return
		}

		switch r.Method {
		case http.MethodPut:
			var updates map[string]any
			if err := decodeRequest(r, &updates); err != nil {
				srv.Logger.Warn("error decoding domain update", "error", err)
				respondFail(w, srv.Logger, http.StatusBadRequest, "Bad request.")
				return
			}
			if err := domain.Update(srv.DB, updates); err != nil {
				respondModelError(w, srv.Logger, err, "Domain not found.")
				return
			}

			srv.Logger.Info("domain updated", "email_domain", domain.EmailDomain)
			respondSuccess(w, srv.Logger, http.StatusOK, "Domain updated!",
				envelope{"domain": domain})

		case http.MethodDelete:
			if err := domain.Delete(srv.DB); err != nil {
				respondModelError(w, srv.Logger, err, "Domain not found.")
				return
			}

			srv.Logger.Info("domain removed", "email_domain", domain.EmailDomain)
			respondSuccess(w, srv.Logger, http.StatusOK, "Domain removed!", nil)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}
