package api

import (
	"net/http"

	"github.com/cenkalti/backoff/v4"

	"github.com/stp-archive/catalog/internal/server"
	"github.com/stp-archive/catalog/pkg/models"
)

// DocumentCreateRequest contains the fields accepted when adding a document.
type DocumentCreateRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	DocCode     string `json:"doc_code"`
	CompiledURL string `json:"compiled_url"`
	SourceURL   string `json:"source_url"`
	Abstract    string `json:"abstract"`
}

// DocumentsHandler serves the document collection: GET lists every document,
// POST adds one attributed to the caller.
func DocumentsHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			docs, err := models.GetAllDocuments(srv.DB)
			if err != nil {
				srv.Logger.Error("error listing documents", "error", err)
				respondFail(w, srv.Logger, http.StatusInternalServerError,
					"Something went wrong.")
				return
			}
			respondSuccess(w, srv.Logger, http.StatusOK, "", envelope{
				"documents": docs,
			})

		case http.MethodPost:
			email, ok := IdentityEmail(r.Context())
			if !ok {
				respondUnauthorized(w, srv.Logger, http.StatusUnauthorized,
					"Unauthorized.")
				return
			}

			var req DocumentCreateRequest
			if err := decodeRequest(r, &req); err != nil {
				srv.Logger.Warn("error decoding document request", "error", err)
				respondFail(w, srv.Logger, http.StatusBadRequest, "Bad request.")
				return
			}

			doc := &models.Document{
				Title:        req.Title,
				Author:       req.Author,
				DocCode:      req.DocCode,
				CompiledURL:  req.CompiledURL,
				SourceURL:    req.SourceURL,
				Abstract:     req.Abstract,
				CreatorEmail: email,
			}
			if err := retryIdentifierConflicts(srv, func() error {
				return doc.Create(srv.DB)
			}); err != nil {
				respondModelError(w, srv.Logger, err, "Document not found.")
				return
			}

			srv.Logger.Info("document added",
				"doc_identifier", doc.DocIdentifier,
				"creator", email,
			)
			respondSuccess(w, srv.Logger, http.StatusCreated, "Document added!",
				envelope{"document": doc})

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// DocumentHandler serves a single document by identifier: GET reads it, PUT
// updates the editable columns, DELETE removes it. Update and delete are
// restricted to the document's creator.
func DocumentHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := parseResourceID(r.URL.Path, "documents")
		if err != nil {
			respondFail(w, srv.Logger, http.StatusBadRequest, "Bad request.")
			return
		}

		var doc models.Document
		if err := doc.GetByDocIdentifier(srv.DB, id); err != nil {
			respondModelError(w, srv.Logger, err, "Document not found.")
			return
		}

		switch r.Method {
		case http.MethodGet:
			respondSuccess(w, srv.Logger, http.StatusOK, "", envelope{
				"document": doc,
			})

		case http.MethodPut:
			if !callerOwnsDocument(srv, w, r, &doc) {
				return
			}

			var updates map[string]any
			if err := decodeRequest(r, &updates); err != nil {
				srv.Logger.Warn("error decoding document update", "error", err)
				respondFail(w, srv.Logger, http.StatusBadRequest, "Bad request.")
				return
			}
			if err := doc.Update(srv.DB, updates); err != nil {
				respondModelError(w, srv.Logger, err, "Document not found.")
				return
			}

			srv.Logger.Info("document updated", "doc_identifier", doc.DocIdentifier)
			respondSuccess(w, srv.Logger, http.StatusOK, "Document updated!",
				envelope{"document": doc})

		case http.MethodDelete:
			if !callerOwnsDocument(srv, w, r, &doc) {
				return
			}

			if err := doc.Delete(srv.DB); err != nil {
				respondModelError(w, srv.Logger, err, "Document not found.")
				return
			}

			srv.Logger.Info("document removed", "doc_identifier", doc.DocIdentifier)
			respondSuccess(w, srv.Logger, http.StatusOK, "Document removed!", nil)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// callerOwnsDocument enforces the ownership rule for mutations: the acting
// email must equal the document's creator. Writes the rejection itself and
// returns false when the caller does not own the document.
func callerOwnsDocument(
	srv server.Server, w http.ResponseWriter, r *http.Request,
	doc *models.Document,
) bool {
	email, ok := IdentityEmail(r.Context())
	if !ok || email != doc.CreatorEmail {
		srv.Logger.Warn("document ownership check failed",
			"doc_identifier", doc.DocIdentifier,
			"caller", email,
		)
		respondUnauthorized(w, srv.Logger, http.StatusForbidden,
			"Not authorized.")
		return false
	}
	return true
}

// retryIdentifierConflicts runs op, retrying a bounded number of times when
// two creation transactions race for the same identifier, whether the loser
// was caught by the pre-insert check or by the unique index at commit. The
// retry re-runs op against committed rows, so a genuine duplicate title
// resurfaces as a permanent title conflict. Every other error is permanent.
func retryIdentifierConflicts(srv server.Server, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if models.IsConflictOn(err, "doc_identifier") {
			srv.Logger.Warn("identifier conflict, retrying", "error", err)
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3))
}
