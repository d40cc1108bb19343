package api

import (
	"net/http"

	"github.com/stp-archive/catalog/internal/server"
	"github.com/stp-archive/catalog/pkg/bulkimport"
	"github.com/stp-archive/catalog/pkg/models"
)

// maxUploadBytes caps bulk import uploads.
const maxUploadBytes = 10 << 20

// UploadHandler accepts a pipe-delimited text file and imports its records
// as documents attributed to the caller. A single malformed line fails the
// whole import before anything is written; records whose title already
// exists are skipped silently.
func UploadHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		email, ok := IdentityEmail(r.Context())
		if !ok {
			respondUnauthorized(w, srv.Logger, http.StatusUnauthorized,
				"Unauthorized.")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, header, err := r.FormFile("file")
		if err != nil {
			srv.Logger.Warn("error reading upload", "error", err)
			respondFail(w, srv.Logger, http.StatusBadRequest, "No file provided.")
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !bulkimport.AcceptableContentType(contentType) {
			srv.Logger.Warn("rejected upload content type",
				"content_type", contentType,
				"filename", header.Filename,
			)
			respondFail(w, srv.Logger, http.StatusBadRequest,
				"Only plain-text uploads are accepted.")
			return
		}

		records, err := bulkimport.Parse(file)
		if err != nil {
			srv.Logger.Warn("upload failed to parse",
				"error", err,
				"filename", header.Filename,
			)
			respondFail(w, srv.Logger, http.StatusBadRequest, err.Error())
			return
		}

		docs := make([]*models.Document, 0, len(records))
		for _, rec := range records {
			docs = append(docs, &models.Document{
				Title:        rec.Title,
				Author:       rec.Author,
				DocCode:      rec.DocCode,
				CompiledURL:  rec.CompiledURL,
				SourceURL:    rec.SourceURL,
				Abstract:     rec.Abstract,
				CreatorEmail: email,
			})
		}

		var created int
		if err := retryIdentifierConflicts(srv, func() error {
			var importErr error
			created, importErr = models.ImportDocuments(srv.DB, docs)
			return importErr
		}); err != nil {
			respondModelError(w, srv.Logger, err, "Document not found.")
			return
		}

		srv.Logger.Info("bulk import committed",
			"filename", header.Filename,
			"documents_added", created,
		)
		respondSuccess(w, srv.Logger, http.StatusOK, "File imported!", envelope{
			"documents_added": created,
		})
	})
}
