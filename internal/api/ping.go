package api

import (
	"net/http"

	"github.com/stp-archive/catalog/internal/server"
)

// PingHandler answers the health check.
func PingHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		respondSuccess(w, srv.Logger, http.StatusOK, "pong!", nil)
	})
}
