// Package api implements the catalog HTTP surface. Every response is a JSON
// object with a "status" field ("success"/"fail") plus a "message" and/or a
// payload field; authorization rejections additionally carry
// "isAuthorized": false and a generic message.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/stp-archive/catalog/pkg/models"
)

type envelope map[string]any

func respond(w http.ResponseWriter, log hclog.Logger, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("error encoding response", "error", err)
	}
}

func respondSuccess(
	w http.ResponseWriter, log hclog.Logger, code int, message string,
	extra envelope,
) {
	body := envelope{"status": "success"}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	respond(w, log, code, body)
}

func respondFail(w http.ResponseWriter, log hclog.Logger, code int, message string) {
	respond(w, log, code, envelope{
		"status":  "fail",
		"message": message,
	})
}

// respondUnauthorized rejects a request for authorization reasons. The
// message stays generic; internal details are logged, never returned.
func respondUnauthorized(w http.ResponseWriter, log hclog.Logger, code int, message string) {
	respond(w, log, code, envelope{
		"status":       "fail",
		"isAuthorized": false,
		"message":      message,
	})
}

// respondModelError translates the model error taxonomy into an HTTP
// failure response.
func respondModelError(w http.ResponseWriter, log hclog.Logger, err error, notFoundMessage string) {
	switch {
	case models.IsValidation(err):
		respondFail(w, log, http.StatusBadRequest, err.Error())
	case models.IsNotFound(err):
		respondFail(w, log, http.StatusNotFound, notFoundMessage)
	case models.IsConflict(err):
		log.Warn("conflict", "error", err)
		respondFail(w, log, http.StatusConflict, err.Error())
	case models.IsIntegrity(err):
		log.Error("data integrity error", "error", err)
		respondFail(w, log, http.StatusInternalServerError,
			"A data integrity problem was detected.")
	default:
		log.Error("storage error", "error", err)
		respondFail(w, log, http.StatusInternalServerError,
			"Something went wrong.")
	}
}

func decodeRequest(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

// parseResourceID extracts the single trailing resource identifier from a
// URL path of the form "/api/{apiPath}/{resourceID}".
func parseResourceID(urlPath, apiPath string) (string, error) {
	urlPath = strings.TrimPrefix(urlPath, fmt.Sprintf("/api/%s", apiPath))

	var resultPath []string
	for _, v := range strings.Split(urlPath, "/") {
		if v != "" {
			resultPath = append(resultPath, v)
		}
	}
	switch len(resultPath) {
	case 0:
		return "", fmt.Errorf("no resource ID set in URL path")
	case 1:
		return resultPath[0], nil
	default:
		return "", fmt.Errorf("invalid URL path")
	}
}
