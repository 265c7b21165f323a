// internal/controller/respond.go
package controller

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	appErrors "github.com/unclebandit/storefront-backend/internal/errors"
	"github.com/unclebandit/storefront-backend/internal/payload"
)

const internalError = "internal server error"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "err", err)
	}
}

// writeError renders an adapter or validation error. Client errors carry
// their message; everything else is logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := slog.With(
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
	)
	e, _ := appErrors.As(err)

	switch appErrors.KindOf(err) {
	case appErrors.KindValidation:
		log.Debug("rejected request", "reason", e.Message)
		body := map[string]any{"error": e.Message}
		if len(e.Fields) > 0 {
			body["fields"] = e.Fields
		}
		writeJSON(w, http.StatusBadRequest, body)
	case appErrors.KindNotFound:
		log.Debug("not found", "reason", e.Message)
		writeJSON(w, http.StatusNotFound, map[string]string{"message": e.Message})
	case appErrors.KindConflict:
		log.Info("conflict", "field", e.Field)
		writeJSON(w, http.StatusConflict, map[string]string{"error": e.Message})
	case appErrors.KindIntegrity:
		log.Error("data integrity violation", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": internalError})
	default:
		log.Error("store call failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": internalError})
	}
}

// readBody decodes the request body, answering 400 itself when it is not a JSON object.
func readBody(w http.ResponseWriter, r *http.Request) (payload.Fields, bool) {
	fields, err := payload.Decode(r.Body)
	if err != nil {
		slog.Debug("invalid body", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return nil, false
	}
	return fields, true
}
