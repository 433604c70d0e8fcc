package handlers

import (
	"collection-route-service/internal/domain"
	"collection-route-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps typed domain errors to HTTP statuses. Anything
// unrecognized is logged and reported as a 500 without details.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var invalid *domain.InvalidInputError
	var transition *domain.StatusTransitionError

	switch {
	case errors.As(err, &invalid):
		writeError(w, r, http.StatusBadRequest, invalid.Reason)
	case errors.Is(err, domain.ErrRouteNotFound):
		writeError(w, r, http.StatusNotFound, "route not found")
	case errors.As(err, &transition):
		writeError(w, r, http.StatusConflict, transition.Error())
	default:
		zap.L().Error(op+" failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON decodes exactly one JSON object from the request body and
// rejects unknown fields. An empty body is allowed when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryFloat(w http.ResponseWriter, r *http.Request, key string, fallback float64) (float64, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, key+" must be a number")
		return 0, false
	}
	return v, true
}

func toLngLats(pts [][2]float64) []domain.LngLat {
	out := make([]domain.LngLat, 0, len(pts))
	for _, p := range pts {
		out = append(out, domain.LngLat(p))
	}
	return out
}

func fromLngLats(pts []domain.LngLat) [][2]float64 {
	out := make([][2]float64, 0, len(pts))
	for _, p := range pts {
		out = append(out, [2]float64(p))
	}
	return out
}
