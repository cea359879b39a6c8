// Package web holds the JSON response helpers and middleware shared by the
// gateway's handlers.
package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/internal/api"
)

const maxBody = 1 << 20

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

// PathID parses the {id} path value as an ObjectID.
func PathID(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(r.PathValue("id"))
}

// QueryInt parses an integer query parameter, returning fallback when it is
// absent or malformed.
func QueryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// APIStatus maps a remote API failure to the status the gateway answers
// with.
func APIStatus(err error) int {
	var se *api.StatusError
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, api.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &se) && se.Status < http.StatusInternalServerError:
		return se.Status
	}
	return http.StatusBadGateway
}

// APIError logs a failed remote call and answers with the server's message
// or fallback.
func APIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	Logger(r.Context()).WithError(err).Warn(fallback)
	Error(w, APIStatus(err), api.Message(err, fallback))
}
