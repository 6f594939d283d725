package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/eventhub/eventhub-go/internal/service"
)

const maxBodyBytes = 1 << 20 // 1MB

var errInvalidEventID = errors.New("invalid event id")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func messageResponse(msg string) map[string]string {
	return map[string]string{"message": msg}
}

// decodeJSON reads a size-limited JSON body into dst. It writes the error
// response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, messageResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, messageResponse("invalid request body"))
		return false
	}
	return true
}

// errorStatus maps service errors to HTTP status codes. Unknown errors are 500.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrRegistrationInput),
		errors.Is(err, service.ErrPasswordTooLong),
		errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrEventInput),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrPastEvent),
		errors.Is(err, service.ErrEventStarted),
		errors.Is(err, errInvalidEventID):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrNotAttending):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as {"message": ...}. Internal errors are logged and
// never shown to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, status, messageResponse("server error"))
		return
	}
	writeJSON(w, status, messageResponse(err.Error()))
}

func eventIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidEventID
	}
	return id, nil
}
