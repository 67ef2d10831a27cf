package sandbox

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tjfontaine/snaptrade-go/internal/auth"
	"github.com/tjfontaine/snaptrade-go/internal/server"
)

// Error codes returned in the "code" field, as the remote API does.
const (
	CodeInvalidRequest    = "1005"
	CodeUserExists        = "1010"
	CodeUnknownClient     = "1011"
	CodeAccountNotFound   = "1061"
	CodeInvalidSignature  = "1076"
	CodeInvalidTimestamp  = "1078"
	CodeInvalidUserSecret = "1083"
	CodeUserNotFound      = "1084"
)

// apiError is the JSON error body the remote API returns.
type apiError struct {
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	server.AddLogField(r.Context(), "error_code", code)
	writeJSON(w, status, apiError{Detail: detail, StatusCode: status, Code: code})
}

// writeAuthError maps verifier failures onto API error bodies.
func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, CodeInvalidRequest,
			"Request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
	case errors.Is(err, auth.ErrMissingClientID), errors.Is(err, auth.ErrUnknownClient):
		writeError(w, r, http.StatusUnauthorized, CodeUnknownClient, "Invalid clientId provided")
	case errors.Is(err, auth.ErrInvalidTimestamp):
		writeError(w, r, http.StatusUnauthorized, CodeInvalidTimestamp, "Request expired or timestamp invalid")
	case errors.Is(err, auth.ErrMissingSignature), errors.Is(err, auth.ErrInvalidSignature):
		writeError(w, r, http.StatusUnauthorized, CodeInvalidSignature, "Unable to verify signature sent")
	default:
		writeError(w, r, http.StatusBadRequest, CodeInvalidRequest, "Unable to read request: "+strconv.Quote(err.Error()))
	}
}
