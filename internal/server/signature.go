package server

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/tjfontaine/snaptrade-go/internal/auth"
)

// maxSignedBody caps request bodies read for signature verification.
const maxSignedBody = 1 << 20

type clientIDKey struct{}

// ErrorWriter renders a verification failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// SignatureMiddleware rejects requests whose Signature does not verify. The
// body is read once for verification and restored for the next handler. On
// success the partner clientId is stored in the context. A body over the size
// cap is reported to onError as an *http.MaxBytesError.
func SignatureMiddleware(verifier *auth.Verifier, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body []byte
			if r.Body != nil {
				var err error
				body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxSignedBody))
				r.Body.Close()
				if err != nil {
					AddError(r.Context(), err)
					onError(w, r, err)
					return
				}
			}

			clientID, err := verifier.Verify(r, body)
			if err != nil {
				AddError(r.Context(), err)
				onError(w, r, err)
				return
			}
			AddLogField(r.Context(), "client_id", clientID)

			r.Body = io.NopCloser(bytes.NewReader(body))
			ctx := context.WithValue(r.Context(), clientIDKey{}, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientID retrieves the verified partner clientId from context.
// Returns an empty string if the request was not verified.
func GetClientID(ctx context.Context) string {
	if clientID, ok := ctx.Value(clientIDKey{}).(string); ok {
		return clientID
	}
	return ""
}
