package testutil

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"
)

// NewVCRRecorder creates a recorder backed by testdata/fixtures/<cassetteName>.yaml.
// Set VCR_MODE=record to hit the live API and rewrite the cassette.
func NewVCRRecorder(t *testing.T, cassetteName string) (*recorder.Recorder, func()) {
	t.Helper()

	mode := recorder.ModeReplaying
	if os.Getenv("VCR_MODE") == "record" {
		mode = recorder.ModeRecording
	}

	cassettePath := filepath.Join("testdata", "fixtures", cassetteName)

	r, err := recorder.NewAsMode(cassettePath, mode, nil)
	if err != nil {
		t.Fatalf("Failed to create VCR recorder: %v", err)
	}

	r.SetMatcher(MatchIgnoringVolatile)

	// Signatures and user secrets must never be written to a cassette.
	r.AddFilter(func(i *cassette.Interaction) error {
		delete(i.Request.Headers, "Signature")
		i.Request.URL = StripVolatile(i.Request.URL)
		return nil
	})

	cleanup := func() {
		if err := r.Stop(); err != nil {
			t.Errorf("Failed to stop VCR recorder: %v", err)
		}
	}

	return r, cleanup
}

// VCRHTTPClient returns an HTTP client configured to use the VCR recorder
func VCRHTTPClient(r *recorder.Recorder) *http.Client {
	return &http.Client{
		Transport: r,
	}
}

// volatileParams change on every call or carry credentials.
var volatileParams = []string{"timestamp", "userSecret"}

// MatchIgnoringVolatile matches on method and URL, ignoring the signed
// timestamp and the user secret.
func MatchIgnoringVolatile(r *http.Request, i cassette.Request) bool {
	return r.Method == i.Method && StripVolatile(r.URL.String()) == StripVolatile(i.URL)
}

// StripVolatile removes volatile query parameters from rawURL. The remaining
// parameters come back sorted by key.
func StripVolatile(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for _, p := range volatileParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
