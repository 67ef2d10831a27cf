package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

const (
	testClientID    = "PARTNER"
	testConsumerKey = "SECRET"
	testTimestamp   = 1700000000
)

func newTestVerifier(t *testing.T, now time.Time) *Verifier {
	t.Helper()
	v, err := NewVerifier(
		map[string]string{testClientID: testConsumerKey},
		WithClock(func() time.Time { return now }),
	)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	return v
}

func TestVerifier_Verify(t *testing.T) {
	at := time.Unix(testTimestamp, 0)

	tests := []struct {
		name      string
		target    string
		body      string
		signature string
		now       time.Time
		wantErr   error
	}{
		{
			name:      "partner scoped get",
			target:    "/api/v1/accounts?timestamp=1700000000&clientId=PARTNER",
			signature: "NVmAwzQiZqPFw+cmhI7EsdARrTAt5MKmnZhQRDj/65M=",
			now:       at,
		},
		{
			name:      "user scoped get",
			target:    "/api/v1/accounts?timestamp=1700000000&clientId=PARTNER&userId=user-1&userSecret=s3cr3t",
			signature: "kLRltHH2N5S9KurEl6rKfG4FP6WMGazSh2SBOd8kAt4=",
			now:       at,
		},
		{
			name:      "post with body",
			target:    "/api/v1/snapTrade/registerUser?timestamp=1700000000&clientId=PARTNER",
			body:      `{"userId":"user-1","rsaPublicKey":"ssh-rsa AAA"}`,
			signature: "Rxic45AeigtPOpHCMkovsy+BPvgN1jKLE941JBiy6mw=",
			now:       at,
		},
		{
			name:      "body reformatted keeps signature",
			target:    "/api/v1/snapTrade/registerUser?timestamp=1700000000&clientId=PARTNER",
			body:      "{ \"rsaPublicKey\": \"ssh-rsa AAA\",\n  \"userId\": \"user-1\" }",
			signature: "Rxic45AeigtPOpHCMkovsy+BPvgN1jKLE941JBiy6mw=",
			now:       at,
		},
		{
			name:      "within skew",
			target:    "/api/v1/accounts?timestamp=1700000000&clientId=PARTNER",
			signature: "NVmAwzQiZqPFw+cmhI7EsdARrTAt5MKmnZhQRDj/65M=",
			now:       at.Add(4 * time.Minute),
		},
		{
			name:      "tampered query",
			target:    "/api/v1/accounts?timestamp=1700000000&clientId=PARTNER&userId=other",
			signature: "NVmAwzQiZqPFw+cmhI7EsdARrTAt5MKmnZhQRDj/65M=",
			now:       at,
			wantErr:   ErrInvalidSignature,
		},
		{
			name:      "tampered path",
			target:    "/api/v1/accounts/x?timestamp=1700000000&clientId=PARTNER",
			signature: "NVmAwzQiZqPFw+cmhI7EsdARrTAt5MKmnZhQRDj/65M=",
			now:       at,
			wantErr:   ErrInvalidSignature,
		},
		{
			name:      "malformed body",
			target:    "/api/v1/snapTrade/registerUser?timestamp=1700000000&clientId=PARTNER",
			body:      `{"userId":`,
			signature: "Rxic45AeigtPOpHCMkovsy+BPvgN1jKLE941JBiy6mw=",
			now:       at,
			wantErr:   ErrInvalidSignature,
		},
		{
			name:      "missing signature",
			target:    "/api/v1/accounts?timestamp=1700000000&clientId=PARTNER",
			now:       at,
			wantErr:   ErrMissingSignature,
		},
		{
			name:      "missing client",
			target:    "/api/v1/accounts?timestamp=1700000000",
			signature: "x",
			now:       at,
			wantErr:   ErrMissingClientID,
		},
		{
			name:      "unknown client",
			target:    "/api/v1/accounts?timestamp=1700000000&clientId=OTHER",
			signature: "x",
			now:       at,
			wantErr:   ErrUnknownClient,
		},
		{
			name:      "stale timestamp",
			target:    "/api/v1/accounts?timestamp=1700000000&clientId=PARTNER",
			signature: "NVmAwzQiZqPFw+cmhI7EsdARrTAt5MKmnZhQRDj/65M=",
			now:       at.Add(10 * time.Minute),
			wantErr:   ErrInvalidTimestamp,
		},
		{
			name:      "future timestamp",
			target:    "/api/v1/accounts?timestamp=1700000000&clientId=PARTNER",
			signature: "NVmAwzQiZqPFw+cmhI7EsdARrTAt5MKmnZhQRDj/65M=",
			now:       at.Add(-10 * time.Minute),
			wantErr:   ErrInvalidTimestamp,
		},
		{
			name:      "non numeric timestamp",
			target:    "/api/v1/accounts?timestamp=yesterday&clientId=PARTNER",
			signature: "x",
			now:       at,
			wantErr:   ErrInvalidTimestamp,
		},
		{
			name:      "missing timestamp",
			target:    "/api/v1/accounts?clientId=PARTNER",
			signature: "x",
			now:       at,
			wantErr:   ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVerifier(t, tt.now)

			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.signature != "" {
				req.Header.Set("Signature", tt.signature)
			}

			clientID, err := v.Verify(req, []byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Verify() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if clientID != testClientID {
				t.Errorf("clientID = %v, want %v", clientID, testClientID)
			}
		})
	}
}

func TestWithSkew(t *testing.T) {
	at := time.Unix(testTimestamp, 0)
	v, err := NewVerifier(
		map[string]string{testClientID: testConsumerKey},
		WithClock(func() time.Time { return at.Add(30 * time.Second) }),
		WithSkew(10*time.Second),
	)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/accounts?timestamp=1700000000&clientId=PARTNER", nil)
	req.Header.Set("Signature", "NVmAwzQiZqPFw+cmhI7EsdARrTAt5MKmnZhQRDj/65M=")

	if _, err := v.Verify(req, nil); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("Verify() error = %v, want ErrInvalidTimestamp", err)
	}
}

func TestNewVerifier_EmptyKey(t *testing.T) {
	if _, err := NewVerifier(map[string]string{"PARTNER": ""}); err == nil {
		t.Error("expected error for empty consumer key")
	}
}

func TestExtractSignature(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, err := ExtractSignature(req); !errors.Is(err, ErrMissingSignature) {
		t.Errorf("ExtractSignature() error = %v, want ErrMissingSignature", err)
	}

	req.Header.Set("Signature", "abc=")
	got, err := ExtractSignature(req)
	if err != nil || got != "abc=" {
		t.Errorf("ExtractSignature() = %q, %v", got, err)
	}
}
