package signing

import "testing"

// Known answers produced by the JavaScript reference client for the same inputs.
func TestSigner_KnownVectors(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		body   string
		path   string
		query  string
		want   string
	}{
		{
			name:   "partner scoped get",
			secret: "SECRET",
			path:   "/api/v1/accounts",
			query:  "timestamp=1700000000&clientId=PARTNER",
			want:   "NVmAwzQiZqPFw+cmhI7EsdARrTAt5MKmnZhQRDj/65M=",
		},
		{
			name:   "user scoped get",
			secret: "SECRET",
			path:   "/api/v1/accounts",
			query:  "timestamp=1700000000&clientId=PARTNER&userId=user-1&userSecret=s3cr3t",
			want:   "kLRltHH2N5S9KurEl6rKfG4FP6WMGazSh2SBOd8kAt4=",
		},
		{
			name:   "post with body",
			secret: "SECRET",
			body:   `{"userId":"user-1","rsaPublicKey":"ssh-rsa AAA"}`,
			path:   "/api/v1/snapTrade/registerUser",
			query:  "timestamp=1700000000&clientId=PARTNER",
			want:   "Rxic45AeigtPOpHCMkovsy+BPvgN1jKLE941JBiy6mw=",
		},
		{
			name:   "nested body",
			secret: "SECRET",
			body:   `{"b":{"z":1,"a":[{"y":true,"x":null}]},"a":"x<y>&z"}`,
			path:   "/p",
			query:  "timestamp=1&clientId=C",
			want:   "5NLcbbg15vQLyWSF0l/C5N8nBhG1FeChC4bpk2BJKi0=",
		},
		{
			name:   "escaped secret",
			secret: "my secret&key=1/é",
			path:   "/api/v1/accounts",
			query:  "timestamp=1700000000&clientId=PARTNER",
			want:   "sjkW/7qybSD2jeNrpmiicWWpGA/Fy571H1kJFED7+qg=",
		},
		{
			name:   "encoded extras",
			secret: "SECRET",
			path:   "/api/v1/accounts/abc/quotes",
			query:  "timestamp=1700000000&clientId=PARTNER&userId=u&userSecret=a+b%2Bc%7Ed*e&symbols=AAPL%2CMSFT&use_ticker=true",
			want:   "pc++E/e6e69W/jZrxx/ruBgFwTx0saJgWcWJoSAghzE=",
		},
		{
			name:   "numbers and escapes",
			secret: "K",
			body:   `{"price":1.5,"units":10,"big":1e21,"small":1e-7,"neg":-0,"txt":"line\nbreak \u0001\"q\"\\"}`,
			path:   "/t",
			query:  "timestamp=2&clientId=C",
			want:   "3bZyxpcufHRJnAbYhhrGHjUy98t4BjsIOa4xN1ZLbAs=",
		},
		{
			name:   "utf-16 key order",
			secret: "K",
			body:   `{"é":1,"z":2,"Z":3,"😀":4,"～":5}`,
			path:   "/u",
			query:  "timestamp=3&clientId=C",
			want:   "XOap6LJeikTaRustjNXCUzkVrELEGM0y6OhKUayL9tw=",
		},
		{
			name:   "unpaired surrogate escape",
			secret: "K",
			body:   `{"s":"\ud800x"}`,
			path:   "/s",
			query:  "timestamp=4&clientId=C",
			want:   "dXw1Wfu41wbvbGgBhiM3J7wdnFuRfW/zUvgnqZ1SYqM=",
		},
		{
			name:   "register without key",
			secret: "SECRET",
			body:   `{"userId":"user-1"}`,
			path:   "/api/v1/snapTrade/registerUser",
			query:  "timestamp=1700000000&clientId=PARTNER",
			want:   "/ItiwTvRL6J5gM13AKZ9hTFf7/yuTxDeTpJVeqOeBIo=",
		},
		{
			name:   "register with pem key",
			secret: "SECRET",
			body:   `{"userId":"user-1","rsaPublicKey":"-----BEGIN PUBLIC KEY-----\nMFww\n-----END PUBLIC KEY-----"}`,
			path:   "/api/v1/snapTrade/registerUser",
			query:  "timestamp=1700000000&clientId=PARTNER",
			want:   "nPOQ0GMy7GsWGwAIwl2/co8A5GFLnCTnqs9MSwqaD9A=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSigner(tt.secret)
			if err != nil {
				t.Fatalf("NewSigner() error = %v", err)
			}
			got, _, err := s.SignRequest([]byte(tt.body), tt.path, tt.query)
			if err != nil {
				t.Fatalf("SignRequest() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SignRequest() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSigner_Deterministic(t *testing.T) {
	s, err := NewSigner("SECRET")
	if err != nil {
		t.Fatalf("NewSigner() error = %v", err)
	}
	body := []byte(`{"account_id":"a1","units":5}`)

	first, _, err := s.SignRequest(body, "/api/v1/trade/impact", "timestamp=10&clientId=C&userId=u&userSecret=s")
	if err != nil {
		t.Fatalf("SignRequest() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _, _ := s.SignRequest(body, "/api/v1/trade/impact", "timestamp=10&clientId=C&userId=u&userSecret=s")
		if again != first {
			t.Fatalf("signature changed between calls: %s != %s", again, first)
		}
	}
}

func TestSigner_SensitiveToEveryInput(t *testing.T) {
	base := struct {
		secret, body, path, query string
	}{"SECRET", `{"account_id":"a1","units":5}`, "/api/v1/trade/impact", "timestamp=10&clientId=C&userId=u"}

	sign := func(secret, body, path, query string) string {
		t.Helper()
		s, err := NewSigner(secret)
		if err != nil {
			t.Fatalf("NewSigner() error = %v", err)
		}
		sig, _, err := s.SignRequest([]byte(body), path, query)
		if err != nil {
			t.Fatalf("SignRequest() error = %v", err)
		}
		return sig
	}

	want := sign(base.secret, base.body, base.path, base.query)

	variants := map[string]string{
		"secret":     sign("SECRET2", base.body, base.path, base.query),
		"body value": sign(base.secret, `{"account_id":"a1","units":6}`, base.path, base.query),
		"path":       sign(base.secret, base.body, "/api/v1/trade/place", base.query),
		"query":      sign(base.secret, base.body, base.path, "timestamp=10&clientId=C&userId=v"),
		"timestamp":  sign(base.secret, base.body, base.path, "timestamp=11&clientId=C&userId=u"),
	}
	for name, got := range variants {
		if got == want {
			t.Errorf("changing %s did not change the signature", name)
		}
	}
}

func TestSigner_Verify(t *testing.T) {
	s, err := NewSigner("SECRET")
	if err != nil {
		t.Fatalf("NewSigner() error = %v", err)
	}
	canonical := `{"content":null,"path":"/api/v1/accounts","query":"timestamp=1700000000&clientId=PARTNER"}`

	if !s.Verify(canonical, "NVmAwzQiZqPFw+cmhI7EsdARrTAt5MKmnZhQRDj/65M=") {
		t.Error("Verify() rejected a valid signature")
	}
	if s.Verify(canonical, "5LcthVDCs4KMZyACDLXbUbkkfjb7s3Xs7zmPJmnKW98=") {
		t.Error("Verify() accepted a signature made with another key")
	}
	if s.Verify(canonical, "") {
		t.Error("Verify() accepted an empty signature")
	}
}

func TestNewSigner_Errors(t *testing.T) {
	if _, err := NewSigner(""); err == nil {
		t.Error("expected error for empty consumer key")
	}
	if _, err := NewSigner("\xff"); err == nil {
		t.Error("expected error for invalid UTF-8 consumer key")
	}
}
