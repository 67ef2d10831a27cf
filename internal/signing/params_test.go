package signing

import "testing"

func TestParamsEncode(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{
			name: "partner scoped",
			params: Params{
				{Key: "timestamp", Value: "1700000000"},
				{Key: "clientId", Value: "PARTNER"},
			},
			want: "timestamp=1700000000&clientId=PARTNER",
		},
		{
			name: "user scoped with extras",
			params: Params{
				{Key: "timestamp", Value: "1700000000"},
				{Key: "clientId", Value: "PARTNER"},
				{Key: "userId", Value: "u"},
				{Key: "userSecret", Value: "a b+c~d*e"},
				{Key: "symbols", Value: "AAPL,MSFT"},
				{Key: "use_ticker", Value: "true"},
			},
			want: "timestamp=1700000000&clientId=PARTNER&userId=u&userSecret=a+b%2Bc%7Ed*e&symbols=AAPL%2CMSFT&use_ticker=true",
		},
		{
			name:   "non-ascii and reserved",
			params: Params{{Key: "q k", Value: "é/&=?#"}},
			want:   "q+k=%C3%A9%2F%26%3D%3F%23",
		},
		{
			name:   "empty value",
			params: Params{{Key: "status", Value: ""}},
			want:   "status=",
		},
		{
			name: "empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParamsKeepInsertionOrder(t *testing.T) {
	var p Params
	p.Add("z", "1")
	p.Add("a", "2")
	p.Add("m", "3")

	if got, want := p.Encode(), "z=1&a=2&m=3"; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
	if got := p.Get("a"); got != "2" {
		t.Errorf("Get(a) = %q, want 2", got)
	}
	if got := p.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
}
