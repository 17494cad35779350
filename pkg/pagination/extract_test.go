package pagination

import (
	"testing"
)

func TestExtractNext(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantOK   bool
		wantKeys []string
		want     map[string]string
		wantErr  bool
	}{
		{
			name:     "serpapi pagination",
			body:     `{"serpapi_pagination":{"next":"https://serpapi.com/search.json?engine=google&q=coffee&start=10"}}`,
			wantOK:   true,
			wantKeys: []string{"q", "start"},
			want:     map[string]string{"q": "coffee", "start": "10"},
		},
		{
			name:     "engine pagination fallback",
			body:     `{"pagination":{"next":"https://www.google.com/search?q=coffee&start=10"}}`,
			wantOK:   true,
			wantKeys: []string{"q", "start"},
			want:     map[string]string{"q": "coffee", "start": "10"},
		},
		{
			name:     "serpapi pagination preferred",
			body:     `{"serpapi_pagination":{"next":"https://serpapi.com/search.json?q=a&start=20"},"pagination":{"next":"https://www.google.com/search?q=b"}}`,
			wantOK:   true,
			wantKeys: []string{"q", "start"},
			want:     map[string]string{"q": "a", "start": "20"},
		},
		{
			name:     "empty serpapi next falls back",
			body:     `{"serpapi_pagination":{"next":""},"pagination":{"next":"https://www.google.com/search?q=b"}}`,
			wantOK:   true,
			wantKeys: []string{"q"},
			want:     map[string]string{"q": "b"},
		},
		{
			name:     "encoded values decoded",
			body:     `{"serpapi_pagination":{"next":"https://serpapi.com/search.json?q=coffee+%26+tea&ll=%4040.7%2C-74.0%2C14z"}}`,
			wantOK:   true,
			wantKeys: []string{"q", "ll"},
			want:     map[string]string{"q": "coffee & tea", "ll": "@40.7,-74.0,14z"},
		},
		{
			name:     "non-object serpapi pagination falls back",
			body:     `{"serpapi_pagination":"oops","pagination":{"next":"https://www.google.com/search?q=b"}}`,
			wantOK:   true,
			wantKeys: []string{"q"},
			want:     map[string]string{"q": "b"},
		},
		{
			name:   "non-object pagination only",
			body:   `{"serpapi_pagination":[1,2],"pagination":null}`,
			wantOK: false,
		},
		{
			name:   "non-string next",
			body:   `{"serpapi_pagination":{"next":42}}`,
			wantOK: false,
		},
		{
			name:   "no pagination",
			body:   `{"organic_results":[]}`,
			wantOK: false,
		},
		{
			name:    "relative next url",
			body:    `{"serpapi_pagination":{"next":"/search.json?q=coffee"}}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			body:    `{"serpapi_pagination":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok, err := ExtractNext([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}

			if next.Has(RoutingKey) {
				t.Error("engine should be removed from the next page parameters")
			}
			keys := next.Keys()
			if len(keys) != len(tt.wantKeys) {
				t.Fatalf("keys = %v, want %v", keys, tt.wantKeys)
			}
			for i, k := range tt.wantKeys {
				if keys[i] != k {
					t.Errorf("keys[%d] = %q, want %q", i, keys[i], k)
				}
				if got := next.Lookup(k).String(); got != tt.want[k] {
					t.Errorf("%s = %q, want %q", k, got, tt.want[k])
				}
			}
		})
	}
}

func TestExtractNextFromMap(t *testing.T) {
	result := map[string]any{
		"serpapi_pagination": map[string]any{
			"current": 1,
			"next":    "https://serpapi.com/search.json?engine=bing&q=coffee&first=11",
		},
	}

	next, ok, err := ExtractNextFromMap(result)
	if err != nil || !ok {
		t.Fatalf("ExtractNextFromMap() ok=%v err=%v", ok, err)
	}
	if next.Lookup("first").String() != "11" {
		t.Errorf("first = %q, want 11", next.Lookup("first").String())
	}
	if next.Has("engine") {
		t.Error("engine should be removed")
	}

	if _, ok, _ := ExtractNextFromMap(map[string]any{"pagination": "not an object"}); ok {
		t.Error("malformed pagination should not yield a next page")
	}
}
