package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	slopplot "github.com/haowjy/slopplot-go"
)

func TestProvider_Complete_AttributionHeaders(t *testing.T) {
	tests := []struct {
		name        string
		params      *slopplot.RequestParams
		wantReferer string
		wantTitle   string
	}{
		{"defaults", nil, defaultReferer, defaultAppTitle},
		{"overridden", &slopplot.RequestParams{Referer: strPtr("https://example.com"), AppTitle: strPtr("dashboards")}, "https://example.com", "dashboards"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotReferer, gotTitle, gotModel string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotReferer = r.Header.Get("HTTP-Referer")
				gotTitle = r.Header.Get("X-Title")
				var body struct {
					Model string `json:"model"`
				}
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &body)
				gotModel = body.Model
				_, _ = io.WriteString(w, `{"model":"google/gemini-2.5-flash","choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`)
			}))
			defer server.Close()

			p, err := NewProvider("sk-or", server.URL, server.Client())
			if err != nil {
				t.Fatal(err)
			}
			_, err = p.Complete(context.Background(), &slopplot.CompletionRequest{
				Instruction: "x",
				Model:       "google/gemini-2.5-flash",
				Params:      tt.params,
			})
			if err != nil {
				t.Fatalf("Complete() error = %v", err)
			}

			if gotReferer != tt.wantReferer || gotTitle != tt.wantTitle {
				t.Errorf("headers = %q/%q, want %q/%q", gotReferer, gotTitle, tt.wantReferer, tt.wantTitle)
			}
			if gotModel != "google/gemini-2.5-flash" {
				t.Errorf("model = %q, organization must reach OpenRouter", gotModel)
			}
		})
	}
}

func TestNewProvider_EmptyKey(t *testing.T) {
	_, err := NewProvider("", "", nil)
	if !slopplot.IsAuthError(err) {
		t.Fatalf("got %v, want auth error", err)
	}
}

func TestNewProvider_DefaultBaseURL(t *testing.T) {
	p, err := NewProvider("sk-or-test", "", nil)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if p.baseURL != DefaultBaseURL {
		t.Fatalf("baseURL = %q, want %q", p.baseURL, DefaultBaseURL)
	}
}

func TestProvider_Complete_InsufficientCredits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = io.WriteString(w, `{"error":{"message":"Insufficient credits"}}`)
	}))
	defer server.Close()

	p, _ := NewProvider("sk-or", server.URL, server.Client())
	_, err := p.Complete(context.Background(), &slopplot.CompletionRequest{Instruction: "x", Model: "m"})

	var providerErr *slopplot.ProviderError
	if !errors.As(err, &providerErr) || providerErr.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("err = %v, want 402 ProviderError", err)
	}
	if slopplot.IsRetryable(err) {
		t.Error("402 must not be retryable")
	}
}

func strPtr(s string) *string { return &s }
