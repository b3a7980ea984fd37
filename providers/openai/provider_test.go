package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	slopplot "github.com/haowjy/slopplot-go"
)

func TestFactory_UsesCatalogBaseURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"model":"gpt-4","choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	p, err := Factory(slopplot.ProviderSpec{ID: slopplot.ProviderOpenAI, BaseURL: server.URL + "/v1"}, "sk-test")
	if err != nil {
		t.Fatalf("Factory() error = %v", err)
	}
	if p.Name() != slopplot.ProviderOpenAI {
		t.Errorf("Name() = %s", p.Name())
	}

	completion, err := p.Complete(context.Background(), &slopplot.CompletionRequest{Instruction: "x", Model: "gpt-4"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if completion.Text != "ok" || gotPath != "/v1/chat/completions" {
		t.Errorf("text = %q path = %q", completion.Text, gotPath)
	}
}

func TestNewProvider_Defaults(t *testing.T) {
	if _, err := NewProvider("", "", nil); !slopplot.IsAuthError(err) {
		t.Fatalf("empty key: got %v, want auth error", err)
	}
	if _, err := NewProvider("sk", "", nil); err != nil {
		t.Fatalf("default base URL: %v", err)
	}
	if !strings.HasPrefix(DefaultBaseURL, "https://") {
		t.Errorf("DefaultBaseURL = %q", DefaultBaseURL)
	}
}
