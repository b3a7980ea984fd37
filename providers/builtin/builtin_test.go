package builtin

import (
	"errors"
	"testing"

	slopplot "github.com/haowjy/slopplot-go"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestNewRegistry_Linked(t *testing.T) {
	r := NewRegistry()

	got := r.Registered()
	want := []slopplot.ProviderID{
		slopplot.ProviderAnthropic,
		slopplot.ProviderLorem,
		slopplot.ProviderOpenAI,
		slopplot.ProviderOpenRouter,
	}
	if len(got) != len(want) {
		t.Fatalf("Registered() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Registered()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNewRegistry_Resolve(t *testing.T) {
	r := NewRegistry()
	r.SetLookupEnv(env(map[string]string{
		"OPENAI_API_KEY":     "sk-openai",
		"OPENROUTER_API_KEY": "sk-or",
		"ANTHROPIC_API_KEY":  "sk-ant",
	}))

	for _, id := range []slopplot.ProviderID{
		slopplot.ProviderOpenAI,
		slopplot.ProviderOpenRouter,
		slopplot.ProviderAnthropic,
		slopplot.ProviderLorem,
	} {
		p, err := r.Resolve(id)
		if err != nil {
			t.Fatalf("Resolve(%s) error = %v", id, err)
		}
		if p.Name() != id {
			t.Fatalf("Resolve(%s).Name() = %s", id, p.Name())
		}
	}
}

func TestNewRegistry_GoogleNotLinked(t *testing.T) {
	r := NewRegistry()
	r.SetLookupEnv(env(map[string]string{"GEMINI_API_KEY": "g"}))

	_, err := r.Resolve(slopplot.ProviderGoogle)
	var depErr *slopplot.DependencyError
	if !errors.As(err, &depErr) {
		t.Fatalf("err = %v, want DependencyError", err)
	}
}

func TestNewRegistry_MissingCredential(t *testing.T) {
	r := NewRegistry()
	r.SetLookupEnv(env(nil))

	_, err := r.Resolve(slopplot.ProviderOpenAI)
	if !slopplot.IsAuthError(err) {
		t.Fatalf("err = %v, want auth error", err)
	}
}
