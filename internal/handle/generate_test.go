package handle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/tobyward/chronoflux/internal/flux"
	"github.com/tobyward/chronoflux/internal/page"
	"github.com/tobyward/chronoflux/internal/request"
	"github.com/tobyward/chronoflux/internal/store"
)

type fakeGenerator struct {
	calls   int
	lastKey string
	result  *flux.Result
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, key string, _ request.Params) (*flux.Result, error) {
	f.calls++
	f.lastKey = key
	return f.result, f.err
}

func newTestHandler(t *testing.T, gen flux.Generator, key string) (*GenerateHandler, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemory(time.Minute)
	t.Cleanup(func() { _ = st.Shutdown() })
	return &GenerateHandler{
		generator: gen,
		store:     st,
		templator: &page.Templator{},
		key:       key,
	}, st
}

func postForm(t *testing.T, h *GenerateHandler, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestGenerateEmptyPromptShortCircuits(t *testing.T) {
	gen := &fakeGenerator{}
	h, _ := newTestHandler(t, gen, "server-key")

	rec := postForm(t, h, url.Values{"prompt": {"   "}})
	if gen.calls != 0 {
		t.Errorf("generator called %d times for empty prompt, want 0", gen.calls)
	}
	if !strings.Contains(rec.Body.String(), "prompt must not be empty") {
		t.Error("response missing validation message")
	}
}

func TestGenerateSuccess(t *testing.T) {
	gen := &fakeGenerator{result: &flux.Result{Data: []byte("png bytes"), Format: "png"}}
	h, st := newTestHandler(t, gen, "server-key")

	rec := postForm(t, h, url.Values{"prompt": {"a clepsydra at dawn"}})
	if gen.calls != 1 {
		t.Fatalf("generator calls: got %d, want 1", gen.calls)
	}
	if gen.lastKey != "server-key" {
		t.Errorf("key: got %q, want configured server key", gen.lastKey)
	}

	match := regexp.MustCompile(`/images/([0-9a-f-]+)`).FindStringSubmatch(rec.Body.String())
	if match == nil {
		t.Fatal("response missing image URL")
	}
	img, err := st.Get(context.Background(), match[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(img.Data) != "png bytes" {
		t.Errorf("stored image: got %q", img.Data)
	}
}

func TestGenerateFormKeyOverridesConfigured(t *testing.T) {
	gen := &fakeGenerator{result: &flux.Result{Data: []byte("x"), Format: "png"}}
	h, _ := newTestHandler(t, gen, "server-key")

	postForm(t, h, url.Values{"prompt": {"a metronome"}, "api_key": {"form-key"}})
	if gen.lastKey != "form-key" {
		t.Errorf("key: got %q, want form-supplied key", gen.lastKey)
	}
}

func TestGenerateNoKeyConfigured(t *testing.T) {
	gen := &fakeGenerator{}
	h, _ := newTestHandler(t, gen, "")

	rec := postForm(t, h, url.Values{"prompt": {"a metronome"}})
	if gen.calls != 0 {
		t.Errorf("generator called without a key, want 0 calls")
	}
	if !strings.Contains(rec.Body.String(), "no API key configured") {
		t.Error("response missing missing-key message")
	}
}

func TestGenerateServiceFailure(t *testing.T) {
	gen := &fakeGenerator{err: &flux.GenerationError{Reason: "bad prompt"}}
	h, _ := newTestHandler(t, gen, "server-key")

	rec := postForm(t, h, url.Values{"prompt": {"a metronome"}})
	if !strings.Contains(rec.Body.String(), "bad prompt") {
		t.Error("response missing service failure reason")
	}
	if strings.Contains(rec.Body.String(), "/images/") {
		t.Error("failure page should not link an image")
	}
}

func TestGenerateValidationEchoesInput(t *testing.T) {
	gen := &fakeGenerator{}
	h, _ := newTestHandler(t, gen, "server-key")

	rec := postForm(t, h, url.Values{"prompt": {"a water clock"}, "steps": {"99"}})
	body := rec.Body.String()
	if !strings.Contains(body, "steps must be between 20 and 50") {
		t.Error("response missing steps validation message")
	}
	if !strings.Contains(body, "a water clock") {
		t.Error("response should echo the submitted prompt")
	}
}
