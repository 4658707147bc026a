package summarize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDisabledWithoutKey(t *testing.T) {
	s := New(Config{}, nil)
	if _, ok := s.(Disabled); !ok {
		t.Fatalf("expected Disabled, got %T", s)
	}
	if got := s.Summarize(context.Background(), "anything"); got != "" {
		t.Errorf("Disabled.Summarize: got %q, want empty", got)
	}
}

func TestSummarizeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  Acme builds Alpha (https://acme.example/project/a1).  "}, "finish_reason": "stop"}]
		}`))
	}))
	defer srv.Close()

	s := New(Config{APIKey: "test", BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
	got := s.Summarize(context.Background(), "kb text")
	want := "Acme builds Alpha (https://acme.example/project/a1)."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSummarizeHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	s := New(Config{APIKey: "test", BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
	if got := s.Summarize(context.Background(), "kb text"); got != "" {
		t.Errorf("HTTP failure: got %q, want empty", got)
	}
}

func TestSummarizeNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "chatcmpl-2", "object": "chat.completion", "choices": []}`))
	}))
	defer srv.Close()

	s := New(Config{APIKey: "test", BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
	if got := s.Summarize(context.Background(), "kb text"); got != "" {
		t.Errorf("no choices: got %q, want empty", got)
	}
}

func TestSummarizeTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	s := New(Config{APIKey: "test", BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
	start := time.Now()
	if got := s.Summarize(context.Background(), "kb text"); got != "" {
		t.Errorf("timeout: got %q, want empty", got)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout not bounded")
	}
}
