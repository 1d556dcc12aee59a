package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const okBody = `{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"Course_titles\":[\"A\"]}"}]}],"usage":{"input_tokens":3,"output_tokens":5}}`

func newTestClient(t *testing.T, url string, retries int) Client {
	t.Helper()
	temp := 1.0
	c, err := NewClient(nil, Config{
		APIKey:       "test-key",
		BaseURL:      url,
		Model:        "test-model",
		Temperature:  &temp,
		Timeout:      5 * time.Second,
		MaxRetries:   retries,
		RetryBackoff: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(nil, Config{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err=%v, want ErrMissingAPIKey", err)
	}
}

func TestGenerateTextSendsPromptAndReadsOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path=%s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization=%q", got)
		}
		var req responsesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "test-model" || len(req.Input) != 2 {
			t.Errorf("req=%+v", req)
		}
		if req.Input[0].Role != "system" || req.Input[1].Content != "learn go" {
			t.Errorf("input=%+v", req.Input)
		}
		_, _ = io.WriteString(w, okBody)
	}))
	defer srv.Close()

	text, err := newTestClient(t, srv.URL, 0).GenerateText(context.Background(), "sys", "learn go")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != `{"Course_titles":["A"]}` {
		t.Fatalf("text=%q", text)
	}
}

func TestGenerateTextRetriesRetryableStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, "busy")
			return
		}
		_, _ = io.WriteString(w, okBody)
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv.URL, 3).GenerateText(context.Background(), "sys", "u"); err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("calls=%d, want 3", got)
	}
}

func TestGenerateTextDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "bad key")
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 3).GenerateText(context.Background(), "sys", "u")
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err=%v, want HTTPError 401", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls=%d, want 1", got)
	}
}

func TestGenerateTextDropsRejectedTemperature(t *testing.T) {
	var withTemp, withoutTemp int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), `"temperature"`) {
			atomic.AddInt32(&withTemp, 1)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"Unsupported parameter: 'temperature'"}}`)
			return
		}
		atomic.AddInt32(&withoutTemp, 1)
		_, _ = io.WriteString(w, okBody)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	for i := 0; i < 2; i++ {
		if _, err := c.GenerateText(context.Background(), "sys", "u"); err != nil {
			t.Fatalf("GenerateText #%d: %v", i, err)
		}
	}
	if a, b := atomic.LoadInt32(&withTemp), atomic.LoadInt32(&withoutTemp); a != 1 || b != 2 {
		t.Fatalf("withTemp=%d withoutTemp=%d, want 1 and 2", a, b)
	}
}

func TestGenerateTextHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestClient(t, srv.URL, 3).GenerateText(ctx, "sys", "u")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v, want context.DeadlineExceeded", err)
	}
}

func TestGenerateTextEmptyOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"output":[]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 0).GenerateText(context.Background(), "sys", "u")
	if !errors.Is(err, ErrEmptyOutput) {
		t.Fatalf("err=%v, want ErrEmptyOutput", err)
	}
}
