package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.Handler, tokens TokenSource) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, Tokens: tokens})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestClientAttachesBearerToken(t *testing.T) {
	var got string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}), staticToken("tok-123"))

	var out map[string]any
	if err := c.Get(context.Background(), "/properties", nil, &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "Bearer tok-123" {
		t.Fatalf("Authorization=%q want %q", got, "Bearer tok-123")
	}
}

func TestClientOmitsHeaderWithoutToken(t *testing.T) {
	var got string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}), staticToken(""))

	if err := c.Get(context.Background(), "/properties", nil, nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "" {
		t.Fatalf("Authorization=%q want empty", got)
	}
}

func TestClientServerMessageSurfacesVerbatim(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"Property is not available"}`))
	}), nil)

	err := c.Post(context.Background(), "/reservations", map[string]int{"propertyId": 1}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T want *Error", err)
	}
	if apiErr.Status != 409 || apiErr.Message != "Property is not available" {
		t.Fatalf("got status=%d message=%q", apiErr.Status, apiErr.Message)
	}
	if msg := Message(err, "fallback"); msg != "Property is not available" {
		t.Fatalf("Message=%q want server text", msg)
	}
}

func TestClientFallbackWhenBodyHasNoMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`oops`))
	}), nil)

	err := c.Get(context.Background(), "/properties", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if msg := Message(err, "Failed to fetch properties"); msg != "Failed to fetch properties" {
		t.Fatalf("Message=%q want fallback", msg)
	}
}

func TestClientUnauthorizedFiresHook(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthorized"}`))
	}), staticToken("stale"))

	var calls atomic.Int32
	c.SetUnauthorizedHook(func() { calls.Add(1) })

	err := c.Get(context.Background(), "/users/profile", nil, nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("errors.Is(err, ErrUnauthorized)=false, err=%v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("hook fired %d times want 1", calls.Load())
	}
}

func TestClientNetworkFailureIsCategorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.Get(context.Background(), "/properties", nil, nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("errors.Is(err, ErrNetwork)=false, err=%v", err)
	}
	if msg := Message(err, "fallback"); !strings.Contains(msg, "Network error") {
		t.Fatalf("Message=%q want network text", msg)
	}
}

func TestClientUploadSendsMultipart(t *testing.T) {
	var field, filename, content string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		field, filename, content = "file", header.Filename, string(data)
		w.Write([]byte(`{}`))
	}), nil)

	body := bytes.NewBufferString("png-bytes")
	if err := c.Upload(context.Background(), "/properties/1/images", "file", "front.png", body, nil); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if field != "file" || filename != "front.png" || content != "png-bytes" {
		t.Fatalf("got field=%q filename=%q content=%q", field, filename, content)
	}
}

func TestPathResource(t *testing.T) {
	cases := map[string]string{
		"/properties/public/search": "properties",
		"/reservations":             "reservations",
		"/users/profile":            "users",
		"":                          "root",
	}
	for path, want := range cases {
		if got := pathResource(path); got != want {
			t.Fatalf("pathResource(%q)=%q want %q", path, got, want)
		}
	}
}
