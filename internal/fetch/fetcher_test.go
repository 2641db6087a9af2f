package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/onionscrap/internal/model"
)

// TestFetcherFetch tests retrieval outcomes against a local server.
func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("successful HTML fetch extracts links and text", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><head><title>Home</title></head>` +
				`<body><p>hello world</p><a href="/next">next</a></body></html>`))
		}))
		defer srv.Close()

		f := New(srv.Client())
		result := f.Fetch(context.Background(), srv.URL+"/")

		if !result.OK() {
			t.Fatalf("expected OK, got %s (%s)", result.Status, result.Failure)
		}
		if result.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d, want 200", result.StatusCode)
		}
		if result.Title != "Home" {
			t.Errorf("Title = %q, want %q", result.Title, "Home")
		}
		if len(result.Links) != 1 || result.Links[0] != srv.URL+"/next" {
			t.Errorf("Links = %v, want [%s/next]", result.Links, srv.URL)
		}
		if !strings.Contains(result.Text, "hello world") {
			t.Errorf("Text = %q, missing body text", result.Text)
		}
	})

	t.Run("non-HTML content yields no links", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"a": "http://example.onion"}`))
		}))
		defer srv.Close()

		f := New(srv.Client())
		result := f.Fetch(context.Background(), srv.URL)

		if !result.OK() {
			t.Fatalf("expected OK, got %s", result.Status)
		}
		if len(result.Links) != 0 {
			t.Errorf("expected no links from JSON body, got %v", result.Links)
		}
	})

	t.Run("server error classified as http-error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		f := New(srv.Client())
		result := f.Fetch(context.Background(), srv.URL)

		if result.Status != model.FetchStatusHTTPError {
			t.Errorf("Status = %s, want http-error", result.Status)
		}
		if result.StatusCode != http.StatusInternalServerError {
			t.Errorf("StatusCode = %d, want 500", result.StatusCode)
		}
		if len(result.Links) != 0 {
			t.Errorf("expected no links on error, got %v", result.Links)
		}
	})

	t.Run("unreachable server classified as network-error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		addr := srv.URL
		srv.Close()

		f := New(&http.Client{})
		result := f.Fetch(context.Background(), addr)

		if result.Status != model.FetchStatusNetworkError {
			t.Errorf("Status = %s, want network-error", result.Status)
		}
		if result.Failure == "" {
			t.Error("expected failure detail")
		}
	})

	t.Run("deadline classified as timeout", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(500 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		}))
		defer srv.Close()

		f := New(srv.Client())
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		result := f.Fetch(ctx, srv.URL)
		if result.Status != model.FetchStatusTimeout {
			t.Errorf("Status = %s, want timeout", result.Status)
		}
	})

	t.Run("body size capped", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 1024)))
		}))
		defer srv.Close()

		f := New(srv.Client(), WithMaxBodySize(100))
		result := f.Fetch(context.Background(), srv.URL)

		if !result.OK() {
			t.Fatalf("expected OK, got %s", result.Status)
		}
		if len(result.Body) != 100 {
			t.Errorf("Body length = %d, want 100", len(result.Body))
		}
	})

	t.Run("invalid input rejected without I/O", func(t *testing.T) {
		t.Parallel()

		f := New(&http.Client{})
		result := f.Fetch(context.Background(), "ftp://example.com/file")

		if result.Status != model.FetchStatusInput {
			t.Errorf("Status = %s, want input-error", result.Status)
		}
	})
}

// TestValidateTargetURL tests pre-I/O URL validation.
func TestValidateTargetURL(t *testing.T) {
	t.Parallel()

	validV3 := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqd.onion"

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{
			name: "plain http URL",
			url:  "http://example.com/page",
		},
		{
			name: "https URL",
			url:  "https://example.com/",
		},
		{
			name: "valid v3 onion URL",
			url:  "http://" + validV3 + "/market",
		},
		{
			name: "v2-format onion URL",
			url:  "http://facebookcorewwwi.onion/",
		},
		{
			name:    "empty",
			url:     "   ",
			wantErr: ErrEmptyURL,
		},
		{
			name:    "unsupported scheme",
			url:     "gopher://example.com/",
			wantErr: ErrUnsupportedScheme,
		},
		{
			name:    "missing host",
			url:     "http:///path",
			wantErr: ErrInvalidURL,
		},
		{
			name:    "onion host with bad checksum",
			url:     "http://" + strings.Repeat("a", 56) + ".onion/",
			wantErr: ErrInvalidOnionHost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateTargetURL(tt.url)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
