package fetch

import (
	"strings"
	"testing"
)

// TestParse tests HTML extraction.
func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("extracts title, links, and text", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><title>Hidden Market</title>
<script>var x = "noise";</script>
<style>body { color: red }</style></head>
<body>
<h1>Welcome</h1>
<p>Contact us on the forum.</p>
<a href="/listings">Listings</a>
<a href="http://other.onion/about">About</a>
<a href="mailto:admin@example.com">Mail</a>
<a href="javascript:void(0)">JS</a>
<a href="/listings">Listings again</a>
</body></html>`

		result, err := Parse("http://market.onion/", strings.NewReader(page))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Title != "Hidden Market" {
			t.Errorf("Title = %q, want %q", result.Title, "Hidden Market")
		}

		wantLinks := []string{
			"http://market.onion/listings",
			"http://other.onion/about",
		}
		if len(result.Links) != len(wantLinks) {
			t.Fatalf("Links = %v, want %v", result.Links, wantLinks)
		}
		for i, want := range wantLinks {
			if result.Links[i] != want {
				t.Errorf("Links[%d] = %q, want %q", i, result.Links[i], want)
			}
		}

		if !strings.Contains(result.Text, "Contact us on the forum.") {
			t.Errorf("Text missing body content: %q", result.Text)
		}
		if strings.Contains(result.Text, "noise") {
			t.Errorf("Text contains script content: %q", result.Text)
		}
		if strings.Contains(result.Text, "color: red") {
			t.Errorf("Text contains style content: %q", result.Text)
		}
		if strings.Contains(result.Text, "Hidden Market") {
			t.Errorf("Text contains title content: %q", result.Text)
		}
	})

	t.Run("relative links resolve against nested paths", func(t *testing.T) {
		t.Parallel()

		page := `<a href="../up">up</a><a href="sibling">side</a>`
		result, err := Parse("http://site.onion/a/b/page", strings.NewReader(page))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"http://site.onion/a/up", "http://site.onion/a/b/sibling"}
		if len(result.Links) != 2 || result.Links[0] != want[0] || result.Links[1] != want[1] {
			t.Errorf("Links = %v, want %v", result.Links, want)
		}
	})

	t.Run("malformed HTML still parses", func(t *testing.T) {
		t.Parallel()

		page := `<html><body><p>unclosed <a href="/x">link</body>`
		result, err := Parse("http://site.onion/", strings.NewReader(page))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Links) != 1 {
			t.Errorf("expected 1 link from malformed HTML, got %d", len(result.Links))
		}
	})

	t.Run("invalid base URL returns error", func(t *testing.T) {
		t.Parallel()

		if _, err := Parse("http://bad url with spaces/", strings.NewReader("<p>hi</p>")); err == nil {
			t.Error("expected error for invalid base URL")
		}
	})
}
