package frontier

import (
	"net/url"
	"strings"
)

// defaultPorts maps schemes to the port that may be omitted.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Normalize reduces a URL to its deduplication key: lowercased scheme
// and host, default port dropped, fragment and query stripped, and the
// trailing slash normalized so that "http://x.onion", "http://x.onion/"
// and "http://x.onion/#top" all collapse to the same key.
//
// Design decision: The key is scheme+host+path only. Onion services
// rarely vary content by query string, and treating "?session=..."
// style URLs as distinct pages turns a small site into an unbounded
// crawl. The original URL is still fetched as discovered; only the
// dedup key is reduced.
func Normalize(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		// Unparseable input dedups on its literal form.
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawQuery = ""
	u.User = nil

	if port := u.Port(); port != "" && port == defaultPorts[u.Scheme] {
		u.Host = u.Hostname()
	}

	// Root path and empty path are the same page.
	switch u.Path {
	case "":
		u.Path = "/"
	default:
		if u.Path != "/" {
			u.Path = strings.TrimRight(u.Path, "/")
		}
	}

	return u.String()
}
