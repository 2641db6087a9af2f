package tor

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"valid address", "127.0.0.1:9050", false},
		{"valid hostname", "localhost:9150", false},
		{"missing port", "127.0.0.1", true},
		{"empty host", ":9050", true},
		{"empty port", "127.0.0.1:", true},
		{"port out of range", "127.0.0.1:70000", true},
		{"port zero", "127.0.0.1:0", true},
		{"non-numeric port", "127.0.0.1:abc", true},
		{"empty address", "", true},
		{"too many colons", "127.0.0.1:9050:1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewClient(tt.address, 30*time.Second)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidProxyAddress) {
					t.Errorf("NewClient(%q) error = %v, want ErrInvalidProxyAddress", tt.address, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient(%q) error = %v", tt.address, err)
			}
			if c.ProxyAddress() != tt.address {
				t.Errorf("ProxyAddress() = %q, want %q", c.ProxyAddress(), tt.address)
			}
		})
	}
}

// fakeSocks5Server accepts one connection and speaks just enough SOCKS5
// for CheckConnection. The behavior parameter controls how it responds.
func fakeSocks5Server(t *testing.T, behavior string) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() }) //nolint:errcheck // Test cleanup

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close() //nolint:errcheck // Test server

		greeting := make([]byte, 3)
		if _, err := io.ReadFull(conn, greeting); err != nil {
			return
		}

		switch behavior {
		case "ok":
			// Accept no-auth, then reply "host unreachable" to the
			// CONNECT like Tor does for a non-existent onion.
			if _, err := conn.Write([]byte{socks5Version, socks5AuthNone}); err != nil {
				return
			}
			req := make([]byte, 256)
			if _, err := conn.Read(req); err != nil {
				return
			}
			_, _ = conn.Write([]byte{socks5Version, 0x04, 0x00, socks5AddrTypeDomID}) //nolint:errcheck // Test server
		case "auth-required":
			_, _ = conn.Write([]byte{socks5Version, socks5AuthNoAccept}) //nolint:errcheck // Test server
		case "not-socks":
			_, _ = conn.Write([]byte("HTTP/1.1 400 Bad Request\r\n\r\n")) //nolint:errcheck // Test server
		}
	}()

	return ln.Addr().String()
}

func TestClientCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("working proxy", func(t *testing.T) {
		t.Parallel()

		addr := fakeSocks5Server(t, "ok")
		c, err := NewClient(addr, 30*time.Second)
		if err != nil {
			t.Fatal(err)
		}

		if status := c.CheckConnection(context.Background()); status != ProxyStatusOK {
			t.Errorf("CheckConnection() = %v, want OK", status)
		}
	})

	t.Run("proxy requiring auth is not Tor", func(t *testing.T) {
		t.Parallel()

		addr := fakeSocks5Server(t, "auth-required")
		c, err := NewClient(addr, 30*time.Second)
		if err != nil {
			t.Fatal(err)
		}

		status := c.CheckConnection(context.Background())
		if status != ProxyStatusWrongType {
			t.Errorf("CheckConnection() = %v, want wrong type", status)
		}
		if !errors.Is(status.Error(), ErrProxyNotTor) {
			t.Errorf("status.Error() = %v, want ErrProxyNotTor", status.Error())
		}
	})

	t.Run("non-SOCKS service", func(t *testing.T) {
		t.Parallel()

		addr := fakeSocks5Server(t, "not-socks")
		c, err := NewClient(addr, 30*time.Second)
		if err != nil {
			t.Fatal(err)
		}

		if status := c.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("CheckConnection() = %v, want wrong type", status)
		}
	})

	t.Run("nothing listening", func(t *testing.T) {
		t.Parallel()

		// Reserve a port, then close it so nothing is listening.
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		addr := ln.Addr().String()
		ln.Close() //nolint:errcheck // Intentional close

		c, err := NewClient(addr, 30*time.Second)
		if err != nil {
			t.Fatal(err)
		}

		if status := c.CheckConnection(context.Background()); status != ProxyStatusCannotConnect {
			t.Errorf("CheckConnection() = %v, want cannot connect", status)
		}
	})
}

func TestClientNewHTTPClient(t *testing.T) {
	t.Parallel()

	c, err := NewClient("127.0.0.1:9050", 45*time.Second)
	if err != nil {
		t.Fatal(err)
	}

	httpClient := c.NewHTTPClient()
	if httpClient.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", httpClient.Timeout)
	}
	if httpClient.Jar == nil {
		t.Error("expected a cookie jar for session continuity")
	}
	if httpClient.CheckRedirect == nil {
		t.Error("expected a redirect limit")
	}
}

func TestProxyStatusString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ProxyStatus
		want   string
	}{
		{ProxyStatusOK, "OK"},
		{ProxyStatusWrongType, "wrong type (not Tor)"},
		{ProxyStatusCannotConnect, "cannot connect"},
		{ProxyStatusTimeout, "timeout"},
		{ProxyStatus(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("ProxyStatus(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
