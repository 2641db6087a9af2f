package tor

import "errors"

// Proxy failures are classified instead of wrapped generically so the
// CLI can tell the operator what to fix before any crawl starts: point
// at the right port, start the daemon, or wait out a slow bootstrap.
// A crawl that begins against a broken proxy would only surface as a
// wall of per-page network failures much later.
var (
	// ErrProxyNotTor means something answered at the proxy address but
	// the SOCKS5 handshake did not behave like Tor. Usually an HTTP
	// proxy or an unrelated service is listening on that port.
	ErrProxyNotTor = errors.New("proxy is not a Tor SOCKS5 proxy")

	// ErrProxyCannotConnect means the TCP dial to the proxy address
	// failed. Tor is not running there, or the address is wrong.
	ErrProxyCannotConnect = errors.New("cannot connect to Tor proxy")

	// ErrProxyTimeout means the connectivity probe timed out. The
	// daemon may still be bootstrapping circuits.
	ErrProxyTimeout = errors.New("timeout connecting to Tor proxy")

	// ErrInvalidProxyAddress means the configured address is not in
	// host:port form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// ProxyStatus is the outcome of the pre-crawl proxy probe. The CLI
// prints it, and Error converts it back to a sentinel for callers that
// branch with errors.Is.
type ProxyStatus int

const (
	// ProxyStatusOK means the proxy completed a Tor-style SOCKS5
	// handshake and crawling can proceed.
	ProxyStatusOK ProxyStatus = iota

	// ProxyStatusWrongType means the address is reachable but is not a
	// Tor SOCKS5 proxy.
	ProxyStatusWrongType

	// ProxyStatusCannotConnect means the proxy address did not accept
	// a TCP connection.
	ProxyStatusCannotConnect

	// ProxyStatusTimeout means the probe ran out of time.
	ProxyStatusTimeout
)

// String returns a short operator-facing description of the status.
func (s ProxyStatus) String() string {
	switch s {
	case ProxyStatusOK:
		return "OK"
	case ProxyStatusWrongType:
		return "wrong type (not Tor)"
	case ProxyStatusCannotConnect:
		return "cannot connect"
	case ProxyStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error maps the status to its sentinel error, or nil for OK.
func (s ProxyStatus) Error() error {
	switch s {
	case ProxyStatusOK:
		return nil
	case ProxyStatusWrongType:
		return ErrProxyNotTor
	case ProxyStatusCannotConnect:
		return ErrProxyCannotConnect
	case ProxyStatusTimeout:
		return ErrProxyTimeout
	default:
		return errors.New("unknown proxy status")
	}
}
