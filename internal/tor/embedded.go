package tor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultStartupTimeout bounds how long an embedded daemon may spend
// bootstrapping before startup is abandoned. Bootstrap needs to pull
// directory information and build initial circuits, which commonly
// takes one to three minutes on a cold start.
const DefaultStartupTimeout = 3 * time.Minute

// EmbeddedTor runs a Tor daemon in-process via tornago so the tool
// works without an operator-managed Tor installation. hunt and analyze
// start one daemon per invocation, run every crawl job in the batch
// through its SOCKS port, and stop it on exit; --external-tor bypasses
// this entirely for operators who already keep a daemon running.
type EmbeddedTor struct {
	// process is the running daemon, nil until Start succeeds and
	// again after Stop.
	process *tornago.TorProcess

	// socksAddr and controlAddr are the listener addresses the daemon
	// picked, recorded after a successful bootstrap.
	socksAddr   string
	controlAddr string

	// startupTimeout bounds the bootstrap wait in Start.
	startupTimeout time.Duration
}

// EmbeddedTorOption configures an EmbeddedTor instance.
type EmbeddedTorOption func(*EmbeddedTor)

// WithStartupTimeout overrides DefaultStartupTimeout. The CLI feeds
// the --tor-timeout flag through here.
func WithStartupTimeout(timeout time.Duration) EmbeddedTorOption {
	return func(e *EmbeddedTor) {
		e.startupTimeout = timeout
	}
}

// NewEmbeddedTor creates an embedded daemon manager. Nothing runs
// until Start is called.
func NewEmbeddedTor(opts ...EmbeddedTorOption) *EmbeddedTor {
	e := &EmbeddedTor{
		startupTimeout: DefaultStartupTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the daemon and blocks until it has bootstrapped or
// the startup timeout elapses. Both listeners bind to OS-assigned
// ports, so several invocations can run on one machine without port
// fights.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	// Blocks until bootstrap completes or the timeout fires.
	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	// The operator may have interrupted the run while Tor was still
	// bootstrapping; don't leave an orphaned daemon behind.
	if ctx.Err() != nil {
		_ = process.Stop() //nolint:errcheck // Best effort cleanup
		return ctx.Err()
	}

	e.process = process
	e.socksAddr = process.SocksAddr()
	e.controlAddr = process.ControlAddr()
	return nil
}

// Stop shuts the daemon down. Safe to call repeatedly and on an
// instance that never started, so CLI cleanup paths can call it
// unconditionally.
func (e *EmbeddedTor) Stop() error {
	if e.process == nil {
		return nil
	}
	err := e.process.Stop()
	e.process = nil
	return err
}

// SocksAddr returns the daemon's SOCKS5 address in host:port form, or
// an empty string before Start. Fetchers reach hidden services through
// this address.
func (e *EmbeddedTor) SocksAddr() string {
	return e.socksAddr
}

// ControlAddr returns the daemon's control port address, or an empty
// string before Start. Crawling itself never touches the control port;
// the address is logged for operators debugging the daemon.
func (e *EmbeddedTor) ControlAddr() string {
	return e.controlAddr
}

// IsRunning reports whether the daemon is up.
func (e *EmbeddedTor) IsRunning() bool {
	return e.process != nil
}

// NewClient builds a SOCKS5 client pointed at the running daemon. The
// timeout becomes the per-request HTTP timeout for crawl fetches.
func (e *EmbeddedTor) NewClient(timeout time.Duration) (*Client, error) {
	if !e.IsRunning() {
		return nil, errors.New("embedded Tor daemon is not running")
	}
	return NewClient(e.socksAddr, timeout)
}
