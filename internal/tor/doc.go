// Package tor provides Tor network connectivity for onionscrap.
//
// It wraps a SOCKS5 proxy connection to the Tor network and produces
// HTTP clients configured for hidden-service crawling. The proxy can be
// an external Tor daemon or an embedded one managed through tornago.
//
// The package is designed to be used with dependency injection - create
// a Client and pass its HTTP client to the fetcher rather than using
// global state. Only hidden-service traffic goes through Tor; the
// search and inference adapters use regular clearnet clients.
package tor
