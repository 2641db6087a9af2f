// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard
// slog package.
//
// The SecureHandler automatically sanitizes sensitive information in
// log output:
//   - HTTP headers (Authorization, Cookie, X-Api-Key)
//   - Inference API keys (OpenRouter "sk-or-..." tokens)
//   - Secret values detected by pattern matching (passwords, tokens, keys)
//   - Tor hidden-service secret key markers
//
// The inference API key travels with every analysis request, so even in
// verbose mode sensitive values are masked to prevent accidental
// exposure in logs that may be shared or stored.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("request sent",
//	    "authorization", "Bearer sk-or-...",  // sanitized
//	    "url", "http://example.onion",
//	)
//
//	slog.SetDefault(logger)
//
// The handler is compatible with any component that accepts a
// *slog.Logger, including tornago's embedded Tor daemon.
package log
