// Package main provides the entry point for the onionscrap CLI.
//
// Onionscrap crawls Tor hidden services (.onion addresses) and analyzes
// the retrieved content with an LLM for OSINT triage.
//
// Usage:
//
//	onionscrap analyze <onion-url>
//	onionscrap hunt <query>
//
// See --help for all available options.
package main

// main is the entry point for onionscrap.
func main() {
	Execute()
}
