// Package config provides configuration structures and utilities for
// onionscrap. It defines the options for crawling hidden services,
// seed discovery, content analysis, and report generation.
package config
