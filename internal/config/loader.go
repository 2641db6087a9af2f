package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".onionscrap"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File mirrors the YAML configuration file. Every field is optional;
// only values present in the file override the built-in defaults,
// and CLI flags override both.
type File struct {
	// TorProxyAddress overrides the Tor SOCKS5 proxy address.
	TorProxyAddress string `yaml:"torProxyAddress,omitempty"`

	// JobTimeoutSeconds overrides the per-seed crawl timeout.
	JobTimeoutSeconds int `yaml:"jobTimeoutSeconds,omitempty"`

	// BatchTimeoutSeconds overrides the bulk-run timeout.
	BatchTimeoutSeconds int `yaml:"batchTimeoutSeconds,omitempty"`

	// Depth overrides the crawl depth.
	Depth *int `yaml:"depth,omitempty"`

	// Ceiling overrides the per-seed page ceiling.
	Ceiling int `yaml:"ceiling,omitempty"`

	// FetchConcurrency overrides the per-crawl fetch concurrency.
	FetchConcurrency int `yaml:"fetchConcurrency,omitempty"`

	// BatchConcurrency overrides the bulk seed concurrency.
	BatchConcurrency int `yaml:"batchConcurrency,omitempty"`

	// MaxSites overrides the bulk seed cap.
	MaxSites int `yaml:"maxSites,omitempty"`

	// SearchBaseURL overrides the search engine root.
	SearchBaseURL string `yaml:"searchBaseURL,omitempty"`

	// InferenceBaseURL overrides the inference API root.
	InferenceBaseURL string `yaml:"inferenceBaseURL,omitempty"`

	// Model overrides the inference model identifier.
	Model string `yaml:"model,omitempty"`

	// Instruction overrides the analysis instruction.
	Instruction string `yaml:"instruction,omitempty"`

	// UserAgent overrides the crawler User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// CrawlRate overrides the per-crawl request rate in requests per
	// second.
	CrawlRate float64 `yaml:"crawlRate,omitempty"`
}

// LoadConfigFile loads configuration overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// ApplyTo overrides the config with values present in the file.
// Zero-valued fields in the file leave the config untouched, except
// Depth which distinguishes "absent" from an explicit 0 via pointer.
func (cf *File) ApplyTo(c *Config) {
	if cf.TorProxyAddress != "" {
		c.TorProxyAddress = cf.TorProxyAddress
	}
	if cf.JobTimeoutSeconds > 0 {
		c.JobTimeout = time.Duration(cf.JobTimeoutSeconds) * time.Second
	}
	if cf.BatchTimeoutSeconds > 0 {
		c.BatchTimeout = time.Duration(cf.BatchTimeoutSeconds) * time.Second
	}
	if cf.Depth != nil && *cf.Depth >= 0 {
		c.CrawlDepth = *cf.Depth
	}
	if cf.Ceiling > 0 {
		c.CrawlCeiling = cf.Ceiling
	}
	if cf.FetchConcurrency > 0 {
		c.FetchConcurrency = cf.FetchConcurrency
	}
	if cf.BatchConcurrency > 0 {
		c.BatchConcurrency = cf.BatchConcurrency
	}
	if cf.MaxSites > 0 {
		c.MaxSites = cf.MaxSites
	}
	if cf.SearchBaseURL != "" {
		c.SearchBaseURL = cf.SearchBaseURL
	}
	if cf.InferenceBaseURL != "" {
		c.InferenceBaseURL = cf.InferenceBaseURL
	}
	if cf.Model != "" {
		c.Model = cf.Model
	}
	if cf.Instruction != "" {
		c.Instruction = cf.Instruction
	}
	if cf.UserAgent != "" {
		c.UserAgent = cf.UserAgent
	}
	if cf.CrawlRate > 0 {
		c.CrawlRate = cf.CrawlRate
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .onionscrap in the current directory
//  3. Look for config.yaml in the XDG config directory
//  4. Look for .onionscrap in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
