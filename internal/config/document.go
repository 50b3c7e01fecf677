package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Document is the top-level structure of a feedloader.yaml file.
type Document struct {
	Feeds []FeedConfig `yaml:"feeds"`
	HTTP  *HTTPConfig  `yaml:"http,omitempty"`
}

// FeedConfig names one feed resource.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// HTTPConfig overrides the HTTP transport settings taken from the environment.
type HTTPConfig struct {
	Timeout      string `yaml:"timeout,omitempty"`
	UserAgent    string `yaml:"user_agent,omitempty"`
	MaxBodyBytes int64  `yaml:"max_body_bytes,omitempty"`
}

func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

// ParseDocument decodes and validates a document. Unknown keys are rejected.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse feedloader document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) Validate() error {
	if len(d.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	seen := make(map[string]bool, len(d.Feeds))
	for i, f := range d.Feeds {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return fmt.Errorf("feed %d: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("feed %d: duplicate name %q", i, name)
		}
		seen[name] = true
		if _, err := f.ParsedURL(); err != nil {
			return fmt.Errorf("feed %q: %w", name, err)
		}
	}
	if d.HTTP != nil {
		if _, err := d.HTTP.Apply(HTTPEnvConfig{}); err != nil {
			return fmt.Errorf("http: %w", err)
		}
	}
	return nil
}

// ParsedURL returns the feed URL, which must be an absolute http(s) URL.
func (f FeedConfig) ParsedURL() (*url.URL, error) {
	return ParseFeedURL(f.URL)
}

func ParseFeedURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("url %q must be an absolute http or https url", raw)
	}
	return u, nil
}

// Apply returns base with every field set in h overriding it.
func (h *HTTPConfig) Apply(base HTTPEnvConfig) (HTTPEnvConfig, error) {
	if h == nil {
		return base, nil
	}
	out := base
	if v := strings.TrimSpace(h.Timeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return base, fmt.Errorf("invalid timeout %q: %w", v, err)
		}
		if d <= 0 {
			return base, fmt.Errorf("timeout must be positive")
		}
		out.Timeout = d
	}
	if v := strings.TrimSpace(h.UserAgent); v != "" {
		out.UserAgent = v
	}
	if h.MaxBodyBytes < 0 {
		return base, fmt.Errorf("max_body_bytes must be >= 0")
	}
	if h.MaxBodyBytes > 0 {
		out.MaxBodyBytes = h.MaxBodyBytes
	}
	return out, nil
}
