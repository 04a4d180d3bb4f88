package shortcode

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

var scriptSrcPattern = regexp.MustCompile(`(?i)^<script[^>]*\bsrc\s*=\s*"([^"]*)"`)

// Sanitizer is a conservative implementation that rejects inline script tags
// and enforces URL schemes. Script tags sourcing an allowed host survive so
// embed shortcodes such as gist keep working.
type Sanitizer struct {
	allowedSchemes     map[string]struct{}
	allowedScriptHosts map[string]struct{}
}

// SanitizerOption configures the sanitizer instance.
type SanitizerOption func(*Sanitizer)

// WithAllowedScriptHosts extends the hosts that external script tags may source from.
func WithAllowedScriptHosts(hosts ...string) SanitizerOption {
	return func(s *Sanitizer) {
		for _, host := range hosts {
			host = strings.ToLower(strings.TrimSpace(host))
			if host == "" {
				continue
			}
			s.allowedScriptHosts[host] = struct{}{}
		}
	}
}

// NewSanitizer returns a sanitizer allowing http/https URLs. The default
// script allowlist covers the hosts the bundled embed shortcodes source from.
func NewSanitizer(opts ...SanitizerOption) *Sanitizer {
	s := &Sanitizer{
		allowedSchemes: map[string]struct{}{
			"http":  {},
			"https": {},
			"":      {},
		},
		allowedScriptHosts: map[string]struct{}{
			"gist.github.com": {},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sanitize rejects script injections while preserving safe markup.
func (s *Sanitizer) Sanitize(html string) (string, error) {
	lower := strings.ToLower(html)
	offset := 0
	for {
		idx := strings.Index(lower[offset:], "<script")
		if idx < 0 {
			return html, nil
		}
		idx += offset

		match := scriptSrcPattern.FindStringSubmatch(html[idx:])
		if match == nil {
			return "", fmt.Errorf("shortcode: inline script tags are not allowed")
		}
		if err := s.validateScriptSource(match[1]); err != nil {
			return "", err
		}
		offset = idx + len("<script")
	}
}

func (s *Sanitizer) validateScriptSource(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("shortcode: script source %q: %w", raw, err)
	}
	if parsed.Scheme != "https" {
		return fmt.Errorf("shortcode: script source %q must use https", raw)
	}
	host := strings.ToLower(parsed.Hostname())
	if _, ok := s.allowedScriptHosts[host]; !ok {
		return fmt.Errorf("shortcode: script host %q not permitted", host)
	}
	return nil
}

// ValidateURL ensures the URL has an allowed scheme.
func (s *Sanitizer) ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}

	if _, ok := s.allowedSchemes[strings.ToLower(parsed.Scheme)]; !ok {
		return fmt.Errorf("shortcode: url scheme %q not permitted", parsed.Scheme)
	}
	return nil
}

var _ interfaces.ShortcodeSanitizer = (*Sanitizer)(nil)
