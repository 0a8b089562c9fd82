package models

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ProxyConfig maps a URL scheme ("http", "https") to the proxy URL used for
// requests with that scheme. It is loaded once and never mutated afterwards.
type ProxyConfig map[string]string

// Parsed validates every entry and returns them keyed by lower-cased scheme.
func (p ProxyConfig) Parsed() (map[string]*url.URL, error) {
	parsed := make(map[string]*url.URL, len(p))
	for scheme, raw := range p {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid %s proxy URL %q", scheme, raw)
		}
		parsed[strings.ToLower(scheme)] = u
	}
	return parsed, nil
}

// ProxyFunc returns a function suitable for http.Transport.Proxy. Requests
// whose scheme has no entry go direct.
func (p ProxyConfig) ProxyFunc() (func(*http.Request) (*url.URL, error), error) {
	parsed, err := p.Parsed()
	if err != nil {
		return nil, err
	}
	return func(req *http.Request) (*url.URL, error) {
		return parsed[strings.ToLower(req.URL.Scheme)], nil
	}, nil
}
