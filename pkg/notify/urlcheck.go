package notify

import (
	"fmt"
	"net"
	"net/url"
)

// URLCheckOption adjusts ValidateEndpointURL.
type URLCheckOption func(*urlCheck)

type urlCheck struct {
	allowLocal bool
}

// AllowLocalTargets permits loopback and private addresses. Local
// tooling endpoints are the common case on a dictation workstation, so
// the service enables this by default; the option exists so a shared
// deployment can keep the strict check.
func AllowLocalTargets() URLCheckOption {
	return func(c *urlCheck) { c.allowLocal = true }
}

// ValidateEndpointURL rejects endpoint URLs that are not plain HTTP(S)
// or that point at loopback/private ranges when local targets are not
// allowed.
func ValidateEndpointURL(raw string, opts ...URLCheckOption) error {
	var c urlCheck
	for _, opt := range opts {
		opt(&c)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("missing host")
	}

	if c.allowLocal {
		return nil
	}

	if host == "localhost" {
		return fmt.Errorf("local target %q not allowed", host)
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("local target %q not allowed", host)
		}
	}
	return nil
}
