// Package clientip extracts the client IP address of an HTTP request from a
// configurable, ordered list of proxy headers and classifies whether the
// address is publicly routable.
//
// Headers are checked in order. The first header that is present and
// non-empty wins: its value is split on commas and the first candidate that is
// neither empty nor the literal "unknown" is returned as is. When no header
// yields a candidate the connection address (without port) is used.
//
// The special name RemoteAddr ("REMOTE_ADDR") refers to the connection address
// and may appear anywhere in the list. CGI-style names such as
// "HTTP_X_FORWARDED_FOR" are accepted and mapped to "X-Forwarded-For".
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RemoteAddr names the connection address in a header list.
const RemoteAddr = "REMOTE_ADDR"

// DefaultHeaders is the header precedence used when none is configured.
var DefaultHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"X-Forwarded",
	"X-Cluster-Client-IP",
	"Forwarded-For",
	"Forwarded",
	RemoteAddr,
}

// Resolver extracts client IPs using a fixed header precedence.
type Resolver struct {
	headers []string
}

// New creates a resolver for the given header names. An empty list selects
// DefaultHeaders.
func New(headers []string) *Resolver {
	if len(headers) == 0 {
		headers = DefaultHeaders
	}

	normalized := make([]string, 0, len(headers))
	for _, h := range headers {
		if h = normalizeHeader(h); h != "" {
			normalized = append(normalized, h)
		}
	}

	return &Resolver{headers: normalized}
}

// Headers returns the normalized header precedence.
func (r *Resolver) Headers() []string {
	out := make([]string, len(r.headers))
	copy(out, r.headers)
	return out
}

// Resolve returns the client IP and whether it is publicly routable. It never
// fails: when nothing can be determined it returns ("", false).
func (r *Resolver) Resolve(req *http.Request) (string, bool) {
	for _, header := range r.headers {
		var value string
		if header == RemoteAddr {
			value = remoteHost(req.RemoteAddr)
		} else {
			value = req.Header.Get(header)
		}
		if value == "" {
			continue
		}

		for _, candidate := range strings.Split(value, ",") {
			candidate = strings.TrimSpace(candidate)
			if candidate != "" && !strings.EqualFold(candidate, "unknown") {
				return candidate, IsRoutable(candidate)
			}
		}
	}

	ip := remoteHost(req.RemoteAddr)
	if ip == "" {
		return "", false
	}
	return ip, IsRoutable(ip)
}

// remoteHost strips the port from a connection address.
func remoteHost(addr string) string {
	if addr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func normalizeHeader(name string) string {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, RemoteAddr) {
		return RemoteAddr
	}
	if upper := strings.ToUpper(name); strings.HasPrefix(upper, "HTTP_") {
		name = strings.ReplaceAll(name[len("HTTP_"):], "_", "-")
	}
	return http.CanonicalHeaderKey(name)
}
