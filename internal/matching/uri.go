package matching

import (
	"net/http"
	"strconv"
	"strings"
)

// Wildcard replaces ignored URL components in canonical strings.
const Wildcard = "*"

// NoPort marks the absence of a custom port.
const NoPort = -1

// URLCriteria describes the URL half of a structural registration.
type URLCriteria struct {
	Scheme string
	Host   string
	// Port is only compared when HasCustomPort is set.
	Port          int
	HasCustomPort bool
	Path          string
	// Query is the raw query string without the leading '?'.
	Query string

	IgnoreHost  bool
	IgnorePath  bool
	IgnoreQuery bool
}

// Canonical returns the comparison string for the registration side.
func (c URLCriteria) Canonical() string {
	port := ""
	if c.HasCustomPort && c.Port != NoPort {
		port = strconv.Itoa(c.Port)
	}
	return c.canonical(c.Scheme, c.Host, port, c.Path, c.Query)
}

// CanonicalRequest returns the comparison string for r, with the same
// components ignored as on the registration side.
func (c URLCriteria) CanonicalRequest(r *http.Request) string {
	u := r.URL
	host := u.Hostname()
	if host == "" {
		host = hostOnly(r.Host)
	}

	port := ""
	if c.HasCustomPort && c.Port != NoPort {
		port = EffectivePort(u.Scheme, u.Port())
	}
	return c.canonical(u.Scheme, host, port, u.Path, u.RawQuery)
}

func (c URLCriteria) canonical(scheme, host, port, path, query string) string {
	if c.IgnoreHost {
		host = Wildcard
	}
	if c.IgnorePath {
		path = Wildcard
	} else {
		path = normalizePath(path)
	}
	if c.IgnoreQuery {
		query = Wildcard
	}

	var sb strings.Builder
	sb.WriteString(strings.ToLower(scheme))
	sb.WriteString("://")
	sb.WriteString(strings.ToLower(host))
	if port != "" {
		sb.WriteByte(':')
		sb.WriteString(port)
	}
	sb.WriteString(path)
	if query != "" {
		sb.WriteByte('?')
		sb.WriteString(query)
	}
	return sb.String()
}

// normalizePath roots path at "/".
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

// EffectivePort returns the explicit port, or the scheme's default port when
// none is given. Unknown schemes without a port yield an empty string.
func EffectivePort(scheme, port string) string {
	if port != "" {
		return port
	}
	switch strings.ToLower(scheme) {
	case "http", "ws":
		return "80"
	case "https", "wss":
		return "443"
	}
	return ""
}

func hostOnly(hostport string) string {
	if i := strings.LastIndexByte(hostport, ':'); i >= 0 && !strings.Contains(hostport[i:], "]") {
		return hostport[:i]
	}
	return hostport
}
