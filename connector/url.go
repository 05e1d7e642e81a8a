package connector

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// URLBuilder provides a fluent interface for building broker URLs
type URLBuilder struct {
	scheme string
	host   string
	port   int
	path   string
	params url.Values
}

// NewURLBuilder creates a new URL builder
func NewURLBuilder(scheme string) *URLBuilder {
	return &URLBuilder{
		scheme: scheme,
		params: url.Values{},
	}
}

// Host sets the host and port
func (b *URLBuilder) Host(host string, port int) *URLBuilder {
	b.host = host
	b.port = port
	return b
}

// Path sets the endpoint path, relative to the broker root.
func (b *URLBuilder) Path(p string) *URLBuilder {
	b.path = p
	return b
}

// Param adds a query parameter. Empty values are skipped.
func (b *URLBuilder) Param(key, value string) *URLBuilder {
	if value != "" {
		b.params.Set(key, value)
	}
	return b
}

func (b *URLBuilder) Validate() error {
	switch b.scheme {
	case "http", "https":
	default:
		return fmt.Errorf("invalid scheme: %q (must be http or https)", b.scheme)
	}
	if b.host == "" {
		return fmt.Errorf("host is required")
	}
	if strings.ContainsAny(b.host, "/?#@") {
		return fmt.Errorf("invalid host: %q", b.host)
	}
	if b.port <= 0 || b.port > 65535 {
		return fmt.Errorf("invalid port: %d", b.port)
	}
	return nil
}

// Build constructs the final URL string
func (b *URLBuilder) Build() string {
	var u strings.Builder

	u.WriteString(b.scheme)
	u.WriteString("://")
	u.WriteString(b.host)
	if b.port > 0 {
		u.WriteString(":")
		u.WriteString(strconv.Itoa(b.port))
	}

	if b.path != "" {
		if !strings.HasPrefix(b.path, "/") {
			u.WriteString("/")
		}
		u.WriteString(b.path)
	}

	if len(b.params) > 0 {
		u.WriteString("?")
		u.WriteString(b.params.Encode())
	}

	return u.String()
}
