package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strings"

	"recipebox/pkg/config"
)

// IPExtractor resolves the client IP a rate-limit bucket is keyed on.
// The choice of extractor decides whether forwarding headers are believed,
// which is a security decision: a spoofable key lets a caller rotate
// buckets at will.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor keys on the TCP peer address. This is the default;
// it cannot be spoofed but identifies the proxy, not the client, when a
// reverse proxy sits in front.
type RemoteAddrExtractor struct{}

func (e *RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return ipFromHostPort(r.RemoteAddr)
}

// TrustedProxyConfig lists the reverse proxies whose forwarding headers
// are believed.
type TrustedProxyConfig struct {
	Enabled      bool
	AllowedCIDRs []netip.Prefix
}

// IsTrusted reports whether remoteAddr falls inside one of the trusted
// proxy ranges.
func (c *TrustedProxyConfig) IsTrusted(remoteAddr string) bool {
	host, err := ipFromHostPort(remoteAddr)
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	for _, prefix := range c.AllowedCIDRs {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// LoadTrustedProxyConfig reads RATE_LIMIT_TRUST_PROXY and
// RATE_LIMIT_TRUSTED_PROXIES. Trusting proxies without naming them is a
// misconfiguration, so an enabled flag with an empty list fails closed.
func LoadTrustedProxyConfig() (*TrustedProxyConfig, error) {
	cfg := &TrustedProxyConfig{
		Enabled: os.Getenv("RATE_LIMIT_TRUST_PROXY") == "true",
	}
	if !cfg.Enabled {
		return cfg, nil
	}

	entries := config.GetEnvStringList("RATE_LIMIT_TRUSTED_PROXIES", nil)
	if len(entries) == 0 {
		return nil, fmt.Errorf("RATE_LIMIT_TRUST_PROXY is enabled but RATE_LIMIT_TRUSTED_PROXIES is empty")
	}

	for _, entry := range entries {
		prefix, err := parseProxyPrefix(entry)
		if err != nil {
			return nil, err
		}
		cfg.AllowedCIDRs = append(cfg.AllowedCIDRs, prefix)
	}
	return cfg, nil
}

// parseProxyPrefix accepts CIDR notation or a bare address, widening the
// latter to a single-host prefix.
func parseProxyPrefix(entry string) (netip.Prefix, error) {
	if prefix, err := netip.ParsePrefix(entry); err == nil {
		return prefix, nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("trusted proxy %q is neither an IP nor a CIDR range", entry)
	}
	bits := 32
	if addr.Is6() {
		bits = 128
	}
	return netip.PrefixFrom(addr, bits), nil
}

// TrustedProxyExtractor believes X-Forwarded-For and X-Real-IP, but only
// when the connection itself comes from a trusted proxy. Headers from any
// other peer are ignored and logged, since they are an attempt to pick the
// rate-limit bucket.
type TrustedProxyExtractor struct {
	config TrustedProxyConfig
}

func NewTrustedProxyExtractor(config TrustedProxyConfig) *TrustedProxyExtractor {
	return &TrustedProxyExtractor{config: config}
}

func (e *TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	if !e.config.Enabled {
		return ipFromHostPort(r.RemoteAddr)
	}

	if !e.config.IsTrusted(r.RemoteAddr) {
		if xff, xri := r.Header.Get("X-Forwarded-For"), r.Header.Get("X-Real-IP"); xff != "" || xri != "" {
			slog.Warn("forwarding headers from untrusted peer ignored",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", xff),
				slog.String("x_real_ip", xri))
		}
		return ipFromHostPort(r.RemoteAddr)
	}

	if ip := firstForwardedIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip, nil
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.String(), nil
	}
	return ipFromHostPort(r.RemoteAddr)
}

// ipFromHostPort strips the port from "host:port" or "[v6]:port" forms;
// a bare IP is accepted as-is.
func ipFromHostPort(addr string) (string, error) {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host, nil
	}
	if parsed, err := netip.ParseAddr(addr); err == nil {
		return parsed.String(), nil
	}
	return "", fmt.Errorf("invalid address format: %s", addr)
}

// firstForwardedIP returns the leftmost entry of an X-Forwarded-For list,
// which is the client as reported by the first proxy. Returns "" when the
// entry is not a valid IP.
func firstForwardedIP(header string) string {
	first, _, _ := strings.Cut(header, ",")
	addr, err := netip.ParseAddr(strings.TrimSpace(first))
	if err != nil {
		return ""
	}
	return addr.String()
}
