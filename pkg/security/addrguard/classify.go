// Package addrguard decides which IP addresses may be dialed on behalf of a
// user-supplied URL. It contains a pure address classifier covering the
// private, reserved, and special-purpose ranges of both address families, and
// a resolver guard that applies the classifier to every DNS answer for a
// hostname before any connection is opened.
//
// The classifier fails closed: malformed input is treated as blocked.
package addrguard

import "net/netip"

// blockedV4 lists the IPv4 ranges that must never be dialed.
//
// Ranges:
//   - 0.0.0.0/8 ("this network", RFC 791)
//   - 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16 (private, RFC 1918)
//   - 100.64.0.0/10 (carrier-grade NAT, RFC 6598)
//   - 127.0.0.0/8 (loopback)
//   - 169.254.0.0/16 (link-local, RFC 3927; includes cloud metadata endpoints)
//   - 192.0.2.0/24, 198.51.100.0/24, 203.0.113.0/24 (documentation, RFC 5737)
//   - 198.18.0.0/15 (benchmarking, RFC 2544)
//   - 224.0.0.0/4 (multicast)
//   - 240.0.0.0/4 (reserved, through 255.255.255.255)
var blockedV4 = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("224.0.0.0/4"),
	netip.MustParsePrefix("240.0.0.0/4"),
}

// blockedV6 lists the IPv6 ranges that must never be dialed.
//
// Ranges:
//   - ::/128 (unspecified)
//   - ::1/128 (loopback)
//   - fc00::/7 (unique-local, RFC 4193)
//   - fe80::/10 (link-local, RFC 4291)
//   - fec0::/10 (site-local, deprecated by RFC 3879 but still routable on
//     legacy equipment)
//   - ff00::/8 (multicast)
var blockedV6 = []netip.Prefix{
	netip.MustParsePrefix("::/128"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("fec0::/10"),
	netip.MustParsePrefix("ff00::/8"),
}

// nat64Prefixes are the translation prefixes of RFC 6052 / RFC 8215. An IPv6
// address under one of these embeds an IPv4 address in its low 32 bits; the
// connection it describes ultimately reaches that IPv4 target, so the
// embedded address is what gets classified.
var nat64Prefixes = []netip.Prefix{
	netip.MustParsePrefix("64:ff9b::/96"),
	netip.MustParsePrefix("64:ff9b:1::/48"),
}

// IsBlockedAddr reports whether addr falls in a range that must never be
// dialed for a user-supplied URL. It is pure and performs no I/O.
//
// IPv4-mapped IPv6 addresses (::ffff:a.b.c.d) are unwrapped to their IPv4
// form before classification, so ::ffff:127.0.0.1 is blocked exactly like
// 127.0.0.1. NAT64 translation addresses are classified by their embedded
// IPv4 target. An invalid (zero) address is blocked.
//
// Example:
//
//	IsBlockedAddr(netip.MustParseAddr("169.254.169.254")) // true
//	IsBlockedAddr(netip.MustParseAddr("93.184.216.34"))   // false
func IsBlockedAddr(addr netip.Addr) bool {
	if !addr.IsValid() {
		return true
	}

	addr = addr.Unmap()

	if addr.Is4() {
		return matchesAny(addr, blockedV4)
	}

	if embedded, ok := nat64Embedded(addr); ok {
		return matchesAny(embedded, blockedV4)
	}

	return matchesAny(addr, blockedV6)
}

// IsBlockedAddrString parses s as an IP address and classifies it. A string
// that does not parse is reported as blocked so that malformed input can
// never slip past the guard.
func IsBlockedAddrString(s string) bool {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return true
	}
	return IsBlockedAddr(addr)
}

// nat64Embedded extracts the IPv4 address embedded in a NAT64 translation
// address. The second return is false when addr is not under a known
// translation prefix.
func nat64Embedded(addr netip.Addr) (netip.Addr, bool) {
	for _, p := range nat64Prefixes {
		if p.Contains(addr) {
			raw := addr.As16()
			return netip.AddrFrom4([4]byte{raw[12], raw[13], raw[14], raw[15]}), true
		}
	}
	return netip.Addr{}, false
}

func matchesAny(addr netip.Addr, prefixes []netip.Prefix) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
