package addrguard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// Sentinel errors returned by the guard. Callers distinguish them with
// errors.Is; the wrapped detail (hostname, offending address) is intended for
// internal logs, never for user-facing responses.
var (
	// ErrHostUnresolvable indicates that no address in either family could
	// be resolved for the hostname.
	ErrHostUnresolvable = errors.New("hostname could not be resolved")

	// ErrAddrBlocked indicates that at least one resolved address falls in
	// a blocked range.
	ErrAddrBlocked = errors.New("address is in a blocked range")
)

// Resolver resolves a hostname to IP addresses for one address family.
// *net.Resolver satisfies it; tests substitute a fake.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Guard validates hostnames by resolving every address in both families and
// classifying each answer with IsBlockedAddr.
//
// A hostname is rejected if ANY resolved address is blocked, even when other
// answers are public: an attacker who controls DNS controls which answer each
// resolver sees and when, so a host that round-robins between a public and a
// private address gets no partial trust.
//
// Results are never cached. The fetch transport must dial only addresses the
// guard returned for this exact request, otherwise a short-TTL record could
// swap in a private address between validation and connection.
type Guard struct {
	resolver Resolver
}

// NewGuard creates a Guard backed by the given resolver. A nil resolver
// selects net.DefaultResolver.
func NewGuard(resolver Resolver) *Guard {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Guard{resolver: resolver}
}

// ResolveAndCheck resolves hostname in both address families and classifies
// every answer.
//
// Returns:
//   - the full set of resolved addresses when all of them are allowed
//   - ErrHostUnresolvable when neither family yields a single address
//     (a single-stack host that resolves in only one family is fine)
//   - ErrAddrBlocked when any answer falls in a blocked range
//
// An IP-literal hostname is classified directly without DNS.
func (g *Guard) ResolveAndCheck(ctx context.Context, hostname string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(hostname); err == nil {
		if IsBlockedAddr(addr) {
			return nil, fmt.Errorf("%w: literal %s", ErrAddrBlocked, addr)
		}
		return []netip.Addr{addr}, nil
	}

	var addrs []netip.Addr

	v4, err4 := g.resolver.LookupNetIP(ctx, "ip4", hostname)
	if err4 == nil {
		addrs = append(addrs, v4...)
	}

	v6, err6 := g.resolver.LookupNetIP(ctx, "ip6", hostname)
	if err6 == nil {
		addrs = append(addrs, v6...)
	}

	// Propagate cancellation rather than misreporting it as a DNS failure.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s (ip4: %v, ip6: %v)", ErrHostUnresolvable, hostname, err4, err6)
	}

	for _, addr := range addrs {
		if IsBlockedAddr(addr) {
			return nil, fmt.Errorf("%w: %s resolves to %s", ErrAddrBlocked, hostname, addr)
		}
	}

	return addrs, nil
}
