package model

import (
	"net"
	"net/netip"
	"strings"

	"netprobe/internal/pkg/logger"
	"netprobe/internal/pkg/utils"
)

// ParseTargets expands a target expression into a deduplicated list of
// addresses. Input tokens are comma-separated and each token may be a CIDR
// block, an IP range ("start-end"), a single IP, or a hostname (resolved
// via DNS). Uniqueness is on the IP value only, matching the data model's
// Target invariant — the same host named twice, or covered by both a CIDR
// and an explicit IP, appears once.
//
// Grounded on the teacher's internal/core/pipeline/target.go GenerateTargets,
// generalized from a streaming []string channel to a netip.Addr slice
// (components A-J operate on netip.Addr, never bare strings) and from
// best-effort skip-and-log to the same skip-and-log policy applied per
// token instead of aborting the whole expression.
func ParseTargets(expr string) []netip.Addr {
	seen := make(map[netip.Addr]struct{})
	var out []netip.Addr

	add := func(addr netip.Addr) {
		addr = addr.Unmap()
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}

	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" || strings.HasPrefix(token, "#") {
			continue
		}
		expandTarget(token, add)
	}
	return out
}

func expandTarget(token string, add func(netip.Addr)) {
	if prefix, err := netip.ParsePrefix(token); err == nil {
		for addr := prefix.Masked().Addr(); prefix.Contains(addr); addr = addr.Next() {
			add(addr)
		}
		return
	}

	if lo, hi, ok := strings.Cut(token, "-"); ok {
		start, errStart := netip.ParseAddr(strings.TrimSpace(lo))
		end, errEnd := netip.ParseAddr(strings.TrimSpace(hi))
		if errStart == nil && errEnd == nil && !end.Less(start) {
			for a := start; ; a = a.Next() {
				add(a)
				if a == end || !a.IsValid() {
					break
				}
			}
			return
		}
	}

	if addr, err := netip.ParseAddr(utils.NormalizeIP(token)); err == nil {
		add(addr)
		return
	}

	if ips, err := net.LookupHost(token); err == nil {
		for _, ip := range ips {
			if addr, err := netip.ParseAddr(ip); err == nil {
				add(addr)
			}
		}
		return
	}

	logger.Warnf("skipping unresolvable target: %s", token)
}
