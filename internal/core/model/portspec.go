package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParsePortSpec parses a comma-separated port expression such as
// "80,443,8000-8005" into a deduplicated, ascending list of ports. Order of
// the input tokens does not affect the result. Grounded on the teacher's
// internal/core/scanner/port_service/nmap_service/parser.go ParsePortList,
// generalized to validate the [1, 65535] range (port 0 is invalid per the
// data model) and return an error instead of silently skipping bad tokens.
func ParsePortSpec(expr string) ([]uint16, error) {
	seen := make(map[uint16]struct{})
	var ports []uint16

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := parsePort(lo)
			if err != nil {
				return nil, fmt.Errorf("parse port spec %q: %w", part, err)
			}
			end, err := parsePort(hi)
			if err != nil {
				return nil, fmt.Errorf("parse port spec %q: %w", part, err)
			}
			if start > end {
				return nil, fmt.Errorf("parse port spec %q: range start exceeds end", part)
			}
			for p := start; p <= end; p++ {
				addPort(seen, &ports, p)
				if p == 65535 {
					break
				}
			}
			continue
		}

		p, err := parsePort(part)
		if err != nil {
			return nil, fmt.Errorf("parse port spec %q: %w", part, err)
		}
		addPort(seen, &ports, p)
	}

	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
	return ports, nil
}

func addPort(seen map[uint16]struct{}, ports *[]uint16, p uint16) {
	if _, ok := seen[p]; ok {
		return
	}
	seen[p] = struct{}{}
	*ports = append(*ports, p)
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if n < 1 || n > 65535 {
		return 0, fmt.Errorf("port %d out of range [1,65535]", n)
	}
	return uint16(n), nil
}
