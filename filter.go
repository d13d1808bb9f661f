package j1939

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PGNFilter is set of PGNs of interest. Empty (or nil) filter matches every
// message, which is the behaviour when no filtering was requested.
type PGNFilter map[uint32]struct{}

func NewPGNFilter(pgns ...uint32) PGNFilter {
	f := make(PGNFilter, len(pgns))
	for _, pgn := range pgns {
		f[pgn] = struct{}{}
	}
	return f
}

// ParsePGNFilter parses comma separated list of decimal PGNs, e.g. `60928,8192`.
func ParsePGNFilter(raw string) (PGNFilter, error) {
	f := make(PGNFilter)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		pgn, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid PGN %q in filter, err: %w", p, err)
		}
		f[uint32(pgn)] = struct{}{}
	}
	return f, nil
}

// Match reports whether given PGN passes the filter.
func (f PGNFilter) Match(pgn uint32) bool {
	if len(f) == 0 {
		return true
	}
	_, ok := f[pgn]
	return ok
}

// PGNs returns filter contents in ascending order.
func (f PGNFilter) PGNs() []uint32 {
	result := make([]uint32, 0, len(f))
	for pgn := range f {
		result = append(result, pgn)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
