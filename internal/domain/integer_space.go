package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Range is a closed interval [Lo, Hi] of unsigned integers
type Range struct {
	Lo uint32
	Hi uint32
}

// IntegerSpace is an immutable set of unsigned integers stored as sorted,
// non-overlapping, non-adjacent closed ranges.
type IntegerSpace struct {
	ranges []Range
}

var (
	// EmptySpace contains no integers
	EmptySpace = IntegerSpace{}
	// AllIntegers contains every uint32
	AllIntegers = IntegerSpace{ranges: []Range{{Lo: 0, Hi: math.MaxUint32}}}
)

// NewIntegerSpace builds a space from arbitrary, possibly overlapping ranges.
// Ranges with Lo > Hi are ignored.
func NewIntegerSpace(ranges ...Range) IntegerSpace {
	rs := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Lo <= r.Hi {
			rs = append(rs, r)
		}
	}
	if len(rs) == 0 {
		return EmptySpace
	}
	slices.SortFunc(rs, func(a, b Range) int {
		if c := cmp.Compare(a.Lo, b.Lo); c != 0 {
			return c
		}
		return cmp.Compare(a.Hi, b.Hi)
	})

	merged := []Range{rs[0]}
	for _, r := range rs[1:] {
		last := &merged[len(merged)-1]
		// Merge overlapping and adjacent ranges; guard the +1 against overflow.
		if last.Hi == math.MaxUint32 || r.Lo <= last.Hi+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		merged = append(merged, r)
	}
	return IntegerSpace{ranges: merged}
}

// IntegerSpaceOf builds a space containing exactly the given values
func IntegerSpaceOf(values ...uint32) IntegerSpace {
	rs := make([]Range, len(values))
	for i, v := range values {
		rs[i] = Range{Lo: v, Hi: v}
	}
	return NewIntegerSpace(rs...)
}

// Contains reports whether v is a member of the space
func (s IntegerSpace) Contains(v uint32) bool {
	_, found := slices.BinarySearchFunc(s.ranges, v, func(r Range, v uint32) int {
		switch {
		case r.Hi < v:
			return -1
		case r.Lo > v:
			return 1
		}
		return 0
	})
	return found
}

// IsEmpty reports whether the space has no members
func (s IntegerSpace) IsEmpty() bool {
	return len(s.ranges) == 0
}

// Equal reports whether both spaces contain the same members
func (s IntegerSpace) Equal(other IntegerSpace) bool {
	return slices.Equal(s.ranges, other.ranges)
}

// Ranges returns a copy of the normalized ranges
func (s IntegerSpace) Ranges() []Range {
	return slices.Clone(s.ranges)
}

// Union returns a space containing the members of both spaces
func (s IntegerSpace) Union(other IntegerSpace) IntegerSpace {
	return NewIntegerSpace(append(s.Ranges(), other.ranges...)...)
}

// String renders the space as comma-separated values and ranges, e.g. "1-5,7".
// The empty space renders as "".
func (s IntegerSpace) String() string {
	parts := make([]string, len(s.ranges))
	for i, r := range s.ranges {
		if r.Lo == r.Hi {
			parts[i] = strconv.FormatUint(uint64(r.Lo), 10)
		} else {
			parts[i] = fmt.Sprintf("%d-%d", r.Lo, r.Hi)
		}
	}
	return strings.Join(parts, ",")
}

// ParseIntegerSpace parses the format produced by String
func ParseIntegerSpace(s string) (IntegerSpace, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return EmptySpace, nil
	}
	var rs []Range
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		loV, err := strconv.ParseUint(strings.TrimSpace(lo), 10, 32)
		if err != nil {
			return EmptySpace, fmt.Errorf("invalid integer space %q: %w", s, err)
		}
		hiV := loV
		if isRange {
			hiV, err = strconv.ParseUint(strings.TrimSpace(hi), 10, 32)
			if err != nil {
				return EmptySpace, fmt.Errorf("invalid integer space %q: %w", s, err)
			}
		}
		if loV > hiV {
			return EmptySpace, fmt.Errorf("invalid integer space %q: range %s is reversed", s, part)
		}
		rs = append(rs, Range{Lo: uint32(loV), Hi: uint32(hiV)})
	}
	return NewIntegerSpace(rs...), nil
}

// MarshalText implements encoding.TextMarshaler
func (s IntegerSpace) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *IntegerSpace) UnmarshalText(text []byte) error {
	parsed, err := ParseIntegerSpace(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
