package routing

import (
	"fmt"
	"strings"
)

// ── Filters ──────────────────────────────────────────────────────────────────

// Filter narrows what a dynamic segment accepts and decides the Go type of
// the captured value.
type Filter int

const (
	// FilterStr accepts any non-"/" characters and captures a string. This is
	// the default when a segment declares no filter.
	FilterStr Filter = iota

	// FilterInt accepts decimal digits only and captures an int.
	FilterInt

	// FilterUUID accepts the canonical RFC 4122 textual form and captures a
	// string.
	FilterUUID

	// FilterSlug accepts [a-z0-9-]+ and captures a string.
	FilterSlug
)

var filterNames = map[string]Filter{
	"str":  FilterStr,
	"int":  FilterInt,
	"uuid": FilterUUID,
	"slug": FilterSlug,
}

func (f Filter) String() string {
	switch f {
	case FilterInt:
		return "int"
	case FilterUUID:
		return "uuid"
	case FilterSlug:
		return "slug"
	default:
		return "str"
	}
}

// ── Segments ─────────────────────────────────────────────────────────────────

// SegmentKind tags the variant of a compiled segment.
type SegmentKind int

const (
	// SegmentStatic matches its literal exactly.
	SegmentStatic SegmentKind = iota

	// SegmentParam matches one path segment through its filter and captures
	// it under Name.
	SegmentParam

	// SegmentCatchAll greedily captures the remaining path suffix as one
	// value under Name. Only valid as the last segment.
	SegmentCatchAll
)

// Segment is one compiled element of a route pattern. Patterns are compiled
// once at registration; the segment sequence never changes afterwards.
type Segment struct {
	Kind    SegmentKind
	Literal string // SegmentStatic
	Name    string // SegmentParam, SegmentCatchAll
	Filter  Filter // SegmentParam
}

// ── Compilation ──────────────────────────────────────────────────────────────

// Compile parses a route pattern into its segment sequence.
//
// Syntax:
//
//	/static/<name>/<name:filter>   dynamic segments, filter ∈ str|int|uuid|slug
//	/files/*path                   trailing catch-all, captures the rest
//	/files/*                       catch-all with the default name "filepath"
//
// A malformed segment, an unknown filter, or a duplicate capture name is a
// *PatternError. Registration-time failures are fatal at startup, never at
// request time.
func Compile(pattern string) ([]Segment, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, &PatternError{Pattern: pattern, Reason: "pattern must start with '/'"}
	}
	trimmed := strings.Trim(pattern, "/")
	if trimmed == "" {
		return []Segment{}, nil // root: zero segments
	}

	raw := strings.Split(trimmed, "/")
	segments := make([]Segment, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for i, part := range raw {
		switch {
		case part == "":
			return nil, &PatternError{Pattern: pattern, Reason: "empty segment"}

		case part[0] == '*':
			if i != len(raw)-1 {
				return nil, &PatternError{Pattern: pattern, Reason: "catch-all must be the last segment"}
			}
			name := part[1:]
			if name == "" {
				name = "filepath"
			}
			if !validCaptureName(name) {
				return nil, &PatternError{Pattern: pattern, Reason: fmt.Sprintf("invalid capture name %q", name)}
			}
			if seen[name] {
				return nil, &PatternError{Pattern: pattern, Reason: fmt.Sprintf("duplicate capture name %q", name)}
			}
			seen[name] = true
			segments = append(segments, Segment{Kind: SegmentCatchAll, Name: name})

		case part[0] == '<':
			if !strings.HasSuffix(part, ">") {
				return nil, &PatternError{Pattern: pattern, Reason: fmt.Sprintf("unterminated segment %q", part)}
			}
			name, filterName, hasFilter := strings.Cut(part[1:len(part)-1], ":")
			if !validCaptureName(name) {
				return nil, &PatternError{Pattern: pattern, Reason: fmt.Sprintf("invalid capture name %q", name)}
			}
			if seen[name] {
				return nil, &PatternError{Pattern: pattern, Reason: fmt.Sprintf("duplicate capture name %q", name)}
			}
			seen[name] = true

			filter := FilterStr
			if hasFilter {
				f, ok := filterNames[filterName]
				if !ok {
					return nil, &PatternError{Pattern: pattern, Reason: fmt.Sprintf("unknown filter %q", filterName)}
				}
				filter = f
			}
			segments = append(segments, Segment{Kind: SegmentParam, Name: name, Filter: filter})

		case strings.ContainsAny(part, "<>*"):
			return nil, &PatternError{Pattern: pattern, Reason: fmt.Sprintf("malformed segment %q", part)}

		default:
			segments = append(segments, Segment{Kind: SegmentStatic, Literal: part})
		}
	}
	return segments, nil
}

// validCaptureName allows Go-identifier-ish names: letters, digits,
// underscores, not starting with a digit.
func validCaptureName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
