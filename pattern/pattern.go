// Package pattern matches five-field time series identifiers
// (location.source.parameter.interval.scenario) against glob patterns.
//
// Only '*' is a wildcard. Every other character, including characters that
// are special to regular expressions such as '-', '%', '(', '+' or '|', is
// matched literally, so a parameter named "CU-10%" matches the pattern
// "*.*.CU-10%.*.*". Matching is case-insensitive.
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/arloliu/bd1/errs"
)

// NumFields is the number of dot-separated fields in an identifier.
const NumFields = 5

// Field positions.
const (
	Location = iota
	Source
	Parameter
	Interval
	Scenario
)

// Wildcard matches any value of a field.
const Wildcard = "*"

// Pattern is a compiled five-field pattern.
type Pattern struct {
	fields   [NumFields]string
	matchers [NumFields]*regexp.Regexp
}

// Parse compiles a pattern. An empty pattern matches everything, and missing
// trailing fields are treated as wildcards.
//
// Returns errs.ErrInvalidPattern when the pattern has more than five fields.
func Parse(s string) (*Pattern, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = strings.Repeat(Wildcard+".", NumFields-1) + Wildcard
	}

	parts := strings.Split(s, ".")
	if len(parts) > NumFields {
		return nil, fmt.Errorf("%w: %q has %d fields, want at most %d", errs.ErrInvalidPattern, s, len(parts), NumFields)
	}

	p := &Pattern{}
	for i := range NumFields {
		field := Wildcard
		if i < len(parts) && parts[i] != "" {
			field = parts[i]
		}
		p.fields[i] = field

		if field == Wildcard {
			continue
		}

		re, err := compile(field)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d of %q: %w", errs.ErrInvalidPattern, i+1, s, err)
		}
		p.matchers[i] = re
	}

	return p, nil
}

// Restrict returns a copy of p with the given fields forced to wildcards.
func (p *Pattern) Restrict(fields ...int) *Pattern {
	q := *p
	for _, f := range fields {
		if f >= 0 && f < NumFields {
			q.fields[f] = Wildcard
			q.matchers[f] = nil
		}
	}

	return &q
}

// Field returns the text of one field.
func (p *Pattern) Field(i int) string {
	return p.fields[i]
}

// MatchField reports whether value matches field i.
func (p *Pattern) MatchField(i int, value string) bool {
	re := p.matchers[i]
	if re == nil {
		return true
	}

	return re.MatchString(value)
}

// Match reports whether the identifier formed by the given fields matches.
func (p *Pattern) Match(fields [NumFields]string) bool {
	for i := range NumFields {
		if !p.MatchField(i, fields[i]) {
			return false
		}
	}

	return true
}

// MatchLocationParameter matches a (location, parameter) pair, ignoring the other fields.
func (p *Pattern) MatchLocationParameter(location, parameter string) bool {
	return p.MatchField(Location, location) && p.MatchField(Parameter, parameter)
}

func (p *Pattern) String() string {
	return strings.Join(p.fields[:], ".")
}

// compile turns a glob into an anchored, case-insensitive expression.
func compile(glob string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("(?is)^")
	for i, part := range strings.Split(glob, Wildcard) {
		if i > 0 {
			sb.WriteString(".*")
		}
		sb.WriteString(regexp.QuoteMeta(part))
	}
	sb.WriteString("$")

	return regexp.Compile(sb.String())
}
