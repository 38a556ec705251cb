// Package extract pulls the product literal that storefront pages assign to a
// script variable and turns it into JSON.
//
// The literals are JavaScript, not JSON: single quotes, ternaries, function
// calls and trailing commas all show up. Each storefront owns an ordered list
// of repair rules; rules run in declaration order and later rules may rely on
// quoting already being normalized by earlier ones.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Kind classifies extraction failures.
type Kind int

const (
	NotFound Kind = iota + 1
	MalformedJSON
)

var (
	ErrNotFound      = &Error{Kind: NotFound}
	ErrMalformedJSON = &Error{Kind: MalformedJSON}
)

// Error is returned by Extract. Compare with errors.Is against ErrNotFound or ErrMalformedJSON.
type Error struct {
	Kind     Kind
	Variable string
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case NotFound:
		return fmt.Sprintf("extract: literal %q not found", e.Variable)
	case MalformedJSON:
		return fmt.Sprintf("extract: literal %q is not valid json after repair: %v", e.Variable, e.Err)
	}
	return "extract: unknown error"
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Rule is a single textual repair.
type Rule struct {
	Name  string
	apply func(string) string
}

// Apply runs the rule over s.
func (r Rule) Apply(s string) string { return r.apply(s) }

// ReplaceAll replaces every literal occurrence of old with new.
func ReplaceAll(name, old, new string) Rule {
	return Rule{Name: name, apply: func(s string) string { return strings.ReplaceAll(s, old, new) }}
}

// Replace replaces every match of pattern with repl; repl may reference groups as ${1}.
func Replace(name, pattern, repl string) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{Name: name, apply: func(s string) string { return re.ReplaceAllString(s, repl) }}
}

// Extractor locates, repairs and decodes one storefront's literal.
type Extractor struct {
	variable string
	locate   *regexp.Regexp
	rules    []Rule
}

// New builds an extractor for `var <variable> = {...};`.
func New(variable string, rules ...Rule) *Extractor {
	return &Extractor{
		variable: variable,
		locate:   regexp.MustCompile(`(?s)var\s+` + regexp.QuoteMeta(variable) + `\s*=\s*(\{.*?\});`),
		rules:    rules,
	}
}

// Rules returns the repair rules in application order.
func (e *Extractor) Rules() []Rule { return e.rules }

// Locate returns the raw literal text.
func (e *Extractor) Locate(body string) (string, error) {
	m := e.locate.FindStringSubmatch(body)
	if m == nil {
		return "", &Error{Kind: NotFound, Variable: e.variable}
	}
	return m[1], nil
}

// Contains reports whether body carries the literal at all.
func (e *Extractor) Contains(body string) bool {
	return e.locate.MatchString(body)
}

// Repair runs every rule over literal.
func (e *Extractor) Repair(literal string) string {
	for _, r := range e.rules {
		literal = r.Apply(literal)
	}
	return literal
}

// Extract locates, repairs and decodes the literal in body.
func (e *Extractor) Extract(body string) (*Literal, error) {
	raw, err := e.Locate(body)
	if err != nil {
		return nil, err
	}
	lit, err := decodeObject(e.Repair(raw))
	if err != nil {
		return nil, &Error{Kind: MalformedJSON, Variable: e.variable, Err: err}
	}
	return lit, nil
}

var variantKey = regexp.MustCompile(`^[0-9]{10}`)

// Entry is one top-level member of the literal.
type Entry struct {
	Key   string
	Value json.RawMessage
}

// Literal is the decoded top-level object with its member order preserved.
type Literal struct {
	entries []Entry
	index   map[string]int
}

// Variants returns the color variant members, in page order.
func (l *Literal) Variants() []Entry {
	var out []Entry
	for _, e := range l.entries {
		if variantKey.MatchString(e.Key) {
			out = append(out, e)
		}
	}
	return out
}

// Field decodes the member key into v.
func (l *Literal) Field(key string, v any) error {
	i, ok := l.index[key]
	if !ok {
		return fmt.Errorf("extract: field %q not present", key)
	}
	return json.Unmarshal(l.entries[i].Value, v)
}

// Keys lists every member key in order.
func (l *Literal) Keys() []string {
	keys := make([]string, len(l.entries))
	for i, e := range l.entries {
		keys[i] = e.Key
	}
	return keys
}

func decodeObject(s string) (*Literal, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("top-level value is not an object")
	}

	lit := &Literal{index: make(map[string]int)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("member %q: %w", key, err)
		}
		if i, dup := lit.index[key]; dup {
			lit.entries[i].Value = raw
			continue
		}
		lit.index[key] = len(lit.entries)
		lit.entries = append(lit.entries, Entry{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after object")
	}
	return lit, nil
}
