package trigger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Kind is the TYPE token of a rule definition line.
type Kind string

// Supported trigger kinds.
const (
	KindTitle       Kind = "TITLE"
	KindDescription Kind = "DESCRIPTION"
	KindAfter       Kind = "AFTER"
	KindBefore      Kind = "BEFORE"
	KindNot         Kind = "NOT"
	KindAnd         Kind = "AND"
	KindOr          Kind = "OR"
)

const (
	commentPrefix = "//"
	addDirective  = "ADD"
)

var arity = map[Kind]int{
	KindTitle:       1,
	KindDescription: 1,
	KindAfter:       1,
	KindBefore:      1,
	KindNot:         1,
	KindAnd:         2,
	KindOr:          2,
}

func (k Kind) composite() bool {
	return k == KindNot || k == KindAnd || k == KindOr
}

// Line is a rule file line with its 1-based position in the source.
type Line struct {
	No   int
	Text string
}

// RuleSet is the result of loading a rule file.
type RuleSet struct {
	// Registry holds every defined trigger by name.
	Registry map[string]Trigger
	// Names lists the ADD selections in file order, duplicates included.
	Names []string
	// Triggers holds the selected triggers, aligned with Names.
	Triggers []Trigger
}

type directive struct {
	line Line
	name string
	kind Kind
	args []string
}

// Parser builds rule sets. Time arguments are read in its location.
type Parser struct {
	loc *time.Location
}

// NewParser creates a Parser reading time arguments in loc.
// A nil loc means ReferenceZone.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = ReferenceZone
	}
	return &Parser{loc: loc}
}

// ReadTriggerConfig loads the rule file at path in ReferenceZone and returns
// the selected triggers.
func ReadTriggerConfig(path string) ([]Trigger, error) {
	rs, err := NewParser(nil).Load(path)
	if err != nil {
		return nil, err
	}
	return rs.Triggers, nil
}

// Load reads and builds the rule file at path.
func (p *Parser) Load(path string) (*RuleSet, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open trigger config: %w", err)
	}
	defer func() { _ = f.Close() }()
	return p.Read(f)
}

// Read builds a rule set from r, skipping blank lines and // comments.
func (p *Parser) Read(r io.Reader) (*RuleSet, error) {
	var lines []Line
	sc := bufio.NewScanner(r)
	no := 0
	for sc.Scan() {
		no++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, commentPrefix) {
			continue
		}
		lines = append(lines, Line{No: no, Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read trigger config: %w", err)
	}
	return p.Build(lines)
}

// BuildLines builds a rule set from already filtered lines, numbering them
// from 1.
func (p *Parser) BuildLines(texts []string) (*RuleSet, error) {
	lines := make([]Line, len(texts))
	for i, text := range texts {
		lines[i] = Line{No: i + 1, Text: text}
	}
	return p.Build(lines)
}

// Build assembles a rule set. Leaf definitions are built first, then
// composite definitions in file order, so a composite may reference any leaf
// but only composites defined above it. ADD selections are resolved last.
// The first error aborts the load and no partial rule set is returned.
func (p *Parser) Build(lines []Line) (*RuleSet, error) {
	var defs, adds []directive
	for _, l := range lines {
		d, err := parseLine(l)
		if err != nil {
			return nil, &ConfigError{Line: l.No, Text: l.Text, Err: err}
		}
		if d.kind == "" {
			adds = append(adds, d)
		} else {
			defs = append(defs, d)
		}
	}

	registry := make(map[string]Trigger, len(defs))
	for _, d := range defs {
		if d.kind.composite() {
			continue
		}
		t, err := p.leaf(d)
		if err != nil {
			return nil, &ConfigError{Line: d.line.No, Text: d.line.Text, Err: err}
		}
		registry[d.name] = t
	}

	if d, err := findCycle(defs); err != nil {
		return nil, &ConfigError{Line: d.line.No, Text: d.line.Text, Err: err}
	}

	for _, d := range defs {
		if !d.kind.composite() {
			continue
		}
		t, err := composite(d, registry)
		if err != nil {
			return nil, &ConfigError{Line: d.line.No, Text: d.line.Text, Err: err}
		}
		registry[d.name] = t
	}

	rs := &RuleSet{Registry: registry}
	for _, d := range adds {
		for _, name := range d.args {
			t, ok := registry[name]
			if !ok {
				return nil, &ConfigError{Line: d.line.No, Text: d.line.Text, Err: fmt.Errorf("%w: %q", ErrUnknownTriggerName, name)}
			}
			rs.Names = append(rs.Names, name)
			rs.Triggers = append(rs.Triggers, t)
		}
	}
	return rs, nil
}

func parseLine(l Line) (directive, error) {
	fields := strings.Split(l.Text, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if fields[0] == addDirective {
		names := fields[1:]
		if len(names) == 0 {
			return directive{}, fmt.Errorf("%w: ADD needs at least one trigger name", ErrMalformedLine)
		}
		for _, n := range names {
			if n == "" {
				return directive{}, fmt.Errorf("%w: empty trigger name in ADD", ErrMalformedLine)
			}
		}
		return directive{line: l, args: names}, nil
	}

	if len(fields) < 2 {
		return directive{}, fmt.Errorf("%w: want NAME,TYPE,ARG...", ErrMalformedLine)
	}
	name, kind, args := fields[0], Kind(fields[1]), fields[2:]
	if name == "" {
		return directive{}, fmt.Errorf("%w: empty trigger name", ErrMalformedLine)
	}
	n, ok := arity[kind]
	if !ok {
		return directive{}, fmt.Errorf("%w: unknown trigger type %q", ErrMalformedLine, fields[1])
	}
	if len(args) != n {
		return directive{}, fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrMalformedLine, kind, n, len(args))
	}
	if kind.composite() {
		for _, a := range args {
			if a == "" {
				return directive{}, fmt.Errorf("%w: empty trigger reference", ErrMalformedLine)
			}
		}
	}
	return directive{line: l, name: name, kind: kind, args: args}, nil
}

func (p *Parser) leaf(d directive) (Trigger, error) {
	switch d.kind {
	case KindTitle:
		return NewTitle(d.args[0]), nil
	case KindDescription:
		return NewDescription(d.args[0]), nil
	case KindBefore:
		return NewBefore(d.args[0], p.loc)
	case KindAfter:
		return NewAfter(d.args[0], p.loc)
	}
	return nil, fmt.Errorf("%w: %s is not a leaf type", ErrMalformedLine, d.kind)
}

func composite(d directive, registry map[string]Trigger) (Trigger, error) {
	refs := make([]Trigger, len(d.args))
	for i, name := range d.args {
		t, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTriggerName, name)
		}
		refs[i] = t
	}
	switch d.kind {
	case KindNot:
		return NewNot(refs[0]), nil
	case KindAnd:
		return NewAnd(refs[0], refs[1]), nil
	case KindOr:
		return NewOr(refs[0], refs[1]), nil
	}
	return nil, fmt.Errorf("%w: %s is not a composite type", ErrMalformedLine, d.kind)
}

// findCycle walks the graph of composite definitions by name and returns
// the first definition that takes part in a reference cycle. A name defined
// more than once carries the references of all its definitions.
func findCycle(defs []directive) (directive, error) {
	const (
		unvisited = iota
		visiting
		done
	)

	edges := make(map[string][]string)
	first := make(map[string]directive)
	var order []string
	for _, d := range defs {
		if !d.kind.composite() {
			continue
		}
		if _, ok := first[d.name]; !ok {
			first[d.name] = d
			order = append(order, d.name)
		}
		edges[d.name] = append(edges[d.name], d.args...)
	}

	state := make(map[string]int, len(order))
	var path []string
	var visit func(name string) []string
	visit = func(name string) []string {
		switch state[name] {
		case visiting:
			for i, n := range path {
				if n == name {
					return append(path[i:len(path):len(path)], name)
				}
			}
		case done:
			return nil
		}
		state[name] = visiting
		path = append(path, name)
		for _, next := range edges[name] {
			if cycle := visit(next); cycle != nil {
				return cycle
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		return nil
	}

	for _, name := range order {
		if state[name] != unvisited {
			continue
		}
		if cycle := visit(name); cycle != nil {
			return first[cycle[0]], fmt.Errorf("%w: %s", ErrCyclicReference, strings.Join(cycle, " -> "))
		}
	}
	return directive{}, nil
}
