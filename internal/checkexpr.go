package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Check expressions arrive from the schema document in prefix notation:
//
//	(> amount 0)
//	(and (>= (length display_name) 3) (<= (length display_name) 50))
//	(= (upper country_code) "US")
//
// A comparison compares the field value (optionally passed through a named
// transform) against a literal operand. Conjunctions combine comparisons.
// An unrecognized operator degrades to an always-true check so the store
// stays the authority on expressions the client cannot evaluate.

// Constraint is one compiled client-side check over a field value.
type Constraint interface {
	// Evaluate reports whether the value satisfies the constraint. Values
	// the constraint cannot interpret fail closed with ok=false.
	Evaluate(value any) bool
	// Describe renders the human-readable requirement, used in
	// validation messages.
	Describe() string
}

type comparisonConstraint struct {
	op        string
	operand   any
	transform *transformSpec
}

type conjunctionConstraint struct {
	children []Constraint
}

type alwaysTrueConstraint struct{}

func (alwaysTrueConstraint) Evaluate(any) bool { return true }
func (alwaysTrueConstraint) Describe() string  { return "" }

func (c *conjunctionConstraint) Evaluate(value any) bool {
	for _, child := range c.children {
		if !child.Evaluate(value) {
			return false
		}
	}
	return true
}

func (c *conjunctionConstraint) Describe() string {
	parts := make([]string, 0, len(c.children))
	for _, child := range c.children {
		if d := child.Describe(); d != "" {
			parts = append(parts, d)
		}
	}
	return strings.Join(parts, " and ")
}

func (c *comparisonConstraint) Evaluate(value any) bool {
	lhs := value
	if c.transform != nil {
		transformed, ok := c.transform.apply(value)
		if !ok {
			return false
		}
		lhs = transformed
	}
	return compareValues(c.op, lhs, c.operand)
}

func (c *comparisonConstraint) Describe() string {
	var subject string
	if c.transform != nil {
		subject = c.transform.name + " "
	}
	var rel string
	switch c.op {
	case ">":
		rel = "greater than"
	case ">=":
		rel = "at least"
	case "<":
		rel = "less than"
	case "<=":
		rel = "at most"
	case "=", "==":
		rel = "equal to"
	case "<>", "!=":
		rel = "different from"
	case "in":
		return fmt.Sprintf("%smust be one of %v", subject, c.operand)
	default:
		rel = c.op
	}
	return fmt.Sprintf("%smust be %s %v", subject, rel, c.operand)
}

// transformSpec names a value transform applied before comparison, with any
// extra arguments from the expression (e.g. substring bounds).
type transformSpec struct {
	name string
	args []any
}

func (t *transformSpec) apply(value any) (any, bool) {
	switch t.name {
	case "length":
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, false
		}
		return float64(len([]rune(s))), true
	case "upper":
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, false
		}
		return strings.ToUpper(s), true
	case "lower":
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, false
		}
		return strings.ToLower(s), true
	case "trim":
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, false
		}
		return strings.TrimSpace(s), true
	case "substring":
		s, err := cast.ToStringE(value)
		if err != nil || len(t.args) < 1 {
			return nil, false
		}
		runes := []rune(s)
		start := int(cast.ToInt64(t.args[0]))
		if start < 0 || start > len(runes) {
			return nil, false
		}
		end := len(runes)
		if len(t.args) > 1 {
			end = start + int(cast.ToInt64(t.args[1]))
			if end > len(runes) {
				end = len(runes)
			}
		}
		return string(runes[start:end]), true
	case "date-part":
		if len(t.args) < 1 {
			return nil, false
		}
		part, err := cast.ToStringE(t.args[0])
		if err != nil {
			return nil, false
		}
		ts, ok := toTimeValue(value)
		if !ok {
			return nil, false
		}
		switch part {
		case "year":
			return float64(ts.Year()), true
		case "month":
			return float64(int(ts.Month())), true
		case "day":
			return float64(ts.Day()), true
		case "hour":
			return float64(ts.Hour()), true
		default:
			return nil, false
		}
	case "age-in-years":
		ts, ok := toTimeValue(value)
		if !ok {
			return nil, false
		}
		now := time.Now()
		years := now.Year() - ts.Year()
		if now.YearDay() < ts.YearDay() {
			years--
		}
		return float64(years), true
	default:
		return nil, false
	}
}

var knownTransforms = map[string]bool{
	"length": true, "upper": true, "lower": true, "trim": true,
	"substring": true, "date-part": true, "age-in-years": true,
}

var knownOperators = map[string]bool{
	">": true, ">=": true, "<": true, "<=": true,
	"=": true, "==": true, "<>": true, "!=": true, "in": true,
}

// CompileCheck parses a prefix check expression into a Constraint. The field
// name identifies the value reference inside the expression. Unrecognized
// operators degrade to an always-true constraint and are logged, never
// rejected.
func CompileCheck(expr, field string) (Constraint, error) {
	node, rest, err := parseSexpr(strings.TrimSpace(expr))
	if err != nil {
		return nil, fmt.Errorf("check expression %q: %w", expr, err)
	}
	if strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("check expression %q: trailing content %q", expr, rest)
	}
	return compileNode(node, field, expr)
}

func compileNode(node sexpr, field, original string) (Constraint, error) {
	if node.atom != "" || len(node.list) == 0 {
		return nil, fmt.Errorf("check expression %q: expected a comparison or conjunction", original)
	}

	head := node.list[0].atom
	switch {
	case head == "and":
		children := make([]Constraint, 0, len(node.list)-1)
		for _, child := range node.list[1:] {
			compiled, err := compileNode(child, field, original)
			if err != nil {
				return nil, err
			}
			children = append(children, compiled)
		}
		return &conjunctionConstraint{children: children}, nil

	case knownOperators[head]:
		return compileComparison(node, field, original)

	default:
		zap.S().Warnw("unrecognized check operator, degrading to always-true",
			"operator", head, "field", field, "expression", original)
		return alwaysTrueConstraint{}, nil
	}
}

func compileComparison(node sexpr, field, original string) (Constraint, error) {
	op := node.list[0].atom
	if op == "in" {
		if len(node.list) < 3 {
			return nil, fmt.Errorf("check expression %q: 'in' requires a value set", original)
		}
		values := make([]any, 0, len(node.list)-2)
		for _, v := range node.list[2:] {
			values = append(values, atomLiteral(v.atom))
		}
		transform, err := valueTransform(node.list[1], field, original)
		if err != nil {
			return nil, err
		}
		return &comparisonConstraint{op: "in", operand: values, transform: transform}, nil
	}

	if len(node.list) != 3 {
		return nil, fmt.Errorf("check expression %q: comparison requires exactly two operands", original)
	}

	left, right := node.list[1], node.list[2]
	// The field reference may sit on either side; normalize to field-first.
	if referencesField(right, field) && !referencesField(left, field) {
		left, right = right, left
		op = flipOperator(op)
	}
	if !referencesField(left, field) {
		return nil, fmt.Errorf("check expression %q: no reference to field '%s'", original, field)
	}
	if right.atom == "" && len(right.list) > 0 {
		return nil, fmt.Errorf("check expression %q: operand must be a literal", original)
	}

	transform, err := valueTransform(left, field, original)
	if err != nil {
		return nil, err
	}
	return &comparisonConstraint{op: op, operand: atomLiteral(right.atom), transform: transform}, nil
}

// valueTransform extracts the transform wrapping a field reference, or nil
// for a bare reference.
func valueTransform(node sexpr, field, original string) (*transformSpec, error) {
	if node.atom != "" {
		return nil, nil
	}
	if len(node.list) == 0 {
		return nil, fmt.Errorf("check expression %q: empty operand", original)
	}
	name := node.list[0].atom
	if !knownTransforms[name] {
		return nil, fmt.Errorf("check expression %q: unknown transform '%s'", original, name)
	}

	spec := &transformSpec{name: name}
	for _, arg := range node.list[1:] {
		if arg.atom == field {
			continue
		}
		spec.args = append(spec.args, atomLiteral(arg.atom))
	}
	// date-part takes the part name before the field reference.
	return spec, nil
}

func referencesField(node sexpr, field string) bool {
	if node.atom == field {
		return true
	}
	for _, child := range node.list {
		if referencesField(child, field) {
			return true
		}
	}
	return false
}

func flipOperator(op string) string {
	switch op {
	case ">":
		return "<"
	case ">=":
		return "<="
	case "<":
		return ">"
	case "<=":
		return ">="
	default:
		return op
	}
}

// compareValues compares lhs against the literal operand, numerically when
// both sides are numbers and lexically otherwise.
func compareValues(op string, lhs, operand any) bool {
	if op == "in" {
		values, ok := operand.([]any)
		if !ok {
			return false
		}
		for _, v := range values {
			if compareValues("=", lhs, v) {
				return true
			}
		}
		return false
	}

	lnum, lerr := cast.ToFloat64E(lhs)
	rnum, rerr := cast.ToFloat64E(operand)
	if lerr == nil && rerr == nil {
		switch op {
		case ">":
			return lnum > rnum
		case ">=":
			return lnum >= rnum
		case "<":
			return lnum < rnum
		case "<=":
			return lnum <= rnum
		case "=", "==":
			return lnum == rnum
		case "<>", "!=":
			return lnum != rnum
		}
		return false
	}

	ls, lerr2 := cast.ToStringE(lhs)
	rs, rerr2 := cast.ToStringE(operand)
	if lerr2 != nil || rerr2 != nil {
		return false
	}
	switch op {
	case ">":
		return ls > rs
	case ">=":
		return ls >= rs
	case "<":
		return ls < rs
	case "<=":
		return ls <= rs
	case "=", "==":
		return ls == rs
	case "<>", "!=":
		return ls != rs
	}
	return false
}

func toTimeValue(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// atomLiteral converts an expression atom to its Go literal: quoted strings
// lose their quotes, numbers parse, booleans parse, everything else stays a
// string.
func atomLiteral(atom string) any {
	if len(atom) >= 2 && (atom[0] == '"' && atom[len(atom)-1] == '"' ||
		atom[0] == '\'' && atom[len(atom)-1] == '\'') {
		return atom[1 : len(atom)-1]
	}
	if n, err := strconv.ParseFloat(atom, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(atom); err == nil {
		return b
	}
	return atom
}

// sexpr is one node of a parsed prefix expression: either an atom or a list.
type sexpr struct {
	atom string
	list []sexpr
}

func parseSexpr(input string) (sexpr, string, error) {
	input = strings.TrimLeftFunc(input, unicode.IsSpace)
	if input == "" {
		return sexpr{}, "", fmt.Errorf("unexpected end of expression")
	}

	if input[0] == '(' {
		rest := input[1:]
		var children []sexpr
		for {
			rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
			if rest == "" {
				return sexpr{}, "", fmt.Errorf("unbalanced parentheses")
			}
			if rest[0] == ')' {
				return sexpr{list: children}, rest[1:], nil
			}
			child, remaining, err := parseSexpr(rest)
			if err != nil {
				return sexpr{}, "", err
			}
			children = append(children, child)
			rest = remaining
		}
	}

	if input[0] == '"' || input[0] == '\'' {
		quote := input[0]
		for i := 1; i < len(input); i++ {
			if input[i] == quote {
				return sexpr{atom: input[:i+1]}, input[i+1:], nil
			}
		}
		return sexpr{}, "", fmt.Errorf("unterminated string literal")
	}

	end := len(input)
	for i, r := range input {
		if unicode.IsSpace(r) || r == '(' || r == ')' {
			end = i
			break
		}
	}
	return sexpr{atom: input[:end]}, input[end:], nil
}
