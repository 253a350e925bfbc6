package templating

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ConditionKind distinguishes the two condition shapes.
type ConditionKind int

const (
	ConditionTruthy ConditionKind = iota
	ConditionCompare
)

// Operator is a comparison operator.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
)

// two-character operators first so ">=" is not read as ">"
var operators = []Operator{OpEqual, OpNotEqual, OpGreaterEqual, OpLessEqual, OpGreater, OpLess}

func (o Operator) ordering() bool {
	return o == OpGreater || o == OpGreaterEqual || o == OpLess || o == OpLessEqual
}

// LiteralKind is the type of the right-hand side of a comparison.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBool
)

type Literal struct {
	Kind   LiteralKind
	String string
	Number float64
	Bool   bool
}

// Condition is either Truthy(Path) or Compare(Path, Op, Literal).
type Condition struct {
	Kind    ConditionKind
	Path    string
	Op      Operator
	Literal Literal
}

// ParseCondition splits text into path, optional operator and optional literal.
func ParseCondition(text string) (Condition, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Condition{}, fmt.Errorf("%w: %s", ErrInvalidCondition, ErrMsgEmptyCondition)
	}

	idx, op := findOperator(text)
	if idx < 0 {
		if !pathPattern.MatchString(text) {
			return Condition{}, fmt.Errorf("%w: %s %q", ErrInvalidCondition, ErrMsgInvalidPath, text)
		}
		return Condition{Kind: ConditionTruthy, Path: text}, nil
	}

	path := strings.TrimSpace(text[:idx])
	if !pathPattern.MatchString(path) {
		return Condition{}, fmt.Errorf("%w: %s %q", ErrInvalidCondition, ErrMsgInvalidPath, path)
	}
	lit, err := parseLiteral(strings.TrimSpace(text[idx+len(op):]))
	if err != nil {
		return Condition{}, err
	}
	return Condition{Kind: ConditionCompare, Path: path, Op: op, Literal: lit}, nil
}

// findOperator returns the position of the first operator outside quotes.
func findOperator(text string) (int, Operator) {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			continue
		}
		for _, op := range operators {
			if strings.HasPrefix(text[i:], string(op)) {
				return i, op
			}
		}
	}
	return -1, ""
}

func parseLiteral(s string) (Literal, error) {
	if s == "" {
		return Literal{}, fmt.Errorf("%w: %s", ErrInvalidCondition, ErrMsgMissingLiteral)
	}
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return Literal{Kind: LiteralString, String: s[1 : len(s)-1]}, nil
	}
	switch s {
	case "true":
		return Literal{Kind: LiteralBool, Bool: true}, nil
	case "false":
		return Literal{Kind: LiteralBool, Bool: false}, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return Literal{}, fmt.Errorf("%w: %s, got %s", ErrInvalidCondition, ErrMsgInvalidLiteral, s)
	}
	return Literal{Kind: LiteralNumber, Number: n}, nil
}

// Evaluate resolves the condition's path in raw mode and applies it. A missing
// value differs from every literal: != holds, == and the orderings do not.
// A value of the wrong type for the literal is false together with
// ErrNotComparable.
func (c Condition) Evaluate(ctx *Context) (bool, error) {
	res := Resolve(c.Path, ctx, ModeRaw)
	if c.Kind == ConditionTruthy {
		return res.Found && truthy(res.Value), nil
	}
	if !res.Found {
		return c.Op == OpNotEqual, nil
	}

	switch c.Literal.Kind {
	case LiteralString:
		if c.Op.ordering() {
			return false, c.notComparable(res.Value)
		}
		eq := plainString(res.Value) == c.Literal.String
		return eq == (c.Op == OpEqual), nil

	case LiteralBool:
		b, ok := res.Value.(bool)
		if !ok || c.Op.ordering() {
			return false, c.notComparable(res.Value)
		}
		eq := b == c.Literal.Bool
		return eq == (c.Op == OpEqual), nil

	default:
		n, ok := toNumber(res.Value)
		if !ok {
			return false, c.notComparable(res.Value)
		}
		return compareNumbers(n, c.Op, c.Literal.Number), nil
	}
}

func (c Condition) notComparable(v any) error {
	return fmt.Errorf("%w: %s is %T", ErrNotComparable, c.Path, v)
}

func compareNumbers(a float64, op Operator, b float64) bool {
	switch op {
	case OpEqual:
		return a == b
	case OpNotEqual:
		return a != b
	case OpGreater:
		return a > b
	case OpGreaterEqual:
		return a >= b
	case OpLess:
		return a < b
	case OpLessEqual:
		return a <= b
	default:
		return false
	}
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case float64:
		return val != 0 && !math.IsNaN(val)
	case time.Time:
		return !val.IsZero()
	default:
		return true
	}
}

// EvaluateCondition parses and evaluates text against ctx. Any error means
// the result is false; the renderer reports it as a warning.
func EvaluateCondition(text string, ctx *Context) (bool, error) {
	cond, err := ParseCondition(text)
	if err != nil {
		return false, err
	}
	return cond.Evaluate(ctx)
}
