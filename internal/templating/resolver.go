package templating

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Mode selects between typed values for conditions and display strings for
// substitution.
type Mode int

const (
	ModeFormatted Mode = iota
	ModeRaw
)

// Resolution is the outcome of resolving one variable path. In ModeFormatted
// Value is always a string when Found is true.
type Resolution struct {
	Found bool
	Value any
}

// Resolve looks path up in the closed variable schema and reads it from ctx.
// Unknown paths and absent values both resolve as not found.
func Resolve(path string, ctx *Context, mode Mode) Resolution {
	f, ok := lookupField(path)
	if !ok {
		return Resolution{}
	}
	v, ok := f.get(ctx)
	if !ok {
		return Resolution{}
	}
	if mode == ModeRaw {
		return Resolution{Found: true, Value: v}
	}
	return Resolution{Found: true, Value: formatValue(f.Format, v)}
}

// AvailableVariables lists the schema entries of every namespace present in
// ctx, in schema order.
func AvailableVariables(ctx *Context) []Variable {
	vars := make([]Variable, 0)
	for _, n := range schema.order {
		if !n.present(ctx) {
			continue
		}
		for _, f := range n.fields {
			vars = append(vars, f.Variable)
		}
	}
	return vars
}

// AllVariables lists the whole schema regardless of context.
func AllVariables() []Variable {
	vars := make([]Variable, 0)
	for _, n := range schema.order {
		for _, f := range n.fields {
			vars = append(vars, f.Variable)
		}
	}
	return vars
}

// IsKnownVariable reports whether path exists in the schema.
func IsKnownVariable(path string) bool {
	_, ok := lookupField(path)
	return ok
}

func formatValue(format Format, v any) string {
	switch format {
	case FormatCurrency:
		if n, ok := toNumber(v); ok {
			return formatCurrency(n)
		}
	case FormatDate:
		if t, ok := v.(time.Time); ok {
			return formatDate(t)
		}
	case FormatTime:
		if s, ok := v.(string); ok {
			return formatClock(s)
		}
	}
	return plainString(v)
}

func formatCurrency(n float64) string {
	if n < 0 {
		return "-" + CurrencySymbol + strconv.FormatFloat(math.Abs(n), 'f', 2, 64)
	}
	return CurrencySymbol + strconv.FormatFloat(n, 'f', 2, 64)
}

// formatDate keeps only the date portion; time of day is a separate field.
func formatDate(t time.Time) string {
	return t.Format(LayoutShortDate)
}

// formatClock turns 24h "HH:MM" into "3:04 PM"; anything else is kept as written.
func formatClock(s string) string {
	t, err := time.Parse(LayoutClock24, s)
	if err != nil {
		return s
	}
	return t.Format(LayoutClock12)
}

// plainString is the default conversion shared by text fields and string
// comparisons in conditions.
func plainString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(LayoutISODate)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
