package templating

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierPath is the shape of a variable path: dotted identifiers.
const identifierPath = `[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*`

var (
	placeholderPattern = regexp.MustCompile(`\{(` + identifierPath + `)\}`)
	pathPattern        = regexp.MustCompile(`^` + identifierPath + `$`)
)

// Conditional is one {if <condition>}...{/if} block. Start and End are byte
// offsets of the whole block, wrapper included, in the parsed template.
type Conditional struct {
	Key       string `json:"key"`
	Condition string `json:"condition"`
	Body      string `json:"body"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

// ParseVariables returns the variable paths referenced by template placeholders,
// deduplicated in first-seen order. Malformed tokens are skipped.
func ParseVariables(template string) []string {
	vars := make([]string, 0)
	seen := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		path := m[1]
		if path == KeywordIf {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		vars = append(vars, path)
	}
	return vars
}

// ParseConditionals scans template left to right for conditional blocks. Blocks
// do not nest: the first {/if} after an {if} closes it. An {if} that never
// closes is a structural error.
func ParseConditionals(template string) ([]Conditional, error) {
	blocks := make([]Conditional, 0)
	pos := 0
	for {
		start := indexOpenIf(template, pos)
		if start < 0 {
			return blocks, nil
		}

		head := strings.Index(template[start:], StrCloseBrace)
		if head < 0 {
			return nil, NewUnterminatedIfTagError(start)
		}
		head += start

		condition := strings.TrimSpace(template[start+len(StrOpenIf) : head])
		bodyStart := head + len(StrCloseBrace)

		closing := strings.Index(template[bodyStart:], StrCloseIf)
		if closing < 0 {
			return nil, NewUnterminatedConditionalError(start, condition)
		}
		closing += bodyStart
		end := closing + len(StrCloseIf)

		blocks = append(blocks, Conditional{
			Key:       fmt.Sprintf(ConditionalKeyf, len(blocks)),
			Condition: condition,
			Body:      template[bodyStart:closing],
			Start:     start,
			End:       end,
		})
		pos = end
	}
}

// indexOpenIf finds the next "{if" that is followed by whitespace or "}", so
// placeholders such as {iffy.name} are not mistaken for tags.
func indexOpenIf(template string, from int) int {
	for from < len(template) {
		i := strings.Index(template[from:], StrOpenIf)
		if i < 0 {
			return -1
		}
		i += from
		next := i + len(StrOpenIf)
		if next >= len(template) {
			return i
		}
		switch template[next] {
		case ' ', '\t', '\n', '\r', '}':
			return i
		}
		from = i + 1
	}
	return -1
}

// unmatchedClosers returns offsets of {/if} markers outside every block.
func unmatchedClosers(template string, blocks []Conditional) []int {
	var offsets []int
	pos := 0
	for _, b := range blocks {
		offsets = append(offsets, closersIn(template[pos:b.Start], pos)...)
		pos = b.End
	}
	return append(offsets, closersIn(template[pos:], pos)...)
}

func closersIn(s string, base int) []int {
	var offsets []int
	for i := 0; ; {
		j := strings.Index(s[i:], StrCloseIf)
		if j < 0 {
			return offsets
		}
		offsets = append(offsets, base+i+j)
		i += j + len(StrCloseIf)
	}
}
