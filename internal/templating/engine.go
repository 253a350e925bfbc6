// Package templating renders patient message templates: {namespace.field}
// placeholders, non-nested {if condition}...{/if} blocks and SMS
// segmentation metadata.
package templating

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// VariableUsage reports which paths a render referenced.
type VariableUsage struct {
	Used    []string `json:"used"`
	Missing []string `json:"missing"`
}

// RenderResult is the outcome of one render. Warnings are advisory; Success is
// false only for a structural error, in which case Message is the unrendered
// template and Errors says why.
type RenderResult struct {
	Success        bool          `json:"success"`
	Message        string        `json:"message"`
	Warnings       []string      `json:"warnings"`
	Errors         []string      `json:"errors"`
	Variables      VariableUsage `json:"variables"`
	CharacterCount int           `json:"characterCount"`
	SegmentCount   int           `json:"segmentCount"`
}

func newResult() RenderResult {
	return RenderResult{
		Warnings: make([]string, 0),
		Errors:   make([]string, 0),
		Variables: VariableUsage{
			Used:    make([]string, 0),
			Missing: make([]string, 0),
		},
		SegmentCount: 1,
	}
}

// Engine renders templates. It keeps no state between calls and is safe for
// concurrent use.
type Engine struct {
	logger     zerolog.Logger
	compliance bool
}

type Option func(*Engine)

// WithLogger sets the logger used for debug tracing of renders.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithComplianceCheck toggles the sensitive-term warnings. On by default.
func WithComplianceCheck(enabled bool) Option {
	return func(e *Engine) {
		e.compliance = enabled
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		logger:     zerolog.Nop(),
		compliance: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger.Debug().Bool("compliance", e.compliance).Msg(LogMsgEngineCreated)
	return e
}

// Validate returns the structural error that would make Render fail, if any.
func (e *Engine) Validate(template string) error {
	_, err := ParseConditionals(template)
	return err
}

// Render resolves conditionals, substitutes variables and annotates the
// result with SMS metadata. A nil ctx renders every variable as missing.
func (e *Engine) Render(template string, ctx *Context) RenderResult {
	result := newResult()
	if template == "" {
		result.Success = true
		return result
	}

	e.logger.Debug().Int(LogFieldTemplateLength, len(template)).Msg(LogMsgRenderStart)

	blocks, err := ParseConditionals(template)
	if err != nil {
		e.logger.Debug().Err(err).Msg(LogMsgRenderStructural)
		info := Segment(template)
		result.Message = template
		result.Errors = append(result.Errors, err.Error())
		result.CharacterCount = info.CharacterCount
		result.SegmentCount = info.SegmentCount
		return result
	}

	for _, offset := range unmatchedClosers(template, blocks) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(WarnUnmatchedCloseFmt, offset))
	}

	text := e.resolveConditionals(template, blocks, ctx, &result)
	message := e.substitute(text, ctx, &result)

	info := Segment(message)
	result.Success = true
	result.Message = message
	result.CharacterCount = info.CharacterCount
	result.SegmentCount = info.SegmentCount
	result.Warnings = append(result.Warnings, info.Warnings...)
	if e.compliance {
		result.Warnings = append(result.Warnings, CheckCompliance(message)...)
	}

	e.logger.Debug().
		Int(LogFieldCharacters, result.CharacterCount).
		Int(LogFieldSegments, result.SegmentCount).
		Int(LogFieldWarnings, len(result.Warnings)).
		Msg(LogMsgRenderComplete)
	return result
}

// resolveConditionals rebuilds the template from the original block spans,
// keeping the raw body of blocks whose condition holds and dropping the rest.
func (e *Engine) resolveConditionals(template string, blocks []Conditional, ctx *Context, result *RenderResult) string {
	if len(blocks) == 0 {
		return template
	}

	var b strings.Builder
	b.Grow(len(template))
	pos := 0
	for _, block := range blocks {
		b.WriteString(template[pos:block.Start])

		keep, err := EvaluateCondition(block.Condition, ctx)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf(WarnConditionFmt, block.Condition, err))
		}
		e.logger.Debug().
			Str(LogFieldBlockKey, block.Key).
			Str(LogFieldCondition, block.Condition).
			Bool(LogFieldResult, keep).
			Msg(LogMsgConditionEvaluated)

		if keep {
			b.WriteString(block.Body)
		}
		pos = block.End
	}
	b.WriteString(template[pos:])
	return b.String()
}

// substitute replaces every placeholder in a single pass, so substituted
// values are never scanned for further placeholders.
func (e *Engine) substitute(text string, ctx *Context, result *RenderResult) string {
	vars := ParseVariables(text)
	if len(vars) == 0 {
		return text
	}

	values := make(map[string]string, len(vars))
	for _, path := range vars {
		result.Variables.Used = append(result.Variables.Used, path)
		res := Resolve(path, ctx, ModeFormatted)
		if !res.Found {
			result.Variables.Missing = append(result.Variables.Missing, path)
			result.Warnings = append(result.Warnings, fmt.Sprintf(WarnMissingVariableFmt, path))
			values[path] = ""
			continue
		}
		values[path] = res.Value.(string)
	}

	e.logger.Debug().
		Int(LogFieldUsed, len(result.Variables.Used)).
		Int(LogFieldMissing, len(result.Variables.Missing)).
		Msg(LogMsgVariablesResolved)

	return placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		path := token[len(StrOpenBrace) : len(token)-len(StrCloseBrace)]
		if v, ok := values[path]; ok {
			return v
		}
		return token
	})
}
