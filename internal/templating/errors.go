package templating

import (
	"errors"
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Error codes
const (
	ErrCodeTemplateParse = "TEMPLATE_PARSE"
)

// Error messages
const (
	ErrMsgUnterminatedConditional = "conditional block has no matching {/if}"
	ErrMsgUnterminatedIfTag       = "conditional tag is missing its closing brace"
	ErrMsgEmptyCondition          = "condition is empty"
	ErrMsgInvalidPath             = "invalid variable path"
	ErrMsgMissingLiteral          = "comparison is missing a value"
	ErrMsgInvalidLiteral          = "comparison value must be a quoted string, a number or true/false"
	ErrMsgNotComparable           = "value cannot be compared"
)

// Metadata keys attached to structural errors
const (
	MetaKeyOffset    = "offset"
	MetaKeyCondition = "condition"
)

var (
	// ErrUnterminatedConditional marks an {if} without a matching {/if}.
	ErrUnterminatedConditional = errors.New(ErrMsgUnterminatedConditional)
	// ErrUnterminatedIfTag marks an {if ... with no closing brace.
	ErrUnterminatedIfTag = errors.New(ErrMsgUnterminatedIfTag)

	ErrInvalidCondition = errors.New("invalid condition")
	ErrNotComparable    = errors.New(ErrMsgNotComparable)
)

// NewUnterminatedConditionalError reports an {if} block that never closes.
func NewUnterminatedConditionalError(offset int, condition string) error {
	return cuserr.WrapStdError(ErrUnterminatedConditional, ErrCodeTemplateParse, ErrMsgUnterminatedConditional).
		WithMetadata(MetaKeyOffset, strconv.Itoa(offset)).
		WithMetadata(MetaKeyCondition, condition)
}

// NewUnterminatedIfTagError reports an {if tag whose closing brace is missing.
func NewUnterminatedIfTagError(offset int) error {
	return cuserr.WrapStdError(ErrUnterminatedIfTag, ErrCodeTemplateParse, ErrMsgUnterminatedIfTag).
		WithMetadata(MetaKeyOffset, strconv.Itoa(offset))
}

// IsStructuralError reports whether err makes a template unrenderable.
func IsStructuralError(err error) bool {
	return errors.Is(err, ErrUnterminatedConditional) || errors.Is(err, ErrUnterminatedIfTag)
}
