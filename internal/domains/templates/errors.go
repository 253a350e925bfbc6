package templates

import (
	"errors"
	"strconv"

	"github.com/itsatony/go-cuserr"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrPatientNotFound  = errors.New("patient not found")
	ErrSystemTemplate   = errors.New("system templates cannot be modified")
	ErrTemplateInactive = errors.New("template is not active")

	ErrNameRequired    = errors.New("name is required")
	ErrBodyRequired    = errors.New("body is required")
	ErrInvalidCategory = errors.New("unknown category")
	ErrInvalidChannel  = errors.New("channel must be sms or email")
	ErrTemplateInvalid = errors.New("template is not renderable")
	ErrUnknownVariable = errors.New("template references unknown variables")
	ErrOptOutRequired  = errors.New("marketing templates must include opt-out instructions with keyword in ALL CAPS (STOP, UNSUBSCRIBE, END, CANCEL, or QUIT)")
)

// Metadata keys
const (
	MetaKeyTemplateID = "template_id"
	MetaKeyDetail     = "detail"
)

const (
	errCodeTemplateValidation = "TEMPLATE_VALIDATION"
	errCodeTemplateNotFound   = "TEMPLATE_NOT_FOUND"
)

func validationError(cause error, detail string) error {
	err := cuserr.WrapStdError(cause, errCodeTemplateValidation, cause.Error())
	if detail != "" {
		err = err.WithMetadata(MetaKeyDetail, detail)
	}
	return err
}

func notFoundError(id int32) error {
	return cuserr.WrapStdError(ErrTemplateNotFound, errCodeTemplateNotFound, ErrTemplateNotFound.Error()).
		WithMetadata(MetaKeyTemplateID, strconv.Itoa(int(id)))
}

// errorMessage renders err for API clients: the sentinel text plus any detail
// attached when it was raised.
func errorMessage(err error, sentinel error) string {
	var ce *cuserr.CustomError
	if errors.As(err, &ce) {
		if detail, ok := ce.GetMetadata(MetaKeyDetail); ok {
			return sentinel.Error() + ": " + detail
		}
	}
	return sentinel.Error()
}

// structuralError reports a template that cannot be parsed, carrying the
// parse offset through to the API response.
func structuralError(err error) error {
	out := cuserr.WrapStdError(ErrTemplateInvalid, errCodeTemplateValidation, ErrTemplateInvalid.Error()).
		WithMetadata(MetaKeyDetail, structuralDetail(err))
	var ce *cuserr.CustomError
	if errors.As(err, &ce) {
		if offset, ok := ce.GetMetadata(templating.MetaKeyOffset); ok {
			out = out.WithMetadata(templating.MetaKeyOffset, offset)
		}
	}
	return out
}

// errorDetails collects the metadata API clients can act on.
func errorDetails(err error) map[string]string {
	var ce *cuserr.CustomError
	if !errors.As(err, &ce) {
		return nil
	}
	details := make(map[string]string)
	for _, key := range []string{MetaKeyDetail, MetaKeyTemplateID, templating.MetaKeyOffset} {
		if v, ok := ce.GetMetadata(key); ok {
			details[key] = v
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// structuralDetail describes a template parse error with its byte offset.
func structuralDetail(err error) string {
	msg := templating.ErrMsgUnterminatedConditional
	if errors.Is(err, templating.ErrUnterminatedIfTag) {
		msg = templating.ErrMsgUnterminatedIfTag
	}
	var ce *cuserr.CustomError
	if errors.As(err, &ce) {
		if offset, ok := ce.GetMetadata(templating.MetaKeyOffset); ok {
			return msg + " at offset " + offset
		}
	}
	return msg
}
