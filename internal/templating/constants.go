package templating

// Template syntax
const (
	StrOpenBrace    = "{"
	StrCloseBrace   = "}"
	StrOpenIf       = "{if"
	StrCloseIf      = "{/if}"
	KeywordIf       = "if"
	PathSeparator   = "."
	ConditionalKeyf = "__conditional_%d"
)

// SMS segmentation limits (GSM-7 concatenated SMS)
const (
	SMSSingleSegmentLimit = 160
	SMSMultiSegmentLimit  = 153
	SMSWarningMargin      = 20
)

// Namespaces of the template context
const (
	NamespacePatient     = "patient"
	NamespaceAppointment = "appointment"
	NamespaceClinic      = "clinic"
)

// Output layouts
const (
	LayoutShortDate  = "Jan 2"
	LayoutClock24    = "15:04"
	LayoutClock12    = "3:04 PM"
	LayoutISODate    = "2006-01-02"
	CurrencySymbol   = "$"
	DateTimeJoin     = " at "
	DurationOneHour  = "1 hour"
	DurationHoursFmt = "%s hours"
)

// Warning message formats
const (
	WarnMissingVariableFmt  = "Missing variable: %s"
	WarnConditionFmt        = "Condition %q evaluated to false: %v"
	WarnUnmatchedCloseFmt   = "Unmatched {/if} at offset %d"
	WarnMultiSegmentFmt     = "Message is %d characters (%d SMS segments). Additional charges may apply."
	WarnNearSingleLimitFmt  = "Message is %d characters. Only %d characters remaining before split into multiple segments."
	WarnNearSegmentLimitFmt = "Only %d characters remaining in segment %d before another segment is added."
	WarnNonGSMCharacters    = "Message contains characters outside the GSM-7 alphabet; carriers may bill it as UCS-2 with 70-character segments."
	WarnSensitiveTermFmt    = "Contains potentially HIPAA-sensitive term: %q"
)

// Log messages
const (
	LogMsgEngineCreated      = "template engine created"
	LogMsgRenderStart        = "rendering template"
	LogMsgRenderStructural   = "template has a structural error"
	LogMsgConditionEvaluated = "conditional evaluated"
	LogMsgVariablesResolved  = "variables resolved"
	LogMsgRenderComplete     = "render complete"
)

// Log field names
const (
	LogFieldTemplateLength = "template_length"
	LogFieldBlockKey       = "block"
	LogFieldCondition      = "condition"
	LogFieldResult         = "result"
	LogFieldUsed           = "used_count"
	LogFieldMissing        = "missing_count"
	LogFieldCharacters     = "character_count"
	LogFieldSegments       = "segment_count"
	LogFieldWarnings       = "warning_count"
)
