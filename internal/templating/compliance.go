package templating

import (
	"fmt"
	"regexp"
	"strings"
)

// sensitiveTerms are words that suggest protected health information in an
// unencrypted SMS.
var sensitiveTerms = []string{
	"diagnosis",
	"condition",
	"treatment for",
	"medication",
	"prescription",
	"hiv",
	"cancer",
	"mental health",
	"psychiatric",
	"addiction",
	"substance abuse",
	"std",
	"pregnant",
	"pregnancy",
}

var sensitiveTermPattern = func() *regexp.Regexp {
	quoted := make([]string, len(sensitiveTerms))
	for i, t := range sensitiveTerms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}()

// CheckCompliance returns one warning per sensitive term found in message,
// matched on word boundaries, in first-seen order.
func CheckCompliance(message string) []string {
	warnings := make([]string, 0)
	seen := make(map[string]struct{})
	for _, m := range sensitiveTermPattern.FindAllString(message, -1) {
		term := strings.ToLower(m)
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		warnings = append(warnings, fmt.Sprintf(WarnSensitiveTermFmt, term))
	}
	return warnings
}
