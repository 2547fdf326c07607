// Package sanitize strips dangerous substrings from user input and flags
// suspicious payloads. Sanitization is destructive removal; escaping for
// display lives in EscapeForDisplay and preserves content.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/quartergroup/survey/backend/internal/models"
	"github.com/quartergroup/survey/backend/internal/util"
)

// EventRecorder receives advisory security events emitted during
// sanitization. Detection never rejects input; it only records.
type EventRecorder interface {
	Record(eventType, level string, details map[string]interface{})
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string, map[string]interface{}) {}

// XSS payload signatures. Matching any of these is advisory: the input is
// still sanitized and processed.
var xssPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script\b.*?</script>`),
	regexp.MustCompile(`(?is)<iframe\b.*?</iframe>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)\bon\w+\s*=`),
	regexp.MustCompile(`(?i)<img[^>]+src\s*=\s*["']?\s*javascript:`),
}

// SQL-injection style signatures.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(union|select|insert|update|delete|drop|create)\b`),
	regexp.MustCompile(`(?i)['";]\s*(or|and)\s*['";]?\s*=`),
	regexp.MustCompile(`(?m)--\s*$`),
	regexp.MustCompile(`(?s)/\*.*?\*/`),
}

// Destructive removal passes, applied in order.
var (
	scriptBlocks = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	styleBlocks  = regexp.MustCompile(`(?is)<style\b.*?</style>`)
	anyTag       = regexp.MustCompile(`<[^>]+>`)
	angleChars   = regexp.MustCompile(`[<>]`)
	jsScheme     = regexp.MustCompile(`(?i)javascript:`)
	eventAttrs   = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// Sanitizer strips dangerous substrings from single text values and reports
// suspicious patterns to its recorder.
type Sanitizer struct {
	rec EventRecorder
}

// New returns a Sanitizer reporting to rec. A nil recorder means detection
// stays silent.
func New(rec EventRecorder) *Sanitizer {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Sanitizer{rec: rec}
}

// Sanitize trims the value and destructively removes markup and script
// vectors. It is a pure function of its input, never fails, and is
// idempotent: sanitizing already-sanitized input returns it unchanged.
func (s *Sanitizer) Sanitize(raw, fieldName string) string {
	if raw == "" {
		return ""
	}

	original := strings.TrimSpace(raw)
	suspicious := false
	if s.detectXSS(original, fieldName) {
		suspicious = true
	}
	if s.detectInjection(original, fieldName) {
		suspicious = true
	}
	if suspicious {
		s.rec.Record(models.EventSuspiciousInput, models.LevelWarning, map[string]interface{}{
			"field":  fieldName,
			"action": "sanitized",
		})
	}

	sanitized := scriptBlocks.ReplaceAllString(original, "")
	sanitized = styleBlocks.ReplaceAllString(sanitized, "")
	sanitized = anyTag.ReplaceAllString(sanitized, "")
	sanitized = angleChars.ReplaceAllString(sanitized, "")
	sanitized = jsScheme.ReplaceAllString(sanitized, "")
	sanitized = eventAttrs.ReplaceAllString(sanitized, "")

	return sanitized
}

// detectXSS records an xss_attempt event for the first matching signature.
func (s *Sanitizer) detectXSS(input, fieldName string) bool {
	for _, p := range xssPatterns {
		if p.MatchString(input) {
			s.rec.Record(models.EventXSSAttempt, models.LevelWarning, map[string]interface{}{
				"field":   fieldName,
				"pattern": p.String(),
				"input":   util.SanitizeForLog(util.Truncate(input, 100)),
			})
			return true
		}
	}
	return false
}

// detectInjection records an injection_attempt event for the first matching
// signature.
func (s *Sanitizer) detectInjection(input, fieldName string) bool {
	for _, p := range injectionPatterns {
		if p.MatchString(input) {
			s.rec.Record(models.EventInjectionAttempt, models.LevelWarning, map[string]interface{}{
				"field":   fieldName,
				"pattern": p.String(),
				"input":   util.SanitizeForLog(util.Truncate(input, 100)),
			})
			return true
		}
	}
	return false
}

var displayEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeForDisplay makes a string safe to embed in markup while preserving
// its displayed content. Distinct from Sanitize, which removes.
func EscapeForDisplay(s string) string {
	if s == "" {
		return ""
	}
	return displayEscaper.Replace(s)
}
