// Package validation enforces per-field structural rules and assembles raw
// form entries into a candidate submission record.
package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Limits bounds a field's length in runes. Min of zero means no minimum;
// both bounds are inclusive.
type Limits struct {
	Min int
	Max int
}

// DefaultLimits holds the per-field length table. Fields without an entry
// are always length-valid.
var DefaultLimits = map[string]Limits{
	"name":          {Min: 1, Max: 100},
	"email":         {Min: 5, Max: 254}, // RFC 5321 upper bound
	"phone":         {Min: 10, Max: 20},
	"feedback":      {Min: 0, Max: 1000},
	"improvement":   {Min: 0, Max: 1000},
	"otherComments": {Min: 0, Max: 1000},
}

// DefaultPatterns holds the per-field character-class rules. Fields without
// an entry are always pattern-valid, as is the empty string (required-field
// policy is the caller's concern).
var DefaultPatterns = map[string]*regexp.Regexp{
	// Letters, CJK ranges, kana, and spaces.
	"name": regexp.MustCompile(`^[a-zA-Z\s\x{3040}-\x{309f}\x{30a0}-\x{30ff}\x{4e00}-\x{9faf}\x{3400}-\x{4dbf}\x{20000}-\x{2a6df}\x{2a700}-\x{2b73f}\x{2b740}-\x{2b81f}\x{2b820}-\x{2ceaf}\x{ff66}-\x{ff9f}\x{3000}-\x{303f}]+$`),
	"email": regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`),
	"phone": regexp.MustCompile(`^[\d\s\-\+\(\)]+$`),
}

// Result is the outcome of validating one already-sanitized field value.
// Value carries the input through unchanged.
type Result struct {
	Valid  bool     `json:"valid"`
	Value  string   `json:"value"`
	Errors []string `json:"errors"`
}

// Validator applies length and character-class rules per field.
type Validator struct {
	limits   map[string]Limits
	patterns map[string]*regexp.Regexp
}

// NewValidator returns a Validator using the default field tables.
func NewValidator() *Validator {
	return &Validator{limits: DefaultLimits, patterns: DefaultPatterns}
}

// Validate checks length bounds first, then the character class, collecting
// both errors when both fail. The sanitized value is returned unchanged.
func (v *Validator) Validate(sanitized, field string) Result {
	var errs []string

	if msg, ok := v.checkLength(sanitized, field); !ok {
		errs = append(errs, msg)
	}
	if msg, ok := v.checkPattern(sanitized, field); !ok {
		errs = append(errs, msg)
	}

	return Result{Valid: len(errs) == 0, Value: sanitized, Errors: errs}
}

func (v *Validator) checkLength(input, field string) (string, bool) {
	limits, ok := v.limits[field]
	if !ok {
		return "", true
	}

	length := utf8.RuneCountInString(input)
	if limits.Min > 0 && length < limits.Min {
		return fmt.Sprintf("%s must be at least %d characters", field, limits.Min), false
	}
	if length > limits.Max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, limits.Max), false
	}
	return "", true
}

func (v *Validator) checkPattern(input, field string) (string, bool) {
	pattern, ok := v.patterns[field]
	if !ok {
		return "", true
	}
	// Absence is a required-field concern, not a character-class failure.
	if input == "" {
		return "", true
	}
	if pattern.MatchString(input) {
		return "", true
	}

	switch field {
	case "name":
		return "name may only contain letters and spaces", false
	case "email":
		return "enter a valid email address", false
	case "phone":
		return "enter a valid phone number", false
	default:
		return fmt.Sprintf("%s contains invalid characters", field), false
	}
}
