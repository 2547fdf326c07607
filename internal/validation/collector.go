package validation

import (
	"strconv"
	"strings"

	"github.com/quartergroup/survey/backend/internal/sanitize"
)

// Entry is one raw key/value pair from the form, in form order. Repeated
// keys model multi-select checkbox groups.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Record is the candidate submission assembled from sanitized entries.
// Values are strings, or []string where a key repeated.
type Record map[string]interface{}

// Rating returns the numeric rating field, or zero when absent or malformed.
func (r Record) Rating() int {
	s, _ := r["rating"].(string)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Store returns the selected store name, defaulting to the flagship store.
func (r Record) Store() string {
	if s, ok := r["store"].(string); ok && s != "" {
		return s
	}
	return "QUARTER"
}

// stringField returns a scalar string field or empty.
func (r Record) stringField(key string) string {
	s, _ := r[key].(string)
	return s
}

// ReviewComment assembles the free-text comments offered for copy on the
// review-redirect view.
func (r Record) ReviewComment() string {
	var b strings.Builder
	if s := r.stringField("improvement"); s != "" {
		b.WriteString(s)
		b.WriteString(" ")
	}
	if s := r.stringField("otherComments"); s != "" {
		b.WriteString(s)
	}
	return strings.TrimSpace(b.String())
}

// ValidationError aggregates every failed field so the caller can surface
// all messages at once rather than just the first.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// Collector turns raw form entries into a Record, sanitizing and validating
// every string field on the way.
type Collector struct {
	san *sanitize.Sanitizer
	val *Validator
}

// NewCollector wires a sanitizer and validator into a Collector.
func NewCollector(san *sanitize.Sanitizer, val *Validator) *Collector {
	return &Collector{san: san, val: val}
}

// Collect sanitizes and validates every entry, assembles the record, and
// fails with a *ValidationError carrying every field's messages when any
// field is invalid. It never short-circuits: all fields are evaluated.
func (c *Collector) Collect(entries []Entry) (Record, error) {
	record := Record{}
	fieldErrors := map[string][]string{}

	for _, entry := range entries {
		value := c.san.Sanitize(entry.Value, entry.Key)
		if strings.TrimSpace(entry.Value) != "" {
			result := c.val.Validate(value, entry.Key)
			if !result.Valid {
				fieldErrors[entry.Key] = append(fieldErrors[entry.Key], result.Errors...)
			}
			value = result.Value
		}

		// First occurrence stays scalar; repeats promote to an ordered slice.
		if existing, ok := record[entry.Key]; ok {
			switch prev := existing.(type) {
			case []string:
				record[entry.Key] = append(prev, value)
			case string:
				record[entry.Key] = []string{prev, value}
			}
			continue
		}
		record[entry.Key] = value
	}

	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	return record, nil
}
