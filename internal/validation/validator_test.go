package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_LengthBounds(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name  string
		field string
		input string
		valid bool
	}{
		{"name at min", "name", "a", true},
		{"name at max", "name", strings.Repeat("a", 100), true},
		{"name over max", "name", strings.Repeat("a", 101), false},
		{"email under min", "email", "a@b", false},
		{"email ok", "email", "user@example.com", true},
		{"phone under min", "phone", "123", false},
		{"phone ok", "phone", "090-1234-5678", true},
		{"feedback empty ok (min zero)", "feedback", "", true},
		{"feedback at max", "feedback", strings.Repeat("x", 1000), true},
		{"feedback over max", "feedback", strings.Repeat("x", 1001), false},
		{"unconfigured field always valid", "visitFrequency", strings.Repeat("x", 5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.input, tt.field)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.input, res.Value, "value must pass through unchanged")
			if !tt.valid {
				assert.NotEmpty(t, res.Errors)
				assert.Contains(t, res.Errors[0], tt.field)
			}
		})
	}
}

func TestValidate_LengthCountsRunes(t *testing.T) {
	v := NewValidator()

	// 100 multibyte characters are within the name bound even though the
	// byte length is far larger.
	res := v.Validate(strings.Repeat("あ", 100), "name")
	assert.True(t, res.Valid)
}

func TestValidate_CharacterClasses(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name  string
		field string
		input string
		valid bool
	}{
		{"latin name", "name", "Taro Yamada", true},
		{"japanese name", "name", "山田 太郎", true},
		{"kana name", "name", "やまだ タロウ", true},
		{"name with digits", "name", "Taro 42", false},
		{"name with symbols", "name", "Taro!", false},
		{"valid email", "email", "user.name+tag@example.co.jp", true},
		{"email missing tld", "email", "user@example", false},
		{"email with spaces", "email", "user name@example.com", false},
		{"phone with punctuation", "phone", "+81 (90) 1234-5678", true},
		{"phone with letters", "phone", "09012345abc", false},
		{"unpatterned field", "feedback", "anything at all! <>&", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.input, tt.field)
			assert.Equal(t, tt.valid, res.Valid)
		})
	}
}

func TestValidate_EmptyStringPassesPatternCheck(t *testing.T) {
	v := NewValidator()

	// Absence is a required-field concern; only the length rule may complain.
	res := v.Validate("", "email")
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "at least")

	res = v.Validate("", "feedback")
	assert.True(t, res.Valid)
}

func TestValidate_CollectsBothErrorsInOrder(t *testing.T) {
	v := NewValidator()

	// Too long and wrong character class: length message first.
	res := v.Validate(strings.Repeat("1", 101), "name")
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "characters or fewer")
	assert.Contains(t, res.Errors[1], "letters and spaces")
}
