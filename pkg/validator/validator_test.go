package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain international", "+201001234567", "+201001234567", nil},
		{"spaces and dashes", "+1 (415) 555-2671", "+14155552671", nil},
		{"letters dropped", "+44 abc 7911 123456", "+447911123456", nil},
		{"exactly ten characters", "+123456789", "+123456789", nil},
		{"nine characters", "+12345678", "", ErrPhoneTooShort},
		{"missing plus", "201001234567", "", ErrPhoneMissingPlus},
		{"plus not first", "20+1001234567", "", ErrPhoneMissingPlus},
		{"empty", "", "", ErrEmptyPhone},
		{"whitespace only", "   ", "", ErrEmptyPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateCustomSlug(t *testing.T) {
	tests := []struct {
		slug    string
		wantErr error
	}{
		{"sale", nil},
		{"my-shop_2024", nil},
		{"ab", ErrInvalidSlugLength},
		{strings.Repeat("a", 33), ErrInvalidSlugLength},
		{"has space", ErrInvalidSlugFormat},
		{"عربي-slug", ErrInvalidSlugFormat},
		{"slash/no", ErrInvalidSlugFormat},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := ValidateCustomSlug(tt.slug)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateArticleSlug(t *testing.T) {
	assert.NoError(t, ValidateArticleSlug("كيف-تستخدم-واتساب"))
	assert.NoError(t, ValidateArticleSlug("whatsapp-tips-2024"))
	assert.ErrorIs(t, ValidateArticleSlug(""), ErrInvalidArticleSlug)
	assert.ErrorIs(t, ValidateArticleSlug("no spaces"), ErrInvalidArticleSlug)
	assert.ErrorIs(t, ValidateArticleSlug("no/slash"), ErrInvalidArticleSlug)
}

func TestValidateMessage(t *testing.T) {
	assert.NoError(t, ValidateMessage(""))
	assert.NoError(t, ValidateMessage(strings.Repeat("م", 1000)))
	assert.ErrorIs(t, ValidateMessage(strings.Repeat("a", 1001)), ErrMessageTooLong)
}
