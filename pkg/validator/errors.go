package validator

import "errors"

var (
	ErrEmptyPhone         = errors.New("phone number cannot be empty")
	ErrPhoneMissingPlus   = errors.New("phone number must start with + and a country code")
	ErrPhoneTooShort      = errors.New("phone number must contain at least 10 characters including +")
	ErrMessageTooLong     = errors.New("message must be at most 1000 characters")
	ErrInvalidSlugLength  = errors.New("custom slug must be 3-32 characters")
	ErrInvalidSlugFormat  = errors.New("custom slug must be alphanumeric with optional hyphens and underscores")
	ErrUnsupportedLang    = errors.New("language must be ar or en")
	ErrUnsupportedStatus  = errors.New("status must be draft or published")
	ErrEmptyTitle         = errors.New("title is required")
	ErrEmptyContent       = errors.New("content is required")
	ErrEmptyTopic         = errors.New("topic is required")
	ErrInvalidArticleSlug = errors.New("article slug may only contain letters, digits and hyphens")
)
