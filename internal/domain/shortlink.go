package domain

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WhatsAppBaseURI is the click-to-chat endpoint every destination points at
const WhatsAppBaseURI = "https://wa.me/"

// ShortLink is a stored WhatsApp deep link reachable through /s/{slug}
// DestinationURI never changes after creation; ClickCount only grows
type ShortLink struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug"`
	DestinationURI string    `json:"destination_uri"`
	PhoneNumber    string    `json:"phone_number"`
	Message        string    `json:"message,omitempty"`
	ClickCount     int64     `json:"click_count"`
	CreatedAt      time.Time `json:"created_at"`
}

var (
	ErrEmptySlug        = errors.New("slug cannot be empty")
	ErrEmptyDestination = errors.New("destination URI cannot be empty")
	ErrNegativeClicks   = errors.New("click count cannot be negative")
)

// NewShortLink builds a link for an already normalized phone number ("+" followed by digits)
func NewShortLink(phone, message, slug string) *ShortLink {
	return &ShortLink{
		ID:             uuid.NewString(),
		Slug:           slug,
		DestinationURI: BuildDestinationURI(phone, message),
		PhoneNumber:    phone,
		Message:        message,
		CreatedAt:      time.Now().UTC(),
	}
}

// BuildDestinationURI renders https://wa.me/<digits>[?text=<message>]
// The message is percent-encoded the way browsers encode URI components, so spaces become %20
func BuildDestinationURI(phone, message string) string {
	digits := strings.TrimPrefix(phone, "+")
	if message == "" {
		return WhatsAppBaseURI + digits
	}
	return WhatsAppBaseURI + digits + "?text=" + EncodeURIComponent(message)
}

// EncodeURIComponent percent-encodes s for use inside a query value
func EncodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Validate checks the invariants a link must hold before it is persisted
func (l *ShortLink) Validate() error {
	if strings.TrimSpace(l.Slug) == "" {
		return ErrEmptySlug
	}
	if !strings.HasPrefix(l.DestinationURI, WhatsAppBaseURI) {
		return ErrEmptyDestination
	}
	if l.ClickCount < 0 {
		return ErrNegativeClicks
	}
	return nil
}
