package domain

import "time"

// ClickEvent is one successful resolution of a short link
// One ShortLink has many ClickEvents; they feed the stats endpoint only
type ClickEvent struct {
	ID        int64     `json:"id"`
	LinkID    string    `json:"link_id"`
	ClickedAt time.Time `json:"clicked_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Referer   string    `json:"referer,omitempty"`
}

// NewClickEvent creates a click event stamped with the current time
func NewClickEvent(linkID, ipAddress, userAgent, referer string) *ClickEvent {
	return &ClickEvent{
		LinkID:    linkID,
		ClickedAt: time.Now().UTC(),
		IPAddress: ipAddress,
		UserAgent: truncateRunes(userAgent, 512),
		Referer:   truncateRunes(referer, 1024),
	}
}

// ClickMeta carries request details for click analytics
type ClickMeta struct {
	IPAddress string
	UserAgent string
	Referer   string
}
