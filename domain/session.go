package domain

import "time"

// Session is the server side state bound to one browser login.
type Session struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Cart      Cart      `json:"cart"`
	CreatedAt time.Time `json:"created_at"`
}

// Is is the capability check every gated operation goes through.
func (s *Session) Is(role Role) bool {
	return s != nil && s.UserID != 0 && s.Role == role
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)
