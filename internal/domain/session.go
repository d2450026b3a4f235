package domain

import "time"

// Session is one browser session of the console: the backend auth token and
// the customer it belongs to. Guests have no token.
type Session struct {
	ID         string    `json:"session_id"`
	CustomerID int64     `json:"customer_id"`
	Token      string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Token != ""
}
