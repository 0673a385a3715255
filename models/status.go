package models

// Status row types. A sender always has a "sent" row, every original
// recipient a "received" row.
const (
	StatusSent     = "sent"
	StatusReceived = "received"
)

// MailStatus is the per-(mail, user) delivery state. Exactly one row exists
// for every user that can see the mail.
//
// Invariant: IsSpam implies Labels is empty and IsStar is false.
type MailStatus struct {
	MailID  string   `json:"mail_id"`
	UserID  string   `json:"user_id"`
	Type    string   `json:"type"`
	IsDraft bool     `json:"isDraft"` // sent rows only
	IsRead  bool     `json:"isRead"`  // received rows only
	IsStar  bool     `json:"isStar"`
	IsSpam  bool     `json:"isSpam"` // received rows only
	Labels  []string `json:"labels"`
}

// HasLabel reports whether the status row carries the given label.
func (s *MailStatus) HasLabel(labelID string) bool {
	for _, id := range s.Labels {
		if id == labelID {
			return true
		}
	}
	return false
}

// RemoveLabel drops the given label from the row if present.
func (s *MailStatus) RemoveLabel(labelID string) {
	out := s.Labels[:0]
	for _, id := range s.Labels {
		if id != labelID {
			out = append(out, id)
		}
	}
	s.Labels = out
}
