package models

import "time"

// Mail is the shared content record of a message. It is referenced by one
// status row per participant and is only mutable while the sender's status
// is still a draft.
type Mail struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	To      []string  `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sentAt"`
}

// MailSummary is the per-user view of a mail: shared content plus the
// caller's own status flags and resolved labels.
type MailSummary struct {
	ID      string      `json:"id"`
	Subject string      `json:"subject"`
	Body    string      `json:"body"`
	SentAt  time.Time   `json:"sentAt"`
	From    *PublicUser `json:"from"`
	To      []string    `json:"to"`
	Labels  []Label     `json:"labels"`
	IsStar  bool        `json:"isStar"`
	IsDraft bool        `json:"isDraft"`
	IsSpam  bool        `json:"isSpam"`
	Type    string      `json:"type"`
	IsRead  *bool       `json:"isRead,omitempty"` // received mails only
}

// MailPage is a paginated slice of summaries together with the total
// number of matches before pagination.
type MailPage struct {
	Total int           `json:"total"`
	Mails []MailSummary `json:"mails"`
}
