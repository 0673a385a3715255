// Package service implements the mail delivery state machine on top of
// storage-agnostic store interfaces. Precondition violations surface as
// sentinel errors, not panics, so handlers can branch on outcome.
package service

import (
	"context"
	"errors"

	"mailme/models"
)

// Sentinel outcomes the HTTP layer maps to status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrSpamLocked   = errors.New("mail is marked as spam")
	ErrNotRecipient = errors.New("mail was not received by this user")
	ErrNotDraft     = errors.New("mail is not a draft")
	ErrNoRecipients = errors.New("no valid recipients")
	ErrNameTaken    = errors.New("name already exists")
	ErrForbidden    = errors.New("not allowed")
)

// MailStore persists shared mail content records.
type MailStore interface {
	Create(mail *models.Mail) error
	Get(id string) (*models.Mail, error)
	Update(mail *models.Mail) error
	Delete(id string) error
}

// StatusStore persists per-(mail, user) status rows. Implementations must
// serialize Update calls for the same key so read-modify-write transitions
// cannot interleave.
type StatusStore interface {
	Create(status *models.MailStatus) error
	Get(mailID, userID string) (*models.MailStatus, error)
	// Update applies fn to the current row and writes the result back
	// atomically. An error from fn aborts the write and is returned.
	Update(mailID, userID string, fn func(*models.MailStatus) error) error
	Delete(mailID, userID string) error
	ListByUser(userID string) ([]*models.MailStatus, error)
	RemoveLabelFromAll(userID, labelID string) error
}

// LabelStore persists user-owned labels.
type LabelStore interface {
	Create(label *models.Label) error
	Get(id string) (*models.Label, error)
	ListByUser(userID string) ([]*models.Label, error)
	Update(label *models.Label) error
	Delete(id string) error
}

// UserStore resolves registered users.
type UserStore interface {
	Get(id string) (*models.User, error)
}

// Classifier computes the spam verdict for outgoing content.
type Classifier interface {
	IsBlacklisted(ctx context.Context, subject, body string, isDraft bool) bool
}

// Blacklister pushes token updates to the blacklist server. Failures are
// the implementation's problem; callers fire and forget.
type Blacklister interface {
	AddAll(ctx context.Context, tokens []string)
	RemoveAll(ctx context.Context, tokens []string)
}

// Notifier delivers real-time events to connected users.
type Notifier interface {
	NotifyNewMail(userID string, summary *models.MailSummary)
}
