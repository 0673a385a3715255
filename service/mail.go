package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mailme/models"
	"mailme/utils"
)

// MailService orchestrates mail creation and the draft lifecycle:
// classification on send, sender and recipient status rows, and the
// all-or-nothing send semantics for drafts.
type MailService struct {
	mails      MailStore
	statuses   StatusStore
	labels     LabelStore
	users      UserStore
	classifier Classifier
	notifier   Notifier
	domain     string
}

// NewMailService wires a mail service. notifier may be nil.
func NewMailService(mails MailStore, statuses StatusStore, labels LabelStore, users UserStore, classifier Classifier, notifier Notifier, domain string) *MailService {
	return &MailService{
		mails:      mails,
		statuses:   statuses,
		labels:     labels,
		users:      users,
		classifier: classifier,
		notifier:   notifier,
		domain:     domain,
	}
}

// SendOutcome reports a (partially) successful create or send. Invalid
// addresses never fail a send that still has valid recipients; they come
// back as a warning.
type SendOutcome struct {
	MailID        string
	Warning       string
	InvalidEmails []string
}

// processRecipients resolves addresses to user IDs. Addresses outside the
// system domain, unknown users and the sender's own address are dropped
// into the invalid list.
func (s *MailService) processRecipients(from string, to []string) (valid, invalid []string) {
	seen := make(map[string]bool, len(to))
	for _, address := range to {
		userID, ok := utils.UserIDFromAddress(address, s.domain)
		if !ok || userID == from {
			invalid = append(invalid, address)
			continue
		}
		if _, err := s.users.Get(userID); err != nil {
			invalid = append(invalid, address)
			continue
		}
		if !seen[userID] {
			seen[userID] = true
			valid = append(valid, userID)
		}
	}
	return valid, invalid
}

// CreateMail creates a new mail (or draft) for the sender and, for real
// sends, one received status row per valid recipient with the spam verdict
// of the content. A non-draft send with zero valid recipients fails with
// ErrNoRecipients; the outcome still carries the invalid address list.
func (s *MailService) CreateMail(ctx context.Context, from string, to []string, subject, body string, isDraft bool) (*SendOutcome, error) {
	valid, invalid := s.processRecipients(from, to)
	outcome := &SendOutcome{InvalidEmails: invalid}
	if len(invalid) > 0 {
		outcome.Warning = "Mail was not sent to some addresses because they do not exist"
	}

	if !isDraft && len(valid) == 0 {
		return outcome, ErrNoRecipients
	}

	isSpam := s.classifier.IsBlacklisted(ctx, subject, body, isDraft)

	mail := &models.Mail{
		ID:      uuid.New().String(),
		From:    from,
		To:      valid,
		Subject: subject,
		Body:    utils.SanitizeHTML(body),
		SentAt:  time.Now(),
	}
	if err := s.mails.Create(mail); err != nil {
		return nil, err
	}
	outcome.MailID = mail.ID

	if err := s.statuses.Create(&models.MailStatus{
		MailID:  mail.ID,
		UserID:  from,
		Type:    models.StatusSent,
		IsDraft: isDraft,
	}); err != nil {
		return nil, err
	}

	if !isDraft {
		s.deliver(mail, isSpam)
	}

	return outcome, nil
}

// SendDraft turns a draft into a sent mail: updates content and recipients,
// classifies, flips the sender row and creates recipient rows. Sending to
// zero valid recipients fails the whole operation and deletes the orphaned
// draft, so a later fetch of the mail is a not-found.
func (s *MailService) SendDraft(ctx context.Context, mailID, userID string, to []string, subject, body string) (*SendOutcome, error) {
	mail, err := s.mails.Get(mailID)
	if err != nil || mail.From != userID {
		return nil, ErrNotFound
	}

	status, err := s.statuses.Get(mailID, userID)
	if err != nil {
		return nil, ErrNotFound
	}
	if !status.IsDraft {
		return nil, ErrNotDraft
	}

	valid, invalid := s.processRecipients(userID, to)
	outcome := &SendOutcome{MailID: mailID, InvalidEmails: invalid}
	if len(invalid) > 0 {
		outcome.Warning = "Mail was not sent to some addresses because they do not exist"
	}

	if len(valid) == 0 {
		// All-or-nothing: a failed send may not leave a dangling draft.
		s.statuses.Delete(mailID, userID)
		s.mails.Delete(mailID)
		return outcome, ErrNoRecipients
	}

	mail.To = valid
	mail.Subject = subject
	mail.Body = utils.SanitizeHTML(body)
	mail.SentAt = time.Now()
	if err := s.mails.Update(mail); err != nil {
		return nil, err
	}

	if err := s.statuses.Update(mailID, userID, func(st *models.MailStatus) error {
		st.IsDraft = false
		return nil
	}); err != nil {
		return nil, err
	}

	isSpam := s.classifier.IsBlacklisted(ctx, subject, mail.Body, false)
	s.deliver(mail, isSpam)

	return outcome, nil
}

// deliver creates recipient rows and pushes notifications.
func (s *MailService) deliver(mail *models.Mail, isSpam bool) {
	for _, recipient := range mail.To {
		if err := s.statuses.Create(&models.MailStatus{
			MailID: mail.ID,
			UserID: recipient,
			Type:   models.StatusReceived,
			IsSpam: isSpam,
		}); err != nil {
			utils.Log.Error("failed to create status row for %s on mail %s: %v", recipient, mail.ID, err)
			continue
		}
		if s.notifier != nil && !isSpam {
			if summary, err := s.Summary(mail.ID, recipient); err == nil {
				s.notifier.NotifyNewMail(recipient, summary)
			}
		}
	}
}

// DraftUpdate carries the draft fields a PATCH wants to change; nil fields
// are left alone. Recipients are set at send time, not by edits.
type DraftUpdate struct {
	Subject *string
	Body    *string
}

// UpdateDraft changes subject and body of a draft. Only the sender may
// edit, and only while the mail is still a draft.
func (s *MailService) UpdateDraft(mailID, userID string, upd DraftUpdate) error {
	mail, err := s.mails.Get(mailID)
	if err != nil || mail.From != userID {
		return ErrNotFound
	}

	status, err := s.statuses.Get(mailID, userID)
	if err != nil {
		return ErrNotFound
	}
	if !status.IsDraft {
		return ErrNotDraft
	}

	if upd.Subject != nil {
		mail.Subject = *upd.Subject
	}
	if upd.Body != nil {
		mail.Body = utils.SanitizeHTML(*upd.Body)
	}
	return s.mails.Update(mail)
}

// GetMail returns the full per-user view of a mail, or ErrNotFound when the
// mail does not exist or the user has no status row for it.
func (s *MailService) GetMail(mailID, userID string) (*models.MailSummary, error) {
	return s.Summary(mailID, userID)
}

// DeleteMail removes the user's status row. Other participants keep
// theirs. Deleting the sender's draft row also deletes the mail record,
// since a draft has no other referencing rows.
func (s *MailService) DeleteMail(mailID, userID string) error {
	status, err := s.statuses.Get(mailID, userID)
	if err != nil {
		return ErrNotFound
	}

	if status.IsDraft {
		if err := s.mails.Delete(mailID); err != nil {
			return err
		}
	}

	return s.statuses.Delete(mailID, userID)
}
