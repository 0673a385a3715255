package service

import (
	"context"

	"mailme/blacklist"
	"mailme/models"
)

// StatusService applies user actions to status rows: star, spam toggle,
// read marks and label membership. Every mutation goes through the store's
// serialized Update so concurrent edits of the same row cannot interleave.
type StatusService struct {
	statuses    StatusStore
	mails       MailStore
	labels      LabelStore
	blacklister Blacklister
}

// NewStatusService wires a status service. blacklister may be nil when no
// blacklist server is configured.
func NewStatusService(statuses StatusStore, mails MailStore, labels LabelStore, blacklister Blacklister) *StatusService {
	return &StatusService{
		statuses:    statuses,
		mails:       mails,
		labels:      labels,
		blacklister: blacklister,
	}
}

// ToggleStar flips the star on the user's row. Spam rows are silently
// left alone.
func (s *StatusService) ToggleStar(mailID, userID string) error {
	return s.statuses.Update(mailID, userID, func(st *models.MailStatus) error {
		if st.IsSpam {
			return nil
		}
		st.IsStar = !st.IsStar
		return nil
	})
}

// SetSpam sets or clears the spam flag on a received row. Marking spam
// strips labels and star in the same write. The content tokens are then
// pushed to (or pulled from) the blacklist server in the background;
// those updates are fire-and-forget and never fail the request.
func (s *StatusService) SetSpam(ctx context.Context, mailID, userID string, isSpam bool) error {
	err := s.statuses.Update(mailID, userID, func(st *models.MailStatus) error {
		if st.Type != models.StatusReceived {
			return ErrNotRecipient
		}
		st.IsSpam = isSpam
		if isSpam {
			st.Labels = nil
			st.IsStar = false
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.blacklister == nil {
		return nil
	}
	mail, merr := s.mails.Get(mailID)
	if merr != nil {
		return nil
	}
	tokens := blacklist.Tokenize(mail.Subject + " " + mail.Body)
	go func() {
		if isSpam {
			s.blacklister.AddAll(context.WithoutCancel(ctx), tokens)
		} else {
			s.blacklister.RemoveAll(context.WithoutCancel(ctx), tokens)
		}
	}()
	return nil
}

// AddLabel attaches a label the user owns to the row. Spam rows reject
// label edits with ErrSpamLocked. Adding a label twice is a no-op.
func (s *StatusService) AddLabel(mailID, userID, labelID string) error {
	label, err := s.labels.Get(labelID)
	if err != nil || label.UserID != userID {
		return ErrNotFound
	}

	return s.statuses.Update(mailID, userID, func(st *models.MailStatus) error {
		if st.IsSpam {
			return ErrSpamLocked
		}
		if !st.HasLabel(labelID) {
			st.Labels = append(st.Labels, labelID)
		}
		return nil
	})
}

// RemoveLabel detaches a label from the row, with the same spam guard.
func (s *StatusService) RemoveLabel(mailID, userID, labelID string) error {
	return s.statuses.Update(mailID, userID, func(st *models.MailStatus) error {
		if st.IsSpam {
			return ErrSpamLocked
		}
		st.RemoveLabel(labelID)
		return nil
	})
}

// MarkRead marks a received row read. Idempotent; a sender's own row is
// silently ignored.
func (s *StatusService) MarkRead(mailID, userID string) error {
	return s.statuses.Update(mailID, userID, func(st *models.MailStatus) error {
		if st.Type == models.StatusReceived {
			st.IsRead = true
		}
		return nil
	})
}
