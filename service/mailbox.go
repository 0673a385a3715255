package service

import (
	"sort"
	"strings"

	"mailme/models"
	"mailme/utils"
)

// Folder names accepted by ListFolder.
const (
	FolderInbox   = "inbox"
	FolderSent    = "sent"
	FolderStarred = "starred"
	FolderSpam    = "spam"
	FolderDrafts  = "drafts"
	FolderAll     = "all"
)

type statusFilter func(*models.MailStatus) bool

func folderFilter(folder string) (statusFilter, bool) {
	switch folder {
	case FolderInbox:
		return func(s *models.MailStatus) bool { return s.Type == models.StatusReceived && !s.IsSpam }, true
	case FolderSent:
		return func(s *models.MailStatus) bool { return s.Type == models.StatusSent && !s.IsDraft }, true
	case FolderStarred:
		return func(s *models.MailStatus) bool { return s.IsStar && !s.IsSpam }, true
	case FolderSpam:
		return func(s *models.MailStatus) bool { return s.Type == models.StatusReceived && s.IsSpam }, true
	case FolderDrafts:
		return func(s *models.MailStatus) bool { return s.Type == models.StatusSent && s.IsDraft }, true
	case FolderAll, "":
		return func(s *models.MailStatus) bool { return s.Type == models.StatusSent || !s.IsSpam }, true
	}
	return nil, false
}

// ListFolder returns the user's mails for a named folder, newest first,
// with limit/offset pagination. Unknown folder names return ErrNotFound.
func (s *MailService) ListFolder(userID, folder string, limit, offset int) (*models.MailPage, error) {
	filter, ok := folderFilter(folder)
	if !ok {
		return nil, ErrNotFound
	}
	return s.listFiltered(userID, filter, limit, offset)
}

// ListByLabel returns the user's non-spam mails carrying the given label.
func (s *MailService) ListByLabel(userID, labelID string, limit, offset int) (*models.MailPage, error) {
	if _, err := s.labels.Get(labelID); err != nil {
		return nil, ErrNotFound
	}
	return s.listFiltered(userID, func(st *models.MailStatus) bool {
		return !st.IsSpam && st.HasLabel(labelID)
	}, limit, offset)
}

// SearchMails returns mails visible to the user whose subject, body,
// sender or recipients contain the query, case-insensitively.
func (s *MailService) SearchMails(userID, query string, limit, offset int) (*models.MailPage, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return &models.MailPage{Mails: []models.MailSummary{}}, nil
	}

	return s.listFiltered(userID, nil, limit, offset, func(mail *models.Mail) bool {
		if strings.Contains(strings.ToLower(mail.Subject), q) ||
			strings.Contains(strings.ToLower(mail.Body), q) ||
			strings.Contains(strings.ToLower(mail.From), q) {
			return true
		}
		for _, to := range mail.To {
			if strings.Contains(strings.ToLower(to), q) {
				return true
			}
		}
		return false
	})
}

func (s *MailService) listFiltered(userID string, filter statusFilter, limit, offset int, mailFilters ...func(*models.Mail) bool) (*models.MailPage, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	statuses, err := s.statuses.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	type pair struct {
		mail   *models.Mail
		status *models.MailStatus
	}
	var matched []pair
	for _, st := range statuses {
		if filter != nil && !filter(st) {
			continue
		}
		mail, err := s.mails.Get(st.MailID)
		if err != nil {
			continue
		}
		keep := true
		for _, mf := range mailFilters {
			if !mf(mail) {
				keep = false
				break
			}
		}
		if keep {
			matched = append(matched, pair{mail, st})
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].mail.SentAt.After(matched[j].mail.SentAt)
	})

	page := &models.MailPage{Total: len(matched), Mails: []models.MailSummary{}}
	if offset >= len(matched) {
		return page, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	for _, p := range matched[offset:end] {
		page.Mails = append(page.Mails, *s.format(p.mail, p.status))
	}
	return page, nil
}

// Summary builds the per-user view of a single mail.
func (s *MailService) Summary(mailID, userID string) (*models.MailSummary, error) {
	mail, err := s.mails.Get(mailID)
	if err != nil {
		return nil, ErrNotFound
	}
	status, err := s.statuses.Get(mailID, userID)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.format(mail, status), nil
}

func (s *MailService) format(mail *models.Mail, status *models.MailStatus) *models.MailSummary {
	var from *models.PublicUser
	if sender, err := s.users.Get(mail.From); err == nil {
		from = sender.Public()
	} else {
		from = &models.PublicUser{ID: mail.From}
	}

	labels := make([]models.Label, 0, len(status.Labels))
	for _, id := range status.Labels {
		label, err := s.labels.Get(id)
		if err != nil || label.UserID != status.UserID {
			continue
		}
		labels = append(labels, *label)
	}

	to := make([]string, 0, len(mail.To))
	for _, recipient := range mail.To {
		to = append(to, utils.AddressFromUserID(recipient, s.domain))
	}

	summary := &models.MailSummary{
		ID:      mail.ID,
		Subject: mail.Subject,
		Body:    mail.Body,
		SentAt:  mail.SentAt,
		From:    from,
		To:      to,
		Labels:  labels,
		IsStar:  status.IsStar,
		IsDraft: status.IsDraft,
		IsSpam:  status.IsSpam,
		Type:    status.Type,
	}
	if status.Type == models.StatusReceived {
		isRead := status.IsRead
		summary.IsRead = &isRead
	}
	return summary
}
