package storage

import (
	"sync"

	"mailme/models"
	"mailme/service"
)

// MemoryStore is an in-memory implementation of the mail, status and label
// stores. It backs tests and deployments that do not need persistence; the
// state machine is identical either way. A single mutex serializes every
// status read-modify-write, matching the BoltDB writer semantics.
type MemoryStore struct {
	mu       sync.RWMutex
	mails    map[string]models.Mail
	statuses map[string]models.MailStatus // keyed mailID:userID
	labels   map[string]models.Label
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mails:    make(map[string]models.Mail),
		statuses: make(map[string]models.MailStatus),
		labels:   make(map[string]models.Label),
	}
}

// Mails returns the MailStore view of the memory store.
func (m *MemoryStore) Mails() *MemoryMailStore { return &MemoryMailStore{m} }

// Statuses returns the StatusStore view of the memory store.
func (m *MemoryStore) Statuses() *MemoryStatusStore { return &MemoryStatusStore{m} }

// Labels returns the LabelStore view of the memory store.
func (m *MemoryStore) Labels() *MemoryLabelStore { return &MemoryLabelStore{m} }

type MemoryMailStore struct{ s *MemoryStore }

func (ms *MemoryMailStore) Create(mail *models.Mail) error {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()
	ms.s.mails[mail.ID] = *mail
	return nil
}

func (ms *MemoryMailStore) Get(id string) (*models.Mail, error) {
	ms.s.mu.RLock()
	defer ms.s.mu.RUnlock()
	mail, ok := ms.s.mails[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &mail, nil
}

func (ms *MemoryMailStore) Update(mail *models.Mail) error {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()
	if _, ok := ms.s.mails[mail.ID]; !ok {
		return service.ErrNotFound
	}
	ms.s.mails[mail.ID] = *mail
	return nil
}

func (ms *MemoryMailStore) Delete(id string) error {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()
	delete(ms.s.mails, id)
	return nil
}

type MemoryStatusStore struct{ s *MemoryStore }

func memKey(mailID, userID string) string { return mailID + ":" + userID }

func (ss *MemoryStatusStore) Create(status *models.MailStatus) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	ss.s.statuses[memKey(status.MailID, status.UserID)] = *status
	return nil
}

func (ss *MemoryStatusStore) Get(mailID, userID string) (*models.MailStatus, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()
	status, ok := ss.s.statuses[memKey(mailID, userID)]
	if !ok {
		return nil, service.ErrNotFound
	}
	cp := status
	cp.Labels = append([]string(nil), status.Labels...)
	return &cp, nil
}

func (ss *MemoryStatusStore) Update(mailID, userID string, fn func(*models.MailStatus) error) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	key := memKey(mailID, userID)
	status, ok := ss.s.statuses[key]
	if !ok {
		return service.ErrNotFound
	}
	status.Labels = append([]string(nil), status.Labels...)
	if err := fn(&status); err != nil {
		return err
	}
	ss.s.statuses[key] = status
	return nil
}

func (ss *MemoryStatusStore) Delete(mailID, userID string) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	delete(ss.s.statuses, memKey(mailID, userID))
	return nil
}

func (ss *MemoryStatusStore) ListByUser(userID string) ([]*models.MailStatus, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()
	var out []*models.MailStatus
	for _, status := range ss.s.statuses {
		if status.UserID == userID {
			cp := status
			cp.Labels = append([]string(nil), status.Labels...)
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (ss *MemoryStatusStore) RemoveLabelFromAll(userID, labelID string) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	for key, status := range ss.s.statuses {
		if status.UserID != userID || !status.HasLabel(labelID) {
			continue
		}
		status.Labels = append([]string(nil), status.Labels...)
		status.RemoveLabel(labelID)
		ss.s.statuses[key] = status
	}
	return nil
}

type MemoryLabelStore struct{ s *MemoryStore }

func (ls *MemoryLabelStore) Create(label *models.Label) error {
	ls.s.mu.Lock()
	defer ls.s.mu.Unlock()
	ls.s.labels[label.ID] = *label
	return nil
}

func (ls *MemoryLabelStore) Update(label *models.Label) error {
	ls.s.mu.Lock()
	defer ls.s.mu.Unlock()
	if _, ok := ls.s.labels[label.ID]; !ok {
		return service.ErrNotFound
	}
	ls.s.labels[label.ID] = *label
	return nil
}

func (ls *MemoryLabelStore) Get(id string) (*models.Label, error) {
	ls.s.mu.RLock()
	defer ls.s.mu.RUnlock()
	label, ok := ls.s.labels[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &label, nil
}

func (ls *MemoryLabelStore) ListByUser(userID string) ([]*models.Label, error) {
	ls.s.mu.RLock()
	defer ls.s.mu.RUnlock()
	var out []*models.Label
	for _, label := range ls.s.labels {
		if label.UserID == userID {
			cp := label
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (ls *MemoryLabelStore) Delete(id string) error {
	ls.s.mu.Lock()
	defer ls.s.mu.Unlock()
	delete(ls.s.labels, id)
	return nil
}
