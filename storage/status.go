package storage

import (
	"bytes"
	"encoding/json"

	"go.etcd.io/bbolt"

	"mailme/models"
	"mailme/service"
)

// StatusStorage persists per-(mail, user) status rows in BoltDB under a
// composite "mailID:userID" key. BoltDB runs a single write transaction at
// a time, which serializes the read-modify-write in Update.
type StatusStorage struct {
	db *bbolt.DB
}

// NewStatusStorage creates a new status storage instance
func NewStatusStorage(db *bbolt.DB) *StatusStorage {
	return &StatusStorage{db: db}
}

// Create stores a new status row
func (s *StatusStorage) Create(status *models.MailStatus) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(statusBucket))

		data, err := json.Marshal(status)
		if err != nil {
			return err
		}

		return b.Put(statusKey(status.MailID, status.UserID), data)
	})
}

// Get retrieves a status row by its composite key
func (s *StatusStorage) Get(mailID, userID string) (*models.MailStatus, error) {
	var status models.MailStatus

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(statusBucket))
		data := b.Get(statusKey(mailID, userID))
		if data == nil {
			return service.ErrNotFound
		}

		return json.Unmarshal(data, &status)
	})

	if err != nil {
		return nil, err
	}

	return &status, nil
}

// Update applies fn to the row inside a single write transaction. An error
// from fn aborts the transaction and nothing is written.
func (s *StatusStorage) Update(mailID, userID string, fn func(*models.MailStatus) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(statusBucket))
		key := statusKey(mailID, userID)

		data := b.Get(key)
		if data == nil {
			return service.ErrNotFound
		}

		var status models.MailStatus
		if err := json.Unmarshal(data, &status); err != nil {
			return err
		}

		if err := fn(&status); err != nil {
			return err
		}

		updated, err := json.Marshal(&status)
		if err != nil {
			return err
		}
		return b.Put(key, updated)
	})
}

// Delete removes a status row
func (s *StatusStorage) Delete(mailID, userID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(statusBucket))
		return b.Delete(statusKey(mailID, userID))
	})
}

// ListByUser retrieves all status rows belonging to a user
func (s *StatusStorage) ListByUser(userID string) ([]*models.MailStatus, error) {
	suffix := []byte(":" + userID)
	var statuses []*models.MailStatus

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(statusBucket))

		return b.ForEach(func(k, v []byte) error {
			if !bytes.HasSuffix(k, suffix) {
				return nil
			}
			var status models.MailStatus
			if err := json.Unmarshal(v, &status); err != nil {
				return err
			}
			statuses = append(statuses, &status)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return statuses, nil
}

// RemoveLabelFromAll pulls a deleted label out of every status row of the
// owner, in one write transaction.
func (s *StatusStorage) RemoveLabelFromAll(userID, labelID string) error {
	suffix := []byte(":" + userID)

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(statusBucket))

		type pending struct {
			key  []byte
			data []byte
		}
		var updates []pending

		err := b.ForEach(func(k, v []byte) error {
			if !bytes.HasSuffix(k, suffix) {
				return nil
			}
			var status models.MailStatus
			if err := json.Unmarshal(v, &status); err != nil {
				return err
			}
			if !status.HasLabel(labelID) {
				return nil
			}
			status.RemoveLabel(labelID)
			data, err := json.Marshal(&status)
			if err != nil {
				return err
			}
			updates = append(updates, pending{key: append([]byte(nil), k...), data: data})
			return nil
		})
		if err != nil {
			return err
		}

		for _, u := range updates {
			if err := b.Put(u.key, u.data); err != nil {
				return err
			}
		}
		return nil
	})
}
