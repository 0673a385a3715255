package storage

import (
	"encoding/json"

	"go.etcd.io/bbolt"

	"mailme/models"
	"mailme/service"
)

// LabelStorage manages label persistence using BoltDB
type LabelStorage struct {
	db *bbolt.DB
}

// NewLabelStorage creates a new label storage instance
func NewLabelStorage(db *bbolt.DB) *LabelStorage {
	return &LabelStorage{db: db}
}

// Create stores a new label
func (s *LabelStorage) Create(label *models.Label) error {
	return s.put(label)
}

// Update overwrites an existing label
func (s *LabelStorage) Update(label *models.Label) error {
	return s.put(label)
}

func (s *LabelStorage) put(label *models.Label) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(labelBucket))

		data, err := json.Marshal(label)
		if err != nil {
			return err
		}

		return b.Put([]byte(label.ID), data)
	})
}

// Get retrieves a specific label
func (s *LabelStorage) Get(id string) (*models.Label, error) {
	var label models.Label

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(labelBucket))
		data := b.Get([]byte(id))
		if data == nil {
			return service.ErrNotFound
		}

		return json.Unmarshal(data, &label)
	})

	if err != nil {
		return nil, err
	}

	return &label, nil
}

// ListByUser retrieves all labels for a user
func (s *LabelStorage) ListByUser(userID string) ([]*models.Label, error) {
	var labels []*models.Label

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(labelBucket))

		return b.ForEach(func(k, v []byte) error {
			var label models.Label
			if err := json.Unmarshal(v, &label); err != nil {
				return err
			}

			if label.UserID == userID {
				labels = append(labels, &label)
			}
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return labels, nil
}

// Delete removes a label. The caller cascades the removal into status rows.
func (s *LabelStorage) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(labelBucket))
		return b.Delete([]byte(id))
	})
}
