package storage

import (
	"encoding/json"

	"go.etcd.io/bbolt"

	"mailme/models"
	"mailme/service"
)

// MailStorage persists mail content records in BoltDB
type MailStorage struct {
	db *bbolt.DB
}

// NewMailStorage creates a new mail storage instance
func NewMailStorage(db *bbolt.DB) *MailStorage {
	return &MailStorage{db: db}
}

// Create stores a new mail record
func (s *MailStorage) Create(mail *models.Mail) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(mailBucket))

		data, err := json.Marshal(mail)
		if err != nil {
			return err
		}

		return b.Put([]byte(mail.ID), data)
	})
}

// Get retrieves a mail record by id
func (s *MailStorage) Get(id string) (*models.Mail, error) {
	var mail models.Mail

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(mailBucket))
		data := b.Get([]byte(id))
		if data == nil {
			return service.ErrNotFound
		}

		return json.Unmarshal(data, &mail)
	})

	if err != nil {
		return nil, err
	}

	return &mail, nil
}

// Update overwrites an existing mail record
func (s *MailStorage) Update(mail *models.Mail) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(mailBucket))
		if b.Get([]byte(mail.ID)) == nil {
			return service.ErrNotFound
		}

		data, err := json.Marshal(mail)
		if err != nil {
			return err
		}

		return b.Put([]byte(mail.ID), data)
	})
}

// Delete removes a mail record
func (s *MailStorage) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(mailBucket))
		return b.Delete([]byte(id))
	})
}
