package storage

import (
	"encoding/json"
	"strings"
	"time"

	"go.etcd.io/bbolt"
	"golang.org/x/crypto/bcrypt"

	"mailme/models"
	"mailme/service"
)

// UserStorage manages user accounts and avatars in BoltDB. User IDs are
// normalized to lowercase, they double as the local part of the address.
type UserStorage struct {
	db *bbolt.DB
}

// NewUserStorage creates a new user storage instance
func NewUserStorage(db *bbolt.DB) *UserStorage {
	return &UserStorage{db: db}
}

// Create registers a new user with a bcrypt-hashed password. A taken ID
// returns service.ErrNameTaken.
func (s *UserStorage) Create(user *models.User, password string) error {
	user.ID = strings.ToLower(user.ID)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(userBucket))
		if b.Get([]byte(user.ID)) != nil {
			return service.ErrNameTaken
		}

		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return b.Put([]byte(user.ID), data)
	})
}

// Get retrieves a user by ID
func (s *UserStorage) Get(id string) (*models.User, error) {
	var user models.User

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(userBucket))
		data := b.Get([]byte(strings.ToLower(id)))
		if data == nil {
			return service.ErrNotFound
		}

		return json.Unmarshal(data, &user)
	})

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Authenticate verifies the password for a user and returns the account.
func (s *UserStorage) Authenticate(id, password string) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, service.ErrForbidden
	}

	return user, nil
}

// SaveAvatar stores a user's profile image
func (s *UserStorage) SaveAvatar(userID string, data []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(avatarBucket))
		return b.Put([]byte(strings.ToLower(userID)), data)
	})
}

// GetAvatar retrieves a user's profile image
func (s *UserStorage) GetAvatar(userID string) ([]byte, error) {
	var data []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(avatarBucket))
		stored := b.Get([]byte(strings.ToLower(userID)))
		if stored == nil {
			return service.ErrNotFound
		}
		data = append(data, stored...)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return data, nil
}
