package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	mailBucket   = "Mails"
	statusBucket = "Statuses"
	labelBucket  = "Labels"
	userBucket   = "Users"
	avatarBucket = "Avatars"
)

// InitDB opens the database file and creates all buckets
func InitDB(dataDir string) (*bbolt.DB, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "mailme.db")
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := []string{mailBucket, statusBucket, labelBucket, userBucket, avatarBucket}
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("create bucket %s: %s", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// statusKey builds the composite key of a status row
func statusKey(mailID, userID string) []byte {
	return []byte(mailID + ":" + userID)
}
