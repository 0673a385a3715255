package service

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"mailme/models"
)

// LabelService manages user-owned labels. Names are unique per user,
// case-insensitively; deletion cascades into every status row of the owner.
type LabelService struct {
	labels   LabelStore
	statuses StatusStore
}

// NewLabelService wires a label service.
func NewLabelService(labels LabelStore, statuses StatusStore) *LabelService {
	return &LabelService{labels: labels, statuses: statuses}
}

func (s *LabelService) nameTaken(userID, name, excludeID string) (bool, error) {
	existing, err := s.labels.ListByUser(userID)
	if err != nil {
		return false, err
	}
	for _, l := range existing {
		if l.ID != excludeID && strings.EqualFold(l.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// Create makes a new label with the default color. A duplicate name
// returns ErrNameTaken.
func (s *LabelService) Create(userID, name string) (*models.Label, error) {
	taken, err := s.nameTaken(userID, name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	label := &models.Label{
		ID:     uuid.New().String(),
		UserID: userID,
		Name:   name,
		Color:  models.DefaultLabelColor,
	}
	if err := s.labels.Create(label); err != nil {
		return nil, err
	}
	return label, nil
}

// List returns the user's labels sorted by name.
func (s *LabelService) List(userID string) ([]*models.Label, error) {
	labels, err := s.labels.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(labels, func(i, j int) bool {
		return strings.ToLower(labels[i].Name) < strings.ToLower(labels[j].Name)
	})
	return labels, nil
}

// Get returns a label owned by the user, or ErrNotFound.
func (s *LabelService) Get(userID, labelID string) (*models.Label, error) {
	label, err := s.labels.Get(labelID)
	if err != nil || label.UserID != userID {
		return nil, ErrNotFound
	}
	return label, nil
}

// Rename changes a label's name, enforcing per-user uniqueness.
func (s *LabelService) Rename(userID, labelID, newName string) error {
	label, err := s.Get(userID, labelID)
	if err != nil {
		return err
	}

	taken, err := s.nameTaken(userID, newName, labelID)
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}

	label.Name = newName
	return s.labels.Update(label)
}

// Delete removes the label and pulls it from every status row of the
// owner.
func (s *LabelService) Delete(userID, labelID string) error {
	if _, err := s.Get(userID, labelID); err != nil {
		return err
	}
	if err := s.labels.Delete(labelID); err != nil {
		return err
	}
	return s.statuses.RemoveLabelFromAll(userID, labelID)
}

// SetColor updates the label's color. The handler validates the hex form.
func (s *LabelService) SetColor(userID, labelID, color string) error {
	label, err := s.Get(userID, labelID)
	if err != nil {
		return err
	}
	label.Color = color
	return s.labels.Update(label)
}

// ResetColor restores the default color. Idempotent.
func (s *LabelService) ResetColor(userID, labelID string) error {
	return s.SetColor(userID, labelID, models.DefaultLabelColor)
}
