package models

// DefaultLabelColor is assigned to new labels and restored on color reset.
const DefaultLabelColor = "#808080"

// Label represents a user-owned mail label/tag
type Label struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Color  string `json:"color"` // Hex code, e.g. "#FF0000"
}
