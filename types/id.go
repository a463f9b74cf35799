package types

import "github.com/google/uuid"

// NewHunkID returns a fresh globally-unique hunk id.
func NewHunkID() string {
	return "hunk-" + uuid.NewString()
}

// NewGroupID returns a fresh globally-unique suggestion group id.
func NewGroupID() string {
	return "group-" + uuid.NewString()
}
