package service

import "github.com/google/uuid"

// newID returns a time-ordered identifier, so sorting ids follows creation order.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
