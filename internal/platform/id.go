package platform

import "github.com/google/uuid"

// NewID returns a random UUID used for tenant workflow, template and audit rows.
func NewID() string {
	return uuid.New().String()
}
