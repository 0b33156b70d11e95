// Package utils holds small helpers shared across packages.
package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a random UUID v4 string. Used for reconciliation pass ids.
func GenerateID() string {
	return uuid.New().String()
}
