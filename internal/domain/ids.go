// Package domain contains the core business entities for the time tracking
// daemon. These entities represent the fundamental concepts of the system
// and are independent of any external frameworks or infrastructure.
package domain

import "github.com/google/uuid"

// NewPluginRecordID creates a stable string identifier for entities whose
// id is caller-chosen text rather than a database-assigned integer.
func NewPluginRecordID() string {
	return uuid.New().String()
}
