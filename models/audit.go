package models

import "time"

// AuditLog is one append-only record of a privileged mutation. Writes are
// best effort; a failed append never rolls back the action it describes.
type AuditLog struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
