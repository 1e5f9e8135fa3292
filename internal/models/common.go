package models

import "time"

// AuditFields holds the standard audit columns shared by most tables.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
}
