package models

import "time"

// User is the users table row.
type User struct {
	UserID       string `db:"user_id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	Role         string `db:"role"`
	PasswordHash string `db:"password_hash"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
