package domain

import "time"

// UserRole gates what a user may do in the console.
type UserRole string

const (
	RoleReviewer UserRole = "REVIEWER"
	RoleManager  UserRole = "MANAGER"
	RoleCFO      UserRole = "CFO"
	RoleAdmin    UserRole = "ADMIN"
)

// User represents a reviewer or approver account.
type User struct {
	UserID       string   `json:"userID"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Role         UserRole `json:"role"`
	PasswordHash string   `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // soft delete
}
