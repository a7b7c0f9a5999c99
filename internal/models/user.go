// internal/models/user.go
package models

import "time"

// User is the persisted lead record created once identity and department
// are collected.
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Surname   string    `json:"surname" db:"surname"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// UserSession is the persisted qualification snapshot for a user.
type UserSession struct {
	ID           string            `json:"id" db:"id"`
	UserID       string            `json:"userId" db:"user_id"`
	DepartmentID string            `json:"departmentId,omitempty" db:"department_id"`
	SessionData  map[string]string `json:"sessionData" db:"session_data"`
	UpdatedAt    time.Time         `json:"updatedAt" db:"updated_at"`
}
