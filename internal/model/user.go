// Package model provides data models for the docqa service.
package model

import "time"

// User represents a user account in the database.
type User struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"size:64;not null;uniqueIndex:uk_username"`
	Email     string    `json:"email" gorm:"size:128;not null;uniqueIndex:uk_email"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UserList contains a list of users and the total count.
type UserList struct {
	TotalCount int64   `json:"total_count"`
	Items      []*User `json:"items"`
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}
