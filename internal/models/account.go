// Package models contains data structures for the application's domain models.
package models

import "time"

// Account is a registered principal. Email is the unique login key.
type Account struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;index" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Company is a principal that may publish posts and like other posts.
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	AccountID *uint     `gorm:"uniqueIndex" json:"account_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName pins the table name used by the SQL migrations.
func (Company) TableName() string {
	return "companies"
}
