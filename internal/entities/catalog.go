package entities

import (
	"time"
)

// Book is a single catalog entry. Titles are unique across the catalog.
type Book struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Title  string  `gorm:"uniqueIndex;size:250;not null" json:"title"`
	Author string  `gorm:"index;size:250;not null" json:"author"`
	Rating float64 `gorm:"not null" json:"rating"`
}

// User is a registered account. Password always holds a hash, never the
// submitted credential.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:100" json:"email"`
	Password  string    `gorm:"size:100" json:"-"`
	Name      string    `gorm:"size:1000" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "book"
}

func (User) TableName() string {
	return "users"
}
