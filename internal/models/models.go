package models

import (
	"time"
)

// Product ids are assigned by the catalog handler as max(id)+1 so the public
// numbering stays dense; the column must not auto-increment on its own.
type Product struct {
	ID          int       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name        string    `gorm:"not null"                       json:"name"`
	Image       string    `gorm:"not null"                       json:"image"`
	Category    string    `gorm:"not null"                       json:"category"`
	NewPrice    float64   `gorm:"not null"                       json:"new_price"`
	OldPrice    float64   `gorm:"not null"                       json:"old_price"`
	SellerEmail string    `json:"sellerEmail"`
	Date        time.Time `json:"date"`
	Available   bool      `gorm:"default:true"                   json:"available"`
}

type User struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `json:"name"`
	Email      string    `gorm:"uniqueIndex;not null"     json:"email"`
	Password   string    `gorm:"not null"                 json:"-"`
	Role       string    `gorm:"not null"                 json:"role"`
	IsApproved bool      `gorm:"default:false"            json:"isApproved"`
	Date       time.Time `json:"date"`
}
