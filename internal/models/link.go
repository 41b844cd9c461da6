package models

import "time"

// Link represents one short link in the database. The slug is the primary
// key; a slug, once allocated, is never reassigned to another destination.
type Link struct {
	Slug         string    `gorm:"primaryKey;size:30" json:"slug"`
	Destination  string    `gorm:"not null" json:"url"`
	Views        uint64    `gorm:"not null;default:0" json:"views"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastChangeAt time.Time `gorm:"autoUpdateTime" json:"last_change_at"`
}
