package domain

import "time"

// Note Model. Notes own the reference to their user; users keep no list of notes.
type Note struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`                      // Store-assigned identifier
	UserID    string    `gorm:"type:char(36);index;not null" json:"user"`                // Foreign key to the owning user
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"` // Blocks user deletion at the database level
	Title     string    `gorm:"not null" json:"title"`                                   // Note title
	Text      string    `gorm:"type:text;not null" json:"text"`                          // Note body
	Completed bool      `gorm:"not null;default:false" json:"completed"`                 // Completion flag
	CreatedAt time.Time `json:"createdAt"`                                               // Creation timestamp
	UpdatedAt time.Time `json:"updatedAt"`                                               // Last update timestamp
}
