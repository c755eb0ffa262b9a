package db

import (
	"time"

	"gorm.io/datatypes"
)

// WordList is a named vocabulary. Words is a JSON array of strings.
type WordList struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"size:64;uniqueIndex:idx_word_lists_name;not null"`
	Words     datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}
