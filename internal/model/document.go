package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Document is a stored collection document. Data holds the encoded JSON
// payload, Compression names the codec it was encoded with.
type Document struct {
	ID          string `gorm:"primaryKey;not null"`
	Collection  string `gorm:"primaryKey;not null;index:idx_documents_collection"`
	Version     int64  `gorm:"not null;default:0"`
	Data        []byte `gorm:"not null"`
	Compression string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (d *Document) TableName() string {
	return "documents"
}

func (d *Document) MarshalBinary() ([]byte, error) {
	return json.Marshal(d)
}

func (d *Document) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, d)
}
