package models

import "time"

// RawReport is the original filed document; BlobData is stored undecoded.
type RawReport struct {
	ID            uint `gorm:"primaryKey"`
	ReceiptNumber string
	CorpCode      string
	BlobData      []byte
	BlobSize      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
