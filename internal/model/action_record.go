package model

import "time"

// ActionRecord is one executed (or attempted) tool invocation.
type ActionRecord struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Tool      string    `gorm:"size:64;not null;index"`
	Room      string    `gorm:"size:64"`
	DeviceID  string    `gorm:"size:64"`
	Success   bool      `gorm:"not null"`
	Message   string    `gorm:"size:512"`
	ErrorKind string    `gorm:"size:32"`
	CreatedAt time.Time `gorm:"not null;index"`
}
