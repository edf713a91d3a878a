package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Rooms is an optional comma-separated filter of normalized room names;
// empty means the subscriber wants every command notification.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	Rooms     string    `gorm:"size:256"`
	CreatedAt time.Time `gorm:"not null"`
}
