package models

import "time"

// User represents an end-user account provisioned from the identity provider.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ExternalID string `gorm:"type:text;not null;uniqueIndex"` // Identity-provider issued user ID.
	Email      string `gorm:"type:text;not null"`             // Email address.
	Name       string `gorm:"type:text;not null"`             // Display name.

	Points int64 `gorm:"not null;default:0"` // Spendable point balance.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
