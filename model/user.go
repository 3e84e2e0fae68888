package model

import "time"

// User is both the clinician account and the owning profile document under
// which patients and appointments live.
type User struct {
	UID            string    `json:"uid" gorm:"primaryKey;size:36"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:191;not null"`
	Name           string    `json:"name" gorm:"size:191"`
	PasswordHash   string    `json:"-" gorm:"size:255"`
	PasswordSalt   string    `json:"-" gorm:"size:64"`
	FailedAttempts int       `json:"-" gorm:"default:0"`
	LockedUntil    *int64    `json:"-"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Session is a persisted sign-in. It survives process restarts and client reloads.
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UID       string    `json:"uid" gorm:"size:36;not null;index"`
	Token     string    `json:"-" gorm:"size:512;uniqueIndex"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"index"`
	ClientIP  string    `json:"clientIp" gorm:"size:45"`
	Browser   string    `json:"browser" gorm:"size:512"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
