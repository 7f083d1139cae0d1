package domain

import (
	"time"
)

// User represents a registered account and owns exactly one Wallet
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
	Wallet       *Wallet   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser creates a user with an empty wallet
func NewUser(username, passwordHash string) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Wallet:       NewWallet(),
		CreatedAt:    time.Now(),
	}
}

// UserRecord is the persisted form of a User and its embedded Wallet
type UserRecord struct {
	Username     string         `json:"username"`
	PasswordHash string         `json:"password_hash"`
	Wallet       WalletSnapshot `json:"wallet"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Record converts the user into its persisted form
func (u *User) Record() UserRecord {
	return UserRecord{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Wallet:       u.Wallet.Snapshot(),
		CreatedAt:    u.CreatedAt,
	}
}

// UserFromRecord rebuilds a User from its persisted form
func UserFromRecord(rec UserRecord) *User {
	return &User{
		Username:     rec.Username,
		PasswordHash: rec.PasswordHash,
		Wallet:       RestoreWallet(rec.Wallet),
		CreatedAt:    rec.CreatedAt,
	}
}
