package model

import (
	"time"

	"github.com/safestudy/safestudy-go/internal/breach"
	"github.com/safestudy/safestudy-go/internal/strength"
)

// PasswordEntry is a stored credential. SealedSecret is AES-GCM ciphertext
// and is never returned by the API.
type PasswordEntry struct {
	ID           string
	UserID       int64
	Service      string
	Username     string
	SealedSecret []byte
	Strength     strength.Rating
	Breached     bool
	BreachStatus breach.Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MaxSealedSecretBytes is the width of password_entries.sealed_secret. It
// holds a 256-rune secret of 4-byte runes plus the GCM nonce and tag.
const MaxSealedSecretBytes = 1088

// CreateEntryRequest represents a request to store a credential.
type CreateEntryRequest struct {
	Service  string `json:"service" validate:"required,max=255"`
	Username string `json:"username" validate:"required,max=255"`
	Secret   string `json:"secret" validate:"required,max=256"`
}

// RevealRequest carries the account password that gates revealing a secret.
type RevealRequest struct {
	AccountPassword string `json:"account_password" validate:"required"`
}

// EntryResponse is a stored credential without its secret.
type EntryResponse struct {
	ID           string          `json:"id"`
	Service      string          `json:"service"`
	Username     string          `json:"username"`
	Strength     strength.Rating `json:"strength"`
	Breached     bool            `json:"breached"`
	BreachStatus breach.Status   `json:"breach_status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// RevealResponse returns a decrypted secret.
type RevealResponse struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
}

// VaultSummary holds the dashboard counters for a user's vault.
type VaultSummary struct {
	Total         int `json:"total"`
	Weak          int `json:"weak"`
	Medium        int `json:"medium"`
	Strong        int `json:"strong"`
	Breached      int `json:"breached"`
	Undetermined  int `json:"undetermined"`
	SecurityScore int `json:"security_score"`
}
