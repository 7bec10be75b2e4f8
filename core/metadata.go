package core

import (
	"time"

	"github.com/mr-tron/base58"
)

const mintAddressSize = 32

// ValidMintAddress reports whether s is the base58 form of a 32-byte mint address.
func ValidMintAddress(s string) bool {
	if s == "" {
		return false
	}
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == mintAddressSize
}

// Wallet is an authorized wallet as managed by administrators.
type Wallet struct {
	ID        int64     `json:"id"`
	Address   string    `json:"wallet_address"`
	Name      string    `json:"name,omitempty"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// WalletInput describes a wallet to authorize.
type WalletInput struct {
	Address string
	Name    string
	Role    Role
	Notes   string
}

// WalletUpdate carries the fields to change; nil fields are left untouched.
type WalletUpdate struct {
	Name     *string
	Role     *Role
	IsActive *bool
	Notes    *string
}

// Empty reports whether the update changes nothing.
func (u WalletUpdate) Empty() bool {
	return u.Name == nil && u.Role == nil && u.IsActive == nil && u.Notes == nil
}

// TokenMetadata is an override of the public metadata of a token mint.
type TokenMetadata struct {
	ID          int64      `json:"id"`
	Mint        string     `json:"mint"`
	Name        string     `json:"name,omitempty"`
	Logo        string     `json:"logo,omitempty"`
	Description string     `json:"description,omitempty"`
	TwitterURL  string     `json:"twitter_url,omitempty"`
	TelegramURL string     `json:"telegram_url,omitempty"`
	WebsiteURL  string     `json:"website_url,omitempty"`
	DiscordURL  string     `json:"discord_url,omitempty"`
	IsActive    bool       `json:"is_active"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	DeletedBy   string     `json:"deleted_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CreatedBy   string     `json:"created_by,omitempty"`
	UpdatedBy   string     `json:"updated_by,omitempty"`
}

// TokenInput is the writable part of TokenMetadata.
type TokenInput struct {
	Mint        string `json:"mint"`
	Name        string `json:"name"`
	Logo        string `json:"logo"`
	Description string `json:"description"`
	TwitterURL  string `json:"twitter_url"`
	TelegramURL string `json:"telegram_url"`
	WebsiteURL  string `json:"website_url"`
	DiscordURL  string `json:"discord_url"`
	IsActive    *bool  `json:"is_active"`
}

const (
	DefaultTokenPageSize = 50
	MaxTokenPageSize     = 100
)

// TokenQuery filters a token listing.
type TokenQuery struct {
	ActiveOnly     bool
	IncludeDeleted bool
	Search         string
	Limit          int
	Offset         int
}

// Normalize clamps paging parameters into their allowed range.
func (q TokenQuery) Normalize() TokenQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultTokenPageSize
	}
	if q.Limit > MaxTokenPageSize {
		q.Limit = MaxTokenPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}
