package model

import "time"

type User struct {
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName prefers the first name and falls back to the username.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "Unknown"
}

// CloudflareAccount holds one set of Cloudflare credentials per user.
// APIKey is held decrypted in memory; the store encrypts it before it
// touches disk.
type CloudflareAccount struct {
	UserID    int64
	Email     string
	APIKey    string
	AccountID string
	ZoneID    string
	ZoneName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Zone struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	CreatedOn  string `json:"created_on,omitempty"`
	ModifiedOn string `json:"modified_on,omitempty"`
}

type DNSRecord struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Content    string         `json:"content"`
	TTL        int            `json:"ttl"`
	Proxied    bool           `json:"proxied"`
	Locked     bool           `json:"locked"`
	CreatedOn  string         `json:"created_on,omitempty"`
	ModifiedOn string         `json:"modified_on,omitempty"`
	ZoneID     string         `json:"zone_id,omitempty"`
	ZoneName   string         `json:"zone_name,omitempty"`
	Priority   *int           `json:"priority,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// RecordPayload is the request body for create and update record calls.
type RecordPayload struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	TTL      int    `json:"ttl"`
	Proxied  *bool  `json:"proxied,omitempty"`
	Priority *int   `json:"priority,omitempty"`
}
