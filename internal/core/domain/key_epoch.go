package domain

import "time"

// KeyEpoch is a tag-encryption key wrapped under the master key and valid
// for one rotation window.
type KeyEpoch struct {
	Version    string    `json:"version"` // 6 lower-case hex chars
	WrappedKey string    `json:"-"`       // base64(iv || ciphertext || tag)
	ActiveFrom time.Time `json:"active_from"`
	ActiveTo   time.Time `json:"active_to"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsExpired returns true once now is past ActiveTo.
func (e *KeyEpoch) IsExpired(now time.Time) bool {
	return e.ActiveTo.Before(now)
}

// IsActive returns true if the epoch may be used for new issuance at now.
func (e *KeyEpoch) IsActive(now time.Time) bool {
	return !now.Before(e.ActiveFrom) && !e.IsExpired(now)
}

// ActiveKey is an unwrapped epoch key ready for the tag codec.
type ActiveKey struct {
	Version string
	Key     []byte
}
