package model

import "time"

// AccountRecord is a named account kept in the registry. URI never
// carries a password; the password lives in the keyring under the key
// derived from ID.
type AccountRecord struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	URI       string    `json:"uri" db:"uri"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
