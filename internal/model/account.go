package model

import (
	"time"
)

// Account is an authenticated marketplace participant. Accounts are created
// out of band (signup lives in the identity service); this server only needs
// the token hash for auth and the rate limit override.
type Account struct {
	ID              string     `db:"id" json:"id"`
	DisplayName     string     `db:"display_name" json:"displayName"`
	TokenHash       string     `db:"token_hash" json:"-"`
	RateLimitPerMin int        `db:"rate_limit_per_minute" json:"rateLimitPerMinute"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
	DisabledAt      *time.Time `db:"disabled_at" json:"disabledAt,omitempty"`
}

type CreateAccountParams struct {
	DisplayName     string
	TokenHash       string
	RateLimitPerMin int
}
