package store

import "time"

// Credits is the shop's usage counter held by the billing backend.
type Credits struct {
	AllToken  int `json:"allToken"`
	UserToken int `json:"userToken"`
}

// Remaining returns the unused credit balance, never negative.
func (c Credits) Remaining() int {
	if c.UserToken >= c.AllToken {
		return 0
	}
	return c.AllToken - c.UserToken
}

// Charge is a platform one-time purchase awaiting merchant approval.
type Charge struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

// ChargeStatusActive marks an approved one-time purchase.
const ChargeStatusActive = "ACTIVE"

// CreditGrant records tokens credited for an approved charge.
type CreditGrant struct {
	ID        string    `json:"id" db:"id"`
	Shop      string    `json:"shop" db:"shop"`
	ChargeID  string    `json:"charge_id" db:"charge_id"`
	PackageID string    `json:"package_id" db:"package_id"`
	Tokens    int       `json:"tokens" db:"tokens"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
