package model

import "time"

// Ticket is the issued proof of a fulfilled reservation. FinalKey is unique
// and built from the owner key plus the purchase key; Scanned flips to true
// exactly once, at verification time.
type Ticket struct {
	ID          int        `json:"id" db:"id"`
	FinalKey    string     `json:"final_key" db:"final_key"`
	OwnerID     int        `json:"owner_id" db:"owner_id"`
	OfferID     int        `json:"offer_id" db:"offer_id"`
	Scanned     bool       `json:"scanned" db:"scanned"`
	ScannedAt   *time.Time `json:"scanned_at,omitempty" db:"scanned_at"`
	PurchasedAt time.Time  `json:"purchased_at" db:"purchased_at"`
}
