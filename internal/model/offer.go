package model

import (
	"time"

	"github.com/google/uuid"
)

type OfferStatus string

const (
	OfferStatusAvailable OfferStatus = "AVAILABLE"
	// OfferStatusExpired is terminal, the sweep never transitions it back.
	OfferStatusExpired OfferStatus = "EXPIRED"
)

// Offer is a priced, quantity-bounded unit sold against one capacity.
type Offer struct {
	ID                int         `json:"id" db:"id"`
	OfferID           uuid.UUID   `json:"offer_id" db:"offer_id"`
	CapacityID        int         `json:"capacity_id" db:"capacity_id"`
	Name              string      `json:"name" db:"name"`
	Price             float64     `json:"price" db:"price"`
	RemainingQuantity int         `json:"remaining_quantity" db:"remaining_quantity"`
	ExpiresAt         time.Time   `json:"expires_at" db:"expires_at"`
	Status            OfferStatus `json:"status" db:"status"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

// IsSellable reports whether the offer can still back a reservation.
func (o *Offer) IsSellable(now time.Time) bool {
	return o.Status == OfferStatusAvailable && o.ExpiresAt.After(now)
}
