package model

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusFulfilled ReservationStatus = "FULFILLED"
	ReservationStatusFailed    ReservationStatus = "FAILED"
)

// ReservationRequest is what the purchase endpoint hands to the pipeline.
type ReservationRequest struct {
	OwnerID    int    `json:"owner_id"`
	OwnerKey   string `json:"owner_key"`
	OfferID    int    `json:"offer_id"`
	CapacityID int    `json:"capacity_id"`
	Units      int    `json:"units"`
}

// ReservationRecord is the persisted outcome of a purchase request. It is
// created PENDING by the worker and moved to FULFILLED or FAILED in the same
// process.
type ReservationRecord struct {
	ID         int               `json:"id" db:"id"`
	RequestID  string            `json:"request_id" db:"request_id"`
	OwnerID    int               `json:"owner_id" db:"owner_id"`
	OwnerKey   string            `json:"owner_key" db:"owner_key"`
	OfferID    int               `json:"offer_id" db:"offer_id"`
	CapacityID int               `json:"capacity_id" db:"capacity_id"`
	Units      int               `json:"units" db:"units"`
	Status     ReservationStatus `json:"status" db:"status"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`
}
