package apperrors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCapacityNotFound      = errors.New("capacity not found")
	ErrOfferNotFound         = errors.New("offer not found")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrTokenNotFound         = errors.New("token not found")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInsufficientCapacity  = errors.New("insufficient capacity")
	ErrTokenAlreadyUsed      = errors.New("token already used")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenWrongKind        = errors.New("token kind mismatch")
	ErrTicketAlreadyScanned  = errors.New("ticket already scanned")
	ErrSecurityInconsistency = errors.New("stored hash does not match identifier")
	ErrInternalServerError   = errors.New("internal server error")
)

// InsufficientCapacityError reports the units left when a reservation is
// rejected. errors.Is(err, ErrInsufficientCapacity) holds.
type InsufficientCapacityError struct {
	CapacityID int
	Requested  int
	Available  int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: requested %d, %d available", e.Requested, e.Available)
}

func (e *InsufficientCapacityError) Is(target error) bool {
	return target == ErrInsufficientCapacity
}

// AlreadyScannedError carries the original scan time so the caller can show
// when the ticket was first accepted.
type AlreadyScannedError struct {
	FinalKey  string
	ScannedAt time.Time
}

func (e *AlreadyScannedError) Error() string {
	return fmt.Sprintf("ticket already scanned at %s", e.ScannedAt.Format(time.RFC3339))
}

func (e *AlreadyScannedError) Is(target error) bool {
	return target == ErrTicketAlreadyScanned
}
