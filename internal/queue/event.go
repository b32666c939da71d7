// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the audit consumer that use them.
package queue

// ReservationCreatedQueue is the durable queue reservation events go to.
const ReservationCreatedQueue = "reservation.created"

// ReservationCreatedEvent is published after a reservation has been
// committed.  It contains enough information for downstream consumers to
// log or notify without querying the primary database.
type ReservationCreatedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	CostumeID     uint64 `json:"costume_id"`
	SellerID      uint64 `json:"seller_id"`
	ClientPhone   string `json:"client_phone"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	CreatedAt     string `json:"created_at"`
}
