package model

import "time"

// DateLayout is the wire and storage format of reservation dates.
const DateLayout = "2006-01-02"

// Reservation records a booking of a costume for an inclusive date range.
// Reservations are written once and never updated by the application.
//
// Fields:
//  ID            – primary key identifier.
//  CostumeID     – reserved costume (costumes.id).
//  ClientPhone   – phone number of the renting client.
//  IDDocumentRef – blob reference of the uploaded identity document.
//  StartDate     – first day of the rental (UTC midnight).
//  EndDate       – last day of the rental, never before StartDate.
//  SellerID      – user who registered the reservation.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Reservation struct {
	ID            uint64    // reservations.id
	CostumeID     uint64    // reservations.costume_id
	ClientPhone   string    // reservations.client_phone
	IDDocumentRef string    // reservations.id_document_ref
	StartDate     time.Time // reservations.start_date
	EndDate       time.Time // reservations.end_date
	SellerID      uint64    // reservations.seller_id
	CreatedAt     time.Time // reservations.created_at
	UpdatedAt     time.Time // reservations.updated_at
}

// Overlaps reports whether the inclusive ranges [StartDate, EndDate] of r and
// [start, end] share at least one day.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return !start.After(r.EndDate) && !end.Before(r.StartDate)
}
