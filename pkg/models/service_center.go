package models

import (
	"time"
)

// Booking statuses
const (
	BookingStatusScheduled = "SCHEDULED"
	BookingStatusCompleted = "COMPLETED"
	BookingStatusCancelled = "CANCELLED"
)

// Failure types recorded on completed bookings for root-cause analysis
const (
	FailureTypePremature  = "PREMATURE_FAILURE"
	FailureTypeNormalWear = "NORMAL_WEAR"
	FailureTypeAccidental = "ACCIDENTAL"
)

// Booking is one vehicle-repair slot at a service center. The RCA fields
// (replaced_part_sku, failure_type, source_batch_id) record provenance for
// later analysis; recording a booking never reports a failure by itself.
type Booking struct {
	BookingID       string  `json:"booking_id" validate:"required"`
	VehicleID       string  `json:"vehicle_id" validate:"required"`
	Issue           string  `json:"issue" validate:"required"`
	PartRequired    *string `json:"part_required,omitempty"`
	Date            string  `json:"date" validate:"required"`
	Status          string  `json:"status,omitempty" validate:"omitempty,oneof=SCHEDULED COMPLETED CANCELLED"`
	ReplacedPartSKU *string `json:"replaced_part_sku,omitempty"`
	FailureType     string  `json:"failure_type,omitempty" validate:"omitempty,oneof=PREMATURE_FAILURE NORMAL_WEAR ACCIDENTAL"`
	SourceBatchID   *string `json:"source_batch_id,omitempty"`
}

// ServiceCenter is a repair location in the network directory
type ServiceCenter struct {
	ID              string    `json:"id" db:"id"`
	CenterID        string    `json:"centerId" db:"center_id"`
	Name            string    `json:"name" db:"name"`
	Location        string    `json:"location" db:"location"`
	Phone           string    `json:"phone" db:"phone"`
	Capacity        int       `json:"capacity" db:"capacity"`
	Specializations []string  `json:"specializations"`
	Bookings        []Booking `json:"bookings"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterCenterRequest is the request body for registering a service center
type RegisterCenterRequest struct {
	CenterID        string    `json:"centerId" validate:"required"`
	Name            string    `json:"name" validate:"required"`
	Location        string    `json:"location" validate:"required"`
	Phone           string    `json:"phone" validate:"required"`
	Capacity        int       `json:"capacity" validate:"required,gt=0"`
	Specializations []string  `json:"specializations"`
	Bookings        []Booking `json:"bookings" validate:"omitempty,dive"`
	IsActive        *bool     `json:"is_active,omitempty"`
}
