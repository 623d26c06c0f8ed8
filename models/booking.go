package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// IsBlocking reports whether a booking in this status holds its dates.
func (s BookingStatus) IsBlocking() bool {
	return s == BookingPending || s == BookingConfirmed
}

// BlockingStatuses lists the statuses that count against car availability.
func BlockingStatuses() []BookingStatus {
	return []BookingStatus{BookingPending, BookingConfirmed}
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %q", s)
	}
	return status, nil
}

type Booking struct {
	ID         string        `json:"_id" gorm:"primaryKey;size:191"`
	CarID      string        `json:"carId" gorm:"not null;size:191;index:idx_bookings_car_dates,priority:1"`
	OwnerID    *string       `json:"ownerId" gorm:"size:191;index"`
	UserID     string        `json:"userId" gorm:"not null;size:191;index"`
	PickupDate time.Time     `json:"pickupDate" gorm:"not null;index:idx_bookings_car_dates,priority:2"`
	ReturnDate time.Time     `json:"returnDate" gorm:"not null;index:idx_bookings_car_dates,priority:3"`
	Price      float64       `json:"price" gorm:"not null"`
	Status     BookingStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt  time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time     `json:"updatedAt"`

	Car   *Car  `json:"car,omitempty" gorm:"foreignKey:CarID"`
	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	User  *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Overlaps reports whether the booking's closed interval intersects
// [pickup, ret]. Touching endpoints count as overlapping.
func (b *Booking) Overlaps(pickup, ret time.Time) bool {
	return !b.PickupDate.After(ret) && !b.ReturnDate.Before(pickup)
}

// IsOwnedBy reports whether userID is the owner recorded on the booking.
func (b *Booking) IsOwnedBy(userID string) bool {
	return b.OwnerID != nil && *b.OwnerID == userID
}
