package models

import "time"

// Car is a vehicle listed for rent. A nil OwnerID means the listing was deleted.
type Car struct {
	ID              string    `json:"_id" gorm:"primaryKey;size:191"`
	OwnerID         *string   `json:"owner" gorm:"size:191;index"`
	Brand           string    `json:"brand" gorm:"not null;size:100"`
	Model           string    `json:"model" gorm:"not null;size:100"`
	Image           string    `json:"image" gorm:"size:500"`
	Year            int       `json:"year"`
	Category        string    `json:"category" gorm:"size:50"`
	SeatingCapacity int       `json:"seating_capacity"`
	FuelType        string    `json:"fuel_type" gorm:"size:50"`
	Transmission    string    `json:"transmission" gorm:"size:50"`
	PricePerDay     float64   `json:"pricePerDay" gorm:"not null"`
	Location        string    `json:"location" gorm:"not null;size:100;index"`
	Description     string    `json:"description" gorm:"type:text"`
	IsAvailable     bool      `json:"isAvailable" gorm:"not null;index"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsOwnedBy reports whether userID currently owns the listing.
func (c *Car) IsOwnedBy(userID string) bool {
	return c.OwnerID != nil && *c.OwnerID == userID
}

// IsListed reports whether the car can currently be booked.
func (c *Car) IsListed() bool {
	return c.OwnerID != nil && c.IsAvailable
}

// CarAvailability is a car annotated with the result of an availability check.
type CarAvailability struct {
	Car
	IsAvailable bool `json:"isAvailable"`
}
