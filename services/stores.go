package services

import (
	"context"
	"time"

	"carrental-api/models"
)

// The stores below are satisfied by the gorm repositories and by the
// in-memory store in package repositories.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateImage(ctx context.Context, id, imageURL string) error
}

type CarStore interface {
	Create(ctx context.Context, car *models.Car) error
	FindByID(ctx context.Context, id string) (*models.Car, error)
	FindAvailable(ctx context.Context, location string) ([]models.Car, error)
	FindByOwner(ctx context.Context, ownerID string) ([]models.Car, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	Save(ctx context.Context, car *models.Car) error
}

type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindBlockingByCar(ctx context.Context, carID string) ([]models.Booking, error)
	FindByUser(ctx context.Context, userID string) ([]models.Booking, error)
	FindByOwner(ctx context.Context, ownerID string) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
	// Reactivate sets a blocking status, failing with ErrBookingOverlap when
	// the booking's dates are already taken.
	Reactivate(ctx context.Context, id string, status models.BookingStatus) error
	CancelStalePending(ctx context.Context, before time.Time) (int64, error)
}
