package repositories

import (
	"context"
	"fmt"
	"time"

	"carrental-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts the booking while holding a row lock on its car, so two
// writers for the same car cannot both pass the overlap check.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var car models.Car
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&car, "id = ?", booking.CarID).Error; err != nil {
			return translate(err)
		}

		if err := checkOverlap(tx, booking); err != nil {
			return err
		}
		return tx.Create(booking).Error
	})
}

// Reactivate moves a booking back into a blocking status. It takes the same
// car row lock as Create before checking the booking's dates.
func (r *BookingRepository) Reactivate(ctx context.Context, id string, status models.BookingStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, "id = ?", id).Error; err != nil {
			return translate(err)
		}

		var car models.Car
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&car, "id = ?", booking.CarID).Error; err != nil {
			return translate(err)
		}

		if err := checkOverlap(tx, &booking); err != nil {
			return err
		}
		return tx.Model(&models.Booking{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     status,
				"updated_at": time.Now(),
			}).Error
	})
}

// checkOverlap counts blocking bookings of the same car, other than booking
// itself, whose dates touch booking's range.
func checkOverlap(tx *gorm.DB, booking *models.Booking) error {
	var conflicts int64
	if err := tx.Model(&models.Booking{}).
		Where("car_id = ? AND id <> ? AND status IN ? AND pickup_date <= ? AND return_date >= ?",
			booking.CarID, booking.ID, models.BlockingStatuses(), booking.ReturnDate, booking.PickupDate).
		Count(&conflicts).Error; err != nil {
		return fmt.Errorf("counting overlapping bookings: %w", err)
	}
	if conflicts > 0 {
		return ErrBookingOverlap
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Preload("Car").First(&booking, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

// FindBlockingByCar returns the pending and confirmed bookings of a car.
func (r *BookingRepository) FindBlockingByCar(ctx context.Context, carID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("car_id = ? AND status IN ?", carID, models.BlockingStatuses()).
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) FindByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Car").
		Preload("Owner").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Car").
		Preload("User").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CancelStalePending cancels pending bookings whose pickup date is before the cutoff.
func (r *BookingRepository) CancelStalePending(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status = ? AND pickup_date < ?", models.BookingPending, before).
		Updates(map[string]interface{}{
			"status":     models.BookingCancelled,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
