package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"carrental-api/models"
	"carrental-api/utils"
	"golang.org/x/sync/errgroup"
)

const fleetCheckConcurrency = 8

type AvailabilityService struct {
	cars     CarStore
	bookings BookingStore
}

func NewAvailabilityService(cars CarStore, bookings BookingStore) *AvailabilityService {
	return &AvailabilityService{cars: cars, bookings: bookings}
}

// HasOverlap reports whether any blocking booking in existing overlaps the
// closed interval [pickup, ret]. Bookings with id skip are ignored.
func HasOverlap(existing []models.Booking, pickup, ret time.Time, skip string) bool {
	for i := range existing {
		if existing[i].ID == skip && skip != "" {
			continue
		}
		if existing[i].Status.IsBlocking() && existing[i].Overlaps(pickup, ret) {
			return true
		}
	}
	return false
}

// IsAvailable reports whether the car has no blocking booking overlapping
// [pickup, ret].
func (s *AvailabilityService) IsAvailable(ctx context.Context, carID string, pickup, ret time.Time) (bool, error) {
	existing, err := s.bookings.FindBlockingByCar(ctx, carID)
	if err != nil {
		return false, fmt.Errorf("loading bookings for car %s: %w", carID, err)
	}
	return !HasOverlap(existing, pickup, ret, ""), nil
}

// AvailableCars returns every listed car (optionally in one location) that
// is free for the whole range. A failed check for any car fails the query.
func (s *AvailabilityService) AvailableCars(ctx context.Context, pickup, ret time.Time, location string) ([]models.CarAvailability, error) {
	cars, err := s.cars.FindAvailable(ctx, location)
	if err != nil {
		return nil, utils.InternalError("Failed to load cars", err)
	}

	free := make([]bool, len(cars))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fleetCheckConcurrency)
	for i := range cars {
		i := i
		g.Go(func() error {
			ok, err := s.IsAvailable(gctx, cars[i].ID, pickup, ret)
			if err != nil {
				return err
			}
			free[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, utils.InternalError("Failed to check car availability", err)
	}

	result := make([]models.CarAvailability, 0, len(cars))
	for i, car := range cars {
		if free[i] {
			result = append(result, models.CarAvailability{Car: car, IsAvailable: true})
		}
	}
	return result, nil
}

// ParseDateRange validates and parses a pickup/return pair. The order of the
// two dates is not checked here.
func ParseDateRange(pickupDate, returnDate string) (time.Time, time.Time, error) {
	if pickupDate == "" || returnDate == "" {
		return time.Time{}, time.Time{}, utils.ValidationError("Pickup and return dates required")
	}
	pickup, ok := utils.ParseDate(pickupDate)
	if !ok {
		return time.Time{}, time.Time{}, utils.ValidationError("Invalid pickup date")
	}
	ret, ok := utils.ParseDate(returnDate)
	if !ok {
		return time.Time{}, time.Time{}, utils.ValidationError("Invalid return date")
	}
	return pickup, ret, nil
}

// RentalDays is the number of started days between pickup and return, never
// less than one. Same-day and inverted ranges are billed as one day.
func RentalDays(pickup, ret time.Time) int {
	days := int(math.Ceil(ret.Sub(pickup).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

func QuotePrice(pickup, ret time.Time, pricePerDay float64) float64 {
	return float64(RentalDays(pickup, ret)) * pricePerDay
}
