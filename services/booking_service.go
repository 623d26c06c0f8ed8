package services

import (
	"context"
	"errors"
	"time"

	"carrental-api/models"
	"carrental-api/repositories"
	"carrental-api/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	lockTimeout   = 5 * time.Second
	notifyTimeout = 30 * time.Second
)

const msgCarUnavailable = "Car is not available for selected dates"

type CreateBookingInput struct {
	CarID      string
	PickupDate string
	ReturnDate string
	RenterID   string
}

type BookingService struct {
	users        UserStore
	cars         CarStore
	bookings     BookingStore
	availability *AvailabilityService
	locker       Locker
	notifier     Notifier
}

func NewBookingService(users UserStore, cars CarStore, bookings BookingStore, locker Locker, notifier Notifier) *BookingService {
	if locker == nil {
		locker = NewKeyedMutex()
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &BookingService{
		users:        users,
		cars:         cars,
		bookings:     bookings,
		availability: NewAvailabilityService(cars, bookings),
		locker:       locker,
		notifier:     notifier,
	}
}

func (s *BookingService) Availability() *AvailabilityService {
	return s.availability
}

// CheckAvailability parses the request range and lists the free cars.
func (s *BookingService) CheckAvailability(ctx context.Context, location, pickupDate, returnDate string) ([]models.CarAvailability, error) {
	pickup, ret, err := ParseDateRange(pickupDate, returnDate)
	if err != nil {
		return nil, err
	}
	return s.availability.AvailableCars(ctx, pickup, ret, location)
}

// CreateBooking records a pending booking for the renter. The availability
// check and the insert run under the car's lock.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if in.CarID == "" || in.PickupDate == "" || in.ReturnDate == "" {
		return nil, utils.ValidationError("All fields are required")
	}
	pickup, ret, err := ParseDateRange(in.PickupDate, in.ReturnDate)
	if err != nil {
		return nil, err
	}

	car, err := s.cars.FindByID(ctx, in.CarID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFoundError("Car not found")
		}
		return nil, utils.InternalError("Failed to load car", err)
	}
	if !car.IsListed() {
		return nil, utils.ConflictError(msgCarUnavailable)
	}

	unlock, err := s.lockCar(ctx, car.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	available, err := s.availability.IsAvailable(ctx, car.ID, pickup, ret)
	if err != nil {
		return nil, utils.InternalError("Failed to check availability", err)
	}
	if !available {
		return nil, utils.ConflictError(msgCarUnavailable)
	}

	ownerID := *car.OwnerID
	booking := &models.Booking{
		ID:         uuid.NewString(),
		CarID:      car.ID,
		OwnerID:    &ownerID,
		UserID:     in.RenterID,
		PickupDate: pickup,
		ReturnDate: ret,
		Price:      QuotePrice(pickup, ret, car.PricePerDay),
		Status:     models.BookingPending,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		switch {
		case errors.Is(err, repositories.ErrBookingOverlap):
			return nil, utils.ConflictError(msgCarUnavailable)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, utils.NotFoundError("Car not found")
		}
		return nil, utils.InternalError("Failed to create booking", err)
	}

	utils.Logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"car_id":     car.ID,
		"user_id":    in.RenterID,
	}).Info("booking created")

	s.notifyOwner(*booking, *car)
	return booking, nil
}

// ChangeStatus lets the car's owner move a booking between statuses.
func (s *BookingService) ChangeStatus(ctx context.Context, bookingID, status, callerID string) (*models.Booking, error) {
	if bookingID == "" {
		return nil, utils.ValidationError("Booking is required")
	}
	next, err := models.ParseBookingStatus(status)
	if err != nil {
		return nil, utils.ValidationError("Invalid booking status")
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsOwnedBy(callerID) {
		return nil, utils.UnauthorizedError("Unauthorized")
	}
	if booking.Status == next {
		return booking, nil
	}

	update := s.bookings.UpdateStatus
	// A cancelled booking going back to pending or confirmed needs its dates again.
	if !booking.Status.IsBlocking() && next.IsBlocking() {
		unlock, err := s.lockCar(ctx, booking.CarID)
		if err != nil {
			return nil, err
		}
		defer unlock()
		update = s.bookings.Reactivate
	}

	if err := update(ctx, booking.ID, next); err != nil {
		switch {
		case errors.Is(err, repositories.ErrBookingOverlap):
			return nil, utils.ConflictError(msgCarUnavailable)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, utils.NotFoundError("Booking not found")
		}
		return nil, utils.InternalError("Failed to update booking", err)
	}
	booking.Status = next

	utils.Logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"status":     next,
	}).Info("booking status changed")

	s.notifyRenter(*booking)
	return booking, nil
}

func (s *BookingService) UserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings, err := s.bookings.FindByUser(ctx, userID)
	if err != nil {
		return nil, utils.InternalError("Failed to load bookings", err)
	}
	return bookings, nil
}

// OwnerBookings lists bookings on the caller's cars. Only owners may ask.
func (s *BookingService) OwnerBookings(ctx context.Context, userID, role string) ([]models.Booking, error) {
	if role != models.RoleOwner {
		return nil, utils.UnauthorizedError("Unauthorized")
	}
	bookings, err := s.bookings.FindByOwner(ctx, userID)
	if err != nil {
		return nil, utils.InternalError("Failed to load bookings", err)
	}
	return bookings, nil
}

// ExpireStalePending cancels pending requests whose pickup day has passed.
func (s *BookingService) ExpireStalePending(ctx context.Context, now time.Time) (int64, error) {
	return s.bookings.CancelStalePending(ctx, utils.StartOfDay(now))
}

func (s *BookingService) findBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFoundError("Booking not found")
		}
		return nil, utils.InternalError("Failed to load booking", err)
	}
	return booking, nil
}

func (s *BookingService) lockCar(ctx context.Context, carID string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	unlock, err := s.locker.Lock(lockCtx, "car:"+carID)
	if err != nil {
		return nil, utils.InternalError("Failed to lock car", err)
	}
	return unlock, nil
}

func (s *BookingService) notifyOwner(booking models.Booking, car models.Car) {
	if booking.OwnerID == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		log := utils.Logger.WithField("booking_id", booking.ID)
		owner, err := s.users.FindByID(ctx, *booking.OwnerID)
		if err != nil {
			log.WithError(err).Warn("could not load car owner for notification")
			return
		}
		if err := s.notifier.BookingRequested(owner, &car, &booking); err != nil {
			log.WithError(err).Warn("booking request notification failed")
		}
	}()
}

func (s *BookingService) notifyRenter(booking models.Booking) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		log := utils.Logger.WithField("booking_id", booking.ID)
		renter, err := s.users.FindByID(ctx, booking.UserID)
		if err != nil {
			log.WithError(err).Warn("could not load renter for notification")
			return
		}
		if err := s.notifier.BookingStatusChanged(renter, booking.Car, &booking); err != nil {
			log.WithError(err).Warn("booking status notification failed")
		}
	}()
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
