package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"carrental-api/models"
	"carrental-api/repositories"
	"carrental-api/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const recentBookingsLimit = 3

// CarInput is the carData document sent with add-car.
type CarInput struct {
	Brand           string  `json:"brand"`
	Model           string  `json:"model"`
	Year            int     `json:"year"`
	Category        string  `json:"category"`
	SeatingCapacity int     `json:"seating_capacity"`
	FuelType        string  `json:"fuel_type"`
	Transmission    string  `json:"transmission"`
	PricePerDay     float64 `json:"pricePerDay"`
	Location        string  `json:"location"`
	Description     string  `json:"description"`
}

func ParseCarInput(raw string) (*CarInput, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, utils.ValidationError("Car data is required")
	}
	var in CarInput
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, utils.ValidationError("Invalid car data")
	}
	return &in, nil
}

func (in *CarInput) validate() error {
	in.Brand = strings.TrimSpace(in.Brand)
	in.Model = strings.TrimSpace(in.Model)
	in.Location = strings.TrimSpace(in.Location)

	switch {
	case in.Brand == "" || in.Model == "":
		return utils.ValidationError("Brand and model are required")
	case in.Location == "":
		return utils.ValidationError("Location is required")
	case in.PricePerDay <= 0:
		return utils.ValidationError("Price per day must be greater than zero")
	case in.Year < 0 || in.SeatingCapacity < 0:
		return utils.ValidationError("Invalid car data")
	}
	return nil
}

type OwnerService struct {
	users    UserStore
	cars     CarStore
	bookings BookingStore
	images   ImageStore
}

func NewOwnerService(users UserStore, cars CarStore, bookings BookingStore, images ImageStore) *OwnerService {
	return &OwnerService{users: users, cars: cars, bookings: bookings, images: images}
}

// AddCar lists a new car for the owner. The image is required.
func (s *OwnerService) AddCar(ctx context.Context, ownerID string, in *CarInput, image *Upload) (*models.Car, error) {
	if in == nil {
		return nil, utils.ValidationError("Car data is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	imageURL, err := storeImage(ctx, s.images, carImageFolder, image)
	if err != nil {
		return nil, err
	}

	owner := ownerID
	car := &models.Car{
		ID:              uuid.NewString(),
		OwnerID:         &owner,
		Brand:           in.Brand,
		Model:           in.Model,
		Image:           imageURL,
		Year:            in.Year,
		Category:        in.Category,
		SeatingCapacity: in.SeatingCapacity,
		FuelType:        in.FuelType,
		Transmission:    in.Transmission,
		PricePerDay:     in.PricePerDay,
		Location:        in.Location,
		Description:     in.Description,
		IsAvailable:     true,
	}
	if err := s.cars.Create(ctx, car); err != nil {
		return nil, utils.InternalError("Failed to add car", err)
	}

	utils.Logger.WithFields(logrus.Fields{"car_id": car.ID, "owner_id": ownerID}).Info("car added")
	return car, nil
}

func (s *OwnerService) ListCars(ctx context.Context, ownerID string) ([]models.Car, error) {
	cars, err := s.cars.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, utils.InternalError("Failed to load cars", err)
	}
	return cars, nil
}

func (s *OwnerService) ToggleAvailability(ctx context.Context, ownerID, carID string) (*models.Car, error) {
	car, err := s.ownedCar(ctx, ownerID, carID)
	if err != nil {
		return nil, err
	}
	car.IsAvailable = !car.IsAvailable
	if err := s.cars.Save(ctx, car); err != nil {
		return nil, utils.InternalError("Failed to update car", err)
	}
	return car, nil
}

// DeleteCar unlists the car and detaches it from its owner. Existing
// bookings keep their reference to it.
func (s *OwnerService) DeleteCar(ctx context.Context, ownerID, carID string) error {
	car, err := s.ownedCar(ctx, ownerID, carID)
	if err != nil {
		return err
	}
	car.OwnerID = nil
	car.IsAvailable = false
	if err := s.cars.Save(ctx, car); err != nil {
		return utils.InternalError("Failed to delete car", err)
	}
	utils.Logger.WithFields(logrus.Fields{"car_id": car.ID, "owner_id": ownerID}).Info("car deleted")
	return nil
}

// Dashboard summarizes the owner's fleet and bookings. Revenue counts
// confirmed bookings only.
func (s *OwnerService) Dashboard(ctx context.Context, ownerID, role string) (*models.DashboardData, error) {
	if role != models.RoleOwner {
		return nil, utils.AccessDeniedError("Access denied")
	}

	totalCars, err := s.cars.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, utils.InternalError("Failed to load cars", err)
	}
	bookings, err := s.bookings.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, utils.InternalError("Failed to load bookings", err)
	}

	data := &models.DashboardData{
		TotalCars:      totalCars,
		TotalBookings:  len(bookings),
		RecentBookings: bookings[:min(recentBookingsLimit, len(bookings))],
	}
	for _, b := range bookings {
		switch b.Status {
		case models.BookingPending:
			data.PendingBookings++
		case models.BookingConfirmed:
			data.CompletedBookings++
			data.MonthlyRevenue += b.Price
		}
	}
	return data, nil
}

func (s *OwnerService) UpdateUserImage(ctx context.Context, userID string, image *Upload) (string, error) {
	imageURL, err := storeImage(ctx, s.images, userImageFolder, image)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateImage(ctx, userID, imageURL); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", utils.NotFoundError("User not found")
		}
		return "", utils.InternalError("Failed to update user image", err)
	}
	return imageURL, nil
}

func (s *OwnerService) ownedCar(ctx context.Context, ownerID, carID string) (*models.Car, error) {
	if carID == "" {
		return nil, utils.ValidationError("Car is required")
	}
	car, err := s.cars.FindByID(ctx, carID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.InternalError("Failed to load car", err)
	}
	if car == nil || !car.IsOwnedBy(ownerID) {
		return nil, utils.AccessDeniedError("Unauthorized access")
	}
	return car, nil
}
