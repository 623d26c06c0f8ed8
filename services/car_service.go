package services

import (
	"context"
	"errors"

	"carrental-api/models"
	"carrental-api/repositories"
	"carrental-api/utils"
)

// CarService serves the public catalog.
type CarService struct {
	cars CarStore
}

func NewCarService(cars CarStore) *CarService {
	return &CarService{cars: cars}
}

func (s *CarService) ListAvailable(ctx context.Context) ([]models.Car, error) {
	cars, err := s.cars.FindAvailable(ctx, "")
	if err != nil {
		return nil, utils.InternalError("Failed to load cars", err)
	}
	return cars, nil
}

func (s *CarService) GetCar(ctx context.Context, id string) (*models.Car, error) {
	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFoundError("Car not found")
		}
		return nil, utils.InternalError("Failed to load car", err)
	}
	return car, nil
}
