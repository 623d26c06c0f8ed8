package repositories

import (
	"context"

	"carrental-api/models"
	"gorm.io/gorm"
)

type CarRepository struct {
	db *gorm.DB
}

func NewCarRepository(db *gorm.DB) *CarRepository {
	return &CarRepository{db: db}
}

func (r *CarRepository) Create(ctx context.Context, car *models.Car) error {
	return r.db.WithContext(ctx).Create(car).Error
}

func (r *CarRepository) FindByID(ctx context.Context, id string) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).First(&car, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &car, nil
}

// FindAvailable returns listed cars, optionally restricted to one location.
func (r *CarRepository) FindAvailable(ctx context.Context, location string) ([]models.Car, error) {
	query := r.db.WithContext(ctx).Where("is_available = ?", true)
	if location != "" {
		query = query.Where("location = ?", location)
	}

	var cars []models.Car
	if err := query.Order("created_at DESC").Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

func (r *CarRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.Car, error) {
	var cars []models.Car
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&cars).Error
	return cars, err
}

func (r *CarRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Car{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

// Save persists every column, including a cleared owner.
func (r *CarRepository) Save(ctx context.Context, car *models.Car) error {
	return r.db.WithContext(ctx).Save(car).Error
}
