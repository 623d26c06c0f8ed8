// File: /database/database.go
package database

import (
	"fmt"
	"time"

	"carrental-api/models"
	"carrental-api/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens a connection for driver "mysql" or "postgres".
func Initialize(driver, databaseURL string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(databaseURL)
	case "postgres":
		dialector = postgres.Open(databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(utils.Logger, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Car{},
		&models.Booking{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	addCustomIndexes(db)
	addDatabaseConstraints(db)
	return nil
}

// addCustomIndexes creates indexes that struct tags cannot express. Failures
// are logged and do not stop startup.
func addCustomIndexes(db *gorm.DB) {
	indexes := []struct {
		name string
		sql  string
	}{
		{"idx_bookings_user_created", "CREATE INDEX idx_bookings_user_created ON bookings(user_id, created_at DESC)"},
		{"idx_bookings_owner_created", "CREATE INDEX idx_bookings_owner_created ON bookings(owner_id, created_at DESC)"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(&models.Booking{}, idx.name) {
			continue
		}
		if err := db.Exec(idx.sql).Error; err != nil {
			utils.Logger.WithError(err).WithField("index", idx.name).Warn("could not create index")
		}
	}
}

func addDatabaseConstraints(db *gorm.DB) {
	constraints := []struct {
		model interface{}
		name  string
		sql   string
	}{
		{&models.Car{}, "ck_cars_price_positive", "ALTER TABLE cars ADD CONSTRAINT ck_cars_price_positive CHECK (price_per_day > 0)"},
		{&models.Booking{}, "ck_bookings_status", "ALTER TABLE bookings ADD CONSTRAINT ck_bookings_status CHECK (status IN ('pending', 'confirmed', 'cancelled'))"},
		{&models.User{}, "ck_users_role", "ALTER TABLE users ADD CONSTRAINT ck_users_role CHECK (role IN ('admin', 'owner', 'user'))"},
	}

	for _, c := range constraints {
		if db.Migrator().HasConstraint(c.model, c.name) {
			continue
		}
		if err := db.Exec(c.sql).Error; err != nil {
			utils.Logger.WithError(err).WithField("constraint", c.name).Warn("could not add constraint")
		}
	}
}

// SeedData adds a demo owner with two cars when the users table is empty.
func SeedData(db *gorm.DB) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if userCount > 0 {
		utils.Logger.Info("database already has data, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("owner-password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	owner := models.User{
		ID:       uuid.NewString(),
		Name:     "Demo Owner",
		Email:    "owner@example.com",
		Password: string(hashed),
		Role:     models.RoleOwner,
	}
	ownerID := owner.ID
	cars := []models.Car{
		{
			ID: uuid.NewString(), OwnerID: &ownerID, Brand: "Toyota", Model: "Corolla", Year: 2022,
			Category: "Sedan", SeatingCapacity: 5, FuelType: "Petrol", Transmission: "Automatic",
			PricePerDay: 45, Location: "New York", Description: "Reliable city car.", IsAvailable: true,
		},
		{
			ID: uuid.NewString(), OwnerID: &ownerID, Brand: "Jeep", Model: "Wrangler", Year: 2021,
			Category: "SUV", SeatingCapacity: 4, FuelType: "Diesel", Transmission: "Manual",
			PricePerDay: 90, Location: "Los Angeles", Description: "Off-road ready.", IsAvailable: true,
		},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&owner).Error; err != nil {
			return fmt.Errorf("creating seed owner: %w", err)
		}
		if err := tx.Create(&cars).Error; err != nil {
			return fmt.Errorf("creating seed cars: %w", err)
		}
		utils.Logger.WithFields(logrus.Fields{"owner": owner.Email, "cars": len(cars)}).Info("database seeded")
		return nil
	})
}
