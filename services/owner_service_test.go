package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"carrental-api/models"
	"carrental-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCarInput() *CarInput {
	return &CarInput{
		Brand:           "BMW",
		Model:           "X5",
		Year:            2023,
		Category:        "SUV",
		SeatingCapacity: 5,
		FuelType:        "Hybrid",
		Transmission:    "Automatic",
		PricePerDay:     120,
		Location:        "Chicago",
	}
}

func pngUpload() *Upload {
	return &Upload{Filename: "car.png", Reader: bytes.NewReader(pngHeader)}
}

func TestAddCar(t *testing.T) {
	env := newTestEnv(t)

	car, err := env.owners.AddCar(context.Background(), env.owner.ID, validCarInput(), pngUpload())
	require.NoError(t, err)

	assert.True(t, car.IsAvailable)
	assert.True(t, car.IsOwnedBy(env.owner.ID))
	require.Len(t, env.images.keys, 1)
	assert.True(t, strings.HasPrefix(env.images.keys[0], "cars/"))
	assert.True(t, strings.HasSuffix(env.images.keys[0], ".png"))
	assert.Equal(t, "https://images.test/"+env.images.keys[0], car.Image)

	cars, err := env.owners.ListCars(context.Background(), env.owner.ID)
	require.NoError(t, err)
	assert.Len(t, cars, 1)
}

func TestAddCarValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.owners.AddCar(ctx, env.owner.ID, validCarInput(), nil)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	text := &Upload{Filename: "car.png", Reader: strings.NewReader("definitely not an image")}
	_, err = env.owners.AddCar(ctx, env.owner.ID, validCarInput(), text)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	free := validCarInput()
	free.PricePerDay = 0
	_, err = env.owners.AddCar(ctx, env.owner.ID, free, pngUpload())
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	assert.Empty(t, env.images.keys)
}

func TestAddCarUploadFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	env.images.err = errors.New("bucket missing")

	_, err := env.owners.AddCar(context.Background(), env.owner.ID, validCarInput(), pngUpload())
	assert.True(t, utils.IsKind(err, utils.KindInternal))
}

func TestParseCarInput(t *testing.T) {
	in, err := ParseCarInput(`{"brand":"Kia","model":"Rio","pricePerDay":30,"seating_capacity":4,"location":"Austin"}`)
	require.NoError(t, err)
	assert.Equal(t, "Kia", in.Brand)
	assert.Equal(t, 4, in.SeatingCapacity)

	_, err = ParseCarInput("{")
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	_, err = ParseCarInput("")
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestToggleAvailability(t *testing.T) {
	env := newTestEnv(t)
	car := env.addCar(t, env.owner.ID, 50)

	updated, err := env.owners.ToggleAvailability(context.Background(), env.owner.ID, car.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)

	updated, err = env.owners.ToggleAvailability(context.Background(), env.owner.ID, car.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsAvailable)
}

func TestToggleAndDeleteRequireOwnership(t *testing.T) {
	env := newTestEnv(t)
	car := env.addCar(t, env.owner.ID, 50)
	other := env.addUser(t, "other@example.com", models.RoleOwner)

	_, err := env.owners.ToggleAvailability(context.Background(), other.ID, car.ID)
	assert.True(t, utils.IsKind(err, utils.KindAccessDenied))

	err = env.owners.DeleteCar(context.Background(), other.ID, car.ID)
	assert.True(t, utils.IsKind(err, utils.KindAccessDenied))

	err = env.owners.DeleteCar(context.Background(), env.owner.ID, "missing")
	assert.True(t, utils.IsKind(err, utils.KindAccessDenied))
}

func TestDeleteCarDetachesOwner(t *testing.T) {
	env := newTestEnv(t)
	car := env.addCar(t, env.owner.ID, 50)

	require.NoError(t, env.owners.DeleteCar(context.Background(), env.owner.ID, car.ID))

	stored, err := env.store.Cars().FindByID(context.Background(), car.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.OwnerID)
	assert.False(t, stored.IsAvailable)

	cars, err := env.owners.ListCars(context.Background(), env.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, cars)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	car := env.addCar(t, env.owner.ID, 50)
	env.addCar(t, env.owner.ID, 80)

	a := env.book(t, car.ID, "2025-01-01", "2025-01-03")
	b := env.book(t, car.ID, "2025-01-05", "2025-01-06")
	c := env.book(t, car.ID, "2025-01-08", "2025-01-09")
	env.book(t, car.ID, "2025-01-11", "2025-01-12")

	ctx := context.Background()
	_, err := env.bookings.ChangeStatus(ctx, a.ID, "confirmed", env.owner.ID)
	require.NoError(t, err)
	_, err = env.bookings.ChangeStatus(ctx, b.ID, "confirmed", env.owner.ID)
	require.NoError(t, err)
	_, err = env.bookings.ChangeStatus(ctx, c.ID, "cancelled", env.owner.ID)
	require.NoError(t, err)

	data, err := env.owners.Dashboard(ctx, env.owner.ID, models.RoleOwner)
	require.NoError(t, err)

	assert.Equal(t, int64(2), data.TotalCars)
	assert.Equal(t, 4, data.TotalBookings)
	assert.Equal(t, 1, data.PendingBookings)
	assert.Equal(t, 2, data.CompletedBookings)
	assert.Equal(t, a.Price+b.Price, data.MonthlyRevenue)
	assert.LessOrEqual(t, data.PendingBookings+data.CompletedBookings, data.TotalBookings)
	require.Len(t, data.RecentBookings, 3)
	assert.NotNil(t, data.RecentBookings[0].Car)
}

func TestDashboardRequiresOwnerRole(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.owners.Dashboard(context.Background(), env.renter.ID, models.RoleUser)
	assert.True(t, utils.IsKind(err, utils.KindAccessDenied))
}

func TestUpdateUserImage(t *testing.T) {
	env := newTestEnv(t)

	url, err := env.owners.UpdateUserImage(context.Background(), env.renter.ID, pngUpload())
	require.NoError(t, err)
	assert.Contains(t, url, "users/")

	user, err := env.store.Users().FindByID(context.Background(), env.renter.ID)
	require.NoError(t, err)
	assert.Equal(t, url, user.Image)
}
