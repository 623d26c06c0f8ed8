package repositories

import (
	"context"
	"testing"
	"time"

	"carrental-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func seedCar(t *testing.T, s *MemoryStore, id, owner string) {
	t.Helper()
	o := owner
	require.NoError(t, s.Cars().Create(context.Background(), &models.Car{
		ID: id, OwnerID: &o, Brand: "Kia", Model: "Rio", PricePerDay: 30, Location: "Austin", IsAvailable: true,
	}))
}

func TestMemoryUserDuplicateEmail(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, &models.User{ID: "1", Email: "a@example.com"}))
	assert.ErrorIs(t, s.Users().Create(ctx, &models.User{ID: "2", Email: "a@example.com"}), ErrDuplicate)

	_, err := s.Users().FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Users().UpdateImage(ctx, "missing", "x"), ErrNotFound)
}

func TestMemoryBookingCreateGuardsOverlap(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedCar(t, s, "car", "owner")

	first := &models.Booking{ID: "b1", CarID: "car", UserID: "u", PickupDate: date("2025-01-10"), ReturnDate: date("2025-01-12"), Status: models.BookingPending}
	require.NoError(t, s.Bookings().Create(ctx, first))

	overlapping := &models.Booking{ID: "b2", CarID: "car", UserID: "u", PickupDate: date("2025-01-12"), ReturnDate: date("2025-01-13"), Status: models.BookingPending}
	assert.ErrorIs(t, s.Bookings().Create(ctx, overlapping), ErrBookingOverlap)

	require.NoError(t, s.Bookings().UpdateStatus(ctx, "b1", models.BookingCancelled))
	assert.NoError(t, s.Bookings().Create(ctx, overlapping))

	orphan := &models.Booking{ID: "b3", CarID: "nope", PickupDate: date("2025-01-12"), ReturnDate: date("2025-01-13")}
	assert.ErrorIs(t, s.Bookings().Create(ctx, orphan), ErrNotFound)
}

func TestMemoryBookingListsNewestFirstWithAssociations(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, &models.User{ID: "owner", Email: "o@example.com"}))
	require.NoError(t, s.Users().Create(ctx, &models.User{ID: "u", Email: "u@example.com"}))
	seedCar(t, s, "car", "owner")

	owner := "owner"
	for i, pickup := range []string{"2025-01-01", "2025-02-01", "2025-03-01"} {
		require.NoError(t, s.Bookings().Create(ctx, &models.Booking{
			ID: string(rune('a' + i)), CarID: "car", OwnerID: &owner, UserID: "u",
			PickupDate: date(pickup), ReturnDate: date(pickup), Status: models.BookingPending,
		}))
	}

	byUser, err := s.Bookings().FindByUser(ctx, "u")
	require.NoError(t, err)
	require.Len(t, byUser, 3)
	assert.Equal(t, "c", byUser[0].ID)
	require.NotNil(t, byUser[0].Car)
	require.NotNil(t, byUser[0].Owner)
	assert.Nil(t, byUser[0].User)

	byOwner, err := s.Bookings().FindByOwner(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, byOwner, 3)
	require.NotNil(t, byOwner[0].User)

	n, err := s.Bookings().CancelStalePending(ctx, date("2025-02-15"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	blocking, err := s.Bookings().FindBlockingByCar(ctx, "car")
	require.NoError(t, err)
	require.Len(t, blocking, 1)
	assert.Equal(t, "c", blocking[0].ID)
}

func TestMemoryCarQueries(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedCar(t, s, "a", "owner")
	seedCar(t, s, "b", "owner")

	car, err := s.Cars().FindByID(ctx, "b")
	require.NoError(t, err)
	car.IsAvailable = false
	require.NoError(t, s.Cars().Save(ctx, car))

	available, err := s.Cars().FindAvailable(ctx, "")
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "a", available[0].ID)

	none, err := s.Cars().FindAvailable(ctx, "Paris")
	require.NoError(t, err)
	assert.Empty(t, none)

	count, err := s.Cars().CountByOwner(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assert.ErrorIs(t, s.Cars().Save(ctx, &models.Car{ID: "ghost"}), ErrNotFound)
}

func TestMemoryBookingReactivateGuardsOverlap(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedCar(t, s, "car", "owner")

	first := &models.Booking{ID: "b1", CarID: "car", UserID: "u", PickupDate: date("2025-01-10"), ReturnDate: date("2025-01-12"), Status: models.BookingPending}
	require.NoError(t, s.Bookings().Create(ctx, first))
	require.NoError(t, s.Bookings().UpdateStatus(ctx, "b1", models.BookingCancelled))

	second := &models.Booking{ID: "b2", CarID: "car", UserID: "u", PickupDate: date("2025-01-12"), ReturnDate: date("2025-01-14"), Status: models.BookingPending}
	require.NoError(t, s.Bookings().Create(ctx, second))

	assert.ErrorIs(t, s.Bookings().Reactivate(ctx, "b1", models.BookingConfirmed), ErrBookingOverlap)
	got, err := s.Bookings().FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)

	require.NoError(t, s.Bookings().UpdateStatus(ctx, "b2", models.BookingCancelled))
	require.NoError(t, s.Bookings().Reactivate(ctx, "b1", models.BookingConfirmed))
	got, err = s.Bookings().FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)

	assert.ErrorIs(t, s.Bookings().Reactivate(ctx, "missing", models.BookingPending), ErrNotFound)
}
