package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"carrental-api/models"
	"carrental-api/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type testEnv struct {
	store    *repositories.MemoryStore
	images   *fakeImageStore
	bookings *BookingService
	owners   *OwnerService
	owner    *models.User
	renter   *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repositories.NewMemoryStore()
	images := &fakeImageStore{}
	env := &testEnv{
		store:    store,
		images:   images,
		bookings: NewBookingService(store.Users(), store.Cars(), store.Bookings(), NewKeyedMutex(), NoopNotifier{}),
		owners:   NewOwnerService(store.Users(), store.Cars(), store.Bookings(), images),
	}
	env.owner = env.addUser(t, "owner@example.com", models.RoleOwner)
	env.renter = env.addUser(t, "renter@example.com", models.RoleUser)
	return env
}

func (e *testEnv) addUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	user := &models.User{ID: uuid.NewString(), Name: "Test " + role, Email: email, Password: "x", Role: role}
	require.NoError(t, e.store.Users().Create(context.Background(), user))
	return user
}

func (e *testEnv) addCar(t *testing.T, ownerID string, pricePerDay float64) *models.Car {
	t.Helper()
	owner := ownerID
	car := &models.Car{
		ID:          uuid.NewString(),
		OwnerID:     &owner,
		Brand:       "Toyota",
		Model:       "Corolla",
		PricePerDay: pricePerDay,
		Location:    "New York",
		IsAvailable: true,
	}
	require.NoError(t, e.store.Cars().Create(context.Background(), car))
	return car
}

func (e *testEnv) book(t *testing.T, carID, pickup, ret string) *models.Booking {
	t.Helper()
	booking, err := e.bookings.CreateBooking(context.Background(), CreateBookingInput{
		CarID: carID, PickupDate: pickup, ReturnDate: ret, RenterID: e.renter.ID,
	})
	require.NoError(t, err)
	return booking
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeImageStore struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeImageStore) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://images.test/" + key, nil
}

type recordingNotifier struct {
	requested chan *models.Booking
	changed   chan *models.Booking
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		requested: make(chan *models.Booking, 4),
		changed:   make(chan *models.Booking, 4),
	}
}

func (n *recordingNotifier) BookingRequested(_ *models.User, _ *models.Car, b *models.Booking) error {
	n.requested <- b
	return nil
}

func (n *recordingNotifier) BookingStatusChanged(_ *models.User, _ *models.Car, b *models.Booking) error {
	n.changed <- b
	return nil
}
