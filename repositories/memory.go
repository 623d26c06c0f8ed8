package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"carrental-api/models"
)

// MemoryStore keeps users, cars and bookings in process memory. It backs
// DB_DRIVER=memory for local runs and the package tests.
type MemoryStore struct {
	mu       sync.RWMutex
	seq      int64
	users    map[string]models.User
	cars     map[string]models.Car
	bookings map[string]models.Booking
	order    map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		cars:     make(map[string]models.Car),
		bookings: make(map[string]models.Booking),
		order:    make(map[string]int64),
	}
}

func (s *MemoryStore) Users() *MemoryUserRepository       { return &MemoryUserRepository{s: s} }
func (s *MemoryStore) Cars() *MemoryCarRepository         { return &MemoryCarRepository{s: s} }
func (s *MemoryStore) Bookings() *MemoryBookingRepository { return &MemoryBookingRepository{s: s} }

// stamp must be called with the write lock held.
func (s *MemoryStore) stamp(id string, created, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
	s.seq++
	s.order[id] = s.seq
}

type MemoryUserRepository struct{ s *MemoryStore }

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return ErrDuplicate
		}
	}
	r.s.stamp(user.ID, &user.CreatedAt, &user.UpdatedAt)
	r.s.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) UpdateImage(_ context.Context, id, imageURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Image = imageURL
	user.UpdatedAt = time.Now()
	r.s.users[id] = user
	return nil
}

type MemoryCarRepository struct{ s *MemoryStore }

func (r *MemoryCarRepository) Create(_ context.Context, car *models.Car) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.stamp(car.ID, &car.CreatedAt, &car.UpdatedAt)
	r.s.cars[car.ID] = *car
	return nil
}

func (r *MemoryCarRepository) FindByID(_ context.Context, id string) (*models.Car, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	car, ok := r.s.cars[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &car, nil
}

func (r *MemoryCarRepository) FindAvailable(_ context.Context, location string) ([]models.Car, error) {
	return r.filter(func(c models.Car) bool {
		return c.IsAvailable && (location == "" || c.Location == location)
	}), nil
}

func (r *MemoryCarRepository) FindByOwner(_ context.Context, ownerID string) ([]models.Car, error) {
	return r.filter(func(c models.Car) bool { return c.IsOwnedBy(ownerID) }), nil
}

func (r *MemoryCarRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	cars, err := r.FindByOwner(ctx, ownerID)
	return int64(len(cars)), err
}

func (r *MemoryCarRepository) Save(_ context.Context, car *models.Car) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cars[car.ID]; !ok {
		return ErrNotFound
	}
	car.UpdatedAt = time.Now()
	r.s.cars[car.ID] = *car
	return nil
}

func (r *MemoryCarRepository) filter(keep func(models.Car) bool) []models.Car {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cars := make([]models.Car, 0)
	for _, car := range r.s.cars {
		if keep(car) {
			cars = append(cars, car)
		}
	}
	sort.Slice(cars, func(i, j int) bool {
		return r.s.order[cars[i].ID] > r.s.order[cars[j].ID]
	})
	return cars
}

type MemoryBookingRepository struct{ s *MemoryStore }

// Create applies the same overlap guard as the SQL store, under the store lock.
func (r *MemoryBookingRepository) Create(_ context.Context, booking *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cars[booking.CarID]; !ok {
		return ErrNotFound
	}
	for _, existing := range r.s.bookings {
		if existing.CarID == booking.CarID && existing.Status.IsBlocking() &&
			existing.Overlaps(booking.PickupDate, booking.ReturnDate) {
			return ErrBookingOverlap
		}
	}
	r.s.stamp(booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	stored := *booking
	stored.Car, stored.Owner, stored.User = nil, nil, nil
	r.s.bookings[booking.ID] = stored
	return nil
}

func (r *MemoryBookingRepository) FindByID(_ context.Context, id string) (*models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	booking, ok := r.s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.populate(&booking, true, false, false)
	return &booking, nil
}

func (r *MemoryBookingRepository) FindBlockingByCar(_ context.Context, carID string) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool {
		return b.CarID == carID && b.Status.IsBlocking()
	}, false, false), nil
}

func (r *MemoryBookingRepository) FindByUser(_ context.Context, userID string) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool { return b.UserID == userID }, true, false), nil
}

func (r *MemoryBookingRepository) FindByOwner(_ context.Context, ownerID string) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool { return b.IsOwnedBy(ownerID) }, false, true), nil
}

func (r *MemoryBookingRepository) UpdateStatus(_ context.Context, id string, status models.BookingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	booking, ok := r.s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	booking.Status = status
	booking.UpdatedAt = time.Now()
	r.s.bookings[id] = booking
	return nil
}

// Reactivate applies the Create overlap guard before moving the booking back
// into a blocking status.
func (r *MemoryBookingRepository) Reactivate(_ context.Context, id string, status models.BookingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	booking, ok := r.s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	for otherID, existing := range r.s.bookings {
		if otherID != id && existing.CarID == booking.CarID && existing.Status.IsBlocking() &&
			existing.Overlaps(booking.PickupDate, booking.ReturnDate) {
			return ErrBookingOverlap
		}
	}
	booking.Status = status
	booking.UpdatedAt = time.Now()
	r.s.bookings[id] = booking
	return nil
}

func (r *MemoryBookingRepository) CancelStalePending(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, booking := range r.s.bookings {
		if booking.Status == models.BookingPending && booking.PickupDate.Before(before) {
			booking.Status = models.BookingCancelled
			booking.UpdatedAt = time.Now()
			r.s.bookings[id] = booking
			n++
		}
	}
	return n, nil
}

// filter returns matching bookings newest first, with the car always populated.
func (r *MemoryBookingRepository) filter(keep func(models.Booking) bool, withOwner, withUser bool) []models.Booking {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	bookings := make([]models.Booking, 0)
	for _, booking := range r.s.bookings {
		if keep(booking) {
			r.populate(&booking, true, withOwner, withUser)
			bookings = append(bookings, booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return r.s.order[bookings[i].ID] > r.s.order[bookings[j].ID]
	})
	return bookings
}

// populate must be called with at least the read lock held.
func (r *MemoryBookingRepository) populate(b *models.Booking, withCar, withOwner, withUser bool) {
	if withCar {
		if car, ok := r.s.cars[b.CarID]; ok {
			b.Car = &car
		}
	}
	if withOwner && b.OwnerID != nil {
		if owner, ok := r.s.users[*b.OwnerID]; ok {
			b.Owner = &owner
		}
	}
	if withUser {
		if user, ok := r.s.users[b.UserID]; ok {
			b.User = &user
		}
	}
}
