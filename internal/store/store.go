package store

import (
	"errors"

	"hotelhub/pkg/domain"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a unique constraint is violated
	// (duplicate email or confirmation code).
	ErrDuplicateKey = errors.New("duplicate key")
)

// Store defines persistence operations for users, rooms, and bookings.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	ListUsers() ([]domain.User, error)
	// DeleteUser removes the user and all bookings they created.
	DeleteUser(id string) error

	// rooms
	SaveRoom(domain.Room) error
	GetRoom(id string) (domain.Room, bool, error)
	ListRooms() ([]domain.Room, error)
	ListRoomTypes() ([]string, error)
	// DeleteRoom removes the room and cascades to its bookings in one transaction.
	DeleteRoom(id string) error
	// ListAvailableRooms returns rooms of the given type with no booking whose
	// half-open [checkIn, checkOut) range overlaps the requested range.
	ListAvailableRooms(checkIn, checkOut domain.Date, roomType string) ([]domain.Room, error)

	// bookings
	// CreateBooking verifies the room and user still exist and inserts the
	// booking, all inside a single transaction. Returns ErrDuplicateKey when
	// the confirmation code collides with an existing one.
	CreateBooking(domain.Booking) error
	GetBookingByCode(code string) (domain.Booking, bool, error)
	ListBookings() ([]domain.Booking, error)
	// ListBookingsByUserEmail filters by the linked creator's email, not the
	// guest email on the booking itself.
	ListBookingsByUserEmail(email string) ([]domain.Booking, error)
	DeleteBooking(id string) error
}

// SessionStore issues and validates bearer tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	UserIDFromToken(token string) (string, error)
}
