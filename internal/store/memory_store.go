package store

import (
	"sort"
	"sync"

	"hotelhub/pkg/domain"
)

// MemoryStore keeps all records in-process. Used by tests and local development.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]domain.User // key: user ID
	email        map[string]string      // email -> user ID
	rooms        map[string]domain.Room
	bookings     map[string]domain.Booking
	roomOrder    []string
	userOrder    []string
	bookingOrder []string
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		email:    make(map[string]string),
		rooms:    make(map[string]domain.Room),
		bookings: make(map[string]domain.Booking),
	}
}

// SaveUser stores or replaces a user record.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existingID, ok := m.email[u.Email]; ok && existingID != u.ID {
		return ErrDuplicateKey
	}
	if prev, ok := m.users[u.ID]; ok {
		delete(m.email, prev.Email)
	} else {
		m.userOrder = append(m.userOrder, u.ID)
	}
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[email]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// ListUsers returns users in insertion order.
func (m *MemoryStore) ListUsers() ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.User, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		if u, ok := m.users[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

// DeleteUser removes the user and the bookings they created.
func (m *MemoryStore) DeleteUser(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	delete(m.email, u.Email)
	m.userOrder = removeID(m.userOrder, id)
	for bid, b := range m.bookings {
		if b.UserID == id {
			delete(m.bookings, bid)
			m.bookingOrder = removeID(m.bookingOrder, bid)
		}
	}
	return nil
}

// SaveRoom stores or replaces a room record.
func (m *MemoryStore) SaveRoom(r domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[r.ID]; !ok {
		m.roomOrder = append(m.roomOrder, r.ID)
	}
	m.rooms[r.ID] = r
	return nil
}

// GetRoom retrieves a room.
func (m *MemoryStore) GetRoom(id string) (domain.Room, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok, nil
}

// ListRooms returns rooms in insertion order.
func (m *MemoryStore) ListRooms() ([]domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Room, 0, len(m.roomOrder))
	for _, id := range m.roomOrder {
		if r, ok := m.rooms[id]; ok {
			res = append(res, r)
		}
	}
	return res, nil
}

// ListRoomTypes returns the distinct room types, sorted.
func (m *MemoryStore) ListRoomTypes() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{})
	var types []string
	for _, r := range m.rooms {
		if _, ok := seen[r.RoomType]; ok {
			continue
		}
		seen[r.RoomType] = struct{}{}
		types = append(types, r.RoomType)
	}
	sort.Strings(types)
	return types, nil
}

// DeleteRoom removes the room and cascades to its bookings.
func (m *MemoryStore) DeleteRoom(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return ErrNotFound
	}
	delete(m.rooms, id)
	m.roomOrder = removeID(m.roomOrder, id)
	for bid, b := range m.bookings {
		if b.RoomID == id {
			delete(m.bookings, bid)
			m.bookingOrder = removeID(m.bookingOrder, bid)
		}
	}
	return nil
}

// ListAvailableRooms applies the half-open overlap rule in process.
func (m *MemoryStore) ListAvailableRooms(checkIn, checkOut domain.Date, roomType string) ([]domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Room, 0)
	for _, id := range m.roomOrder {
		r, ok := m.rooms[id]
		if !ok || r.RoomType != roomType {
			continue
		}
		if m.roomHasOverlapLocked(id, checkIn, checkOut) {
			continue
		}
		res = append(res, r)
	}
	return res, nil
}

func (m *MemoryStore) roomHasOverlapLocked(roomID string, checkIn, checkOut domain.Date) bool {
	for _, b := range m.bookings {
		if b.RoomID != roomID {
			continue
		}
		// booking [a,b) overlaps query [c,d) iff a < d && c < b
		if b.CheckInDate.Before(checkOut) && checkIn.Before(b.CheckOutDate) {
			return true
		}
	}
	return false
}

// CreateBooking verifies references and inserts the booking.
func (m *MemoryStore) CreateBooking(b domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[b.RoomID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.users[b.UserID]; !ok {
		return ErrNotFound
	}
	for _, existing := range m.bookings {
		if existing.ConfirmationCode == b.ConfirmationCode {
			return ErrDuplicateKey
		}
	}
	m.bookings[b.ID] = b
	m.bookingOrder = append(m.bookingOrder, b.ID)
	return nil
}

// GetBookingByCode looks up a booking by confirmation code.
func (m *MemoryStore) GetBookingByCode(code string) (domain.Booking, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.ConfirmationCode == code {
			return b, true, nil
		}
	}
	return domain.Booking{}, false, nil
}

// ListBookings returns bookings in insertion order.
func (m *MemoryStore) ListBookings() ([]domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Booking, 0, len(m.bookingOrder))
	for _, id := range m.bookingOrder {
		if b, ok := m.bookings[id]; ok {
			res = append(res, b)
		}
	}
	return res, nil
}

// ListBookingsByUserEmail filters bookings by the linked creator's email.
func (m *MemoryStore) ListBookingsByUserEmail(email string) ([]domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userID, ok := m.email[email]
	if !ok {
		return []domain.Booking{}, nil
	}
	res := make([]domain.Booking, 0)
	for _, id := range m.bookingOrder {
		if b, ok := m.bookings[id]; ok && b.UserID == userID {
			res = append(res, b)
		}
	}
	return res, nil
}

// DeleteBooking hard-deletes a booking.
func (m *MemoryStore) DeleteBooking(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(m.bookings, id)
	m.bookingOrder = removeID(m.bookingOrder, id)
	return nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
