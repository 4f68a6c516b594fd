package store

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelhub/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &RoomModel{}, &BookingModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "password_hash", "first_name", "last_name", "role"}),
	}).Create(&model).Error
	return translateErr(err)
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// ListUsers returns all users ordered by created_at.
func (s *GormStore) ListUsers() ([]domain.User, error) {
	var models []UserModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.User, 0, len(models))
	for _, m := range models {
		res = append(res, userFromModel(m))
	}
	return res, nil
}

// DeleteUser removes the user and the bookings they created.
func (s *GormStore) DeleteUser(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var model UserModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&BookingModel{}, "user_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&UserModel{}, "id = ?", id).Error
	})
}

// SaveRoom stores or updates a room.
func (s *GormStore) SaveRoom(r domain.Room) error {
	model := roomToModel(r)
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"room_type", "room_price", "room_description", "photo_key"}),
	}).Create(&model).Error
	return translateErr(err)
}

// GetRoom retrieves a room.
func (s *GormStore) GetRoom(id string) (domain.Room, bool, error) {
	var model RoomModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Room{}, false, nil
		}
		return domain.Room{}, false, err
	}
	return roomFromModel(model), true, nil
}

// ListRooms returns all rooms ordered by created_at.
func (s *GormStore) ListRooms() ([]domain.Room, error) {
	var models []RoomModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Room, 0, len(models))
	for _, m := range models {
		res = append(res, roomFromModel(m))
	}
	return res, nil
}

// ListRoomTypes returns the distinct room types in the catalog.
func (s *GormStore) ListRoomTypes() ([]string, error) {
	var types []string
	if err := s.db.Model(&RoomModel{}).Distinct("room_type").Order("room_type ASC").Pluck("room_type", &types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// DeleteRoom removes the room and cascades to its bookings.
func (s *GormStore) DeleteRoom(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var model RoomModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&BookingModel{}, "room_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&RoomModel{}, "id = ?", id).Error
	})
}

// ListAvailableRooms returns rooms of the type with no overlapping booking.
// Overlap is the half-open rule: booking [a,b) conflicts with [c,d) iff a < d && c < b.
func (s *GormStore) ListAvailableRooms(checkIn, checkOut domain.Date, roomType string) ([]domain.Room, error) {
	sub := s.db.Model(&BookingModel{}).
		Select("room_id").
		Where("check_in_date < ? AND check_out_date > ?", checkOut.Time(), checkIn.Time())
	var models []RoomModel
	err := s.db.
		Where("room_type = ?", roomType).
		Where("id NOT IN (?)", sub).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.Room, 0, len(models))
	for _, m := range models {
		res = append(res, roomFromModel(m))
	}
	return res, nil
}

// CreateBooking re-verifies room and user inside the transaction and inserts.
func (s *GormStore) CreateBooking(b domain.Booking) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var room RoomModel
		if err := tx.First(&room, "id = ?", b.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var user UserModel
		if err := tx.First(&user, "id = ?", b.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		model := bookingToModel(b)
		return translateErr(tx.Create(&model).Error)
	})
}

// GetBookingByCode looks up a booking by confirmation code.
func (s *GormStore) GetBookingByCode(code string) (domain.Booking, bool, error) {
	var model BookingModel
	if err := s.db.Where("confirmation_code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Booking{}, false, nil
		}
		return domain.Booking{}, false, err
	}
	return bookingFromModel(model), true, nil
}

// ListBookings returns all bookings ordered by created_at.
func (s *GormStore) ListBookings() ([]domain.Booking, error) {
	return s.listBookings(nil)
}

// ListBookingsByUserEmail returns bookings whose creator has the given email.
func (s *GormStore) ListBookingsByUserEmail(email string) ([]domain.Booking, error) {
	sub := s.db.Model(&UserModel{}).Select("id").Where("email = ?", email)
	return s.listBookings(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("user_id IN (?)", sub)
	})
}

func (s *GormStore) listBookings(scope func(*gorm.DB) *gorm.DB) ([]domain.Booking, error) {
	tx := s.db.Order("created_at ASC")
	if scope != nil {
		tx = scope(tx)
	}
	var models []BookingModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		res = append(res, bookingFromModel(m))
	}
	return res, nil
}

// DeleteBooking hard-deletes a booking, failing when it does not exist.
func (s *GormStore) DeleteBooking(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var model BookingModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Delete(&BookingModel{}, "id = ?", id).Error
	})
}

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	return err
}
