package store

import (
	"time"

	"gorm.io/datatypes"

	"hotelhub/pkg/domain"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	FirstName    string    `gorm:"not null"`
	LastName     string    `gorm:"not null"`
	Role         string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

type RoomModel struct {
	ID              string  `gorm:"primaryKey"`
	RoomType        string  `gorm:"not null;index"`
	RoomPrice       float64 `gorm:"not null"`
	RoomDescription string  `gorm:"not null"`
	PhotoKey        string
	CreatedAt       time.Time `gorm:"not null"`
}

func (RoomModel) TableName() string { return "rooms" }

type BookingModel struct {
	ID               string         `gorm:"primaryKey"`
	CheckInDate      datatypes.Date `gorm:"not null"`
	CheckOutDate     datatypes.Date `gorm:"not null"`
	GuestFullName    string         `gorm:"not null"`
	GuestEmail       string         `gorm:"not null"`
	NumOfAdults      int            `gorm:"not null"`
	NumOfChildren    int            `gorm:"not null"`
	TotalNumOfGuests int            `gorm:"not null"`
	ConfirmationCode string         `gorm:"uniqueIndex;not null"`
	RoomID           string         `gorm:"not null;index"`
	UserID           string         `gorm:"not null;index"`
	CreatedAt        time.Time      `gorm:"not null"`
}

func (BookingModel) TableName() string { return "bookings" }

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Role:         domain.UserRole(m.Role),
		CreatedAt:    m.CreatedAt,
	}
}

func roomToModel(r domain.Room) RoomModel {
	return RoomModel{
		ID:              r.ID,
		RoomType:        r.RoomType,
		RoomPrice:       r.RoomPrice,
		RoomDescription: r.RoomDescription,
		PhotoKey:        r.PhotoKey,
		CreatedAt:       r.CreatedAt,
	}
}

func roomFromModel(m RoomModel) domain.Room {
	return domain.Room{
		ID:              m.ID,
		RoomType:        m.RoomType,
		RoomPrice:       m.RoomPrice,
		RoomDescription: m.RoomDescription,
		PhotoKey:        m.PhotoKey,
		CreatedAt:       m.CreatedAt,
	}
}

func bookingToModel(b domain.Booking) BookingModel {
	return BookingModel{
		ID:               b.ID,
		CheckInDate:      datatypes.Date(b.CheckInDate.Time()),
		CheckOutDate:     datatypes.Date(b.CheckOutDate.Time()),
		GuestFullName:    b.GuestFullName,
		GuestEmail:       b.GuestEmail,
		NumOfAdults:      b.NumOfAdults,
		NumOfChildren:    b.NumOfChildren,
		TotalNumOfGuests: b.TotalNumOfGuests,
		ConfirmationCode: b.ConfirmationCode,
		RoomID:           b.RoomID,
		UserID:           b.UserID,
		CreatedAt:        b.CreatedAt,
	}
}

func bookingFromModel(m BookingModel) domain.Booking {
	return domain.Booking{
		ID:               m.ID,
		CheckInDate:      domain.DateOf(time.Time(m.CheckInDate)),
		CheckOutDate:     domain.DateOf(time.Time(m.CheckOutDate)),
		GuestFullName:    m.GuestFullName,
		GuestEmail:       m.GuestEmail,
		NumOfAdults:      m.NumOfAdults,
		NumOfChildren:    m.NumOfChildren,
		TotalNumOfGuests: m.TotalNumOfGuests,
		ConfirmationCode: m.ConfirmationCode,
		RoomID:           m.RoomID,
		UserID:           m.UserID,
		CreatedAt:        m.CreatedAt,
	}
}
