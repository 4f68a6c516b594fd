package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Room struct {
	ID              string    `json:"id"`
	RoomType        string    `json:"roomType"`
	RoomPrice       float64   `json:"roomPrice"`
	RoomDescription string    `json:"roomDescription"`
	PhotoKey        string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
}

type Booking struct {
	ID               string    `json:"id"`
	CheckInDate      Date      `json:"checkInDate"`
	CheckOutDate     Date      `json:"checkOutDate"`
	GuestFullName    string    `json:"guestFullName"`
	GuestEmail       string    `json:"guestEmail"`
	NumOfAdults      int       `json:"numOfAdults"`
	NumOfChildren    int       `json:"numOfChildren"`
	TotalNumOfGuests int       `json:"totalNumOfGuests"`
	ConfirmationCode string    `json:"bookingConfirmationCode"`
	RoomID           string    `json:"roomId"`
	UserID           string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}

// RoomView is the client-facing room projection with the photo resolved to a URL.
type RoomView struct {
	ID              string  `json:"id"`
	RoomType        string  `json:"roomType"`
	RoomPrice       float64 `json:"roomPrice"`
	RoomDescription string  `json:"roomDescription"`
	RoomPhotoURL    string  `json:"roomPhotoUrl,omitempty"`
}

// RoomSummary is the minimal room projection embedded in booking views.
// The photo is omitted to keep list responses small.
type RoomSummary struct {
	ID              string  `json:"id"`
	RoomType        string  `json:"roomType"`
	RoomPrice       float64 `json:"roomPrice"`
	RoomDescription string  `json:"roomDescription"`
}

// BookingView flattens a booking with its embedded room summary.
type BookingView struct {
	ID               string      `json:"id"`
	CheckInDate      Date        `json:"checkInDate"`
	CheckOutDate     Date        `json:"checkOutDate"`
	GuestFullName    string      `json:"guestFullName"`
	GuestEmail       string      `json:"guestEmail"`
	NumOfAdults      int         `json:"numOfAdults"`
	NumOfChildren    int         `json:"numOfChildren"`
	TotalNumOfGuests int         `json:"totalNumOfGuests"`
	ConfirmationCode string      `json:"bookingConfirmationCode"`
	Room             RoomSummary `json:"room"`
}
