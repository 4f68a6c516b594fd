package app

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"hotelhub/internal/store"
	"hotelhub/internal/util"
	"hotelhub/pkg/domain"
)

// BookingRequest carries client input for a new booking. The guest email may
// differ from the authenticated creator's email (on-behalf-of bookings).
type BookingRequest struct {
	CheckInDate   domain.Date `json:"checkInDate"`
	CheckOutDate  domain.Date `json:"checkOutDate"`
	GuestFullName string      `json:"guestFullName"`
	GuestEmail    string      `json:"guestEmail"`
	NumOfAdults   int         `json:"numOfAdults"`
	NumOfChildren int         `json:"numOfChildren"`
}

// createBookingAttempts bounds retries when a generated confirmation code
// collides with the store's unique index.
const createBookingAttempts = 3

// CreateBooking validates the request, persists the booking atomically, and
// returns its confirmation code. The acting user comes from the authenticated
// identity, never from the request body. No overlap check is performed against
// existing bookings; the availability query is the advisory path.
func (a *App) CreateBooking(roomID string, req BookingRequest, actingUserEmail string) (string, error) {
	if err := a.validateBookingRequest(req); err != nil {
		return "", err
	}

	room, ok, err := a.store.GetRoom(roomID)
	if err != nil {
		return "", fmt.Errorf("fetch room: %w", err)
	}
	if !ok {
		return "", ErrRoomNotFound
	}

	// An authenticated caller should always resolve; a miss here is an
	// internal consistency fault surfaced as NotFound.
	user, ok, err := a.store.GetUserByEmail(normalizeEmail(actingUserEmail))
	if err != nil {
		return "", fmt.Errorf("fetch acting user: %w", err)
	}
	if !ok {
		return "", ErrUserNotFound
	}

	booking := domain.Booking{
		ID:               util.NewID(),
		CheckInDate:      req.CheckInDate,
		CheckOutDate:     req.CheckOutDate,
		GuestFullName:    strings.TrimSpace(req.GuestFullName),
		GuestEmail:       normalizeEmail(req.GuestEmail),
		NumOfAdults:      req.NumOfAdults,
		NumOfChildren:    req.NumOfChildren,
		TotalNumOfGuests: req.NumOfAdults + req.NumOfChildren,
		RoomID:           room.ID,
		UserID:           user.ID,
		CreatedAt:        a.now().UTC(),
	}

	for attempt := 0; attempt < createBookingAttempts; attempt++ {
		booking.ConfirmationCode = uuid.NewString()
		err = a.store.CreateBooking(booking)
		switch err {
		case nil:
			return booking.ConfirmationCode, nil
		case store.ErrDuplicateKey:
			continue
		case store.ErrNotFound:
			return "", ErrRoomNotFound
		default:
			return "", fmt.Errorf("save booking: %w", err)
		}
	}
	return "", ErrConfirmationCodeConflict
}

// FindByConfirmationCode returns the booking view for an exact code match.
func (a *App) FindByConfirmationCode(code string) (domain.BookingView, error) {
	booking, ok, err := a.store.GetBookingByCode(strings.TrimSpace(code))
	if err != nil {
		return domain.BookingView{}, fmt.Errorf("fetch booking: %w", err)
	}
	if !ok {
		return domain.BookingView{}, ErrBookingNotFound
	}
	views, err := a.bookingViews([]domain.Booking{booking})
	if err != nil {
		return domain.BookingView{}, err
	}
	return views[0], nil
}

// ListAllBookings returns every booking (admin use only).
func (a *App) ListAllBookings() ([]domain.BookingView, error) {
	bookings, err := a.store.ListBookings()
	if err != nil {
		return nil, err
	}
	return a.bookingViews(bookings)
}

// ListBookingsByEmail returns bookings created by the user with that email.
func (a *App) ListBookingsByEmail(email string) ([]domain.BookingView, error) {
	bookings, err := a.store.ListBookingsByUserEmail(normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return a.bookingViews(bookings)
}

// CancelBooking hard-deletes a booking.
func (a *App) CancelBooking(id string) error {
	if err := a.store.DeleteBooking(id); err != nil {
		if err == store.ErrNotFound {
			return ErrBookingNotFound
		}
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

func (a *App) validateBookingRequest(req BookingRequest) error {
	if req.CheckInDate.IsZero() || req.CheckOutDate.IsZero() {
		return validationf("check-in and check-out dates are required")
	}
	today := domain.DateOf(a.now())
	if req.CheckInDate.Before(today) {
		return validationf("check-in date must be today or in the future")
	}
	if !req.CheckOutDate.After(today) {
		return validationf("check-out date must be in the future")
	}
	if !req.CheckOutDate.After(req.CheckInDate) {
		return validationf("check-out date must be after check-in date")
	}
	if strings.TrimSpace(req.GuestFullName) == "" {
		return validationf("guest full name is required")
	}
	guestEmail := normalizeEmail(req.GuestEmail)
	if guestEmail == "" {
		return validationf("guest email is required")
	}
	if !isValidEmail(guestEmail) {
		return validationf("invalid guest email format")
	}
	if req.NumOfAdults < 1 {
		return validationf("at least 1 adult is required")
	}
	if req.NumOfChildren < 0 {
		return validationf("number of children cannot be negative")
	}
	return nil
}

// bookingViews flattens bookings with their room summaries. Rooms are fetched
// once per distinct room id.
func (a *App) bookingViews(bookings []domain.Booking) ([]domain.BookingView, error) {
	roomByID := make(map[string]domain.Room)
	views := make([]domain.BookingView, 0, len(bookings))
	for _, b := range bookings {
		room, cached := roomByID[b.RoomID]
		if !cached {
			fetched, ok, err := a.store.GetRoom(b.RoomID)
			if err != nil {
				return nil, fmt.Errorf("fetch room for booking: %w", err)
			}
			if ok {
				room = fetched
			}
			roomByID[b.RoomID] = room
		}
		views = append(views, domain.BookingView{
			ID:               b.ID,
			CheckInDate:      b.CheckInDate,
			CheckOutDate:     b.CheckOutDate,
			GuestFullName:    b.GuestFullName,
			GuestEmail:       b.GuestEmail,
			NumOfAdults:      b.NumOfAdults,
			NumOfChildren:    b.NumOfChildren,
			TotalNumOfGuests: b.TotalNumOfGuests,
			ConfirmationCode: b.ConfirmationCode,
			Room: domain.RoomSummary{
				ID:              room.ID,
				RoomType:        room.RoomType,
				RoomPrice:       room.RoomPrice,
				RoomDescription: room.RoomDescription,
			},
		})
	}
	return views, nil
}
