package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"hotelhub/internal/store"
	"hotelhub/internal/util"
	"hotelhub/pkg/domain"
)

// RoomPhoto carries an optional uploaded photo.
type RoomPhoto struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Ext         string
}

// AddRoom creates a room, storing the photo when present.
func (a *App) AddRoom(ctx context.Context, photo *RoomPhoto, roomType string, price float64, description string) (domain.RoomView, error) {
	roomType = strings.TrimSpace(roomType)
	description = strings.TrimSpace(description)
	if roomType == "" {
		return domain.RoomView{}, validationf("room type is required")
	}
	if price < 0 {
		return domain.RoomView{}, validationf("room price must be non-negative")
	}
	if description == "" {
		return domain.RoomView{}, validationf("room description is required")
	}
	room := domain.Room{
		ID:              util.NewID(),
		RoomType:        roomType,
		RoomPrice:       price,
		RoomDescription: description,
		CreatedAt:       a.now().UTC(),
	}
	if photo != nil {
		key := room.ID + photo.Ext
		if err := a.photos.Put(ctx, key, photo.Reader, photo.Size, photo.ContentType); err != nil {
			return domain.RoomView{}, fmt.Errorf("store photo: %w", err)
		}
		room.PhotoKey = key
	}
	if err := a.store.SaveRoom(room); err != nil {
		return domain.RoomView{}, fmt.Errorf("save room: %w", err)
	}
	return a.roomView(ctx, room), nil
}

// GetRoomTypes returns the distinct room types in the catalog.
func (a *App) GetRoomTypes() ([]string, error) {
	return a.store.ListRoomTypes()
}

// GetAllRooms returns all rooms.
func (a *App) GetAllRooms(ctx context.Context) ([]domain.RoomView, error) {
	rooms, err := a.store.ListRooms()
	if err != nil {
		return nil, err
	}
	return a.roomViews(ctx, rooms), nil
}

// GetRoomByID returns one room.
func (a *App) GetRoomByID(ctx context.Context, id string) (domain.RoomView, error) {
	room, ok, err := a.store.GetRoom(id)
	if err != nil {
		return domain.RoomView{}, fmt.Errorf("fetch room: %w", err)
	}
	if !ok {
		return domain.RoomView{}, ErrRoomNotFound
	}
	return a.roomView(ctx, room), nil
}

// UpdateRoom applies a partial update: only non-nil fields overwrite.
func (a *App) UpdateRoom(ctx context.Context, id string, roomType *string, price *float64, description *string, photo *RoomPhoto) (domain.RoomView, error) {
	room, ok, err := a.store.GetRoom(id)
	if err != nil {
		return domain.RoomView{}, fmt.Errorf("fetch room: %w", err)
	}
	if !ok {
		return domain.RoomView{}, ErrRoomNotFound
	}
	if roomType != nil {
		if strings.TrimSpace(*roomType) == "" {
			return domain.RoomView{}, validationf("room type must not be blank")
		}
		room.RoomType = strings.TrimSpace(*roomType)
	}
	if price != nil {
		if *price < 0 {
			return domain.RoomView{}, validationf("room price must be non-negative")
		}
		room.RoomPrice = *price
	}
	if description != nil {
		room.RoomDescription = strings.TrimSpace(*description)
	}
	if photo != nil {
		key := room.ID + photo.Ext
		if err := a.photos.Put(ctx, key, photo.Reader, photo.Size, photo.ContentType); err != nil {
			return domain.RoomView{}, fmt.Errorf("store photo: %w", err)
		}
		room.PhotoKey = key
	}
	if err := a.store.SaveRoom(room); err != nil {
		return domain.RoomView{}, fmt.Errorf("save room: %w", err)
	}
	return a.roomView(ctx, room), nil
}

// DeleteRoom removes a room and all bookings referencing it. Deleting a room
// silently destroys its booking history.
func (a *App) DeleteRoom(ctx context.Context, id string) error {
	room, ok, err := a.store.GetRoom(id)
	if err != nil {
		return fmt.Errorf("fetch room: %w", err)
	}
	if !ok {
		return ErrRoomNotFound
	}
	if err := a.store.DeleteRoom(id); err != nil {
		if err == store.ErrNotFound {
			return ErrRoomNotFound
		}
		return fmt.Errorf("delete room: %w", err)
	}
	if room.PhotoKey != "" {
		if err := a.photos.Delete(ctx, room.PhotoKey); err != nil {
			slog.Warn("failed to delete room photo", "room_id", id, "key", room.PhotoKey, "err", err)
		}
	}
	return nil
}

// GetAvailableRooms returns rooms of the given type with no booking whose
// date range overlaps [checkIn, checkOut). The result is advisory: nothing
// stops a conflicting booking from being created between query and booking.
func (a *App) GetAvailableRooms(ctx context.Context, checkIn, checkOut domain.Date, roomType string) ([]domain.RoomView, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return nil, validationf("check-in and check-out dates are required")
	}
	if !checkOut.After(checkIn) {
		return nil, validationf("check-out date must be after check-in date")
	}
	roomType = strings.TrimSpace(roomType)
	if roomType == "" {
		return nil, validationf("room type is required")
	}
	rooms, err := a.store.ListAvailableRooms(checkIn, checkOut, roomType)
	if err != nil {
		return nil, err
	}
	return a.roomViews(ctx, rooms), nil
}

func (a *App) roomViews(ctx context.Context, rooms []domain.Room) []domain.RoomView {
	views := make([]domain.RoomView, 0, len(rooms))
	for _, room := range rooms {
		views = append(views, a.roomView(ctx, room))
	}
	return views
}

func (a *App) roomView(ctx context.Context, room domain.Room) domain.RoomView {
	view := domain.RoomView{
		ID:              room.ID,
		RoomType:        room.RoomType,
		RoomPrice:       room.RoomPrice,
		RoomDescription: room.RoomDescription,
	}
	if room.PhotoKey != "" {
		resolveCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		url, err := a.photos.URL(resolveCtx, room.PhotoKey)
		if err != nil {
			slog.Warn("failed to resolve photo url", "room_id", room.ID, "key", room.PhotoKey, "err", err)
		} else {
			view.RoomPhotoURL = url
		}
	}
	return view
}
