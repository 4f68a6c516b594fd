package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"hotelhub/internal/app"
	"hotelhub/pkg/domain"
)

// /api/bookings/room/{roomId}
func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	roomID := strings.TrimPrefix(r.URL.Path, "/api/bookings/room/")
	if roomID == "" || strings.Contains(roomID, "/") {
		http.NotFound(w, r)
		return
	}
	var req app.BookingRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	code, err := s.app.CreateBooking(roomID, req, user.Email)
	if err != nil {
		s.audit(r, "booking.create", "fail", "user_id", user.ID, "reason", err.Error())
		// The legacy surface reports a missing room as a bad request here.
		writeAppError(w, err, http.StatusBadRequest)
		return
	}
	s.audit(r, "booking.create", "success", "user_id", user.ID, "room_id", roomID)
	writeJSON(w, http.StatusCreated, map[string]string{"bookingConfirmationCode": code})
}

// /api/bookings/confirmation/{code}
func (s *Server) handleBookingByCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	code := strings.TrimPrefix(r.URL.Path, "/api/bookings/confirmation/")
	if code == "" || strings.Contains(code, "/") {
		http.NotFound(w, r)
		return
	}
	view, err := s.app.FindByConfirmationCode(code)
	if err != nil {
		writeAppError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAllBookings(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	bookings, err := s.app.ListAllBookings()
	if err != nil {
		writeAppError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": bookings,
		"count": len(bookings),
	})
}

// /api/bookings/user/{email}
func (s *Server) handleBookingsByEmail(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	email := strings.TrimPrefix(r.URL.Path, "/api/bookings/user/")
	if email == "" || strings.Contains(email, "/") {
		http.NotFound(w, r)
		return
	}
	if !selfOrAdmin(user, email) {
		s.audit(r, "booking.list_by_email", "fail", "user_id", user.ID, "reason", "forbidden")
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	bookings, err := s.app.ListBookingsByEmail(email)
	if err != nil {
		writeAppError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": bookings,
		"count": len(bookings),
	})
}

// /api/bookings/{id}
func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/bookings/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if err := s.app.CancelBooking(id); err != nil {
		writeAppError(w, err, http.StatusNotFound)
		return
	}
	s.audit(r, "booking.cancel", "success", "user_id", user.ID, "booking_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
