package server

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"hotelhub/internal/app"
	"hotelhub/pkg/domain"
)

func (s *Server) handleAddRoom(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	form, photo, ok := s.parseRoomForm(w, r)
	if !ok {
		return
	}
	if form.price == nil {
		writeError(w, http.StatusBadRequest, "roomPrice is required")
		return
	}
	view, err := s.app.AddRoom(r.Context(), photo, form.roomType, *form.price, form.description)
	if err != nil {
		writeAppError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleRoomTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	types, err := s.app.GetRoomTypes()
	if err != nil {
		writeAppError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": types,
		"count": len(types),
	})
}

func (s *Server) handleAllRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rooms, err := s.app.GetAllRooms(r.Context())
	if err != nil {
		writeAppError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": rooms,
		"count": len(rooms),
	})
}

func (s *Server) handleAvailableRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	checkIn, err := domain.ParseDate(q.Get("checkInDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid checkInDate (want YYYY-MM-DD)")
		return
	}
	checkOut, err := domain.ParseDate(q.Get("checkOutDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid checkOutDate (want YYYY-MM-DD)")
		return
	}
	rooms, err := s.app.GetAvailableRooms(r.Context(), checkIn, checkOut, q.Get("roomType"))
	if err != nil {
		writeAppError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": rooms,
		"count": len(rooms),
	})
}

// /api/rooms/{id}
func (s *Server) handleRoomByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/rooms/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	view, err := s.app.GetRoomByID(r.Context(), id)
	if err != nil {
		writeAppError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// /api/rooms/delete/{id}
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/rooms/delete/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if err := s.app.DeleteRoom(r.Context(), id); err != nil {
		writeAppError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// /api/rooms/update/{id}
func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/rooms/update/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	form, photo, ok := s.parseRoomForm(w, r)
	if !ok {
		return
	}
	view, err := s.app.UpdateRoom(r.Context(), id, form.roomTypePtr, form.price, form.descriptionPtr, photo)
	if err != nil {
		writeAppError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type roomForm struct {
	roomType       string
	roomTypePtr    *string
	price          *float64
	description    string
	descriptionPtr *string
}

// parseRoomForm reads the multipart room form. Absent fields stay nil so
// updates can be partial. The photo field is optional; when present its
// extension must be on the allow-list.
func (s *Server) parseRoomForm(w http.ResponseWriter, r *http.Request) (roomForm, *app.RoomPhoto, bool) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return roomForm{}, nil, false
	}
	var form roomForm
	if values, ok := r.MultipartForm.Value["roomType"]; ok && len(values) > 0 {
		form.roomType = values[0]
		form.roomTypePtr = &values[0]
	}
	if values, ok := r.MultipartForm.Value["roomDescription"]; ok && len(values) > 0 {
		form.description = values[0]
		form.descriptionPtr = &values[0]
	}
	if values, ok := r.MultipartForm.Value["roomPrice"]; ok && len(values) > 0 {
		price, err := strconv.ParseFloat(strings.TrimSpace(values[0]), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid roomPrice")
			return roomForm{}, nil, false
		}
		form.price = &price
	}

	file, header, err := r.FormFile("photo")
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return form, nil, true
	}
	if err != nil {
		return form, nil, true
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, allowed := s.allowedExtensions[ext]; !allowed {
		file.Close()
		writeError(w, http.StatusBadRequest, "unsupported photo type")
		return roomForm{}, nil, false
	}
	photo := &app.RoomPhoto{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Ext:         ext,
	}
	return form, photo, true
}
