package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotelhub/internal/app"
	"hotelhub/internal/storage"
	"hotelhub/internal/store"
)

var testNow = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *app.App) {
	t.Helper()
	photos, err := storage.NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}
	appCore, err := app.New(app.Config{
		Store:    store.NewMemoryStore(),
		Sessions: store.NewJWTSessionStore("test-secret", time.Hour),
		Photos:   photos,
		Now:      func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	if err := appCore.EnsureAdmin("admin@example.com", "admin-pw"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	srv, err := New(Config{App: appCore})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, appCore
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	payload := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func loginAs(t *testing.T, ts *httptest.Server, email, password string) string {
	t.Helper()
	resp, payload := doJSON(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d (%v)", email, resp.StatusCode, payload)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in %v", email, payload)
	}
	return token
}

func registerUser(t *testing.T, ts *httptest.Server, email string) {
	t.Helper()
	resp, payload := doJSON(t, ts, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     email,
		"password":  "user-pw",
		"firstName": "Test",
		"lastName":  "User",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d (%v)", email, resp.StatusCode, payload)
	}
}

func addRoomMultipart(t *testing.T, ts *httptest.Server, token, roomType, price, description string, photo []byte) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("roomType", roomType)
	_ = mw.WriteField("roomPrice", price)
	_ = mw.WriteField("roomDescription", description)
	if photo != nil {
		part, err := mw.CreateFormFile("photo", "room.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(photo); err != nil {
			t.Fatalf("write photo: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/rooms/add", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("add room: %v", err)
	}
	defer resp.Body.Close()
	payload := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, payload := doJSON(t, ts, http.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != http.StatusOK || payload["status"] != "ok" {
		t.Errorf("healthz: %d %v", resp.StatusCode, payload)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts, _ := newTestServer(t)
	registerUser(t, ts, "guest@example.com")
	resp, _ := doJSON(t, ts, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     "guest@example.com",
		"password":  "other",
		"firstName": "T",
		"lastName":  "U",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate register: status %d, want 400", resp.StatusCode)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	ts, _ := newTestServer(t)
	registerUser(t, ts, "guest@example.com")
	resp, _ := doJSON(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "guest@example.com",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login: status %d, want 401", resp.StatusCode)
	}
}

func TestBookingFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := loginAs(t, ts, "admin@example.com", "admin-pw")
	registerUser(t, ts, "guest@example.com")
	guest := loginAs(t, ts, "guest@example.com", "user-pw")

	resp, room := addRoomMultipart(t, ts, admin, "DELUXE", "150", "sea view", []byte("jpegdata"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add room: status %d (%v)", resp.StatusCode, room)
	}
	roomID, _ := room["id"].(string)
	if roomID == "" {
		t.Fatalf("no room id in %v", room)
	}
	if url, _ := room["roomPhotoUrl"].(string); url != "/photos/"+roomID+".jpg" {
		t.Errorf("roomPhotoUrl = %q", url)
	}

	checkIn := testNow.AddDate(0, 0, 7).Format("2006-01-02")
	checkOut := testNow.AddDate(0, 0, 9).Format("2006-01-02")

	// room should show as available before booking
	resp, avail := doJSON(t, ts, http.MethodGet,
		fmt.Sprintf("/api/rooms/available?checkInDate=%s&checkOutDate=%s&roomType=DELUXE", checkIn, checkOut), "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("available: status %d", resp.StatusCode)
	}
	if count, _ := avail["count"].(float64); count != 1 {
		t.Errorf("available count = %v, want 1", avail["count"])
	}

	resp, created := doJSON(t, ts, http.MethodPost, "/api/bookings/room/"+roomID, guest, map[string]any{
		"checkInDate":   checkIn,
		"checkOutDate":  checkOut,
		"guestFullName": "Grace Hopper",
		"guestEmail":    "grace@example.com",
		"numOfAdults":   2,
		"numOfChildren": 0,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create booking: status %d (%v)", resp.StatusCode, created)
	}
	code, _ := created["bookingConfirmationCode"].(string)
	if code == "" {
		t.Fatalf("no confirmation code in %v", created)
	}

	// overlapping range now excludes the room
	resp, avail = doJSON(t, ts, http.MethodGet,
		fmt.Sprintf("/api/rooms/available?checkInDate=%s&checkOutDate=%s&roomType=DELUXE", checkIn, checkOut), "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("available after booking: status %d", resp.StatusCode)
	}
	if count, _ := avail["count"].(float64); count != 0 {
		t.Errorf("available count after booking = %v, want 0", avail["count"])
	}

	// public confirmation lookup
	resp, view := doJSON(t, ts, http.MethodGet, "/api/bookings/confirmation/"+code, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirmation lookup: status %d", resp.StatusCode)
	}
	bookingID, _ := view["id"].(string)
	if bookingID == "" {
		t.Fatalf("no booking id in %v", view)
	}
	roomSummary, _ := view["room"].(map[string]any)
	if roomSummary["id"] != roomID {
		t.Errorf("room summary = %v", roomSummary)
	}

	// guest sees their own bookings; admin can see them too
	resp, mine := doJSON(t, ts, http.MethodGet, "/api/bookings/user/guest@example.com", guest, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("own bookings: status %d", resp.StatusCode)
	}
	if count, _ := mine["count"].(float64); count != 1 {
		t.Errorf("own bookings count = %v, want 1", mine["count"])
	}
	resp, _ = doJSON(t, ts, http.MethodGet, "/api/bookings/user/guest@example.com", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin view of user bookings: status %d", resp.StatusCode)
	}

	// admin cancels, lookup then 404s
	resp, _ = doJSON(t, ts, http.MethodDelete, "/api/bookings/"+bookingID, admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, ts, http.MethodGet, "/api/bookings/confirmation/"+code, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("confirmation after cancel: status %d, want 404", resp.StatusCode)
	}
}

func TestCreateBookingUnknownRoomIsBadRequest(t *testing.T) {
	ts, _ := newTestServer(t)
	registerUser(t, ts, "guest@example.com")
	guest := loginAs(t, ts, "guest@example.com", "user-pw")

	checkIn := testNow.AddDate(0, 0, 7).Format("2006-01-02")
	checkOut := testNow.AddDate(0, 0, 9).Format("2006-01-02")
	resp, _ := doJSON(t, ts, http.MethodPost, "/api/bookings/room/no-such-room", guest, map[string]any{
		"checkInDate":   checkIn,
		"checkOutDate":  checkOut,
		"guestFullName": "Grace Hopper",
		"guestEmail":    "grace@example.com",
		"numOfAdults":   1,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown room: status %d, want 400", resp.StatusCode)
	}
}

func TestRoomMutationsRequireAdmin(t *testing.T) {
	ts, _ := newTestServer(t)
	registerUser(t, ts, "guest@example.com")
	guest := loginAs(t, ts, "guest@example.com", "user-pw")

	resp, _ := addRoomMultipart(t, ts, "", "DELUXE", "150", "sea view", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous add room: status %d, want 401", resp.StatusCode)
	}
	resp, _ = addRoomMultipart(t, ts, guest, "DELUXE", "150", "sea view", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("user add room: status %d, want 403", resp.StatusCode)
	}
	resp, _ = doJSON(t, ts, http.MethodDelete, "/api/rooms/delete/some-room", guest, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("user delete room: status %d, want 403", resp.StatusCode)
	}
}

func TestRoomUpdateAndDelete(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := loginAs(t, ts, "admin@example.com", "admin-pw")

	resp, room := addRoomMultipart(t, ts, admin, "DELUXE", "150", "sea view", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add room: status %d", resp.StatusCode)
	}
	roomID := room["id"].(string)

	// partial update via PUT multipart: only the price changes
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("roomPrice", "199.5")
	_ = mw.Close()
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/rooms/update/"+roomID, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+admin)
	httpResp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("update room: %v", err)
	}
	updated := map[string]any{}
	_ = json.NewDecoder(httpResp.Body).Decode(&updated)
	httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		t.Fatalf("update room: status %d (%v)", httpResp.StatusCode, updated)
	}
	if updated["roomPrice"].(float64) != 199.5 || updated["roomType"] != "DELUXE" {
		t.Errorf("updated room = %v", updated)
	}

	resp, _ = doJSON(t, ts, http.MethodDelete, "/api/rooms/delete/"+roomID, admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete room: status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, ts, http.MethodGet, "/api/rooms/"+roomID, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("room after delete: status %d, want 404", resp.StatusCode)
	}
}

func TestAddRoomRejectsBadPhotoExtension(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := loginAs(t, ts, "admin@example.com", "admin-pw")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("roomType", "DELUXE")
	_ = mw.WriteField("roomPrice", "100")
	_ = mw.WriteField("roomDescription", "desc")
	part, _ := mw.CreateFormFile("photo", "evil.exe")
	_, _ = part.Write([]byte("mz"))
	_ = mw.Close()
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/rooms/add", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("add room: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad extension: status %d, want 400", resp.StatusCode)
	}
}

func TestAvailableRoomsBadDates(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, _ := doJSON(t, ts, http.MethodGet, "/api/rooms/available?checkInDate=junk&checkOutDate=2026-06-10&roomType=DELUXE", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad date: status %d, want 400", resp.StatusCode)
	}
}

func TestUserEndpoints(t *testing.T) {
	ts, appCore := newTestServer(t)
	admin := loginAs(t, ts, "admin@example.com", "admin-pw")
	registerUser(t, ts, "guest@example.com")
	registerUser(t, ts, "other@example.com")
	guest := loginAs(t, ts, "guest@example.com", "user-pw")

	resp, users := doJSON(t, ts, http.MethodGet, "/api/users/all", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("users/all: status %d", resp.StatusCode)
	}
	if count, _ := users["count"].(float64); count != 3 {
		t.Errorf("users count = %v, want 3", users["count"])
	}
	resp, _ = doJSON(t, ts, http.MethodGet, "/api/users/all", guest, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("user on users/all: status %d, want 403", resp.StatusCode)
	}

	// self lookup ok, peeking at another account forbidden
	resp, self := doJSON(t, ts, http.MethodGet, "/api/users/guest@example.com", guest, nil)
	if resp.StatusCode != http.StatusOK || self["email"] != "guest@example.com" {
		t.Errorf("self lookup: status %d, payload %v", resp.StatusCode, self)
	}
	resp, _ = doJSON(t, ts, http.MethodGet, "/api/users/other@example.com", guest, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("peek other user: status %d, want 403", resp.StatusCode)
	}
	resp, _ = doJSON(t, ts, http.MethodGet, "/api/users/other@example.com", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin lookup: status %d, want 200", resp.StatusCode)
	}
	resp, _ = doJSON(t, ts, http.MethodGet, "/api/users/nobody@example.com", admin, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown user lookup: status %d, want 400", resp.StatusCode)
	}

	// delete requires admin and takes the user ID
	target, err := appCore.GetUserByEmail("other@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	resp, _ = doJSON(t, ts, http.MethodDelete, "/api/users/"+target.ID, guest, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("user delete user: status %d, want 403", resp.StatusCode)
	}
	resp, _ = doJSON(t, ts, http.MethodDelete, "/api/users/"+target.ID, admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin delete user: status %d, want 200", resp.StatusCode)
	}
	resp, _ = doJSON(t, ts, http.MethodDelete, "/api/users/"+target.ID, admin, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("delete missing user: status %d, want 400", resp.StatusCode)
	}
}

func TestBookingsAllRequiresAdmin(t *testing.T) {
	ts, _ := newTestServer(t)
	registerUser(t, ts, "guest@example.com")
	guest := loginAs(t, ts, "guest@example.com", "user-pw")

	resp, _ := doJSON(t, ts, http.MethodGet, "/api/bookings/all", guest, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("user on bookings/all: status %d, want 403", resp.StatusCode)
	}
	admin := loginAs(t, ts, "admin@example.com", "admin-pw")
	resp, _ = doJSON(t, ts, http.MethodGet, "/api/bookings/all", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin on bookings/all: status %d, want 200", resp.StatusCode)
	}
}

func TestBookingsByOtherEmailForbidden(t *testing.T) {
	ts, _ := newTestServer(t)
	registerUser(t, ts, "guest@example.com")
	guest := loginAs(t, ts, "guest@example.com", "user-pw")

	resp, _ := doJSON(t, ts, http.MethodGet, "/api/bookings/user/admin@example.com", guest, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("peek other bookings: status %d, want 403", resp.StatusCode)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	ts, _ := newTestServer(t)
	for _, header := range []string{"", "Bearer ", "Bearer garbage", "Basic abc"} {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/bookings/user/guest@example.com", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := ts.Client().Do(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("header %q: status %d, want 401", header, resp.StatusCode)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, _ := doJSON(t, ts, http.MethodGet, "/api/auth/register", "", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET register: status %d, want 405", resp.StatusCode)
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := ts.Client().Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id header")
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
}
