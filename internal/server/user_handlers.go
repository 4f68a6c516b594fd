package server

import (
	"net/http"
	"strings"

	"hotelhub/pkg/domain"
)

func (s *Server) handleAllUsers(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	users, err := s.app.ListUsers()
	if err != nil {
		writeAppError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": users,
		"count": len(users),
	})
}

// /api/users/{email} (GET, self-or-admin) and /api/users/{id} (DELETE, admin).
// The legacy surface reports missing users as bad requests on both.
func (s *Server) handleUserByPath(w http.ResponseWriter, r *http.Request, user domain.User) {
	target := strings.TrimPrefix(r.URL.Path, "/api/users/")
	if target == "" || strings.Contains(target, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		if !selfOrAdmin(user, target) {
			s.audit(r, "user.get", "fail", "user_id", user.ID, "reason", "forbidden")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		found, err := s.app.GetUserByEmail(target)
		if err != nil {
			writeAppError(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, found)
	case http.MethodDelete:
		if user.Role != domain.RoleAdmin {
			s.audit(r, "user.delete", "fail", "user_id", user.ID, "reason", "forbidden")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		if err := s.app.DeleteUser(target); err != nil {
			writeAppError(w, err, http.StatusBadRequest)
			return
		}
		s.audit(r, "user.delete", "success", "user_id", user.ID, "target_id", target)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}
