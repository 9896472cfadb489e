package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lightgray/lightgray/internal/httputil"
	"github.com/lightgray/lightgray/internal/validate"
	"golang.org/x/crypto/bcrypt"
)

const uniqueViolation = "23505"

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(r.Context(),
		"SELECT id, name, email, username, role, created_at FROM users ORDER BY created_at, username",
	)
	if err != nil {
		slog.Error("auth: list users", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	defer rows.Close()

	users := make([]userResponse, 0)
	for rows.Next() {
		var u userResponse
		var createdAt time.Time
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &u.Role, &createdAt); err != nil {
			slog.Error("auth: scan user", "error", err)
			httputil.WriteError(w, http.StatusInternalServerError, "failed to list users")
			return
		}
		u.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		slog.Error("auth: iterate users", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	if req.Name == "" || req.Email == "" || req.Username == "" || req.Password == "" {
		httputil.WriteError(w, http.StatusBadRequest, "name, email, username, and password are required")
		return
	}

	if msg := validate.First(
		validate.Name(req.Name),
		validate.Email(req.Email),
		validate.Username(req.Username),
		validate.Password(req.Password),
	); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	u := userResponse{ID: uuid.NewString(), Name: req.Name, Email: req.Email, Username: req.Username, Role: RoleAdmin}
	var createdAt time.Time
	err = h.db.QueryRow(r.Context(),
		"INSERT INTO users (id, name, email, username, password, role) VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at",
		u.ID, req.Name, req.Email, req.Username, string(hashedPassword), RoleAdmin,
	).Scan(&createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			httputil.WriteError(w, http.StatusConflict, "username already exists")
			return
		}
		slog.Error("auth: create user", "username", req.Username, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	u.CreatedAt = createdAt.UTC().Format(time.RFC3339)

	slog.Info("auth: user created", "user_id", u.ID, "username", u.Username, "by", UserIDFromContext(r.Context()))
	httputil.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httputil.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	if id == UserIDFromContext(r.Context()) {
		httputil.WriteError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	tag, err := h.db.Exec(r.Context(), "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		slog.Error("auth: delete user", "user_id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if tag.RowsAffected() == 0 {
		httputil.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	slog.Info("auth: user deleted", "user_id", id, "by", UserIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
