package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lightgray/lightgray/internal/database"
	"github.com/lightgray/lightgray/internal/httputil"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const userIDKey contextKey = "userID"

const refreshCookieName = "refresh_token"

var errTokenInactive = errors.New("refresh token revoked or expired")

type Handler struct {
	db            database.DBTX
	jwtSecret     string
	secureCookies bool
}

func NewHandler(db database.DBTX, jwtSecret string, secureCookies bool) *Handler {
	return &Handler{db: db, jwtSecret: jwtSecret, secureCookies: secureCookies}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		httputil.WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	var userID, hashedPassword, role string
	err := h.db.QueryRow(r.Context(),
		"SELECT id, password, role FROM users WHERE username = $1", req.Username,
	).Scan(&userID, &hashedPassword, &role)
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)); err != nil {
		slog.Info("auth: failed login", "username", req.Username, "ip", httputil.ClientIP(r))
		httputil.WriteError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	if role != RoleAdmin {
		httputil.WriteError(w, http.StatusForbidden, "admin role required")
		return
	}

	h.respondWithTokens(w, r.Context(), http.StatusOK, userID, role)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "refresh token not found")
		return
	}

	claims, err := ValidateToken(h.jwtSecret, cookie.Value)
	if err != nil || claims.TokenType != tokenTypeRefresh || claims.ID == "" {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	role, err := h.activeRefreshToken(r.Context(), claims.UserID, claims.ID)
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	if err := h.revokeRefreshToken(r.Context(), claims.ID); err != nil {
		slog.Error("auth: revoke refresh token", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to revoke refresh token")
		return
	}

	if role != RoleAdmin {
		httputil.WriteError(w, http.StatusForbidden, "admin role required")
		return
	}

	h.respondWithTokens(w, r.Context(), http.StatusOK, claims.UserID, role)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		if claims, err := ValidateToken(h.jwtSecret, cookie.Value); err == nil && claims.TokenType == tokenTypeRefresh && claims.ID != "" {
			if err := h.revokeRefreshToken(r.Context(), claims.ID); err != nil {
				slog.Warn("auth: revoke refresh token on logout", "error", err)
			}
		}
	}
	h.setRefreshTokenCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

// Middleware admits requests bearing a valid access token for an admin.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.WriteError(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := ValidateToken(h.jwtSecret, tokenStr)
		if err != nil {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		if claims.TokenType != tokenTypeAccess {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid token type")
			return
		}

		if claims.Role != RoleAdmin {
			httputil.WriteError(w, http.StatusForbidden, "admin role required")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

func (h *Handler) respondWithTokens(w http.ResponseWriter, ctx context.Context, status int, userID, role string) {
	accessToken, refreshToken, err := h.issueTokens(ctx, userID, role)
	if err != nil {
		slog.Error("auth: issue tokens", "user_id", userID, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	h.setRefreshTokenCookie(w, refreshToken, int(RefreshTokenDuration/time.Second))
	httputil.WriteJSON(w, status, tokenResponse{AccessToken: accessToken})
}

func (h *Handler) setRefreshTokenCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}

func (h *Handler) issueTokens(ctx context.Context, userID, role string) (accessToken, refreshToken string, err error) {
	tokenID := uuid.NewString()

	expiresAt := time.Now().Add(RefreshTokenDuration)
	if _, err := h.db.Exec(ctx,
		"INSERT INTO refresh_tokens (token_id, user_id, expires_at, revoked) VALUES ($1, $2, $3, false)",
		tokenID, userID, expiresAt,
	); err != nil {
		return "", "", fmt.Errorf("store refresh token: %w", err)
	}

	accessToken, err = GenerateAccessToken(h.jwtSecret, userID, role)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = GenerateRefreshToken(h.jwtSecret, userID, tokenID)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// activeRefreshToken returns the owner's current role when the stored token is usable.
func (h *Handler) activeRefreshToken(ctx context.Context, userID, tokenID string) (string, error) {
	var revoked bool
	var expiresAt time.Time
	var role string
	err := h.db.QueryRow(ctx,
		`SELECT rt.revoked, rt.expires_at, u.role
		 FROM refresh_tokens rt
		 JOIN users u ON u.id = rt.user_id
		 WHERE rt.token_id = $1 AND rt.user_id = $2`,
		tokenID, userID,
	).Scan(&revoked, &expiresAt, &role)
	if err != nil {
		return "", fmt.Errorf("lookup refresh token: %w", err)
	}
	if revoked || time.Now().After(expiresAt) {
		return "", errTokenInactive
	}
	return role, nil
}

func (h *Handler) revokeRefreshToken(ctx context.Context, tokenID string) error {
	_, err := h.db.Exec(ctx, "UPDATE refresh_tokens SET revoked = true, revoked_at = now() WHERE token_id = $1", tokenID)
	return err
}
