package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/costline/internal/catalog"
	"github.com/Simplici0/costline/internal/store"
)

const (
	sessionCookieName = "costline_session"
	minPasswordLength = 8
)

type ctxKey struct{}

type authService struct {
	store         *store.Store
	sessionSecret []byte
	sessionTTL    time.Duration
	now           func() time.Time
}

func newAuthService(st *store.Store, sessionSecret string, ttl time.Duration) *authService {
	return &authService{
		store:         st,
		sessionSecret: []byte(sessionSecret),
		sessionTTL:    ttl,
		now:           time.Now,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (a *authService) validateCredentials(ctx context.Context, email, password string) (store.User, bool, error) {
	user, err := a.store.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, false, nil
	}
	if err != nil {
		return store.User{}, false, fmt.Errorf("query user credentials: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return store.User{}, false, nil
	}
	return user, true, nil
}

func (a *authService) issueToken(userID string) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.sessionTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.sessionSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (a *authService) verifyToken(raw string) (string, bool) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return a.sessionSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

func (a *authService) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *authService) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// requestToken reads the session token from the Authorization header or the
// session cookie, in that order.
func requestToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// requireAuth rejects requests without a valid session and stores the caller's
// user id in the request context.
func (a *authService) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := a.verifyToken(requestToken(r))
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

func ownerID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

func validateRegistration(in credentials) catalog.ValidationErrors {
	errs := catalog.ValidationErrors{}
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		errs.Add("email", "a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		errs.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return errs
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	if errs := validateRegistration(in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		writeStoreError(w, "hash password", err, "")
		return
	}
	user, err := s.store.CreateUser(r.Context(), in.Email, string(hash))
	if err != nil {
		writeStoreError(w, "register user", err, "")
		return
	}
	s.startSession(w, user, http.StatusCreated)
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeJSON(w, r, &in) {
		return
	}

	user, valid, err := s.auth.validateCredentials(r.Context(), in.Email, in.Password)
	if err != nil {
		writeStoreError(w, "authenticate", err, "")
		return
	}
	if !valid {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	s.startSession(w, user, http.StatusOK)
}

func (s *server) startSession(w http.ResponseWriter, user store.User, status int) {
	token, err := s.auth.issueToken(user.ID)
	if err != nil {
		writeStoreError(w, "start session", err, "")
		return
	}
	s.auth.setSessionCookie(w, token)
	writeJSON(w, status, map[string]any{
		"user":  identity{ID: user.ID, Email: user.Email},
		"token": token,
	})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.UserByID(r.Context(), ownerID(r))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err != nil {
		writeStoreError(w, "load user", err, "")
		return
	}
	writeJSON(w, http.StatusOK, identity{ID: user.ID, Email: user.Email})
}
