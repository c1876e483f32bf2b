// Package authtest provides an in-memory double of the Orbit authentication
// service for tests and local development. It reproduces the backend's wire
// contract: JSON register, form-encoded login, bearer-authenticated me, and
// the {"detail": ...} error envelope (plain string or validation array).
package authtest

import (
	"crypto/rand"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type account struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	Hash      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Server holds the in-memory user table and signs bearer tokens.
type Server struct {
	mu            sync.Mutex
	users         map[string]*account // keyed by email
	byID          map[uuid.UUID]*account
	secret        []byte
	tokenTTL      time.Duration
	loginDisabled bool

	router *mux.Router
}

func NewServer() *Server {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(err)
	}

	s := &Server{
		users:    make(map[string]*account),
		byID:     make(map[uuid.UUID]*account),
		secret:   secret,
		tokenTTL: 30 * time.Minute,
	}

	r := mux.NewRouter()
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	s.router = r

	return s
}

// Handler returns the HTTP handler, ready for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetLoginDisabled makes every login attempt fail with 401 while leaving
// register and me untouched. Tests use it to simulate a backend that has
// accepted a registration but does not authenticate the account yet.
func (s *Server) SetLoginDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginDisabled = disabled
}

// IssueToken mints a valid bearer token for email. The account must exist.
func (s *Server) IssueToken(email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.users[email]
	if !ok {
		return "", jwt.ErrTokenInvalidSubject
	}
	return s.mintToken(acc)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return
	}

	var fields []validationError
	if req.Email == "" {
		fields = append(fields, validationError{
			Loc: []any{"body", "email"}, Msg: "field required", Type: "value_error.missing",
		})
	} else if !strings.Contains(req.Email, "@") {
		fields = append(fields, validationError{
			Loc: []any{"body", "email"}, Msg: "value is not a valid email address", Type: "value_error.email",
		})
	}
	if len(req.Password) < minPasswordLength {
		fields = append(fields, validationError{
			Loc: []any{"body", "password"},
			Msg: "ensure this value has at least 8 characters", Type: "value_error.any_str.min_length",
		})
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[req.Email]; exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}

	now := time.Now().UTC()
	acc := &account{
		ID:        uuid.New(),
		Email:     req.Email,
		FullName:  req.FullName,
		Hash:      hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[acc.Email] = acc
	s.byID[acc.ID] = acc

	writeUser(w, http.StatusCreated, acc)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid form body")
		return
	}
	// OAuth2 password form: the username field carries the email.
	email := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.users[email]
	if s.loginDisabled || !ok || bcrypt.CompareHashAndPassword(acc.Hash, []byte(password)) != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token, err := s.mintToken(acc)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	s.mu.Lock()
	acc, ok := s.byID[id]
	s.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	writeUser(w, http.StatusOK, acc)
}

func (s *Server) mintToken(acc *account) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   acc.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ---- response helpers ----

type validationError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidation(w http.ResponseWriter, fields []validationError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": fields})
}

func writeUser(w http.ResponseWriter, status int, acc *account) {
	writeJSON(w, status, map[string]any{
		"id":         acc.ID,
		"email":      acc.Email,
		"full_name":  acc.FullName,
		"created_at": acc.CreatedAt,
		"updated_at": acc.UpdatedAt,
	})
}
