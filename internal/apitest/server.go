// Package apitest provides an in-process HomeFix backend for integration
// tests: login issuing real signed tokens, bearer-checked user endpoints,
// partial profile updates and a presigned upload target, all served from a
// httptest.Server.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Account is one seeded backend user. Fields mirror the wire shape the real
// backend serves, including the loosely typed role and address payloads.
type Account struct {
	ID          string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	DNI         string
	PhoneNumber string
	Role        string
	Active      bool
	Addresses   []map[string]any
}

// Server is the fake backend. Mutating handlers hold the lock; tests may
// inspect state through the accessor methods between requests.
type Server struct {
	HTTP   *httptest.Server
	Secret []byte

	mu       sync.Mutex
	accounts map[string]*Account // keyed by ID
	uploads  map[string][]byte   // keyed by object key

	// TokenTTL controls the exp claim on issued tokens.
	TokenTTL time.Duration

	// LoginUserShape lets a test choose which historical payload shape the
	// login endpoint serves: "object-role", "string-role" or "legacy-address".
	LoginUserShape string

	// AllowInactiveLogin reproduces a backend revision that answered 200 for
	// disabled accounts, leaving the active flag to the client.
	AllowInactiveLogin bool
}

// NewServer starts a fake backend with the given seed accounts.
func NewServer(seed ...Account) *Server {
	s := &Server{
		Secret:         []byte("apitest-signing-secret"),
		accounts:       make(map[string]*Account),
		uploads:        make(map[string][]byte),
		TokenTTL:       time.Hour,
		LoginUserShape: "object-role",
	}
	for i := range seed {
		acc := seed[i]
		s.accounts[acc.ID] = &acc
	}

	r := chi.NewRouter()
	r.Post("/api/users/login", s.handleLogin)
	r.Post("/api/users/register", s.handleRegister)
	r.Post("/api/users/forgot-password", s.handleAccepted)
	r.Post("/api/users/reset-password", s.handleResetPassword)
	r.Post("/api/users/change-password", s.handleChangePassword)
	r.Patch("/api/users/{id}/reset-password", s.handleResetUserPassword)

	r.Group(func(r chi.Router) {
		r.Use(s.requireBearer)
		r.Get("/api/users", s.handleListUsers)
		r.Get("/api/users/{id}", s.handleGetUser)
		r.Patch("/api/users/{id}", s.handleUpdateUser)
		r.Patch("/api/users/{id}/active", s.handleSetActive)
		r.Post("/api/files/presign-upload", s.handlePresign)
	})

	r.Put("/uploads/*", s.handleUploadPut)

	s.HTTP = httptest.NewServer(r)
	return s
}

// Close shuts the underlying test server down.
func (s *Server) Close() { s.HTTP.Close() }

// URL returns the backend's base URL.
func (s *Server) URL() string { return s.HTTP.URL }

// Account returns a copy of the stored account, if present.
func (s *Server) Account(id string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return Account{}, false
	}
	return *acc, true
}

// Upload returns the stored object for key, if any PUT reached it.
func (s *Server) Upload(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.uploads[key]
	return data, ok
}

// IssueToken signs a token for the account the way the login endpoint does.
// Useful for seeding a session store without going through login.
func (s *Server) IssueToken(accountID string) string {
	claims := jwt.MapClaims{
		"sub": accountID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(s.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	return signed
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing bearer token"})
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")
		parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.Secret, nil
		})
		if err != nil || !parsed.Valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired or invalid"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) findByEmail(email string) *Account {
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.Email, email) {
			return acc
		}
	}
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.findByEmail(body.Email)
	if acc == nil || acc.Password != body.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "credenciales invalidas"})
		return
	}
	if !acc.Active && !s.AllowInactiveLogin {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "usuario deshabilitado"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":    s.IssueToken(acc.ID),
		"userInfo": s.userPayload(acc, s.LoginUserShape),
	})
}

// userPayload renders an account in one of the wire shapes the real backend
// has served over time.
func (s *Server) userPayload(acc *Account, shape string) map[string]any {
	p := map[string]any{
		"email":       acc.Email,
		"firstName":   acc.FirstName,
		"lastName":    acc.LastName,
		"dni":         acc.DNI,
		"phoneNumber": acc.PhoneNumber,
		"active":      acc.Active,
	}
	switch shape {
	case "string-role":
		p["id"] = acc.ID
		p["role"] = acc.Role
		p["addresses"] = acc.Addresses
	case "legacy-address":
		p["userId"] = acc.ID
		p["role"] = map[string]any{"name": acc.Role}
		p["address"] = acc.Addresses
	default: // object-role
		p["userId"] = acc.ID
		p["role"] = map[string]any{"name": acc.Role}
		p["addresses"] = acc.Addresses
	}
	return p
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string           `json:"email"`
		Password    string           `json:"password"`
		FirstName   string           `json:"firstName"`
		LastName    string           `json:"lastName"`
		DNI         string           `json:"dni"`
		PhoneNumber string           `json:"phoneNumber"`
		Role        string           `json:"role"`
		Address     []map[string]any `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmail(body.Email) != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "el email ya existe"})
		return
	}

	acc := &Account{
		ID:          uuid.NewString(),
		Email:       body.Email,
		Password:    body.Password,
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		DNI:         body.DNI,
		PhoneNumber: body.PhoneNumber,
		Role:        body.Role,
		Active:      true,
		Addresses:   body.Address,
	}
	s.accounts[acc.ID] = acc
	writeJSON(w, http.StatusCreated, map[string]string{"message": "usuario registrado"})
}

func (s *Server) handleAccepted(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "token invalido"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password actualizado"})
}

func (s *Server) handleResetUserPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "usuario no encontrado"})
		return
	}
	var body struct {
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "password requerido"})
		return
	}
	acc.Password = body.NewPassword
	writeJSON(w, http.StatusOK, map[string]string{"message": "password actualizado"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.findByEmail(body.Email)
	if acc == nil || acc.Password != body.OldPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "password actual incorrecto"})
		return
	}
	acc.Password = body.NewPassword
	writeJSON(w, http.StatusOK, map[string]string{"message": "password actualizado"})
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, s.userPayload(acc, "object-role"))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "usuario no encontrado"})
		return
	}
	writeJSON(w, http.StatusOK, s.userPayload(acc, "object-role"))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "usuario no encontrado"})
		return
	}

	setString := func(key string, dst *string) {
		if raw, ok := patch[key]; ok {
			var v string
			if json.Unmarshal(raw, &v) == nil {
				*dst = v
			}
		}
	}
	setString("firstName", &acc.FirstName)
	setString("lastName", &acc.LastName)
	setString("email", &acc.Email)
	setString("dni", &acc.DNI)
	setString("phoneNumber", &acc.PhoneNumber)
	if raw, ok := patch["address"]; ok {
		var addrs []map[string]any
		if json.Unmarshal(raw, &addrs) == nil {
			acc.Addresses = addrs
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "perfil actualizado"})
}

func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Active == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "active requerido"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "usuario no encontrado"})
		return
	}
	acc.Active = *body.Active
	writeJSON(w, http.StatusOK, map[string]string{"message": "estado actualizado"})
}

func (s *Server) handlePresign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key         string `json:"key"`
		ContentType string `json:"contentType"`
		ExpiresIn   int    `json:"expiresIn"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "key requerida"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"url": s.HTTP.URL + "/uploads/" + body.Key,
		"headers": map[string]string{
			"Content-Type": body.ContentType,
		},
		"key": body.Key,
	})
}

func (s *Server) handleUploadPut(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	data, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "unreadable body"})
		return
	}

	s.mu.Lock()
	s.uploads[key] = data
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
