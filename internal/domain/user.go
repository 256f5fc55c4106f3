package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/address"
)

// User is the strict internal shape of a user profile. Every loosely-typed
// backend payload is funneled through ParseUser so that no other code ever
// branches on historical field shapes.
type User struct {
	ID              string           `json:"id"`
	Email           string           `json:"email"`
	FirstName       string           `json:"firstName"`
	LastName        string           `json:"lastName"`
	DNI             string           `json:"dni,omitempty"`
	PhoneNumber     string           `json:"phoneNumber,omitempty"`
	ProfileImageURL string           `json:"profileImageUrl,omitempty"`
	Role            string           `json:"role"`
	Active          bool             `json:"active"`
	Addresses       []address.Record `json:"addresses,omitempty"`
}

// UIRole returns the user's role normalized to the canonical vocabulary.
func (u *User) UIRole() UIRole {
	return ToUIRole(u.Role)
}

// DisplayName joins first and last name, falling back to the local part of
// the email when both are blank.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// wireUser captures every shape the backend has historically used for a
// user payload. Role arrives as a bare string or as an object with a name;
// the ID key moved between id and userId and flipped between number and
// string; the address list moved between address and addresses.
type wireUser struct {
	ID              json.RawMessage `json:"id"`
	UserID          json.RawMessage `json:"userId"`
	Email           string          `json:"email"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	DNI             string          `json:"dni"`
	PhoneNumber     string          `json:"phoneNumber"`
	ProfileImageURL string          `json:"profileImageUrl"`
	Role            json.RawMessage `json:"role"`
	Active          *bool           `json:"active"`
	Addresses       json.RawMessage `json:"addresses"`
	Address         json.RawMessage `json:"address"`
}

type wireRole struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ParseUser adapts a raw backend user payload into the strict User shape.
// Missing optional fields default to blank; a missing active flag means
// active. All duck-typing lives here, never downstream.
func ParseUser(raw []byte) (*User, error) {
	var w wireUser
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse user payload: %w", err)
	}

	u := &User{
		Email:           w.Email,
		FirstName:       w.FirstName,
		LastName:        w.LastName,
		DNI:             w.DNI,
		PhoneNumber:     w.PhoneNumber,
		ProfileImageURL: w.ProfileImageURL,
		Active:          true,
	}
	if w.Active != nil {
		u.Active = *w.Active
	}

	u.ID = parseID(w.UserID)
	if u.ID == "" {
		u.ID = parseID(w.ID)
	}

	u.Role = parseRole(w.Role)

	if addrs, ok := parseAddresses(w.Addresses); ok {
		u.Addresses = addrs
	} else if addrs, ok := parseAddresses(w.Address); ok {
		u.Addresses = addrs
	}

	return u, nil
}

// parseID accepts a numeric or string identifier and renders it as a string.
func parseID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// parseRole accepts a bare role string or a role object with a name field.
func parseRole(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj wireRole
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Name
	}
	return ""
}

// parseAddresses accepts an address array. Legacy payloads carried a single
// free-text address string under the same key; those have no structured
// equivalent and are dropped.
func parseAddresses(raw json.RawMessage) ([]address.Record, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var list []address.Record
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}
	return nil, false
}
