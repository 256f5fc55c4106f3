package domain

import "github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/address"

// UserSession is the authenticated principal. The token is persisted
// separately from the serialized record, mirroring the two durable entries
// the session store keeps; a session is logged in iff Token is non-empty.
type UserSession struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        UIRole `json:"uiRole"`
	Token       string `json:"-"`
	User        User   `json:"meta"`
}

// NewSession builds a session from a parsed user record and a bearer token.
// The role is normalized at construction time so no raw backend spelling
// ever reaches the rest of the app.
func NewSession(u *User, token string) *UserSession {
	return &UserSession{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName(),
		Role:        u.UIRole(),
		Token:       token,
		User:        *u,
	}
}

// Normalize re-applies role normalization. Persisted sessions may predate a
// vocabulary change, so this runs on every load of stale state.
func (s *UserSession) Normalize() {
	s.Role = ToUIRole(string(s.Role))
}

// UserPatch is the minimal partial-update payload for PATCH /api/users/{id}.
// Nil fields are omitted from the request. The address list is whole-list
// replacement under the legacy singular key: nil means unchanged, a non-nil
// slice (possibly empty) replaces the server-side set.
type UserPatch struct {
	FirstName       *string           `json:"firstName,omitempty"`
	LastName        *string           `json:"lastName,omitempty"`
	Email           *string           `json:"email,omitempty"`
	DNI             *string           `json:"dni,omitempty"`
	PhoneNumber     *string           `json:"phoneNumber,omitempty"`
	ProfileImageURL *string           `json:"profileImageUrl,omitempty"`
	Addresses       *[]address.Record `json:"address,omitempty"`
}

// IsZero reports whether the patch carries no changes at all.
func (p UserPatch) IsZero() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.DNI == nil && p.PhoneNumber == nil && p.ProfileImageURL == nil &&
		p.Addresses == nil
}

// ApplyTo merges the patch into a user record in place.
func (p UserPatch) ApplyTo(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.DNI != nil {
		u.DNI = *p.DNI
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.ProfileImageURL != nil {
		u.ProfileImageURL = *p.ProfileImageURL
	}
	if p.Addresses != nil {
		u.Addresses = append([]address.Record(nil), (*p.Addresses)...)
	}
}
