package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, u *User)
	}{
		{
			name: "current shape with object role",
			payload: `{
				"userId": 42,
				"email": "ana@example.com",
				"firstName": "Ana",
				"lastName": "Gomez",
				"dni": "30123456",
				"phoneNumber": "+54 11 4444-5555",
				"role": {"name": "PRESTADOR", "description": "provider"},
				"active": true,
				"addresses": [{"street": "Corrientes", "number": "1234", "city": "CABA", "state": "Buenos Aires"}]
			}`,
			check: func(t *testing.T, u *User) {
				assert.Equal(t, "42", u.ID)
				assert.Equal(t, RoleContractor, u.UIRole())
				assert.True(t, u.Active)
				require.Len(t, u.Addresses, 1)
				assert.Equal(t, "Corrientes", u.Addresses[0].Street)
			},
		},
		{
			name:    "string role and string id",
			payload: `{"id": "abc-1", "email": "x@example.com", "role": "CLIENTE"}`,
			check: func(t *testing.T, u *User) {
				assert.Equal(t, "abc-1", u.ID)
				assert.Equal(t, RoleCustomer, u.UIRole())
			},
		},
		{
			name:    "userId wins over id",
			payload: `{"id": 1, "userId": 2, "email": "x@example.com"}`,
			check: func(t *testing.T, u *User) {
				assert.Equal(t, "2", u.ID)
			},
		},
		{
			name:    "missing active defaults to active",
			payload: `{"id": 7, "email": "x@example.com"}`,
			check: func(t *testing.T, u *User) {
				assert.True(t, u.Active)
			},
		},
		{
			name:    "explicit inactive",
			payload: `{"id": 7, "email": "x@example.com", "active": false}`,
			check: func(t *testing.T, u *User) {
				assert.False(t, u.Active)
			},
		},
		{
			name:    "legacy singular address key",
			payload: `{"id": 7, "email": "x@example.com", "address": [{"street": "Mitre", "number": "10", "city": "Rosario", "state": "Santa Fe"}]}`,
			check: func(t *testing.T, u *User) {
				require.Len(t, u.Addresses, 1)
				assert.Equal(t, "Mitre", u.Addresses[0].Street)
			},
		},
		{
			name:    "legacy free-text address is dropped",
			payload: `{"id": 7, "email": "x@example.com", "address": "Mitre 10, Rosario"}`,
			check: func(t *testing.T, u *User) {
				assert.Empty(t, u.Addresses)
			},
		},
		{
			name:    "missing role falls back to customer",
			payload: `{"id": 7, "email": "x@example.com"}`,
			check: func(t *testing.T, u *User) {
				assert.Equal(t, RoleCustomer, u.UIRole())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseUser([]byte(tt.payload))
			require.NoError(t, err)
			tt.check(t, u)
		})
	}
}

func TestParseUserMalformed(t *testing.T) {
	_, err := ParseUser([]byte(`not json`))
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{name: "both names", user: User{FirstName: "Ana", LastName: "Gomez"}, want: "Ana Gomez"},
		{name: "first only", user: User{FirstName: "Ana"}, want: "Ana"},
		{name: "falls back to email local part", user: User{Email: "ana.gomez@example.com"}, want: "ana.gomez"},
		{name: "no at sign", user: User{Email: "plainname"}, want: "plainname"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestNewSessionNormalizesRole(t *testing.T) {
	u := &User{ID: "9", Email: "p@example.com", Role: "PROVEEDOR"}
	sess := NewSession(u, "tok")

	assert.Equal(t, RoleContractor, sess.Role)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, "9", sess.ID)
}

func TestUserSessionNormalize(t *testing.T) {
	sess := UserSession{Role: UIRole("ADMIN")}
	sess.Normalize()
	assert.Equal(t, RoleAdmin, sess.Role)
}

func TestUserPatchApplyTo(t *testing.T) {
	u := User{FirstName: "Ana", PhoneNumber: "111"}
	phone := "222"
	UserPatch{PhoneNumber: &phone}.ApplyTo(&u)

	assert.Equal(t, "222", u.PhoneNumber)
	assert.Equal(t, "Ana", u.FirstName)
}

func TestUserPatchIsZero(t *testing.T) {
	assert.True(t, UserPatch{}.IsZero())
	v := "x"
	assert.False(t, UserPatch{Email: &v}.IsZero())
}
