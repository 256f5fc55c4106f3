package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToUIRole(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want UIRole
	}{
		{name: "cliente maps to customer", in: "CLIENTE", want: RoleCustomer},
		{name: "prestador maps to contractor", in: "PRESTADOR", want: RoleContractor},
		{name: "legacy proveedor maps to contractor", in: "PROVEEDOR", want: RoleContractor},
		{name: "admin maps to admin", in: "ADMIN", want: RoleAdmin},
		{name: "lowercase backend spelling", in: "prestador", want: RoleContractor},
		{name: "surrounding whitespace", in: "  ADMIN  ", want: RoleAdmin},
		{name: "unknown falls back to customer", in: "SUPERUSER", want: RoleCustomer},
		{name: "blank falls back to customer", in: "", want: RoleCustomer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToUIRole(tt.in))
		})
	}
}

func TestToUIRoleIdempotent(t *testing.T) {
	for _, role := range []UIRole{RoleCustomer, RoleContractor, RoleAdmin} {
		assert.Equal(t, role, ToUIRole(string(role)))
		assert.Equal(t, role, ToUIRole(string(ToUIRole(string(role)))))
	}
}

func TestToAPIRole(t *testing.T) {
	assert.Equal(t, "CLIENTE", ToAPIRole(RoleCustomer))
	assert.Equal(t, "PRESTADOR", ToAPIRole(RoleContractor))
	assert.Equal(t, "ADMIN", ToAPIRole(RoleAdmin))

	// Outbound writes never use the legacy alias, and an unknown UI role
	// degrades to the least-privileged spelling.
	assert.Equal(t, "CLIENTE", ToAPIRole(UIRole("weird")))
}

func TestRoundTripNeverYieldsLegacyAlias(t *testing.T) {
	got := ToAPIRole(ToUIRole("PROVEEDOR"))
	assert.Equal(t, "PRESTADOR", got)
}

func TestHomeRoute(t *testing.T) {
	assert.Equal(t, "/contratistas", HomeRoute(RoleCustomer))
	assert.Equal(t, "/trabajos", HomeRoute(RoleContractor))
	assert.Equal(t, "/admin", HomeRoute(RoleAdmin))
	assert.Equal(t, "/trabajos", HomeRoute(UIRole("PRESTADOR")))
	assert.Equal(t, "/contratistas", HomeRoute(UIRole("")))
}
