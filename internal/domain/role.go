// Package domain holds the canonical user model: UI roles, the session
// record, and the adapter that turns loosely-shaped backend payloads into
// one strict internal shape.
package domain

import "strings"

// UIRole is the canonical role vocabulary used everywhere inside the app,
// independent of whatever spelling the backend returns.
type UIRole string

const (
	RoleCustomer   UIRole = "customer"
	RoleContractor UIRole = "contractor"
	RoleAdmin      UIRole = "admin"
)

// apiToUI maps backend role spellings to canonical UI roles. PROVEEDOR is a
// legacy alias for PRESTADOR kept for payloads produced by older backends.
var apiToUI = map[string]UIRole{
	"CLIENTE":   RoleCustomer,
	"PRESTADOR": RoleContractor,
	"PROVEEDOR": RoleContractor,
	"ADMIN":     RoleAdmin,
}

// uiToAPI picks exactly one outbound spelling per UI role, never the legacy
// alias.
var uiToAPI = map[UIRole]string{
	RoleCustomer:   "CLIENTE",
	RoleContractor: "PRESTADOR",
	RoleAdmin:      "ADMIN",
}

// ToUIRole normalizes any role spelling to a canonical UI role. It is total
// and idempotent: canonical values pass through unchanged, backend spellings
// are mapped after trimming and uppercasing, and anything unrecognized
// (including blank input) falls back to the least-privileged role.
func ToUIRole(role string) UIRole {
	switch UIRole(role) {
	case RoleCustomer, RoleContractor, RoleAdmin:
		return UIRole(role)
	}
	if ui, ok := apiToUI[strings.ToUpper(strings.TrimSpace(role))]; ok {
		return ui
	}
	return RoleCustomer
}

// ToAPIRole returns the single canonical backend spelling for a UI role,
// used on outbound writes only.
func ToAPIRole(role UIRole) string {
	if api, ok := uiToAPI[role]; ok {
		return api
	}
	return uiToAPI[RoleCustomer]
}

// HomeRoute returns the landing route for a role after login.
func HomeRoute(role UIRole) string {
	switch ToUIRole(string(role)) {
	case RoleContractor:
		return "/trabajos"
	case RoleAdmin:
		return "/admin"
	default:
		return "/contratistas"
	}
}
