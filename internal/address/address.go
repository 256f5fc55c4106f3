// Package address implements the postal address model shared by the
// registration and profile flows: per-record validation, ordered structural
// equality, and the whole-list replace-or-omit patch the update endpoint
// expects.
package address

import (
	"strconv"
	"strings"
)

// Record is a single postal address belonging to a user. All comparable
// fields are strings; UserID is an optional back-reference assigned by the
// server and never edited locally.
type Record struct {
	Street    string `json:"street"`
	Number    string `json:"number"`
	Floor     string `json:"floor"`
	Apartment string `json:"apartment"`
	City      string `json:"city"`
	State     string `json:"state"`
	UserID    *int64 `json:"userId,omitempty"`
}

// ErrorMap holds one message per invalid field, keyed by wire field name.
// An empty map means the record is valid.
type ErrorMap map[string]string

// EmptyRecord returns a fresh all-blank record.
func EmptyRecord() Record {
	return Record{}
}

func (r Record) userIDString() string {
	if r.UserID == nil {
		return ""
	}
	return strconv.FormatInt(*r.UserID, 10)
}

// IsEmpty reports whether every comparable field is blank after trimming.
func (r Record) IsEmpty() bool {
	for _, v := range []string{
		r.City, r.Number, r.State, r.Street, r.Floor, r.Apartment, r.userIDString(),
	} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Validate checks the record. When required is false and the record is
// untouched (fully empty), no errors are reported: an optional blank slot is
// not a problem. Otherwise city, number, state and street must be non-blank;
// floor and apartment are always optional.
func (r Record) Validate(required bool) ErrorMap {
	errs := ErrorMap{}
	if !required && r.IsEmpty() {
		return errs
	}

	filled := func(v string) bool { return strings.TrimSpace(v) != "" }
	if !filled(r.City) {
		errs["city"] = "required"
	}
	if !filled(r.Number) {
		errs["number"] = "required"
	}
	if !filled(r.State) {
		errs["state"] = "required"
	}
	if !filled(r.Street) {
		errs["street"] = "required"
	}
	return errs
}

// normalize coalesces a record to canonical comparable form.
func (r Record) normalize() Record {
	return Record{
		Street:    r.Street,
		Number:    r.Number,
		Floor:     r.Floor,
		Apartment: r.Apartment,
		City:      r.City,
		State:     r.State,
		UserID:    r.UserID,
	}
}

func recordsEqual(a, b Record) bool {
	a, b = a.normalize(), b.normalize()
	if a.userIDString() != b.userIDString() {
		return false
	}
	return a.Street == b.Street &&
		a.Number == b.Number &&
		a.Floor == b.Floor &&
		a.Apartment == b.Apartment &&
		a.City == b.City &&
		a.State == b.State
}

// Equal reports ordered structural equality of two lists: position i of a is
// compared to position i of b. The lists are ordered, not sets.
func Equal(a, b []Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !recordsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// FilterEmpty drops fully-empty placeholder records, preserving order.
func FilterEmpty(list []Record) []Record {
	out := make([]Record, 0, len(list))
	for _, r := range list {
		if !r.IsEmpty() {
			out = append(out, r)
		}
	}
	return out
}

// BuildPatch filters empty placeholders out of newList and compares the
// result to oldList (also filtered). The second return value is false when
// nothing changed, meaning the address field must be omitted from the update
// request entirely. When it is true, the returned list is sent in full: the
// API contract is whole-list replacement, not per-record patching.
func BuildPatch(oldList, newList []Record) ([]Record, bool) {
	filtered := FilterEmpty(newList)
	if Equal(FilterEmpty(oldList), filtered) {
		return nil, false
	}
	return filtered, true
}

// Format renders a record as a one-line display summary.
func (r Record) Format() string {
	var parts []string
	if line := strings.TrimSpace(strings.Join(nonBlank(r.Street, r.Number), " ")); line != "" {
		parts = append(parts, line)
	}
	var unit []string
	if strings.TrimSpace(r.Floor) != "" {
		unit = append(unit, "Piso "+r.Floor)
	}
	if strings.TrimSpace(r.Apartment) != "" {
		unit = append(unit, "Depto "+r.Apartment)
	}
	if len(unit) > 0 {
		parts = append(parts, strings.Join(unit, " · "))
	}
	if line := strings.Join(nonBlank(r.City, r.State), ", "); line != "" {
		parts = append(parts, line)
	}
	return strings.Join(parts, " • ")
}

func nonBlank(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
