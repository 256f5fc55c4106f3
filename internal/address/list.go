package address

import "fmt"

// Policy controls what happens when edits empty the list. Creation flows
// always keep one editable slot on screen; edit flows may legitimately end
// with zero addresses.
type Policy int

const (
	// KeepOne reinserts a fresh empty slot when removal empties the list.
	KeepOne Policy = iota
	// AllowEmpty permits a genuinely empty list.
	AllowEmpty
)

// List is the in-memory editor over an ordered set of address records. All
// operations are index-based and none of them fail: invalid states surface
// as non-empty error maps that gate submission.
type List struct {
	records []Record
	policy  Policy
}

// NewList copies the given records into a fresh editor. Under KeepOne an
// initially empty list is seeded with one blank slot.
func NewList(records []Record, policy Policy) *List {
	copied := make([]Record, len(records))
	copy(copied, records)
	if len(copied) == 0 && policy == KeepOne {
		copied = append(copied, EmptyRecord())
	}
	return &List{records: copied, policy: policy}
}

// Len returns the number of slots, including blank ones.
func (l *List) Len() int {
	return len(l.records)
}

// Records returns a copy of the current slots.
func (l *List) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// SetFieldAt replaces one field of the record at index i, leaving the other
// fields untouched. Unknown fields and out-of-range indexes are reported as
// errors rather than panics; the presentation layer treats them as bugs.
func (l *List) SetFieldAt(i int, field, value string) error {
	if i < 0 || i >= len(l.records) {
		return fmt.Errorf("address index %d out of range", i)
	}
	switch field {
	case "street":
		l.records[i].Street = value
	case "number":
		l.records[i].Number = value
	case "floor":
		l.records[i].Floor = value
	case "apartment":
		l.records[i].Apartment = value
	case "city":
		l.records[i].City = value
	case "state":
		l.records[i].State = value
	default:
		return fmt.Errorf("unknown address field %q", field)
	}
	return nil
}

// RemoveAt removes the record at index i. Under KeepOne, removal that
// empties the list reinserts a fresh blank slot so one remains editable.
func (l *List) RemoveAt(i int) error {
	if i < 0 || i >= len(l.records) {
		return fmt.Errorf("address index %d out of range", i)
	}
	l.records = append(l.records[:i], l.records[i+1:]...)
	if len(l.records) == 0 && l.policy == KeepOne {
		l.records = append(l.records, EmptyRecord())
	}
	return nil
}

// AddEmpty appends one blank slot and returns its index so the caller can
// move focus to it.
func (l *List) AddEmpty() int {
	l.records = append(l.records, EmptyRecord())
	return len(l.records) - 1
}

// Validate returns the per-slot error maps. Under KeepOne every slot is
// validated as required; under AllowEmpty a blank slot carries no errors.
func (l *List) Validate() []ErrorMap {
	required := l.policy == KeepOne
	out := make([]ErrorMap, len(l.records))
	for i, r := range l.records {
		out[i] = r.Validate(required)
	}
	return out
}

// Submittable reports whether the list can be sent: every slot's error map
// is empty, and under KeepOne at least one non-empty valid record exists.
func (l *List) Submittable() bool {
	for _, errs := range l.Validate() {
		if len(errs) > 0 {
			return false
		}
	}
	if l.policy == KeepOne && len(FilterEmpty(l.records)) == 0 {
		return false
	}
	return true
}
