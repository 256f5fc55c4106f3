// Package profile implements the edit/save lifecycle shared by every
// profile screen: a server snapshot, a mutable draft, structural dirtiness,
// validation, and a minimal-patch save that merges back into the snapshot.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/address"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/domain"
	apperrors "github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/errors"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/validator"
)

// State is the editor's lifecycle state.
type State int

const (
	// Viewing displays the last-loaded snapshot read-only.
	Viewing State = iota
	// Editing means the draft may diverge from the snapshot.
	Editing
	// Saving means a submission is in flight and the form is disabled.
	Saving
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Updater submits a partial profile update.
type Updater interface {
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (string, error)
}

// MetadataStore receives the saved patch so session-wide cached user data
// stays in lockstep with the server.
type MetadataStore interface {
	MergeMetadata(patch domain.UserPatch) error
}

// Draft is the editable copy of the profile fields.
type Draft struct {
	FirstName       string
	LastName        string
	Email           string
	DNI             string
	PhoneNumber     string
	ProfileImageURL string
	Addresses       *address.List
}

// draftRules carries the field-level validation tags for a draft.
type draftRules struct {
	FirstName   string `validate:"required,min=2,max=40"`
	LastName    string `validate:"required,min=2,max=40"`
	Email       string `validate:"required,email"`
	DNI         string `validate:"required,dni"`
	PhoneNumber string `validate:"required,phone"`
}

// Editor drives one profile screen. All methods are safe for concurrent use;
// at most one save is in flight at a time.
type Editor struct {
	updater Updater
	meta    MetadataStore
	logger  *slog.Logger

	mu       sync.Mutex
	state    State
	snapshot domain.User
	draft    Draft
}

// NewEditor creates an editor over a freshly loaded server snapshot.
func NewEditor(snapshot domain.User, updater Updater, meta MetadataStore, logger *slog.Logger) *Editor {
	e := &Editor{
		updater:  updater,
		meta:     meta,
		logger:   logger,
		state:    Viewing,
		snapshot: snapshot,
	}
	e.draft = draftFrom(snapshot)
	return e
}

func draftFrom(u domain.User) Draft {
	return Draft{
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		DNI:             u.DNI,
		PhoneNumber:     u.PhoneNumber,
		ProfileImageURL: u.ProfileImageURL,
		Addresses:       address.NewList(u.Addresses, address.AllowEmpty),
	}
}

// State returns the current lifecycle state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot returns a copy of the last-known server state.
func (e *Editor) Snapshot() domain.User {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// Draft returns a copy of the current draft values.
func (e *Editor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.draft
	d.Addresses = address.NewList(e.draft.Addresses.Records(), address.AllowEmpty)
	return d
}

// BeginEdit moves Viewing to Editing, initializing the draft as a deep copy
// of the snapshot.
func (e *Editor) BeginEdit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Viewing {
		return fmt.Errorf("cannot begin edit while %s", e.state)
	}
	e.draft = draftFrom(e.snapshot)
	e.state = Editing
	return nil
}

// Cancel discards the draft and returns to Viewing.
func (e *Editor) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Editing {
		return fmt.Errorf("cannot cancel while %s", e.state)
	}
	e.draft = draftFrom(e.snapshot)
	e.state = Viewing
	return nil
}

func (e *Editor) edit(f func(d *Draft)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Editing {
		return fmt.Errorf("cannot edit while %s", e.state)
	}
	f(&e.draft)
	return nil
}

// Field setters; each is a no-op with an error outside of Editing.

func (e *Editor) SetFirstName(v string) error {
	return e.edit(func(d *Draft) { d.FirstName = v })
}

func (e *Editor) SetLastName(v string) error {
	return e.edit(func(d *Draft) { d.LastName = v })
}

func (e *Editor) SetEmail(v string) error {
	return e.edit(func(d *Draft) { d.Email = v })
}

func (e *Editor) SetPhoneNumber(v string) error {
	return e.edit(func(d *Draft) { d.PhoneNumber = v })
}

func (e *Editor) SetProfileImageURL(v string) error {
	return e.edit(func(d *Draft) { d.ProfileImageURL = v })
}

// SetAddressField edits one field of one address slot.
func (e *Editor) SetAddressField(i int, field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Editing {
		return fmt.Errorf("cannot edit while %s", e.state)
	}
	return e.draft.Addresses.SetFieldAt(i, field, value)
}

// AddAddress appends an empty address slot and returns its index.
func (e *Editor) AddAddress() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Editing {
		return 0, fmt.Errorf("cannot edit while %s", e.state)
	}
	return e.draft.Addresses.AddEmpty(), nil
}

// RemoveAddress removes the address slot at index i.
func (e *Editor) RemoveAddress(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Editing {
		return fmt.Errorf("cannot edit while %s", e.state)
	}
	return e.draft.Addresses.RemoveAt(i)
}

// Dirty reports whether the draft structurally differs from the snapshot.
// Scalars compare directly; the address lists compare with empty
// placeholders filtered out, so an untouched blank slot is not a change.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirtyLocked()
}

func (e *Editor) dirtyLocked() bool {
	d, s := e.draft, e.snapshot
	if d.FirstName != s.FirstName ||
		d.LastName != s.LastName ||
		d.Email != s.Email ||
		d.DNI != s.DNI ||
		d.PhoneNumber != s.PhoneNumber ||
		d.ProfileImageURL != s.ProfileImageURL {
		return true
	}
	return !address.Equal(
		address.FilterEmpty(d.Addresses.Records()),
		address.FilterEmpty(s.Addresses),
	)
}

// Validate checks every draft field plus every address slot.
func (e *Editor) Validate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validateLocked()
}

func (e *Editor) validateLocked() error {
	rules := draftRules{
		FirstName:   e.draft.FirstName,
		LastName:    e.draft.LastName,
		Email:       e.draft.Email,
		DNI:         e.draft.DNI,
		PhoneNumber: e.draft.PhoneNumber,
	}
	if err := validator.Validate(rules); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	for i, errs := range e.draft.Addresses.Validate() {
		if len(errs) > 0 {
			return apperrors.InvalidInput(fmt.Sprintf("address %d is incomplete", i+1))
		}
	}
	return nil
}

// buildPatchLocked assembles the minimal patch: scalars that differ from the
// snapshot, and the address list as whole-list replace-or-omit.
func (e *Editor) buildPatchLocked() domain.UserPatch {
	var patch domain.UserPatch
	d, s := e.draft, e.snapshot

	if d.FirstName != s.FirstName {
		v := d.FirstName
		patch.FirstName = &v
	}
	if d.LastName != s.LastName {
		v := d.LastName
		patch.LastName = &v
	}
	if d.Email != s.Email {
		v := d.Email
		patch.Email = &v
	}
	if d.DNI != s.DNI {
		v := d.DNI
		patch.DNI = &v
	}
	if d.PhoneNumber != s.PhoneNumber {
		v := d.PhoneNumber
		patch.PhoneNumber = &v
	}
	if d.ProfileImageURL != s.ProfileImageURL {
		v := d.ProfileImageURL
		patch.ProfileImageURL = &v
	}
	if addrs, changed := address.BuildPatch(s.Addresses, d.Addresses.Records()); changed {
		patch.Addresses = &addrs
	}
	return patch
}

// BuildPatch exposes the would-be save payload without submitting it.
func (e *Editor) BuildPatch() domain.UserPatch {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buildPatchLocked()
}

// Save validates and submits the minimal patch. Only one save may be in
// flight; an unchanged form is rejected before any request is made. On
// success the snapshot absorbs the sent patch and the session metadata is
// updated in lockstep; on failure the draft survives untouched so no input
// is lost, and no automatic retry happens.
func (e *Editor) Save(ctx context.Context) (string, error) {
	e.mu.Lock()
	if e.state == Saving {
		e.mu.Unlock()
		return "", apperrors.ErrSaveInFlight
	}
	if e.state != Editing {
		e.mu.Unlock()
		return "", fmt.Errorf("cannot save while %s", e.state)
	}
	if !e.dirtyLocked() {
		e.mu.Unlock()
		return "", apperrors.InvalidInput("no changes to save")
	}
	if err := e.validateLocked(); err != nil {
		e.mu.Unlock()
		return "", err
	}

	patch := e.buildPatchLocked()
	userID := e.snapshot.ID
	e.state = Saving
	e.mu.Unlock()

	msg, err := e.updater.UpdateUser(ctx, userID, patch)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = Editing
		return "", err
	}

	patch.ApplyTo(&e.snapshot)
	e.draft = draftFrom(e.snapshot)
	e.state = Viewing

	if e.meta != nil {
		if mergeErr := e.meta.MergeMetadata(patch); mergeErr != nil {
			e.logger.Warn("failed to merge saved profile into session",
				slog.String("error", mergeErr.Error()),
			)
		}
	}

	e.logger.Info("profile saved", slog.String("user_id", userID))
	return msg, nil
}
