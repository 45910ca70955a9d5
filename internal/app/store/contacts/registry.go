// internal/app/store/contacts/registry.go
package contacts

// Terminology: Contact Identifiers
//   - ContactID / contactID / id: The incrementing integer that uniquely identifies a contact record
//   - Login / login: The human-readable string contacts type to sign in

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"

	"github.com/drivershield/shield360/internal/app/system/authutil"
	"github.com/drivershield/shield360/internal/app/system/normalize"
	"github.com/drivershield/shield360/internal/app/system/persist"
)

var (
	// ErrDuplicateLogin is returned when registering a login that already exists.
	ErrDuplicateLogin = errors.New("a contact with this login already exists")
	// ErrRegistryFull is returned when the contact cap has been reached.
	ErrRegistryFull = errors.New("contact registry is full")
	// ErrInvalidInput is returned when a required field is empty after normalization.
	ErrInvalidInput = errors.New("name and login are required")
	// ErrBadCredentials is returned for any failed authentication. It is
	// deliberately the same for unknown logins and wrong passwords.
	ErrBadCredentials = errors.New("invalid login or password")
)

// Contact is an emergency contact allowed to sign in to the alert panel.
// CredentialHash is persisted in the snapshot but never serialized to API
// responses; handlers must emit Public() views only.
type Contact struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Login          string    `json:"login"`
	LoginCI        string    `json:"login_ci"`
	CredentialHash string    `json:"credential_hash"`
	CreatedAt      time.Time `json:"created_at"`
}

// PublicContact is the API-safe view of a Contact.
type PublicContact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Login     string    `json:"login"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the contact without credential material.
func (c Contact) Public() PublicContact {
	return PublicContact{ID: c.ID, Name: c.Name, Login: c.Login, CreatedAt: c.CreatedAt}
}

// Registry holds the emergency contacts, capped at a configured maximum.
// All mutations are written through to the snapshot file before they are
// visible to readers; a failed write rolls the in-memory state back.
type Registry struct {
	mu          sync.Mutex
	file        *persist.File
	logger      *zap.Logger
	max         int
	minPassword int
	contacts    []Contact
	nextID      int64
}

// NewRegistry loads the contact snapshot from file. A missing or corrupt
// snapshot starts an empty registry.
func NewRegistry(file *persist.File, max, minPassword int, logger *zap.Logger) (*Registry, error) {
	r := &Registry{
		file:        file,
		logger:      logger,
		max:         max,
		minPassword: minPassword,
		nextID:      1,
	}
	if err := file.Load(&r.contacts); err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	for i := range r.contacts {
		// Older snapshots may predate the folded login column.
		if r.contacts[i].LoginCI == "" {
			r.contacts[i].LoginCI = text.Fold(r.contacts[i].Login)
		}
		if r.contacts[i].ID >= r.nextID {
			r.nextID = r.contacts[i].ID + 1
		}
	}
	return r, nil
}

// EnsureSnapshot writes the snapshot file if it does not exist yet, so
// permission problems surface at startup rather than on first use.
func (r *Registry) EnsureSnapshot() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := os.Stat(r.file.Path()); err == nil {
		return nil
	}
	if r.contacts == nil {
		return r.file.Save([]Contact{})
	}
	return r.file.Save(r.contacts)
}

// Count returns the number of registered contacts.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contacts)
}

// Max returns the configured registry capacity.
func (r *Registry) Max() int { return r.max }

// List returns all contacts in registration order as API-safe views.
func (r *Registry) List() []PublicContact {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PublicContact, 0, len(r.contacts))
	for _, c := range r.contacts {
		out = append(out, c.Public())
	}
	return out
}

// Add registers a new contact after normalizing and validating fields.
// Logins are unique under case/diacritic folding.
func (r *Registry) Add(name, login, password string) (PublicContact, error) {
	name = normalize.Name(name)
	login = normalize.Login(login)
	if name == "" || login == "" {
		return PublicContact{}, ErrInvalidInput
	}
	if err := authutil.ValidatePassword(password, r.minPassword); err != nil {
		return PublicContact{}, err
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		return PublicContact{}, fmt.Errorf("hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Duplicate check first: re-registering an existing login reports
	// the duplicate even when the registry is already full.
	folded := text.Fold(login)
	for _, c := range r.contacts {
		if c.LoginCI == folded {
			return PublicContact{}, ErrDuplicateLogin
		}
	}
	if len(r.contacts) >= r.max {
		return PublicContact{}, ErrRegistryFull
	}

	c := Contact{
		ID:             r.nextID,
		Name:           name,
		Login:          login,
		LoginCI:        folded,
		CredentialHash: hash,
		CreatedAt:      time.Now().UTC(),
	}
	r.contacts = append(r.contacts, c)
	r.nextID++

	if err := r.file.Save(r.contacts); err != nil {
		r.contacts = r.contacts[:len(r.contacts)-1]
		r.nextID--
		r.logger.Error("contact snapshot write failed, rolling back", zap.Error(err))
		return PublicContact{}, fmt.Errorf("save contacts: %w", err)
	}
	return c.Public(), nil
}

// Remove deletes a contact by numeric id or by login. Removal is
// idempotent: removing an absent contact reports found=false, no error.
func (r *Registry) Remove(idOrLogin string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	if id, err := strconv.ParseInt(idOrLogin, 10, 64); err == nil {
		for i, c := range r.contacts {
			if c.ID == id {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		folded := text.Fold(normalize.Login(idOrLogin))
		for i, c := range r.contacts {
			if c.LoginCI == folded {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return false, nil
	}

	removed := r.contacts[idx]
	r.contacts = append(r.contacts[:idx], r.contacts[idx+1:]...)

	if err := r.file.Save(r.contacts); err != nil {
		// Reinsert at the original position so registration order survives.
		r.contacts = append(r.contacts[:idx], append([]Contact{removed}, r.contacts[idx:]...)...)
		r.logger.Error("contact snapshot write failed, rolling back", zap.Error(err))
		return false, fmt.Errorf("save contacts: %w", err)
	}
	return true, nil
}

// Clear wipes every contact. Sessions backed by the deleted contacts stop
// resolving on their next request. Existing ids are not reused afterwards.
func (r *Registry) Clear() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := r.contacts
	r.contacts = []Contact{}

	if err := r.file.Save(r.contacts); err != nil {
		r.contacts = removed
		r.logger.Error("contact snapshot write failed, rolling back", zap.Error(err))
		return 0, fmt.Errorf("save contacts: %w", err)
	}
	return len(removed), nil
}

// Authenticate checks a login/password pair. It returns ErrBadCredentials
// for unknown logins and wrong passwords alike, and burns a bcrypt compare
// on unknown logins so the two cases take similar time.
func (r *Registry) Authenticate(login, password string) (PublicContact, error) {
	folded := text.Fold(normalize.Login(login))

	r.mu.Lock()
	var found *Contact
	for i := range r.contacts {
		if r.contacts[i].LoginCI == folded {
			c := r.contacts[i]
			found = &c
			break
		}
	}
	r.mu.Unlock()

	if found == nil {
		authutil.BurnCompare(password)
		return PublicContact{}, ErrBadCredentials
	}
	if !authutil.CheckPassword(password, found.CredentialHash) {
		return PublicContact{}, ErrBadCredentials
	}
	return found.Public(), nil
}

// GetByLogin looks up a contact by case/diacritic-insensitive login.
func (r *Registry) GetByLogin(login string) (PublicContact, bool) {
	folded := text.Fold(normalize.Login(login))
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.LoginCI == folded {
			return c.Public(), true
		}
	}
	return PublicContact{}, false
}

// GetByID looks up a contact by id.
func (r *Registry) GetByID(id int64) (PublicContact, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.ID == id {
			return c.Public(), true
		}
	}
	return PublicContact{}, false
}
