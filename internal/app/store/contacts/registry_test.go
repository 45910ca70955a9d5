package contacts

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/drivershield/shield360/internal/app/system/persist"
)

func newTestRegistry(t *testing.T, max int) *Registry {
	t.Helper()
	file, err := persist.NewFile(filepath.Join(t.TempDir(), "contacts.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	r, err := NewRegistry(file, max, 6, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

func TestRegistry_AddAndList(t *testing.T) {
	r := newTestRegistry(t, 3)

	c, err := r.Add("  Maria Silva  ", "Maria@Example.com", "hunter2valid")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if c.ID != 1 {
		t.Errorf("first contact id = %d, want 1", c.ID)
	}
	if c.Name != "Maria Silva" {
		t.Errorf("name = %q, want trimmed %q", c.Name, "Maria Silva")
	}
	if c.Login != "maria@example.com" {
		t.Errorf("login = %q, want lowercased", c.Login)
	}

	list := r.List()
	if len(list) != 1 {
		t.Fatalf("List() len = %d, want 1", len(list))
	}
}

func TestRegistry_DuplicateLoginCaseInsensitive(t *testing.T) {
	r := newTestRegistry(t, 3)

	if _, err := r.Add("Maria", "maria", "hunter2valid"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	_, err := r.Add("Other", "MARIA", "hunter2valid")
	if !errors.Is(err, ErrDuplicateLogin) {
		t.Fatalf("Add() error = %v, want ErrDuplicateLogin", err)
	}
}

func TestRegistry_CapEnforced(t *testing.T) {
	r := newTestRegistry(t, 3)

	for i, login := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		if _, err := r.Add("Contact", login, "hunter2valid"); err != nil {
			t.Fatalf("Add(%d) error = %v", i, err)
		}
	}
	_, err := r.Add("Overflow", "d@x.com", "hunter2valid")
	if !errors.Is(err, ErrRegistryFull) {
		t.Fatalf("Add() error = %v, want ErrRegistryFull", err)
	}
	if r.Count() != 3 {
		t.Errorf("Count() = %d, want 3", r.Count())
	}
}

func TestRegistry_DuplicateLoginOnFullRegistry(t *testing.T) {
	r := newTestRegistry(t, 3)

	for i, login := range []string{"ana@x.com", "b@x.com", "c@x.com"} {
		if _, err := r.Add("Contact", login, "hunter2valid"); err != nil {
			t.Fatalf("Add(%d) error = %v", i, err)
		}
	}
	// A full registry is the steady state at the cap; re-registering an
	// enrolled login must still report the duplicate, not the cap.
	_, err := r.Add("Ana", "ANA@x.com", "hunter2valid")
	if !errors.Is(err, ErrDuplicateLogin) {
		t.Fatalf("Add() error = %v, want ErrDuplicateLogin", err)
	}
}

func TestRegistry_InvalidInput(t *testing.T) {
	r := newTestRegistry(t, 3)

	if _, err := r.Add("   ", "login", "hunter2valid"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Add(blank name) error = %v, want ErrInvalidInput", err)
	}
	if _, err := r.Add("Name", "  ", "hunter2valid"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Add(blank login) error = %v, want ErrInvalidInput", err)
	}
}

func TestRegistry_RemoveIdempotent(t *testing.T) {
	r := newTestRegistry(t, 3)
	if _, err := r.Add("Maria", "maria", "hunter2valid"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	found, err := r.Remove("maria")
	if err != nil || !found {
		t.Fatalf("Remove() = (%v, %v), want (true, nil)", found, err)
	}
	found, err = r.Remove("maria")
	if err != nil || found {
		t.Fatalf("second Remove() = (%v, %v), want (false, nil)", found, err)
	}
}

func TestRegistry_RemoveByID(t *testing.T) {
	r := newTestRegistry(t, 3)
	c, err := r.Add("Maria", "maria", "hunter2valid")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	found, err := r.Remove("1")
	if err != nil || !found {
		t.Fatalf("Remove(%d) = (%v, %v), want (true, nil)", c.ID, found, err)
	}
}

func TestRegistry_Clear(t *testing.T) {
	r := newTestRegistry(t, 3)
	if _, err := r.Add("Maria", "maria", "hunter2valid"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := r.Add("Ana", "ana", "hunter2valid"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	n, err := r.Clear()
	if err != nil || n != 2 {
		t.Fatalf("Clear() = (%d, %v), want (2, nil)", n, err)
	}
	if got := r.Count(); got != 0 {
		t.Fatalf("Count() after Clear = %d, want 0", got)
	}

	// Ids keep climbing past cleared contacts.
	c, err := r.Add("Rita", "rita", "hunter2valid")
	if err != nil {
		t.Fatalf("Add() after Clear error = %v", err)
	}
	if c.ID != 3 {
		t.Fatalf("ID after Clear = %d, want 3", c.ID)
	}
}

func TestRegistry_AuthenticateGenericError(t *testing.T) {
	r := newTestRegistry(t, 3)
	if _, err := r.Add("Maria", "maria", "hunter2valid"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	_, errUnknown := r.Authenticate("nobody", "hunter2valid")
	_, errWrong := r.Authenticate("maria", "not-the-password")

	if !errors.Is(errUnknown, ErrBadCredentials) {
		t.Errorf("unknown login error = %v, want ErrBadCredentials", errUnknown)
	}
	if !errors.Is(errWrong, ErrBadCredentials) {
		t.Errorf("wrong password error = %v, want ErrBadCredentials", errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Error("auth failures must be indistinguishable")
	}
}

func TestRegistry_AuthenticateSuccess(t *testing.T) {
	r := newTestRegistry(t, 3)
	if _, err := r.Add("Maria", "Maria@Example.com", "hunter2valid"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	c, err := r.Authenticate("MARIA@example.COM", "hunter2valid")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if c.Login != "maria@example.com" {
		t.Errorf("login = %q", c.Login)
	}
}

func TestRegistry_PublicViewOmitsCredential(t *testing.T) {
	r := newTestRegistry(t, 3)
	if _, err := r.Add("Maria", "maria", "hunter2valid"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	raw, err := json.Marshal(r.List())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(raw), "credential_hash") || strings.Contains(string(raw), "$2a$") {
		t.Errorf("public listing leaks credential material: %s", raw)
	}
}

func TestRegistry_IDsResumeAfterReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contacts.json")

	file, err := persist.NewFile(path, zap.NewNop())
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	r, err := NewRegistry(file, 3, 6, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if _, err := r.Add("A", "a@x.com", "hunter2valid"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := r.Add("B", "b@x.com", "hunter2valid"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if found, err := r.Remove("a@x.com"); err != nil || !found {
		t.Fatalf("Remove() = (%v, %v)", found, err)
	}

	file2, err := persist.NewFile(path, zap.NewNop())
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	r2, err := NewRegistry(file2, 3, 6, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRegistry() reload error = %v", err)
	}
	c, err := r2.Add("C", "c@x.com", "hunter2valid")
	if err != nil {
		t.Fatalf("Add() after reload error = %v", err)
	}
	if c.ID != 3 {
		t.Errorf("id after reload = %d, want 3 (ids never reused)", c.ID)
	}
}
