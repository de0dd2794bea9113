package accounts

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "folio-accounts-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newUser(id, name, email string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:           id,
		Username:     name,
		Email:        email,
		PasswordHash: "hash",
		Settings:     models.DefaultSettings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateAndLookup(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.Create(ctx, newUser("u1", "admin", "Admin@Example.com")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	n, err := db.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Count = %d, %v", n, err)
	}

	u, err := db.ByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("ByUsername: %v", err)
	}
	if u.Email != "admin@example.com" {
		t.Errorf("email = %q, want lower-cased", u.Email)
	}
	if u.Settings.Theme != "dark" {
		t.Errorf("settings not decoded: %+v", u.Settings)
	}

	if _, err := db.ByEmail(ctx, "ADMIN@example.COM"); err != nil {
		t.Errorf("ByEmail should be case-insensitive: %v", err)
	}
	if _, err := db.ByUsername(ctx, "Admin"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("username match should be exact, got %v", err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.Create(ctx, newUser("u1", "admin", "a@example.com"))

	err := db.Create(ctx, newUser("u2", "admin", "b@example.com"))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate username err = %v", err)
	}
	err = db.Create(ctx, newUser("u3", "other", "A@example.com"))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate email err = %v", err)
	}
}

func TestUpdateAndResetToken(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u := newUser("u1", "admin", "a@example.com")
	_ = db.Create(ctx, u)

	exp := time.Now().Add(time.Hour)
	u.ResetTokenHash = "abc"
	u.ResetTokenExpires = &exp
	u.EmailTemplates.PasswordReset.Subject = "Reset it"
	if err := db.Update(ctx, u); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := db.ByResetTokenHash(ctx, "abc")
	if err != nil {
		t.Fatalf("ByResetTokenHash: %v", err)
	}
	if got.ResetTokenExpires == nil || !got.ResetTokenExpires.After(time.Now()) {
		t.Errorf("expiry = %v", got.ResetTokenExpires)
	}
	if got.EmailTemplates.PasswordReset.Subject != "Reset it" {
		t.Errorf("templates = %+v", got.EmailTemplates)
	}
	if _, err := db.ByResetTokenHash(ctx, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("empty hash should not match, got %v", err)
	}
}

func TestUpdateMissing(t *testing.T) {
	db := testDB(t)
	err := db.Update(context.Background(), newUser("ghost", "g", "g@example.com"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestClearExpiredResetTokens(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	expired := newUser("u1", "a", "a@example.com")
	expired.ResetTokenHash, expired.ResetTokenExpires = "old", &past
	live := newUser("u2", "b", "b@example.com")
	live.ResetTokenHash, live.ResetTokenExpires = "new", &future
	_ = db.Create(ctx, expired)
	_ = db.Create(ctx, live)

	n, err := db.ClearExpiredResetTokens(ctx, time.Now())
	if err != nil {
		t.Fatalf("ClearExpiredResetTokens: %v", err)
	}
	if n != 1 {
		t.Errorf("cleared %d, want 1", n)
	}
	if _, err := db.ByResetTokenHash(ctx, "old"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("expired token should be cleared")
	}
	if _, err := db.ByResetTokenHash(ctx, "new"); err != nil {
		t.Errorf("live token should remain: %v", err)
	}
}
