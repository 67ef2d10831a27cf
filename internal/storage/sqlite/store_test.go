package sqlite

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/tjfontaine/snaptrade-go/internal/storage"
)

func TestSQLiteStore_SaveAndGetUser(t *testing.T) {
	// Use in-memory SQLite with shared cache for testing
	store, err := New("file:memdb1?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	user := &storage.User{ID: "user-1", Secret: "secret-1"}
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}

	retrieved, err := store.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if retrieved.ID != user.ID {
		t.Errorf("ID = %v, want %v", retrieved.ID, user.ID)
	}
	if retrieved.Secret != "secret-1" {
		t.Errorf("Secret = %v, want secret-1", retrieved.Secret)
	}
	if !retrieved.CreatedAt.Equal(user.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", retrieved.CreatedAt, user.CreatedAt)
	}
}

func TestSQLiteStore_SaveUserReplacesSecret(t *testing.T) {
	store, err := New("file:memdb2?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := store.SaveUser(ctx, &storage.User{ID: "user-1", Secret: "old", CreatedAt: created}); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}

	replacement := &storage.User{ID: "user-1", Secret: "new"}
	if err := store.SaveUser(ctx, replacement); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}
	if !replacement.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt after replace = %v, want %v", replacement.CreatedAt, created)
	}

	retrieved, err := store.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if retrieved.Secret != "new" {
		t.Errorf("Secret = %v, want new", retrieved.Secret)
	}
}

func TestSQLiteStore_NotFound(t *testing.T) {
	store, err := New("file:memdb3?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if _, err := store.GetUser(ctx, "missing"); !errors.Is(err, storage.ErrUserNotFound) {
		t.Errorf("GetUser() error = %v, want ErrUserNotFound", err)
	}
	if err := store.DeleteUser(ctx, "missing"); !errors.Is(err, storage.ErrUserNotFound) {
		t.Errorf("DeleteUser() error = %v, want ErrUserNotFound", err)
	}
}

func TestSQLiteStore_DeleteAndList(t *testing.T) {
	store, err := New("file:memdb4?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for _, id := range []string{"charlie", "alpha", "bravo"} {
		if err := store.SaveUser(ctx, &storage.User{ID: id, Secret: id + "-secret"}); err != nil {
			t.Fatalf("SaveUser(%s) error = %v", id, err)
		}
	}

	if err := store.DeleteUser(ctx, "bravo"); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
	if users[0].ID != "alpha" || users[1].ID != "charlie" {
		t.Errorf("users = [%s %s], want [alpha charlie]", users[0].ID, users[1].ID)
	}
}

func TestSQLiteStore_Persistence(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "snaptrade-test-*.db")
	if err != nil {
		t.Fatalf("CreateTemp() error = %v", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	store1, err := New(tmpFile.Name())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := store1.SaveUser(ctx, &storage.User{ID: "persistent-user", Secret: "kept"}); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}
	store1.Close()

	store2, err := New(tmpFile.Name())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store2.Close()

	retrieved, err := store2.GetUser(ctx, "persistent-user")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if retrieved.Secret != "kept" {
		t.Errorf("Secret = %v, want kept", retrieved.Secret)
	}
}
