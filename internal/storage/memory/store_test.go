package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tjfontaine/snaptrade-go/internal/storage"
)

func TestMemoryStore_SaveAndGetUser(t *testing.T) {
	store := New()
	ctx := context.Background()

	user := &storage.User{ID: "user-1", Secret: "secret-1"}
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}
	if user.CreatedAt.IsZero() {
		t.Error("SaveUser() did not set CreatedAt")
	}

	retrieved, err := store.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if retrieved.Secret != "secret-1" {
		t.Errorf("Secret = %v, want secret-1", retrieved.Secret)
	}

	// Mutating the returned value must not touch the stored copy
	retrieved.Secret = "mutated"
	again, _ := store.GetUser(ctx, "user-1")
	if again.Secret != "secret-1" {
		t.Errorf("stored Secret = %v after caller mutation", again.Secret)
	}
}

func TestMemoryStore_SaveUserReplacesSecret(t *testing.T) {
	store := New()
	ctx := context.Background()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := store.SaveUser(ctx, &storage.User{ID: "user-1", Secret: "old", CreatedAt: created}); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}
	if err := store.SaveUser(ctx, &storage.User{ID: "user-1", Secret: "new"}); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}

	retrieved, err := store.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if retrieved.Secret != "new" {
		t.Errorf("Secret = %v, want new", retrieved.Secret)
	}
	if !retrieved.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", retrieved.CreatedAt, created)
	}
}

func TestMemoryStore_SaveUserRequiresID(t *testing.T) {
	if err := New().SaveUser(context.Background(), &storage.User{Secret: "s"}); err == nil {
		t.Error("expected error for empty ID")
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.GetUser(ctx, "missing"); !errors.Is(err, storage.ErrUserNotFound) {
		t.Errorf("GetUser() error = %v, want ErrUserNotFound", err)
	}
	if err := store.DeleteUser(ctx, "missing"); !errors.Is(err, storage.ErrUserNotFound) {
		t.Errorf("DeleteUser() error = %v, want ErrUserNotFound", err)
	}
}

func TestMemoryStore_DeleteUser(t *testing.T) {
	store := New()
	ctx := context.Background()

	_ = store.SaveUser(ctx, &storage.User{ID: "user-1", Secret: "s"})
	if err := store.DeleteUser(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := store.GetUser(ctx, "user-1"); !errors.Is(err, storage.ErrUserNotFound) {
		t.Errorf("GetUser() after delete error = %v", err)
	}
}

func TestMemoryStore_ListUsersSorted(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, id := range []string{"charlie", "alpha", "bravo"} {
		if err := store.SaveUser(ctx, &storage.User{ID: id, Secret: id}); err != nil {
			t.Fatalf("SaveUser(%s) error = %v", id, err)
		}
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("len(users) = %d, want 3", len(users))
	}
	for i, want := range []string{"alpha", "bravo", "charlie"} {
		if users[i].ID != want {
			t.Errorf("users[%d].ID = %v, want %v", i, users[i].ID, want)
		}
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%26))
			_ = store.SaveUser(ctx, &storage.User{ID: id, Secret: "s"})
			_, _ = store.GetUser(ctx, id)
			_, _ = store.ListUsers(ctx)
		}(i)
	}
	wg.Wait()

	users, _ := store.ListUsers(ctx)
	if len(users) != 26 {
		t.Errorf("len(users) = %d, want 26", len(users))
	}
}
