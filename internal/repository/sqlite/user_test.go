package sqlite

import (
	"context"
	"testing"

	"evalvault/internal/domain"
	"evalvault/internal/repository"
)

func TestUserAdd(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUsers(store)

	t.Run("add and fetch back", func(t *testing.T) {
		id, err := users.Add(ctx, "alice", "secret", "Ally", "Alice Liddell")
		assertNoError(t, err)
		if id == 0 {
			t.Fatal("expected a non-zero id")
		}

		user, err := users.GetByUsername(ctx, "alice")
		assertNoError(t, err)
		if user == nil {
			t.Fatal("expected user, got nil")
		}
		assertEqual(t, id, user.ID)
		assertEqual(t, "alice", user.Username)
		assertEqual(t, "secret", user.Password)
		assertEqual(t, "Ally", user.Nickname)
		assertEqual(t, "Alice Liddell", user.FullName)
		if user.CreatedAt.IsZero() {
			t.Fatal("expected created_at to be stamped")
		}
		if user.UpdatedAt != nil {
			t.Fatal("updated_at must be nil before the first mutation")
		}
	})

	t.Run("full name is optional", func(t *testing.T) {
		_, err := users.Add(ctx, "bob", "pw", "Bob", "")
		assertNoError(t, err)

		user, err := users.GetByUsername(ctx, "bob")
		assertNoError(t, err)
		assertEqual(t, "", user.FullName)
	})

	t.Run("duplicate username conflicts and leaves row count unchanged", func(t *testing.T) {
		before, err := store.Count(ctx, "user_form")
		assertNoError(t, err)

		_, err = users.Add(ctx, "alice", "other", "Other", "")
		if !repository.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}

		after, err := store.Count(ctx, "user_form")
		assertNoError(t, err)
		assertEqual(t, before, after)
	})

	t.Run("required fields validated", func(t *testing.T) {
		tests := []struct {
			name     string
			username string
			password string
			nickname string
		}{
			{name: "missing username", username: "", password: "pw", nickname: "n"},
			{name: "missing password", username: "u", password: "", nickname: "n"},
			{name: "missing nickname", username: "u", password: "pw", nickname: ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := users.Add(ctx, tt.username, tt.password, tt.nickname, "")
				if !repository.IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
			})
		}
	})
}

func TestUserGetByUsername(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUsers(store)

	t.Run("missing user returns nil without error", func(t *testing.T) {
		user, err := users.GetByUsername(ctx, "nobody")
		assertNoError(t, err)
		if user != nil {
			t.Fatalf("expected nil, got %+v", user)
		}
	})
}

func TestUserListAll(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUsers(store)

	t.Run("empty table yields empty slice", func(t *testing.T) {
		all, err := users.ListAll(ctx)
		assertNoError(t, err)
		assertEqual(t, 0, len(all))
	})

	t.Run("returns all rows in insertion order", func(t *testing.T) {
		for _, name := range []string{"u1", "u2", "u3"} {
			_, err := users.Add(ctx, name, "pw", name, "")
			assertNoError(t, err)
		}
		all, err := users.ListAll(ctx)
		assertNoError(t, err)
		assertEqual(t, 3, len(all))
		assertEqual(t, "u1", all[0].Username)
		assertEqual(t, "u3", all[2].Username)
	})
}

func TestUserUpdate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUsers(store)

	_, err := users.Add(ctx, "carol", "pw", "Carol", "")
	assertNoError(t, err)

	t.Run("update stamps updated_at and applies fields", func(t *testing.T) {
		nickname := "Caz"
		fullName := "Carol Danvers"
		err := users.Update(ctx, "carol", domain.UserChanges{Nickname: &nickname, FullName: &fullName})
		assertNoError(t, err)

		user, err := users.GetByUsername(ctx, "carol")
		assertNoError(t, err)
		assertEqual(t, "Caz", user.Nickname)
		assertEqual(t, "Carol Danvers", user.FullName)
		assertEqual(t, "pw", user.Password)
		if user.UpdatedAt == nil {
			t.Fatal("expected updated_at after mutation")
		}
		if user.CreatedAt.IsZero() {
			t.Fatal("created_at must survive updates")
		}
	})

	t.Run("missing user yields not found", func(t *testing.T) {
		nickname := "x"
		err := users.Update(ctx, "nobody", domain.UserChanges{Nickname: &nickname})
		if !repository.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestUserDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUsers(store)

	_, err := users.Add(ctx, "dave", "pw", "Dave", "")
	assertNoError(t, err)

	t.Run("delete existing user", func(t *testing.T) {
		assertNoError(t, users.Delete(ctx, "dave"))

		user, err := users.GetByUsername(ctx, "dave")
		assertNoError(t, err)
		if user != nil {
			t.Fatal("expected user gone after delete")
		}
	})

	t.Run("repeated delete reports not found each time", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			err := users.Delete(ctx, "dave")
			if !repository.IsNotFound(err) {
				t.Fatalf("attempt %d: expected not found, got %v", i+1, err)
			}
		}
	})
}
