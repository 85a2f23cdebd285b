package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func token(access, refresh string, ttl time.Duration) *oauth2.Token {
	return &oauth2.Token{AccessToken: access, RefreshToken: refresh, Expiry: time.Now().Add(ttl)}
}

func TestCredentialRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		c := models.NewCredential("user-1", "Test User", token("at", "rt", time.Hour))

		if err := repo.Create(c); err != nil {
			t.Fatalf("failed to create credential: %v", err)
		}
		if c.ID() == "" {
			t.Error("credential ID should be set after creation")
		}
	})

	t.Run("Create rejects duplicates and invalid", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))

		if err := repo.Create(models.NewCredential("user-1", "", token("at", "rt", time.Hour))); err != nil {
			t.Fatalf("failed to create credential: %v", err)
		}
		err := repo.Create(models.NewCredential("user-1", "", token("at2", "rt2", time.Hour)))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for duplicate user, got %v", err)
		}

		err = repo.Create(models.NewCredential("user-2", "", token("", "", time.Hour)))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty token, got %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		c := models.NewCredential("user-1", "Test User", token("at", "rt", time.Hour))
		if err := repo.Create(c); err != nil {
			t.Fatalf("failed to create credential: %v", err)
		}

		got, err := repo.Get(c.ID())
		if err != nil {
			t.Fatalf("failed to get credential: %v", err)
		}
		if got.UserID() != "user-1" || got.DisplayName() != "Test User" {
			t.Errorf("unexpected credential %s/%s", got.UserID(), got.DisplayName())
		}
		if got.AccessToken() != "at" || got.RefreshToken() != "rt" || got.TokenType() != "Bearer" {
			t.Errorf("unexpected token fields %s/%s/%s", got.AccessToken(), got.RefreshToken(), got.TokenType())
		}
		if got.Expiry().Unix() != c.Expiry().Unix() {
			t.Errorf("expected expiry %v, got %v", c.Expiry(), got.Expiry())
		}

		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrCredentialNotFound) {
			t.Errorf("expected ErrCredentialNotFound, got %v", err)
		}
	})

	t.Run("zero expiry round trips", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		c := models.NewCredential("user-1", "", &oauth2.Token{AccessToken: "at"})
		if err := repo.Create(c); err != nil {
			t.Fatalf("failed to create credential: %v", err)
		}

		got, err := repo.GetByUserID("user-1")
		if err != nil {
			t.Fatalf("failed to get credential: %v", err)
		}
		if !got.Expiry().IsZero() || got.Expired(time.Minute) {
			t.Errorf("expected no expiry, got %v", got.Expiry())
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		c := models.NewCredential("user-1", "", token("at", "rt", time.Hour))
		if err := repo.Create(c); err != nil {
			t.Fatalf("failed to create credential: %v", err)
		}

		c.SetToken(token("at-2", "", time.Hour))
		if err := repo.Update(c); err != nil {
			t.Fatalf("failed to update credential: %v", err)
		}

		got, _ := repo.Get(c.ID())
		if got.AccessToken() != "at-2" || got.RefreshToken() != "rt" {
			t.Errorf("unexpected tokens %s/%s", got.AccessToken(), got.RefreshToken())
		}

		ghost := models.NewCredential("ghost", "", token("at", "", time.Hour))
		ghost.SetID("ghost-id")
		if err := repo.Update(ghost); !errors.Is(err, shared.ErrCredentialNotFound) {
			t.Errorf("expected ErrCredentialNotFound, got %v", err)
		}
	})

	t.Run("Save upserts by user", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		first := models.NewCredential("user-1", "Old", token("at-1", "rt-1", time.Hour))
		if err := repo.Save(first); err != nil {
			t.Fatalf("failed to save credential: %v", err)
		}

		second := models.NewCredential("user-1", "New", token("at-2", "", time.Hour))
		if err := repo.Save(second); err != nil {
			t.Fatalf("failed to save credential: %v", err)
		}
		if second.ID() != first.ID() {
			t.Errorf("expected id %s to be reused, got %s", first.ID(), second.ID())
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list credentials: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("expected 1 credential, got %d", len(all))
		}
		if all[0].AccessToken() != "at-2" || all[0].RefreshToken() != "rt-1" || all[0].DisplayName() != "New" {
			t.Errorf("unexpected stored credential %s/%s/%s", all[0].AccessToken(), all[0].RefreshToken(), all[0].DisplayName())
		}
	})

	t.Run("Latest", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))

		if _, err := repo.Latest(); !errors.Is(err, shared.ErrCredentialNotFound) {
			t.Errorf("expected ErrCredentialNotFound on empty store, got %v", err)
		}

		a := models.NewCredential("user-a", "", token("at-a", "", time.Hour))
		b := models.NewCredential("user-b", "", token("at-b", "", time.Hour))
		repo.Save(a)
		repo.Save(b)

		a.SetToken(token("at-a2", "", time.Hour))
		time.Sleep(5 * time.Millisecond)
		if err := repo.Save(a); err != nil {
			t.Fatalf("failed to save credential: %v", err)
		}

		latest, err := repo.Latest()
		if err != nil {
			t.Fatalf("failed to get latest: %v", err)
		}
		if latest.UserID() != "user-a" {
			t.Errorf("expected user-a, got %s", latest.UserID())
		}
	})

	t.Run("List by user", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		repo.Save(models.NewCredential("user-a", "", token("at-a", "", time.Hour)))
		repo.Save(models.NewCredential("user-b", "", token("at-b", "", time.Hour)))

		list, err := repo.List(map[string]any{"user_id": "user-b"})
		if err != nil {
			t.Fatalf("failed to list credentials: %v", err)
		}
		if len(list) != 1 || list[0].UserID() != "user-b" {
			t.Errorf("unexpected list %v", list)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		c := models.NewCredential("user-1", "", token("at", "", time.Hour))
		repo.Create(c)

		if err := repo.Delete(c.ID()); err != nil {
			t.Fatalf("failed to delete credential: %v", err)
		}
		if _, err := repo.Get(c.ID()); !errors.Is(err, shared.ErrCredentialNotFound) {
			t.Errorf("expected ErrCredentialNotFound after delete, got %v", err)
		}
		if err := repo.Delete(c.ID()); !errors.Is(err, shared.ErrCredentialNotFound) {
			t.Errorf("expected ErrCredentialNotFound on second delete, got %v", err)
		}
	})
}
