package services

import (
	"errors"
	"testing"

	"github.com/raynaldlao/Blog-Comment/internal/models"
	"github.com/raynaldlao/Blog-Comment/internal/utils"
)

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	s := NewAccountService(db)

	account, err := s.Register("vador", "hunter22", "vador@empire.com", models.RoleAuthor)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if account.ID == 0 {
		t.Error("expected an assigned id")
	}
	if account.Role != models.RoleAuthor {
		t.Errorf("expected role author, got %s", account.Role)
	}
	if account.Password == "hunter22" {
		t.Error("password stored in plaintext")
	}
	if !utils.CheckPasswordHash("hunter22", account.Password) {
		t.Error("stored hash does not verify against the password")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	s := NewAccountService(db)

	if _, err := s.Register("vador", "hunter22", "", models.RoleUser); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	_, err := s.Register("vador", "other", "", models.RoleUser)
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("want ErrUsernameTaken, got %v", err)
	}
	if got := countRows(t, db, &models.Account{}, "username = ?", "vador"); got != 1 {
		t.Errorf("expected 1 account, found %d", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	s := NewAccountService(db)

	if _, err := s.Register("  ", "hunter22", "", models.RoleUser); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("blank username: want ErrEmptyContent, got %v", err)
	}
	if _, err := s.Register("vador", "", "", models.RoleUser); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("empty password: want ErrEmptyContent, got %v", err)
	}
	if _, err := s.Register("vador", "hunter22", "", models.Role("emperor")); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("bad role: want ErrInvalidRole, got %v", err)
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	db := newTestDB(t)

	author := makeAccount(t, db, "author", models.RoleAuthor)
	other := makeAccount(t, db, "other", models.RoleUser)

	// Articles the author owns, with comments from both users.
	owned := makeArticle(t, db, author.ID, "Owned")
	makeComment(t, db, owned.ID, other.ID, "on owned", nil)

	// A comment the author left on someone else's article, with a reply
	// from the other user hanging off it.
	foreign := makeArticle(t, db, other.ID, "Foreign")
	stray := makeComment(t, db, foreign.ID, author.ID, "stray", nil)
	makeComment(t, db, foreign.ID, other.ID, "reply to stray", &stray.ID)

	s := NewAccountService(db)
	if err := s.Delete(author.ID, models.RoleAdmin); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if got := countRows(t, db, &models.Account{}, "id = ?", author.ID); got != 0 {
		t.Error("account still present")
	}
	if got := countRows(t, db, &models.Article{}, "author_id = ?", author.ID); got != 0 {
		t.Error("authored articles still present")
	}
	if got := countRows(t, db, &models.Comment{}, "article_id = ?", owned.ID); got != 0 {
		t.Error("comments on the deleted article still present")
	}
	if got := countRows(t, db, &models.Comment{}, "article_id = ?", foreign.ID); got != 0 {
		t.Error("the stray comment and its reply should both be gone")
	}
	// The unrelated article and account survive.
	if got := countRows(t, db, &models.Article{}, "id = ?", foreign.ID); got != 1 {
		t.Error("unrelated article was deleted")
	}
	if got := countRows(t, db, &models.Account{}, "id = ?", other.ID); got != 1 {
		t.Error("unrelated account was deleted")
	}
}

func TestDeleteAccountAuthorization(t *testing.T) {
	db := newTestDB(t)
	victim := makeAccount(t, db, "victim", models.RoleUser)

	s := NewAccountService(db)
	if err := s.Delete(victim.ID, models.RoleAuthor); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("author role: want ErrUnauthorized, got %v", err)
	}
	if err := s.Delete(9999, models.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing account: want ErrNotFound, got %v", err)
	}
}
