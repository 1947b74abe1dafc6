package database

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/avolkov/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedBooks(t *testing.T, db *Database, books ...entities.Book) {
	t.Helper()
	for i := range books {
		if err := db.CreateBook(&books[i]); err != nil {
			t.Fatalf("failed to create book %q: %v", books[i].Title, err)
		}
	}
}

func TestGetAllBooks_OrderedByTitle(t *testing.T) {
	db := setupTestDB(t)
	seedBooks(t, db,
		entities.Book{Title: "Zeta", Author: "A", Rating: 1},
		entities.Book{Title: "Alpha", Author: "B", Rating: 2},
		entities.Book{Title: "Mono", Author: "C", Rating: 3},
	)

	books, err := db.GetAllBooks()
	if err != nil {
		t.Fatalf("GetAllBooks() error = %v", err)
	}

	want := []string{"Alpha", "Mono", "Zeta"}
	if len(books) != len(want) {
		t.Fatalf("got %d books, want %d", len(books), len(want))
	}
	for i, title := range want {
		if books[i].Title != title {
			t.Errorf("books[%d].Title = %q, want %q", i, books[i].Title, title)
		}
	}
}

func TestGetBookByID(t *testing.T) {
	db := setupTestDB(t)
	seedBooks(t, db, entities.Book{Title: "Dune", Author: "Frank Herbert", Rating: 9})

	book, err := db.GetBookByID(1)
	if err != nil {
		t.Fatalf("GetBookByID() error = %v", err)
	}
	if book.Title != "Dune" {
		t.Errorf("book.Title = %q, want Dune", book.Title)
	}

	if _, err := db.GetBookByID(42); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("GetBookByID(42) error = %v, want ErrBookNotFound", err)
	}
}

func TestCreateBook_DuplicateTitleRejected(t *testing.T) {
	db := setupTestDB(t)
	seedBooks(t, db, entities.Book{Title: "Dune", Author: "Frank Herbert", Rating: 9})

	err := db.CreateBook(&entities.Book{Title: "Dune", Author: "Someone Else", Rating: 1})
	if err == nil {
		t.Fatal("expected unique constraint violation for duplicate title")
	}
}

func TestUpdateBookRating(t *testing.T) {
	db := setupTestDB(t)
	seedBooks(t, db, entities.Book{Title: "Dune", Author: "Frank Herbert", Rating: 9})

	updated, err := db.UpdateBookRating(1, 7.5)
	if err != nil {
		t.Fatalf("UpdateBookRating() error = %v", err)
	}
	if updated.Rating != 7.5 {
		t.Errorf("updated.Rating = %v, want 7.5", updated.Rating)
	}

	// Write-then-read consistency
	book, err := db.GetBookByID(1)
	if err != nil {
		t.Fatalf("GetBookByID() error = %v", err)
	}
	if book.Rating != 7.5 {
		t.Errorf("book.Rating = %v after update, want 7.5", book.Rating)
	}

	// Idempotent: repeating the update yields the same stored state
	if _, err := db.UpdateBookRating(1, 7.5); err != nil {
		t.Fatalf("repeated UpdateBookRating() error = %v", err)
	}
	book, _ = db.GetBookByID(1)
	if book.Rating != 7.5 {
		t.Errorf("book.Rating = %v after repeated update, want 7.5", book.Rating)
	}

	if _, err := db.UpdateBookRating(42, 5); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("UpdateBookRating(42) error = %v, want ErrBookNotFound", err)
	}
}

func TestGetBooksByAuthor(t *testing.T) {
	db := setupTestDB(t)
	seedBooks(t, db,
		entities.Book{Title: "Dune", Author: "Frank Herbert", Rating: 9},
		entities.Book{Title: "Children of Dune", Author: "Frank Herbert", Rating: 8},
		entities.Book{Title: "Neuromancer", Author: "William Gibson", Rating: 8.2},
	)

	books, err := db.GetBooksByAuthor("Frank Herbert")
	if err != nil {
		t.Fatalf("GetBooksByAuthor() error = %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("got %d books, want 2", len(books))
	}

	// Exact match only, no substring matching
	books, err = db.GetBooksByAuthor("Frank")
	if err != nil {
		t.Fatalf("GetBooksByAuthor() error = %v", err)
	}
	if len(books) != 0 {
		t.Errorf("got %d books for partial author, want 0", len(books))
	}
}

func TestUserQueries(t *testing.T) {
	db := setupTestDB(t)

	user := &entities.User{Email: "reader@example.com", Password: "hash", Name: "Reader"}
	if err := db.CreateUser(user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.ID == 0 {
		t.Fatal("user.ID is zero after create")
	}

	byEmail, err := db.GetUserByEmail("reader@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("byEmail.ID = %d, want %d", byEmail.ID, user.ID)
	}

	byID, err := db.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if byID.Email != "reader@example.com" {
		t.Errorf("byID.Email = %q", byID.Email)
	}

	// Duplicate email rejected by the unique index and translated to the
	// gorm sentinel
	err = db.CreateUser(&entities.User{Email: "reader@example.com", Password: "hash2", Name: "Other"})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("CreateUser() with duplicate email error = %v, want gorm.ErrDuplicatedKey", err)
	}
}
