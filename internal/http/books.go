package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/bookshelf/internal/auth"
	"github.com/avolkov/bookshelf/internal/database"
	"github.com/avolkov/bookshelf/internal/entities"
)

// BookStore defines the catalog operations the controller needs.
// *database.Database satisfies it.
type BookStore interface {
	GetAllBooks() ([]entities.Book, error)
	GetBookByID(id uint) (*entities.Book, error)
	GetBooksByAuthor(author string) ([]entities.Book, error)
	UpdateBookRating(id uint, rating float64) (*entities.Book, error)
}

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{
		store: store,
	}
}

// ListBooks renders the catalog ordered by title.
func (controller *BooksController) ListBooks(c *gin.Context) {
	books, err := controller.store.GetAllBooks()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading books: %s", err.Error())
		return
	}

	c.HTML(http.StatusOK, "books", gin.H{
		"Title":       "Book Catalog",
		"Books":       books,
		"CurrentUser": auth.GetCurrentUser(c),
	})
}

// EditPage renders the rating edit form for a single book.
// Registered behind RequireAuth.
func (controller *BooksController) EditPage(c *gin.Context) {
	idStr := c.Query("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid book ID")
		return
	}

	book, err := controller.store.GetBookByID(uint(id))
	if err != nil {
		if errors.Is(err, database.ErrBookNotFound) {
			c.String(http.StatusNotFound, "Book not found")
			return
		}
		c.String(http.StatusInternalServerError, "Error loading book: %s", err.Error())
		return
	}

	c.HTML(http.StatusOK, "edit", gin.H{
		"Title":     "Edit Rating",
		"Book":      book,
		"CSRFToken": auth.GetCSRFToken(c),
	})
}

// EditRating handles the edit form submission and overwrites the rating.
// Registered behind RequireAuth.
func (controller *BooksController) EditRating(c *gin.Context) {
	idStr := c.PostForm("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid book ID")
		return
	}

	rating, ok := parseRating(c.PostForm("rating"))
	if !ok {
		c.String(http.StatusBadRequest, "Invalid rating")
		return
	}

	if _, err := controller.store.UpdateBookRating(uint(id), rating); err != nil {
		if errors.Is(err, database.ErrBookNotFound) {
			c.String(http.StatusNotFound, "Book not found")
			return
		}
		c.String(http.StatusInternalServerError, "Error updating book: %s", err.Error())
		return
	}

	c.Redirect(http.StatusFound, "/books")
}

// QueryByAuthor returns all books whose author matches exactly.
func (controller *BooksController) QueryByAuthor(c *gin.Context) {
	author := c.Query("author")
	if author == "" {
		respondBadRequestJSON(c, "author query parameter is required")
		return
	}

	books, err := controller.store.GetBooksByAuthor(author)
	if err != nil {
		respondInternalError(c, err, "query books by author")
		return
	}

	if len(books) == 0 {
		respondNotFoundJSON(c, "Sorry, we don't have a book by that author.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books})
}

// UpdateRatingAPI overwrites a book's rating via PATCH. Idempotent: the same
// input always yields the same stored state. Deliberately open - no
// authentication check, unlike the form-based edit flow.
func (controller *BooksController) UpdateRatingAPI(c *gin.Context) {
	id, ok := parseIDParam(c, "book_id")
	if !ok {
		return
	}

	rating, ok := parseRating(c.Query("new_rating"))
	if !ok {
		respondBadRequestJSON(c, "new_rating query parameter must be a number")
		return
	}

	if _, err := controller.store.UpdateBookRating(id, rating); err != nil {
		if errors.Is(err, database.ErrBookNotFound) {
			respondNotFoundJSON(c, "Sorry a book with that id was not found in the database.")
			return
		}
		respondInternalError(c, err, "update book rating")
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": gin.H{"success": "Successfully updated the rating."}})
}
