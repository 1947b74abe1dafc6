package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/bookshelf/internal/database"
	"github.com/avolkov/bookshelf/internal/entities"
)

type booksFixture struct {
	engine *gin.Engine
	db     *database.Database
}

func setupBooksFixture(t *testing.T) *booksFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, book := range []entities.Book{
		{Title: "Zeta", Author: "Frank Herbert", Rating: 4},
		{Title: "Alpha", Author: "Frank Herbert", Rating: 5},
		{Title: "Mono", Author: "William Gibson", Rating: 8.2},
	} {
		require.NoError(t, db.CreateBook(&book))
	}

	controller := NewBooksController(db)

	engine := gin.New()
	engine.SetHTMLTemplate(template.Must(template.New("books").Parse(
		`{{range .Books}}<li>{{.Title}}</li>{{end}}`)))
	engine.GET("/books", controller.ListBooks)
	engine.POST("/edit", controller.EditRating)
	engine.GET("/query", controller.QueryByAuthor)
	engine.PATCH("/edit-uri/:book_id", controller.UpdateRatingAPI)

	return &booksFixture{engine: engine, db: db}
}

func (f *booksFixture) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestListBooks_RendersCatalogInTitleOrder(t *testing.T) {
	f := setupBooksFixture(t)

	w := f.do(t, http.MethodGet, "/books", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<li>Alpha</li><li>Mono</li><li>Zeta</li>", w.Body.String())
}

func TestQueryByAuthor_Found(t *testing.T) {
	f := setupBooksFixture(t)

	w := f.do(t, http.MethodGet, "/query?author=Frank+Herbert", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Books []entities.Book `json:"books"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Books, 2)
	assert.Equal(t, "Alpha", body.Books[0].Title)
	assert.Equal(t, "Zeta", body.Books[1].Title)
}

func TestQueryByAuthor_UnknownAuthor(t *testing.T) {
	f := setupBooksFixture(t)

	w := f.do(t, http.MethodGet, "/query?author=Nobody", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t,
		`{"error": {"Not Found": "Sorry, we don't have a book by that author."}}`,
		w.Body.String())
}

func TestQueryByAuthor_MissingParam(t *testing.T) {
	f := setupBooksFixture(t)

	w := f.do(t, http.MethodGet, "/query", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRatingAPI_Success(t *testing.T) {
	f := setupBooksFixture(t)

	w := f.do(t, http.MethodPatch, "/edit-uri/1?new_rating=9.5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"response": {"success": "Successfully updated the rating."}}`,
		w.Body.String())

	book, err := f.db.GetBookByID(1)
	require.NoError(t, err)
	assert.Equal(t, 9.5, book.Rating)
}

func TestUpdateRatingAPI_UnknownBook(t *testing.T) {
	f := setupBooksFixture(t)

	w := f.do(t, http.MethodPatch, "/edit-uri/999?new_rating=5", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t,
		`{"error": {"Not Found": "Sorry a book with that id was not found in the database."}}`,
		w.Body.String())

	count, err := f.db.CountBooks()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "a failed update must not create a record")
}

func TestUpdateRatingAPI_InvalidInput(t *testing.T) {
	f := setupBooksFixture(t)

	tests := []struct {
		name   string
		target string
	}{
		{"non-numeric rating", "/edit-uri/1?new_rating=high"},
		{"missing rating", "/edit-uri/1"},
		{"non-numeric id", "/edit-uri/abc?new_rating=5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPatch, tt.target, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	// No write happened
	book, err := f.db.GetBookByID(1)
	require.NoError(t, err)
	assert.Equal(t, float64(4), book.Rating)
}

func TestEditRating_FormUpdatesAndRedirects(t *testing.T) {
	f := setupBooksFixture(t)

	form := url.Values{"id": {"2"}, "rating": {"6.5"}}
	w := f.do(t, http.MethodPost, "/edit", form)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/books", w.Header().Get("Location"))

	book, err := f.db.GetBookByID(2)
	require.NoError(t, err)
	assert.Equal(t, 6.5, book.Rating)
}

func TestEditRating_InvalidForm(t *testing.T) {
	f := setupBooksFixture(t)

	tests := []struct {
		name string
		form url.Values
		code int
	}{
		{"bad id", url.Values{"id": {"abc"}, "rating": {"5"}}, http.StatusBadRequest},
		{"bad rating", url.Values{"id": {"1"}, "rating": {"great"}}, http.StatusBadRequest},
		{"unknown book", url.Values{"id": {"999"}, "rating": {"5"}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/edit", tt.form)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}
