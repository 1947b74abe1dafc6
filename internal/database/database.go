package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avolkov/bookshelf/internal/entities"
)

// ErrBookNotFound is returned when a book lookup by primary key misses.
var ErrBookNotFound = errors.New("book not found")

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Map driver errors onto gorm sentinels so callers can match
		// gorm.ErrDuplicatedKey on unique index violations.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateBook inserts a catalog entry. The unique index on title rejects
// duplicates.
func (d *Database) CreateBook(book *entities.Book) error {
	return d.DB.Create(book).Error
}

func (d *Database) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (d *Database) GetBookByTitle(title string) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.Where("title = ?", title).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// GetAllBooks returns the whole catalog in ascending title order.
func (d *Database) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := d.DB.Order("title ASC").Find(&books).Error
	return books, err
}

// GetBooksByAuthor returns all books whose author matches exactly.
func (d *Database) GetBooksByAuthor(author string) ([]entities.Book, error) {
	var books []entities.Book
	err := d.DB.Where("author = ?", author).Order("title ASC").Find(&books).Error
	return books, err
}

// UpdateBookRating overwrites the rating of a single book. The read and the
// write run inside one transaction so concurrent edits to the same id cannot
// interleave into a lost update.
func (d *Database) UpdateBookRating(id uint, rating float64) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}
		book.Rating = rating
		return tx.Model(&book).Update("rating", rating).Error
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (d *Database) CountBooks() (int64, error) {
	var count int64
	err := d.DB.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

func (d *Database) CreateUser(user *entities.User) error {
	return d.DB.Create(user).Error
}

func (d *Database) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := d.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) GetUserByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := d.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
