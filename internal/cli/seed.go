// Package cli implements the administrative commands of the bookshelf
// binary. Catalog entries are inserted out of band via `seed`; the web
// application itself only ever updates ratings.
package cli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/avolkov/bookshelf/internal/config"
	"github.com/avolkov/bookshelf/internal/database"
	"github.com/avolkov/bookshelf/internal/entities"
)

// sampleBooks is inserted when no -file is given.
var sampleBooks = []entities.Book{
	{Title: "Harry Potter", Author: "J. K. Rowling", Rating: 9.3},
	{Title: "The Hobbit", Author: "J. R. R. Tolkien", Rating: 8.8},
	{Title: "Dune", Author: "Frank Herbert", Rating: 9.0},
	{Title: "Neuromancer", Author: "William Gibson", Rating: 8.2},
}

// SeedCommand inserts catalog books from a JSON file or a built-in sample set.
type SeedCommand struct {
	DatabasePath string
	FilePath     string
	Verbose      bool
}

func NewSeedCommand() *SeedCommand {
	return &SeedCommand{}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the SQLite database file")
	fs.StringVar(&cmd.FilePath, "file", "", "Path to a JSON file with books to insert (array of {title, author, rating})")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Insert catalog books into the database. Books whose title already\n")
		fmt.Fprintf(os.Stderr, "exists are skipped. Without -file, a small sample catalog is inserted.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *SeedCommand) Run() error {
	books := sampleBooks
	if cmd.FilePath != "" {
		data, err := os.ReadFile(cmd.FilePath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", cmd.FilePath, err)
		}
		books = nil
		if err := json.Unmarshal(data, &books); err != nil {
			return fmt.Errorf("failed to parse %s: %w", cmd.FilePath, err)
		}
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	inserted, skipped := 0, 0
	for i := range books {
		book := books[i]
		if book.Title == "" || book.Author == "" {
			return fmt.Errorf("book %d is missing a title or author", i)
		}

		_, err := db.GetBookByTitle(book.Title)
		if err == nil {
			skipped++
			if cmd.Verbose {
				fmt.Printf("Skipping %q (already in catalog)\n", book.Title)
			}
			continue
		}
		if !errors.Is(err, database.ErrBookNotFound) {
			return fmt.Errorf("failed to look up %q: %w", book.Title, err)
		}

		book.ID = 0
		if err := db.CreateBook(&book); err != nil {
			return fmt.Errorf("failed to insert %q: %w", book.Title, err)
		}
		inserted++
		if cmd.Verbose {
			fmt.Printf("Inserted %q by %s (rating %.1f)\n", book.Title, book.Author, book.Rating)
		}
	}

	fmt.Printf("Seed complete: %d inserted, %d skipped\n", inserted, skipped)
	return nil
}
