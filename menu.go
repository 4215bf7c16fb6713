package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"library-catalog/library"
)

const (
	wideRule   = 80
	narrowRule = 50
)

// App is the menu's state: one catalog, one input stream, one output.
type App struct {
	mgr   *library.LibraryManager
	in    io.Reader
	out   io.Writer
	tty   bool // pause between actions when a person is typing
	done  bool
	ctx   context.Context
	lines <-chan string
}

// NewApp wires the menu to mgr. When tty is false the menu never waits for Enter.
func NewApp(mgr *library.LibraryManager, in io.Reader, out io.Writer, tty bool) *App {
	return &App{mgr: mgr, in: in, out: out, tty: tty, ctx: context.Background()}
}

// startReader scans input on its own goroutine so a blocked prompt can
// still be abandoned when ctx is cancelled. The channel closes at EOF.
func (a *App) startReader(ctx context.Context) {
	lines := make(chan string)
	a.lines = lines
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(a.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (a *App) printf(format string, args ...any) { fmt.Fprintf(a.out, format, args...) }
func (a *App) println(args ...any)               { fmt.Fprintln(a.out, args...) }

func (a *App) rule(n int) { a.println(strings.Repeat("=", n)) }

// readLine prompts and returns the trimmed next line; ok is false at EOF
// or once the context is cancelled.
func (a *App) readLine(prompt string) (string, bool) {
	a.printf("%s", prompt)
	select {
	case line, ok := <-a.lines:
		if !ok {
			a.done = true
			return "", false
		}
		return strings.TrimSpace(line), true
	case <-a.ctx.Done():
		a.done = true
		return "", false
	}
}

// readInt parses the next line as an integer. Non-numeric input is an
// InvalidInput error, never fatal.
func (a *App) readInt(prompt string) (int, error) {
	s, ok := a.readLine(prompt)
	if !ok {
		return 0, io.EOF
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, library.InvalidInput("Invalid number: %q", s)
	}
	return n, nil
}

// Run loops until the user picks 0, input ends, or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	a.ctx = ctx
	a.startReader(ctx)

	a.println("WELCOME TO LIBRARY MANAGEMENT SYSTEM")
	a.rule(41)

	for !a.done {
		if ctx.Err() != nil {
			return
		}
		a.displayMenu()
		choice, err := a.readInt("\nEnter your choice: ")
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			choice = -1
		}

		switch choice {
		case 1:
			a.handleListBooks()
		case 2:
			a.handleAddBook()
		case 3:
			a.handleSearch()
		case 4:
			a.handleBorrow()
		case 5:
			a.handleReturn()
		case 6:
			a.handleAvailable()
		case 7:
			a.handleBorrowed()
		case 8:
			a.handleCategory()
		case 9:
			a.handleStatistics()
		case 10:
			if a.mgr.CanExport() {
				a.handleExport(ctx)
				break
			}
			a.println("Invalid choice. Please try again.")
		case 0:
			a.println("Thank you for using Library Management System!")
			return
		default:
			a.println("Invalid choice. Please try again.")
		}

		if a.tty && !a.done {
			a.readLine("\nPress Enter to continue...")
			a.println()
		}
	}
}

func (a *App) displayMenu() {
	a.println("\nLIBRARY MANAGEMENT SYSTEM - MENU")
	a.rule(36)
	a.println("1. Display All Books")
	a.println("2. Add New Book")
	a.println("3. Search Books")
	a.println("4. Borrow Book")
	a.println("5. Return Book")
	a.println("6. Display Available Books")
	a.println("7. Display Borrowed Books")
	a.println("8. Display Books by Category")
	a.println("9. Library Statistics")
	if a.mgr.CanExport() {
		a.printf("10. Export Catalog to %s\n", a.mgr.ExportPath())
	}
	a.println("0. Exit")
}

// report renders a catalog error; anything else is unexpected and shown raw.
func (a *App) report(err error) {
	if library.CodeOf(err) == "" {
		a.printf("Error: %v\n", err)
		return
	}
	a.println(err.Error())
}

func (a *App) listBooks(books []*library.Book) {
	for _, b := range books {
		a.println(b.String())
	}
}

func (a *App) handleListBooks() {
	books := a.mgr.Books()
	if len(books) == 0 {
		a.println("No books in the library.")
		return
	}
	a.println("\nALL BOOKS IN LIBRARY:")
	a.rule(wideRule)
	a.listBooks(books)
}

func (a *App) handleAddBook() {
	a.println("\nADD NEW BOOK")
	a.rule(16)

	title, ok := a.readLine("Enter book title: ")
	if !ok {
		return
	}
	author, ok := a.readLine("Enter author name: ")
	if !ok {
		return
	}
	category, ok := a.readLine("Enter category: ")
	if !ok {
		return
	}

	b, err := a.mgr.AddBook(title, author, category)
	if err != nil {
		a.printf("Error adding book: %v\n", err)
		return
	}
	a.printf("Book added successfully: %s (ID %d)\n", b.Title, b.ID)
}

func (a *App) handleSearch() {
	a.println("\nSEARCH BOOKS")
	a.rule(15)
	a.println("1. Search by Title")
	a.println("2. Search by Author")

	choice, err := a.readInt("Enter your choice: ")
	if errors.Is(err, io.EOF) {
		return
	}
	if err != nil {
		choice = -1
	}

	switch choice {
	case 1:
		q, ok := a.readLine("Enter title to search: ")
		if !ok {
			return
		}
		a.printf("\nSearch Results for Title: '%s'\n", q)
		a.rule(narrowRule)
		if books := a.mgr.SearchByTitle(q); len(books) > 0 {
			a.listBooks(books)
		} else {
			a.printf("No books found with title containing: %s\n", q)
		}
	case 2:
		q, ok := a.readLine("Enter author to search: ")
		if !ok {
			return
		}
		a.printf("\nSearch Results for Author: '%s'\n", q)
		a.rule(narrowRule)
		if books := a.mgr.SearchByAuthor(q); len(books) > 0 {
			a.listBooks(books)
		} else {
			a.printf("No books found by author: %s\n", q)
		}
	default:
		a.println("Invalid search option.")
	}
}

func (a *App) handleBorrow() {
	a.println("\nBORROW BOOK")
	a.rule(15)
	a.handleAvailable()

	id, err := a.readInt("\nEnter Book ID to borrow: ")
	if errors.Is(err, io.EOF) {
		return
	}
	if err != nil {
		a.report(err)
		return
	}
	name, ok := a.readLine("Enter borrower name: ")
	if !ok {
		return
	}

	b, err := a.mgr.BorrowBook(id, name)
	if err != nil {
		a.report(err)
		return
	}
	a.printf("Book '%s' borrowed successfully by %s\n", b.Title, b.Borrower)
	a.printf("Borrow Date: %s\n", b.BorrowDate)
}

func (a *App) handleReturn() {
	a.println("\nRETURN BOOK")
	a.rule(15)
	a.handleBorrowed()

	id, err := a.readInt("\nEnter Book ID to return: ")
	if errors.Is(err, io.EOF) {
		return
	}
	if err != nil {
		a.report(err)
		return
	}

	r, err := a.mgr.ReturnBook(id)
	if err != nil {
		a.report(err)
		return
	}
	a.printf("Book '%s' returned successfully by %s\n", r.Book.Title, r.PreviousBorrower)
}

func (a *App) handleAvailable() {
	a.println("\nAVAILABLE BOOKS:")
	a.rule(wideRule)
	books := a.mgr.AvailableBooks()
	if len(books) == 0 {
		a.println("No books are currently available.")
		return
	}
	a.listBooks(books)
}

func (a *App) handleBorrowed() {
	a.println("\nBORROWED BOOKS:")
	a.rule(wideRule)
	books := a.mgr.BorrowedBooks()
	if len(books) == 0 {
		a.println("No books are currently borrowed.")
		return
	}
	for _, b := range books {
		a.printf("%s | Borrowed on: %s\n", b, b.BorrowDate)
	}
}

func (a *App) handleCategory() {
	category, ok := a.readLine("Enter category name: ")
	if !ok {
		return
	}
	a.printf("\nBooks in Category: '%s'\n", category)
	a.rule(narrowRule)

	books, err := a.mgr.BooksInCategory(category)
	if err != nil {
		a.report(err)
		return
	}
	a.listBooks(books)
}

func (a *App) handleStatistics() {
	writeStatistics(a.out, a.mgr.Statistics())
}

func writeStatistics(w io.Writer, s library.Stats) {
	fmt.Fprintln(w, "\nLIBRARY STATISTICS:")
	fmt.Fprintln(w, strings.Repeat("=", 30))
	fmt.Fprintf(w, "Total Books: %d\n", s.Total)
	fmt.Fprintf(w, "Available Books: %d\n", s.Available)
	fmt.Fprintf(w, "Borrowed Books: %d\n", s.Borrowed)
	fmt.Fprintf(w, "Categories: %d\n", len(s.Categories))

	fmt.Fprintln(w, "\nBooks by Category:")
	for _, c := range s.Categories {
		fmt.Fprintf(w, "   - %s: %d books\n", c.Category, c.Books)
	}
}

func (a *App) handleExport(ctx context.Context) {
	n, err := a.mgr.Export(ctx)
	if err != nil {
		a.printf("Error exporting catalog: %v\n", err)
		return
	}
	a.printf("Exported %d book(s) to %s\n", n, a.mgr.ExportPath())
}
