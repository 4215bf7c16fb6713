package library

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
)

// Seed is the input needed to add one book.
type Seed struct {
	Title    string `json:"title" validate:"required,max=200"`
	Author   string `json:"author" validate:"required,max=200"`
	Category string `json:"category" validate:"required,max=100"`
}

type bucket struct {
	name  string
	books []*Book
}

// Library owns the catalog: books in insertion order plus a category index
// kept in step with it. It is not safe for concurrent use.
type Library struct {
	books      []*Book
	byCategory map[string]*bucket
	categories []string // folded keys, first-seen order
	nextID     int

	now      func() time.Time
	log      *slog.Logger
	validate *validator.Validate
	fold     cases.Caser
}

// Option configures a Library.
type Option func(*Library)

// WithClock replaces time.Now as the source of borrow dates.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// WithLogger sets the logger used for catalog events.
func WithLogger(log *slog.Logger) Option {
	return func(l *Library) { l.log = log }
}

// New returns an empty library whose first book gets ID 1.
func New(opts ...Option) *Library {
	l := &Library{
		byCategory: make(map[string]*bucket),
		nextID:     1,
		now:        time.Now,
		log:        slog.New(slog.DiscardHandler),
		validate:   validator.New(),
		fold:       cases.Fold(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Library) key(s string) string { return l.fold.String(s) }

// ------------------ Catalog ------------------

// AddBook assigns the next ID and files the book under its category.
// Surrounding whitespace is trimmed; blank fields are rejected.
func (l *Library) AddBook(title, author, category string) (*Book, error) {
	s := Seed{
		Title:    strings.TrimSpace(title),
		Author:   strings.TrimSpace(author),
		Category: strings.TrimSpace(category),
	}
	if err := l.check(s); err != nil {
		return nil, err
	}

	b := newBook(l.nextID, s.Title, s.Author, s.Category)
	l.nextID++
	l.books = append(l.books, b)

	k := l.key(b.Category)
	bk, ok := l.byCategory[k]
	if !ok {
		bk = &bucket{name: b.Category}
		l.byCategory[k] = bk
		l.categories = append(l.categories, k)
	}
	bk.books = append(bk.books, b)

	l.log.Info("book added", "id", b.ID, "title", b.Title, "category", bk.name)
	return b, nil
}

// AddAll adds seeds in order and stops at the first one that fails.
func (l *Library) AddAll(seeds []Seed) ([]*Book, error) {
	added := make([]*Book, 0, len(seeds))
	for i, s := range seeds {
		b, err := l.AddBook(s.Title, s.Author, s.Category)
		if err != nil {
			return added, invalidInputCause("seed entry "+strconv.Itoa(i+1), err)
		}
		added = append(added, b)
	}
	return added, nil
}

func (l *Library) check(s Seed) error {
	err := l.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalidInputCause("invalid book", err)
	}
	details := make(map[string]string, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			details[field] = "is required"
		case "max":
			details[field] = "must not exceed " + fe.Param() + " characters"
		default:
			details[field] = "is invalid"
		}
		fields = append(fields, field+" "+details[field])
	}
	return &Error{Code: CodeInvalidInput, Message: strings.Join(fields, ", "), Details: details}
}

func (l *Library) findBookByID(id int) (*Book, error) {
	for _, b := range l.books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, notFound("Book with ID %d not found.", id)
}

// Book looks up a book by ID.
func (l *Library) Book(id int) (*Book, error) { return l.findBookByID(id) }

// Books returns every book in the order it was added.
func (l *Library) Books() []*Book {
	out := make([]*Book, len(l.books))
	copy(out, l.books)
	return out
}

// Len is the number of books in the catalog.
func (l *Library) Len() int { return len(l.books) }

// ------------------ Search ------------------

// SearchByTitle returns books whose title contains q, ignoring case.
func (l *Library) SearchByTitle(q string) []*Book {
	return l.match(q, func(b *Book) string { return b.Title })
}

// SearchByAuthor returns books whose author contains q, ignoring case.
func (l *Library) SearchByAuthor(q string) []*Book {
	return l.match(q, func(b *Book) string { return b.Author })
}

func (l *Library) match(q string, field func(*Book) string) []*Book {
	needle := l.key(q)
	out := []*Book{}
	for _, b := range l.books {
		if strings.Contains(l.key(field(b)), needle) {
			out = append(out, b)
		}
	}
	return out
}

// BooksInCategory returns the books filed under category. The lookup
// ignores case, the same as search.
func (l *Library) BooksInCategory(category string) ([]*Book, error) {
	bk, ok := l.byCategory[l.key(strings.TrimSpace(category))]
	if !ok || len(bk.books) == 0 {
		return nil, notFound("No books found in category: %s", category)
	}
	out := make([]*Book, len(bk.books))
	copy(out, bk.books)
	return out, nil
}

// Categories returns category names in the order they first appeared.
func (l *Library) Categories() []string {
	out := make([]string, 0, len(l.categories))
	for _, k := range l.categories {
		out = append(out, l.byCategory[k].name)
	}
	return out
}

// ------------------ Circulation ------------------

// BorrowBook lends the book to borrower, dated today. A book that is
// already out is left untouched and the error names who has it.
func (l *Library) BorrowBook(id int, borrower string) (*Book, error) {
	b, err := l.findBookByID(id)
	if err != nil {
		return nil, err
	}
	if !b.Available {
		return nil, invalidState("Book '%s' is already borrowed by %s", b.Title, b.Borrower)
	}
	borrower = strings.TrimSpace(borrower)
	if borrower == "" {
		return nil, InvalidInput("borrower name is required")
	}

	b.markBorrowed(borrower, DateOf(l.now()))
	l.log.Info("book borrowed", "id", b.ID, "borrower", borrower, "date", b.BorrowDate.String())
	return b, nil
}

// ReturnBook brings a borrowed book back and reports who had it.
func (l *Library) ReturnBook(id int) (Return, error) {
	b, err := l.findBookByID(id)
	if err != nil {
		return Return{}, err
	}
	if b.Available {
		return Return{}, invalidState("Book '%s' is not currently borrowed.", b.Title)
	}

	r := Return{Book: b, PreviousBorrower: b.Borrower, BorrowedOn: b.BorrowDate}
	b.markReturned()
	l.log.Info("book returned", "id", b.ID, "borrower", r.PreviousBorrower)
	return r, nil
}

// AvailableBooks returns books on the shelf, in catalog order.
func (l *Library) AvailableBooks() []*Book {
	return l.filter(func(b *Book) bool { return b.Available })
}

// BorrowedBooks returns books currently lent out, in catalog order.
func (l *Library) BorrowedBooks() []*Book {
	return l.filter(func(b *Book) bool { return !b.Available })
}

func (l *Library) filter(keep func(*Book) bool) []*Book {
	out := []*Book{}
	for _, b := range l.books {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

// ------------------ Reporting ------------------

// Statistics counts the catalog in a single pass.
func (l *Library) Statistics() Stats {
	s := Stats{Total: len(l.books)}
	for _, b := range l.books {
		if b.Available {
			s.Available++
		} else {
			s.Borrowed++
		}
	}
	s.Categories = make([]CategoryCount, 0, len(l.categories))
	for _, k := range l.categories {
		bk := l.byCategory[k]
		s.Categories = append(s.Categories, CategoryCount{Category: bk.name, Books: len(bk.books)})
	}
	return s
}
